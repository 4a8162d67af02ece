package vote

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines vote data access
type Repository interface {
	Insert(ctx context.Context, reportID, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, reportID, userID uuid.UUID) (bool, error)
	Exists(ctx context.Context, reportID, userID uuid.UUID) (bool, error)
	Count(ctx context.Context, reportID uuid.UUID) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates vote repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Insert adds a vote. Returns false without error when the vote
// already exists: the unique constraint makes concurrent double
// inserts lose cleanly instead of failing.
func (r *repository) Insert(ctx context.Context, reportID, userID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO report_votes (id, report_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, uuid.New(), reportID, userID, time.Now())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes a vote. Returns false when there was none to remove.
func (r *repository) Delete(ctx context.Context, reportID, userID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM report_votes WHERE report_id = $1 AND user_id = $2`, reportID, userID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *repository) Exists(ctx context.Context, reportID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM report_votes WHERE report_id = $1 AND user_id = $2)`,
		reportID, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	return exists, nil
}

func (r *repository) Count(ctx context.Context, reportID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM report_votes WHERE report_id = $1`, reportID)
	return count, err
}
