package comment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Row is a comment with its author joined in
type Row struct {
	Comment
	AuthorName  string `db:"author_name"`
	AuthorEmail string `db:"author_email"`
}

// Repository defines comment data access
type Repository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListByReport(ctx context.Context, reportID uuid.UUID) ([]*Row, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates comment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (id, report_id, user_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.ReportID, c.UserID, c.Body, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	var c Comment
	err := r.db.GetContext(ctx, &c, `SELECT * FROM comments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ListByReport returns a report's comments oldest first, the order
// they are shown on the detail page.
func (r *repository) ListByReport(ctx context.Context, reportID uuid.UUID) ([]*Row, error) {
	query := `
		SELECT c.*, u.name AS author_name, u.email AS author_email
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.report_id = $1
		ORDER BY c.created_at ASC
	`
	var rows []*Row
	err := r.db.SelectContext(ctx, &rows, query, reportID)
	return rows, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCommentNotFound
	}
	return nil
}
