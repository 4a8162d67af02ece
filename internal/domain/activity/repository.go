package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Filter narrows the audit log listing
type Filter struct {
	UserID      *uuid.UUID
	Action      *Action
	SubjectType *SubjectType
	SubjectID   *uuid.UUID
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}

// Repository defines audit trail data access
type Repository interface {
	Create(ctx context.Context, a *Activity) error
	List(ctx context.Context, filter Filter) ([]*Activity, int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates activity repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a *Activity) error {
	query := `
		INSERT INTO activities (id, user_id, action, subject_type, subject_id, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.Action,
		a.SubjectType,
		a.SubjectID,
		a.Meta,
		a.CreatedAt,
	)
	return err
}

func (r *repository) List(ctx context.Context, filter Filter) ([]*Activity, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.UserID != nil {
		where += fmt.Sprintf(` AND user_id = $%d`, argPos)
		args = append(args, *filter.UserID)
		argPos++
	}
	if filter.Action != nil {
		where += fmt.Sprintf(` AND action = $%d`, argPos)
		args = append(args, *filter.Action)
		argPos++
	}
	if filter.SubjectType != nil {
		where += fmt.Sprintf(` AND subject_type = $%d`, argPos)
		args = append(args, *filter.SubjectType)
		argPos++
	}
	if filter.SubjectID != nil {
		where += fmt.Sprintf(` AND subject_id = $%d`, argPos)
		args = append(args, *filter.SubjectID)
		argPos++
	}
	if filter.FromDate != nil {
		where += fmt.Sprintf(` AND created_at::date >= $%d`, argPos)
		args = append(args, *filter.FromDate)
		argPos++
	}
	if filter.ToDate != nil {
		where += fmt.Sprintf(` AND created_at::date <= $%d`, argPos)
		args = append(args, *filter.ToDate)
		argPos++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM activities`+where, args...); err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM activities` + where + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argPos)
		args = append(args, filter.Limit)
		argPos++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argPos)
		args = append(args, filter.Offset)
	}

	var activities []*Activity
	if err := r.db.SelectContext(ctx, &activities, query, args...); err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}
