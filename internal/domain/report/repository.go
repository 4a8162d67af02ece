package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Row is a listing row with the creator, assignee and vote count
// joined in, scanned straight from the listing query.
type Row struct {
	Report
	AuthorName    string         `db:"author_name"`
	AuthorEmail   string         `db:"author_email"`
	AssigneeName  sql.NullString `db:"assignee_name"`
	AssigneeEmail sql.NullString `db:"assignee_email"`
	VotesCount    int            `db:"votes_count"`
}

// ListQuery is the resolved filter set applied by List. Filters are
// conjunctive; Search is matched with OR across title, description and
// address. SortColumn must be vetted by the caller before it reaches
// the query text.
type ListQuery struct {
	Status     string
	Category   string
	Search     string
	AssignedTo *uuid.UUID // nil = no filter
	Unassigned bool       // assigned_to IS NULL
	DateFrom   string     // YYYY-MM-DD, inclusive
	DateTo     string     // YYYY-MM-DD, inclusive
	SortColumn string
	SortDesc   bool
	Limit      int
	Offset     int
}

// Repository defines report data access
type Repository interface {
	CreateWithImages(ctx context.Context, r *Report, images []*Image) error
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)
	GetRow(ctx context.Context, id uuid.UUID) (*Row, error)
	List(ctx context.Context, q ListQuery) ([]*Row, int, error)
	ListImages(ctx context.Context, reportID uuid.UUID) ([]*Image, error)
	ListImagesForReports(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]*Image, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	DeleteCascade(ctx context.Context, id uuid.UUID) ([]string, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates report repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CreateWithImages inserts the report and its image rows in one
// transaction, so a half-created report is never visible.
func (r *repository) CreateWithImages(ctx context.Context, rep *Report, images []*Image) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reports (id, user_id, assigned_to, title, description, category, status,
			latitude, longitude, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.ExecContext(ctx, query,
		rep.ID,
		rep.UserID,
		rep.AssignedTo,
		rep.Title,
		rep.Description,
		rep.Category,
		rep.Status,
		rep.Latitude,
		rep.Longitude,
		rep.Address,
		rep.CreatedAt,
		rep.UpdatedAt,
	)
	if err != nil {
		return err
	}

	imgQuery := `
		INSERT INTO report_images (id, report_id, path, thumb_path, alt, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, img := range images {
		if _, err := tx.ExecContext(ctx, imgQuery,
			img.ID,
			img.ReportID,
			img.Path,
			img.ThumbPath,
			img.Alt,
			img.Position,
			img.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	query := `SELECT * FROM reports WHERE id = $1`
	var rep Report
	err := r.db.GetContext(ctx, &rep, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rep, nil
}

const rowSelect = `
	SELECT r.*,
		u.name AS author_name,
		u.email AS author_email,
		a.name AS assignee_name,
		a.email AS assignee_email,
		(SELECT COUNT(*) FROM report_votes v WHERE v.report_id = r.id) AS votes_count
	FROM reports r
	JOIN users u ON u.id = r.user_id
	LEFT JOIN users a ON a.id = r.assigned_to
`

func (r *repository) GetRow(ctx context.Context, id uuid.UUID) (*Row, error) {
	query := rowSelect + ` WHERE r.id = $1`
	var row Row
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repository) List(ctx context.Context, q ListQuery) ([]*Row, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if q.Status != "" {
		where += fmt.Sprintf(` AND r.status = $%d`, argPos)
		args = append(args, q.Status)
		argPos++
	}
	if q.Category != "" {
		where += fmt.Sprintf(` AND r.category = $%d`, argPos)
		args = append(args, q.Category)
		argPos++
	}
	if q.Search != "" {
		where += fmt.Sprintf(` AND (r.title ILIKE $%d OR r.description ILIKE $%d OR r.address ILIKE $%d)`, argPos, argPos, argPos)
		args = append(args, "%"+q.Search+"%")
		argPos++
	}
	if q.Unassigned {
		where += ` AND r.assigned_to IS NULL`
	} else if q.AssignedTo != nil {
		where += fmt.Sprintf(` AND r.assigned_to = $%d`, argPos)
		args = append(args, *q.AssignedTo)
		argPos++
	}
	if q.DateFrom != "" {
		where += fmt.Sprintf(` AND r.created_at::date >= $%d`, argPos)
		args = append(args, q.DateFrom)
		argPos++
	}
	if q.DateTo != "" {
		where += fmt.Sprintf(` AND r.created_at::date <= $%d`, argPos)
		args = append(args, q.DateTo)
		argPos++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reports r`+where, args...); err != nil {
		return nil, 0, err
	}

	order := ` ORDER BY ` + q.SortColumn
	if q.SortDesc {
		order += ` DESC`
	} else {
		order += ` ASC`
	}

	query := rowSelect + where + order
	if q.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argPos)
		args = append(args, q.Limit)
		argPos++
	}
	if q.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argPos)
		args = append(args, q.Offset)
	}

	var rows []*Row
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r *repository) ListImages(ctx context.Context, reportID uuid.UUID) ([]*Image, error) {
	query := `SELECT * FROM report_images WHERE report_id = $1 ORDER BY position, created_at`
	var images []*Image
	err := r.db.SelectContext(ctx, &images, query, reportID)
	return images, err
}

func (r *repository) ListImagesForReports(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]*Image, error) {
	result := make(map[uuid.UUID][]*Image, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM report_images WHERE report_id IN (?) ORDER BY position, created_at`, ids)
	if err != nil {
		return nil, err
	}

	var images []*Image
	if err := r.db.SelectContext(ctx, &images, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	for _, img := range images {
		result[img.ReportID] = append(result[img.ReportID], img)
	}
	return result, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `UPDATE reports SET status = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrReportNotFound
	}
	return nil
}

// DeleteCascade removes the report together with its votes, comments
// and image rows in one transaction, and returns the blob paths of the
// deleted images so the caller can release them from storage.
func (r *repository) DeleteCascade(ctx context.Context, id uuid.UUID) ([]string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var images []*Image
	if err := tx.SelectContext(ctx, &images, `SELECT * FROM report_images WHERE report_id = $1`, id); err != nil {
		return nil, err
	}

	for _, stmt := range []string{
		`DELETE FROM report_votes WHERE report_id = $1`,
		`DELETE FROM comments WHERE report_id = $1`,
		`DELETE FROM report_images WHERE report_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return nil, err
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrReportNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(images)*2)
	for _, img := range images {
		paths = append(paths, img.Path)
		if img.ThumbPath != "" {
			paths = append(paths, img.ThumbPath)
		}
	}
	return paths, nil
}
