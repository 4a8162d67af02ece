package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines the admin-only data access: assignment, bulk
// mutations and the stats snapshot.
type Repository interface {
	Assign(ctx context.Context, reportID uuid.UUID, assignedTo uuid.NullUUID) error
	ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	StatusesFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status string) (int, error)
	BulkAssign(ctx context.Context, ids []uuid.UUID, assignedTo uuid.NullUUID) (int, error)
	BulkDeleteCascade(ctx context.Context, ids []uuid.UUID) (int, []string, error)
	Stats(ctx context.Context) (*Stats, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates admin repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Assign(ctx context.Context, reportID uuid.UUID, assignedTo uuid.NullUUID) error {
	query := `UPDATE reports SET assigned_to = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, reportID, assignedTo)
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

func (r *repository) ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id FROM reports WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var found []uuid.UUID
	err = r.db.SelectContext(ctx, &found, r.db.Rebind(query), args...)
	return found, err
}

// StatusesFor returns the current status of each existing report in
// ids. Doubles as the existence check for bulk status updates.
func (r *repository) StatusesFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT id, status FROM reports WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID     uuid.UUID `db:"id"`
		Status string    `db:"status"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Status
	}
	return out, nil
}

func (r *repository) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status string) (int, error) {
	query, args, err := sqlx.In(
		`UPDATE reports SET status = ?, updated_at = NOW() WHERE id IN (?)`, status, ids)
	if err != nil {
		return 0, err
	}
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	return int(rows), err
}

func (r *repository) BulkAssign(ctx context.Context, ids []uuid.UUID, assignedTo uuid.NullUUID) (int, error) {
	query, args, err := sqlx.In(
		`UPDATE reports SET assigned_to = ?, updated_at = NOW() WHERE id IN (?)`, assignedTo, ids)
	if err != nil {
		return 0, err
	}
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	return int(rows), err
}

// BulkDeleteCascade removes the reports and their dependents in one
// transaction and returns the blob paths of the deleted images.
func (r *repository) BulkDeleteCascade(ctx context.Context, ids []uuid.UUID) (int, []string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback()

	query, args, err := sqlx.In(
		`SELECT path, thumb_path FROM report_images WHERE report_id IN (?)`, ids)
	if err != nil {
		return 0, nil, err
	}
	var blobs []struct {
		Path      string `db:"path"`
		ThumbPath string `db:"thumb_path"`
	}
	if err := tx.SelectContext(ctx, &blobs, tx.Rebind(query), args...); err != nil {
		return 0, nil, err
	}

	for _, stmt := range []string{
		`DELETE FROM report_votes WHERE report_id IN (?)`,
		`DELETE FROM comments WHERE report_id IN (?)`,
		`DELETE FROM report_images WHERE report_id IN (?)`,
	} {
		query, args, err := sqlx.In(stmt, ids)
		if err != nil {
			return 0, nil, err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return 0, nil, err
		}
	}

	query, args, err = sqlx.In(`DELETE FROM reports WHERE id IN (?)`, ids)
	if err != nil {
		return 0, nil, err
	}
	result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return 0, nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, nil, err
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, err
	}

	paths := make([]string, 0, len(blobs)*2)
	for _, b := range blobs {
		paths = append(paths, b.Path)
		if b.ThumbPath != "" {
			paths = append(paths, b.ThumbPath)
		}
	}
	return int(rows), paths, nil
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByStatus:   map[string]int{},
		ByCategory: map[string]int{},
	}

	if err := r.db.GetContext(ctx, &stats.TotalReports, `SELECT COUNT(*) FROM reports`); err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string `db:"key"`
		Count int    `db:"count"`
	}

	var byStatus []bucket
	if err := r.db.SelectContext(ctx, &byStatus,
		`SELECT status AS key, COUNT(*) AS count FROM reports GROUP BY status`); err != nil {
		return nil, err
	}
	for _, b := range byStatus {
		stats.ByStatus[b.Key] = b.Count
	}

	var byCategory []bucket
	if err := r.db.SelectContext(ctx, &byCategory,
		`SELECT category AS key, COUNT(*) AS count FROM reports GROUP BY category`); err != nil {
		return nil, err
	}
	for _, b := range byCategory {
		stats.ByCategory[b.Key] = b.Count
	}

	if err := r.db.GetContext(ctx, &stats.Unassigned,
		`SELECT COUNT(*) FROM reports WHERE assigned_to IS NULL`); err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &stats.TotalVotes, `SELECT COUNT(*) FROM report_votes`); err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &stats.TotalComments, `SELECT COUNT(*) FROM comments`); err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &stats.TotalUsers, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, err
	}

	return stats, nil
}
