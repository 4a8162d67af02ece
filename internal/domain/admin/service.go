package admin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/cityfix/cityfix-api/internal/domain/activity"
	"github.com/cityfix/cityfix-api/internal/domain/report"
	"github.com/cityfix/cityfix-api/internal/domain/user"
	"github.com/cityfix/cityfix-api/internal/pkg/storage"
)

const statsCacheKey = "cityfix:stats:global"

// ActivityRecorder appends best-effort audit records
type ActivityRecorder interface {
	Record(ctx context.Context, actorID uuid.UUID, action activity.Action, subjectType activity.SubjectType, subjectID uuid.UUID, meta map[string]interface{})
}

// Service handles the triage surface: listing with staff filters,
// assignment, bulk mutations and the stats snapshot.
type Service struct {
	repo      Repository
	reports   report.Repository
	reportSvc *report.Service
	users     user.Repository
	store     storage.Storage
	recorder  ActivityRecorder
	cache     *redis.Client // nil disables stats caching
	cacheTTL  time.Duration
}

// NewService creates admin service
func NewService(repo Repository, reports report.Repository, reportSvc *report.Service, users user.Repository, store storage.Storage, recorder ActivityRecorder, cache *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{
		repo:      repo,
		reports:   reports,
		reportSvc: reportSvc,
		users:     users,
		store:     store,
		recorder:  recorder,
		cache:     cache,
		cacheTTL:  cacheTTL,
	}
}

// sortColumns is the allowlist for triage sorting. Anything else
// falls back to created_at; the identifier is interpolated into the
// query text, so it must come from here.
var sortColumns = map[string]string{
	"created_at":  "created_at",
	"updated_at":  "updated_at",
	"status":      "status",
	"category":    "category",
	"title":       "title",
	"votes_count": "votes_count",
}

// List returns a page of the triage listing with assignees attached,
// together with the global stats snapshot.
func (s *Service) List(ctx context.Context, actor *user.Identity, filter ListFilter) (*ListPage, int, error) {
	if !actor.Can(user.CapReportsView) {
		return nil, 0, ErrNotAllowed
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}

	q := report.ListQuery{
		Status:     filter.Status,
		Category:   filter.Category,
		Search:     filter.Search,
		AssignedTo: filter.AssignedTo,
		Unassigned: filter.Unassigned,
		DateFrom:   filter.DateFrom,
		DateTo:     filter.DateTo,
		SortColumn: column,
		SortDesc:   filter.SortOrder != "asc",
		Limit:      report.PageSize,
		Offset:     (filter.Page - 1) * report.PageSize,
	}

	rows, total, err := s.reports.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	summaries, err := s.reportSvc.Summaries(ctx, rows)
	if err != nil {
		return nil, 0, err
	}

	page := &ListPage{Reports: summaries}

	// Stats ride along when the caller may see them; a snapshot
	// failure degrades to a listing without numbers.
	if actor.Can(user.CapStatsView) {
		stats, err := s.Stats(ctx, actor)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load stats for triage listing")
		} else {
			page.Stats = stats
		}
	}

	return page, total, nil
}

// Assign sets or clears a report's assignee. The target must be a
// staff or admin account; a null target unassigns.
func (s *Service) Assign(ctx context.Context, actor *user.Identity, reportID uuid.UUID, assigneeID *uuid.UUID) error {
	if !actor.Can(user.CapReportsAssign) {
		return ErrNotAllowed
	}

	assigned, err := s.resolveAssignee(ctx, assigneeID)
	if err != nil {
		return err
	}

	if err := s.repo.Assign(ctx, reportID, assigned); err != nil {
		return err
	}

	meta := map[string]interface{}{"assigned_to": nil}
	if assigneeID != nil {
		meta["assigned_to"] = *assigneeID
	}
	s.recorder.Record(ctx, actor.ID, activity.ActionReportAssigned, activity.SubjectReport, reportID, meta)

	return nil
}

// BulkStatus moves every listed report to one status. All-or-nothing:
// if any ID does not exist, nothing changes.
func (s *Service) BulkStatus(ctx context.Context, actor *user.Identity, req *BulkStatusRequest) (*BulkResult, error) {
	if !actor.Can(user.CapReportsChangeStatus) {
		return nil, ErrNotAllowed
	}

	// current statuses double as the existence check and the
	// per-report old value for the audit trail
	oldStatuses, err := s.repo.StatusesFor(ctx, req.IDs)
	if err != nil {
		return nil, err
	}
	if len(oldStatuses) != len(req.IDs) {
		return nil, ErrReportsMissing
	}

	affected, err := s.repo.BulkUpdateStatus(ctx, req.IDs, req.Status)
	if err != nil {
		return nil, err
	}

	for _, id := range req.IDs {
		s.recorder.Record(ctx, actor.ID, activity.ActionBulkStatusUpdate, activity.SubjectReport, id, map[string]interface{}{
			"old_status": oldStatuses[id],
			"new_status": req.Status,
		})
	}

	return &BulkResult{Affected: affected}, nil
}

// BulkAssign assigns every listed report to one assignee
func (s *Service) BulkAssign(ctx context.Context, actor *user.Identity, req *BulkAssignRequest) (*BulkResult, error) {
	if !actor.Can(user.CapReportsAssign) {
		return nil, ErrNotAllowed
	}

	assigned, err := s.resolveAssignee(ctx, req.AssignedTo)
	if err != nil {
		return nil, err
	}

	if err := s.requireAll(ctx, req.IDs); err != nil {
		return nil, err
	}

	affected, err := s.repo.BulkAssign(ctx, req.IDs, assigned)
	if err != nil {
		return nil, err
	}

	meta := map[string]interface{}{"assigned_to": nil}
	if req.AssignedTo != nil {
		meta["assigned_to"] = *req.AssignedTo
	}
	for _, id := range req.IDs {
		s.recorder.Record(ctx, actor.ID, activity.ActionBulkAssign, activity.SubjectReport, id, meta)
	}

	return &BulkResult{Affected: affected}, nil
}

// BulkDelete removes every listed report with the same cascade as a
// single delete, then releases the image blobs.
func (s *Service) BulkDelete(ctx context.Context, actor *user.Identity, req *BulkDeleteRequest) (*BulkResult, error) {
	if !actor.Can(user.CapReportsDeleteAll) {
		return nil, ErrNotAllowed
	}

	if err := s.requireAll(ctx, req.IDs); err != nil {
		return nil, err
	}

	affected, paths, err := s.repo.BulkDeleteCascade(ctx, req.IDs)
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		if err := s.store.Delete(ctx, p); err != nil {
			log.Error().Err(err).Str("path", p).Msg("Failed to release blob")
		}
	}

	for _, id := range req.IDs {
		s.recorder.Record(ctx, actor.ID, activity.ActionBulkDelete, activity.SubjectReport, id, nil)
	}

	return &BulkResult{Affected: affected}, nil
}

// Stats returns the platform-wide snapshot, cached for a short TTL.
// Cache failures degrade to a direct query.
func (s *Service) Stats(ctx context.Context, actor *user.Identity) (*Stats, error) {
	if !actor.Can(user.CapStatsView) {
		return nil, ErrNotAllowed
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, statsCacheKey).Bytes()
		if err == nil {
			var stats Stats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
		} else if err != redis.Nil {
			log.Warn().Err(err).Msg("Stats cache read failed")
		}
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, payload, s.cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("Stats cache write failed")
			}
		}
	}

	return stats, nil
}

// ListStaff returns the accounts eligible for assignment
func (s *Service) ListStaff(ctx context.Context, actor *user.Identity) ([]*user.Summary, error) {
	if !actor.Can(user.CapReportsAssign) {
		return nil, ErrNotAllowed
	}
	return s.users.ListStaff(ctx)
}

func (s *Service) resolveAssignee(ctx context.Context, assigneeID *uuid.UUID) (uuid.NullUUID, error) {
	if assigneeID == nil {
		return uuid.NullUUID{}, nil
	}

	assignee, err := s.users.GetByID(ctx, *assigneeID)
	if err != nil {
		return uuid.NullUUID{}, err
	}
	if assignee == nil || !assignee.CanTriage() {
		return uuid.NullUUID{}, ErrInvalidAssignee
	}
	return uuid.NullUUID{UUID: *assigneeID, Valid: true}, nil
}

func (s *Service) requireAll(ctx context.Context, ids []uuid.UUID) error {
	found, err := s.repo.ExistingIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return ErrReportsMissing
	}
	return nil
}
