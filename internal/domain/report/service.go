package report

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cityfix/cityfix-api/internal/domain/activity"
	"github.com/cityfix/cityfix-api/internal/domain/user"
	"github.com/cityfix/cityfix-api/internal/pkg/imaging"
	"github.com/cityfix/cityfix-api/internal/pkg/storage"
)

// ActivityRecorder appends best-effort audit records
type ActivityRecorder interface {
	Record(ctx context.Context, actorID uuid.UUID, action activity.Action, subjectType activity.SubjectType, subjectID uuid.UUID, meta map[string]interface{})
}

// CommentSource supplies the comments shown on a report detail view
type CommentSource interface {
	ListForReport(ctx context.Context, reportID uuid.UUID) ([]CommentView, error)
}

// VoteSource answers whether a user has voted on a report
type VoteSource interface {
	HasVoted(ctx context.Context, reportID, userID uuid.UUID) (bool, error)
}

// Upload is one validated image payload from the create form
type Upload struct {
	Data []byte
	Alt  string
}

// Service handles report business logic
type Service struct {
	repo      Repository
	store     storage.Storage
	processor *imaging.Processor
	recorder  ActivityRecorder
	comments  CommentSource
	votes     VoteSource
	maxImages int
}

// NewService creates report service
func NewService(repo Repository, store storage.Storage, processor *imaging.Processor, recorder ActivityRecorder, comments CommentSource, votes VoteSource, maxImages int) *Service {
	return &Service{
		repo:      repo,
		store:     store,
		processor: processor,
		recorder:  recorder,
		comments:  comments,
		votes:     votes,
		maxImages: maxImages,
	}
}

// List returns a page of the public report listing
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Summary, int, error) {
	q := ListQuery{
		Status:   filter.Status,
		Category: filter.Category,
		Search:   filter.Search,
		Limit:    PageSize,
		Offset:   (filter.Page - 1) * PageSize,
	}

	switch filter.Sort {
	case SortOldest:
		q.SortColumn, q.SortDesc = "created_at", false
	case SortMostVoted:
		q.SortColumn, q.SortDesc = "votes_count", true
	case SortNewest, "":
		q.SortColumn, q.SortDesc = "created_at", true
	default:
		q.SortColumn, q.SortDesc = "created_at", true
	}

	rows, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	summaries, err := s.attachImages(ctx, rows, false)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// Get returns the full report detail, personalized with has_voted when
// the caller is authenticated. Anonymous callers get has_voted=false.
func (s *Service) Get(ctx context.Context, actor *user.Identity, id uuid.UUID) (*Detail, error) {
	row, err := s.repo.GetRow(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrReportNotFound
	}

	images, err := s.repo.ListImages(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListForReport(ctx, id)
	if err != nil {
		return nil, err
	}

	hasVoted := false
	if actor != nil {
		hasVoted, err = s.votes.HasVoted(ctx, id, actor.ID)
		if err != nil {
			return nil, err
		}
	}

	detail := &Detail{
		Summary:  *s.toSummary(row, images, false),
		Comments: comments,
		HasVoted: hasVoted,
	}
	return detail, nil
}

// Create files a new report with its processed photos. The report and
// image rows commit in one transaction; stored blobs are rolled back
// best-effort if the insert fails.
func (s *Service) Create(ctx context.Context, actor *user.Identity, req *CreateRequest, uploads []Upload) (*Summary, error) {
	if !actor.Can(user.CapReportsCreate) {
		return nil, ErrNotAllowed
	}
	if len(uploads) > s.maxImages {
		return nil, ErrTooManyImages
	}

	now := time.Now()
	rep := &Report{
		ID:          uuid.New(),
		UserID:      actor.ID,
		Title:       req.Title,
		Description: req.Description,
		Category:    Category(req.Category),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Latitude != nil {
		rep.Latitude = sql.NullFloat64{Float64: *req.Latitude, Valid: true}
	}
	if req.Longitude != nil {
		rep.Longitude = sql.NullFloat64{Float64: *req.Longitude, Valid: true}
	}
	if req.Address != "" {
		rep.Address = sql.NullString{String: req.Address, Valid: true}
	}

	images, savedPaths, err := s.storeUploads(ctx, rep, uploads)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateWithImages(ctx, rep, images); err != nil {
		s.releaseBlobs(ctx, savedPaths)
		return nil, err
	}

	s.recorder.Record(ctx, actor.ID, activity.ActionReportCreated, activity.SubjectReport, rep.ID, map[string]interface{}{
		"title":    rep.Title,
		"category": rep.Category,
	})

	row, err := s.repo.GetRow(ctx, rep.ID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrReportNotFound
	}
	return s.toSummary(row, images, false), nil
}

// UpdateStatus sets a new lifecycle status. Any value from the enum is
// accepted regardless of the current one; the guard is the capability.
func (s *Service) UpdateStatus(ctx context.Context, actor *user.Identity, id uuid.UUID, status Status) (*Report, error) {
	if !actor.Can(user.CapReportsChangeStatus) {
		return nil, ErrNotAllowed
	}

	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, ErrReportNotFound
	}

	oldStatus := rep.Status
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	rep.Status = status

	// Logged even when old == new: the attempt itself is auditable.
	s.recorder.Record(ctx, actor.ID, activity.ActionReportStatusChanged, activity.SubjectReport, id, map[string]interface{}{
		"old_status": oldStatus,
		"new_status": status,
	})

	return rep, nil
}

// Delete removes a report. Allowed for the owner or a holder of
// reports.delete_all; cascades votes, comments and images, and
// releases the image blobs.
func (s *Service) Delete(ctx context.Context, actor *user.Identity, id uuid.UUID) error {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rep == nil {
		return ErrReportNotFound
	}

	if rep.UserID != actor.ID && !actor.Can(user.CapReportsDeleteAll) {
		return ErrNotAllowed
	}

	paths, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		return err
	}

	// Blob release must not block the row deletion that already
	// committed; failures are logged and the paths leak until swept.
	s.releaseBlobs(ctx, paths)

	s.recorder.Record(ctx, actor.ID, activity.ActionReportDeleted, activity.SubjectReport, id, map[string]interface{}{
		"title": rep.Title,
	})

	return nil
}

func (s *Service) storeUploads(ctx context.Context, rep *Report, uploads []Upload) ([]*Image, []string, error) {
	images := make([]*Image, 0, len(uploads))
	savedPaths := make([]string, 0, len(uploads)*2)

	for i, up := range uploads {
		processed, err := s.processor.Process(bytes.NewReader(up.Data))
		if err != nil {
			s.releaseBlobs(ctx, savedPaths)
			return nil, nil, fmt.Errorf("failed to process image %d: %w", i+1, err)
		}

		imgID := uuid.New()
		path := fmt.Sprintf("reports/%s/%s.jpg", rep.ID, imgID)
		thumbPath := fmt.Sprintf("reports/%s/%s_thumb.jpg", rep.ID, imgID)

		if err := s.store.Save(ctx, path, bytes.NewReader(processed.Original), processed.ContentType); err != nil {
			s.releaseBlobs(ctx, savedPaths)
			return nil, nil, err
		}
		savedPaths = append(savedPaths, path)

		if err := s.store.Save(ctx, thumbPath, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
			s.releaseBlobs(ctx, savedPaths)
			return nil, nil, err
		}
		savedPaths = append(savedPaths, thumbPath)

		alt := up.Alt
		if alt == "" {
			alt = rep.Title
		}

		images = append(images, &Image{
			ID:        imgID,
			ReportID:  rep.ID,
			Path:      path,
			ThumbPath: thumbPath,
			Alt:       alt,
			Position:  i,
			CreatedAt: time.Now(),
		})
	}

	return images, savedPaths, nil
}

func (s *Service) releaseBlobs(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := s.store.Delete(ctx, p); err != nil {
			log.Error().Err(err).Str("path", p).Msg("Failed to release blob")
		}
	}
}

func (s *Service) attachImages(ctx context.Context, rows []*Row, withAssignee bool) ([]*Summary, error) {
	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	imagesByReport, err := s.repo.ListImagesForReports(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]*Summary, len(rows))
	for i, row := range rows {
		summaries[i] = s.toSummary(row, imagesByReport[row.ID], withAssignee)
	}
	return summaries, nil
}

func (s *Service) toSummary(row *Row, images []*Image, withAssignee bool) *Summary {
	summary := &Summary{
		Report: &row.Report,
		User: &user.Summary{
			ID:    row.UserID,
			Name:  row.AuthorName,
			Email: row.AuthorEmail,
		},
		Images:     make([]ImageView, 0, len(images)),
		VotesCount: row.VotesCount,
	}

	if withAssignee && row.AssignedTo.Valid {
		summary.AssignedTo = &user.Summary{
			ID:    row.AssignedTo.UUID,
			Name:  row.AssigneeName.String,
			Email: row.AssigneeEmail.String,
		}
	}

	for _, img := range images {
		summary.Images = append(summary.Images, ImageView{
			ID:       img.ID,
			URL:      s.store.GetURL(img.Path),
			ThumbURL: s.store.GetURL(img.ThumbPath),
			Alt:      img.Alt,
		})
	}

	return summary
}

// Summaries exposes row-to-summary assembly to the admin triage
// listing, which shares the eager-loading contract of the public one
// but additionally shows the assignee.
func (s *Service) Summaries(ctx context.Context, rows []*Row) ([]*Summary, error) {
	return s.attachImages(ctx, rows, true)
}
