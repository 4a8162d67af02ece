package comment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cityfix/cityfix-api/internal/domain/activity"
	"github.com/cityfix/cityfix-api/internal/domain/user"
)

// ActivityRecorder appends best-effort audit records
type ActivityRecorder interface {
	Record(ctx context.Context, actorID uuid.UUID, action activity.Action, subjectType activity.SubjectType, subjectID uuid.UUID, meta map[string]interface{})
}

// ReportChecker answers whether a report exists
type ReportChecker interface {
	Exists(ctx context.Context, reportID uuid.UUID) (bool, error)
}

// Service handles comment business logic
type Service struct {
	repo     Repository
	reports  ReportChecker
	recorder ActivityRecorder
}

// NewService creates comment service
func NewService(repo Repository, reports ReportChecker, recorder ActivityRecorder) *Service {
	return &Service{repo: repo, reports: reports, recorder: recorder}
}

// Create posts a comment under a report
func (s *Service) Create(ctx context.Context, actor *user.Identity, reportID uuid.UUID, req *CreateRequest) (*View, error) {
	if !actor.Can(user.CapCommentsCreate) {
		return nil, ErrNotAllowed
	}

	exists, err := s.reports.Exists(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrReportNotFound
	}

	now := time.Now()
	c := &Comment{
		ID:        uuid.New(),
		ReportID:  reportID,
		UserID:    actor.ID,
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor.ID, activity.ActionCommentCreated, activity.SubjectComment, c.ID, map[string]interface{}{
		"report_id": reportID,
	})

	return &View{
		ID:        c.ID,
		ReportID:  c.ReportID,
		Body:      c.Body,
		User:      actor.Summary(),
		CreatedAt: c.CreatedAt,
	}, nil
}

// Delete removes a comment. The author may delete their own; holders
// of comments.delete_all may delete any.
func (s *Service) Delete(ctx context.Context, actor *user.Identity, id uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCommentNotFound
	}

	ownDelete := c.UserID == actor.ID && actor.Can(user.CapCommentsDeleteOwn)
	if !ownDelete && !actor.Can(user.CapCommentsDeleteAll) {
		return ErrNotAllowed
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor.ID, activity.ActionCommentDeleted, activity.SubjectComment, id, map[string]interface{}{
		"report_id": c.ReportID,
	})

	return nil
}

// ListForReport returns a report's comments for the detail view
func (s *Service) ListForReport(ctx context.Context, reportID uuid.UUID) ([]*View, error) {
	rows, err := s.repo.ListByReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	views := make([]*View, len(rows))
	for i, row := range rows {
		views[i] = &View{
			ID:       row.ID,
			ReportID: row.ReportID,
			Body:     row.Body,
			User: &user.Summary{
				ID:    row.UserID,
				Name:  row.AuthorName,
				Email: row.AuthorEmail,
			},
			CreatedAt: row.CreatedAt,
		}
	}
	return views, nil
}
