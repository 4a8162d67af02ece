package vote

import (
	"context"

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

// Service handles vote business logic
type Service struct {
	repo     Repository
	reports  ReportChecker
	recorder ActivityRecorder
}

// NewService creates vote service
func NewService(repo Repository, reports ReportChecker, recorder ActivityRecorder) *Service {
	return &Service{repo: repo, reports: reports, recorder: recorder}
}

// Toggle flips the caller's vote on a report and returns the new
// state together with the fresh count. Concurrent toggles by the same
// user settle on the unique constraint: the losing insert reads as
// "already voted" and the call still succeeds.
func (s *Service) Toggle(ctx context.Context, actor *user.Identity, reportID uuid.UUID) (*Result, error) {
	if !actor.Can(user.CapVotesCast) {
		return nil, ErrNotAllowed
	}

	exists, err := s.reports.Exists(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrReportNotFound
	}

	voted, err := s.repo.Exists(ctx, reportID, actor.ID)
	if err != nil {
		return nil, err
	}

	var nowVoted bool
	if voted {
		removed, err := s.repo.Delete(ctx, reportID, actor.ID)
		if err != nil {
			return nil, err
		}
		// A concurrent delete may have won; either way the vote is gone.
		nowVoted = false
		if removed {
			s.recorder.Record(ctx, actor.ID, activity.ActionReportUnvoted, activity.SubjectReport, reportID, nil)
		}
	} else {
		inserted, err := s.repo.Insert(ctx, reportID, actor.ID)
		if err != nil {
			return nil, err
		}
		nowVoted = true
		if inserted {
			s.recorder.Record(ctx, actor.ID, activity.ActionReportVoted, activity.SubjectReport, reportID, nil)
		}
	}

	count, err := s.repo.Count(ctx, reportID)
	if err != nil {
		return nil, err
	}

	return &Result{Voted: nowVoted, VotesCount: count}, nil
}

// HasVoted reports whether the user has an active vote on the report
func (s *Service) HasVoted(ctx context.Context, reportID, userID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, reportID, userID)
}
