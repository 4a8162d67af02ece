package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Recorder writes audit records for state-changing actions.
//
// Writes are best-effort: the trail describes a mutation that already
// committed, so a failed write is logged and swallowed, never returned.
// Callers must not place Record inside the mutation's transaction.
type Recorder struct {
	repo Repository
}

// NewRecorder creates an activity recorder
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends one audit row for an action on a subject.
// Meta carries structured detail such as old/new values.
func (r *Recorder) Record(ctx context.Context, actorID uuid.UUID, action Action, subjectType SubjectType, subjectID uuid.UUID, meta map[string]interface{}) {
	a := &Activity{
		ID:        uuid.New(),
		UserID:    actorID,
		Action:    action,
		CreatedAt: time.Now(),
	}

	if subjectType != "" {
		a.SubjectType = sql.NullString{String: string(subjectType), Valid: true}
		a.SubjectID = uuid.NullUUID{UUID: subjectID, Valid: true}
	}

	if len(meta) > 0 {
		raw, err := json.Marshal(meta)
		if err != nil {
			log.Error().Err(err).Str("action", string(action)).Msg("Failed to encode activity meta")
		} else {
			a.Meta = raw
		}
	}

	if err := r.repo.Create(ctx, a); err != nil {
		log.Error().
			Err(err).
			Str("action", string(action)).
			Str("actor_id", actorID.String()).
			Msg("Failed to write activity record")
	}
}
