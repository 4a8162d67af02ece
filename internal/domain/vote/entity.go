package vote

import (
	"time"

	"github.com/google/uuid"
)

// Vote is one user's endorsement of a report. At most one per
// (report, user) pair, enforced by a unique constraint.
type Vote struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ReportID  uuid.UUID `db:"report_id" json:"report_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Result is the outcome of a toggle
type Result struct {
	Voted      bool `json:"voted"`
	VotesCount int  `json:"votes_count"`
}
