package activity

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// Action names the state change an activity row records.
// Closed vocabulary; new actions get a constant here.
type Action string

const (
	ActionReportCreated       Action = "report_created"
	ActionReportStatusChanged Action = "report_status_changed"
	ActionReportAssigned      Action = "report_assigned"
	ActionReportDeleted       Action = "report_deleted"
	ActionReportVoted         Action = "report_voted"
	ActionReportUnvoted       Action = "report_unvoted"
	ActionCommentCreated      Action = "comment_created"
	ActionCommentDeleted      Action = "comment_deleted"
	ActionBulkStatusUpdate    Action = "bulk_status_update"
	ActionBulkAssign          Action = "bulk_assign"
	ActionBulkDelete          Action = "bulk_delete"
)

// SubjectType tags the kind of entity an activity refers to.
// The reference is historical: the subject may be deleted later, so it
// is a tagged (type, id) pair, never a live foreign key.
type SubjectType string

const (
	SubjectReport  SubjectType = "report"
	SubjectComment SubjectType = "comment"
)

// Activity is one append-only audit record. Rows are never updated or
// deleted.
type Activity struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	UserID      uuid.UUID      `db:"user_id" json:"user_id"`
	Action      Action         `db:"action" json:"action"`
	SubjectType sql.NullString `db:"subject_type" json:"subject_type,omitempty"`
	SubjectID   uuid.NullUUID  `db:"subject_id" json:"subject_id,omitempty"`
	Meta        types.JSONText `db:"meta" json:"meta,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}
