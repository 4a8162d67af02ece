package report

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Category represents the kind of issue reported (matches report_category enum)
type Category string

const (
	CategoryRoads    Category = "roads"
	CategoryLighting Category = "lighting"
	CategoryWaste    Category = "waste"
	CategoryWater    Category = "water"
	CategoryParks    Category = "parks"
	CategorySafety   Category = "safety"
	CategoryOther    Category = "other"
)

// Status represents the report lifecycle state (matches report_status enum).
//
// The nominal flow is pending -> assessed -> in_progress -> resolved,
// with rejected reachable from any non-terminal state. No transition
// table is enforced: any holder of reports.change_status may set any
// status from any status. The gate is the permission, not the graph.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssessed   Status = "assessed"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
)

// IsValidCategory checks category against the closed enum
func IsValidCategory(c string) bool {
	switch Category(c) {
	case CategoryRoads, CategoryLighting, CategoryWaste, CategoryWater, CategoryParks, CategorySafety, CategoryOther:
		return true
	}
	return false
}

// IsValidStatus checks status against the closed enum
func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusAssessed, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Report represents a citizen-submitted issue
type Report struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	AssignedTo  uuid.NullUUID   `db:"assigned_to" json:"assigned_to,omitempty"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Category    Category        `db:"category" json:"category"`
	Status      Status          `db:"status" json:"status"`
	Latitude    sql.NullFloat64 `db:"latitude" json:"latitude,omitempty"`
	Longitude   sql.NullFloat64 `db:"longitude" json:"longitude,omitempty"`
	Address     sql.NullString  `db:"address" json:"address,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Image is a photo attached to a report. Owned exclusively by its
// report: deleted with it, and its blob paths released at that time.
type Image struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ReportID  uuid.UUID `db:"report_id" json:"report_id"`
	Path      string    `db:"path" json:"path"`
	ThumbPath string    `db:"thumb_path" json:"thumb_path"`
	Alt       string    `db:"alt" json:"alt"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
