package admin

import (
	"github.com/google/uuid"

	"github.com/cityfix/cityfix-api/internal/domain/report"
)

// ListFilter narrows the triage listing. Superset of the public
// filters: adds assignee targeting, a creation date range and
// free-form column sorting.
type ListFilter struct {
	Status     string
	Category   string
	Search     string
	AssignedTo *uuid.UUID
	Unassigned bool
	DateFrom   string
	DateTo     string
	SortBy     string
	SortOrder  string
	Page       int
}

// ListPage is the triage listing payload: the filtered page plus the
// global stats snapshot, which is computed independently of the
// filters.
type ListPage struct {
	Reports []*report.Summary `json:"reports"`
	Stats   *Stats            `json:"stats,omitempty"`
}

// AssignRequest sets or clears a report's assignee. A null assigned_to
// unassigns.
type AssignRequest struct {
	AssignedTo *uuid.UUID `json:"assigned_to"`
}

// BulkStatusRequest moves a set of reports to one status
type BulkStatusRequest struct {
	IDs    []uuid.UUID `json:"report_ids" validate:"required,min=1,max=100"`
	Status string      `json:"status" validate:"required,report_status"`
}

// BulkAssignRequest assigns a set of reports to one assignee
type BulkAssignRequest struct {
	IDs        []uuid.UUID `json:"report_ids" validate:"required,min=1,max=100"`
	AssignedTo *uuid.UUID  `json:"assigned_to"`
}

// BulkDeleteRequest removes a set of reports
type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"report_ids" validate:"required,min=1,max=100"`
}

// BulkResult reports how many rows a bulk operation touched
type BulkResult struct {
	Affected int `json:"affected"`
}

// Stats is the platform-wide snapshot shown on the admin dashboard
type Stats struct {
	TotalReports  int            `json:"total_reports"`
	ByStatus      map[string]int `json:"by_status"`
	ByCategory    map[string]int `json:"by_category"`
	Unassigned    int            `json:"unassigned"`
	TotalVotes    int            `json:"total_votes"`
	TotalComments int            `json:"total_comments"`
	TotalUsers    int            `json:"total_users"`
}
