package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/cityfix/cityfix-api/internal/domain/user"
)

// PageSize is the fixed page size for report listings
const PageSize = 15

// Sort modes for the public listing
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortMostVoted = "most_voted"
)

// CreateRequest carries the multipart form fields of a new report
type CreateRequest struct {
	Title       string   `json:"title" validate:"required,min=5,max=255"`
	Description string   `json:"description" validate:"required,min=10,max=5000"`
	Category    string   `json:"category" validate:"required,category"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Address     string   `json:"address,omitempty" validate:"max=500"`
}

// UpdateStatusRequest sets a new lifecycle status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,report_status"`
}

// ListFilter narrows the public listing. Filters combine with AND;
// the search term matches title OR description OR address.
type ListFilter struct {
	Status   string
	Category string
	Search   string
	Sort     string
	Page     int
}

// ImageView is the rendered projection of a stored image
type ImageView struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	ThumbURL string    `json:"thumb_url"`
	Alt      string    `json:"alt"`
}

// CommentView is a comment with its author attached, as shown on the
// report detail page. Populated through the comment domain.
type CommentView struct {
	ID        uuid.UUID     `json:"id"`
	Body      string        `json:"body"`
	User      *user.Summary `json:"user"`
	CreatedAt time.Time     `json:"created_at"`
}

// Summary is a listing row: the report with its creator, images and
// vote count eagerly attached.
type Summary struct {
	*Report
	User       *user.Summary `json:"user"`
	AssignedTo *user.Summary `json:"assigned_to_user,omitempty"`
	Images     []ImageView   `json:"images"`
	VotesCount int           `json:"votes_count"`
}

// Detail is the full report view
type Detail struct {
	Summary
	Comments []CommentView `json:"comments"`
	HasVoted bool          `json:"has_voted"`
}
