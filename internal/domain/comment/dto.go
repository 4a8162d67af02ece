package comment

import (
	"time"

	"github.com/google/uuid"

	"github.com/cityfix/cityfix-api/internal/domain/user"
)

// CreateRequest is a new comment body
type CreateRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

// View is a comment with its author attached
type View struct {
	ID        uuid.UUID     `json:"id"`
	ReportID  uuid.UUID     `json:"report_id"`
	Body      string        `json:"body"`
	User      *user.Summary `json:"user"`
	CreatedAt time.Time     `json:"created_at"`
}
