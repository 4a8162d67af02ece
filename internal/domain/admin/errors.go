package admin

import "errors"

var (
	ErrNotAllowed      = errors.New("operation not allowed")
	ErrReportNotFound  = errors.New("report not found")
	ErrReportsMissing  = errors.New("one or more reports do not exist")
	ErrInvalidAssignee = errors.New("assignee must be a staff or admin account")
)
