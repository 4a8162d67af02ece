package comment

import "errors"

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrReportNotFound  = errors.New("report not found")
	ErrNotAllowed      = errors.New("operation not allowed")
)
