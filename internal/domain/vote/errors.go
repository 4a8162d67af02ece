package vote

import "errors"

var (
	ErrReportNotFound = errors.New("report not found")
	ErrNotAllowed     = errors.New("operation not allowed")
)
