package report

import "errors"

var (
	ErrReportNotFound = errors.New("report not found")
	ErrNotAllowed     = errors.New("operation not allowed")
	ErrTooManyImages  = errors.New("too many images attached")
)
