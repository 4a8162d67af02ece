package report

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// Filter validation runs before the service is consulted, so the
// handler can be exercised without one.
func TestListRejectsUnknownCategory(t *testing.T) {
	h := NewHandler(nil, 10, 5)

	req := httptest.NewRequest(http.MethodGet, "/?category=bogus", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown category, got %d", rec.Code)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	h := NewHandler(nil, 10, 5)

	req := httptest.NewRequest(http.MethodGet, "/?status=bogus", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", rec.Code)
	}
}
