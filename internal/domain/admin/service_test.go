package admin

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/cityfix/cityfix-api/internal/domain/activity"
	"github.com/cityfix/cityfix-api/internal/domain/user"
)

type stubRepo struct {
	existing   map[uuid.UUID]bool
	assigned   map[uuid.UUID]uuid.NullUUID
	statuses   map[uuid.UUID]string
	deletedIDs []uuid.UUID
	blobPaths  []string
	stats      *Stats
	statsCalls int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		existing: map[uuid.UUID]bool{},
		assigned: map[uuid.UUID]uuid.NullUUID{},
		statuses: map[uuid.UUID]string{},
	}
}

func (s *stubRepo) Assign(_ context.Context, reportID uuid.UUID, assignedTo uuid.NullUUID) error {
	if !s.existing[reportID] {
		return ErrReportNotFound
	}
	s.assigned[reportID] = assignedTo
	return nil
}

func (s *stubRepo) ExistingIDs(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	var found []uuid.UUID
	for _, id := range ids {
		if s.existing[id] {
			found = append(found, id)
		}
	}
	return found, nil
}

func (s *stubRepo) StatusesFor(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := map[uuid.UUID]string{}
	for _, id := range ids {
		if s.existing[id] {
			status := s.statuses[id]
			if status == "" {
				status = "pending"
			}
			out[id] = status
		}
	}
	return out, nil
}

func (s *stubRepo) BulkUpdateStatus(_ context.Context, ids []uuid.UUID, status string) (int, error) {
	for _, id := range ids {
		s.statuses[id] = status
	}
	return len(ids), nil
}

func (s *stubRepo) BulkAssign(_ context.Context, ids []uuid.UUID, assignedTo uuid.NullUUID) (int, error) {
	for _, id := range ids {
		s.assigned[id] = assignedTo
	}
	return len(ids), nil
}

func (s *stubRepo) BulkDeleteCascade(_ context.Context, ids []uuid.UUID) (int, []string, error) {
	s.deletedIDs = append(s.deletedIDs, ids...)
	return len(ids), s.blobPaths, nil
}

func (s *stubRepo) Stats(context.Context) (*Stats, error) {
	s.statsCalls++
	return s.stats, nil
}

type stubUsers struct {
	user.Repository
	byID map[uuid.UUID]*user.User
}

func (s *stubUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return s.byID[id], nil
}

func (s *stubUsers) ListStaff(context.Context) ([]*user.Summary, error) {
	var out []*user.Summary
	for _, u := range s.byID {
		if u.CanTriage() {
			out = append(out, &user.Summary{ID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	return out, nil
}

type stubStorage struct {
	deleted []string
}

func (s *stubStorage) Save(context.Context, string, io.Reader, string) error { return nil }
func (s *stubStorage) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}
func (s *stubStorage) GetURL(key string) string { return "/files/" + key }

type stubRecorder struct {
	actions []activity.Action
}

func (s *stubRecorder) Record(_ context.Context, _ uuid.UUID, action activity.Action, _ activity.SubjectType, _ uuid.UUID, _ map[string]interface{}) {
	s.actions = append(s.actions, action)
}

func admin() *user.Identity {
	return &user.Identity{ID: uuid.New(), Role: user.RoleAdmin}
}

func newTestService(repo *stubRepo, users *stubUsers, store *stubStorage, recorder *stubRecorder) *Service {
	return NewService(repo, nil, nil, users, store, recorder, nil, 0)
}

func TestAssignValidatesTarget(t *testing.T) {
	repo := newStubRepo()
	reportID := uuid.New()
	repo.existing[reportID] = true

	staffMember := &user.User{ID: uuid.New(), Role: user.RoleStaff}
	citizenUser := &user.User{ID: uuid.New(), Role: user.RoleCitizen}
	users := &stubUsers{byID: map[uuid.UUID]*user.User{
		staffMember.ID: staffMember,
		citizenUser.ID: citizenUser,
	}}
	recorder := &stubRecorder{}
	service := newTestService(repo, users, &stubStorage{}, recorder)

	if err := service.Assign(context.Background(), admin(), reportID, &citizenUser.ID); err != ErrInvalidAssignee {
		t.Errorf("expected ErrInvalidAssignee for citizen target, got %v", err)
	}

	if err := service.Assign(context.Background(), admin(), reportID, &staffMember.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.assigned[reportID]; !got.Valid || got.UUID != staffMember.ID {
		t.Error("expected report assigned to staff member")
	}

	// null target unassigns
	if err := service.Assign(context.Background(), admin(), reportID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.assigned[reportID].Valid {
		t.Error("expected report unassigned")
	}

	if len(recorder.actions) != 2 {
		t.Errorf("expected two assignment records, got %d", len(recorder.actions))
	}
}

func TestAssignRequiresCapability(t *testing.T) {
	service := newTestService(newStubRepo(), &stubUsers{byID: map[uuid.UUID]*user.User{}}, &stubStorage{}, &stubRecorder{})

	citizen := &user.Identity{ID: uuid.New(), Role: user.RoleCitizen}
	if err := service.Assign(context.Background(), citizen, uuid.New(), nil); err != ErrNotAllowed {
		t.Errorf("expected ErrNotAllowed, got %v", err)
	}
}

func TestBulkStatusAllOrNothing(t *testing.T) {
	repo := newStubRepo()
	existing := uuid.New()
	repo.existing[existing] = true
	service := newTestService(repo, &stubUsers{byID: map[uuid.UUID]*user.User{}}, &stubStorage{}, &stubRecorder{})

	_, err := service.BulkStatus(context.Background(), admin(), &BulkStatusRequest{
		IDs:    []uuid.UUID{existing, uuid.New()},
		Status: "resolved",
	})
	if err != ErrReportsMissing {
		t.Errorf("expected ErrReportsMissing, got %v", err)
	}
	if len(repo.statuses) != 0 {
		t.Error("expected no status changes when an ID is missing")
	}

	result, err := service.BulkStatus(context.Background(), admin(), &BulkStatusRequest{
		IDs:    []uuid.UUID{existing},
		Status: "resolved",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Affected != 1 || repo.statuses[existing] != "resolved" {
		t.Error("expected status applied to existing report")
	}
}

func TestBulkDeleteRequiresDeleteAll(t *testing.T) {
	repo := newStubRepo()
	service := newTestService(repo, &stubUsers{byID: map[uuid.UUID]*user.User{}}, &stubStorage{}, &stubRecorder{})

	// staff holds change_status but not delete_all
	staff := &user.Identity{ID: uuid.New(), Role: user.RoleStaff}
	if _, err := service.BulkDelete(context.Background(), staff, &BulkDeleteRequest{IDs: []uuid.UUID{uuid.New()}}); err != ErrNotAllowed {
		t.Errorf("expected ErrNotAllowed for staff without grant, got %v", err)
	}

	// fine-grained grant opens the gate without a role change
	granted := &user.Identity{ID: uuid.New(), Role: user.RoleStaff, Grants: []user.Capability{user.CapReportsDeleteAll}}
	id := uuid.New()
	repo.existing[id] = true
	if _, err := service.BulkDelete(context.Background(), granted, &BulkDeleteRequest{IDs: []uuid.UUID{id}}); err != nil {
		t.Errorf("expected granted staff to run bulk delete, got %v", err)
	}
}

func TestBulkDeleteReleasesBlobs(t *testing.T) {
	repo := newStubRepo()
	id := uuid.New()
	repo.existing[id] = true
	repo.blobPaths = []string{"reports/a/b.jpg", "reports/a/b_thumb.jpg"}
	store := &stubStorage{}
	service := newTestService(repo, &stubUsers{byID: map[uuid.UUID]*user.User{}}, store, &stubRecorder{})

	result, err := service.BulkDelete(context.Background(), admin(), &BulkDeleteRequest{IDs: []uuid.UUID{id}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Affected != 1 {
		t.Errorf("expected one affected row, got %d", result.Affected)
	}
	if len(store.deleted) != 2 {
		t.Errorf("expected both blobs released, got %v", store.deleted)
	}
}

func TestStatsRequiresCapability(t *testing.T) {
	repo := newStubRepo()
	repo.stats = &Stats{TotalReports: 3}
	service := newTestService(repo, &stubUsers{byID: map[uuid.UUID]*user.User{}}, &stubStorage{}, &stubRecorder{})

	citizen := &user.Identity{ID: uuid.New(), Role: user.RoleCitizen}
	if _, err := service.Stats(context.Background(), citizen); err != ErrNotAllowed {
		t.Errorf("expected ErrNotAllowed, got %v", err)
	}

	staff := &user.Identity{ID: uuid.New(), Role: user.RoleStaff}
	stats, err := service.Stats(context.Background(), staff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalReports != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
