package report

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cityfix/cityfix-api/internal/domain/activity"
	"github.com/cityfix/cityfix-api/internal/domain/user"
	"github.com/cityfix/cityfix-api/internal/pkg/imaging"
)

type stubRepo struct {
	reports map[uuid.UUID]*Report
	images  map[uuid.UUID][]*Image
	authors map[uuid.UUID]*user.Summary
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		reports: map[uuid.UUID]*Report{},
		images:  map[uuid.UUID][]*Image{},
		authors: map[uuid.UUID]*user.Summary{},
	}
}

func (s *stubRepo) CreateWithImages(_ context.Context, rep *Report, images []*Image) error {
	s.reports[rep.ID] = rep
	s.images[rep.ID] = images
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*Report, error) {
	return s.reports[id], nil
}

func (s *stubRepo) GetRow(_ context.Context, id uuid.UUID) (*Row, error) {
	rep := s.reports[id]
	if rep == nil {
		return nil, nil
	}
	return s.row(rep), nil
}

func (s *stubRepo) row(rep *Report) *Row {
	row := &Row{Report: *rep, AuthorName: "Unknown", AuthorEmail: "unknown@example.com"}
	if author := s.authors[rep.UserID]; author != nil {
		row.AuthorName, row.AuthorEmail = author.Name, author.Email
	}
	return row
}

func (s *stubRepo) List(_ context.Context, _ ListQuery) ([]*Row, int, error) {
	var rows []*Row
	for _, rep := range s.reports {
		rows = append(rows, s.row(rep))
	}
	return rows, len(rows), nil
}

func (s *stubRepo) ListImages(_ context.Context, reportID uuid.UUID) ([]*Image, error) {
	return s.images[reportID], nil
}

func (s *stubRepo) ListImagesForReports(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]*Image, error) {
	out := map[uuid.UUID][]*Image{}
	for _, id := range ids {
		if imgs := s.images[id]; imgs != nil {
			out[id] = imgs
		}
	}
	return out, nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	rep := s.reports[id]
	if rep == nil {
		return ErrReportNotFound
	}
	rep.Status = status
	return nil
}

func (s *stubRepo) DeleteCascade(_ context.Context, id uuid.UUID) ([]string, error) {
	if s.reports[id] == nil {
		return nil, ErrReportNotFound
	}
	var paths []string
	for _, img := range s.images[id] {
		paths = append(paths, img.Path, img.ThumbPath)
	}
	delete(s.reports, id)
	delete(s.images, id)
	return paths, nil
}

type stubStorage struct {
	saved   map[string][]byte
	deleted []string
}

func newStubStorage() *stubStorage {
	return &stubStorage{saved: map[string][]byte{}}
}

func (s *stubStorage) Save(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.saved[key] = data
	return nil
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	delete(s.saved, key)
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

type stubComments struct {
	views []CommentView
}

func (s *stubComments) ListForReport(context.Context, uuid.UUID) ([]CommentView, error) {
	return s.views, nil
}

type stubVotes struct {
	voted map[uuid.UUID]bool
}

func (s *stubVotes) HasVoted(_ context.Context, _ uuid.UUID, userID uuid.UUID) (bool, error) {
	return s.voted[userID], nil
}

type fixture struct {
	repo     *stubRepo
	store    *stubStorage
	recorder *stubRecorder
	votes    *stubVotes
	service  *Service
}

func newFixture() *fixture {
	repo := newStubRepo()
	store := newStubStorage()
	recorder := &stubRecorder{}
	votes := &stubVotes{voted: map[uuid.UUID]bool{}}
	service := NewService(repo, store, imaging.NewProcessor(imaging.DefaultConfig()), recorder, &stubComments{}, votes, 5)
	return &fixture{repo: repo, store: store, recorder: recorder, votes: votes, service: service}
}

func citizen() *user.Identity {
	return &user.Identity{ID: uuid.New(), Name: "Test User", Email: "test@example.com", Role: user.RoleCitizen}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func validCreate() *CreateRequest {
	return &CreateRequest{
		Title:       "Broken streetlight",
		Description: "The lamp at the corner has been dark for a week",
		Category:    "lighting",
	}
}

func TestCreateStoresImagePairs(t *testing.T) {
	f := newFixture()

	summary, err := f.service.Create(context.Background(), citizen(), validCreate(), []Upload{{Data: pngBytes(t)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Status != StatusPending {
		t.Errorf("expected new report pending, got %s", summary.Status)
	}
	if len(summary.Images) != 1 {
		t.Fatalf("expected one image, got %d", len(summary.Images))
	}
	// original plus thumbnail
	if len(f.store.saved) != 2 {
		t.Errorf("expected two stored blobs, got %d", len(f.store.saved))
	}
	if len(f.recorder.actions) != 1 || f.recorder.actions[0] != activity.ActionReportCreated {
		t.Errorf("unexpected recorded actions: %v", f.recorder.actions)
	}
}

func TestCreateAnonymousDenied(t *testing.T) {
	f := newFixture()

	if _, err := f.service.Create(context.Background(), nil, validCreate(), nil); err != ErrNotAllowed {
		t.Errorf("expected ErrNotAllowed for anonymous create, got %v", err)
	}
}

func TestCreateTooManyImages(t *testing.T) {
	f := newFixture()

	uploads := make([]Upload, 6)
	for i := range uploads {
		uploads[i] = Upload{Data: pngBytes(t)}
	}
	if _, err := f.service.Create(context.Background(), citizen(), validCreate(), uploads); err != ErrTooManyImages {
		t.Errorf("expected ErrTooManyImages, got %v", err)
	}
}

func TestGetPersonalizesHasVoted(t *testing.T) {
	f := newFixture()

	actor := citizen()
	summary, err := f.service.Create(context.Background(), actor, validCreate(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.votes.voted[actor.ID] = true

	detail, err := f.service.Get(context.Background(), actor, summary.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !detail.HasVoted {
		t.Error("expected has_voted for the voting caller")
	}

	detail, err = f.service.Get(context.Background(), nil, summary.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.HasVoted {
		t.Error("expected has_voted false for anonymous caller")
	}
}

func TestGetUnknownReport(t *testing.T) {
	f := newFixture()

	if _, err := f.service.Get(context.Background(), nil, uuid.New()); err != ErrReportNotFound {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
}

func TestUpdateStatusRequiresCapability(t *testing.T) {
	f := newFixture()

	author := citizen()
	summary, err := f.service.Create(context.Background(), author, validCreate(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the author cannot move their own report through the lifecycle
	if _, err := f.service.UpdateStatus(context.Background(), author, summary.ID, StatusResolved); err != ErrNotAllowed {
		t.Errorf("expected ErrNotAllowed for citizen, got %v", err)
	}

	staff := &user.Identity{ID: uuid.New(), Role: user.RoleStaff}
	rep, err := f.service.UpdateStatus(context.Background(), staff, summary.ID, StatusAssessed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Status != StatusAssessed {
		t.Errorf("expected assessed, got %s", rep.Status)
	}

	// no transition table: resolved straight from assessed is fine,
	// and so is moving it back
	if _, err := f.service.UpdateStatus(context.Background(), staff, summary.ID, StatusResolved); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := f.service.UpdateStatus(context.Background(), staff, summary.ID, StatusPending); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDeleteOwnerAndModerator(t *testing.T) {
	f := newFixture()

	author := citizen()
	summary, err := f.service.Create(context.Background(), author, validCreate(), []Upload{{Data: pngBytes(t)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := citizen()
	if err := f.service.Delete(context.Background(), other, summary.ID); err != ErrNotAllowed {
		t.Errorf("expected ErrNotAllowed for foreign citizen, got %v", err)
	}

	if err := f.service.Delete(context.Background(), author, summary.ID); err != nil {
		t.Fatalf("expected owner delete to succeed, got %v", err)
	}
	if len(f.store.deleted) != 2 {
		t.Errorf("expected both blobs released, got %v", f.store.deleted)
	}

	// admin deletes someone else's report
	summary, err = f.service.Create(context.Background(), author, validCreate(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	adminUser := &user.Identity{ID: uuid.New(), Role: user.RoleAdmin}
	if err := f.service.Delete(context.Background(), adminUser, summary.ID); err != nil {
		t.Errorf("expected admin delete to succeed, got %v", err)
	}
}

func TestListPaging(t *testing.T) {
	f := newFixture()

	actor := citizen()
	for i := 0; i < 3; i++ {
		if _, err := f.service.Create(context.Background(), actor, validCreate(), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	summaries, total, err := f.service.List(context.Background(), ListFilter{Page: 1, Sort: SortNewest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(summaries) != 3 {
		t.Errorf("expected 3 reports, got total=%d len=%d", total, len(summaries))
	}
	for _, s := range summaries {
		if s.User == nil {
			t.Error("expected author attached to each summary")
		}
		if time.Since(s.CreatedAt) > time.Minute {
			t.Error("unexpected created_at")
		}
	}
}
