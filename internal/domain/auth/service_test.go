package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cityfix/cityfix-api/internal/domain/user"
	"github.com/cityfix/cityfix-api/internal/pkg/jwt"
)

type stubUsers struct {
	byEmail map[string]*user.User
	created []*user.User
}

func newStubUsers() *stubUsers {
	return &stubUsers{byEmail: map[string]*user.User{}}
}

func (s *stubUsers) Create(_ context.Context, u *user.User) error {
	s.byEmail[u.Email] = u
	s.created = append(s.created, u)
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	return s.byEmail[email], nil
}

func (s *stubUsers) GetIdentity(_ context.Context, id uuid.UUID) (*user.Identity, error) {
	u, _ := s.GetByID(context.Background(), id)
	if u == nil {
		return nil, user.ErrUserNotFound
	}
	return &user.Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}, nil
}

func (s *stubUsers) ListGrants(context.Context, uuid.UUID) ([]user.Capability, error) {
	return nil, nil
}

func (s *stubUsers) GrantCapability(context.Context, uuid.UUID, user.Capability) error {
	return nil
}

func (s *stubUsers) RevokeCapability(context.Context, uuid.UUID, user.Capability) error {
	return nil
}

func (s *stubUsers) ListStaff(context.Context) ([]*user.Summary, error) {
	return nil, nil
}

func newTestService() (*Service, *stubUsers) {
	users := newStubUsers()
	return NewService(users, jwt.NewService("test-secret", 15*time.Minute)), users
}

func TestRegisterCreatesCitizen(t *testing.T) {
	service, users := newTestService()

	tokens, err := service.Register(context.Background(), &RegisterRequest{
		Name:     "Aidar",
		Email:    "Aidar@Example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens.AccessToken == "" {
		t.Error("expected access token")
	}
	if tokens.User.Role != user.RoleCitizen {
		t.Errorf("expected citizen role, got %s", tokens.User.Role)
	}
	if len(users.created) != 1 || users.created[0].Email != "aidar@example.com" {
		t.Error("expected email stored lowercased")
	}
	if users.created[0].PasswordHash == "correct horse" {
		t.Error("password must not be stored in the clear")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _ := newTestService()

	req := &RegisterRequest{Name: "Aidar", Email: "aidar@example.com", Password: "correct horse"}
	if _, err := service.Register(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.Register(context.Background(), req); err != ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	service, _ := newTestService()

	if _, err := service.Register(context.Background(), &RegisterRequest{
		Name:     "Aidar",
		Email:    "aidar@example.com",
		Password: "correct horse",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tokens, err := service.Login(context.Background(), &LoginRequest{
		Email:    "AIDAR@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if tokens.AccessToken == "" {
		t.Error("expected access token")
	}

	if _, err := service.Login(context.Background(), &LoginRequest{
		Email:    "aidar@example.com",
		Password: "wrong",
	}); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := service.Login(context.Background(), &LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	}); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
