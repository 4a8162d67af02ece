package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cityfix/cityfix-api/internal/domain/user"
	"github.com/cityfix/cityfix-api/internal/pkg/jwt"
	"github.com/cityfix/cityfix-api/internal/pkg/password"
)

// Service handles authentication
type Service struct {
	users user.Repository
	jwt   *jwt.Service
}

// NewService creates auth service
func NewService(users user.Repository, jwtService *jwt.Service) *Service {
	return &Service{users: users, jwt: jwtService}
}

// Register creates a citizen account. Staff and admin accounts are
// not self-service; they are provisioned directly.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleCitizen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	return s.issueToken(u)
}

// Login authenticates by email and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	// Verify against a miss too, so a lookup hit and miss take the
	// same time.
	if u == nil {
		password.Verify(req.Password, "$2a$12$AAAAAAAAAAAAAAAAAAAAAOAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
		return nil, ErrInvalidCredentials
	}
	if !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(u)
}

func (s *Service) issueToken(u *user.User) (*TokenResponse, error) {
	token, err := s.jwt.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: token, User: u}, nil
}
