package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines user data access
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetIdentity(ctx context.Context, id uuid.UUID) (*Identity, error)
	ListGrants(ctx context.Context, userID uuid.UUID) ([]Capability, error)
	GrantCapability(ctx context.Context, userID uuid.UUID, c Capability) error
	RevokeCapability(ctx context.Context, userID uuid.UUID, c Capability) error
	ListStaff(ctx context.Context) ([]*Summary, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT * FROM users WHERE id = $1`
	var u User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT * FROM users WHERE email = $1`
	var u User
	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetIdentity loads the acting principal: the user row plus their
// fine-grained capability grants.
func (r *repository) GetIdentity(ctx context.Context, id uuid.UUID) (*Identity, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	grants, err := r.ListGrants(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Identity{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Grants: grants,
	}, nil
}

func (r *repository) ListGrants(ctx context.Context, userID uuid.UUID) ([]Capability, error) {
	query := `SELECT capability FROM user_capabilities WHERE user_id = $1 ORDER BY capability`
	var grants []Capability
	err := r.db.SelectContext(ctx, &grants, query, userID)
	return grants, err
}

func (r *repository) GrantCapability(ctx context.Context, userID uuid.UUID, c Capability) error {
	query := `
		INSERT INTO user_capabilities (user_id, capability)
		VALUES ($1, $2)
		ON CONFLICT (user_id, capability) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, userID, c)
	return err
}

func (r *repository) RevokeCapability(ctx context.Context, userID uuid.UUID, c Capability) error {
	query := `DELETE FROM user_capabilities WHERE user_id = $1 AND capability = $2`
	_, err := r.db.ExecContext(ctx, query, userID, c)
	return err
}

// ListStaff returns users eligible for report assignment
func (r *repository) ListStaff(ctx context.Context) ([]*Summary, error) {
	query := `
		SELECT id, name, email FROM users
		WHERE role IN ('staff', 'admin')
		ORDER BY name
	`
	var staff []*Summary
	err := r.db.SelectContext(ctx, &staff, query)
	return staff, err
}
