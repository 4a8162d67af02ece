package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cityfix/cityfix-api/internal/domain/user"
	"github.com/cityfix/cityfix-api/internal/pkg/jwt"
	"github.com/cityfix/cityfix-api/internal/pkg/response"
)

type contextKey string

const identityKey contextKey = "identity"

// Auth returns middleware that validates the access token and resolves
// the full acting identity (role + fine-grained capability grants) from
// the database. Core services receive this identity explicitly; there
// is no ambient current-user lookup below this point.
func Auth(jwtService *jwt.Service, users user.Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, errMsg := resolveIdentity(r, jwtService, users)
			if identity == nil {
				response.Unauthorized(w, errMsg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// OptionalAuth resolves the identity when a valid token is present and
// passes the request through anonymously otherwise. Used by public
// endpoints that personalize their response (e.g. has_voted).
func OptionalAuth(jwtService *jwt.Service, users user.Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, _ := resolveIdentity(r, jwtService, users); identity != nil {
				r = r.WithContext(WithIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveIdentity(r *http.Request, jwtService *jwt.Service, users user.Repository) (*user.Identity, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, "Missing authorization header"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, "Invalid authorization header format"
	}

	claims, err := jwtService.ValidateAccessToken(parts[1])
	if err != nil {
		if err == jwt.ErrExpiredToken {
			return nil, "Token expired"
		}
		return nil, "Invalid token"
	}

	// Re-read the principal so role and grant changes take effect
	// immediately, not at token expiry.
	identity, err := users.GetIdentity(r.Context(), claims.UserID)
	if err != nil {
		return nil, "Account not found"
	}

	return identity, ""
}

// WithIdentity attaches the acting identity to a context
func WithIdentity(ctx context.Context, identity *user.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity extracts the acting identity from context.
// Returns nil for anonymous requests.
func GetIdentity(ctx context.Context) *user.Identity {
	if id, ok := ctx.Value(identityKey).(*user.Identity); ok {
		return id
	}
	return nil
}

// RequireRole returns middleware that gates on the coarse primary role
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity != nil {
				for _, role := range roles {
					if identity.Role == role {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			response.Forbidden(w, "Insufficient permissions")
		})
	}
}

// RequireCapability returns middleware that gates on a capability,
// resolved through both the role bundle and fine-grained grants.
func RequireCapability(c user.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetIdentity(r.Context()).Can(c) {
				response.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
