package ports

import (
	"context"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
)

// AuthService implements registration and login against the user store.
type AuthService interface {
	// Register creates a user seeded with the patient role.
	Register(ctx context.Context, email, password, displayName string) (*domain.User, error)
	// Login verifies credentials and returns a signed token plus the user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// RoleService covers the role-mutation RPC surface.
type RoleService interface {
	// SetUserRole assigns role to the target uid. Only admins may call it;
	// the target's sessions are invalidated on success.
	SetUserRole(ctx context.Context, caller Caller, uid, role string) error
	// EnsureDefaultRole returns the caller's role, assigning patient when no
	// role is set. Idempotent.
	EnsureDefaultRole(ctx context.Context, caller Caller) (string, error)
}

// Caller identifies the authenticated actor behind a request, as extracted
// from the verified token by the transport layer.
type Caller struct {
	UID            string
	Email          string
	Role           string
	TherapistTypes []string
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool { return c.Role == "admin" }

// HasSubType reports whether the caller's granted sub-types include t.
func (c Caller) HasSubType(t string) bool {
	for _, tt := range c.TherapistTypes {
		if tt == t {
			return true
		}
	}
	return false
}
