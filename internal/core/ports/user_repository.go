package ports

import (
	"context"
	"time"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
)

// InviteGrant carries the profile fields written when an invite is claimed.
type InviteGrant struct {
	DisplayName       string // empty = keep stored display name
	TherapistTypes    []string
	LicenseValidUntil *time.Time
	ContractRef       string
	InviteID          string
}

// UserRepository defines persistence for user profiles and claims.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, uid string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateRole sets the user's role, clearing therapist sub-types when the
	// new role is not therapist.
	UpdateRole(ctx context.Context, uid, role string) error
	// ApplyInviteGrant merges the therapist role and invite-derived metadata
	// into the user document.
	ApplyInviteGrant(ctx context.Context, uid string, grant InviteGrant) error
	ListAll(ctx context.Context) ([]*domain.User, error)
}
