package ports

import (
	"context"
	"time"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
)

// InviteRepository defines persistence for therapist invites.
//
// Claim and SetStatus are conditional writes: the status filter is part of
// the update so concurrent claimers or revokers cannot both win.
type InviteRepository interface {
	Create(ctx context.Context, invite *domain.Invite) error
	FindByID(ctx context.Context, id string) (*domain.Invite, error)
	// FindByCode matches the code exactly (case-sensitive, first match).
	FindByCode(ctx context.Context, code string) (*domain.Invite, error)
	// List returns invites, optionally filtered by status.
	List(ctx context.Context, status domain.InviteStatus) ([]*domain.Invite, error)
	// Claim atomically moves a pending invite to used, stamping the assigned
	// uid and used-at time. Returns domain.ErrInviteNotClaimable when the
	// invite is no longer pending (including a lost race).
	Claim(ctx context.Context, id, uid string, at time.Time) error
	// Release moves a used invite back to pending, clearing the assignment.
	// Compensation path for a failed profile write after a claim.
	Release(ctx context.Context, id string) error
	// SetStatus moves an invite from one status to another, failing with
	// domain.ErrInviteNotClaimable when the current status differs from from.
	SetStatus(ctx context.Context, id string, from, to domain.InviteStatus) error
	Delete(ctx context.Context, id string) error
}
