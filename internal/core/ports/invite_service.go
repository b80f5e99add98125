package ports

import (
	"context"
	"time"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
)

// CreateInviteInput carries the admin-supplied fields for a new invite.
// The code is generated server-side.
type CreateInviteInput struct {
	RestrictedEmail   string
	GrantedSubTypes   []string
	LicenseValidUntil *time.Time
	ContractRef       string
}

// ClaimInviteInput is the caller-facing claim request.
type ClaimInviteInput struct {
	Caller      Caller
	Code        string
	DisplayName string // optional override for the stored display name
}

// ClaimInviteResult lets the caller reflect the outcome without a second read.
type ClaimInviteResult struct {
	InviteID          string
	TherapistTypes    []string
	LicenseValidUntil *time.Time
	ContractRef       string
}

// InviteService covers invite administration and the claim workflow.
type InviteService interface {
	Create(ctx context.Context, caller Caller, input CreateInviteInput) (*domain.Invite, error)
	List(ctx context.Context, caller Caller, status domain.InviteStatus) ([]*domain.Invite, error)
	Revoke(ctx context.Context, caller Caller, id string) error
	// Restore moves a revoked invite back to pending. Used invites stay used.
	Restore(ctx context.Context, caller Caller, id string) error
	Delete(ctx context.Context, caller Caller, id string) error
	// Claim converts a one-time invite code into the therapist role and a
	// populated profile for the caller.
	Claim(ctx context.Context, input ClaimInviteInput) (*ClaimInviteResult, error)
}
