package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
	"github.com/habitdesk/habitdesk-api/internal/pkg/id"
)

// Auditor records privileged mutations asynchronously.
type Auditor interface {
	Record(e domain.AuditEvent)
}

// InviteService implements invite administration and the claim workflow.
type InviteService struct {
	invites  ports.InviteRepository
	users    ports.UserRepository
	sessions SessionStore
	audit    Auditor
	log      zerolog.Logger
}

func NewInviteService(
	invites ports.InviteRepository,
	users ports.UserRepository,
	sessions SessionStore,
	audit Auditor,
	log zerolog.Logger,
) *InviteService {
	return &InviteService{invites: invites, users: users, sessions: sessions, audit: audit, log: log}
}

// Create issues a new pending invite with a generated code. Admin only.
func (s *InviteService) Create(ctx context.Context, caller ports.Caller, input ports.CreateInviteInput) (*domain.Invite, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if len(input.GrantedSubTypes) == 0 {
		return nil, fmt.Errorf("%w: at least one sub-type must be granted", domain.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	invite := &domain.Invite{
		ID:                id.New(),
		Code:              id.InviteCode(),
		Status:            domain.InviteStatusPending,
		RestrictedEmail:   strings.TrimSpace(strings.ToLower(input.RestrictedEmail)),
		GrantedSubTypes:   input.GrantedSubTypes,
		LicenseValidUntil: input.LicenseValidUntil,
		ContractRef:       input.ContractRef,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, err
	}

	s.log.Info().Str("invite_id", invite.ID).Strs("sub_types", invite.GrantedSubTypes).Msg("invite created")
	return invite, nil
}

// List returns invites, optionally filtered by status. Admin only.
func (s *InviteService) List(ctx context.Context, caller ports.Caller, status domain.InviteStatus) ([]*domain.Invite, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.invites.List(ctx, status)
}

// Revoke moves a pending invite to revoked. Admin only.
func (s *InviteService) Revoke(ctx context.Context, caller ports.Caller, inviteID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.invites.SetStatus(ctx, inviteID, domain.InviteStatusPending, domain.InviteStatusRevoked); err != nil {
		return err
	}
	s.audit.Record(domain.AuditEvent{
		Action:     domain.AuditInviteRevoked,
		ActorUID:   caller.UID,
		SubjectUID: caller.UID,
		Detail:     map[string]string{"invite_id": inviteID},
		Timestamp:  time.Now().UTC(),
	})
	return nil
}

// Restore moves a revoked invite back to pending. Used invites stay used.
func (s *InviteService) Restore(ctx context.Context, caller ports.Caller, inviteID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.invites.SetStatus(ctx, inviteID, domain.InviteStatusRevoked, domain.InviteStatusPending)
}

// Delete removes an invite record entirely. Admin only.
func (s *InviteService) Delete(ctx context.Context, caller ports.Caller, inviteID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.invites.Delete(ctx, inviteID)
}

// Claim converts a one-time invite code into the therapist role and a
// populated profile for the caller.
func (s *InviteService) Claim(ctx context.Context, input ports.ClaimInviteInput) (*ports.ClaimInviteResult, error) {
	// 1. Caller must be authenticated.
	if input.Caller.UID == "" {
		return nil, domain.ErrUnauthenticated
	}

	// 2. A trimmed, non-empty code is required.
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, domain.ErrInviteCodeRequired
	}

	// 3. Exact-match lookup, case-sensitive.
	invite, err := s.invites.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	// 4. Only pending invites are claimable.
	if err := invite.ClaimableErr(); err != nil {
		return nil, err
	}

	// 5. Email restriction, case-insensitive, skipped when either side
	// lacks an email.
	if !invite.EmailAllowed(input.Caller.Email) {
		return nil, domain.ErrInviteEmailMismatch
	}

	// 6. Commit: a single conditional update guarded on pending status.
	// Exactly one of N concurrent claimers can win; losers surface the
	// same error as an already-used invite.
	now := time.Now().UTC()
	if err := s.invites.Claim(ctx, invite.ID, input.Caller.UID, now); err != nil {
		return nil, err
	}

	// 7. Merge the therapist role and invite metadata into the profile.
	// On failure the invite is released back to pending so the code is
	// not stranded.
	grant := ports.InviteGrant{
		DisplayName:       strings.TrimSpace(input.DisplayName),
		TherapistTypes:    invite.GrantedSubTypes,
		LicenseValidUntil: invite.LicenseValidUntil,
		ContractRef:       invite.ContractRef,
		InviteID:          invite.ID,
	}
	if err := s.users.ApplyInviteGrant(ctx, input.Caller.UID, grant); err != nil {
		if relErr := s.invites.Release(ctx, invite.ID); relErr != nil {
			s.log.Error().Err(relErr).Str("invite_id", invite.ID).Msg("failed to release invite after profile write failure")
		}
		return nil, fmt.Errorf("claim invite: apply grant: %w", err)
	}

	// 8. Revoke outstanding sessions so the next token carries the new
	// claims, and record the audit trail.
	if _, err := s.sessions.Bump(ctx, input.Caller.UID); err != nil {
		s.log.Warn().Err(err).Str("uid", input.Caller.UID).Msg("failed to bump claims epoch after claim")
	}

	s.audit.Record(domain.AuditEvent{
		Action:     domain.AuditInviteClaimed,
		ActorUID:   input.Caller.UID,
		SubjectUID: input.Caller.UID,
		Detail: map[string]string{
			"invite_id": invite.ID,
			"sub_types": strings.Join(invite.GrantedSubTypes, ","),
		},
		Timestamp: now,
	})

	s.log.Info().
		Str("uid", input.Caller.UID).
		Str("invite_id", invite.ID).
		Strs("sub_types", invite.GrantedSubTypes).
		Msg("invite claimed")

	return &ports.ClaimInviteResult{
		InviteID:          invite.ID,
		TherapistTypes:    invite.GrantedSubTypes,
		LicenseValidUntil: invite.LicenseValidUntil,
		ContractRef:       invite.ContractRef,
	}, nil
}

func requireAdmin(caller ports.Caller) error {
	if caller.UID == "" {
		return domain.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return domain.ErrPermissionDenied
	}
	return nil
}
