package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
)

// RoleService implements the role-mutation RPC surface.
type RoleService struct {
	users    ports.UserRepository
	sessions SessionStore
	audit    Auditor
	log      zerolog.Logger
}

func NewRoleService(users ports.UserRepository, sessions SessionStore, audit Auditor, log zerolog.Logger) *RoleService {
	return &RoleService{users: users, sessions: sessions, audit: audit, log: log}
}

// SetUserRole assigns role to the target uid. Only admins may call it,
// regardless of target or role validity. The target's outstanding sessions
// are invalidated so the next token carries the new claims.
func (s *RoleService) SetUserRole(ctx context.Context, caller ports.Caller, uid, role string) error {
	if caller.UID == "" {
		return domain.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return domain.ErrPermissionDenied
	}
	if uid == "" {
		return fmt.Errorf("%w: target uid is required", domain.ErrInvalidArgument)
	}
	if !domain.ValidRole(role) {
		return domain.ErrInvalidRole
	}

	if _, err := s.users.FindByID(ctx, uid); err != nil {
		return err
	}

	if err := s.users.UpdateRole(ctx, uid, role); err != nil {
		return err
	}

	if _, err := s.sessions.Bump(ctx, uid); err != nil {
		s.log.Warn().Err(err).Str("uid", uid).Msg("failed to bump claims epoch after role change")
	}

	s.audit.Record(domain.AuditEvent{
		Action:     domain.AuditRoleChanged,
		ActorUID:   caller.UID,
		SubjectUID: uid,
		Detail:     map[string]string{"role": role},
		Timestamp:  time.Now().UTC(),
	})

	s.log.Info().Str("uid", uid).Str("role", role).Str("actor", caller.UID).Msg("role updated")
	return nil
}

// EnsureDefaultRole returns the caller's current role, assigning patient
// when no role is set. Safe to call repeatedly.
func (s *RoleService) EnsureDefaultRole(ctx context.Context, caller ports.Caller) (string, error) {
	if caller.UID == "" {
		return "", domain.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, caller.UID)
	if err != nil {
		return "", err
	}
	if user.Role != "" {
		return user.Role, nil
	}

	if err := s.users.UpdateRole(ctx, caller.UID, domain.RolePatient); err != nil {
		return "", err
	}
	return domain.RolePatient, nil
}
