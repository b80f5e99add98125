package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
)

// stubUserRepo is an in-memory ports.UserRepository.
type stubUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	failGrant bool
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) put(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *u
	r.users[u.ID] = &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	clone := *user
	if clone.ID == "" {
		clone.ID = "uid-" + user.Email
	}
	r.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, uid string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateRole(_ context.Context, uid, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	if role != domain.RoleTherapist {
		u.TherapistTypes = nil
	}
	return nil
}

func (r *stubUserRepo) ApplyInviteGrant(_ context.Context, uid string, grant ports.InviteGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGrant {
		return errors.New("grant write failed")
	}
	u, ok := r.users[uid]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = domain.RoleTherapist
	u.TherapistTypes = grant.TherapistTypes
	u.LicenseValidUntil = grant.LicenseValidUntil
	u.ContractRef = grant.ContractRef
	u.InviteID = grant.InviteID
	if grant.DisplayName != "" {
		u.DisplayName = grant.DisplayName
	}
	return nil
}

func (r *stubUserRepo) ListAll(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

// stubInviteRepo is an in-memory ports.InviteRepository. Claim and
// SetStatus hold the mutex across check and update, mirroring the
// conditional-write guarantee of the real repository.
type stubInviteRepo struct {
	mu      sync.Mutex
	invites map[string]*domain.Invite
}

func newStubInviteRepo() *stubInviteRepo {
	return &stubInviteRepo{invites: make(map[string]*domain.Invite)}
}

func (r *stubInviteRepo) put(i *domain.Invite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *i
	r.invites[i.ID] = &clone
}

func (r *stubInviteRepo) get(id string) *domain.Invite {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.invites[id]
	if !ok {
		return nil
	}
	clone := *i
	return &clone
}

func (r *stubInviteRepo) Create(_ context.Context, invite *domain.Invite) error {
	r.put(invite)
	return nil
}

func (r *stubInviteRepo) FindByID(_ context.Context, id string) (*domain.Invite, error) {
	i := r.get(id)
	if i == nil {
		return nil, domain.ErrInviteNotFound
	}
	return i, nil
}

func (r *stubInviteRepo) FindByCode(_ context.Context, code string) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.invites {
		if i.Code == code {
			clone := *i
			return &clone, nil
		}
	}
	return nil, domain.ErrInviteNotFound
}

func (r *stubInviteRepo) List(_ context.Context, status domain.InviteStatus) ([]*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Invite, 0, len(r.invites))
	for _, i := range r.invites {
		if status != "" && i.Status != status {
			continue
		}
		clone := *i
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubInviteRepo) Claim(_ context.Context, id, uid string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.invites[id]
	if !ok || i.Status != domain.InviteStatusPending {
		return domain.ErrInviteNotClaimable
	}
	i.Status = domain.InviteStatusUsed
	i.AssignedUID = uid
	i.UsedAt = &at
	i.UpdatedAt = at
	return nil
}

func (r *stubInviteRepo) Release(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.invites[id]
	if !ok || i.Status != domain.InviteStatusUsed {
		return domain.ErrInviteNotClaimable
	}
	i.Status = domain.InviteStatusPending
	i.AssignedUID = ""
	i.UsedAt = nil
	return nil
}

func (r *stubInviteRepo) SetStatus(_ context.Context, id string, from, to domain.InviteStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.invites[id]
	if !ok {
		return domain.ErrInviteNotFound
	}
	if i.Status != from {
		return domain.ErrInviteNotClaimable
	}
	i.Status = to
	return nil
}

func (r *stubInviteRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invites, id)
	return nil
}

// stubSessions is an in-memory SessionStore.
type stubSessions struct {
	mu     sync.Mutex
	epochs map[string]int64
	fail   bool
}

func newStubSessions() *stubSessions {
	return &stubSessions{epochs: make(map[string]int64)}
}

func (s *stubSessions) Epoch(_ context.Context, uid string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return 0, errors.New("session store down")
	}
	return s.epochs[uid], nil
}

func (s *stubSessions) Bump(_ context.Context, uid string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return 0, errors.New("session store down")
	}
	s.epochs[uid]++
	return s.epochs[uid], nil
}

// stubAuditor collects recorded events.
type stubAuditor struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *stubAuditor) Record(e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *stubAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.events))
	for i, e := range a.events {
		out[i] = e.Action
	}
	return out
}
