package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
)

func newInviteFixture() (*InviteService, *stubInviteRepo, *stubUserRepo, *stubSessions, *stubAuditor) {
	invites := newStubInviteRepo()
	users := newStubUserRepo()
	sessions := newStubSessions()
	audit := &stubAuditor{}
	svc := NewInviteService(invites, users, sessions, audit, zerolog.Nop())
	return svc, invites, users, sessions, audit
}

func pendingInvite(id, code string) *domain.Invite {
	now := time.Now().UTC()
	return &domain.Invite{
		ID:              id,
		Code:            code,
		Status:          domain.InviteStatusPending,
		GrantedSubTypes: []string{"physiotherapie"},
		ContractRef:     "contract-7",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestInviteClaim_Unauthenticated(t *testing.T) {
	svc, _, _, _, _ := newInviteFixture()

	_, err := svc.Claim(context.Background(), ports.ClaimInviteInput{Code: "ABC"})
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestInviteClaim_EmptyCode(t *testing.T) {
	svc, _, _, _, _ := newInviteFixture()

	_, err := svc.Claim(context.Background(), ports.ClaimInviteInput{
		Caller: ports.Caller{UID: "u1"},
		Code:   "   ",
	})
	if !errors.Is(err, domain.ErrInviteCodeRequired) {
		t.Fatalf("expected ErrInviteCodeRequired, got %v", err)
	}
}

func TestInviteClaim_UnknownCode(t *testing.T) {
	svc, invites, _, _, _ := newInviteFixture()
	invites.put(pendingInvite("inv1", "REAL"))

	_, err := svc.Claim(context.Background(), ports.ClaimInviteInput{
		Caller: ports.Caller{UID: "u1"},
		Code:   "NOPE",
	})
	if !errors.Is(err, domain.ErrInviteNotFound) {
		t.Fatalf("expected ErrInviteNotFound, got %v", err)
	}
}

func TestInviteClaim_CodeIsCaseSensitive(t *testing.T) {
	svc, invites, _, _, _ := newInviteFixture()
	invites.put(pendingInvite("inv1", "AbCd"))

	_, err := svc.Claim(context.Background(), ports.ClaimInviteInput{
		Caller: ports.Caller{UID: "u1"},
		Code:   "abcd",
	})
	if !errors.Is(err, domain.ErrInviteNotFound) {
		t.Fatalf("expected ErrInviteNotFound for wrong-case code, got %v", err)
	}
}

func TestInviteClaim_UsedAndRevoked(t *testing.T) {
	svc, invites, users, _, _ := newInviteFixture()
	users.put(&domain.User{ID: "u1", Email: "a@x.test", Role: domain.RolePatient})

	used := pendingInvite("inv-used", "USED")
	used.Status = domain.InviteStatusUsed
	invites.put(used)

	revoked := pendingInvite("inv-rev", "REV")
	revoked.Status = domain.InviteStatusRevoked
	invites.put(revoked)

	_, err := svc.Claim(context.Background(), ports.ClaimInviteInput{
		Caller: ports.Caller{UID: "u1"}, Code: "USED",
	})
	if !errors.Is(err, domain.ErrInviteUsed) {
		t.Fatalf("expected ErrInviteUsed, got %v", err)
	}

	_, err = svc.Claim(context.Background(), ports.ClaimInviteInput{
		Caller: ports.Caller{UID: "u1"}, Code: "REV",
	})
	if !errors.Is(err, domain.ErrInviteRevoked) {
		t.Fatalf("expected ErrInviteRevoked, got %v", err)
	}

	// Records unchanged.
	if got := invites.get("inv-used").Status; got != domain.InviteStatusUsed {
		t.Fatalf("used invite mutated: %s", got)
	}
	if got := invites.get("inv-rev").Status; got != domain.InviteStatusRevoked {
		t.Fatalf("revoked invite mutated: %s", got)
	}
}

func TestInviteClaim_EmailMismatch(t *testing.T) {
	svc, invites, users, _, _ := newInviteFixture()
	users.put(&domain.User{ID: "u1", Email: "other@x.test", Role: domain.RolePatient})

	invite := pendingInvite("inv1", "CODE")
	invite.RestrictedEmail = "therapist@x.test"
	invites.put(invite)

	_, err := svc.Claim(context.Background(), ports.ClaimInviteInput{
		Caller: ports.Caller{UID: "u1", Email: "other@x.test"},
		Code:   "CODE",
	})
	if !errors.Is(err, domain.ErrInviteEmailMismatch) {
		t.Fatalf("expected ErrInviteEmailMismatch, got %v", err)
	}

	// No mutation occurred.
	if got := invites.get("inv1").Status; got != domain.InviteStatusPending {
		t.Fatalf("invite mutated on denied claim: %s", got)
	}
	u, _ := users.FindByID(context.Background(), "u1")
	if u.Role != domain.RolePatient {
		t.Fatalf("user role mutated on denied claim: %s", u.Role)
	}
}

func TestInviteClaim_EmailCheckCaseInsensitive(t *testing.T) {
	svc, invites, users, _, _ := newInviteFixture()
	users.put(&domain.User{ID: "u1", Email: "Therapist@X.Test", Role: domain.RolePatient})

	invite := pendingInvite("inv1", "CODE")
	invite.RestrictedEmail = "therapist@x.test"
	invites.put(invite)

	_, err := svc.Claim(context.Background(), ports.ClaimInviteInput{
		Caller: ports.Caller{UID: "u1", Email: "Therapist@X.Test"},
		Code:   "CODE",
	})
	if err != nil {
		t.Fatalf("claim failed despite matching email: %v", err)
	}
}

func TestInviteClaim_EmailCheckSkippedWhenCallerHasNone(t *testing.T) {
	svc, invites, users, _, _ := newInviteFixture()
	users.put(&domain.User{ID: "u1", Role: domain.RolePatient})

	invite := pendingInvite("inv1", "CODE")
	invite.RestrictedEmail = "therapist@x.test"
	invites.put(invite)

	if _, err := svc.Claim(context.Background(), ports.ClaimInviteInput{
		Caller: ports.Caller{UID: "u1"},
		Code:   "CODE",
	}); err != nil {
		t.Fatalf("claim should skip the restriction without a caller email: %v", err)
	}
}

func TestInviteClaim_Success(t *testing.T) {
	svc, invites, users, sessions, audit := newInviteFixture()
	users.put(&domain.User{ID: "u1", Email: "a@x.test", DisplayName: "stored", Role: domain.RolePatient})

	until := time.Now().UTC().AddDate(1, 0, 0)
	invite := pendingInvite("inv1", "CODE")
	invite.LicenseValidUntil = &until
	invites.put(invite)

	res, err := svc.Claim(context.Background(), ports.ClaimInviteInput{
		Caller:      ports.Caller{UID: "u1", Email: "a@x.test"},
		Code:        "CODE",
		DisplayName: "Dr. A",
	})
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	if res.InviteID != "inv1" || res.ContractRef != "contract-7" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.TherapistTypes) != 1 || res.TherapistTypes[0] != "physiotherapie" {
		t.Fatalf("unexpected sub-types: %v", res.TherapistTypes)
	}
	if res.LicenseValidUntil == nil || !res.LicenseValidUntil.Equal(until) {
		t.Fatalf("unexpected license validity: %v", res.LicenseValidUntil)
	}

	stored := invites.get("inv1")
	if stored.Status != domain.InviteStatusUsed || stored.AssignedUID != "u1" || stored.UsedAt == nil {
		t.Fatalf("invite not committed: %+v", stored)
	}

	u, _ := users.FindByID(context.Background(), "u1")
	if u.Role != domain.RoleTherapist {
		t.Fatalf("expected therapist role, got %s", u.Role)
	}
	if u.DisplayName != "Dr. A" {
		t.Fatalf("explicit display name not preferred: %s", u.DisplayName)
	}
	if u.InviteID != "inv1" || u.ContractRef != "contract-7" {
		t.Fatalf("profile missing invite metadata: %+v", u)
	}

	if epoch, _ := sessions.Epoch(context.Background(), "u1"); epoch != 1 {
		t.Fatalf("expected claims epoch bump, got %d", epoch)
	}
	if acts := audit.actions(); len(acts) != 1 || acts[0] != domain.AuditInviteClaimed {
		t.Fatalf("unexpected audit trail: %v", acts)
	}
}

func TestInviteClaim_SecondClaimFails(t *testing.T) {
	svc, invites, users, _, _ := newInviteFixture()
	users.put(&domain.User{ID: "u1", Role: domain.RolePatient})
	users.put(&domain.User{ID: "u2", Role: domain.RolePatient})
	invites.put(pendingInvite("inv1", "CODE"))

	if _, err := svc.Claim(context.Background(), ports.ClaimInviteInput{
		Caller: ports.Caller{UID: "u1"}, Code: "CODE",
	}); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	_, err := svc.Claim(context.Background(), ports.ClaimInviteInput{
		Caller: ports.Caller{UID: "u2"}, Code: "CODE",
	})
	if !errors.Is(err, domain.ErrInviteUsed) {
		t.Fatalf("expected ErrInviteUsed on replay, got %v", err)
	}
}

func TestInviteClaim_ConcurrentClaimsSingleWinner(t *testing.T) {
	svc, invites, users, _, _ := newInviteFixture()
	invites.put(pendingInvite("inv1", "CODE"))

	const claimers = 16
	for i := 0; i < claimers; i++ {
		users.put(&domain.User{ID: uidFor(i), Role: domain.RolePatient})
	}

	var wg sync.WaitGroup
	errs := make([]error, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = svc.Claim(context.Background(), ports.ClaimInviteInput{
				Caller: ports.Caller{UID: uidFor(n)},
				Code:   "CODE",
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrInviteUsed), errors.Is(err, domain.ErrInviteNotClaimable):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if got := invites.get("inv1").Status; got != domain.InviteStatusUsed {
		t.Fatalf("invite should end used, got %s", got)
	}
}

func uidFor(n int) string {
	return "u" + string(rune('A'+n))
}

func TestInviteClaim_ProfileWriteFailureReleasesInvite(t *testing.T) {
	svc, invites, users, _, _ := newInviteFixture()
	users.failGrant = true
	invites.put(pendingInvite("inv1", "CODE"))

	_, err := svc.Claim(context.Background(), ports.ClaimInviteInput{
		Caller: ports.Caller{UID: "u1"}, Code: "CODE",
	})
	if err == nil {
		t.Fatalf("expected claim to fail")
	}
	if got := invites.get("inv1").Status; got != domain.InviteStatusPending {
		t.Fatalf("invite should be released back to pending, got %s", got)
	}
}

func TestInviteAdmin_RequiresAdmin(t *testing.T) {
	svc, invites, _, _, _ := newInviteFixture()
	invites.put(pendingInvite("inv1", "CODE"))
	therapist := ports.Caller{UID: "t1", Role: domain.RoleTherapist}

	if _, err := svc.Create(context.Background(), therapist, ports.CreateInviteInput{GrantedSubTypes: []string{"x"}}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on create, got %v", err)
	}
	if _, err := svc.List(context.Background(), therapist, ""); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on list, got %v", err)
	}
	if err := svc.Revoke(context.Background(), therapist, "inv1"); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on revoke, got %v", err)
	}
}

func TestInviteAdmin_RevokeAndRestore(t *testing.T) {
	svc, invites, _, _, _ := newInviteFixture()
	admin := ports.Caller{UID: "a1", Role: domain.RoleAdmin}
	invites.put(pendingInvite("inv1", "CODE"))

	if err := svc.Revoke(context.Background(), admin, "inv1"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if got := invites.get("inv1").Status; got != domain.InviteStatusRevoked {
		t.Fatalf("expected revoked, got %s", got)
	}

	if err := svc.Restore(context.Background(), admin, "inv1"); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if got := invites.get("inv1").Status; got != domain.InviteStatusPending {
		t.Fatalf("expected pending after restore, got %s", got)
	}

	// A used invite cannot be restored.
	used := pendingInvite("inv2", "CODE2")
	used.Status = domain.InviteStatusUsed
	invites.put(used)
	if err := svc.Restore(context.Background(), admin, "inv2"); !errors.Is(err, domain.ErrInviteNotClaimable) {
		t.Fatalf("expected ErrInviteNotClaimable restoring used invite, got %v", err)
	}
}

func TestInviteAdmin_CreateGeneratesCode(t *testing.T) {
	svc, _, _, _, _ := newInviteFixture()
	admin := ports.Caller{UID: "a1", Role: domain.RoleAdmin}

	inv, err := svc.Create(context.Background(), admin, ports.CreateInviteInput{
		RestrictedEmail: "New@X.Test",
		GrantedSubTypes: []string{"ergotherapie"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if inv.Code == "" || inv.ID == "" {
		t.Fatalf("missing generated identifiers: %+v", inv)
	}
	if inv.Status != domain.InviteStatusPending {
		t.Fatalf("new invite should be pending, got %s", inv.Status)
	}
	if inv.RestrictedEmail != "new@x.test" {
		t.Fatalf("restricted email not normalised: %s", inv.RestrictedEmail)
	}
}
