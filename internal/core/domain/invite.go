package domain

import (
	"errors"
	"strings"
	"time"
)

// InviteStatus represents the lifecycle state of a therapist invite.
type InviteStatus string

const (
	InviteStatusPending InviteStatus = "pending"
	InviteStatusUsed    InviteStatus = "used"
	InviteStatusRevoked InviteStatus = "revoked"
)

var ErrInviteNotFound = errors.New("invite not found")
var ErrInviteUsed = errors.New("invite already used")
var ErrInviteRevoked = errors.New("invite revoked")
var ErrInviteNotClaimable = errors.New("invite is not claimable")
var ErrInviteEmailMismatch = errors.New("invite is restricted to a different email")
var ErrInviteCodeRequired = errors.New("invite code is required")

// Invite is a single-use code granting the therapist role and a set of
// sub-types upon claim. Created by an admin, consumed exactly once.
type Invite struct {
	ID                string       `json:"id" bson:"_id,omitempty"`
	Code              string       `json:"code" bson:"code"`
	Status            InviteStatus `json:"status" bson:"status"`
	RestrictedEmail   string       `json:"restricted_email,omitempty" bson:"restricted_email,omitempty"`
	GrantedSubTypes   []string     `json:"granted_sub_types" bson:"granted_sub_types"`
	LicenseValidUntil *time.Time   `json:"license_valid_until,omitempty" bson:"license_valid_until,omitempty"`
	ContractRef       string       `json:"contract_ref,omitempty" bson:"contract_ref,omitempty"`
	AssignedUID       string       `json:"assigned_uid,omitempty" bson:"assigned_uid,omitempty"`
	UsedAt            *time.Time   `json:"used_at,omitempty" bson:"used_at,omitempty"`
	CreatedAt         time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" bson:"updated_at"`
}

// ClaimableErr returns nil when the invite is still pending, or the
// status-specific error otherwise.
func (i *Invite) ClaimableErr() error {
	switch i.Status {
	case InviteStatusPending:
		return nil
	case InviteStatusUsed:
		return ErrInviteUsed
	case InviteStatusRevoked:
		return ErrInviteRevoked
	default:
		return ErrInviteNotClaimable
	}
}

// EmailAllowed checks the invite's email restriction against the caller's
// token email. The comparison is case-insensitive; when either side is
// empty no restriction is enforced.
func (i *Invite) EmailAllowed(callerEmail string) bool {
	if i.RestrictedEmail == "" || callerEmail == "" {
		return true
	}
	return strings.EqualFold(i.RestrictedEmail, callerEmail)
}
