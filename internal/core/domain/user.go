package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin     = "admin"
	RoleTherapist = "therapist"
	RolePatient   = "patient"
)

var ErrUnauthenticated = errors.New("caller is not authenticated")
var ErrInvalidArgument = errors.New("invalid argument")
var ErrPermissionDenied = errors.New("permission denied")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidRole = errors.New("invalid role")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")

// ValidRole reports whether role is one of the three assignable roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleTherapist || role == RolePatient
}

// User models an authenticated actor together with the denormalized
// profile fields written by the invite claim workflow.
type User struct {
	ID                string     `json:"id" bson:"_id,omitempty"`
	Email             string     `json:"email" bson:"email"`
	DisplayName       string     `json:"display_name" bson:"display_name"`
	PasswordHash      string     `json:"-" bson:"password_hash"`
	Role              string     `json:"role" bson:"role"`
	TherapistTypes    []string   `json:"therapist_types,omitempty" bson:"therapist_types,omitempty"`
	LicenseValidUntil *time.Time `json:"license_valid_until,omitempty" bson:"license_valid_until,omitempty"`
	ContractRef       string     `json:"contract_ref,omitempty" bson:"contract_ref,omitempty"`
	InviteID          string     `json:"invite_id,omitempty" bson:"invite_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" bson:"updated_at"`
}

// HasTherapistType reports whether the user's granted sub-types include t.
// Admin bypass is decided by the service layer, not here.
func (u *User) HasTherapistType(t string) bool {
	for _, tt := range u.TherapistTypes {
		if tt == t {
			return true
		}
	}
	return false
}
