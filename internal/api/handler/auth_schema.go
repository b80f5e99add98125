package handler

import (
	"time"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
)

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	DisplayName       string     `json:"display_name"`
	Role              string     `json:"role"`
	TherapistTypes    []string   `json:"therapist_types,omitempty"`
	LicenseValidUntil *time.Time `json:"license_valid_until,omitempty"`
	ContractRef       string     `json:"contract_ref,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func newUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:                u.ID,
		Email:             u.Email,
		DisplayName:       u.DisplayName,
		Role:              u.Role,
		TherapistTypes:    u.TherapistTypes,
		LicenseValidUntil: u.LicenseValidUntil,
		ContractRef:       u.ContractRef,
		CreatedAt:         u.CreatedAt,
	}
}

type authResponse struct {
	Token string        `json:"token,omitempty"`
	User  *userResponse `json:"user,omitempty"`
}

type setUserRoleRequest struct {
	UID  string `json:"uid" validate:"required"`
	Role string `json:"role" validate:"required,oneof=admin therapist patient"`
}

type setUserRoleResponse struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
}

type ensureDefaultRoleResponse struct {
	Role string `json:"role"`
}
