package handler

import (
	"time"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
)

type createInviteRequest struct {
	RestrictedEmail   string     `json:"restricted_email" validate:"omitempty,email"`
	GrantedSubTypes   []string   `json:"granted_sub_types" validate:"required,min=1"`
	LicenseValidUntil *time.Time `json:"license_valid_until"`
	ContractRef       string     `json:"contract_ref"`
}

type inviteResponse struct {
	ID                string     `json:"id"`
	Code              string     `json:"code"`
	Status            string     `json:"status"`
	RestrictedEmail   string     `json:"restricted_email,omitempty"`
	GrantedSubTypes   []string   `json:"granted_sub_types"`
	LicenseValidUntil *time.Time `json:"license_valid_until,omitempty"`
	ContractRef       string     `json:"contract_ref,omitempty"`
	AssignedUID       string     `json:"assigned_uid,omitempty"`
	UsedAt            *time.Time `json:"used_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func newInviteResponse(i *domain.Invite) *inviteResponse {
	return &inviteResponse{
		ID:                i.ID,
		Code:              i.Code,
		Status:            string(i.Status),
		RestrictedEmail:   i.RestrictedEmail,
		GrantedSubTypes:   i.GrantedSubTypes,
		LicenseValidUntil: i.LicenseValidUntil,
		ContractRef:       i.ContractRef,
		AssignedUID:       i.AssignedUID,
		UsedAt:            i.UsedAt,
		CreatedAt:         i.CreatedAt,
	}
}

type listInvitesResponse struct {
	Invites []*inviteResponse `json:"invites"`
}

type claimInviteRequest struct {
	Code        string `json:"code" validate:"required"`
	DisplayName string `json:"display_name"`
}

type claimInviteResponse struct {
	InviteID          string     `json:"invite_id"`
	Role              string     `json:"role"`
	TherapistTypes    []string   `json:"therapist_types"`
	LicenseValidUntil *time.Time `json:"license_valid_until,omitempty"`
	ContractRef       string     `json:"contract_ref,omitempty"`
}
