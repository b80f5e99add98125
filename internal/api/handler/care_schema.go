package handler

import (
	"time"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
)

type patientRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Notes string `json:"notes"`
}

type patientResponse struct {
	ID           string    `json:"id"`
	TherapistUID string    `json:"therapist_uid"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newPatientResponse(p *domain.Patient) *patientResponse {
	return &patientResponse{
		ID:           p.ID,
		TherapistUID: p.TherapistUID,
		Name:         p.Name,
		Email:        p.Email,
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type assignProgramRequest struct {
	PatientID         string `json:"patient_id" validate:"required"`
	ProgramTemplateID string `json:"program_template_id" validate:"required"`
}

type assignProgramResponse struct {
	AssignmentID string `json:"assignment_id"`
	ProgramID    string `json:"program_id"`
	TaskCount    int    `json:"task_count"`
}

type assignmentResponse struct {
	ID           string    `json:"id"`
	ProgramID    string    `json:"program_id"`
	PatientID    string    `json:"patient_id"`
	TherapistUID string    `json:"therapist_uid"`
	Status       string    `json:"status"`
	AssignedAt   time.Time `json:"assigned_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newAssignmentResponse(a *domain.ProgramAssignment) *assignmentResponse {
	return &assignmentResponse{
		ID:           a.ID,
		ProgramID:    a.ProgramID,
		PatientID:    a.PatientID,
		TherapistUID: a.TherapistUID,
		Status:       string(a.Status),
		AssignedAt:   a.AssignedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

type updateAssignmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=assigned active completed cancelled"`
}

type taskResponse struct {
	ID             string            `json:"id"`
	ProgramID      string            `json:"program_id"`
	TaskTemplateID string            `json:"task_template_id"`
	Title          string            `json:"title"`
	TaskType       string            `json:"task_type"`
	Config         domain.TaskConfig `json:"config"`
	DayOffset      int               `json:"day_offset"`
	Repeats        int               `json:"repeats"`
	Completed      bool              `json:"completed"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}

func newTaskResponse(t *domain.Task) *taskResponse {
	return &taskResponse{
		ID:             t.ID,
		ProgramID:      t.ProgramID,
		TaskTemplateID: t.TaskTemplateID,
		Title:          t.Title,
		TaskType:       string(t.TaskType),
		Config:         t.Config,
		DayOffset:      t.DayOffset,
		Repeats:        t.Repeats,
		Completed:      t.Completed,
		CompletedAt:    t.CompletedAt,
	}
}
