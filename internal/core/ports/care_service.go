package ports

import (
	"context"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
)

// PatientInput carries the fields for creating or updating a patient record.
type PatientInput struct {
	Name  string
	Email string
	Notes string
}

// AssignProgramInput instantiates a program template for a patient.
type AssignProgramInput struct {
	Caller            Caller
	PatientID         string
	ProgramTemplateID string
}

// AssignProgramResult is returned after instantiation.
type AssignProgramResult struct {
	AssignmentID string
	ProgramID    string
	TaskCount    int
}

// CareService covers patients, program instantiation, and assignment
// tracking.
type CareService interface {
	CreatePatient(ctx context.Context, caller Caller, input PatientInput) (*domain.Patient, error)
	GetPatient(ctx context.Context, caller Caller, id string) (*domain.Patient, error)
	ListPatients(ctx context.Context, caller Caller) ([]*domain.Patient, error)
	UpdatePatient(ctx context.Context, caller Caller, id string, input PatientInput) (*domain.Patient, error)
	DeletePatient(ctx context.Context, caller Caller, id string) error

	AssignProgram(ctx context.Context, input AssignProgramInput) (*AssignProgramResult, error)
	ListAssignments(ctx context.Context, caller Caller, patientID string) ([]*domain.ProgramAssignment, error)
	UpdateAssignmentStatus(ctx context.Context, caller Caller, id string, status domain.AssignmentStatus) error
	ListProgramTasks(ctx context.Context, caller Caller, programID string) ([]*domain.Task, error)
	CompleteTask(ctx context.Context, caller Caller, taskID string) error
}
