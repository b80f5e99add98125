package ports

import (
	"context"
	"time"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
)

// PatientRepository defines persistence for patient records.
type PatientRepository interface {
	Create(ctx context.Context, p *domain.Patient) error
	FindByID(ctx context.Context, id string) (*domain.Patient, error)
	ListByTherapist(ctx context.Context, therapistUID string) ([]*domain.Patient, error)
	Update(ctx context.Context, p *domain.Patient) error
	Delete(ctx context.Context, id string) error
}

// ProgramRepository persists instantiated programs and their tasks.
type ProgramRepository interface {
	// CreateWithTasks inserts the program document and its task documents.
	CreateWithTasks(ctx context.Context, p *domain.Program, tasks []*domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Program, error)
	ListTasks(ctx context.Context, programID string) ([]*domain.Task, error)
	FindTask(ctx context.Context, taskID string) (*domain.Task, error)
	// CompleteTask marks a task done, stamping the completion time.
	CompleteTask(ctx context.Context, taskID string, at time.Time) error
}

// AssignmentRepository defines persistence for program assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, a *domain.ProgramAssignment) error
	FindByID(ctx context.Context, id string) (*domain.ProgramAssignment, error)
	ListByPatient(ctx context.Context, patientID string) ([]*domain.ProgramAssignment, error)
	UpdateStatus(ctx context.Context, id string, status domain.AssignmentStatus, at time.Time) error
}

// AuditRepository appends audit events.
type AuditRepository interface {
	Insert(ctx context.Context, e *domain.AuditEvent) error
}
