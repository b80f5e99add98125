package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
	"github.com/habitdesk/habitdesk-api/internal/pkg/id"
)

// CareService implements patients, program instantiation, and assignment
// tracking.
type CareService struct {
	patients    ports.PatientRepository
	programs    ports.ProgramRepository
	assignments ports.AssignmentRepository
	taskTpls    ports.TaskTemplateRepository
	programTpls ports.ProgramTemplateRepository
	log         zerolog.Logger
}

func NewCareService(
	patients ports.PatientRepository,
	programs ports.ProgramRepository,
	assignments ports.AssignmentRepository,
	taskTpls ports.TaskTemplateRepository,
	programTpls ports.ProgramTemplateRepository,
	log zerolog.Logger,
) *CareService {
	return &CareService{
		patients:    patients,
		programs:    programs,
		assignments: assignments,
		taskTpls:    taskTpls,
		programTpls: programTpls,
		log:         log,
	}
}

// CreatePatient adds a patient record owned by the calling therapist.
func (s *CareService) CreatePatient(ctx context.Context, caller ports.Caller, input ports.PatientInput) (*domain.Patient, error) {
	if err := requireTherapist(caller); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: patient name is required", domain.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	p := &domain.Patient{
		ID:           id.New(),
		TherapistUID: caller.UID,
		Name:         input.Name,
		Email:        input.Email,
		Notes:        input.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPatient fetches a patient record, enforcing ownership.
func (s *CareService) GetPatient(ctx context.Context, caller ports.Caller, patientID string) (*domain.Patient, error) {
	if err := requireTherapist(caller); err != nil {
		return nil, err
	}
	p, err := s.patients.FindByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && p.TherapistUID != caller.UID {
		return nil, domain.ErrPermissionDenied
	}
	return p, nil
}

// ListPatients returns the caller's patients.
func (s *CareService) ListPatients(ctx context.Context, caller ports.Caller) ([]*domain.Patient, error) {
	if err := requireTherapist(caller); err != nil {
		return nil, err
	}
	return s.patients.ListByTherapist(ctx, caller.UID)
}

// UpdatePatient replaces the mutable fields of a patient record.
func (s *CareService) UpdatePatient(ctx context.Context, caller ports.Caller, patientID string, input ports.PatientInput) (*domain.Patient, error) {
	p, err := s.GetPatient(ctx, caller, patientID)
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: patient name is required", domain.ErrInvalidArgument)
	}

	p.Name = input.Name
	p.Email = input.Email
	p.Notes = input.Notes
	p.UpdatedAt = time.Now().UTC()

	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePatient removes a patient record, enforcing ownership.
func (s *CareService) DeletePatient(ctx context.Context, caller ports.Caller, patientID string) error {
	if _, err := s.GetPatient(ctx, caller, patientID); err != nil {
		return err
	}
	return s.patients.Delete(ctx, patientID)
}

// AssignProgram snapshots a program template into a program with
// materialised tasks and creates the tracking assignment.
func (s *CareService) AssignProgram(ctx context.Context, input ports.AssignProgramInput) (*ports.AssignProgramResult, error) {
	caller := input.Caller
	patient, err := s.GetPatient(ctx, caller, input.PatientID)
	if err != nil {
		return nil, err
	}

	tpl, err := s.programTpls.FindByID(ctx, input.ProgramTemplateID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !caller.HasSubType(tpl.TherapistType) {
		return nil, domain.ErrSubTypeNotGranted
	}

	now := time.Now().UTC()
	program := &domain.Program{
		ID:            id.New(),
		TemplateID:    tpl.ID,
		PatientID:     patient.ID,
		TherapistUID:  caller.UID,
		Title:         tpl.Title,
		TherapistType: tpl.TherapistType,
		CreatedAt:     now,
	}

	tasks := make([]*domain.Task, 0, len(tpl.Entries))
	for i, entry := range tpl.Entries {
		tt, err := s.taskTpls.FindByID(ctx, entry.TaskTemplateID)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		tasks = append(tasks, &domain.Task{
			ID:             id.New(),
			ProgramID:      program.ID,
			TaskTemplateID: tt.ID,
			Title:          tt.Title,
			TaskType:       tt.TaskType,
			Config:         tt.Config,
			DayOffset:      entry.DayOffset,
			Repeats:        entry.Repeats,
		})
	}

	if err := s.programs.CreateWithTasks(ctx, program, tasks); err != nil {
		return nil, err
	}

	assignment := &domain.ProgramAssignment{
		ID:           id.New(),
		ProgramID:    program.ID,
		PatientID:    patient.ID,
		TherapistUID: caller.UID,
		Status:       domain.AssignmentAssigned,
		AssignedAt:   now,
		UpdatedAt:    now,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("program_id", program.ID).
		Str("patient_id", patient.ID).
		Int("tasks", len(tasks)).
		Msg("program assigned")

	return &ports.AssignProgramResult{
		AssignmentID: assignment.ID,
		ProgramID:    program.ID,
		TaskCount:    len(tasks),
	}, nil
}

// ListAssignments returns the assignments for one patient.
func (s *CareService) ListAssignments(ctx context.Context, caller ports.Caller, patientID string) ([]*domain.ProgramAssignment, error) {
	if _, err := s.GetPatient(ctx, caller, patientID); err != nil {
		return nil, err
	}
	return s.assignments.ListByPatient(ctx, patientID)
}

// UpdateAssignmentStatus validates and applies a status transition.
func (s *CareService) UpdateAssignmentStatus(ctx context.Context, caller ports.Caller, assignmentID string, status domain.AssignmentStatus) error {
	if err := requireTherapist(caller); err != nil {
		return err
	}
	a, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() && a.TherapistUID != caller.UID {
		return domain.ErrPermissionDenied
	}
	if !a.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, a.Status, status)
	}
	return s.assignments.UpdateStatus(ctx, assignmentID, status, time.Now().UTC())
}

// ListProgramTasks returns the materialised tasks of one program.
func (s *CareService) ListProgramTasks(ctx context.Context, caller ports.Caller, programID string) ([]*domain.Task, error) {
	if _, err := s.ownedProgram(ctx, caller, programID); err != nil {
		return nil, err
	}
	return s.programs.ListTasks(ctx, programID)
}

// CompleteTask marks a task done on behalf of the therapist owning the
// task's program.
func (s *CareService) CompleteTask(ctx context.Context, caller ports.Caller, taskID string) error {
	if err := requireTherapist(caller); err != nil {
		return err
	}
	task, err := s.programs.FindTask(ctx, taskID)
	if err != nil {
		return err
	}
	if _, err := s.ownedProgram(ctx, caller, task.ProgramID); err != nil {
		return err
	}
	return s.programs.CompleteTask(ctx, taskID, time.Now().UTC())
}

func (s *CareService) ownedProgram(ctx context.Context, caller ports.Caller, programID string) (*domain.Program, error) {
	if err := requireTherapist(caller); err != nil {
		return nil, err
	}
	p, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && p.TherapistUID != caller.UID {
		return nil, domain.ErrPermissionDenied
	}
	return p, nil
}

func requireTherapist(caller ports.Caller) error {
	if caller.UID == "" {
		return domain.ErrUnauthenticated
	}
	if caller.Role != domain.RoleAdmin && caller.Role != domain.RoleTherapist {
		return domain.ErrPermissionDenied
	}
	return nil
}
