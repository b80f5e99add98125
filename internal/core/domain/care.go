package domain

import (
	"errors"
	"time"
)

var ErrPatientNotFound = errors.New("patient not found")
var ErrProgramNotFound = errors.New("program not found")
var ErrTaskNotFound = errors.New("task not found")
var ErrAssignmentNotFound = errors.New("assignment not found")
var ErrInvalidTransition = errors.New("invalid assignment status transition")

// AssignmentStatus represents the lifecycle state of a program assignment.
type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// validAssignmentTransitions defines the allowed state machine transitions.
var validAssignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentAssigned: {AssignmentActive, AssignmentCancelled},
	AssignmentActive:   {AssignmentCompleted, AssignmentCancelled},
}

// CanTransitionTo reports whether a transition from the current status to
// next is valid.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	for _, allowed := range validAssignmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Patient is a therapist-owned patient record.
type Patient struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	TherapistUID string    `json:"therapist_uid" bson:"therapist_uid"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	Notes        string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Program is a snapshot of a program template instantiated for a patient.
// Tasks are materialised as separate documents referencing the program.
type Program struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	TemplateID    string    `json:"template_id" bson:"template_id"`
	PatientID     string    `json:"patient_id" bson:"patient_id"`
	TherapistUID  string    `json:"therapist_uid" bson:"therapist_uid"`
	Title         string    `json:"title" bson:"title"`
	TherapistType string    `json:"therapist_type" bson:"therapist_type"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// Task is a materialised task inside an instantiated program.
type Task struct {
	ID             string     `json:"id" bson:"_id,omitempty"`
	ProgramID      string     `json:"program_id" bson:"program_id"`
	TaskTemplateID string     `json:"task_template_id" bson:"task_template_id"`
	Title          string     `json:"title" bson:"title"`
	TaskType       TaskType   `json:"task_type" bson:"task_type"`
	Config         TaskConfig `json:"config" bson:"-"`
	DayOffset      int        `json:"day_offset" bson:"day_offset"`
	Repeats        int        `json:"repeats" bson:"repeats"`
	Completed      bool       `json:"completed" bson:"completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// ProgramAssignment tracks a program handed to a patient.
type ProgramAssignment struct {
	ID           string           `json:"id" bson:"_id,omitempty"`
	ProgramID    string           `json:"program_id" bson:"program_id"`
	PatientID    string           `json:"patient_id" bson:"patient_id"`
	TherapistUID string           `json:"therapist_uid" bson:"therapist_uid"`
	Status       AssignmentStatus `json:"status" bson:"status"`
	AssignedAt   time.Time        `json:"assigned_at" bson:"assigned_at"`
	UpdatedAt    time.Time        `json:"updated_at" bson:"updated_at"`
}
