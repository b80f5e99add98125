package domain

import (
	"errors"
	"time"
)

var ErrTherapistTypeNotFound = errors.New("therapist type not found")
var ErrTherapistTypeExists = errors.New("therapist type already exists")
var ErrTaskTemplateNotFound = errors.New("task template not found")
var ErrProgramTemplateNotFound = errors.New("program template not found")
var ErrSubTypeNotGranted = errors.New("therapist type not granted to caller")

// TherapistType is a catalogued sub-type tag (e.g. "physiotherapie")
// scoping which templates a therapist may use.
type TherapistType struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name"`
	DisplayName string    `json:"display_name" bson:"display_name"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// TaskTemplate is a reusable task definition, distinct from an
// instantiated task inside a program.
type TaskTemplate struct {
	ID            string     `json:"id" bson:"_id,omitempty"`
	Title         string     `json:"title" bson:"title"`
	Description   string     `json:"description,omitempty" bson:"description,omitempty"`
	TherapistType string     `json:"therapist_type" bson:"therapist_type"`
	TaskType      TaskType   `json:"task_type" bson:"task_type"`
	Config        TaskConfig `json:"config" bson:"-"`
	CreatedBy     string     `json:"created_by" bson:"created_by"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

// ProgramEntry references a task template inside a program template with
// its scheduling hints.
type ProgramEntry struct {
	TaskTemplateID string `json:"task_template_id" bson:"task_template_id"`
	DayOffset      int    `json:"day_offset" bson:"day_offset"`
	Repeats        int    `json:"repeats" bson:"repeats"`
}

// ProgramTemplate is an ordered sequence of task-template references.
type ProgramTemplate struct {
	ID            string         `json:"id" bson:"_id,omitempty"`
	Title         string         `json:"title" bson:"title"`
	Description   string         `json:"description,omitempty" bson:"description,omitempty"`
	TherapistType string         `json:"therapist_type" bson:"therapist_type"`
	Entries       []ProgramEntry `json:"entries" bson:"entries"`
	CreatedBy     string         `json:"created_by" bson:"created_by"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" bson:"updated_at"`
}
