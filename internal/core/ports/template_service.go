package ports

import (
	"context"
	"encoding/json"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
)

// TaskTemplateInput carries the fields for creating or updating a task
// template. Config is decoded against TaskType by the service.
type TaskTemplateInput struct {
	Title         string
	Description   string
	TherapistType string
	TaskType      string
	Config        json.RawMessage
}

// ProgramTemplateInput carries the fields for a program template.
type ProgramTemplateInput struct {
	Title         string
	Description   string
	TherapistType string
	Entries       []domain.ProgramEntry
}

// ListTemplatesInput carries list parameters plus the caller for scoping.
type ListTemplatesInput struct {
	Caller Caller
	Search string
	Page   int
	Limit  int
}

// TemplateListResult is a generic paged result.
type TemplateListResult[T any] struct {
	Items      []T
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TemplateService covers the sub-type catalog and template CRUD, scoped by
// the caller's granted therapist types.
type TemplateService interface {
	CreateTherapistType(ctx context.Context, caller Caller, name, displayName string) (*domain.TherapistType, error)
	ListTherapistTypes(ctx context.Context) ([]*domain.TherapistType, error)
	DeleteTherapistType(ctx context.Context, caller Caller, id string) error

	CreateTaskTemplate(ctx context.Context, caller Caller, input TaskTemplateInput) (*domain.TaskTemplate, error)
	GetTaskTemplate(ctx context.Context, caller Caller, id string) (*domain.TaskTemplate, error)
	ListTaskTemplates(ctx context.Context, input ListTemplatesInput) (*TemplateListResult[*domain.TaskTemplate], error)
	UpdateTaskTemplate(ctx context.Context, caller Caller, id string, input TaskTemplateInput) (*domain.TaskTemplate, error)
	DeleteTaskTemplate(ctx context.Context, caller Caller, id string) error

	CreateProgramTemplate(ctx context.Context, caller Caller, input ProgramTemplateInput) (*domain.ProgramTemplate, error)
	GetProgramTemplate(ctx context.Context, caller Caller, id string) (*domain.ProgramTemplate, error)
	ListProgramTemplates(ctx context.Context, input ListTemplatesInput) (*TemplateListResult[*domain.ProgramTemplate], error)
	UpdateProgramTemplate(ctx context.Context, caller Caller, id string, input ProgramTemplateInput) (*domain.ProgramTemplate, error)
	DeleteProgramTemplate(ctx context.Context, caller Caller, id string) error
}
