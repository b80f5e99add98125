package ports

import (
	"context"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
)

// TherapistTypeRepository defines persistence for the sub-type catalog.
type TherapistTypeRepository interface {
	Create(ctx context.Context, t *domain.TherapistType) error
	FindByName(ctx context.Context, name string) (*domain.TherapistType, error)
	List(ctx context.Context) ([]*domain.TherapistType, error)
	Delete(ctx context.Context, id string) error
}

// ListTemplatesFilter carries query parameters for template listings.
// TherapistTypes is enforced by the service layer for therapist callers.
type ListTemplatesFilter struct {
	TherapistTypes []string // empty = no filter (admin)
	Search         string   // optional: partial match on title
	Page           int      // 1-based
	Limit          int      // capped by the service
}

// TaskTemplateRepository defines persistence for task templates.
type TaskTemplateRepository interface {
	Create(ctx context.Context, t *domain.TaskTemplate) error
	FindByID(ctx context.Context, id string) (*domain.TaskTemplate, error)
	List(ctx context.Context, filter ListTemplatesFilter) ([]*domain.TaskTemplate, int64, error)
	Update(ctx context.Context, t *domain.TaskTemplate) error
	Delete(ctx context.Context, id string) error
}

// ProgramTemplateRepository defines persistence for program templates.
type ProgramTemplateRepository interface {
	Create(ctx context.Context, t *domain.ProgramTemplate) error
	FindByID(ctx context.Context, id string) (*domain.ProgramTemplate, error)
	List(ctx context.Context, filter ListTemplatesFilter) ([]*domain.ProgramTemplate, int64, error)
	Update(ctx context.Context, t *domain.ProgramTemplate) error
	Delete(ctx context.Context, id string) error
}
