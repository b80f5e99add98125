package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
	"github.com/habitdesk/habitdesk-api/internal/pkg/id"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// TemplateService implements the sub-type catalog and template CRUD.
type TemplateService struct {
	types    ports.TherapistTypeRepository
	tasks    ports.TaskTemplateRepository
	programs ports.ProgramTemplateRepository
	log      zerolog.Logger
}

func NewTemplateService(
	types ports.TherapistTypeRepository,
	tasks ports.TaskTemplateRepository,
	programs ports.ProgramTemplateRepository,
	log zerolog.Logger,
) *TemplateService {
	return &TemplateService{types: types, tasks: tasks, programs: programs, log: log}
}

// CreateTherapistType adds a sub-type to the catalog. Admin only.
func (s *TemplateService) CreateTherapistType(ctx context.Context, caller ports.Caller, name, displayName string) (*domain.TherapistType, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return nil, fmt.Errorf("%w: therapist type name is required", domain.ErrInvalidArgument)
	}
	if displayName == "" {
		displayName = name
	}

	t := &domain.TherapistType{
		ID:          id.New(),
		Name:        name,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.types.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTherapistTypes returns the full sub-type catalog.
func (s *TemplateService) ListTherapistTypes(ctx context.Context) ([]*domain.TherapistType, error) {
	return s.types.List(ctx)
}

// DeleteTherapistType removes a sub-type from the catalog. Admin only.
func (s *TemplateService) DeleteTherapistType(ctx context.Context, caller ports.Caller, typeID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.types.Delete(ctx, typeID)
}

// CreateTaskTemplate validates the config variant and persists the template.
// Therapists may only create templates within their granted sub-types.
func (s *TemplateService) CreateTaskTemplate(ctx context.Context, caller ports.Caller, input ports.TaskTemplateInput) (*domain.TaskTemplate, error) {
	if err := s.checkTemplateAccess(ctx, caller, input.TherapistType); err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidArgument)
	}

	cfg, err := domain.DecodeTaskConfig(domain.TaskType(input.TaskType), input.Config)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &domain.TaskTemplate{
		ID:            id.New(),
		Title:         input.Title,
		Description:   input.Description,
		TherapistType: input.TherapistType,
		TaskType:      domain.TaskType(input.TaskType),
		Config:        cfg,
		CreatedBy:     caller.UID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}

	s.log.Info().Str("template_id", t.ID).Str("task_type", input.TaskType).Msg("task template created")
	return t, nil
}

// GetTaskTemplate fetches one template, enforcing sub-type scope.
func (s *TemplateService) GetTaskTemplate(ctx context.Context, caller ports.Caller, templateID string) (*domain.TaskTemplate, error) {
	t, err := s.tasks.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !caller.HasSubType(t.TherapistType) {
		return nil, domain.ErrPermissionDenied
	}
	return t, nil
}

// ListTaskTemplates returns a page of templates scoped to the caller.
func (s *TemplateService) ListTaskTemplates(ctx context.Context, input ports.ListTemplatesInput) (*ports.TemplateListResult[*domain.TaskTemplate], error) {
	filter := s.listFilter(input)
	items, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pagedResult(items, total, filter), nil
}

// UpdateTaskTemplate replaces the mutable fields of a template.
func (s *TemplateService) UpdateTaskTemplate(ctx context.Context, caller ports.Caller, templateID string, input ports.TaskTemplateInput) (*domain.TaskTemplate, error) {
	existing, err := s.GetTaskTemplate(ctx, caller, templateID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTemplateAccess(ctx, caller, input.TherapistType); err != nil {
		return nil, err
	}

	cfg, err := domain.DecodeTaskConfig(domain.TaskType(input.TaskType), input.Config)
	if err != nil {
		return nil, err
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.TherapistType = input.TherapistType
	existing.TaskType = domain.TaskType(input.TaskType)
	existing.Config = cfg
	existing.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteTaskTemplate removes a template, enforcing sub-type scope.
func (s *TemplateService) DeleteTaskTemplate(ctx context.Context, caller ports.Caller, templateID string) error {
	if _, err := s.GetTaskTemplate(ctx, caller, templateID); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, templateID)
}

// CreateProgramTemplate persists an ordered sequence of task-template
// references, verifying each reference exists and is in scope.
func (s *TemplateService) CreateProgramTemplate(ctx context.Context, caller ports.Caller, input ports.ProgramTemplateInput) (*domain.ProgramTemplate, error) {
	if err := s.checkTemplateAccess(ctx, caller, input.TherapistType); err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidArgument)
	}
	if len(input.Entries) == 0 {
		return nil, fmt.Errorf("%w: a program template needs at least one entry", domain.ErrInvalidArgument)
	}
	for i, entry := range input.Entries {
		if _, err := s.tasks.FindByID(ctx, entry.TaskTemplateID); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	now := time.Now().UTC()
	t := &domain.ProgramTemplate{
		ID:            id.New(),
		Title:         input.Title,
		Description:   input.Description,
		TherapistType: input.TherapistType,
		Entries:       input.Entries,
		CreatedBy:     caller.UID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.programs.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetProgramTemplate fetches one program template, enforcing scope.
func (s *TemplateService) GetProgramTemplate(ctx context.Context, caller ports.Caller, templateID string) (*domain.ProgramTemplate, error) {
	t, err := s.programs.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !caller.HasSubType(t.TherapistType) {
		return nil, domain.ErrPermissionDenied
	}
	return t, nil
}

// ListProgramTemplates returns a page of program templates in scope.
func (s *TemplateService) ListProgramTemplates(ctx context.Context, input ports.ListTemplatesInput) (*ports.TemplateListResult[*domain.ProgramTemplate], error) {
	filter := s.listFilter(input)
	items, total, err := s.programs.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pagedResult(items, total, filter), nil
}

// UpdateProgramTemplate replaces the mutable fields of a program template.
func (s *TemplateService) UpdateProgramTemplate(ctx context.Context, caller ports.Caller, templateID string, input ports.ProgramTemplateInput) (*domain.ProgramTemplate, error) {
	existing, err := s.GetProgramTemplate(ctx, caller, templateID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTemplateAccess(ctx, caller, input.TherapistType); err != nil {
		return nil, err
	}
	if len(input.Entries) == 0 {
		return nil, fmt.Errorf("%w: a program template needs at least one entry", domain.ErrInvalidArgument)
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.TherapistType = input.TherapistType
	existing.Entries = input.Entries
	existing.UpdatedAt = time.Now().UTC()

	if err := s.programs.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteProgramTemplate removes a program template, enforcing scope.
func (s *TemplateService) DeleteProgramTemplate(ctx context.Context, caller ports.Caller, templateID string) error {
	if _, err := s.GetProgramTemplate(ctx, caller, templateID); err != nil {
		return err
	}
	return s.programs.Delete(ctx, templateID)
}

// checkTemplateAccess verifies the caller may manage templates for the
// given sub-type and that the sub-type exists in the catalog.
func (s *TemplateService) checkTemplateAccess(ctx context.Context, caller ports.Caller, therapistType string) error {
	if caller.UID == "" {
		return domain.ErrUnauthenticated
	}
	if caller.Role != domain.RoleAdmin && caller.Role != domain.RoleTherapist {
		return domain.ErrPermissionDenied
	}
	if therapistType == "" {
		return fmt.Errorf("%w: therapist type is required", domain.ErrInvalidArgument)
	}
	if !caller.IsAdmin() && !caller.HasSubType(therapistType) {
		return domain.ErrSubTypeNotGranted
	}
	if _, err := s.types.FindByName(ctx, therapistType); err != nil {
		return err
	}
	return nil
}

// listFilter translates caller scope and paging inputs into a repository
// filter, capping the page size.
func (s *TemplateService) listFilter(input ports.ListTemplatesInput) ports.ListTemplatesFilter {
	filter := ports.ListTemplatesFilter{
		Search: input.Search,
		Page:   input.Page,
		Limit:  input.Limit,
	}
	if !input.Caller.IsAdmin() {
		filter.TherapistTypes = input.Caller.TherapistTypes
		if len(filter.TherapistTypes) == 0 {
			// A therapist with no granted sub-types sees nothing rather
			// than everything.
			filter.TherapistTypes = []string{""}
		}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	return filter
}

func pagedResult[T any](items []T, total int64, filter ports.ListTemplatesFilter) *ports.TemplateListResult[T] {
	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.TemplateListResult[T]{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}
}
