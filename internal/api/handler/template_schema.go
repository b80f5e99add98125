package handler

import (
	"encoding/json"
	"time"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
)

type createTherapistTypeRequest struct {
	Name        string `json:"name" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
}

type therapistTypeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

func newTherapistTypeResponse(t *domain.TherapistType) *therapistTypeResponse {
	return &therapistTypeResponse{
		ID:          t.ID,
		Name:        t.Name,
		DisplayName: t.DisplayName,
		CreatedAt:   t.CreatedAt,
	}
}

type taskTemplateRequest struct {
	Title         string          `json:"title" validate:"required"`
	Description   string          `json:"description"`
	TherapistType string          `json:"therapist_type" validate:"required"`
	TaskType      string          `json:"task_type" validate:"required"`
	Config        json.RawMessage `json:"config"`
}

type taskTemplateResponse struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	TherapistType string            `json:"therapist_type"`
	TaskType      string            `json:"task_type"`
	Config        domain.TaskConfig `json:"config"`
	CreatedBy     string            `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func newTaskTemplateResponse(t *domain.TaskTemplate) *taskTemplateResponse {
	return &taskTemplateResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		TherapistType: t.TherapistType,
		TaskType:      string(t.TaskType),
		Config:        t.Config,
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

type programEntryRequest struct {
	TaskTemplateID string `json:"task_template_id" validate:"required"`
	DayOffset      int    `json:"day_offset" validate:"gte=0"`
	Repeats        int    `json:"repeats" validate:"gte=0"`
}

type programTemplateRequest struct {
	Title         string                `json:"title" validate:"required"`
	Description   string                `json:"description"`
	TherapistType string                `json:"therapist_type" validate:"required"`
	Entries       []programEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

func (r programTemplateRequest) entries() []domain.ProgramEntry {
	entries := make([]domain.ProgramEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, domain.ProgramEntry{
			TaskTemplateID: e.TaskTemplateID,
			DayOffset:      e.DayOffset,
			Repeats:        e.Repeats,
		})
	}
	return entries
}

type programTemplateResponse struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Description   string                `json:"description,omitempty"`
	TherapistType string                `json:"therapist_type"`
	Entries       []domain.ProgramEntry `json:"entries"`
	CreatedBy     string                `json:"created_by"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func newProgramTemplateResponse(t *domain.ProgramTemplate) *programTemplateResponse {
	return &programTemplateResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		TherapistType: t.TherapistType,
		Entries:       t.Entries,
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

type pagedResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

func newPagedResponse[S, T any](r *ports.TemplateListResult[S], convert func(S) T) pagedResponse[T] {
	items := make([]T, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, convert(it))
	}
	return pagedResponse[T]{
		Items:      items,
		Total:      r.Total,
		Page:       r.Page,
		Limit:      r.Limit,
		TotalPages: r.TotalPages,
	}
}
