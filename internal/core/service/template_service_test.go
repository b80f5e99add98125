package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
)

type stubTypeRepo struct {
	mu    sync.Mutex
	types map[string]*domain.TherapistType // by name
}

func newStubTypeRepo(names ...string) *stubTypeRepo {
	r := &stubTypeRepo{types: make(map[string]*domain.TherapistType)}
	for _, n := range names {
		r.types[n] = &domain.TherapistType{ID: "type-" + n, Name: n, DisplayName: n}
	}
	return r
}

func (r *stubTypeRepo) Create(_ context.Context, t *domain.TherapistType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[t.Name]; ok {
		return domain.ErrTherapistTypeExists
	}
	r.types[t.Name] = t
	return nil
}

func (r *stubTypeRepo) FindByName(_ context.Context, name string) (*domain.TherapistType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.types[name]
	if !ok {
		return nil, domain.ErrTherapistTypeNotFound
	}
	return t, nil
}

func (r *stubTypeRepo) List(_ context.Context) ([]*domain.TherapistType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.TherapistType, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	return out, nil
}

func (r *stubTypeRepo) Delete(_ context.Context, typeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, t := range r.types {
		if t.ID == typeID {
			delete(r.types, name)
			return nil
		}
	}
	return domain.ErrTherapistTypeNotFound
}

type stubTaskTplRepo struct {
	mu   sync.Mutex
	tpls map[string]*domain.TaskTemplate
}

func newStubTaskTplRepo() *stubTaskTplRepo {
	return &stubTaskTplRepo{tpls: make(map[string]*domain.TaskTemplate)}
}

func (r *stubTaskTplRepo) Create(_ context.Context, t *domain.TaskTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tpls[t.ID] = t
	return nil
}

func (r *stubTaskTplRepo) FindByID(_ context.Context, tplID string) (*domain.TaskTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tpls[tplID]
	if !ok {
		return nil, domain.ErrTaskTemplateNotFound
	}
	return t, nil
}

func (r *stubTaskTplRepo) List(_ context.Context, filter ports.ListTemplatesFilter) ([]*domain.TaskTemplate, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.TaskTemplate
	for _, t := range r.tpls {
		if len(filter.TherapistTypes) > 0 && !containsStr(filter.TherapistTypes, t.TherapistType) {
			continue
		}
		if filter.Search != "" && !strings.Contains(t.Title, filter.Search) {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (r *stubTaskTplRepo) Update(_ context.Context, t *domain.TaskTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tpls[t.ID]; !ok {
		return domain.ErrTaskTemplateNotFound
	}
	r.tpls[t.ID] = t
	return nil
}

func (r *stubTaskTplRepo) Delete(_ context.Context, tplID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tpls, tplID)
	return nil
}

type stubProgramTplRepo struct {
	mu   sync.Mutex
	tpls map[string]*domain.ProgramTemplate
}

func newStubProgramTplRepo() *stubProgramTplRepo {
	return &stubProgramTplRepo{tpls: make(map[string]*domain.ProgramTemplate)}
}

func (r *stubProgramTplRepo) Create(_ context.Context, t *domain.ProgramTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tpls[t.ID] = t
	return nil
}

func (r *stubProgramTplRepo) FindByID(_ context.Context, tplID string) (*domain.ProgramTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tpls[tplID]
	if !ok {
		return nil, domain.ErrProgramTemplateNotFound
	}
	return t, nil
}

func (r *stubProgramTplRepo) List(_ context.Context, filter ports.ListTemplatesFilter) ([]*domain.ProgramTemplate, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ProgramTemplate
	for _, t := range r.tpls {
		if len(filter.TherapistTypes) > 0 && !containsStr(filter.TherapistTypes, t.TherapistType) {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (r *stubProgramTplRepo) Update(_ context.Context, t *domain.ProgramTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tpls[t.ID] = t
	return nil
}

func (r *stubProgramTplRepo) Delete(_ context.Context, tplID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tpls, tplID)
	return nil
}

func containsStr(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func newTemplateFixture(typeNames ...string) (*TemplateService, *stubTaskTplRepo, *stubProgramTplRepo) {
	tasks := newStubTaskTplRepo()
	programs := newStubProgramTplRepo()
	svc := NewTemplateService(newStubTypeRepo(typeNames...), tasks, programs, zerolog.Nop())
	return svc, tasks, programs
}

var therapistCaller = ports.Caller{
	UID:            "t1",
	Role:           domain.RoleTherapist,
	TherapistTypes: []string{"physiotherapie"},
}

func TestCreateTaskTemplate_DecodesConfig(t *testing.T) {
	svc, _, _ := newTemplateFixture("physiotherapie")

	tpl, err := svc.CreateTaskTemplate(context.Background(), therapistCaller, ports.TaskTemplateInput{
		Title:         "Morning stretch",
		TherapistType: "physiotherapie",
		TaskType:      "timer",
		Config:        json.RawMessage(`{"duration_seconds":300,"countdown":true}`),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	cfg, ok := tpl.Config.(*domain.TimerConfig)
	if !ok {
		t.Fatalf("expected TimerConfig, got %T", tpl.Config)
	}
	if cfg.DurationSeconds != 300 || !cfg.Countdown {
		t.Fatalf("config not decoded: %+v", cfg)
	}
	if tpl.CreatedBy != "t1" {
		t.Fatalf("creator not recorded: %s", tpl.CreatedBy)
	}
}

func TestCreateTaskTemplate_UnknownTaskType(t *testing.T) {
	svc, _, _ := newTemplateFixture("physiotherapie")

	_, err := svc.CreateTaskTemplate(context.Background(), therapistCaller, ports.TaskTemplateInput{
		Title:         "X",
		TherapistType: "physiotherapie",
		TaskType:      "teleport",
	})
	if !errors.Is(err, domain.ErrUnknownTaskType) {
		t.Fatalf("expected ErrUnknownTaskType, got %v", err)
	}
}

func TestCreateTaskTemplate_InvalidConfig(t *testing.T) {
	svc, _, _ := newTemplateFixture("physiotherapie")

	_, err := svc.CreateTaskTemplate(context.Background(), therapistCaller, ports.TaskTemplateInput{
		Title:         "Bad timer",
		TherapistType: "physiotherapie",
		TaskType:      "timer",
		Config:        json.RawMessage(`{"duration_seconds":0}`),
	})
	if !errors.Is(err, domain.ErrInvalidTaskConfig) {
		t.Fatalf("expected ErrInvalidTaskConfig, got %v", err)
	}
}

func TestCreateTaskTemplate_SubTypeNotGranted(t *testing.T) {
	svc, _, _ := newTemplateFixture("physiotherapie", "ergotherapie")

	_, err := svc.CreateTaskTemplate(context.Background(), therapistCaller, ports.TaskTemplateInput{
		Title:         "Out of scope",
		TherapistType: "ergotherapie",
		TaskType:      "timer",
		Config:        json.RawMessage(`{"duration_seconds":60}`),
	})
	if !errors.Is(err, domain.ErrSubTypeNotGranted) {
		t.Fatalf("expected ErrSubTypeNotGranted, got %v", err)
	}
}

func TestCreateTaskTemplate_UnknownCatalogType(t *testing.T) {
	svc, _, _ := newTemplateFixture() // empty catalog
	admin := ports.Caller{UID: "a1", Role: domain.RoleAdmin}

	_, err := svc.CreateTaskTemplate(context.Background(), admin, ports.TaskTemplateInput{
		Title:         "X",
		TherapistType: "unlisted",
		TaskType:      "timer",
		Config:        json.RawMessage(`{"duration_seconds":60}`),
	})
	if !errors.Is(err, domain.ErrTherapistTypeNotFound) {
		t.Fatalf("expected ErrTherapistTypeNotFound, got %v", err)
	}
}

func TestCreateTaskTemplate_PatientDenied(t *testing.T) {
	svc, _, _ := newTemplateFixture("physiotherapie")
	patient := ports.Caller{UID: "p1", Role: domain.RolePatient}

	_, err := svc.CreateTaskTemplate(context.Background(), patient, ports.TaskTemplateInput{
		Title:         "X",
		TherapistType: "physiotherapie",
		TaskType:      "timer",
	})
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestListTaskTemplates_ScopedToGrantedSubTypes(t *testing.T) {
	svc, tasks, _ := newTemplateFixture("physiotherapie", "ergotherapie")
	now := time.Now().UTC()
	tasks.tpls["a"] = &domain.TaskTemplate{ID: "a", Title: "A", TherapistType: "physiotherapie", CreatedAt: now}
	tasks.tpls["b"] = &domain.TaskTemplate{ID: "b", Title: "B", TherapistType: "ergotherapie", CreatedAt: now}

	res, err := svc.ListTaskTemplates(context.Background(), ports.ListTemplatesInput{Caller: therapistCaller})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].ID != "a" {
		t.Fatalf("scope not enforced: %+v", res.Items)
	}

	admin := ports.Caller{UID: "a1", Role: domain.RoleAdmin}
	res, err = svc.ListTaskTemplates(context.Background(), ports.ListTemplatesInput{Caller: admin})
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("admin should see all templates, got %d", len(res.Items))
	}
}

func TestListTaskTemplates_CapsLimit(t *testing.T) {
	svc, _, _ := newTemplateFixture("physiotherapie")
	admin := ports.Caller{UID: "a1", Role: domain.RoleAdmin}

	res, err := svc.ListTaskTemplates(context.Background(), ports.ListTemplatesInput{Caller: admin, Limit: 5000})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if res.Limit != 100 {
		t.Fatalf("limit not capped: %d", res.Limit)
	}
	if res.Page != 1 {
		t.Fatalf("page not defaulted: %d", res.Page)
	}
}

func TestCreateProgramTemplate_VerifiesEntries(t *testing.T) {
	svc, tasks, _ := newTemplateFixture("physiotherapie")
	tasks.tpls["tt1"] = &domain.TaskTemplate{ID: "tt1", Title: "T", TherapistType: "physiotherapie"}

	_, err := svc.CreateProgramTemplate(context.Background(), therapistCaller, ports.ProgramTemplateInput{
		Title:         "Week One",
		TherapistType: "physiotherapie",
		Entries:       []domain.ProgramEntry{{TaskTemplateID: "missing"}},
	})
	if !errors.Is(err, domain.ErrTaskTemplateNotFound) {
		t.Fatalf("expected ErrTaskTemplateNotFound, got %v", err)
	}

	tpl, err := svc.CreateProgramTemplate(context.Background(), therapistCaller, ports.ProgramTemplateInput{
		Title:         "Week One",
		TherapistType: "physiotherapie",
		Entries:       []domain.ProgramEntry{{TaskTemplateID: "tt1", DayOffset: 0, Repeats: 3}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(tpl.Entries) != 1 || tpl.Entries[0].Repeats != 3 {
		t.Fatalf("entries not stored: %+v", tpl.Entries)
	}
}
