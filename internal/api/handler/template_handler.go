package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/habitdesk/habitdesk-api/internal/api/metrics"
	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
)

// TemplateHandler handles the sub-type catalog and template CRUD.
type TemplateHandler struct {
	service ports.TemplateService
}

func NewTemplateHandler(service ports.TemplateService) *TemplateHandler {
	return &TemplateHandler{service: service}
}

// --- Therapist type catalog ---

// CreateTherapistType adds a sub-type to the catalog. Admin only.
//
// @Summary      Create a therapist type
// @Tags         therapist-types
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTherapistTypeRequest  true  "Type details"
// @Success      201   {object}  therapistTypeResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/therapist-types [post]
func (h *TemplateHandler) CreateTherapistType(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req createTherapistTypeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	t, err := h.service.CreateTherapistType(c.Request().Context(), caller, req.Name, req.DisplayName)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, newTherapistTypeResponse(t))
}

// ListTherapistTypes returns the catalog. Any authenticated caller.
//
// @Summary      List therapist types
// @Tags         therapist-types
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  therapistTypeResponse
// @Router       /v1/therapist-types [get]
func (h *TemplateHandler) ListTherapistTypes(c echo.Context) error {
	types, err := h.service.ListTherapistTypes(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}

	out := make([]*therapistTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, newTherapistTypeResponse(t))
	}
	return c.JSON(http.StatusOK, out)
}

// DeleteTherapistType removes a sub-type from the catalog. Admin only.
//
// @Summary      Delete a therapist type
// @Tags         therapist-types
// @Security     BearerAuth
// @Param        id  path  string  true  "Type ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/therapist-types/{id} [delete]
func (h *TemplateHandler) DeleteTherapistType(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteTherapistType(c.Request().Context(), caller, c.Param("id")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Task templates ---

// CreateTaskTemplate creates a task template scoped to a therapist type.
//
// @Summary      Create a task template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      taskTemplateRequest  true  "Template details"
// @Success      201   {object}  taskTemplateResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/templates/tasks [post]
func (h *TemplateHandler) CreateTaskTemplate(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req taskTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	t, err := h.service.CreateTaskTemplate(c.Request().Context(), caller, ports.TaskTemplateInput{
		Title:         req.Title,
		Description:   req.Description,
		TherapistType: req.TherapistType,
		TaskType:      req.TaskType,
		Config:        req.Config,
	})
	if err != nil {
		return jsonError(c, err)
	}

	metrics.TemplatesCreatedTotal.WithLabelValues("task", t.TherapistType).Inc()
	return c.JSON(http.StatusCreated, newTaskTemplateResponse(t))
}

// GetTaskTemplate returns one task template.
//
// @Summary      Get a task template
// @Tags         templates
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Template ID"
// @Success      200  {object}  taskTemplateResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/templates/tasks/{id} [get]
func (h *TemplateHandler) GetTaskTemplate(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	t, err := h.service.GetTaskTemplate(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, newTaskTemplateResponse(t))
}

// ListTaskTemplates returns a paged, scope-filtered template listing.
//
// @Summary      List task templates
// @Tags         templates
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Partial title match"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  pagedResponse[taskTemplateResponse]
// @Router       /v1/templates/tasks [get]
func (h *TemplateHandler) ListTaskTemplates(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	result, err := h.service.ListTaskTemplates(c.Request().Context(), listInput(c, caller))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, newPagedResponse(result, func(t *domain.TaskTemplate) *taskTemplateResponse {
		return newTaskTemplateResponse(t)
	}))
}

// UpdateTaskTemplate replaces a task template's fields.
//
// @Summary      Update a task template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Template ID"
// @Param        body  body      taskTemplateRequest  true  "Template details"
// @Success      200   {object}  taskTemplateResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/templates/tasks/{id} [put]
func (h *TemplateHandler) UpdateTaskTemplate(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req taskTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	t, err := h.service.UpdateTaskTemplate(c.Request().Context(), caller, c.Param("id"), ports.TaskTemplateInput{
		Title:         req.Title,
		Description:   req.Description,
		TherapistType: req.TherapistType,
		TaskType:      req.TaskType,
		Config:        req.Config,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, newTaskTemplateResponse(t))
}

// DeleteTaskTemplate removes a task template.
//
// @Summary      Delete a task template
// @Tags         templates
// @Security     BearerAuth
// @Param        id  path  string  true  "Template ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/templates/tasks/{id} [delete]
func (h *TemplateHandler) DeleteTaskTemplate(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteTaskTemplate(c.Request().Context(), caller, c.Param("id")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Program templates ---

// CreateProgramTemplate creates a program template referencing task
// templates within the caller's scope.
//
// @Summary      Create a program template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      programTemplateRequest  true  "Template details"
// @Success      201   {object}  programTemplateResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /v1/templates/programs [post]
func (h *TemplateHandler) CreateProgramTemplate(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req programTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	t, err := h.service.CreateProgramTemplate(c.Request().Context(), caller, ports.ProgramTemplateInput{
		Title:         req.Title,
		Description:   req.Description,
		TherapistType: req.TherapistType,
		Entries:       req.entries(),
	})
	if err != nil {
		return jsonError(c, err)
	}

	metrics.TemplatesCreatedTotal.WithLabelValues("program", t.TherapistType).Inc()
	return c.JSON(http.StatusCreated, newProgramTemplateResponse(t))
}

// GetProgramTemplate returns one program template.
//
// @Summary      Get a program template
// @Tags         templates
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Template ID"
// @Success      200  {object}  programTemplateResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/templates/programs/{id} [get]
func (h *TemplateHandler) GetProgramTemplate(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	t, err := h.service.GetProgramTemplate(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, newProgramTemplateResponse(t))
}

// ListProgramTemplates returns a paged, scope-filtered listing.
//
// @Summary      List program templates
// @Tags         templates
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Partial title match"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  pagedResponse[programTemplateResponse]
// @Router       /v1/templates/programs [get]
func (h *TemplateHandler) ListProgramTemplates(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	result, err := h.service.ListProgramTemplates(c.Request().Context(), listInput(c, caller))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, newPagedResponse(result, func(t *domain.ProgramTemplate) *programTemplateResponse {
		return newProgramTemplateResponse(t)
	}))
}

// UpdateProgramTemplate replaces a program template's fields.
//
// @Summary      Update a program template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Template ID"
// @Param        body  body      programTemplateRequest  true  "Template details"
// @Success      200   {object}  programTemplateResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/templates/programs/{id} [put]
func (h *TemplateHandler) UpdateProgramTemplate(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req programTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	t, err := h.service.UpdateProgramTemplate(c.Request().Context(), caller, c.Param("id"), ports.ProgramTemplateInput{
		Title:         req.Title,
		Description:   req.Description,
		TherapistType: req.TherapistType,
		Entries:       req.entries(),
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, newProgramTemplateResponse(t))
}

// DeleteProgramTemplate removes a program template.
//
// @Summary      Delete a program template
// @Tags         templates
// @Security     BearerAuth
// @Param        id  path  string  true  "Template ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/templates/programs/{id} [delete]
func (h *TemplateHandler) DeleteProgramTemplate(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteProgramTemplate(c.Request().Context(), caller, c.Param("id")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// listInput parses paging query params; the service normalises bounds.
func listInput(c echo.Context, caller ports.Caller) ports.ListTemplatesInput {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return ports.ListTemplatesInput{
		Caller: caller,
		Search: c.QueryParam("search"),
		Page:   page,
		Limit:  limit,
	}
}
