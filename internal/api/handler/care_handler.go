package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/habitdesk/habitdesk-api/internal/api/metrics"
	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
)

// CareHandler handles patients, program assignment, and task tracking.
type CareHandler struct {
	service ports.CareService
}

func NewCareHandler(service ports.CareService) *CareHandler {
	return &CareHandler{service: service}
}

// CreatePatient adds a patient record owned by the calling therapist.
//
// @Summary      Create a patient
// @Tags         patients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      patientRequest  true  "Patient details"
// @Success      201   {object}  patientResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /v1/patients [post]
func (h *CareHandler) CreatePatient(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	p, err := h.service.CreatePatient(c.Request().Context(), caller, ports.PatientInput{
		Name:  req.Name,
		Email: req.Email,
		Notes: req.Notes,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, newPatientResponse(p))
}

// GetPatient returns one patient owned by the caller.
//
// @Summary      Get a patient
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Patient ID"
// @Success      200  {object}  patientResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/patients/{id} [get]
func (h *CareHandler) GetPatient(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	p, err := h.service.GetPatient(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, newPatientResponse(p))
}

// ListPatients returns the caller's patients.
//
// @Summary      List patients
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  patientResponse
// @Router       /v1/patients [get]
func (h *CareHandler) ListPatients(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	patients, err := h.service.ListPatients(c.Request().Context(), caller)
	if err != nil {
		return jsonError(c, err)
	}

	out := make([]*patientResponse, 0, len(patients))
	for _, p := range patients {
		out = append(out, newPatientResponse(p))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdatePatient replaces a patient's editable fields.
//
// @Summary      Update a patient
// @Tags         patients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Patient ID"
// @Param        body  body      patientRequest  true  "Patient details"
// @Success      200   {object}  patientResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/patients/{id} [put]
func (h *CareHandler) UpdatePatient(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	p, err := h.service.UpdatePatient(c.Request().Context(), caller, c.Param("id"), ports.PatientInput{
		Name:  req.Name,
		Email: req.Email,
		Notes: req.Notes,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, newPatientResponse(p))
}

// DeletePatient removes a patient record.
//
// @Summary      Delete a patient
// @Tags         patients
// @Security     BearerAuth
// @Param        id  path  string  true  "Patient ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/patients/{id} [delete]
func (h *CareHandler) DeletePatient(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	if err := h.service.DeletePatient(c.Request().Context(), caller, c.Param("id")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AssignProgram instantiates a program template for a patient.
//
// @Summary      Assign a program to a patient
// @Tags         programs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      assignProgramRequest  true  "Assignment details"
// @Success      201   {object}  assignProgramResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/programs/assign [post]
func (h *CareHandler) AssignProgram(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req assignProgramRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.service.AssignProgram(c.Request().Context(), ports.AssignProgramInput{
		Caller:            caller,
		PatientID:         req.PatientID,
		ProgramTemplateID: req.ProgramTemplateID,
	})
	if err != nil {
		return jsonError(c, err)
	}

	metrics.ProgramsAssignedTotal.Inc()
	return c.JSON(http.StatusCreated, assignProgramResponse{
		AssignmentID: result.AssignmentID,
		ProgramID:    result.ProgramID,
		TaskCount:    result.TaskCount,
	})
}

// ListAssignments returns the assignments for one of the caller's patients.
//
// @Summary      List a patient's assignments
// @Tags         programs
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string  true  "Patient ID"
// @Success      200  {array}  assignmentResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/patients/{id}/assignments [get]
func (h *CareHandler) ListAssignments(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	assignments, err := h.service.ListAssignments(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}

	out := make([]*assignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, newAssignmentResponse(a))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateAssignmentStatus moves an assignment through its lifecycle.
//
// @Summary      Update an assignment's status
// @Tags         programs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                         true  "Assignment ID"
// @Param        body  body  updateAssignmentStatusRequest  true  "New status"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /v1/assignments/{id}/status [put]
func (h *CareHandler) UpdateAssignmentStatus(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req updateAssignmentStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.service.UpdateAssignmentStatus(c.Request().Context(), caller, c.Param("id"), domain.AssignmentStatus(req.Status)); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListProgramTasks returns the materialised tasks of a program.
//
// @Summary      List a program's tasks
// @Tags         programs
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string  true  "Program ID"
// @Success      200  {array}  taskResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/programs/{id}/tasks [get]
func (h *CareHandler) ListProgramTasks(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	tasks, err := h.service.ListProgramTasks(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}

	out := make([]*taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskResponse(t))
	}
	return c.JSON(http.StatusOK, out)
}

// CompleteTask marks a program task done.
//
// @Summary      Complete a task
// @Tags         programs
// @Security     BearerAuth
// @Param        id  path  string  true  "Task ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/tasks/{id}/complete [post]
func (h *CareHandler) CompleteTask(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	if err := h.service.CompleteTask(c.Request().Context(), caller, c.Param("id")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
