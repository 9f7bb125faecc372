package handlers

import (
	"net/http"

	"hireflow/internal/middleware"
	"hireflow/internal/models"
	"hireflow/internal/service"
)

// AssignmentHandler exposes interview assignment for evaluations
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

type assignRequest struct {
	Assignments []models.AssignmentRequest `json:"assignments" validate:"required,min=1,dive"`
}

// Assign godoc
// @Summary Assign interviewers to an evaluation
// @Description Books the requested interviewer/slot pairs atomically, replacing any previous assignment for the evaluation. A failed meeting-link step is reported in the response warnings, not as a request failure.
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path int true "Evaluation ID"
// @Param request body assignRequest true "Interviewer/slot pairs"
// @Success 201 {object} service.AssignmentResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /evaluations/{id}/assignments [post]
func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req assignRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var assignedBy *uint
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		assignedBy = &userID
	}

	result, err := h.assignmentService.Assign(id, req.Assignments, assignedBy)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// Withdraw godoc
// @Summary Withdraw the current assignment
// @Description Frees the evaluation's booked slots and removes its assignment rows. History is kept.
// @Tags assignments
// @Produce json
// @Param id path int true "Evaluation ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /evaluations/{id}/assignments [delete]
func (h *AssignmentHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.assignmentService.Withdraw(id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// List godoc
// @Summary List the current assignment rows for an evaluation
// @Tags assignments
// @Produce json
// @Param id path int true "Evaluation ID"
// @Success 200 {array} models.InterviewDetailWithNames
// @Security BearerAuth
// @Router /evaluations/{id}/assignments [get]
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	details, err := h.assignmentService.ListDetails(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

// History godoc
// @Summary List the assignment history ledger for an evaluation
// @Tags assignments
// @Produce json
// @Param id path int true "Evaluation ID"
// @Success 200 {array} models.AssignmentHistory
// @Security BearerAuth
// @Router /evaluations/{id}/history [get]
func (h *AssignmentHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.assignmentService.ListHistory(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
