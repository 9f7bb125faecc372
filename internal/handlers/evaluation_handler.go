package handlers

import (
	"net/http"
	"strconv"

	"hireflow/internal/models"
	"hireflow/internal/repository"
)

// EvaluationHandler exposes read access to evaluations
type EvaluationHandler struct {
	evalRepo *repository.EvaluationRepository
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(evalRepo *repository.EvaluationRepository) *EvaluationHandler {
	return &EvaluationHandler{evalRepo: evalRepo}
}

// Get godoc
// @Summary Get an evaluation
// @Tags evaluations
// @Produce json
// @Param id path int true "Evaluation ID"
// @Success 200 {object} models.Evaluation
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /evaluations/{id} [get]
func (h *EvaluationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	eval, err := h.evalRepo.GetByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load evaluation")
		return
	}
	if eval == nil {
		respondError(w, http.StatusNotFound, "evaluation not found")
		return
	}
	respondJSON(w, http.StatusOK, eval)
}

// List godoc
// @Summary List evaluations
// @Description Filter by job_id or match status. One filter is required.
// @Tags evaluations
// @Produce json
// @Param job_id query int false "Job posting ID"
// @Param status query string false "Match status" Enums(pending, accepted, rejected)
// @Success 200 {array} models.Evaluation
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /evaluations [get]
func (h *EvaluationHandler) List(w http.ResponseWriter, r *http.Request) {
	var evals []models.Evaluation
	var err error

	switch {
	case r.URL.Query().Get("job_id") != "":
		jobID, parseErr := strconv.ParseUint(r.URL.Query().Get("job_id"), 10, 32)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "invalid job_id")
			return
		}
		evals, err = h.evalRepo.ListByJob(uint(jobID))
	case r.URL.Query().Get("status") != "":
		evals, err = h.evalRepo.ListByStatus(r.URL.Query().Get("status"))
	default:
		respondError(w, http.StatusBadRequest, "job_id or status filter is required")
		return
	}

	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list evaluations")
		return
	}
	respondJSON(w, http.StatusOK, evals)
}
