package handlers

import (
	"net/http"

	"hireflow/internal/middleware"
	"hireflow/internal/repository"
	"hireflow/internal/service"
)

// DecisionHandler exposes interviewer feedback and the HR final decision
type DecisionHandler struct {
	decisionService *service.DecisionService
	detailRepo      *repository.InterviewDetailRepository
}

// NewDecisionHandler creates a new decision handler
func NewDecisionHandler(decisionService *service.DecisionService, detailRepo *repository.InterviewDetailRepository) *DecisionHandler {
	return &DecisionHandler{decisionService: decisionService, detailRepo: detailRepo}
}

type feedbackRequest struct {
	Status     string  `json:"status" validate:"required,oneof=selected rejected on_hold"`
	Feedback   *string `json:"feedback"`
	HoldReason *string `json:"hold_reason"`
}

// SubmitFeedback godoc
// @Summary Submit interviewer feedback
// @Description Records the calling interviewer's verdict on their assignment. A hold requires a reason.
// @Tags decisions
// @Accept json
// @Produce json
// @Param id path int true "Interview detail ID"
// @Param request body feedbackRequest true "Verdict"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /interviews/{id}/feedback [put]
func (h *DecisionHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req feedbackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	err := h.decisionService.SubmitInterviewerFeedback(id, userID, req.Status, req.Feedback, req.HoldReason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// MyAssignments godoc
// @Summary List the calling interviewer's assignments
// @Tags decisions
// @Produce json
// @Success 200 {array} models.InterviewDetailWithNames
// @Security BearerAuth
// @Router /interviews/mine [get]
func (h *DecisionHandler) MyAssignments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	details, err := h.detailRepo.ListByInterviewer(userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list assignments")
		return
	}
	respondJSON(w, http.StatusOK, details)
}

type hrDecisionRequest struct {
	Status  string  `json:"status" validate:"required,oneof=selected rejected on_hold"`
	Reason  *string `json:"reason"`
	Remarks *string `json:"remarks"`
}

// SubmitHRDecision godoc
// @Summary Record the HR final decision
// @Description Rejections and holds require a reason, as does selecting a candidate the panel did not select
// @Tags decisions
// @Accept json
// @Produce json
// @Param id path int true "Evaluation ID"
// @Param request body hrDecisionRequest true "Decision"
// @Success 200 {object} models.Evaluation
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /evaluations/{id}/decision [put]
func (h *DecisionHandler) SubmitHRDecision(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req hrDecisionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	eval, err := h.decisionService.SubmitHRDecision(id, req.Status, req.Reason, req.Remarks)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, eval)
}
