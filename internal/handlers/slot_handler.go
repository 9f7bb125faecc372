package handlers

import (
	"net/http"
	"time"

	"hireflow/internal/middleware"
	"hireflow/internal/service"
)

// SlotHandler exposes interviewer availability management
type SlotHandler struct {
	slotService *service.SlotService
}

// NewSlotHandler creates a new slot handler
func NewSlotHandler(slotService *service.SlotService) *SlotHandler {
	return &SlotHandler{slotService: slotService}
}

type publishSlotRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// Publish godoc
// @Summary Publish an availability slot
// @Description Publishes a free time slot for the calling interviewer. Re-publishing an existing window is a no-op.
// @Tags slots
// @Accept json
// @Produce json
// @Param request body publishSlotRequest true "Time window"
// @Success 201 {object} models.TimeSlot
// @Success 200 {object} models.TimeSlot
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /slots [post]
func (h *SlotHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req publishSlotRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	slot, created, err := h.slotService.Publish(userID, req.StartTime, req.EndTime)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, slot)
}

// ListMine godoc
// @Summary List the calling interviewer's future slots
// @Tags slots
// @Produce json
// @Param free query bool false "Only free slots"
// @Success 200 {array} models.TimeSlot
// @Security BearerAuth
// @Router /slots [get]
func (h *SlotHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	freeOnly := r.URL.Query().Get("free") == "true"
	slots, err := h.slotService.ListAvailable(userID, freeOnly)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slots)
}

// ListForInterviewer godoc
// @Summary List an interviewer's future free slots
// @Tags slots
// @Produce json
// @Param id path int true "Interviewer ID"
// @Success 200 {array} models.TimeSlot
// @Security BearerAuth
// @Router /interviewers/{id}/slots [get]
func (h *SlotHandler) ListForInterviewer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	slots, err := h.slotService.ListAvailable(id, true)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slots)
}

// Delete godoc
// @Summary Delete a free slot
// @Description Removes a slot that has not been booked. Booked slots cannot be deleted.
// @Tags slots
// @Produce json
// @Param id path int true "Slot ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /slots/{id} [delete]
func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.slotService.Delete(id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Release godoc
// @Summary Force-release a booked slot
// @Description Administrative cleanup: frees a booked slot without touching the assignment that booked it
// @Tags slots
// @Produce json
// @Param id path int true "Slot ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /slots/{id}/release [post]
func (h *SlotHandler) Release(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.slotService.Release(id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
