package handlers

import (
	"net/http"

	"hireflow/internal/middleware"
	"hireflow/internal/models"
	"hireflow/internal/repository"
	"hireflow/internal/service"
)

// JobHandler exposes job posting management and panel availability
type JobHandler struct {
	jobRepo     *repository.JobRepository
	slotService *service.SlotService
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobRepo *repository.JobRepository, slotService *service.SlotService) *JobHandler {
	return &JobHandler{jobRepo: jobRepo, slotService: slotService}
}

type createJobRequest struct {
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description" validate:"required"`
	InterviewerIDs []uint `json:"interviewer_ids" validate:"omitempty,dive,gt=0"`
}

// Create godoc
// @Summary Create a job posting
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body createJobRequest true "New posting"
// @Success 201 {object} models.JobPosting
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /jobs [post]
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	job := &models.JobPosting{
		Title:          req.Title,
		Description:    req.Description,
		IsOpen:         true,
		InterviewerIDs: req.InterviewerIDs,
	}
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		job.CreatedBy = &userID
	}

	if err := h.jobRepo.Create(job); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create job posting")
		return
	}
	respondJSON(w, http.StatusCreated, job)
}

// List godoc
// @Summary List job postings
// @Tags jobs
// @Produce json
// @Param open query bool false "Only open postings"
// @Success 200 {array} models.JobPosting
// @Security BearerAuth
// @Router /jobs [get]
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	openOnly := r.URL.Query().Get("open") == "true"
	jobs, err := h.jobRepo.List(openOnly)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list job postings")
		return
	}
	respondJSON(w, http.StatusOK, jobs)
}

// Get godoc
// @Summary Get a job posting
// @Tags jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} models.JobPosting
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	job, err := h.jobRepo.GetByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load job posting")
		return
	}
	if job == nil {
		respondError(w, http.StatusNotFound, "job posting not found")
		return
	}
	respondJSON(w, http.StatusOK, job)
}

type setJobOpenRequest struct {
	IsOpen *bool `json:"is_open" validate:"required"`
}

// SetOpen godoc
// @Summary Open or close a job posting
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path int true "Job ID"
// @Param request body setJobOpenRequest true "Open flag"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /jobs/{id}/status [put]
func (h *JobHandler) SetOpen(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req setJobOpenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.jobRepo.SetOpen(id, *req.IsOpen); err != nil {
		respondError(w, http.StatusNotFound, "job posting not found")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type replaceInterviewersRequest struct {
	InterviewerIDs []uint `json:"interviewer_ids" validate:"required,min=1,dive,gt=0"`
}

// ReplaceInterviewers godoc
// @Summary Replace the interviewers mapped to a job
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path int true "Job ID"
// @Param request body replaceInterviewersRequest true "Interviewer IDs"
// @Success 204
// @Security BearerAuth
// @Router /jobs/{id}/interviewers [put]
func (h *JobHandler) ReplaceInterviewers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req replaceInterviewersRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.jobRepo.ReplaceInterviewers(id, req.InterviewerIDs); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update interviewers")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// FreeSlots godoc
// @Summary List free slots across a job's interviewers
// @Description Returns the future free slots of every interviewer mapped to the job
// @Tags jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {array} models.TimeSlot
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /jobs/{id}/slots [get]
func (h *JobHandler) FreeSlots(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	slots, err := h.slotService.ListFreeForJob(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slots)
}

// PanelSlots godoc
// @Summary List windows where the whole panel is free
// @Description Returns the future windows during which every interviewer mapped to the job has a free slot
// @Tags jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {array} models.PanelSlot
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /jobs/{id}/panel-slots [get]
func (h *JobHandler) PanelSlots(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	windows, err := h.slotService.ListPanelWindows(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, windows)
}
