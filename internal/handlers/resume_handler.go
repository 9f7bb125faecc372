package handlers

import (
	"net/http"

	"hireflow/internal/middleware"
	"hireflow/internal/models"
	"hireflow/internal/service"
)

// ResumeHandler exposes resume intake and version chains
type ResumeHandler struct {
	resumeService *service.ResumeService
	repairService *service.RepairService
}

// NewResumeHandler creates a new resume handler
func NewResumeHandler(resumeService *service.ResumeService, repairService *service.RepairService) *ResumeHandler {
	return &ResumeHandler{resumeService: resumeService, repairService: repairService}
}

type submitResumeRequest struct {
	CandidateName  string `json:"candidate_name" validate:"required_without=CandidateEmail"`
	CandidateEmail string `json:"candidate_email" validate:"omitempty,email"`
	CandidatePhone string `json:"candidate_phone"`
	ResumeText     string `json:"resume_text" validate:"required"`
	JobID          uint   `json:"job_id" validate:"required,gt=0"`
}

type submitResumeResponse struct {
	Resume     models.ResumeSubmission `json:"resume"`
	Evaluation models.Evaluation       `json:"evaluation"`
}

// Submit godoc
// @Summary Submit a resume
// @Description Records a resume against a job posting, attaching it to the candidate's version chain, and queues automated scoring
// @Tags resumes
// @Accept json
// @Produce json
// @Param request body submitResumeRequest true "Submission"
// @Success 201 {object} submitResumeResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /resumes [post]
func (h *ResumeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitResumeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	intake := service.ResumeIntake{
		CandidateName:  req.CandidateName,
		CandidateEmail: req.CandidateEmail,
		CandidatePhone: req.CandidatePhone,
		ResumeText:     req.ResumeText,
		JobID:          req.JobID,
	}
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		intake.UploadedBy = &userID
	}

	resume, eval, err := h.resumeService.Submit(intake)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, submitResumeResponse{Resume: *resume, Evaluation: *eval})
}

// Get godoc
// @Summary Get a resume submission
// @Tags resumes
// @Produce json
// @Param id path int true "Submission ID"
// @Success 200 {object} models.ResumeSubmission
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /resumes/{id} [get]
func (h *ResumeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	resume, err := h.resumeService.GetSubmission(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resume)
}

// Versions godoc
// @Summary List a candidate's resume version chain
// @Tags resumes
// @Produce json
// @Param id path int true "Submission ID"
// @Success 200 {array} models.ResumeSubmission
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /resumes/{id}/versions [get]
func (h *ResumeHandler) Versions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	versions, err := h.resumeService.ListVersions(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, versions)
}

type duplicateCheckRequest struct {
	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `json:"candidate_email" validate:"omitempty,email"`
}

type duplicateCheckResponse struct {
	models.IdentityResolution
	RepairedSlots int `json:"repaired_slots"`
}

// CheckDuplicate godoc
// @Summary Check whether a candidate already exists
// @Description Reports how a name/email pair would resolve. As a side effect, orphaned slot bookings for the candidate are repaired.
// @Tags resumes
// @Accept json
// @Produce json
// @Param request body duplicateCheckRequest true "Candidate identity"
// @Success 200 {object} duplicateCheckResponse
// @Security BearerAuth
// @Router /resumes/check-duplicate [post]
func (h *ResumeHandler) CheckDuplicate(w http.ResponseWriter, r *http.Request) {
	var req duplicateCheckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	repaired := 0
	if req.CandidateEmail != "" {
		count, err := h.repairService.RepairOrphanedAssignments(req.CandidateEmail)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		repaired = count
	}

	resolution := h.resumeService.CheckDuplicate(req.CandidateEmail, req.CandidateName)
	respondJSON(w, http.StatusOK, duplicateCheckResponse{IdentityResolution: *resolution, RepairedSlots: repaired})
}
