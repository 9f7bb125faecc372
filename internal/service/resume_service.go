package service

import (
	"log/slog"

	"hireflow/internal/apperrors"
	"hireflow/internal/models"
	"hireflow/internal/repository"
)

// ScoringJob identifies one evaluation awaiting automated scoring
type ScoringJob struct {
	ResumeID     uint `json:"resume_id"`
	EvaluationID uint `json:"evaluation_id"`
	JobID        uint `json:"job_id"`
}

// ScoringEnqueuer hands scoring jobs to the background pipeline
type ScoringEnqueuer interface {
	EnqueueScoring(job ScoringJob) error
}

// ResumeIntake is the input to a resume submission
type ResumeIntake struct {
	CandidateName  string
	CandidateEmail string
	CandidatePhone string
	ResumeText     string
	JobID          uint
	UploadedBy     *uint
}

// ResumeService handles resume intake: identity resolution, version
// chaining, evaluation creation and scoring hand-off.
type ResumeService struct {
	resumeRepo *repository.ResumeRepository
	evalRepo   *repository.EvaluationRepository
	jobRepo    *repository.JobRepository
	identity   *IdentityService
	enqueuer   ScoringEnqueuer
}

// NewResumeService creates a new resume service
func NewResumeService(
	resumeRepo *repository.ResumeRepository,
	evalRepo *repository.EvaluationRepository,
	jobRepo *repository.JobRepository,
	identity *IdentityService,
	enqueuer ScoringEnqueuer,
) *ResumeService {
	return &ResumeService{
		resumeRepo: resumeRepo,
		evalRepo:   evalRepo,
		jobRepo:    jobRepo,
		identity:   identity,
		enqueuer:   enqueuer,
	}
}

// Submit records a resume submission against a job posting. The submission
// is attached to the candidate's existing version chain when identity
// resolution finds one; when resolution cannot reach the chain data it
// degrades to a fresh candidate so intake is never blocked.
func (s *ResumeService) Submit(intake ResumeIntake) (*models.ResumeSubmission, *models.Evaluation, error) {
	if intake.ResumeText == "" {
		return nil, nil, apperrors.Validation("resume text is required")
	}
	if intake.CandidateEmail == "" && intake.CandidateName == "" {
		return nil, nil, apperrors.Validation("candidate name or email is required")
	}

	job, err := s.jobRepo.GetByID(intake.JobID)
	if err != nil {
		return nil, nil, apperrors.Upstream("resume.submit job lookup failed", err)
	}
	if job == nil {
		return nil, nil, apperrors.NotFound("job posting not found")
	}
	if !job.IsOpen {
		return nil, nil, apperrors.Validation("job posting is closed")
	}

	resolution := s.identity.Resolve(intake.CandidateEmail, intake.CandidateName)

	resume := &models.ResumeSubmission{
		CandidateName:  NormalizeName(intake.CandidateName),
		CandidateEmail: NormalizeEmail(intake.CandidateEmail),
		CandidatePhone: intake.CandidatePhone,
		ResumeText:     intake.ResumeText,
		ParentID:       resolution.RootID,
		VersionNumber:  resolution.VersionNumber,
		UploadedBy:     intake.UploadedBy,
	}
	if err := s.resumeRepo.Create(resume); err != nil {
		return nil, nil, apperrors.Upstream("resume.submit insert failed", err)
	}

	eval := &models.Evaluation{
		ResumeID:                 resume.ID,
		JobID:                    intake.JobID,
		Status:                   models.MatchStatusPending,
		InterviewerOverallStatus: models.DecisionPending,
		HRFinalStatus:            models.DecisionPending,
	}
	if err := s.evalRepo.Create(eval); err != nil {
		return nil, nil, apperrors.Upstream("resume.submit evaluation insert failed", err)
	}

	if s.enqueuer != nil {
		job := ScoringJob{ResumeID: resume.ID, EvaluationID: eval.ID, JobID: intake.JobID}
		if err := s.enqueuer.EnqueueScoring(job); err != nil {
			// Intake already succeeded; scoring stays pending until a retry.
			slog.Error("failed to enqueue scoring job", "evaluation_id", eval.ID, "error", err)
		}
	}

	return resume, eval, nil
}

// CheckDuplicate reports how an incoming name/email pair would resolve
// without creating anything.
func (s *ResumeService) CheckDuplicate(email, name string) *models.IdentityResolution {
	return s.identity.Resolve(email, name)
}

// GetSubmission retrieves a submission by ID
func (s *ResumeService) GetSubmission(id uint) (*models.ResumeSubmission, error) {
	resume, err := s.resumeRepo.GetByID(id)
	if err != nil {
		return nil, apperrors.Upstream("resume.get query failed", err)
	}
	if resume == nil {
		return nil, apperrors.NotFound("resume submission not found")
	}
	return resume, nil
}

// ListVersions retrieves the version chain containing the given submission
func (s *ResumeService) ListVersions(id uint) ([]models.ResumeSubmission, error) {
	resume, err := s.resumeRepo.GetByID(id)
	if err != nil {
		return nil, apperrors.Upstream("resume.versions query failed", err)
	}
	if resume == nil {
		return nil, apperrors.NotFound("resume submission not found")
	}

	rootID := resume.ID
	if resume.ParentID != nil {
		rootID = *resume.ParentID
	}
	versions, err := s.resumeRepo.ListVersions(rootID)
	if err != nil {
		return nil, apperrors.Upstream("resume.versions query failed", err)
	}
	return versions, nil
}
