package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"hireflow/internal/models"
	"hireflow/internal/repository"
)

// ScoringService processes queued scoring jobs: parse the resume, score it
// against the job posting and persist the outcome on the evaluation.
type ScoringService struct {
	resumeRepo *repository.ResumeRepository
	evalRepo   *repository.EvaluationRepository
	jobRepo    *repository.JobRepository
	parser     *ParserService
}

// NewScoringService creates a new scoring service
func NewScoringService(
	resumeRepo *repository.ResumeRepository,
	evalRepo *repository.EvaluationRepository,
	jobRepo *repository.JobRepository,
	parser *ParserService,
) *ScoringService {
	return &ScoringService{resumeRepo: resumeRepo, evalRepo: evalRepo, jobRepo: jobRepo, parser: parser}
}

// Process scores one job. Returning an error requeues the message, so
// permanent conditions (missing rows) are logged and swallowed while
// collaborator failures propagate for retry.
func (s *ScoringService) Process(ctx context.Context, job ScoringJob) error {
	resume, err := s.resumeRepo.GetByID(job.ResumeID)
	if err != nil {
		return fmt.Errorf("resume lookup failed: %w", err)
	}
	posting, err := s.jobRepo.GetByID(job.JobID)
	if err != nil {
		return fmt.Errorf("job lookup failed: %w", err)
	}
	if resume == nil || posting == nil {
		slog.Warn("dropping scoring job for missing rows",
			"resume_id", job.ResumeID, "job_id", job.JobID)
		return nil
	}

	profile, err := s.parser.ParseResume(ctx, resume.ResumeText)
	if err != nil {
		return err
	}
	s.storeProfile(resume, profile)

	result, err := s.parser.MatchResume(ctx, profile, posting)
	if err != nil {
		return err
	}

	if err := s.evalRepo.UpdateMatchResult(job.EvaluationID, *result); err != nil {
		return fmt.Errorf("match result persist failed: %w", err)
	}

	slog.Info("evaluation scored",
		"evaluation_id", job.EvaluationID,
		"overall_match", result.OverallMatch,
		"status", result.Status)
	return nil
}

func (s *ScoringService) storeProfile(resume *models.ResumeSubmission, profile *models.CandidateProfile) {
	raw, err := json.Marshal(profile)
	if err != nil {
		slog.Error("failed to marshal candidate profile", "resume_id", resume.ID, "error", err)
		return
	}
	profileJSON := string(raw)
	skills := strings.Join(profile.Skills, ", ")
	if err := s.resumeRepo.UpdateProfile(resume.ID, skills, profile.ExperienceYears, &profileJSON); err != nil {
		slog.Error("failed to store candidate profile", "resume_id", resume.ID, "error", err)
	}
}
