package service

import (
	"log/slog"
	"strings"

	"hireflow/internal/apperrors"
	"hireflow/internal/models"
	"hireflow/internal/repository"
)

// DecisionService validates and records interviewer verdicts and the HR
// final decision. The two axes are independent: interviewer feedback never
// gates the HR decision, but an HR override of a non-selected panel verdict
// must carry a reason.
type DecisionService struct {
	evalRepo    *repository.EvaluationRepository
	detailRepo  *repository.InterviewDetailRepository
	historyRepo *repository.AssignmentHistoryRepository
}

// NewDecisionService creates a new decision service
func NewDecisionService(
	evalRepo *repository.EvaluationRepository,
	detailRepo *repository.InterviewDetailRepository,
	historyRepo *repository.AssignmentHistoryRepository,
) *DecisionService {
	return &DecisionService{evalRepo: evalRepo, detailRepo: detailRepo, historyRepo: historyRepo}
}

// SubmitInterviewerFeedback records an interviewer's verdict on their own
// assignment and recomputes the evaluation's aggregate interviewer status.
func (s *DecisionService) SubmitInterviewerFeedback(detailID, interviewerID uint, status string, feedback, holdReason *string) error {
	if !isDecisionStatus(status) {
		return apperrors.Validation("status must be selected, rejected or on_hold")
	}
	if status == models.DecisionOnHold && isBlank(holdReason) {
		return apperrors.Validation("a hold reason is required when placing a candidate on hold")
	}
	if status != models.DecisionOnHold {
		holdReason = nil
	}

	detail, err := s.detailRepo.GetByID(detailID)
	if err != nil {
		return apperrors.Upstream("decision.feedback detail lookup failed", err)
	}
	if detail == nil {
		return apperrors.NotFound("interview assignment not found")
	}
	if detail.InterviewerID != interviewerID {
		return apperrors.Validation("feedback may only be submitted by the assigned interviewer")
	}

	if err := s.detailRepo.UpdateFeedback(detailID, status, feedback, holdReason); err != nil {
		return apperrors.Upstream("decision.feedback update failed", err)
	}

	// History mirroring is best effort, the detail row is authoritative.
	if err := s.historyRepo.MirrorInterviewerFeedback(detail.EvaluationID, interviewerID, status, feedback); err != nil {
		slog.Error("failed to mirror feedback into history",
			"evaluation_id", detail.EvaluationID, "interviewer_id", interviewerID, "error", err)
	}

	if err := s.recomputeOverallStatus(detail.EvaluationID); err != nil {
		slog.Error("failed to recompute interviewer overall status",
			"evaluation_id", detail.EvaluationID, "error", err)
	}
	return nil
}

// SubmitHRDecision records the final HR decision on an evaluation
func (s *DecisionService) SubmitHRDecision(evaluationID uint, status string, reason, remarks *string) (*models.Evaluation, error) {
	if !isDecisionStatus(status) {
		return nil, apperrors.Validation("status must be selected, rejected or on_hold")
	}

	eval, err := s.evalRepo.GetByID(evaluationID)
	if err != nil {
		return nil, apperrors.Upstream("decision.hr evaluation lookup failed", err)
	}
	if eval == nil {
		return nil, apperrors.NotFound("evaluation not found")
	}

	if HRReasonRequired(status, eval.InterviewerOverallStatus) {
		if isBlank(reason) {
			return nil, apperrors.Validation("a reason is required for this decision")
		}
	} else {
		// A reason is optional here and never stored.
		reason = nil
	}

	if err := s.evalRepo.UpdateHRDecision(evaluationID, status, reason, remarks); err != nil {
		return nil, apperrors.Upstream("decision.hr update failed", err)
	}

	if err := s.historyRepo.MirrorHRDecision(evaluationID, status, reason); err != nil {
		slog.Error("failed to mirror HR decision into history",
			"evaluation_id", evaluationID, "error", err)
	}

	updated, err := s.evalRepo.GetByID(evaluationID)
	if err != nil {
		return nil, apperrors.Upstream("decision.hr reload failed", err)
	}
	return updated, nil
}

// HRReasonRequired reports whether an HR decision must carry a reason.
// Rejections and holds always do; a selection does when it overrides a panel
// verdict that was not itself a selection.
func HRReasonRequired(hrStatus, interviewerOverallStatus string) bool {
	switch hrStatus {
	case models.DecisionRejected, models.DecisionOnHold:
		return true
	case models.DecisionSelected:
		return interviewerOverallStatus != models.DecisionSelected
	}
	return false
}

// AggregateInterviewerStatus folds individual interviewer verdicts into one
// panel verdict. Any selection wins, then any hold, then unanimous
// rejection; anything else stays pending.
func AggregateInterviewerStatus(statuses []string) string {
	if len(statuses) == 0 {
		return models.DecisionPending
	}

	anyHold := false
	allRejected := true
	for _, status := range statuses {
		switch status {
		case models.DecisionSelected:
			return models.DecisionSelected
		case models.DecisionOnHold:
			anyHold = true
			allRejected = false
		case models.DecisionRejected:
		default:
			allRejected = false
		}
	}

	if anyHold {
		return models.DecisionOnHold
	}
	if allRejected {
		return models.DecisionRejected
	}
	return models.DecisionPending
}

func (s *DecisionService) recomputeOverallStatus(evaluationID uint) error {
	statuses, err := s.detailRepo.StatusesByEvaluation(evaluationID)
	if err != nil {
		return err
	}
	return s.evalRepo.UpdateInterviewerOverallStatus(evaluationID, AggregateInterviewerStatus(statuses))
}

func isDecisionStatus(status string) bool {
	switch status {
	case models.DecisionSelected, models.DecisionRejected, models.DecisionOnHold:
		return true
	}
	return false
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
