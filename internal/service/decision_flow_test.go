package service_test

import (
	"testing"
	"time"

	"hireflow/internal/apperrors"
	"hireflow/internal/models"
	"hireflow/internal/repository"
	"hireflow/internal/service"
	"hireflow/internal/testutil"
)

func newDecisionTestEnv(t *testing.T) (*testutil.TestContainers, *testutil.Fixtures, *service.DecisionService, *repository.EvaluationRepository, *repository.InterviewDetailRepository) {
	t.Helper()

	containers := testutil.SetupTestContainers(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	evalRepo := repository.NewEvaluationRepository(containers.DB)
	detailRepo := repository.NewInterviewDetailRepository(containers.DB)
	svc := service.NewDecisionService(evalRepo, detailRepo, repository.NewAssignmentHistoryRepository(containers.DB))

	return containers, fixtures, svc, evalRepo, detailRepo
}

// createAssignedInterview books a slot and records a detail row directly,
// returning the evaluation and detail IDs.
func createAssignedInterview(t *testing.T, fixtures *testutil.Fixtures, interviewerID uint, offset time.Duration) (uint, uint) {
	t.Helper()

	start := time.Now().Add(offset)
	slot := fixtures.CreateSlot(t, interviewerID, start, start.Add(time.Hour))
	resume := fixtures.CreateResume(t, "Jane Doe", "jane+"+offset.String()+"@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)

	if _, err := fixtures.DB.Exec(
		"UPDATE time_slots SET is_booked = TRUE, evaluation_id = $1 WHERE id = $2", eval.ID, slot.ID,
	); err != nil {
		t.Fatalf("Failed to book slot: %v", err)
	}

	var detailID uint
	err := fixtures.DB.QueryRow(`
		INSERT INTO interview_details (evaluation_id, slot_id, interviewer_id)
		VALUES ($1, $2, $3) RETURNING id
	`, eval.ID, slot.ID, interviewerID).Scan(&detailID)
	if err != nil {
		t.Fatalf("Failed to create interview detail: %v", err)
	}

	return eval.ID, detailID
}

func TestSubmitInterviewerFeedback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers, fixtures, svc, evalRepo, detailRepo := newDecisionTestEnv(t)
	defer containers.Cleanup(t)

	evalID, detailID := createAssignedInterview(t, fixtures, fixtures.Interviewer.ID, 24*time.Hour)

	feedback := "strong systems background"
	err := svc.SubmitInterviewerFeedback(detailID, fixtures.Interviewer.ID, models.DecisionSelected, &feedback, nil)
	if err != nil {
		t.Fatalf("Failed to submit feedback: %v", err)
	}

	detail, err := detailRepo.GetByID(detailID)
	if err != nil {
		t.Fatalf("Failed to reload detail: %v", err)
	}
	if detail.InterviewerStatus != models.DecisionSelected {
		t.Errorf("Expected status %s, got %s", models.DecisionSelected, detail.InterviewerStatus)
	}
	if detail.InterviewerFeedback == nil || *detail.InterviewerFeedback != feedback {
		t.Error("Feedback text should be stored")
	}

	eval, err := evalRepo.GetByID(evalID)
	if err != nil {
		t.Fatalf("Failed to reload evaluation: %v", err)
	}
	if eval.InterviewerOverallStatus != models.DecisionSelected {
		t.Errorf("Aggregate status should follow the single verdict, got %s", eval.InterviewerOverallStatus)
	}
}

func TestSubmitInterviewerFeedbackValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers, fixtures, svc, _, _ := newDecisionTestEnv(t)
	defer containers.Cleanup(t)

	_, detailID := createAssignedInterview(t, fixtures, fixtures.Interviewer.ID, 24*time.Hour)

	// Unknown status.
	err := svc.SubmitInterviewerFeedback(detailID, fixtures.Interviewer.ID, "maybe", nil, nil)
	if !apperrors.IsValidation(err) {
		t.Errorf("Unknown status should be rejected, got %v", err)
	}

	// Hold without a reason.
	err = svc.SubmitInterviewerFeedback(detailID, fixtures.Interviewer.ID, models.DecisionOnHold, nil, nil)
	if !apperrors.IsValidation(err) {
		t.Errorf("Hold without a reason should be rejected, got %v", err)
	}

	// Another interviewer cannot submit on this assignment.
	err = svc.SubmitInterviewerFeedback(detailID, fixtures.Interviewer2.ID, models.DecisionSelected, nil, nil)
	if !apperrors.IsValidation(err) {
		t.Errorf("Feedback by a different interviewer should be rejected, got %v", err)
	}

	// Unknown assignment.
	err = svc.SubmitInterviewerFeedback(99999, fixtures.Interviewer.ID, models.DecisionSelected, nil, nil)
	if !apperrors.IsNotFound(err) {
		t.Errorf("Unknown assignment should report not found, got %v", err)
	}
}

func TestAggregateStatusAcrossPanel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers, fixtures, svc, evalRepo, _ := newDecisionTestEnv(t)
	defer containers.Cleanup(t)

	// One evaluation, two interviewers on the panel.
	start := time.Now().Add(24 * time.Hour)
	slot1 := fixtures.CreateSlot(t, fixtures.Interviewer.ID, start, start.Add(time.Hour))
	slot2 := fixtures.CreateSlot(t, fixtures.Interviewer2.ID, start, start.Add(time.Hour))
	resume := fixtures.CreateResume(t, "Jane Doe", "jane@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)

	detailIDs := make([]uint, 2)
	for i, pair := range []struct {
		slotID        uint
		interviewerID uint
	}{
		{slot1.ID, fixtures.Interviewer.ID},
		{slot2.ID, fixtures.Interviewer2.ID},
	} {
		if _, err := fixtures.DB.Exec(
			"UPDATE time_slots SET is_booked = TRUE, evaluation_id = $1 WHERE id = $2", eval.ID, pair.slotID,
		); err != nil {
			t.Fatalf("Failed to book slot: %v", err)
		}
		err := fixtures.DB.QueryRow(`
			INSERT INTO interview_details (evaluation_id, slot_id, interviewer_id)
			VALUES ($1, $2, $3) RETURNING id
		`, eval.ID, pair.slotID, pair.interviewerID).Scan(&detailIDs[i])
		if err != nil {
			t.Fatalf("Failed to create interview detail: %v", err)
		}
	}

	// First verdict is a rejection; the second verdict is still pending.
	if err := svc.SubmitInterviewerFeedback(detailIDs[0], fixtures.Interviewer.ID, models.DecisionRejected, nil, nil); err != nil {
		t.Fatalf("Failed to submit first verdict: %v", err)
	}
	reloaded, err := evalRepo.GetByID(eval.ID)
	if err != nil {
		t.Fatalf("Failed to reload evaluation: %v", err)
	}
	if reloaded.InterviewerOverallStatus != models.DecisionPending {
		t.Errorf("A rejection with a pending verdict should stay pending, got %s", reloaded.InterviewerOverallStatus)
	}

	// A selection from the second interviewer wins the panel.
	if err := svc.SubmitInterviewerFeedback(detailIDs[1], fixtures.Interviewer2.ID, models.DecisionSelected, nil, nil); err != nil {
		t.Fatalf("Failed to submit second verdict: %v", err)
	}
	reloaded, err = evalRepo.GetByID(eval.ID)
	if err != nil {
		t.Fatalf("Failed to reload evaluation: %v", err)
	}
	if reloaded.InterviewerOverallStatus != models.DecisionSelected {
		t.Errorf("Any selection should win the panel, got %s", reloaded.InterviewerOverallStatus)
	}
}

func TestSubmitHRDecision(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers, fixtures, svc, _, _ := newDecisionTestEnv(t)
	defer containers.Cleanup(t)

	resume := fixtures.CreateResume(t, "Jane Doe", "jane@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)

	// Rejecting without a reason is refused.
	_, err := svc.SubmitHRDecision(eval.ID, models.DecisionRejected, nil, nil)
	if !apperrors.IsValidation(err) {
		t.Errorf("HR rejection without a reason should be refused, got %v", err)
	}

	// Selecting while the panel is still pending is an override and needs a
	// reason too.
	_, err = svc.SubmitHRDecision(eval.ID, models.DecisionSelected, nil, nil)
	if !apperrors.IsValidation(err) {
		t.Errorf("HR selection overriding a pending panel should need a reason, got %v", err)
	}

	reason := "exceptional take-home submission"
	remarks := "fast-tracked"
	updated, err := svc.SubmitHRDecision(eval.ID, models.DecisionSelected, &reason, &remarks)
	if err != nil {
		t.Fatalf("Failed to submit HR decision: %v", err)
	}
	if updated.HRFinalStatus != models.DecisionSelected {
		t.Errorf("Expected final status %s, got %s", models.DecisionSelected, updated.HRFinalStatus)
	}
	if updated.HRFinalReason == nil || *updated.HRFinalReason != reason {
		t.Error("HR reason should be stored")
	}
	if updated.HRRemarks == nil || *updated.HRRemarks != remarks {
		t.Error("HR remarks should be stored")
	}
}

func TestSubmitHRDecisionDropsOptionalReason(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers, fixtures, svc, _, _ := newDecisionTestEnv(t)
	defer containers.Cleanup(t)

	resume := fixtures.CreateResume(t, "Jane Doe", "jane@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)

	if _, err := containers.DB.Exec(
		"UPDATE evaluations SET interviewer_overall_status = $1 WHERE id = $2",
		models.DecisionSelected, eval.ID,
	); err != nil {
		t.Fatalf("Failed to set panel verdict: %v", err)
	}

	// Confirming a panel selection needs no reason; a supplied one is not
	// kept.
	reason := "redundant note"
	updated, err := svc.SubmitHRDecision(eval.ID, models.DecisionSelected, &reason, nil)
	if err != nil {
		t.Fatalf("Failed to submit HR decision: %v", err)
	}
	if updated.HRFinalStatus != models.DecisionSelected {
		t.Errorf("Expected final status %s, got %s", models.DecisionSelected, updated.HRFinalStatus)
	}
	if updated.HRFinalReason != nil {
		t.Errorf("Optional reason should be cleared, got %q", *updated.HRFinalReason)
	}
}
