package service_test

import (
	"errors"
	"testing"
	"time"

	"hireflow/internal/apperrors"
	"hireflow/internal/models"
	"hireflow/internal/repository"
	"hireflow/internal/service"
	"hireflow/internal/testutil"
)

type fakeMeetings struct {
	calls int
	err   error
}

func (f *fakeMeetings) CreateMeeting(topic string, start time.Time) (string, string, error) {
	f.calls++
	if f.err != nil {
		return "", "", f.err
	}
	return "https://meet.test/start", "https://meet.test/join", nil
}

type fakeNotifier struct {
	interviewerMails []string
	candidateMails   []string
}

func (f *fakeNotifier) NotifyInterviewAssigned(interviewerEmail, candidateName string, start time.Time, joinURL string) {
	f.interviewerMails = append(f.interviewerMails, interviewerEmail)
}

func (f *fakeNotifier) NotifyCandidateScheduled(candidateEmail, candidateName string, start time.Time, joinURL string) {
	f.candidateMails = append(f.candidateMails, candidateEmail)
}

func newAssignmentTestEnv(t *testing.T) (*testutil.TestContainers, *testutil.Fixtures, *service.AssignmentService, *fakeMeetings, *fakeNotifier) {
	t.Helper()

	containers := testutil.SetupTestContainers(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	meetings := &fakeMeetings{}
	notifier := &fakeNotifier{}
	svc := service.NewAssignmentService(
		containers.DB,
		repository.NewEvaluationRepository(containers.DB),
		repository.NewResumeRepository(containers.DB),
		repository.NewJobRepository(containers.DB),
		repository.NewUserRepository(containers.DB),
		repository.NewSlotRepository(containers.DB),
		repository.NewInterviewDetailRepository(containers.DB),
		repository.NewAssignmentHistoryRepository(containers.DB),
		meetings,
		notifier,
	)

	return containers, fixtures, svc, meetings, notifier
}

func TestAssignBooksSlotAndRecordsDetail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers, fixtures, svc, meetings, notifier := newAssignmentTestEnv(t)
	defer containers.Cleanup(t)

	start := time.Now().Add(24 * time.Hour)
	slot := fixtures.CreateSlot(t, fixtures.Interviewer.ID, start, start.Add(time.Hour))
	resume := fixtures.CreateResume(t, "Jane Doe", "jane@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)

	res, err := svc.Assign(eval.ID, []models.AssignmentRequest{
		{InterviewerID: fixtures.Interviewer.ID, SlotID: slot.ID},
	}, &fixtures.HRUser.ID)
	if err != nil {
		t.Fatalf("Failed to assign: %v", err)
	}
	if len(res.Details) != 1 {
		t.Fatalf("Expected 1 detail row, got %d", len(res.Details))
	}
	if res.Details[0].InterviewerStatus != models.DecisionPending {
		t.Errorf("New assignment should start pending, got %s", res.Details[0].InterviewerStatus)
	}
	if !res.MeetingLinkIssued || len(res.Warnings) != 0 {
		t.Errorf("Successful link creation should be reported cleanly, got issued=%v warnings=%v", res.MeetingLinkIssued, res.Warnings)
	}

	booked := requireSlot(t, containers, slot.ID)
	if !booked.IsBooked || booked.EvaluationID == nil || *booked.EvaluationID != eval.ID {
		t.Error("Slot should be booked for the evaluation")
	}

	history, err := svc.ListHistory(eval.ID)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(history) != 1 || history[0].Note != models.HistoryNoteAssigned {
		t.Errorf("Expected one %q history entry, got %v", models.HistoryNoteAssigned, history)
	}

	if meetings.calls != 1 {
		t.Errorf("Expected 1 meeting creation, got %d", meetings.calls)
	}
	if len(notifier.interviewerMails) != 1 || notifier.interviewerMails[0] != fixtures.Interviewer.Email {
		t.Errorf("Interviewer should be notified, got %v", notifier.interviewerMails)
	}
	if len(notifier.candidateMails) != 1 || notifier.candidateMails[0] != "jane@example.com" {
		t.Errorf("Candidate should be notified, got %v", notifier.candidateMails)
	}
}

func TestReassignReplacesPreviousAssignment(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers, fixtures, svc, _, _ := newAssignmentTestEnv(t)
	defer containers.Cleanup(t)

	start := time.Now().Add(24 * time.Hour)
	firstSlot := fixtures.CreateSlot(t, fixtures.Interviewer.ID, start, start.Add(time.Hour))
	secondSlot := fixtures.CreateSlot(t, fixtures.Interviewer2.ID, start.Add(2*time.Hour), start.Add(3*time.Hour))
	resume := fixtures.CreateResume(t, "Jane Doe", "jane@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)

	if _, err := svc.Assign(eval.ID, []models.AssignmentRequest{
		{InterviewerID: fixtures.Interviewer.ID, SlotID: firstSlot.ID},
	}, &fixtures.HRUser.ID); err != nil {
		t.Fatalf("Failed initial assignment: %v", err)
	}

	res, err := svc.Assign(eval.ID, []models.AssignmentRequest{
		{InterviewerID: fixtures.Interviewer2.ID, SlotID: secondSlot.ID},
	}, &fixtures.HRUser.ID)
	if err != nil {
		t.Fatalf("Failed reassignment: %v", err)
	}
	if len(res.Details) != 1 || res.Details[0].InterviewerID != fixtures.Interviewer2.ID {
		t.Fatalf("Reassignment should fully replace the detail rows, got %v", res.Details)
	}

	// The previous slot is free again, the new one booked.
	freed := requireSlot(t, containers, firstSlot.ID)
	if freed.IsBooked || freed.EvaluationID != nil {
		t.Error("Replaced slot should be released")
	}
	booked := requireSlot(t, containers, secondSlot.ID)
	if !booked.IsBooked {
		t.Error("New slot should be booked")
	}

	history, err := svc.ListHistory(eval.ID)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("History should keep both entries, got %d", len(history))
	}
	if history[len(history)-1].Note != models.HistoryNoteReassigned {
		t.Errorf("Latest entry should be %q, got %q", models.HistoryNoteReassigned, history[len(history)-1].Note)
	}
}

func TestAssignConflictRollsBackCompletely(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers, fixtures, svc, _, _ := newAssignmentTestEnv(t)
	defer containers.Cleanup(t)

	start := time.Now().Add(24 * time.Hour)
	freeSlot := fixtures.CreateSlot(t, fixtures.Interviewer.ID, start, start.Add(time.Hour))
	takenSlot := fixtures.CreateSlot(t, fixtures.Interviewer2.ID, start, start.Add(time.Hour))

	otherResume := fixtures.CreateResume(t, "John Roe", "john@example.com")
	otherEval := fixtures.CreateEvaluation(t, otherResume.ID, fixtures.Job.ID)
	if _, err := svc.Assign(otherEval.ID, []models.AssignmentRequest{
		{InterviewerID: fixtures.Interviewer2.ID, SlotID: takenSlot.ID},
	}, &fixtures.HRUser.ID); err != nil {
		t.Fatalf("Failed to book the competing assignment: %v", err)
	}

	resume := fixtures.CreateResume(t, "Jane Doe", "jane@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)

	_, err := svc.Assign(eval.ID, []models.AssignmentRequest{
		{InterviewerID: fixtures.Interviewer.ID, SlotID: freeSlot.ID},
		{InterviewerID: fixtures.Interviewer2.ID, SlotID: takenSlot.ID},
	}, &fixtures.HRUser.ID)
	if err == nil {
		t.Fatal("Assigning an already-booked slot should fail")
	}
	if !apperrors.IsConflict(err) {
		t.Fatalf("Expected a conflict error, got %v", err)
	}

	// The failed assignment must leave nothing behind.
	untouched := requireSlot(t, containers, freeSlot.ID)
	if untouched.IsBooked {
		t.Error("Free slot should not stay claimed after rollback")
	}

	var detailCount int
	if err := containers.DB.QueryRow(
		"SELECT COUNT(*) FROM interview_details WHERE evaluation_id = $1", eval.ID,
	).Scan(&detailCount); err != nil {
		t.Fatalf("Failed to count details: %v", err)
	}
	if detailCount != 0 {
		t.Errorf("Rolled-back assignment should leave no detail rows, found %d", detailCount)
	}

	var historyCount int
	if err := containers.DB.QueryRow(
		"SELECT COUNT(*) FROM assignment_history WHERE evaluation_id = $1", eval.ID,
	).Scan(&historyCount); err != nil {
		t.Fatalf("Failed to count history: %v", err)
	}
	if historyCount != 0 {
		t.Errorf("Rolled-back assignment should leave no history, found %d", historyCount)
	}
}

func TestWithdrawFreesSlotsAndKeepsHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers, fixtures, svc, _, _ := newAssignmentTestEnv(t)
	defer containers.Cleanup(t)

	start := time.Now().Add(24 * time.Hour)
	slot := fixtures.CreateSlot(t, fixtures.Interviewer.ID, start, start.Add(time.Hour))
	resume := fixtures.CreateResume(t, "Jane Doe", "jane@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)

	if _, err := svc.Assign(eval.ID, []models.AssignmentRequest{
		{InterviewerID: fixtures.Interviewer.ID, SlotID: slot.ID},
	}, &fixtures.HRUser.ID); err != nil {
		t.Fatalf("Failed to assign: %v", err)
	}

	if err := svc.Withdraw(eval.ID); err != nil {
		t.Fatalf("Failed to withdraw: %v", err)
	}

	freed := requireSlot(t, containers, slot.ID)
	if freed.IsBooked || freed.EvaluationID != nil {
		t.Error("Withdrawn slot should be free")
	}

	details, err := svc.ListDetails(eval.ID)
	if err != nil {
		t.Fatalf("Failed to list details: %v", err)
	}
	if len(details) != 0 {
		t.Errorf("Withdrawn assignment should have no detail rows, got %d", len(details))
	}

	history, err := svc.ListHistory(eval.ID)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("History should survive a withdrawal, got %d entries", len(history))
	}
}

func TestAssignRejectsUnmappedInterviewer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers, fixtures, svc, _, _ := newAssignmentTestEnv(t)
	defer containers.Cleanup(t)

	outsider := fixtures.CreateUser(t, "outsider@test.com", "Out", "Sider", models.RoleInterviewer)
	start := time.Now().Add(24 * time.Hour)
	slot := fixtures.CreateSlot(t, outsider.ID, start, start.Add(time.Hour))
	resume := fixtures.CreateResume(t, "Jane Doe", "jane@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)

	_, err := svc.Assign(eval.ID, []models.AssignmentRequest{
		{InterviewerID: outsider.ID, SlotID: slot.ID},
	}, &fixtures.HRUser.ID)
	if err == nil {
		t.Fatal("Assigning an interviewer not mapped to the job should fail")
	}
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected a validation error, got %v", err)
	}
}

func TestAssignSurfacesMeetingLinkFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers, fixtures, svc, meetings, _ := newAssignmentTestEnv(t)
	defer containers.Cleanup(t)

	meetings.err = errors.New("meeting provider unavailable")

	start := time.Now().Add(24 * time.Hour)
	slot := fixtures.CreateSlot(t, fixtures.Interviewer.ID, start, start.Add(time.Hour))
	resume := fixtures.CreateResume(t, "Jane Doe", "jane@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)

	res, err := svc.Assign(eval.ID, []models.AssignmentRequest{
		{InterviewerID: fixtures.Interviewer.ID, SlotID: slot.ID},
	}, &fixtures.HRUser.ID)
	if err != nil {
		t.Fatalf("A failed meeting link must not fail the assignment: %v", err)
	}
	if res.MeetingLinkIssued {
		t.Error("Result should report that no link was issued")
	}
	if len(res.Warnings) == 0 {
		t.Error("Result should carry a warning about the missing link")
	}

	// The reservation itself stands.
	booked := requireSlot(t, containers, slot.ID)
	if !booked.IsBooked || booked.EvaluationID == nil || *booked.EvaluationID != eval.ID {
		t.Error("Slot should stay booked despite the link failure")
	}
}

func TestBulkNoteOnlyMarksFirstMultiBooking(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers, fixtures, svc, _, _ := newAssignmentTestEnv(t)
	defer containers.Cleanup(t)

	start := time.Now().Add(24 * time.Hour)
	slotA := fixtures.CreateSlot(t, fixtures.Interviewer.ID, start, start.Add(time.Hour))
	slotB := fixtures.CreateSlot(t, fixtures.Interviewer2.ID, start.Add(2*time.Hour), start.Add(3*time.Hour))
	slotC := fixtures.CreateSlot(t, fixtures.Interviewer.ID, start.Add(4*time.Hour), start.Add(5*time.Hour))
	slotD := fixtures.CreateSlot(t, fixtures.Interviewer2.ID, start.Add(6*time.Hour), start.Add(7*time.Hour))
	resume := fixtures.CreateResume(t, "Jane Doe", "jane@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)

	if _, err := svc.Assign(eval.ID, []models.AssignmentRequest{
		{InterviewerID: fixtures.Interviewer.ID, SlotID: slotA.ID},
		{InterviewerID: fixtures.Interviewer2.ID, SlotID: slotB.ID},
	}, &fixtures.HRUser.ID); err != nil {
		t.Fatalf("Failed first multi-interviewer assignment: %v", err)
	}

	if _, err := svc.Assign(eval.ID, []models.AssignmentRequest{
		{InterviewerID: fixtures.Interviewer.ID, SlotID: slotC.ID},
		{InterviewerID: fixtures.Interviewer2.ID, SlotID: slotD.ID},
	}, &fixtures.HRUser.ID); err != nil {
		t.Fatalf("Failed multi-interviewer reassignment: %v", err)
	}

	history, err := svc.ListHistory(eval.ID)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("Expected 4 history entries, got %d", len(history))
	}
	for _, entry := range history[:2] {
		if entry.Note != models.HistoryNoteBulk {
			t.Errorf("First multi-interviewer booking should record %q, got %q", models.HistoryNoteBulk, entry.Note)
		}
	}
	// Replacement wins over bulk on subsequent multi-interviewer bookings.
	for _, entry := range history[2:] {
		if entry.Note != models.HistoryNoteReassigned {
			t.Errorf("Multi-interviewer reassignment should record %q, got %q", models.HistoryNoteReassigned, entry.Note)
		}
	}
}

func requireSlot(t *testing.T, containers *testutil.TestContainers, id uint) *models.TimeSlot {
	t.Helper()

	slot, err := repository.NewSlotRepository(containers.DB).GetByID(id)
	if err != nil {
		t.Fatalf("Failed to load slot %d: %v", id, err)
	}
	if slot == nil {
		t.Fatalf("Slot %d not found", id)
	}
	return slot
}
