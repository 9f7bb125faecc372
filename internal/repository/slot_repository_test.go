package repository_test

import (
	"sync"
	"testing"
	"time"

	"hireflow/internal/models"
	"hireflow/internal/repository"
	"hireflow/internal/testutil"
)

func TestSlotPublishIdempotency(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewSlotRepository(containers.DB)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Minute)
	end := start.Add(time.Hour)

	first := &models.TimeSlot{InterviewerID: fixtures.Interviewer.ID, StartTime: start, EndTime: end}
	created, err := repo.Publish(first)
	if err != nil {
		t.Fatalf("Failed to publish slot: %v", err)
	}
	if !created {
		t.Error("First publish should create the slot")
	}

	second := &models.TimeSlot{InterviewerID: fixtures.Interviewer.ID, StartTime: start, EndTime: end}
	created, err = repo.Publish(second)
	if err != nil {
		t.Fatalf("Failed to re-publish slot: %v", err)
	}
	if created {
		t.Error("Re-publishing the same window should not create a second slot")
	}

	var count int
	err = containers.DB.QueryRow(
		"SELECT COUNT(*) FROM time_slots WHERE interviewer_id = $1", fixtures.Interviewer.ID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count slots: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 slot, found %d", count)
	}
}

func TestSlotConcurrentClaim(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewSlotRepository(containers.DB)

	start := time.Now().Add(24 * time.Hour)
	slot := fixtures.CreateSlot(t, fixtures.Interviewer.ID, start, start.Add(time.Hour))

	resume1 := fixtures.CreateResume(t, "Jane Doe", "jane@example.com")
	resume2 := fixtures.CreateResume(t, "John Roe", "john@example.com")
	eval1 := fixtures.CreateEvaluation(t, resume1.ID, fixtures.Job.ID)
	eval2 := fixtures.CreateEvaluation(t, resume2.ID, fixtures.Job.ID)

	// Two evaluations race for the same slot; exactly one claim must win.
	var wg sync.WaitGroup
	results := make([]bool, 2)
	errs := make([]error, 2)
	for i, evalID := range []uint{eval1.ID, eval2.ID} {
		wg.Add(1)
		go func(i int, evalID uint) {
			defer wg.Done()
			results[i], errs[i] = repo.Claim(slot.ID, evalID)
		}(i, evalID)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Claim %d failed: %v", i, err)
		}
	}

	winners := 0
	for _, won := range results {
		if won {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("Expected exactly 1 winning claim, got %d", winners)
	}

	claimed, err := repo.GetByID(slot.ID)
	if err != nil {
		t.Fatalf("Failed to reload slot: %v", err)
	}
	if !claimed.IsBooked || claimed.EvaluationID == nil {
		t.Error("Slot should be booked with an evaluation after the race")
	}
}

func TestSlotClaimAndRelease(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewSlotRepository(containers.DB)

	start := time.Now().Add(48 * time.Hour)
	slot := fixtures.CreateSlot(t, fixtures.Interviewer.ID, start, start.Add(time.Hour))
	resume := fixtures.CreateResume(t, "Jane Doe", "jane@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)

	won, err := repo.Claim(slot.ID, eval.ID)
	if err != nil {
		t.Fatalf("Failed to claim slot: %v", err)
	}
	if !won {
		t.Fatal("Claim on a free slot should succeed")
	}

	// A booked slot cannot be deleted.
	deleted, err := repo.Delete(slot.ID)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if deleted {
		t.Error("Deleting a booked slot should not succeed")
	}

	if err := repo.Release(slot.ID); err != nil {
		t.Fatalf("Failed to release slot: %v", err)
	}

	// Releasing again is a no-op.
	if err := repo.Release(slot.ID); err != nil {
		t.Fatalf("Second release should be a no-op, got: %v", err)
	}

	freed, err := repo.GetByID(slot.ID)
	if err != nil {
		t.Fatalf("Failed to reload slot: %v", err)
	}
	if freed.IsBooked || freed.EvaluationID != nil {
		t.Error("Released slot should be free with no evaluation")
	}

	deleted, err = repo.Delete(slot.ID)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if !deleted {
		t.Error("Deleting a free slot should succeed")
	}
}

func TestSlotPanelWindows(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewSlotRepository(containers.DB)

	base := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	// Both interviewers share the 10:00 window; only one has the 12:00 window.
	shared := fixtures.CreateSlot(t, fixtures.Interviewer.ID, base, base.Add(time.Hour))
	shared2 := fixtures.CreateSlot(t, fixtures.Interviewer2.ID, base, base.Add(time.Hour))
	fixtures.CreateSlot(t, fixtures.Interviewer.ID, base.Add(2*time.Hour), base.Add(3*time.Hour))

	windows, err := repo.ListPanelWindows([]uint{fixtures.Interviewer.ID, fixtures.Interviewer2.ID})
	if err != nil {
		t.Fatalf("Failed to list panel windows: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("Expected 1 shared window, got %d", len(windows))
	}

	window := windows[0]
	if !window.StartTime.Equal(shared.StartTime) {
		t.Errorf("Window start %v does not match shared slot start %v", window.StartTime, shared.StartTime)
	}
	if len(window.SlotIDs) != 2 || len(window.InterviewerIDs) != 2 {
		t.Fatalf("Expected 2 slots and 2 interviewers in the window, got %d/%d",
			len(window.SlotIDs), len(window.InterviewerIDs))
	}
	if window.SlotIDs[0] != shared.ID || window.SlotIDs[1] != shared2.ID {
		t.Errorf("Window slot IDs %v do not match expected [%d %d]", window.SlotIDs, shared.ID, shared2.ID)
	}

	// A booked slot drops the window from the intersection.
	resume := fixtures.CreateResume(t, "Jane Doe", "jane@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)
	if won, err := repo.Claim(shared2.ID, eval.ID); err != nil || !won {
		t.Fatalf("Failed to claim shared slot: won=%v err=%v", won, err)
	}

	windows, err = repo.ListPanelWindows([]uint{fixtures.Interviewer.ID, fixtures.Interviewer2.ID})
	if err != nil {
		t.Fatalf("Failed to list panel windows: %v", err)
	}
	if len(windows) != 0 {
		t.Errorf("Expected no shared windows after booking, got %d", len(windows))
	}
}

func TestSlotOrphanListing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewSlotRepository(containers.DB)

	start := time.Now().Add(24 * time.Hour)
	orphanSlot := fixtures.CreateSlot(t, fixtures.Interviewer.ID, start, start.Add(time.Hour))
	healthySlot := fixtures.CreateSlot(t, fixtures.Interviewer2.ID, start, start.Add(time.Hour))

	resume := fixtures.CreateResume(t, "Jane Doe", "jane@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)

	// Both slots get booked, but only the healthy one gets a detail row.
	for _, slotID := range []uint{orphanSlot.ID, healthySlot.ID} {
		if won, err := repo.Claim(slotID, eval.ID); err != nil || !won {
			t.Fatalf("Failed to claim slot %d: won=%v err=%v", slotID, won, err)
		}
	}
	_, err := containers.DB.Exec(`
		INSERT INTO interview_details (evaluation_id, slot_id, interviewer_id)
		VALUES ($1, $2, $3)
	`, eval.ID, healthySlot.ID, fixtures.Interviewer2.ID)
	if err != nil {
		t.Fatalf("Failed to create interview detail: %v", err)
	}

	all, err := repo.ListAllOrphanedBooked()
	if err != nil {
		t.Fatalf("Failed to list all orphans: %v", err)
	}
	if len(all) != 1 || all[0].ID != orphanSlot.ID {
		t.Fatalf("Expected exactly the torn slot %d in the sweep, got %v", orphanSlot.ID, all)
	}
}

func TestSlotSetFilteredListing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewSlotRepository(containers.DB)

	outsider := fixtures.CreateUser(t, "outsider@test.com", "Olaf", "Outsider", models.RoleInterviewer)

	start := time.Now().Add(24 * time.Hour)
	first := fixtures.CreateSlot(t, fixtures.Interviewer.ID, start, start.Add(time.Hour))
	second := fixtures.CreateSlot(t, fixtures.Interviewer2.ID, start.Add(2*time.Hour), start.Add(3*time.Hour))
	booked := fixtures.CreateSlot(t, fixtures.Interviewer.ID, start.Add(4*time.Hour), start.Add(5*time.Hour))
	fixtures.CreateSlot(t, outsider.ID, start, start.Add(time.Hour))

	resume := fixtures.CreateResume(t, "Set Candidate", "set@example.com")
	eval := fixtures.CreateEvaluation(t, resume.ID, fixtures.Job.ID)
	if won, err := repo.Claim(booked.ID, eval.ID); err != nil || !won {
		t.Fatalf("Failed to claim slot: won=%v err=%v", won, err)
	}

	slots, err := repo.ListFreeForInterviewers([]uint{fixtures.Interviewer.ID, fixtures.Interviewer2.ID})
	if err != nil {
		t.Fatalf("Failed to list free slots for set: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("Expected the two free slots of the set, got %d", len(slots))
	}
	if slots[0].ID != first.ID || slots[1].ID != second.ID {
		t.Errorf("Expected slots %d,%d ordered by start, got %d,%d",
			first.ID, second.ID, slots[0].ID, slots[1].ID)
	}

	empty, err := repo.ListFreeForInterviewers(nil)
	if err != nil {
		t.Fatalf("Empty set listing failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Empty interviewer set should list nothing, got %d", len(empty))
	}
}
