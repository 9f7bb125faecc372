package service

import (
	"database/sql"
	"log/slog"

	"hireflow/internal/apperrors"
	"hireflow/internal/models"
	"hireflow/internal/repository"
)

// RepairService restores the slot/detail invariant after torn assignments.
// A booked slot whose evaluation has no interview detail row for it is an
// orphan: the booking exists but nothing references it, so the slot can
// never be released through the normal path. Stale bindings on evaluations
// that are no longer actionable are likewise released, with the decision
// axes returned to pending.
type RepairService struct {
	db         *sql.DB
	slotRepo   *repository.SlotRepository
	evalRepo   *repository.EvaluationRepository
	detailRepo *repository.InterviewDetailRepository
}

// NewRepairService creates a new repair service
func NewRepairService(
	db *sql.DB,
	slotRepo *repository.SlotRepository,
	evalRepo *repository.EvaluationRepository,
	detailRepo *repository.InterviewDetailRepository,
) *RepairService {
	return &RepairService{db: db, slotRepo: slotRepo, evalRepo: evalRepo, detailRepo: detailRepo}
}

// RepairOrphanedAssignments self-heals the named candidate's bindings.
// While the candidate has an actionable evaluation (HR decision pending with
// interviewers assigned) nothing is touched. Otherwise every evaluation of
// the candidate that still holds detail rows or claimed slots is cleaned:
// its slots are released, its detail rows removed and its decision axes
// reset to pending. Returns how many slots were freed. Idempotent.
func (s *RepairService) RepairOrphanedAssignments(candidateEmail string) (int, error) {
	actionable, err := s.evalRepo.HasActionableByCandidate(candidateEmail)
	if err != nil {
		return 0, apperrors.Upstream("repair.candidate actionable check failed", err)
	}
	if actionable {
		return 0, nil
	}

	evalIDs, err := s.evalRepo.ListBoundByCandidate(candidateEmail)
	if err != nil {
		return 0, apperrors.Upstream("repair.candidate binding scan failed", err)
	}

	freed := 0
	for _, evalID := range evalIDs {
		released, err := s.resetEvaluation(evalID)
		if err != nil {
			slog.Error("failed to repair stale assignment",
				"evaluation_id", evalID, "candidate_email", candidateEmail, "error", err)
			continue
		}
		slog.Info("repaired stale assignment",
			"evaluation_id", evalID, "released_slots", released)
		freed += released
	}
	return freed, nil
}

// SweepOrphanedAssignments releases every orphaned booked slot in the
// system. Run periodically by the scheduler.
func (s *RepairService) SweepOrphanedAssignments() (int, error) {
	orphans, err := s.slotRepo.ListAllOrphanedBooked()
	if err != nil {
		return 0, apperrors.Upstream("repair.sweep orphan scan failed", err)
	}
	return s.release(orphans), nil
}

// resetEvaluation releases the evaluation's slots, removes its detail rows
// and returns the decision axes to pending, as one transaction.
func (s *RepairService) resetEvaluation(evaluationID uint) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	released, err := s.slotRepo.ReleaseByEvaluationTx(tx, evaluationID)
	if err != nil {
		return 0, err
	}
	if _, err := s.detailRepo.DeleteByEvaluationTx(tx, evaluationID); err != nil {
		return 0, err
	}
	if err := s.evalRepo.ResetDecisionTx(tx, evaluationID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return len(released), nil
}

func (s *RepairService) release(orphans []models.TimeSlot) int {
	freed := 0
	for _, slot := range orphans {
		if err := s.slotRepo.Release(slot.ID); err != nil {
			slog.Error("failed to release orphaned slot", "slot_id", slot.ID, "error", err)
			continue
		}
		slog.Info("released orphaned slot",
			"slot_id", slot.ID, "interviewer_id", slot.InterviewerID, "start_time", slot.StartTime)
		freed++
	}
	return freed
}
