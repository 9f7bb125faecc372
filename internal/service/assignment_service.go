package service

import (
	"database/sql"
	"log/slog"
	"time"

	"hireflow/internal/apperrors"
	"hireflow/internal/models"
	"hireflow/internal/repository"
)

// MeetingCreator produces meeting links for scheduled interviews
type MeetingCreator interface {
	CreateMeeting(topic string, start time.Time) (startURL, joinURL string, err error)
}

// AssignmentNotifier delivers assignment notifications. Implementations must
// not block the caller on delivery failures.
type AssignmentNotifier interface {
	NotifyInterviewAssigned(interviewerEmail, candidateName string, start time.Time, joinURL string)
	NotifyCandidateScheduled(candidateEmail, candidateName string, start time.Time, joinURL string)
}

// AssignmentService coordinates interview assignment: claiming slots,
// recording detail rows and appending history as one atomic unit. A failure
// at any step rolls the whole assignment back so slots, details and history
// never disagree.
type AssignmentService struct {
	db          *sql.DB
	evalRepo    *repository.EvaluationRepository
	resumeRepo  *repository.ResumeRepository
	jobRepo     *repository.JobRepository
	userRepo    *repository.UserRepository
	slotRepo    *repository.SlotRepository
	detailRepo  *repository.InterviewDetailRepository
	historyRepo *repository.AssignmentHistoryRepository
	meetings    MeetingCreator
	notifier    AssignmentNotifier
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	db *sql.DB,
	evalRepo *repository.EvaluationRepository,
	resumeRepo *repository.ResumeRepository,
	jobRepo *repository.JobRepository,
	userRepo *repository.UserRepository,
	slotRepo *repository.SlotRepository,
	detailRepo *repository.InterviewDetailRepository,
	historyRepo *repository.AssignmentHistoryRepository,
	meetings MeetingCreator,
	notifier AssignmentNotifier,
) *AssignmentService {
	return &AssignmentService{
		db:          db,
		evalRepo:    evalRepo,
		resumeRepo:  resumeRepo,
		jobRepo:     jobRepo,
		userRepo:    userRepo,
		slotRepo:    slotRepo,
		detailRepo:  detailRepo,
		historyRepo: historyRepo,
		meetings:    meetings,
		notifier:    notifier,
	}
}

// AssignmentResult carries the committed assignment rows plus the outcome
// of the post-commit meeting-link step, so callers can see when a booking
// stands without a link.
type AssignmentResult struct {
	Details           []models.InterviewDetailWithNames `json:"details"`
	MeetingLinkIssued bool                              `json:"meeting_link_issued"`
	Warnings          []string                          `json:"warnings,omitempty"`
}

// Assign books the requested interviewer/slot pairs for an evaluation.
// Any previous assignment for the evaluation is replaced in full: its slots
// are released and its detail rows removed before the new claims happen, all
// inside the same transaction. Meeting links and notifications are produced
// after commit and never fail the assignment; a failed link shows up in the
// result's warnings.
func (s *AssignmentService) Assign(evaluationID uint, requests []models.AssignmentRequest, assignedBy *uint) (*AssignmentResult, error) {
	if len(requests) == 0 {
		return nil, apperrors.Validation("at least one interviewer/slot pair is required")
	}

	eval, err := s.evalRepo.GetByID(evaluationID)
	if err != nil {
		return nil, apperrors.Upstream("assignment.assign evaluation lookup failed", err)
	}
	if eval == nil {
		return nil, apperrors.NotFound("evaluation not found")
	}

	slots, err := s.validateRequests(eval, requests)
	if err != nil {
		return nil, err
	}

	existing, err := s.detailRepo.ListByEvaluation(evaluationID)
	if err != nil {
		return nil, apperrors.Upstream("assignment.assign detail lookup failed", err)
	}
	// Replacement wins over the bulk note: "Bulk assignment" marks only a
	// first multi-interviewer booking.
	note := models.HistoryNoteAssigned
	if len(existing) > 0 {
		note = models.HistoryNoteReassigned
	} else if len(requests) > 1 {
		note = models.HistoryNoteBulk
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, apperrors.Upstream("assignment.assign begin failed", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if _, err := s.slotRepo.ReleaseByEvaluationTx(tx, evaluationID); err != nil {
		return nil, apperrors.Upstream("assignment.assign release failed", err)
	}
	if _, err := s.detailRepo.DeleteByEvaluationTx(tx, evaluationID); err != nil {
		return nil, apperrors.Upstream("assignment.assign detail cleanup failed", err)
	}

	for i, req := range requests {
		claimed, err := s.slotRepo.ClaimTx(tx, req.SlotID, evaluationID)
		if err != nil {
			return nil, apperrors.Upstream("assignment.assign claim failed", err)
		}
		if !claimed {
			return nil, apperrors.Conflict("slot is no longer available")
		}

		detail := &models.InterviewDetail{
			EvaluationID:      evaluationID,
			SlotID:            req.SlotID,
			InterviewerID:     req.InterviewerID,
			InterviewerStatus: models.DecisionPending,
		}
		if err := s.detailRepo.CreateTx(tx, detail); err != nil {
			return nil, apperrors.Upstream("assignment.assign detail insert failed", err)
		}

		entry := &models.AssignmentHistory{
			EvaluationID:  evaluationID,
			InterviewerID: req.InterviewerID,
			InterviewTime: slots[i].StartTime,
			AssignedBy:    assignedBy,
			Note:          note,
		}
		if err := s.historyRepo.AppendTx(tx, entry); err != nil {
			return nil, apperrors.Upstream("assignment.assign history append failed", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Upstream("assignment.assign commit failed", err)
	}
	committed = true

	// A replaced assignment starts over on the interviewer axis.
	if err := s.evalRepo.UpdateInterviewerOverallStatus(evaluationID, models.DecisionPending); err != nil {
		slog.Error("failed to reset interviewer status after assignment",
			"evaluation_id", evaluationID, "error", err)
	}

	issued, warnings := s.afterCommit(eval, requests, slots)

	details, err := s.detailRepo.ListByEvaluation(evaluationID)
	if err != nil {
		return nil, apperrors.Upstream("assignment.assign detail listing failed", err)
	}
	return &AssignmentResult{Details: details, MeetingLinkIssued: issued, Warnings: warnings}, nil
}

// Withdraw removes the current assignment for an evaluation, freeing its
// slots and clearing any stored meeting links. History entries are kept.
func (s *AssignmentService) Withdraw(evaluationID uint) error {
	eval, err := s.evalRepo.GetByID(evaluationID)
	if err != nil {
		return apperrors.Upstream("assignment.withdraw evaluation lookup failed", err)
	}
	if eval == nil {
		return apperrors.NotFound("evaluation not found")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return apperrors.Upstream("assignment.withdraw begin failed", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if _, err := s.slotRepo.ReleaseByEvaluationTx(tx, evaluationID); err != nil {
		return apperrors.Upstream("assignment.withdraw release failed", err)
	}
	if _, err := s.detailRepo.DeleteByEvaluationTx(tx, evaluationID); err != nil {
		return apperrors.Upstream("assignment.withdraw detail cleanup failed", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Upstream("assignment.withdraw commit failed", err)
	}
	committed = true

	if err := s.evalRepo.ClearMeetingLinks(evaluationID); err != nil {
		slog.Error("failed to clear meeting links", "evaluation_id", evaluationID, "error", err)
	}
	return nil
}

// ListDetails returns the current assignment rows for an evaluation
func (s *AssignmentService) ListDetails(evaluationID uint) ([]models.InterviewDetailWithNames, error) {
	details, err := s.detailRepo.ListByEvaluation(evaluationID)
	if err != nil {
		return nil, apperrors.Upstream("assignment.list query failed", err)
	}
	return details, nil
}

// ListHistory returns the assignment ledger for an evaluation
func (s *AssignmentService) ListHistory(evaluationID uint) ([]models.AssignmentHistory, error) {
	entries, err := s.historyRepo.ListByEvaluation(evaluationID)
	if err != nil {
		return nil, apperrors.Upstream("assignment.history query failed", err)
	}
	return entries, nil
}

func (s *AssignmentService) validateRequests(eval *models.Evaluation, requests []models.AssignmentRequest) ([]*models.TimeSlot, error) {
	seenInterviewers := map[uint]bool{}
	seenSlots := map[uint]bool{}
	interviewerIDs := make([]uint, 0, len(requests))
	for _, req := range requests {
		if seenInterviewers[req.InterviewerID] {
			return nil, apperrors.Validation("duplicate interviewer in assignment")
		}
		if seenSlots[req.SlotID] {
			return nil, apperrors.Validation("duplicate slot in assignment")
		}
		seenInterviewers[req.InterviewerID] = true
		seenSlots[req.SlotID] = true
		interviewerIDs = append(interviewerIDs, req.InterviewerID)
	}

	mapped, err := s.jobRepo.MappedInterviewers(eval.JobID, interviewerIDs)
	if err != nil {
		return nil, apperrors.Upstream("assignment.assign mapping lookup failed", err)
	}
	mappedSet := map[uint]bool{}
	for _, id := range mapped {
		mappedSet[id] = true
	}

	slots := make([]*models.TimeSlot, len(requests))
	for i, req := range requests {
		if !mappedSet[req.InterviewerID] {
			return nil, apperrors.Validation("interviewer is not mapped to this job")
		}

		active, err := s.userRepo.IsActiveInterviewer(req.InterviewerID)
		if err != nil {
			return nil, apperrors.Upstream("assignment.assign interviewer lookup failed", err)
		}
		if !active {
			return nil, apperrors.Validation("interviewer not found or inactive")
		}

		slot, err := s.slotRepo.GetByID(req.SlotID)
		if err != nil {
			return nil, apperrors.Upstream("assignment.assign slot lookup failed", err)
		}
		if slot == nil {
			return nil, apperrors.NotFound("slot not found")
		}
		if slot.InterviewerID != req.InterviewerID {
			return nil, apperrors.Validation("slot does not belong to the requested interviewer")
		}
		if slot.IsBooked && (slot.EvaluationID == nil || *slot.EvaluationID != eval.ID) {
			return nil, apperrors.Conflict("slot is already booked")
		}
		if !slot.StartTime.After(time.Now()) {
			return nil, apperrors.Validation("slot is in the past")
		}
		slots[i] = slot
	}

	return slots, nil
}

// afterCommit runs the best-effort meeting-link and notification steps.
// It reports whether a link was issued plus any warnings the caller of
// Assign should see; the committed reservation is never rolled back here.
func (s *AssignmentService) afterCommit(eval *models.Evaluation, requests []models.AssignmentRequest, slots []*models.TimeSlot) (bool, []string) {
	var warnings []string

	resume, err := s.resumeRepo.GetByID(eval.ResumeID)
	if err != nil || resume == nil {
		slog.Error("failed to load resume after assignment", "evaluation_id", eval.ID, "error", err)
		if s.meetings != nil {
			warnings = append(warnings, "meeting link was not created; the reservation stands")
		}
		return false, warnings
	}

	start := slots[0].StartTime
	for _, slot := range slots {
		if slot.StartTime.Before(start) {
			start = slot.StartTime
		}
	}

	issued := false
	var joinURL string
	if s.meetings != nil {
		startURL, join, err := s.meetings.CreateMeeting("Interview: "+resume.CandidateName, start)
		if err != nil {
			slog.Error("meeting link creation failed", "evaluation_id", eval.ID, "error", err)
			warnings = append(warnings, "meeting link could not be created; the reservation stands")
		} else {
			issued = true
			joinURL = join
			if err := s.evalRepo.UpdateMeetingLinks(eval.ID, startURL, join); err != nil {
				slog.Error("failed to store meeting links", "evaluation_id", eval.ID, "error", err)
				warnings = append(warnings, "meeting link could not be stored on the evaluation")
			}
		}
	}

	if s.notifier == nil {
		return issued, warnings
	}
	for i, req := range requests {
		interviewer, err := s.userRepo.GetByID(req.InterviewerID)
		if err != nil || interviewer == nil {
			slog.Error("failed to load interviewer for notification",
				"interviewer_id", req.InterviewerID, "error", err)
			continue
		}
		s.notifier.NotifyInterviewAssigned(interviewer.Email, resume.CandidateName, slots[i].StartTime, joinURL)
	}
	if resume.CandidateEmail != "" {
		s.notifier.NotifyCandidateScheduled(resume.CandidateEmail, resume.CandidateName, start, joinURL)
	}

	return issued, warnings
}
