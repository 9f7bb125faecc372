package service

import (
	"time"

	"hireflow/internal/apperrors"
	"hireflow/internal/models"
	"hireflow/internal/repository"
)

// SlotService manages interviewer availability windows
type SlotService struct {
	slotRepo *repository.SlotRepository
	userRepo *repository.UserRepository
	jobRepo  *repository.JobRepository
}

// NewSlotService creates a new slot service
func NewSlotService(
	slotRepo *repository.SlotRepository,
	userRepo *repository.UserRepository,
	jobRepo *repository.JobRepository,
) *SlotService {
	return &SlotService{slotRepo: slotRepo, userRepo: userRepo, jobRepo: jobRepo}
}

// Publish records a free availability window for an interviewer. Publishing
// a window that already exists succeeds without creating a duplicate.
func (s *SlotService) Publish(interviewerID uint, start, end time.Time) (*models.TimeSlot, bool, error) {
	if !end.After(start) {
		return nil, false, apperrors.Validation("slot end must be after start")
	}
	if !start.After(time.Now()) {
		return nil, false, apperrors.Validation("slot must start in the future")
	}

	active, err := s.userRepo.IsActiveInterviewer(interviewerID)
	if err != nil {
		return nil, false, apperrors.Upstream("slot.publish interviewer lookup failed", err)
	}
	if !active {
		return nil, false, apperrors.NotFound("interviewer not found or inactive")
	}

	slot := &models.TimeSlot{
		InterviewerID: interviewerID,
		StartTime:     start,
		EndTime:       end,
	}
	created, err := s.slotRepo.Publish(slot)
	if err != nil {
		return nil, false, apperrors.Upstream("slot.publish insert failed", err)
	}
	if !created {
		existing, err := s.slotRepo.GetByWindow(interviewerID, start, end)
		if err != nil {
			return nil, false, apperrors.Upstream("slot.publish lookup failed", err)
		}
		return existing, false, nil
	}

	return slot, true, nil
}

// ListAvailable returns an interviewer's future slots, optionally only the
// free ones
func (s *SlotService) ListAvailable(interviewerID uint, freeOnly bool) ([]models.TimeSlot, error) {
	slots, err := s.slotRepo.ListByInterviewer(interviewerID, freeOnly)
	if err != nil {
		return nil, apperrors.Upstream("slot.list query failed", err)
	}
	return slots, nil
}

// ListFreeForJob returns the future free slots across every interviewer
// mapped to the job.
func (s *SlotService) ListFreeForJob(jobID uint) ([]models.TimeSlot, error) {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, apperrors.Upstream("slot.job availability job lookup failed", err)
	}
	if job == nil {
		return nil, apperrors.NotFound("job posting not found")
	}

	slots, err := s.slotRepo.ListFreeForInterviewers(job.InterviewerIDs)
	if err != nil {
		return nil, apperrors.Upstream("slot.job availability query failed", err)
	}
	return slots, nil
}

// ListPanelWindows returns the windows during which every interviewer mapped
// to the job is simultaneously free.
func (s *SlotService) ListPanelWindows(jobID uint) ([]models.PanelSlot, error) {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, apperrors.Upstream("slot.panel job lookup failed", err)
	}
	if job == nil {
		return nil, apperrors.NotFound("job posting not found")
	}
	if len(job.InterviewerIDs) == 0 {
		return nil, apperrors.Validation("job has no mapped interviewers")
	}

	windows, err := s.slotRepo.ListPanelWindows(job.InterviewerIDs)
	if err != nil {
		return nil, apperrors.Upstream("slot.panel query failed", err)
	}
	return windows, nil
}

// Release frees a booked slot without touching the assignment that booked
// it. Intended for administrative cleanup.
func (s *SlotService) Release(slotID uint) error {
	slot, err := s.slotRepo.GetByID(slotID)
	if err != nil {
		return apperrors.Upstream("slot.release lookup failed", err)
	}
	if slot == nil {
		return apperrors.NotFound("slot not found")
	}
	if err := s.slotRepo.Release(slotID); err != nil {
		return apperrors.Upstream("slot.release update failed", err)
	}
	return nil
}

// Delete removes a slot while it is still free. Deleting a booked slot is
// rejected with a conflict.
func (s *SlotService) Delete(slotID uint) error {
	deleted, err := s.slotRepo.Delete(slotID)
	if err != nil {
		return apperrors.Upstream("slot.delete delete failed", err)
	}
	if deleted {
		return nil
	}

	slot, err := s.slotRepo.GetByID(slotID)
	if err != nil {
		return apperrors.Upstream("slot.delete lookup failed", err)
	}
	if slot == nil {
		return apperrors.NotFound("slot not found")
	}
	return apperrors.Conflict("slot is booked and cannot be deleted")
}
