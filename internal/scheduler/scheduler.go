// Package scheduler runs periodic background tasks: the assignment
// integrity sweep, interview reminders and expired session cleanup.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"hireflow/internal/config"
	"hireflow/internal/email"
	"hireflow/internal/repository"
	"hireflow/internal/service"
)

// Scheduler owns the background task loops
type Scheduler struct {
	cfg         *config.SchedulerConfig
	repair      *service.RepairService
	detailRepo  *repository.InterviewDetailRepository
	sessionRepo *repository.SessionRepository
	mailer      *email.Service

	mu       sync.Mutex
	reminded map[uint]time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a new scheduler
func New(
	cfg *config.SchedulerConfig,
	repair *service.RepairService,
	detailRepo *repository.InterviewDetailRepository,
	sessionRepo *repository.SessionRepository,
	mailer *email.Service,
) *Scheduler {
	return &Scheduler{
		cfg:         cfg,
		repair:      repair,
		detailRepo:  detailRepo,
		sessionRepo: sessionRepo,
		mailer:      mailer,
		reminded:    map[uint]time.Time{},
	}
}

// Start launches the task loops. Call Stop to shut them down.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		var repairTick, reminderTick <-chan time.Time
		if s.cfg.EnableIntegrityRepair {
			ticker := time.NewTicker(time.Duration(s.cfg.RepairIntervalMins) * time.Minute)
			defer ticker.Stop()
			repairTick = ticker.C
		}
		if s.cfg.EnableReminders {
			ticker := time.NewTicker(time.Duration(s.cfg.ReminderIntervalMins) * time.Minute)
			defer ticker.Stop()
			reminderTick = ticker.C
		}
		sessionTicker := time.NewTicker(time.Hour)
		defer sessionTicker.Stop()

		slog.Info("scheduler started",
			"integrity_repair", s.cfg.EnableIntegrityRepair,
			"reminders", s.cfg.EnableReminders)

		for {
			select {
			case <-ctx.Done():
				return
			case <-repairTick:
				s.runIntegritySweep()
			case <-reminderTick:
				s.runReminders()
			case <-sessionTicker.C:
				s.cleanupSessions()
			}
		}
	}()
}

// Stop cancels the task loops and waits for them to exit
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("scheduler stopped")
}

func (s *Scheduler) runIntegritySweep() {
	freed, err := s.repair.SweepOrphanedAssignments()
	if err != nil {
		slog.Error("integrity sweep failed", "error", err)
		return
	}
	if freed > 0 {
		slog.Info("integrity sweep released orphaned slots", "count", freed)
	}
}

func (s *Scheduler) runReminders() {
	lead := time.Duration(s.cfg.ReminderLeadHours) * time.Hour
	upcoming, err := s.detailRepo.ListUpcoming(lead)
	if err != nil {
		slog.Error("reminder scan failed", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, interview := range upcoming {
		if _, sent := s.reminded[interview.DetailID]; sent {
			continue
		}
		s.mailer.NotifyInterviewReminder(interview.InterviewerEmail, interview.CandidateName, interview.StartTime)
		s.reminded[interview.DetailID] = interview.StartTime
	}

	s.pruneReminded(time.Now())
}

// pruneReminded drops dedupe entries once their interviews are in the past,
// so the map only ever holds interviews that are still upcoming.
func (s *Scheduler) pruneReminded(now time.Time) {
	for detailID, start := range s.reminded {
		if start.Before(now) {
			delete(s.reminded, detailID)
		}
	}
}

func (s *Scheduler) cleanupSessions() {
	deleted, err := s.sessionRepo.DeleteExpired()
	if err != nil {
		slog.Error("session cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("expired sessions removed", "count", deleted)
	}
}
