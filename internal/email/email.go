// Package email sends notification mail over SMTP. All sends are
// fire-and-forget: delivery failures are logged, never propagated, so mail
// trouble cannot fail a booking or a decision.
package email

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"hireflow/internal/config"
)

// Service sends notification emails
type Service struct {
	cfg *config.EmailConfig
}

// NewService creates a new email service
func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// Enabled reports whether SMTP delivery is configured
func (s *Service) Enabled() bool {
	return s.cfg.Enabled && s.cfg.SMTPHost != ""
}

// NotifyInterviewAssigned tells an interviewer about a new assignment
func (s *Service) NotifyInterviewAssigned(interviewerEmail, candidateName string, start time.Time, joinURL string) {
	subject := "New interview assignment"
	body := fmt.Sprintf(
		"You have been assigned to interview %s on %s.",
		candidateName, start.Format("Mon, 02 Jan 2006 15:04 MST"))
	if joinURL != "" {
		body += "\n\nJoin link: " + joinURL
	}
	s.sendAsync(interviewerEmail, subject, body)
}

// NotifyCandidateScheduled tells a candidate their interview is booked
func (s *Service) NotifyCandidateScheduled(candidateEmail, candidateName string, start time.Time, joinURL string) {
	subject := "Your interview has been scheduled"
	body := fmt.Sprintf(
		"Dear %s,\n\nYour interview has been scheduled for %s.",
		candidateName, start.Format("Mon, 02 Jan 2006 15:04 MST"))
	if joinURL != "" {
		body += "\n\nJoin link: " + joinURL
	}
	body += "\n\nBest of luck!"
	s.sendAsync(candidateEmail, subject, body)
}

// NotifyInterviewReminder reminds an interviewer of an upcoming interview
func (s *Service) NotifyInterviewReminder(interviewerEmail, candidateName string, start time.Time) {
	subject := "Interview reminder"
	body := fmt.Sprintf(
		"Reminder: your interview with %s starts at %s.",
		candidateName, start.Format("Mon, 02 Jan 2006 15:04 MST"))
	s.sendAsync(interviewerEmail, subject, body)
}

func (s *Service) sendAsync(to, subject, body string) {
	if !s.Enabled() {
		slog.Debug("email disabled, skipping notification", "to", to, "subject", subject)
		return
	}
	go func() {
		if err := s.send(to, subject, body); err != nil {
			slog.Error("failed to send email", "to", to, "subject", subject, "error", err)
		}
	}()
}

func (s *Service) send(to, subject, body string) error {
	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n",
		s.cfg.SMTPFrom, to, subject, body))

	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	return smtp.SendMail(addr, auth, s.cfg.SMTPFrom, []string{to}, msg)
}
