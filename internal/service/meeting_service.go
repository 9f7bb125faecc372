package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"hireflow/internal/config"
)

// MeetingService issues meeting links through an external video conferencing
// API. Implements MeetingCreator.
type MeetingService struct {
	baseURL  string
	apiKey   string
	duration int
	client   *http.Client
	enabled  bool
}

// NewMeetingService creates a new meeting service
func NewMeetingService(cfg *config.MeetingConfig) *MeetingService {
	return &MeetingService{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		duration: cfg.DurationMinutes,
		client:   &http.Client{Timeout: 15 * time.Second},
		enabled:  cfg.Enabled && cfg.BaseURL != "",
	}
}

// Enabled reports whether the issuer is configured
func (s *MeetingService) Enabled() bool { return s.enabled }

type meetingRequest struct {
	Topic           string `json:"topic"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration"`
}

type meetingResponse struct {
	StartURL string `json:"start_url"`
	JoinURL  string `json:"join_url"`
}

// CreateMeeting schedules a meeting and returns its start and join URLs
func (s *MeetingService) CreateMeeting(topic string, start time.Time) (string, string, error) {
	if !s.enabled {
		return "", "", fmt.Errorf("meeting issuer is not configured")
	}

	payload, err := json.Marshal(meetingRequest{
		Topic:           topic,
		StartTime:       start.UTC().Format(time.RFC3339),
		DurationMinutes: s.duration,
	})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/meetings", bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("meeting request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("meeting API returned status %d", resp.StatusCode)
	}

	var meeting meetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&meeting); err != nil {
		return "", "", fmt.Errorf("malformed meeting response: %w", err)
	}
	return meeting.StartURL, meeting.JoinURL, nil
}
