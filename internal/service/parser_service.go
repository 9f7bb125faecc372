package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"hireflow/internal/apperrors"
	"hireflow/internal/config"
	"hireflow/internal/models"
)

// Score thresholds for the automated match verdict.
const (
	matchAcceptThreshold  = 70.0
	matchPendingThreshold = 50.0
)

// ParserService extracts structured candidate profiles from resume text and
// scores them against job postings using an LLM. When the collaborator is
// disabled or unreachable the pipeline degrades to a pending verdict instead
// of failing intake.
type ParserService struct {
	client  *openai.Client
	model   string
	enabled bool
}

// NewParserService creates a new parser service
func NewParserService(cfg *config.ParserConfig) *ParserService {
	svc := &ParserService{model: cfg.Model, enabled: cfg.Enabled && cfg.APIKey != ""}
	if svc.enabled {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		svc.client = openai.NewClientWithConfig(clientCfg)
	}
	return svc
}

// Enabled reports whether the collaborator is configured
func (s *ParserService) Enabled() bool { return s.enabled }

// ParseResume extracts a structured profile from raw resume text
func (s *ParserService) ParseResume(ctx context.Context, resumeText string) (*models.CandidateProfile, error) {
	if !s.enabled {
		return &models.CandidateProfile{}, nil
	}

	prompt := fmt.Sprintf(
		"Extract a candidate profile from the resume below. Respond with JSON only, matching this schema: "+
			`{"name":"","email":"","phone":"","skills":[""],"experience":[{"company":"","title":"","duration":""}],`+
			`"education":[{"institution":"","degree":"","year":""}],"total_experience_years":0}`+
			"\n\nResume:\n%s", resumeText)

	content, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, apperrors.Upstream("parser.parse", err)
	}

	var profile models.CandidateProfile
	if err := json.Unmarshal([]byte(extractJSON(content)), &profile); err != nil {
		return nil, apperrors.Upstream("parser.parse", fmt.Errorf("malformed profile response: %w", err))
	}
	return &profile, nil
}

// MatchResume scores a parsed profile against a job posting
func (s *ParserService) MatchResume(ctx context.Context, profile *models.CandidateProfile, job *models.JobPosting) (*models.MatchResult, error) {
	if !s.enabled {
		return &models.MatchResult{Status: models.MatchStatusPending}, nil
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, apperrors.Upstream("parser.match", err)
	}

	prompt := fmt.Sprintf(
		"Score the candidate profile against the job posting. Each score is a percentage from 0 to 100. "+
			"Respond with JSON only, matching this schema: "+
			`{"overall_match":0,"skills_match":0,"experience_match":0,"education_match":0}`+
			"\n\nJob title: %s\nJob description:\n%s\n\nCandidate profile:\n%s",
		job.Title, job.Description, profileJSON)

	content, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, apperrors.Upstream("parser.match", err)
	}

	var result models.MatchResult
	if err := json.Unmarshal([]byte(extractJSON(content)), &result); err != nil {
		return nil, apperrors.Upstream("parser.match", fmt.Errorf("malformed match response: %w", err))
	}

	result.Status = MatchStatusForScore(result.OverallMatch)
	if result.Status == models.MatchStatusRejected {
		result.RejectionReason = fmt.Sprintf("overall match %.0f%% is below the %.0f%% threshold",
			result.OverallMatch, matchPendingThreshold)
	}
	return &result, nil
}

// MatchStatusForScore maps an overall match percentage to a match status
func MatchStatusForScore(score float64) string {
	switch {
	case score >= matchAcceptThreshold:
		return models.MatchStatusAccepted
	case score >= matchPendingThreshold:
		return models.MatchStatusPending
	default:
		return models.MatchStatusRejected
	}
}

func (s *ParserService) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a recruiting assistant. Always answer with valid JSON and nothing else."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	slog.Debug("completion received", "model", s.model, "tokens", resp.Usage.TotalTokens)
	return resp.Choices[0].Message.Content, nil
}

// extractJSON strips markdown code fences some models wrap around JSON.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
