package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireflow/internal/config"
	"hireflow/internal/models"
)

func TestMatchStatusForScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"well above accept threshold", 92, models.MatchStatusAccepted},
		{"exactly at accept threshold", 70, models.MatchStatusAccepted},
		{"between thresholds", 63.5, models.MatchStatusPending},
		{"exactly at pending threshold", 50, models.MatchStatusPending},
		{"just below pending threshold", 49.9, models.MatchStatusRejected},
		{"zero", 0, models.MatchStatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchStatusForScore(tt.score))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bare json", `{"overall_match":80}`, `{"overall_match":80}`},
		{"surrounding whitespace", "\n  {\"a\":1}\n", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.content))
		})
	}
}

func TestParserServiceDisabled(t *testing.T) {
	svc := NewParserService(&config.ParserConfig{Enabled: false})
	require.False(t, svc.Enabled())

	profile, err := svc.ParseResume(context.Background(), "some resume text")
	require.NoError(t, err)
	assert.Equal(t, &models.CandidateProfile{}, profile)

	result, err := svc.MatchResume(context.Background(), profile, &models.JobPosting{Title: "Backend Engineer"})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusPending, result.Status)
	assert.Zero(t, result.OverallMatch)
}
