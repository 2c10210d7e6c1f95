package mock

import (
	"context"
	"log/slog"
	"time"

	"github.com/elijahtye/Tonr/internal/ai"
)

// Provider is a mock speech scorer for testing and development
type Provider struct {
	logger *slog.Logger

	// Configurable responses for testing
	ScoreSpeechResponse *ai.ScoreResult
	ScoreSpeechError    error

	// Call tracking for testing
	ScoreSpeechCalls int
}

// New creates a new mock speech scorer
func New(logger *slog.Logger) *Provider {
	return &Provider{
		logger: logger,
	}
}

// ScoreSpeech returns a canned rating with sample feedback
func (p *Provider) ScoreSpeech(ctx context.Context, params ai.ScoreSpeechParams) (*ai.ScoreResult, error) {
	p.ScoreSpeechCalls++

	// If a custom response or error is set, use it
	if p.ScoreSpeechError != nil {
		return nil, p.ScoreSpeechError
	}
	if p.ScoreSpeechResponse != nil {
		return p.ScoreSpeechResponse, nil
	}

	// Default canned response
	return &ai.ScoreResult{
		Rating: 72,
		Feedback: []string{
			"The opening two sentences hedge with \"I think\" and \"maybe\"; state the position directly.",
			"Pacing is consistent through the middle section, which supports the target tonality well.",
			"The closing trails off into a question; end on a declarative sentence instead.",
		},
		RawResponse: []byte(`{"rating":72,"feedback":["mock feedback"]}`),
		Usage: ai.UsageInfo{
			Model:        "mock-ai-v1",
			InputTokens:  640,
			OutputTokens: 180,
			CostCents:    1,
			Duration:     250 * time.Millisecond,
		},
	}, nil
}

// Reset clears call counters and custom responses for testing
func (p *Provider) Reset() {
	p.ScoreSpeechCalls = 0
	p.ScoreSpeechResponse = nil
	p.ScoreSpeechError = nil
}
