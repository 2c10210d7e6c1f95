package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elijahtye/Tonr/internal/domain"
	"github.com/google/uuid"
)

// Scorer defines the interface for AI-powered speech analysis
type Scorer interface {
	// ScoreSpeech rates a speech transcript for the requested tonality
	ScoreSpeech(ctx context.Context, params ScoreSpeechParams) (*ScoreResult, error)
}

// ScoreSpeechParams contains parameters for speech scoring
type ScoreSpeechParams struct {
	Transcript string          // Speech transcript text
	Tonality   domain.Tonality // Tonality to evaluate against
	UserID     uuid.UUID       // User ID for usage tracking
}

// ScoreResult contains the complete analysis of a speech transcript
type ScoreResult struct {
	Rating      int       // Overall score from 1 to 100
	Feedback    []string  // Actionable coaching points
	RawResponse []byte    // Raw model output JSON, kept for auditing
	Usage       UsageInfo // Token usage and cost information
}

// UsageInfo tracks API usage for billing and monitoring
type UsageInfo struct {
	Model        string        // AI model used
	InputTokens  int           // Tokens in the request
	OutputTokens int           // Tokens in the response
	CostCents    int           // Estimated cost in cents
	Duration     time.Duration // Request duration
}

// ProviderConfig contains common configuration for AI providers
type ProviderConfig struct {
	MaxRetries     int           // Maximum retry attempts for transient errors
	RetryBaseDelay time.Duration // Base delay for exponential backoff
	RequestTimeout time.Duration // Timeout for individual requests
}

// Error codes for AI provider operations
var (
	// EAIRateLimit indicates the API rate limit has been exceeded
	EAIRateLimit = errors.New("ai provider rate limit exceeded")

	// EAIInvalidInput indicates the transcript is missing or malformed
	EAIInvalidInput = errors.New("invalid transcript input")

	// EAITimeout indicates the request timed out
	EAITimeout = errors.New("ai request timed out")

	// EAIUnavailable indicates the AI service is temporarily unavailable
	EAIUnavailable = errors.New("ai service temporarily unavailable")

	// EAIUnauthorized indicates invalid API credentials
	EAIUnauthorized = errors.New("ai provider authentication failed")
)

// IsRetryable returns true if the error is a transient error that can be retried
func IsRetryable(err error) bool {
	return errors.Is(err, EAIRateLimit) ||
		errors.Is(err, EAITimeout) ||
		errors.Is(err, EAIUnavailable)
}

// WrapError wraps an error with context about the AI operation
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ai %s: %w", operation, err)
}
