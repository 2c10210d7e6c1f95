package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rating bounds for an analysis score.
const (
	RatingMin = 1
	RatingMax = 100
)

// UsageEvent records one completed analysis for quota purposes. Events are
// append-only: they are never updated, and are deleted only when the owning
// user account is deleted.
type UsageEvent struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Tonality  Tonality
	CreatedAt time.Time
}

// AnalysisResult is what the scorer produces for an admitted request.
type AnalysisResult struct {
	Rating   int      // RatingMin..RatingMax
	Feedback []string // Ordered coaching points
}

// Analysis is a persisted analysis session, kept for the user's history.
type Analysis struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Tonality   Tonality
	Transcript string
	Rating     int
	Feedback   []string
	CreatedAt  time.Time
}
