package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tacklor/server/internal/repository"
)

// Job type constants - these must match the JobHandler.Type() values
const (
	JobTypeAnalyzeCatchPhoto  = "analyze_catch_photo"
	JobTypeRefreshLeaderboard = "refresh_leaderboard"
)

// Priority constants for job scheduling
const (
	PriorityLow    = 0
	PriorityNormal = 10
	PriorityHigh   = 20
)

// AnalyzeCatchPhotoPayload is the payload for catch photo analysis jobs.
type AnalyzeCatchPhotoPayload struct {
	CatchID uuid.UUID `json:"catch_id"`
	UserID  uuid.UUID `json:"user_id"`
	Lang    string    `json:"lang"`
}

// RefreshLeaderboardPayload is the payload for leaderboard refresh jobs.
// It carries no data; the handler recomputes all rankings.
type RefreshLeaderboardPayload struct{}

// EnqueueOption is a functional option for customizing job enqueue parameters.
type EnqueueOption func(*repository.EnqueueJobParams)

// WithPriority sets the job priority.
func WithPriority(priority int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.Priority = priority
	}
}

// WithMaxAttempts sets the maximum number of retry attempts.
func WithMaxAttempts(attempts int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.MaxAttempts = attempts
	}
}

// WithDelay schedules the job to run after a delay.
func WithDelay(delay time.Duration) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.ScheduledAt = time.Now().Add(delay)
	}
}

// EnqueueJob is a generic helper for enqueuing jobs with custom options.
func EnqueueJob(
	ctx context.Context,
	queries *repository.Queries,
	jobType string,
	payload interface{},
	opts ...EnqueueOption,
) (repository.Job, error) {
	// Marshal the payload to JSON
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return repository.Job{}, fmt.Errorf("marshal payload: %w", err)
	}

	// Default parameters
	params := repository.EnqueueJobParams{
		JobType:     jobType,
		Payload:     payloadJSON,
		Priority:    PriorityNormal,
		MaxAttempts: 3,
		ScheduledAt: time.Now(),
	}

	// Apply options
	for _, opt := range opts {
		opt(&params)
	}

	// Enqueue the job
	job, err := queries.EnqueueJob(ctx, params)
	if err != nil {
		return repository.Job{}, fmt.Errorf("enqueue job: %w", err)
	}

	return job, nil
}

// EnqueueAnalyzeCatchPhoto enqueues a job to analyze a catch photo.
// This is typically called right after a photo upload.
func EnqueueAnalyzeCatchPhoto(
	ctx context.Context,
	queries *repository.Queries,
	catchID uuid.UUID,
	userID uuid.UUID,
	lang string,
	opts ...EnqueueOption,
) (repository.Job, error) {
	payload := AnalyzeCatchPhotoPayload{
		CatchID: catchID,
		UserID:  userID,
		Lang:    lang,
	}

	return EnqueueJob(ctx, queries, JobTypeAnalyzeCatchPhoto, payload, opts...)
}

// EnqueueRefreshLeaderboard enqueues a job to recompute the community
// leaderboard rankings.
func EnqueueRefreshLeaderboard(
	ctx context.Context,
	queries *repository.Queries,
	opts ...EnqueueOption,
) (repository.Job, error) {
	return EnqueueJob(ctx, queries, JobTypeRefreshLeaderboard, RefreshLeaderboardPayload{}, opts...)
}
