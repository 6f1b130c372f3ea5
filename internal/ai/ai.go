package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VisionProvider defines the interface for AI-powered catch photo analysis.
// The provider returns a best-effort estimate of species and measurements;
// the compliance engine never depends on its internals.
type VisionProvider interface {
	// AnalyzeCatchPhoto analyzes a catch photo and estimates species,
	// measurements and flags.
	AnalyzeCatchPhoto(ctx context.Context, params AnalyzePhotoParams) (*AnalysisResult, error)
}

// AnalyzePhotoParams contains parameters for photo analysis.
type AnalyzePhotoParams struct {
	ImageData   []byte    // Raw image bytes
	ContentType string    // MIME type (e.g., "image/jpeg")
	Lang        string    // "fr" or "en" - language for species common names
	CatchID     uuid.UUID // Catch ID for tracking
	UserID      uuid.UUID // User ID for usage tracking
}

// AnalysisResult contains the complete analysis of a catch photo.
type AnalysisResult struct {
	Species            string    // Common name in the requested language
	LengthCm           float64   // Estimated length in centimeters
	WeightKg           float64   // Estimated weight in kilograms
	IsSensitiveSpecies bool      // Whether the species looks sensitive/protected
	Technique          string    // Inferred fishing technique, if visible
	SpotType           string    // Inferred spot/environment type
	Usage              UsageInfo // Token usage and cost information
}

// UsageInfo tracks API usage for billing and monitoring.
type UsageInfo struct {
	Model        string        // AI model used
	InputTokens  int           // Tokens in the request
	OutputTokens int           // Tokens in the response
	CostCents    int           // Estimated cost in cents
	Duration     time.Duration // Request duration
}

// ProviderConfig contains common configuration for vision providers.
type ProviderConfig struct {
	MaxRetries     int           // Maximum retry attempts for transient errors
	RetryBaseDelay time.Duration // Base delay for exponential backoff
	RequestTimeout time.Duration // Timeout for individual requests
}

// Error codes for vision provider operations.
var (
	// EAIRateLimit indicates the API rate limit has been exceeded.
	EAIRateLimit = errors.New("vision provider rate limit exceeded")

	// EAIInvalidImage indicates the image format or content is invalid.
	EAIInvalidImage = errors.New("invalid image format or content")

	// EAITimeout indicates the request timed out.
	EAITimeout = errors.New("vision request timed out")

	// EAIUnavailable indicates the vision service is temporarily unavailable.
	EAIUnavailable = errors.New("vision service temporarily unavailable")

	// EAIUnauthorized indicates invalid API credentials.
	EAIUnauthorized = errors.New("vision provider authentication failed")
)

// IsRetryable returns true if the error is a transient error that can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, EAIRateLimit) ||
		errors.Is(err, EAITimeout) ||
		errors.Is(err, EAIUnavailable)
}

// WrapError wraps an error with context about the vision operation.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("vision %s: %w", operation, err)
}
