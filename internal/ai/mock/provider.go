package mock

import (
	"context"
	"log/slog"
	"time"

	"github.com/tacklor/server/internal/ai"
)

// Provider is a mock vision provider for testing and development.
type Provider struct {
	logger *slog.Logger

	// Configurable responses for testing
	AnalyzeResponse *ai.AnalysisResult
	AnalyzeError    error

	// Call tracking for testing
	AnalyzeCalls int
}

// New creates a new mock vision provider.
func New(logger *slog.Logger) *Provider {
	return &Provider{
		logger: logger,
	}
}

// AnalyzeCatchPhoto returns a canned bass analysis.
func (p *Provider) AnalyzeCatchPhoto(ctx context.Context, params ai.AnalyzePhotoParams) (*ai.AnalysisResult, error) {
	p.AnalyzeCalls++

	// If a custom response or error is set, use it
	if p.AnalyzeError != nil {
		return nil, p.AnalyzeError
	}
	if p.AnalyzeResponse != nil {
		return p.AnalyzeResponse, nil
	}

	// Default canned response, localized to the requested language
	result := &ai.AnalysisResult{
		Species:            "European Bass",
		LengthCm:           52,
		WeightKg:           2.1,
		IsSensitiveSpecies: false,
		Technique:          "Topwater Lure",
		SpotType:           "Rocky Coast",
		Usage: ai.UsageInfo{
			Model:        "mock-vision-v1",
			InputTokens:  980,
			OutputTokens: 120,
			CostCents:    2,
			Duration:     250 * time.Millisecond,
		},
	}
	if params.Lang == "fr" {
		result.Species = "Bar Européen"
		result.Technique = "Leurre de surface"
		result.SpotType = "Côte rocheuse"
	}

	return result, nil
}

// Reset clears call counters and custom responses for testing.
func (p *Provider) Reset() {
	p.AnalyzeCalls = 0
	p.AnalyzeResponse = nil
	p.AnalyzeError = nil
}
