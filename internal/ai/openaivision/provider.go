// Package openaivision implements the vision provider on an OpenAI-compatible
// chat completions API with image input.
package openaivision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tacklor/server/internal/ai"
)

const (
	// DefaultModel is the default vision-capable model.
	DefaultModel = openai.GPT4oMini

	// MaxImageSize is the maximum image size in bytes (20MB).
	MaxImageSize = 20 * 1024 * 1024

	// Pricing in cents per 1M tokens for gpt-4o-mini.
	PricingInputCents  = 15 // $0.15 per 1M input tokens
	PricingOutputCents = 60 // $0.60 per 1M output tokens
)

// Config contains configuration for the OpenAI vision provider.
type Config struct {
	APIKey         string
	BaseURL        string // Optional: OpenAI-compatible endpoint
	Model          string
	ProviderConfig ai.ProviderConfig
}

// Provider implements the VisionProvider interface using an OpenAI-compatible API.
type Provider struct {
	config Config
	client *openai.Client
	logger *slog.Logger
}

// New creates a new OpenAI vision provider.
func New(config Config, logger *slog.Logger) (*Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("vision API key is required")
	}

	// Set defaults
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.ProviderConfig.MaxRetries == 0 {
		config.ProviderConfig.MaxRetries = 3
	}
	if config.ProviderConfig.RetryBaseDelay == 0 {
		config.ProviderConfig.RetryBaseDelay = 1 * time.Second
	}
	if config.ProviderConfig.RequestTimeout == 0 {
		config.ProviderConfig.RequestTimeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Provider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}, nil
}

// analysisPayload is the JSON schema the model is asked to return.
type analysisPayload struct {
	Species            string  `json:"species"`
	LengthCm           float64 `json:"length_cm"`
	WeightKg           float64 `json:"weight_kg"`
	IsSensitiveSpecies bool    `json:"is_sensitive_species"`
	Technique          string  `json:"technique"`
	SpotType           string  `json:"spot_type"`
}

// AnalyzeCatchPhoto analyzes a catch photo and estimates species and measurements.
func (p *Provider) AnalyzeCatchPhoto(ctx context.Context, params ai.AnalyzePhotoParams) (*ai.AnalysisResult, error) {
	startTime := time.Now()

	if err := p.validateParams(params); err != nil {
		return nil, ai.WrapError("analyze photo", err)
	}

	req := p.buildRequest(params)

	resp, err := p.executeWithRetry(ctx, req)
	if err != nil {
		return nil, ai.WrapError("execute request", err)
	}

	result, err := p.parseResponse(resp)
	if err != nil {
		return nil, ai.WrapError("parse response", err)
	}

	result.Usage = ai.UsageInfo{
		Model:        p.config.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		CostCents:    p.calculateCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
		Duration:     time.Since(startTime),
	}

	p.logger.Info("Catch photo analyzed",
		"catch_id", params.CatchID,
		"species", result.Species,
		"input_tokens", result.Usage.InputTokens,
		"output_tokens", result.Usage.OutputTokens,
	)

	return result, nil
}

// validateParams checks the photo parameters before sending them to the API.
func (p *Provider) validateParams(params ai.AnalyzePhotoParams) error {
	if len(params.ImageData) == 0 {
		return fmt.Errorf("%w: empty image data", ai.EAIInvalidImage)
	}
	if len(params.ImageData) > MaxImageSize {
		return fmt.Errorf("%w: image exceeds %d bytes", ai.EAIInvalidImage, MaxImageSize)
	}
	switch params.ContentType {
	case "image/jpeg", "image/png", "image/webp", "image/gif":
	default:
		return fmt.Errorf("%w: unsupported content type %q", ai.EAIInvalidImage, params.ContentType)
	}
	return nil
}

// buildRequest assembles the chat completion request with the photo inlined
// as a base64 data URL.
func (p *Provider) buildRequest(params ai.AnalyzePhotoParams) openai.ChatCompletionRequest {
	langName := "French"
	if params.Lang == "en" {
		langName = "English"
	}

	prompt := fmt.Sprintf(`Analyze this image of a fish catch.
1. Identify the species (provide the common name in %s).
2. Estimate its length in centimeters and weight in kilograms.
3. Determine if it is a sensitive/protected species in a recreational fishing context.
4. Infer the likely fishing technique used based on visible lures, rods, or context.
5. Identify the type of spot/environment visible in the background.

Respond with a JSON object with keys: species (string), length_cm (number),
weight_kg (number), is_sensitive_species (boolean), technique (string),
spot_type (string).`, langName)

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		params.ContentType,
		base64.StdEncoding.EncodeToString(params.ImageData),
	)

	return openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
				},
			},
		},
		MaxTokens:   500,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
}

// executeWithRetry executes the request with exponential backoff on
// transient errors.
func (p *Provider) executeWithRetry(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= p.config.ProviderConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := p.config.ProviderConfig.RetryBaseDelay * time.Duration(1<<(attempt-1))
			p.logger.Warn("Retrying vision request", "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return openai.ChatCompletionResponse{}, ai.EAITimeout
			case <-time.After(delay):
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, p.config.ProviderConfig.RequestTimeout)
		resp, err := p.client.CreateChatCompletion(reqCtx, req)
		cancel()

		if err == nil {
			return resp, nil
		}

		lastErr = p.mapError(err)
		if !ai.IsRetryable(lastErr) {
			return openai.ChatCompletionResponse{}, lastErr
		}
	}

	return openai.ChatCompletionResponse{}, lastErr
}

// mapError translates API errors into the package's sentinel errors.
func (p *Provider) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ai.EAITimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return ai.EAIRateLimit
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return ai.EAIUnauthorized
		case apiErr.HTTPStatusCode >= 500:
			return ai.EAIUnavailable
		case apiErr.HTTPStatusCode == 400 && strings.Contains(strings.ToLower(apiErr.Message), "image"):
			return fmt.Errorf("%w: %s", ai.EAIInvalidImage, apiErr.Message)
		}
	}

	return err
}

// parseResponse extracts the analysis JSON from the completion.
func (p *Provider) parseResponse(resp openai.ChatCompletionResponse) (*ai.AnalysisResult, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	// Some models wrap JSON in markdown fences despite the response format.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var payload analysisPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}

	if payload.Species == "" {
		return nil, fmt.Errorf("analysis missing species")
	}

	return &ai.AnalysisResult{
		Species:            payload.Species,
		LengthCm:           payload.LengthCm,
		WeightKg:           payload.WeightKg,
		IsSensitiveSpecies: payload.IsSensitiveSpecies,
		Technique:          payload.Technique,
		SpotType:           payload.SpotType,
	}, nil
}

// calculateCost estimates the request cost in cents from token counts.
func (p *Provider) calculateCost(inputTokens, outputTokens int) int {
	inputCost := inputTokens * PricingInputCents / 1_000_000
	outputCost := outputTokens * PricingOutputCents / 1_000_000
	return inputCost + outputCost
}
