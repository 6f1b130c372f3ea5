// Package jobs contains background job handlers executed by the worker.
package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tacklor/server/internal/ai"
	"github.com/tacklor/server/internal/compliance"
	"github.com/tacklor/server/internal/domain"
	"github.com/tacklor/server/internal/i18n"
	"github.com/tacklor/server/internal/metrics"
	"github.com/tacklor/server/internal/repository"
	"github.com/tacklor/server/internal/storage"
	"github.com/tacklor/server/internal/worker"
)

// AnalyzeCatchPhotoHandler processes jobs that run the vision provider over
// an uploaded catch photo, apply the estimate to the catch and re-evaluate
// its compliance verdict.
type AnalyzeCatchPhotoHandler struct {
	queries  *repository.Queries
	provider ai.VisionProvider
	store    storage.Storage
	engine   *compliance.Engine
	logger   *slog.Logger

	// monthlyCostCapUSD caps a single user's vision spend per calendar
	// month. Zero disables the cap.
	monthlyCostCapUSD float64
}

// NewAnalyzeCatchPhotoHandler creates a new handler for photo analysis jobs.
func NewAnalyzeCatchPhotoHandler(
	queries *repository.Queries,
	provider ai.VisionProvider,
	store storage.Storage,
	engine *compliance.Engine,
	monthlyCostCapUSD float64,
	logger *slog.Logger,
) *AnalyzeCatchPhotoHandler {
	return &AnalyzeCatchPhotoHandler{
		queries:           queries,
		provider:          provider,
		store:             store,
		engine:            engine,
		monthlyCostCapUSD: monthlyCostCapUSD,
		logger:            logger,
	}
}

// Type returns the job type identifier.
func (h *AnalyzeCatchPhotoHandler) Type() string {
	return worker.JobTypeAnalyzeCatchPhoto
}

// Handle executes the photo analysis job.
func (h *AnalyzeCatchPhotoHandler) Handle(ctx context.Context, payload []byte) error {
	var p worker.AnalyzeCatchPhotoPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
	}

	logger := h.logger.With("catch_id", p.CatchID, "user_id", p.UserID)
	logger.Info("Analyzing catch photo")

	// 1. Fetch and validate the catch.
	row, err := h.queries.GetCatchByID(ctx, p.CatchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worker.NewPermanentError(fmt.Errorf("catch not found: %w", err))
		}
		return fmt.Errorf("fetch catch: %w", err)
	}
	if row.UserID != p.UserID {
		return worker.NewPermanentError(fmt.Errorf("catch does not belong to user"))
	}
	if !row.PhotoKey.Valid || row.PhotoKey.String == "" {
		return worker.NewPermanentError(fmt.Errorf("catch has no photo attached"))
	}

	// 2. Enforce the monthly cost cap before spending more.
	if err := h.checkBudget(ctx, p.UserID); err != nil {
		h.markFailed(ctx, p.CatchID)
		return err
	}

	if err := h.queries.UpdateCatchAnalysisStatus(ctx, repository.UpdateCatchAnalysisStatusParams{
		ID:             p.CatchID,
		AnalysisStatus: string(domain.AnalysisStatusAnalyzing),
	}); err != nil {
		return fmt.Errorf("mark analyzing: %w", err)
	}

	// 3. Load the stored photo.
	reader, info, err := h.store.Get(ctx, row.PhotoKey.String)
	if err != nil {
		if storage.IsNotFound(err) {
			h.markFailed(ctx, p.CatchID)
			return worker.NewPermanentError(fmt.Errorf("stored photo missing: %w", err))
		}
		return fmt.Errorf("load photo: %w", err)
	}
	imageData, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return fmt.Errorf("read photo: %w", err)
	}

	// 4. Run the vision provider.
	result, err := h.provider.AnalyzeCatchPhoto(ctx, ai.AnalyzePhotoParams{
		ImageData:   imageData,
		ContentType: info.ContentType,
		Lang:        p.Lang,
		CatchID:     p.CatchID,
		UserID:      p.UserID,
	})
	if err != nil {
		metrics.AIAPICalls.WithLabelValues("error").Inc()
		if ai.IsRetryable(err) {
			return fmt.Errorf("vision analysis: %w", err)
		}
		h.markFailed(ctx, p.CatchID)
		metrics.PhotosAnalyzed.WithLabelValues("failed").Inc()
		return worker.NewPermanentError(fmt.Errorf("vision analysis: %w", err))
	}

	metrics.AIAPICalls.WithLabelValues("success").Inc()
	metrics.AITokensTotal.WithLabelValues("input").Add(float64(result.Usage.InputTokens))
	metrics.AITokensTotal.WithLabelValues("output").Add(float64(result.Usage.OutputTokens))
	metrics.AICostCentsTotal.Add(float64(result.Usage.CostCents))

	h.recordUsage(ctx, p, result.Usage)

	// 5. Apply the estimate. User-entered values are only overwritten when
	// the provider produced something.
	species := row.Species
	if result.Species != "" {
		species = result.Species
	}
	lengthCm := row.LengthCm
	if result.LengthCm > 0 {
		lengthCm = sql.NullFloat64{Float64: result.LengthCm, Valid: true}
	}
	weightKg := row.WeightKg
	if result.WeightKg > 0 {
		weightKg = sql.NullFloat64{Float64: result.WeightKg, Valid: true}
	}
	technique := row.Technique
	if result.Technique != "" {
		technique = sql.NullString{String: result.Technique, Valid: true}
	}
	spotType := row.SpotType
	if result.SpotType != "" {
		spotType = sql.NullString{String: result.SpotType, Valid: true}
	}
	sensitive := row.IsSensitiveSpecies || result.IsSensitiveSpecies

	updated, err := h.queries.UpdateCatchAnalysis(ctx, repository.UpdateCatchAnalysisParams{
		ID:                 p.CatchID,
		Species:            species,
		LengthCm:           lengthCm,
		WeightKg:           weightKg,
		Technique:          technique,
		SpotType:           spotType,
		IsSensitiveSpecies: sensitive,
		AnalysisStatus:     string(domain.AnalysisStatusCompleted),
	})
	if err != nil {
		return fmt.Errorf("apply analysis: %w", err)
	}

	// 6. Re-evaluate the compliance verdict with the updated snapshot.
	fresh := species != row.Species ||
		lengthCm.Float64 != row.LengthCm.Float64 ||
		sensitive != row.IsSensitiveSpecies
	if err := h.reevaluate(ctx, updated, i18n.Parse(p.Lang), fresh); err != nil {
		return fmt.Errorf("re-evaluate: %w", err)
	}

	metrics.PhotosAnalyzed.WithLabelValues("completed").Inc()
	logger.Info("Catch photo analyzed",
		"species", species,
		"length_cm", lengthCm.Float64,
		"cost_cents", result.Usage.CostCents,
	)

	return nil
}

// checkBudget returns a permanent error when the user's vision spend this
// month already exceeds the cap.
func (h *AnalyzeCatchPhotoHandler) checkBudget(ctx context.Context, userID uuid.UUID) error {
	if h.monthlyCostCapUSD <= 0 {
		return nil
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	usage, err := h.queries.SumAiUsageSince(ctx, repository.SumAiUsageSinceParams{
		UserID: userID,
		Since:  monthStart,
	})
	if err != nil {
		return fmt.Errorf("check usage: %w", err)
	}

	if usage.CostUsd >= h.monthlyCostCapUSD {
		return worker.NewPermanentError(fmt.Errorf(
			"monthly vision budget exhausted: %.2f USD of %.2f USD", usage.CostUsd, h.monthlyCostCapUSD))
	}
	return nil
}

func (h *AnalyzeCatchPhotoHandler) recordUsage(ctx context.Context, p worker.AnalyzeCatchPhotoPayload, usage ai.UsageInfo) {
	_, err := h.queries.CreateAiUsage(ctx, repository.CreateAiUsageParams{
		UserID:       p.UserID,
		CatchID:      uuid.NullUUID{UUID: p.CatchID, Valid: true},
		Model:        usage.Model,
		InputTokens:  int32(usage.InputTokens),
		OutputTokens: int32(usage.OutputTokens),
		CostUsd:      float64(usage.CostCents) / 100,
	})
	if err != nil {
		// Usage tracking must not fail the analysis.
		h.logger.Error("failed to record AI usage", "catch_id", p.CatchID, "error", err)
	}
}

func (h *AnalyzeCatchPhotoHandler) reevaluate(ctx context.Context, row repository.Catch, lang i18n.Language, fresh bool) error {
	seq, err := h.queries.BumpCatchEvalSeq(ctx, row.ID)
	if err != nil {
		return err
	}

	snap := domain.CatchSnapshot{
		Species:            row.Species,
		LengthCm:           row.LengthCm.Float64,
		IsSensitiveSpecies: row.IsSensitiveSpecies,
	}
	if row.Weather.Valid {
		var w domain.WeatherSnapshot
		if err := json.Unmarshal(row.Weather.RawMessage, &w); err == nil {
			lat, lon := w.Lat, w.Lon
			snap.Lat, snap.Lon = &lat, &lon
		}
	}

	verdict := h.engine.Evaluate(ctx, snap, lang)
	status := domain.ComplianceStatus(row.ComplianceStatus).ApplyEvaluation(verdict.Status, fresh)

	applied, err := h.queries.ApplyCatchVerdict(ctx, repository.ApplyCatchVerdictParams{
		ID:                row.ID,
		EvalSeq:           seq,
		ComplianceStatus:  string(status),
		ComplianceMessage: verdict.Message,
		AiAdvice:          verdict.Advice,
		RuleVersion:       verdict.RuleVersion,
	})
	if err != nil {
		return err
	}
	if applied == 0 {
		h.logger.Debug("discarded stale evaluation", "catch_id", row.ID, "eval_seq", seq)
		return nil
	}

	metrics.VerdictsComputed.WithLabelValues(string(status)).Inc()
	return nil
}

func (h *AnalyzeCatchPhotoHandler) markFailed(ctx context.Context, catchID uuid.UUID) {
	if err := h.queries.UpdateCatchAnalysisStatus(ctx, repository.UpdateCatchAnalysisStatusParams{
		ID:             catchID,
		AnalysisStatus: string(domain.AnalysisStatusFailed),
	}); err != nil {
		h.logger.Error("failed to mark analysis failed", "catch_id", catchID, "error", err)
	}
}
