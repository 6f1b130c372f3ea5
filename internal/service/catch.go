// Package service contains the business logic layer.
//
// This file implements the catch service: CRUD over logged catches plus the
// compliance evaluation lifecycle (evaluate on save, explicit re-evaluation,
// declaration acknowledgement).
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
	"github.com/tacklor/server/internal/compliance"
	"github.com/tacklor/server/internal/domain"
	"github.com/tacklor/server/internal/i18n"
	"github.com/tacklor/server/internal/metrics"
	"github.com/tacklor/server/internal/repository"
	"github.com/tacklor/server/internal/storage"
)

// =============================================================================
// Interface Definition
// =============================================================================

// CatchService defines the interface for catch-related operations.
//
// Every write path recomputes the compliance verdict and stores it alongside
// the catch, stamped with the rule-table version it was computed under.
type CatchService interface {
	// Create logs a new catch and evaluates it.
	// Returns domain.EINVALID for validation errors.
	Create(ctx context.Context, params domain.CreateCatchParams) (*domain.CatchRecord, error)

	// GetByID retrieves a catch by ID and user ID (for authorization).
	// Returns domain.ENOTFOUND if the catch does not exist or belongs to
	// another user.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.CatchRecord, error)

	// List retrieves a paginated list of the user's catches, newest first.
	List(ctx context.Context, params domain.ListCatchesParams) (*domain.ListCatchesResult, error)

	// Update edits a catch and re-evaluates it. When an evaluation-relevant
	// field changed (species, length, sensitivity), a previously validated
	// declaration is cleared and the computed status applies.
	// Returns domain.ENOTFOUND if the catch does not exist or belongs to
	// another user.
	Update(ctx context.Context, params domain.UpdateCatchParams) (*domain.CatchRecord, error)

	// Delete removes a catch and its stored photos.
	// Returns domain.ENOTFOUND if the catch does not exist or belongs to
	// another user.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// Evaluate forces a re-evaluation of a stored catch, for example after a
	// rule-table update. The validated status is sticky on this path.
	Evaluate(ctx context.Context, id, userID uuid.UUID, lang i18n.Language) (*domain.Verdict, error)

	// AcknowledgeDeclaration marks a declaration-required catch as validated
	// after the angler opened the official declaration form. Idempotent for
	// already validated catches; domain.EINVALID otherwise.
	AcknowledgeDeclaration(ctx context.Context, id, userID uuid.UUID) (*domain.CatchRecord, error)
}

// =============================================================================
// Implementation
// =============================================================================

type catchService struct {
	queries *repository.Queries
	engine  *compliance.Engine
	store   storage.Storage
	logger  *slog.Logger
}

// NewCatchService creates a new CatchService.
func NewCatchService(
	queries *repository.Queries,
	engine *compliance.Engine,
	store storage.Storage,
	logger *slog.Logger,
) CatchService {
	return &catchService{
		queries: queries,
		engine:  engine,
		store:   store,
		logger:  logger,
	}
}

// =============================================================================
// Create
// =============================================================================

func (s *catchService) Create(ctx context.Context, params domain.CreateCatchParams) (*domain.CatchRecord, error) {
	const op = "catch.create"

	if params.UserID == uuid.Nil {
		return nil, domain.Invalid(op, "user id is required")
	}
	if err := validateAnalysis(op, params.Analysis); err != nil {
		return nil, err
	}
	if params.CaughtAt.IsZero() {
		params.CaughtAt = time.Now()
	}

	lang := i18n.Parse(params.Lang)

	// Evaluate before the insert so the verdict is stored atomically with
	// the catch.
	snap := domain.CatchSnapshot{
		Species:            params.Analysis.Species,
		LengthCm:           params.Analysis.LengthCm,
		IsSensitiveSpecies: params.Analysis.IsSensitiveSpecies,
	}
	if params.WeatherSnapshot != nil {
		lat, lon := params.WeatherSnapshot.Lat, params.WeatherSnapshot.Lon
		snap.Lat, snap.Lon = &lat, &lon
	}
	verdict := s.engine.Evaluate(ctx, snap, lang)

	weather, err := marshalWeather(params.WeatherSnapshot)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to encode weather snapshot")
	}

	row, err := s.queries.CreateCatch(ctx, repository.CreateCatchParams{
		UserID:             params.UserID,
		Species:            strings.TrimSpace(params.Analysis.Species),
		LengthCm:           nullFloat(params.Analysis.LengthCm),
		WeightKg:           nullFloat(params.Analysis.WeightKg),
		Technique:          nullString(params.Analysis.Technique),
		SpotType:           nullString(params.Analysis.SpotType),
		IsSensitiveSpecies: params.Analysis.IsSensitiveSpecies,
		CaughtAt:           params.CaughtAt,
		Location:           nullString(params.Location),
		Tags:               params.Tags,
		Weather:            weather,
		ComplianceStatus:   string(verdict.Status),
		ComplianceMessage:  verdict.Message,
		AiAdvice:           verdict.Advice,
		RuleVersion:        verdict.RuleVersion,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create catch")
	}

	metrics.CatchesCreated.Inc()
	metrics.VerdictsComputed.WithLabelValues(string(verdict.Status)).Inc()

	s.logger.Info("catch created",
		"catch_id", row.ID,
		"user_id", params.UserID,
		"species", row.Species,
		"compliance_status", row.ComplianceStatus,
	)

	return rowToCatch(row)
}

// =============================================================================
// Read
// =============================================================================

func (s *catchService) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.CatchRecord, error) {
	const op = "catch.get"

	row, err := s.queries.GetCatchByIDAndUserID(ctx, repository.GetCatchByIDAndUserIDParams{
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "catch", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get catch")
	}

	return rowToCatch(row)
}

func (s *catchService) List(ctx context.Context, params domain.ListCatchesParams) (*domain.ListCatchesResult, error) {
	const op = "catch.list"

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.queries.ListCatchesByUserID(ctx, repository.ListCatchesByUserIDParams{
		UserID: params.UserID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list catches")
	}

	total, err := s.queries.CountCatchesByUserID(ctx, params.UserID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to count catches")
	}

	catches := make([]*domain.CatchRecord, 0, len(rows))
	for _, row := range rows {
		c, err := rowToCatch(row)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to decode catch")
		}
		catches = append(catches, c)
	}

	return &domain.ListCatchesResult{
		Catches:    catches,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// =============================================================================
// Update
// =============================================================================

func (s *catchService) Update(ctx context.Context, params domain.UpdateCatchParams) (*domain.CatchRecord, error) {
	const op = "catch.update"

	current, err := s.GetByID(ctx, params.ID, params.UserID)
	if err != nil {
		return nil, err
	}

	// Apply patch fields; track whether anything the evaluation depends on
	// changed, which clears a previously validated declaration.
	fresh := false
	if params.Species != nil && *params.Species != current.Species {
		current.Species = strings.TrimSpace(*params.Species)
		fresh = true
	}
	if params.LengthCm != nil && *params.LengthCm != current.LengthCm {
		current.LengthCm = *params.LengthCm
		fresh = true
	}
	if params.IsSensitiveSpecies != nil && *params.IsSensitiveSpecies != current.IsSensitiveSpecies {
		current.IsSensitiveSpecies = *params.IsSensitiveSpecies
		fresh = true
	}
	if params.WeightKg != nil {
		current.WeightKg = *params.WeightKg
	}
	if params.Technique != nil {
		current.Technique = *params.Technique
	}
	if params.SpotType != nil {
		current.SpotType = *params.SpotType
	}
	if params.Location != nil {
		current.Location = *params.Location
	}
	if params.Tags != nil {
		current.Tags = *params.Tags
	}
	if params.CaughtAt != nil {
		current.CaughtAt = *params.CaughtAt
	}

	if err := validateAnalysis(op, current.CatchAnalysis); err != nil {
		return nil, err
	}

	row, err := s.queries.UpdateCatch(ctx, repository.UpdateCatchParams{
		ID:                 params.ID,
		UserID:             params.UserID,
		Species:            current.Species,
		LengthCm:           nullFloat(current.LengthCm),
		WeightKg:           nullFloat(current.WeightKg),
		Technique:          nullString(current.Technique),
		SpotType:           nullString(current.SpotType),
		IsSensitiveSpecies: current.IsSensitiveSpecies,
		CaughtAt:           current.CaughtAt,
		Location:           nullString(current.Location),
		Tags:               current.Tags,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "catch", params.ID.String())
		}
		return nil, domain.Internal(err, op, "failed to update catch")
	}

	updated, err := rowToCatch(row)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to decode catch")
	}

	verdict, err := s.reevaluate(ctx, op, updated, i18n.Parse(params.Lang), fresh)
	if err != nil {
		return nil, err
	}
	updated.ComplianceStatus = verdict.Status
	updated.ComplianceMessage = verdict.Message
	updated.AIAdvice = verdict.Advice
	updated.RuleVersion = verdict.RuleVersion

	return updated, nil
}

// =============================================================================
// Delete
// =============================================================================

func (s *catchService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	const op = "catch.delete"

	current, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	rows, err := s.queries.DeleteCatch(ctx, repository.DeleteCatchParams{ID: id, UserID: userID})
	if err != nil {
		return domain.Internal(err, op, "failed to delete catch")
	}
	if rows == 0 {
		return domain.NotFound(op, "catch", id.String())
	}

	// Best effort: orphaned objects are harmless and the delete must not
	// fail because of storage.
	for _, key := range []string{current.PhotoKey, current.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete stored photo", "catch_id", id, "key", key, "error", err)
		}
	}

	s.logger.Info("catch deleted", "catch_id", id, "user_id", userID)
	return nil
}

// =============================================================================
// Evaluation
// =============================================================================

func (s *catchService) Evaluate(ctx context.Context, id, userID uuid.UUID, lang i18n.Language) (*domain.Verdict, error) {
	const op = "catch.evaluate"

	current, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	return s.reevaluate(ctx, op, current, lang, false)
}

// reevaluate runs the compliance engine over the record's current snapshot
// and stores the result under a freshly reserved evaluation sequence number.
// If a newer evaluation started in the meantime, the stored verdict is left
// untouched (last write wins) and the computed verdict is still returned to
// the caller.
func (s *catchService) reevaluate(ctx context.Context, op string, rec *domain.CatchRecord, lang i18n.Language, fresh bool) (*domain.Verdict, error) {
	seq, err := s.queries.BumpCatchEvalSeq(ctx, rec.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "catch", rec.ID.String())
		}
		return nil, domain.Internal(err, op, "failed to start evaluation")
	}

	verdict := s.engine.Evaluate(ctx, rec.Snapshot(), lang)
	verdict.Status = rec.ComplianceStatus.ApplyEvaluation(verdict.Status, fresh)

	applied, err := s.queries.ApplyCatchVerdict(ctx, repository.ApplyCatchVerdictParams{
		ID:                rec.ID,
		EvalSeq:           seq,
		ComplianceStatus:  string(verdict.Status),
		ComplianceMessage: verdict.Message,
		AiAdvice:          verdict.Advice,
		RuleVersion:       verdict.RuleVersion,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to store verdict")
	}
	if applied == 0 {
		s.logger.Debug("discarded stale evaluation", "catch_id", rec.ID, "eval_seq", seq)
	}

	metrics.VerdictsComputed.WithLabelValues(string(verdict.Status)).Inc()

	return &verdict, nil
}

// =============================================================================
// Declaration Acknowledgement
// =============================================================================

func (s *catchService) AcknowledgeDeclaration(ctx context.Context, id, userID uuid.UUID) (*domain.CatchRecord, error) {
	const op = "catch.acknowledge_declaration"

	current, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	next, err := current.ComplianceStatus.Acknowledge()
	if err != nil {
		return nil, domain.Invalid(op, err.Error())
	}
	if next == current.ComplianceStatus {
		// Already validated, nothing to store.
		return current, nil
	}

	row, err := s.queries.UpdateCatchComplianceStatus(ctx, repository.UpdateCatchComplianceStatusParams{
		ID:               id,
		UserID:           userID,
		ComplianceStatus: string(next),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "catch", id.String())
		}
		return nil, domain.Internal(err, op, "failed to update status")
	}

	metrics.DeclarationsAcknowledged.Inc()
	s.logger.Info("declaration acknowledged", "catch_id", id, "user_id", userID)

	return rowToCatch(row)
}

// =============================================================================
// Helpers
// =============================================================================

const maxSpeciesLength = 120

func validateAnalysis(op string, a domain.CatchAnalysis) error {
	if len(a.Species) > maxSpeciesLength {
		return domain.Invalid(op, "species name is too long")
	}
	if a.LengthCm > 1000 {
		return domain.Invalid(op, "length_cm is out of range")
	}
	if a.WeightKg > 1000 {
		return domain.Invalid(op, "weight_kg is out of range")
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: f > 0}
}

func marshalWeather(w *domain.WeatherSnapshot) (pqtype.NullRawMessage, error) {
	if w == nil {
		return pqtype.NullRawMessage{}, nil
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return pqtype.NullRawMessage{}, err
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}

// rowToCatch converts a database row to the domain type.
func rowToCatch(row repository.Catch) (*domain.CatchRecord, error) {
	rec := &domain.CatchRecord{
		ID:     row.ID,
		UserID: row.UserID,
		CatchAnalysis: domain.CatchAnalysis{
			Species:            row.Species,
			LengthCm:           row.LengthCm.Float64,
			WeightKg:           row.WeightKg.Float64,
			IsSensitiveSpecies: row.IsSensitiveSpecies,
			Technique:          row.Technique.String,
			SpotType:           row.SpotType.String,
		},
		CaughtAt:          row.CaughtAt,
		Location:          row.Location.String,
		Tags:              row.Tags,
		PhotoKey:          row.PhotoKey.String,
		ThumbnailKey:      row.ThumbnailKey.String,
		AnalysisStatus:    domain.AnalysisStatus(row.AnalysisStatus),
		ComplianceStatus:  domain.ComplianceStatus(row.ComplianceStatus),
		ComplianceMessage: row.ComplianceMessage,
		AIAdvice:          row.AiAdvice,
		RuleVersion:       row.RuleVersion,
		EvalSeq:           row.EvalSeq,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}

	if row.Weather.Valid {
		var w domain.WeatherSnapshot
		if err := json.Unmarshal(row.Weather.RawMessage, &w); err != nil {
			return nil, err
		}
		rec.WeatherSnapshot = &w
	}

	return rec, nil
}
