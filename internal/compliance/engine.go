package compliance

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tacklor/server/internal/domain"
	"github.com/tacklor/server/internal/i18n"
)

// MinLengthCm is the generic species-agnostic minimum-length floor. Catches
// shorter than this trigger a "to declare" verdict regardless of species.
// A length of zero or less means "not yet measured" and is exempt.
const MinLengthCm = 20.0

// =============================================================================
// Engine
// =============================================================================

// Engine composes compliance verdicts from catch snapshots.
//
// Evaluation is deterministic and side-effect-free: the same snapshot and
// language always yield the same status and message. The engine never fails;
// malformed input degrades to "no rule matches" and an advice-generation
// problem degrades to an empty advice string.
type Engine struct {
	rules   RuleSet
	catalog *i18n.Catalog
	logger  *slog.Logger
}

// NewEngine creates a compliance engine using the given regulation table and
// message catalog.
func NewEngine(rules RuleSet, catalog *i18n.Catalog, logger *slog.Logger) *Engine {
	return &Engine{
		rules:   rules,
		catalog: catalog,
		logger:  logger,
	}
}

// RuleVersion returns the version of the regulation table the engine runs.
func (e *Engine) RuleVersion() string {
	return e.rules.Version
}

// Evaluate produces a compliance verdict for the snapshot.
//
// Status priority, first applicable wins:
//  1. A regulated species matched for the resolved zone → legal declaration required.
//  2. Measured length below the generic minimum floor → to declare.
//  3. Manual sensitivity flag set → to declare.
//  4. Otherwise → compliant.
//
// The context is accepted for interface symmetry with remote policy services;
// the decision itself is synchronous and cannot block.
func (e *Engine) Evaluate(ctx context.Context, snap domain.CatchSnapshot, lang i18n.Language) domain.Verdict {
	_ = ctx

	zone := ResolveZone(snap.Lat, snap.Lon)
	rule := e.rules.Match(snap.Species, zone)

	var status domain.ComplianceStatus
	var messageKey string

	switch {
	case rule != nil:
		status = domain.StatusDeclarationRequired
		messageKey = i18n.KeyLegalRequired
	case snap.LengthCm > 0 && snap.LengthCm < MinLengthCm:
		status = domain.StatusToDeclare
		messageKey = i18n.KeyUndersize
	case snap.IsSensitiveSpecies:
		status = domain.StatusToDeclare
		messageKey = i18n.KeySensitive
	default:
		status = domain.StatusCompliant
		messageKey = i18n.KeyCompliant
	}

	verdict := domain.Verdict{
		Status:      status,
		Message:     e.catalog.T(lang, messageKey),
		Advice:      e.advice(snap.Species, lang),
		RuleVersion: e.rules.Version,
		EvaluatedAt: time.Now().UTC(),
	}

	if e.logger != nil {
		attrs := []any{
			"zone", zone,
			"status", status,
			"rule_version", e.rules.Version,
		}
		if rule != nil {
			attrs = append(attrs, "rule", rule.ID)
		}
		e.logger.Debug("compliance evaluated", attrs...)
	}

	return verdict
}

// advice produces the Tacklor Guide angling tip for the species. The tip is
// orthogonal to the compliance verdict and must never block it, so any panic
// from a swapped-in catalog is swallowed and maps to an empty string.
func (e *Engine) advice(species string, lang i18n.Language) (tip string) {
	defer func() {
		if r := recover(); r != nil {
			if e.logger != nil {
				e.logger.Warn("advice generation failed", "panic", r)
			}
			tip = ""
		}
	}()

	speciesLower := strings.ToLower(species)
	switch {
	case strings.Contains(speciesLower, "bar") || strings.Contains(speciesLower, "bass"):
		return e.catalog.T(lang, i18n.KeyAdviceBass)
	case strings.Contains(speciesLower, "brochet") || strings.Contains(speciesLower, "pike"):
		return e.catalog.T(lang, i18n.KeyAdvicePike)
	default:
		return e.catalog.T(lang, i18n.KeyAdviceDefault)
	}
}
