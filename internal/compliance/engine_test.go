package compliance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacklor/server/internal/domain"
	"github.com/tacklor/server/internal/i18n"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultRuleSet(), i18n.Default(), nil)
}

func TestEngine_Evaluate_StatusPriority(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	tests := []struct {
		name    string
		snap    domain.CatchSnapshot
		lang    i18n.Language
		want    domain.ComplianceStatus
		wantKey string // message catalog key the message must equal
	}{
		{
			name:    "regulated species wins over everything",
			snap:    domain.CatchSnapshot{Species: "Bar Européen", LengthCm: 15, IsSensitiveSpecies: true, Lat: f64(47.2), Lon: f64(-1.6)},
			lang:    i18n.French,
			want:    domain.StatusDeclarationRequired,
			wantKey: i18n.KeyLegalRequired,
		},
		{
			name:    "undersize fallback for unregulated species",
			snap:    domain.CatchSnapshot{Species: "Gardon", LengthCm: 15},
			lang:    i18n.English,
			want:    domain.StatusToDeclare,
			wantKey: i18n.KeyUndersize,
		},
		{
			name:    "sensitive flag when size is fine",
			snap:    domain.CatchSnapshot{Species: "Gardon", LengthCm: 30, IsSensitiveSpecies: true},
			lang:    i18n.English,
			want:    domain.StatusToDeclare,
			wantKey: i18n.KeySensitive,
		},
		{
			name:    "compliant baseline",
			snap:    domain.CatchSnapshot{Species: "Gardon", LengthCm: 30},
			lang:    i18n.French,
			want:    domain.StatusCompliant,
			wantKey: i18n.KeyCompliant,
		},
		{
			name:    "unmeasured length is exempt from the undersize floor",
			snap:    domain.CatchSnapshot{Species: "Gardon", LengthCm: 0},
			lang:    i18n.French,
			want:    domain.StatusCompliant,
			wantKey: i18n.KeyCompliant,
		},
		{
			name:    "negative length treated as unmeasured",
			snap:    domain.CatchSnapshot{Species: "Gardon", LengthCm: -3},
			lang:    i18n.French,
			want:    domain.StatusCompliant,
			wantKey: i18n.KeyCompliant,
		},
		{
			name:    "empty species falls through to size check",
			snap:    domain.CatchSnapshot{Species: "", LengthCm: 12},
			lang:    i18n.English,
			want:    domain.StatusToDeclare,
			wantKey: i18n.KeyUndersize,
		},
		{
			name:    "empty snapshot is compliant",
			snap:    domain.CatchSnapshot{},
			lang:    i18n.French,
			want:    domain.StatusCompliant,
			wantKey: i18n.KeyCompliant,
		},
	}

	catalog := i18n.Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := e.Evaluate(ctx, tt.snap, tt.lang)
			assert.Equal(t, tt.want, verdict.Status)
			assert.Equal(t, catalog.T(tt.lang, tt.wantKey), verdict.Message)
			assert.Equal(t, CurrentRuleVersion, verdict.RuleVersion)
		})
	}
}

func TestEngine_Evaluate_ZoneConditionedRules(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	// Bass in the Mediterranean is not a regulated match; it falls through to
	// the generic checks.
	med := e.Evaluate(ctx, domain.CatchSnapshot{
		Species: "bar", LengthCm: 45, Lat: f64(42.0), Lon: f64(5.0),
	}, i18n.French)
	assert.NotEqual(t, domain.StatusDeclarationRequired, med.Status)
	assert.Equal(t, domain.StatusCompliant, med.Status)

	// Mahi-mahi without coordinates (unknown zone): Mediterranean-only rule
	// does not apply.
	unknown := e.Evaluate(ctx, domain.CatchSnapshot{
		Species: "coryphène", LengthCm: 70,
	}, i18n.French)
	assert.Equal(t, domain.StatusCompliant, unknown.Status)

	// The same species with Mediterranean coordinates triggers the rule.
	medMahi := e.Evaluate(ctx, domain.CatchSnapshot{
		Species: "coryphène", LengthCm: 70, Lat: f64(41.0), Lon: f64(6.0),
	}, i18n.French)
	assert.Equal(t, domain.StatusDeclarationRequired, medMahi.Status)
}

func TestEngine_Evaluate_EndToEnd(t *testing.T) {
	e := newTestEngine()

	// Atlantic bass catch, French locale: legal declaration with the French
	// target-species message.
	verdict := e.Evaluate(context.Background(), domain.CatchSnapshot{
		Species:            "Bar (Loup)",
		LengthCm:           45,
		IsSensitiveSpecies: false,
		Lat:                f64(47.2),
		Lon:                f64(-1.6),
	}, i18n.French)

	assert.Equal(t, domain.StatusDeclarationRequired, verdict.Status)
	assert.Equal(t, "Espèce cible nécessitant une déclaration spécifique.", verdict.Message)
	assert.NotEmpty(t, verdict.Advice)
}

func TestEngine_Evaluate_Deterministic(t *testing.T) {
	e := newTestEngine()
	snap := domain.CatchSnapshot{
		Species: "thon rouge bar", LengthCm: 120, Lat: f64(43.4), Lon: f64(2.1),
	}

	first := e.Evaluate(context.Background(), snap, i18n.English)
	for i := 0; i < 5; i++ {
		again := e.Evaluate(context.Background(), snap, i18n.English)
		assert.Equal(t, first.Status, again.Status)
		assert.Equal(t, first.Message, again.Message)
		assert.Equal(t, first.Advice, again.Advice)
	}
	// Priority order: the tuna rule wins over the bass keyword in every zone.
	assert.Equal(t, domain.StatusDeclarationRequired, first.Status)
}

func TestEngine_Advice(t *testing.T) {
	e := newTestEngine()
	catalog := i18n.Default()
	ctx := context.Background()

	tests := []struct {
		species string
		lang    i18n.Language
		wantKey string
	}{
		{"Bar Européen", i18n.French, i18n.KeyAdviceBass},
		{"Largemouth Bass", i18n.English, i18n.KeyAdviceBass},
		{"Brochet", i18n.French, i18n.KeyAdvicePike},
		{"Northern Pike", i18n.English, i18n.KeyAdvicePike},
		{"Gardon", i18n.French, i18n.KeyAdviceDefault},
		{"", i18n.English, i18n.KeyAdviceDefault},
	}

	for _, tt := range tests {
		t.Run(tt.species+"_"+string(tt.lang), func(t *testing.T) {
			verdict := e.Evaluate(ctx, domain.CatchSnapshot{Species: tt.species, LengthCm: 50}, tt.lang)
			assert.Equal(t, catalog.T(tt.lang, tt.wantKey), verdict.Advice)
		})
	}
}

func TestIdentifySpecies(t *testing.T) {
	tests := []struct {
		name    string
		want    SpeciesID
		wantOK  bool
		species string
	}{
		{"bass french", SpeciesSeaBass, true, "Bar Européen"},
		{"tuna wins over bass", SpeciesBluefinTuna, true, "thon rouge bar"},
		{"pike", SpeciesPike, true, "Grand Brochet"},
		{"unknown", SpeciesUnknown, false, "Gardon"},
		{"empty", SpeciesUnknown, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := IdentifySpecies(tt.species)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestMinimumSizeCm(t *testing.T) {
	size, ok := MinimumSizeCm(SpeciesSeaBass, ZoneAtlantic)
	require.True(t, ok)
	assert.Equal(t, 42.0, size)

	size, ok = MinimumSizeCm(SpeciesSeaBass, ZoneMediterranean)
	require.True(t, ok)
	assert.Equal(t, 30.0, size)

	_, ok = MinimumSizeCm(SpeciesMahiMahi, ZoneAtlantic)
	assert.False(t, ok)

	_, ok = MinimumSizeCm(SpeciesUnknown, ZoneAtlantic)
	assert.False(t, ok)
}
