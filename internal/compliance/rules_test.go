package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleSet_Match(t *testing.T) {
	rs := DefaultRuleSet()

	tests := []struct {
		name    string
		species string
		zone    FishingZone
		want    string // expected rule ID, "" for no match
	}{
		// Bluefin tuna applies in every zone
		{"tuna atlantic", "Thon Rouge", ZoneAtlantic, RuleBluefinTuna},
		{"tuna mediterranean", "thon rouge", ZoneMediterranean, RuleBluefinTuna},
		{"tuna unknown zone", "Bluefin Tuna", ZoneUnknown, RuleBluefinTuna},

		// Bass regulated on the Atlantic side, conservative under unknown
		{"bass atlantic", "Bar Européen", ZoneAtlantic, RuleSeaBass},
		{"bass unknown zone", "bar", ZoneUnknown, RuleSeaBass},
		{"loup atlantic", "Loup de mer", ZoneAtlantic, RuleSeaBass},
		{"bass mediterranean excluded", "bar", ZoneMediterranean, ""},

		// Pollock mirrors the bass zone condition
		{"pollock atlantic", "Lieu Jaune", ZoneAtlantic, RulePollock},
		{"pollock unknown zone", "pollock", ZoneUnknown, RulePollock},
		{"pollock mediterranean excluded", "lieu jaune", ZoneMediterranean, ""},

		// Red seabream applies everywhere
		{"seabream atlantic", "Dorade Rose", ZoneAtlantic, RuleRedSeabream},
		{"seabream mediterranean", "red seabream", ZoneMediterranean, RuleRedSeabream},
		{"pagellus unknown zone", "Pagellus bogaraveo", ZoneUnknown, RuleRedSeabream},

		// Mahi-mahi is Mediterranean-only and does NOT apply under unknown
		{"mahi mediterranean", "Coryphène", ZoneMediterranean, RuleMahiMahi},
		{"mahi unaccented", "coryphene commune", ZoneMediterranean, RuleMahiMahi},
		{"mahi atlantic excluded", "mahi-mahi", ZoneAtlantic, ""},
		{"mahi unknown zone excluded", "coryphène", ZoneUnknown, ""},

		// No rule
		{"roach", "Gardon", ZoneAtlantic, ""},
		{"empty species", "", ZoneAtlantic, ""},
		{"pike unregulated", "Brochet", ZoneAtlantic, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := rs.Match(tt.species, tt.zone)
			if tt.want == "" {
				assert.Nil(t, rule)
			} else {
				require.NotNil(t, rule)
				assert.Equal(t, tt.want, rule.ID)
			}
		})
	}
}

// A species string containing both a tuna and a bass keyword must resolve to
// the tuna rule in every zone: the table is ordered and the first match wins.
func TestRuleSet_Match_PriorityOrder(t *testing.T) {
	rs := DefaultRuleSet()

	for _, zone := range []FishingZone{ZoneAtlantic, ZoneMediterranean, ZoneUnknown} {
		rule := rs.Match("thon rouge bar", zone)
		require.NotNil(t, rule, "zone %s", zone)
		assert.Equal(t, RuleBluefinTuna, rule.ID, "zone %s", zone)
	}
}

func TestRuleSet_Match_CaseInsensitive(t *testing.T) {
	rs := DefaultRuleSet()

	rule := rs.Match("BAR (LOUP)", ZoneAtlantic)
	require.NotNil(t, rule)
	assert.Equal(t, RuleSeaBass, rule.ID)
}

func TestSpeciesRule_AppliesIn(t *testing.T) {
	all := SpeciesRule{ID: "all"}
	assert.True(t, all.AppliesIn(ZoneAtlantic))
	assert.True(t, all.AppliesIn(ZoneMediterranean))
	assert.True(t, all.AppliesIn(ZoneUnknown))

	atl := SpeciesRule{ID: "atl", Zones: []FishingZone{ZoneAtlantic, ZoneUnknown}}
	assert.True(t, atl.AppliesIn(ZoneAtlantic))
	assert.True(t, atl.AppliesIn(ZoneUnknown))
	assert.False(t, atl.AppliesIn(ZoneMediterranean))
}

func TestDefaultRuleSet_Version(t *testing.T) {
	assert.Equal(t, CurrentRuleVersion, DefaultRuleSet().Version)
	assert.NotEmpty(t, DefaultRuleSet().Version)
}
