package compliance

import "strings"

// =============================================================================
// Regulated Species Rules
// =============================================================================

// SpeciesRule is one entry of the regulation table: a set of match keywords
// and the zones in which the rule applies.
//
// Matching is lowercase substring containment and diacritics-sensitive:
// accented and unaccented keyword forms are both listed explicitly rather
// than folded at match time, so French accented input and ASCII input both
// hit without surprising a keyword that legitimately carries an accent.
type SpeciesRule struct {
	// ID identifies the rule in logs and stored verdicts.
	ID string

	// Keywords are lowercase substrings tried against the species name.
	Keywords []string

	// Zones restricts where the rule applies. Empty means all zones,
	// including ZoneUnknown.
	Zones []FishingZone
}

// AppliesIn reports whether the rule is in force for the given zone.
func (r SpeciesRule) AppliesIn(zone FishingZone) bool {
	if len(r.Zones) == 0 {
		return true
	}
	for _, z := range r.Zones {
		if z == zone {
			return true
		}
	}
	return false
}

// matches reports whether the lowercased species name contains any keyword.
func (r SpeciesRule) matches(speciesLower string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(speciesLower, kw) {
			return true
		}
	}
	return false
}

// =============================================================================
// Rule Set
// =============================================================================

// RuleSet is the ordered regulation table. Order is significant: rules are
// tried in sequence and the first match wins, so ambiguous free-text entries
// ("thon rouge bar") always resolve deterministically to the earlier rule.
//
// The set carries a version string that is stamped onto every persisted
// verdict, keeping historical records interpretable after rule revisions.
type RuleSet struct {
	Version string
	Rules   []SpeciesRule
}

// Match returns the first rule whose keywords match the species name and
// which applies in the given zone, or nil when no rule matches. The species
// name is lowercased before matching; an empty name never matches.
func (rs RuleSet) Match(species string, zone FishingZone) *SpeciesRule {
	if species == "" {
		return nil
	}
	speciesLower := strings.ToLower(species)
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if !rule.AppliesIn(zone) {
			continue
		}
		if rule.matches(speciesLower) {
			return rule
		}
	}
	return nil
}

// Rule IDs of the current regulation table.
const (
	RuleBluefinTuna = "bluefin_tuna"
	RuleSeaBass     = "european_bass"
	RulePollock     = "pollock"
	RuleRedSeabream = "red_seabream"
	RuleMahiMahi    = "mahi_mahi"
)

// CurrentRuleVersion identifies the active revision of the regulation table.
const CurrentRuleVersion = "2025.2"

// DefaultRuleSet returns the active recreational-fishing regulation table.
//
// Priority order is deliberate: bluefin tuna is checked before bass and
// pollock because free-text species entries can contain overlapping
// substrings, and the earlier rule must win. Bass and pollock are regulated
// on the Atlantic/Channel side only but still apply under ZoneUnknown
// (conservative default: require a declaration rather than silently permit).
// Mahi-mahi is the opposite: a Mediterranean-only rule that does NOT apply
// under ZoneUnknown.
func DefaultRuleSet() RuleSet {
	atlanticOrUnknown := []FishingZone{ZoneAtlantic, ZoneUnknown}

	return RuleSet{
		Version: CurrentRuleVersion,
		Rules: []SpeciesRule{
			{
				ID:       RuleBluefinTuna,
				Keywords: []string{"thon rouge", "bluefin"},
				// All zones.
			},
			{
				ID:       RuleSeaBass,
				Keywords: []string{"bar", "loup", "bass"},
				Zones:    atlanticOrUnknown,
			},
			{
				ID:       RulePollock,
				Keywords: []string{"lieu jaune", "pollock"},
				Zones:    atlanticOrUnknown,
			},
			{
				ID:       RuleRedSeabream,
				Keywords: []string{"dorade rose", "red seabream", "pagellus"},
				// All zones: ICES 7, 8 and Mediterranean designations are all covered.
			},
			{
				ID:       RuleMahiMahi,
				Keywords: []string{"coryphène", "coryphene", "mahi"},
				Zones:    []FishingZone{ZoneMediterranean},
			},
		},
	}
}
