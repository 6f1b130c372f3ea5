package compliance

import "strings"

// =============================================================================
// Species Catalog
// =============================================================================

// SpeciesID is the canonical identifier for species the size catalog knows
// about. The regulatory layer deliberately does NOT key on it — species names
// are free text (user-edited or AI-inferred) and go through the keyword
// matcher — but known species get reference minimum sizes for display.
type SpeciesID string

const (
	SpeciesBluefinTuna SpeciesID = "bluefin_tuna"
	SpeciesSeaBass     SpeciesID = "european_bass"
	SpeciesPollock     SpeciesID = "pollock"
	SpeciesRedSeabream SpeciesID = "red_seabream"
	SpeciesMahiMahi    SpeciesID = "mahi_mahi"
	SpeciesPike        SpeciesID = "pike"
	SpeciesUnknown     SpeciesID = ""
)

// speciesKeywords maps lowercase name fragments to canonical IDs, tried in
// order (same overlap concern as the regulation table: tuna before bass).
var speciesKeywords = []struct {
	id       SpeciesID
	keywords []string
}{
	{SpeciesBluefinTuna, []string{"thon rouge", "bluefin"}},
	{SpeciesSeaBass, []string{"bar", "loup", "bass"}},
	{SpeciesPollock, []string{"lieu jaune", "pollock"}},
	{SpeciesRedSeabream, []string{"dorade rose", "red seabream", "pagellus"}},
	{SpeciesMahiMahi, []string{"coryphène", "coryphene", "mahi"}},
	{SpeciesPike, []string{"brochet", "pike"}},
}

// IdentifySpecies resolves a free-text species name to a canonical ID.
// Returns SpeciesUnknown and false for unrecognized names.
func IdentifySpecies(name string) (SpeciesID, bool) {
	if name == "" {
		return SpeciesUnknown, false
	}
	nameLower := strings.ToLower(name)
	for _, entry := range speciesKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(nameLower, kw) {
				return entry.id, true
			}
		}
	}
	return SpeciesUnknown, false
}

// minSizes holds per-species, per-zone reference minimum capture sizes (cm).
// These are informational for the angler; the verdict's generic undersize
// floor is MinLengthCm and does not consult this table.
var minSizes = map[SpeciesID]map[FishingZone]float64{
	SpeciesSeaBass: {
		ZoneAtlantic:      42,
		ZoneUnknown:       42,
		ZoneMediterranean: 30,
	},
	SpeciesPollock: {
		ZoneAtlantic: 30,
		ZoneUnknown:  30,
	},
	SpeciesRedSeabream: {
		ZoneAtlantic:      23,
		ZoneUnknown:       23,
		ZoneMediterranean: 23,
	},
	SpeciesBluefinTuna: {
		ZoneAtlantic:      115,
		ZoneUnknown:       115,
		ZoneMediterranean: 115,
	},
	SpeciesPike: {
		ZoneAtlantic:      60,
		ZoneUnknown:       60,
		ZoneMediterranean: 60,
	},
}

// MinimumSizeCm returns the reference minimum capture size for a species in
// a zone, or false when the catalog has no entry.
func MinimumSizeCm(id SpeciesID, zone FishingZone) (float64, bool) {
	zones, ok := minSizes[id]
	if !ok {
		return 0, false
	}
	size, ok := zones[zone]
	return size, ok
}
