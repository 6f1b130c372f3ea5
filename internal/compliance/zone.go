// Package compliance implements the regulatory compliance engine: fishing
// zone resolution, regulated-species rule matching, and verdict composition.
package compliance

// =============================================================================
// Fishing Zone
// =============================================================================

// FishingZone is a coarse geographic classification driving which
// species-specific rules apply.
type FishingZone string

const (
	// ZoneMediterranean covers the southeastern French coastline.
	ZoneMediterranean FishingZone = "mediterranean"

	// ZoneAtlantic covers the Atlantic, English Channel and North Sea coasts.
	ZoneAtlantic FishingZone = "atlantic"

	// ZoneUnknown is the conservative default when coordinates are missing.
	// Rule matching treats it as "apply the broadest applicable rule", never
	// as "skip regulation".
	ZoneUnknown FishingZone = "unknown"
)

// String returns the string representation of the zone.
func (z FishingZone) String() string {
	return string(z)
}

// Coarse bounding heuristic for the Mediterranean side of the French coast.
const (
	mediterraneanMaxLat = 43.5
	mediterraneanMinLon = 2.0
)

// ResolveZone maps capture coordinates to a fishing zone.
//
// Pure and total: a missing coordinate yields ZoneUnknown, a position south
// of 43.5°N and east of 2.0°E yields ZoneMediterranean, anything else yields
// ZoneAtlantic.
func ResolveZone(lat, lon *float64) FishingZone {
	if lat == nil || lon == nil {
		return ZoneUnknown
	}
	if *lat < mediterraneanMaxLat && *lon > mediterraneanMinLon {
		return ZoneMediterranean
	}
	return ZoneAtlantic
}
