package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func TestResolveZone(t *testing.T) {
	tests := []struct {
		name string
		lat  *float64
		lon  *float64
		want FishingZone
	}{
		{"no coordinates", nil, nil, ZoneUnknown},
		{"missing longitude", f64(43.0), nil, ZoneUnknown},
		{"missing latitude", nil, f64(5.0), ZoneUnknown},

		// Boundary behavior around the 43.5°N / 2.0°E heuristic
		{"south-east of boundary", f64(43.4), f64(2.1), ZoneMediterranean},
		{"north of boundary", f64(43.6), f64(2.1), ZoneAtlantic},
		{"west of boundary", f64(43.4), f64(1.9), ZoneAtlantic},
		{"exactly on boundary", f64(43.5), f64(2.0), ZoneAtlantic},

		{"marseille", f64(43.3), f64(5.4), ZoneMediterranean},
		{"nantes estuary", f64(47.2), f64(-1.6), ZoneAtlantic},
		{"english channel", f64(49.5), f64(0.1), ZoneAtlantic},
		{"corsica", f64(42.0), f64(9.0), ZoneMediterranean},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveZone(tt.lat, tt.lon))
		})
	}
}

func TestResolveZone_Deterministic(t *testing.T) {
	lat, lon := f64(43.4), f64(2.1)
	first := ResolveZone(lat, lon)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ResolveZone(lat, lon))
	}
}
