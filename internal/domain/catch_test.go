package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatchRecord_Snapshot(t *testing.T) {
	rec := CatchRecord{
		CatchAnalysis: CatchAnalysis{
			Species:            "Bar (Loup)",
			LengthCm:           45,
			IsSensitiveSpecies: false,
		},
		WeatherSnapshot: &WeatherSnapshot{Lat: 47.2, Lon: -1.6, Temp: 14},
	}

	snap := rec.Snapshot()
	assert.Equal(t, "Bar (Loup)", snap.Species)
	assert.Equal(t, 45.0, snap.LengthCm)
	require.NotNil(t, snap.Lat)
	require.NotNil(t, snap.Lon)
	assert.Equal(t, 47.2, *snap.Lat)
	assert.Equal(t, -1.6, *snap.Lon)
}

func TestCatchRecord_Snapshot_NoWeather(t *testing.T) {
	rec := CatchRecord{CatchAnalysis: CatchAnalysis{Species: "Gardon", LengthCm: 30}}

	snap := rec.Snapshot()
	assert.Nil(t, snap.Lat)
	assert.Nil(t, snap.Lon)
	assert.False(t, rec.HasCoordinates())
}

func TestCatchRecord_HasPhoto(t *testing.T) {
	rec := CatchRecord{}
	assert.False(t, rec.HasPhoto())
	rec.PhotoKey = "catches/x/photo.jpg"
	assert.True(t, rec.HasPhoto())
}

func TestAnalysisStatus_IsValid(t *testing.T) {
	for _, s := range []AnalysisStatus{
		AnalysisStatusNone, AnalysisStatusPending, AnalysisStatusAnalyzing,
		AnalysisStatusCompleted, AnalysisStatusFailed,
	} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, AnalysisStatus("done").IsValid())
}
