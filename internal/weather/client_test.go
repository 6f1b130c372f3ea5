package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
	"current": {
		"temperature_2m": 14.3,
		"surface_pressure": 1013.2,
		"wind_speed_10m": 18.5,
		"weather_code": 61
	}
}`

func TestClient_Current(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "temperature_2m,surface_pressure,wind_speed_10m,weather_code", r.URL.Query().Get("current"))
		assert.Equal(t, "kmh", r.URL.Query().Get("wind_speed_unit"))
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, RequestsPerSecond: 100}, nil)

	snap, err := c.Current(context.Background(), 47.2, -1.6)
	require.NoError(t, err)
	assert.Equal(t, 14.3, snap.Temp)
	assert.Equal(t, 18.5, snap.Wind)
	assert.Equal(t, 1013.2, snap.Pressure)
	assert.Equal(t, 61, snap.Code)
	assert.Equal(t, "Pluie faible", snap.Desc)
	assert.Equal(t, 47.2, snap.Lat)
	assert.Equal(t, -1.6, snap.Lon)
}

func TestClient_Current_CachesPerCell(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, CacheTTL: time.Minute, RequestsPerSecond: 100}, nil)

	_, err := c.Current(context.Background(), 47.2, -1.6)
	require.NoError(t, err)
	_, err = c.Current(context.Background(), 47.2001, -1.6001) // same 0.01° cell
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	_, err = c.Current(context.Background(), 43.3, 5.4)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Current_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, RequestsPerSecond: 100}, nil)

	_, err := c.Current(context.Background(), 47.2, -1.6)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestWMODescription(t *testing.T) {
	assert.Equal(t, "Ciel dégagé", WMODescription(0))
	assert.Equal(t, "Orage", WMODescription(95))
	assert.Equal(t, "Variable", WMODescription(42))
}
