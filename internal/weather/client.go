// Package weather fetches current conditions from the Open-Meteo API.
//
// A weather snapshot is attached to a catch at capture time; its coordinates
// drive fishing-zone resolution. Weather failures never block a catch: the
// caller degrades to a nil snapshot (unknown zone).
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/tacklor/server/internal/domain"
)

// DefaultBaseURL is the Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Config holds configuration for the weather client.
type Config struct {
	// BaseURL overrides the Open-Meteo endpoint (used in tests).
	BaseURL string

	// RequestTimeout bounds a single API call. Default: 5s.
	RequestTimeout time.Duration

	// CacheTTL is how long a snapshot for a coordinate cell is reused.
	// Default: 10 minutes.
	CacheTTL time.Duration

	// RequestsPerSecond limits outbound API calls. Default: 2.
	RequestsPerSecond float64
}

// Client is a caching, rate-limited Open-Meteo client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *gocache.Cache
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a weather client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 2
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		cache:      gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:     logger,
	}
}

// response mirrors the subset of the Open-Meteo payload we consume.
type response struct {
	Current struct {
		Temperature     float64 `json:"temperature_2m"`
		SurfacePressure float64 `json:"surface_pressure"`
		WindSpeed       float64 `json:"wind_speed_10m"`
		WeatherCode     int     `json:"weather_code"`
	} `json:"current"`
}

// Current returns the current conditions at the given coordinates.
// Snapshots are cached per 0.01° coordinate cell.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*domain.WeatherSnapshot, error) {
	key := fmt.Sprintf("%.2f:%.2f", lat, lon)
	if cached, found := c.cache.Get(key); found {
		snap := cached.(domain.WeatherSnapshot)
		return &snap, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", lat))
	q.Set("longitude", fmt.Sprintf("%f", lon))
	q.Set("current", "temperature_2m,surface_pressure,wind_speed_10m,weather_code")
	q.Set("wind_speed_unit", "kmh")
	q.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo returned status %d", resp.StatusCode)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weather: %w", err)
	}

	snap := domain.WeatherSnapshot{
		Temp:     payload.Current.Temperature,
		Wind:     payload.Current.WindSpeed,
		Pressure: payload.Current.SurfacePressure,
		Code:     payload.Current.WeatherCode,
		Desc:     WMODescription(payload.Current.WeatherCode),
		Lat:      lat,
		Lon:      lon,
	}

	c.cache.Set(key, snap, gocache.DefaultExpiration)

	if c.logger != nil {
		c.logger.Debug("weather fetched", "lat", lat, "lon", lon, "code", snap.Code)
	}

	return &snap, nil
}

// wmoDescriptions maps WMO weather codes to French descriptions.
var wmoDescriptions = map[int]string{
	0:  "Ciel dégagé",
	1:  "Peu nuageux",
	2:  "Nuageux",
	3:  "Couvert",
	45: "Brouillard",
	48: "Brouillard givrant",
	51: "Bruine légère",
	53: "Bruine modérée",
	55: "Bruine dense",
	61: "Pluie faible",
	63: "Pluie modérée",
	65: "Pluie forte",
	71: "Neige faible",
	73: "Neige modérée",
	75: "Neige forte",
	95: "Orage",
	96: "Orage et grêle",
	99: "Orage violent",
}

// WMODescription returns a human-readable description for a WMO weather code.
func WMODescription(code int) string {
	if desc, ok := wmoDescriptions[code]; ok {
		return desc
	}
	return "Variable"
}
