// Package handler contains the JSON HTTP handlers for the Tacklor API.
//
// This file implements the community leaderboard endpoint.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tacklor/server/internal/domain"
	"github.com/tacklor/server/internal/service"
)

// =============================================================================
// Response Types
// =============================================================================

// leaderboardEntryResponse is one ranked angler.
type leaderboardEntryResponse struct {
	Rank          int     `json:"rank"`
	UserID        string  `json:"user_id"`
	DisplayName   string  `json:"display_name"`
	PhotoURL      string  `json:"photo_url,omitempty"`
	TotalLengthCm float64 `json:"total_length_cm"`
	TotalWeightKg float64 `json:"total_weight_kg"`
	CatchCount    int     `json:"catch_count"`
	Level         string  `json:"level"`
	Age           *int    `json:"age,omitempty"`
}

// leaderboardResponse is the full ranking.
type leaderboardResponse struct {
	SortedBy    string                     `json:"sorted_by"`
	Entries     []leaderboardEntryResponse `json:"entries"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

// =============================================================================
// Handler Configuration
// =============================================================================

// LeaderboardHandler handles leaderboard HTTP requests.
type LeaderboardHandler struct {
	leaderboardService service.LeaderboardService
	logger             *slog.Logger
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboardService service.LeaderboardService, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		logger:             logger,
	}
}

// RegisterRoutes registers the leaderboard routes with the provided mux.
//
// Routes:
// - GET /leaderboard -> Get
func (h *LeaderboardHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("GET /leaderboard", requireUser(http.HandlerFunc(h.Get)))
}

// =============================================================================
// GET /leaderboard - Community Ranking
// =============================================================================

// Get returns the public community ranking. The by query parameter selects
// the metric (length, weight or count; length by default) and limit caps the
// number of entries.
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	sort := domain.SortByLength
	if by := r.URL.Query().Get("by"); by != "" {
		sort = domain.LeaderboardSort(by)
	}
	limit := queryInt(r, "limit", service.DefaultLeaderboardLimit)

	entries, err := h.leaderboardService.Get(r.Context(), sort, limit)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := leaderboardResponse{
		SortedBy:    string(sort),
		Entries:     make([]leaderboardEntryResponse, 0, len(entries)),
		GeneratedAt: time.Now(),
	}
	for i, e := range entries {
		entry := leaderboardEntryResponse{
			Rank:          i + 1,
			UserID:        e.UserID.String(),
			DisplayName:   e.DisplayName,
			PhotoURL:      e.PhotoURL,
			TotalLengthCm: e.TotalLengthCm,
			TotalWeightKg: e.TotalWeightKg,
			CatchCount:    e.CatchCount,
			Level:         e.Level,
		}
		if e.AgeVisible {
			age := e.Age
			entry.Age = &age
		}
		resp.Entries = append(resp.Entries, entry)
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}
