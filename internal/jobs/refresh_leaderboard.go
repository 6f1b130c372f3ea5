package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tacklor/server/internal/service"
	"github.com/tacklor/server/internal/worker"
)

// RefreshLeaderboardHandler recomputes the community leaderboard rankings
// and primes the in-memory cache, so interactive requests rarely hit the
// aggregation query cold.
type RefreshLeaderboardHandler struct {
	leaderboard service.LeaderboardService
	logger      *slog.Logger
}

// NewRefreshLeaderboardHandler creates a new handler for leaderboard refresh jobs.
func NewRefreshLeaderboardHandler(leaderboard service.LeaderboardService, logger *slog.Logger) *RefreshLeaderboardHandler {
	return &RefreshLeaderboardHandler{
		leaderboard: leaderboard,
		logger:      logger,
	}
}

// Type returns the job type identifier.
func (h *RefreshLeaderboardHandler) Type() string {
	return worker.JobTypeRefreshLeaderboard
}

// Handle recomputes all leaderboard rankings.
func (h *RefreshLeaderboardHandler) Handle(ctx context.Context, payload []byte) error {
	if err := h.leaderboard.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh leaderboard: %w", err)
	}
	return nil
}
