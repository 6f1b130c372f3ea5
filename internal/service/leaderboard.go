// Package service contains the business logic layer.
//
// This file implements the community leaderboard: aggregation of public
// anglers' catches ranked by length, weight or count, with a short-lived
// in-memory cache in front of the database.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/tacklor/server/internal/domain"
	"github.com/tacklor/server/internal/repository"
)

// DefaultLeaderboardLimit is the number of entries returned when the caller
// does not specify one.
const DefaultLeaderboardLimit = 50

// LeaderboardService defines the interface for the community leaderboard.
type LeaderboardService interface {
	// Get returns the ranked leaderboard for the given sort metric.
	// Results are cached; a limit <= 0 uses DefaultLeaderboardLimit.
	// Returns domain.EINVALID for an unknown sort.
	Get(ctx context.Context, sort domain.LeaderboardSort, limit int) ([]domain.LeaderboardEntry, error)

	// Refresh recomputes all rankings and primes the cache. Called
	// periodically by the background worker.
	Refresh(ctx context.Context) error
}

type leaderboardService struct {
	queries *repository.Queries
	cache   *gocache.Cache
	logger  *slog.Logger
}

// NewLeaderboardService creates a new LeaderboardService with the given
// cache TTL.
func NewLeaderboardService(queries *repository.Queries, ttl time.Duration, logger *slog.Logger) LeaderboardService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &leaderboardService{
		queries: queries,
		cache:   gocache.New(ttl, 2*ttl),
		logger:  logger,
	}
}

func (s *leaderboardService) Get(ctx context.Context, sort domain.LeaderboardSort, limit int) ([]domain.LeaderboardEntry, error) {
	const op = "leaderboard.get"

	if !sort.IsValid() {
		return nil, domain.Invalid(op, fmt.Sprintf("unknown sort %q", sort))
	}
	if limit <= 0 || limit > 200 {
		limit = DefaultLeaderboardLimit
	}

	key := fmt.Sprintf("leaderboard:%s:%d", sort, limit)
	if cached, found := s.cache.Get(key); found {
		return cached.([]domain.LeaderboardEntry), nil
	}

	entries, err := s.compute(ctx, sort, limit)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to compute leaderboard")
	}

	s.cache.SetDefault(key, entries)
	return entries, nil
}

func (s *leaderboardService) Refresh(ctx context.Context) error {
	const op = "leaderboard.refresh"

	for _, sort := range []domain.LeaderboardSort{domain.SortByLength, domain.SortByWeight, domain.SortByCount} {
		entries, err := s.compute(ctx, sort, DefaultLeaderboardLimit)
		if err != nil {
			return domain.Internal(err, op, fmt.Sprintf("failed to refresh %s ranking", sort))
		}
		key := fmt.Sprintf("leaderboard:%s:%d", sort, DefaultLeaderboardLimit)
		s.cache.SetDefault(key, entries)
	}

	s.logger.Debug("leaderboard refreshed")
	return nil
}

func (s *leaderboardService) compute(ctx context.Context, sort domain.LeaderboardSort, limit int) ([]domain.LeaderboardEntry, error) {
	var (
		rows []repository.LeaderboardRow
		err  error
	)

	switch sort {
	case domain.SortByWeight:
		rows, err = s.queries.GetLeaderboardByWeight(ctx, int32(limit))
	case domain.SortByCount:
		rows, err = s.queries.GetLeaderboardByCount(ctx, int32(limit))
	default:
		rows, err = s.queries.GetLeaderboardByLength(ctx, int32(limit))
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entry := domain.LeaderboardEntry{
			UserID:        row.UserID,
			DisplayName:   row.DisplayName,
			PhotoURL:      row.PhotoUrl,
			TotalLengthCm: row.TotalLengthCm,
			TotalWeightKg: row.TotalWeightKg,
			CatchCount:    int(row.CatchCount),
			Level:         domain.AnglerLevel(int(row.CatchCount)),
			LastUpdated:   row.LastUpdated,
		}

		profile := domain.UserProfile{ShowAge: row.ShowAge}
		if row.BirthDate.Valid {
			birthDate := row.BirthDate.Time
			profile.BirthDate = &birthDate
		}
		entry.Age, entry.AgeVisible = profile.Age(now)

		entries = append(entries, entry)
	}

	return entries, nil
}
