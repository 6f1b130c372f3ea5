// Package domain contains core business types and interfaces.
//
// This file defines user profiles and the community leaderboard types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// User Profile
// =============================================================================

// UserProfile holds the public-facing identity of an angler.
//
// BirthDate is private; only the derived age is ever exposed, and only when
// ShowAge is set.
type UserProfile struct {
	UserID      uuid.UUID
	DisplayName string
	PhotoURL    string
	IsPublic    bool // Whether the angler appears in the leaderboard
	BirthDate   *time.Time
	ShowAge     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Age returns the angler's age in full years at the given time, or 0 and
// false when no birth date is recorded or ShowAge is off.
func (p *UserProfile) Age(now time.Time) (int, bool) {
	if p.BirthDate == nil || !p.ShowAge {
		return 0, false
	}
	years := now.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0, false
	}
	return years, true
}

// UpdateProfileParams contains validated parameters for updating a profile.
// Nil pointer fields are left unchanged.
type UpdateProfileParams struct {
	UserID      uuid.UUID
	DisplayName *string
	PhotoURL    *string
	IsPublic    *bool
	BirthDate   *time.Time
	ShowAge     *bool
}

// =============================================================================
// Leaderboard
// =============================================================================

// LeaderboardSort selects the metric the leaderboard is ranked by.
type LeaderboardSort string

const (
	SortByLength LeaderboardSort = "length"
	SortByWeight LeaderboardSort = "weight"
	SortByCount  LeaderboardSort = "count"
)

// IsValid returns true if the sort is a recognized value.
func (s LeaderboardSort) IsValid() bool {
	switch s {
	case SortByLength, SortByWeight, SortByCount:
		return true
	}
	return false
}

// LeaderboardEntry is one ranked row of the community leaderboard. Only
// public profiles are aggregated.
type LeaderboardEntry struct {
	UserID        uuid.UUID
	DisplayName   string
	PhotoURL      string
	TotalLengthCm float64
	TotalWeightKg float64
	CatchCount    int
	Level         string // Level key, localized by the caller (see AnglerLevel)
	Age           int    // Derived age; 0 when hidden
	AgeVisible    bool
	LastUpdated   time.Time
}

// Angler level keys, from fewest to most catches.
const (
	LevelBeginner = "beginner"
	LevelAmateur  = "amateur"
	LevelSeasoned = "seasoned"
	LevelExpert   = "expert"
	LevelLegend   = "legend"
)

// AnglerLevel maps a catch count to a level key for display.
func AnglerLevel(catchCount int) string {
	switch {
	case catchCount >= 100:
		return LevelLegend
	case catchCount >= 50:
		return LevelExpert
	case catchCount >= 20:
		return LevelSeasoned
	case catchCount >= 5:
		return LevelAmateur
	default:
		return LevelBeginner
	}
}
