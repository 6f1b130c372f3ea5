package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserProfile_Age(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	birth := time.Date(1990, 6, 16, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		profile  UserProfile
		wantAge  int
		wantShow bool
	}{
		{
			name:     "birthday tomorrow",
			profile:  UserProfile{BirthDate: &birth, ShowAge: true},
			wantAge:  34,
			wantShow: true,
		},
		{
			name: "birthday today",
			profile: UserProfile{
				BirthDate: timePtr(time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)),
				ShowAge:   true,
			},
			wantAge:  35,
			wantShow: true,
		},
		{
			name:     "hidden when showAge off",
			profile:  UserProfile{BirthDate: &birth, ShowAge: false},
			wantShow: false,
		},
		{
			name:     "hidden without birth date",
			profile:  UserProfile{ShowAge: true},
			wantShow: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			age, ok := tt.profile.Age(now)
			assert.Equal(t, tt.wantShow, ok)
			if tt.wantShow {
				assert.Equal(t, tt.wantAge, age)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestAnglerLevel(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, LevelBeginner},
		{4, LevelBeginner},
		{5, LevelAmateur},
		{19, LevelAmateur},
		{20, LevelSeasoned},
		{49, LevelSeasoned},
		{50, LevelExpert},
		{99, LevelExpert},
		{100, LevelLegend},
		{500, LevelLegend},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AnglerLevel(tt.count), "count %d", tt.count)
	}
}

func TestLeaderboardSort_IsValid(t *testing.T) {
	assert.True(t, SortByLength.IsValid())
	assert.True(t, SortByWeight.IsValid())
	assert.True(t, SortByCount.IsValid())
	assert.False(t, LeaderboardSort("elo").IsValid())
}
