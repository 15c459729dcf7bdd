package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/megaclicker/clicker-bot/internal/errors"
)

func TestDailyStatusFirstEver(t *testing.T) {
	cfg := testGameConfig()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	status := DailyStatusAt(NewState(cfg), cfg, now)
	assert.True(t, status.Owed)
	assert.Equal(t, 1, status.NewStreak)
	assert.Equal(t, int64(50), status.Amount)
}

func TestClaimDailyContinuesStreak(t *testing.T) {
	cfg := testGameConfig()
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	s := NewState(cfg)
	s.LastDailyReward = "2025-03-09"
	s.DailyStreak = 2

	next, events, err := ClaimDaily(s, cfg, now)
	require.NoError(t, err)

	assert.Equal(t, int64(90), next.Coins, "50 + 2*20")
	assert.Equal(t, 3, next.DailyStreak)
	assert.Equal(t, "2025-03-10", next.LastDailyReward)

	claimed, ok := events[0].(DailyClaimed)
	require.True(t, ok)
	assert.Equal(t, int64(90), claimed.Amount)
	assert.Equal(t, 3, claimed.Streak)
}

func TestClaimDailyGapResetsStreak(t *testing.T) {
	cfg := testGameConfig()
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	s := NewState(cfg)
	s.LastDailyReward = "2025-03-07"
	s.DailyStreak = 14

	next, _, err := ClaimDaily(s, cfg, now)
	require.NoError(t, err)

	assert.Equal(t, 1, next.DailyStreak)
	assert.Equal(t, int64(50), next.Coins)
}

func TestClaimDailyTwiceSameDayRejected(t *testing.T) {
	cfg := testGameConfig()
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	s := NewState(cfg)
	first, _, err := ClaimDaily(s, cfg, now)
	require.NoError(t, err)

	// later the same calendar day
	again, events, err := ClaimDaily(first, cfg, now.Add(10*time.Hour))
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeDuplicateClaim, appErr.Code)
	assert.Empty(t, events)
	assert.Equal(t, first, again)
}

func TestClaimDailyAcrossMidnight(t *testing.T) {
	cfg := testGameConfig()

	s := NewState(cfg)
	day1 := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	s, _, err := ClaimDaily(s, cfg, day1)
	require.NoError(t, err)

	day2 := time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC)
	s, _, err = ClaimDaily(s, cfg, day2)
	require.NoError(t, err)

	assert.Equal(t, 2, s.DailyStreak, "calendar-day comparison, not 24h windows")
}
