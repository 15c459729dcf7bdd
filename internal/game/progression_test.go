package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForCoins(t *testing.T) {
	thresholds := testGameConfig().LevelThresholds

	tests := []struct {
		name  string
		coins int64
		want  int
	}{
		{"fresh player", 0, 1},
		{"just below second level", 99, 1},
		{"second level boundary", 100, 2},
		{"mid third band", 700, 3},
		{"fourth level boundary", 2000, 4},
		{"fifth band", 12000, 5},
		{"max level boundary", 50000, 6},
		{"far beyond max", 9000000, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelForCoins(thresholds, tt.coins))
		})
	}
}

func TestLevelForCoinsMonotonic(t *testing.T) {
	thresholds := testGameConfig().LevelThresholds

	prev := 0
	for coins := int64(0); coins <= 60000; coins += 50 {
		level := LevelForCoins(thresholds, coins)
		assert.GreaterOrEqual(t, level, prev, "level must never decrease as coins grow")
		assert.LessOrEqual(t, level, len(thresholds))
		prev = level
	}
}

func TestProgressPercent(t *testing.T) {
	thresholds := testGameConfig().LevelThresholds

	assert.InDelta(t, 0, ProgressPercent(thresholds, 1, 0), 0.001)
	assert.InDelta(t, 50, ProgressPercent(thresholds, 1, 50), 0.001)
	assert.InDelta(t, 25, ProgressPercent(thresholds, 2, 200), 0.001)
	// max level is pinned to 100
	assert.InDelta(t, 100, ProgressPercent(thresholds, 6, 50000), 0.001)
	assert.InDelta(t, 100, ProgressPercent(thresholds, 6, 123456789), 0.001)
}

func TestNextThreshold(t *testing.T) {
	thresholds := testGameConfig().LevelThresholds

	next, ok := NextThreshold(thresholds, 1)
	assert.True(t, ok)
	assert.Equal(t, int64(100), next)

	next, ok = NextThreshold(thresholds, 5)
	assert.True(t, ok)
	assert.Equal(t, int64(50000), next)

	// final level reports the sentinel, not a number
	_, ok = NextThreshold(thresholds, 6)
	assert.False(t, ok)
}

func TestAchievements(t *testing.T) {
	locked := Achievements(1)
	for _, a := range locked {
		assert.False(t, a.Unlocked)
	}

	all := Achievements(5)
	for _, a := range all {
		assert.True(t, a.Unlocked)
	}

	partial := Achievements(3)
	unlocked := 0
	for _, a := range partial {
		if a.Unlocked {
			unlocked++
		}
	}
	assert.Equal(t, 2, unlocked)
}
