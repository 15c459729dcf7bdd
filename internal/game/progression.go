package game

// MaxLevelLabel is the sentinel shown instead of a numeric next threshold
// once the final level is reached.
const MaxLevelLabel = "MAX"

// LevelForCoins derives the 1-indexed display level from cumulative coins:
// the count of thresholds <= coins, capped at the number of thresholds.
// It is monotonic in coins, so a stored level can never go down.
func LevelForCoins(thresholds []int64, coins int64) int {
	level := 0
	for _, threshold := range thresholds {
		if coins < threshold {
			break
		}
		level++
	}

	if level < 1 {
		level = 1
	}

	return level
}

// ProgressPercent reports progress within the current level in [0,100].
// At the final level it is pinned to 100.
func ProgressPercent(thresholds []int64, level int, coins int64) float64 {
	if level >= len(thresholds) {
		return 100
	}
	if level < 1 {
		level = 1
	}

	lower := thresholds[level-1]
	upper := thresholds[level]
	progress := float64(coins-lower) / float64(upper-lower) * 100

	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}

	return progress
}

// NextThreshold returns the coin amount for the next level, or ok=false at
// the final level (render MaxLevelLabel instead).
func NextThreshold(thresholds []int64, level int) (int64, bool) {
	if level >= len(thresholds) {
		return 0, false
	}
	if level < 1 {
		level = 1
	}

	return thresholds[level], true
}

// Achievement is a level-gated badge shown on the profile.
type Achievement struct {
	Icon  string
	Title string
	Level int
}

var achievements = []Achievement{
	{Icon: "🥉", Title: "Новичок", Level: 2},
	{Icon: "🥈", Title: "Профи", Level: 3},
	{Icon: "🥇", Title: "Мастер", Level: 4},
	{Icon: "💎", Title: "Легенда", Level: 5},
}

// AchievementStatus pairs a badge with whether the level has unlocked it.
type AchievementStatus struct {
	Achievement
	Unlocked bool
}

// Achievements returns every badge with its unlocked flag for the level.
func Achievements(level int) []AchievementStatus {
	out := make([]AchievementStatus, 0, len(achievements))
	for _, a := range achievements {
		out = append(out, AchievementStatus{Achievement: a, Unlocked: level >= a.Level})
	}

	return out
}
