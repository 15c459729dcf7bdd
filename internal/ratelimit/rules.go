package ratelimit

import (
	"time"

	"github.com/megaclicker/clicker-bot/pkg/config"
)

// TapRule derives the tap limit from the game balance: a burst of TapBurst
// taps is allowed inside a window sized so the sustained rate stays at
// TapsPerSecond.
func TapRule(cfg config.GameConfig) (limit int, window time.Duration) {
	limit = cfg.TapBurst
	if limit <= 0 {
		limit = 1
	}

	rate := cfg.TapsPerSecond
	if rate <= 0 {
		rate = 1
	}

	window = time.Duration(float64(limit) / float64(rate) * float64(time.Second))
	if window <= 0 {
		window = time.Second
	}

	return limit, window
}
