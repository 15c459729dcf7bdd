package game

import (
	"time"

	apperrors "github.com/megaclicker/clicker-bot/internal/errors"
	"github.com/megaclicker/clicker-bot/pkg/config"
)

// DateLayout is the calendar-day format stored in LastDailyReward.
const DateLayout = "2006-01-02"

// DailyStatus describes whether a daily reward is owed right now and what
// claiming it would grant.
type DailyStatus struct {
	Owed      bool
	Amount    int64
	NewStreak int
}

// DailyStatusAt computes the pending daily reward at the given instant.
// Claimed today: nothing owed. Claimed exactly yesterday: the streak
// continues. Anything else resets the streak to 1.
func DailyStatusAt(s State, cfg config.GameConfig, now time.Time) DailyStatus {
	today := now.Format(DateLayout)
	if s.LastDailyReward == today {
		return DailyStatus{}
	}

	newStreak := 1
	yesterday := now.AddDate(0, 0, -1).Format(DateLayout)
	if s.LastDailyReward == yesterday {
		newStreak = s.DailyStreak + 1
	}

	return DailyStatus{
		Owed:      true,
		Amount:    cfg.DailyRewardBase + int64(newStreak-1)*cfg.DailyRewardStep,
		NewStreak: newStreak,
	}
}

// ClaimDaily grants the pending daily reward atomically: coins, streak and
// the claim date move together. Claiming twice on one calendar day is a
// duplicate-claim rejection with no state change.
func ClaimDaily(s State, cfg config.GameConfig, now time.Time) (State, []Event, error) {
	status := DailyStatusAt(s, cfg, now)
	if !status.Owed {
		return s, nil, apperrors.NewDuplicateClaimError("daily reward")
	}

	next := s.Clone()
	next.LastDailyReward = now.Format(DateLayout)
	next.DailyStreak = status.NewStreak

	next, events := credit(next, cfg, status.Amount, "daily")
	events = append([]Event{DailyClaimed{Amount: status.Amount, Streak: status.NewStreak}}, events...)

	return next, events, nil
}
