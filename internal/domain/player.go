package domain

import "time"

// Player is the durable directory record per player. The live game state
// lives in the snapshot store; this row powers referral lookups and the
// leaderboard.
type Player struct {
	ID         int64
	TelegramID int64
	UserID     string
	Username   string
	Coins      int64
	Level      int
	Referrals  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
