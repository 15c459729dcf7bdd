package game

// Event is emitted by a transition function alongside the next state. Side
// effects (persistence, notifications, metrics, timer scheduling) are driven
// by events, never interleaved with the pure logic.
type Event interface {
	EventName() string
}

// CoinsEarned reports a coin credit from any source: "click", "passive",
// "daily", "referral".
type CoinsEarned struct {
	Amount int64
	Source string
}

func (CoinsEarned) EventName() string { return "coins_earned" }

// LevelUp fires once whenever the derived level crosses a new threshold.
type LevelUp struct {
	NewLevel int
}

func (LevelUp) EventName() string { return "level_up" }

// BoostPurchased reports a successful shop purchase.
type BoostPurchased struct {
	Kind     BoostKind
	NewLevel int
	NewCost  int64
	Spent    int64
}

func (BoostPurchased) EventName() string { return "boost_purchased" }

// DailyClaimed reports a granted daily reward.
type DailyClaimed struct {
	Amount int64
	Streak int
}

func (DailyClaimed) EventName() string { return "daily_claimed" }

// ReferralCredited reports a one-time referral bonus grant.
type ReferralCredited struct {
	Token  string
	Amount int64
}

func (ReferralCredited) EventName() string { return "referral_credited" }

// ReferralRecorded reports that someone redeemed this player's link. Count
// is the new total of credited visitors.
type ReferralRecorded struct {
	Count int
}

func (ReferralRecorded) EventName() string { return "referral_recorded" }

// AutoIncomeChanged fires when AutoClickPower crosses zero in either
// direction so the runtime can start or stop the passive ticker.
type AutoIncomeChanged struct {
	Power int64
}

func (AutoIncomeChanged) EventName() string { return "auto_income_changed" }
