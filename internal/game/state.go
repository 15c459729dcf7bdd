// Package game holds the pure rules of the idle-clicker economy: the
// canonical player state and the transition functions that mutate it.
// Nothing in this package touches storage, timers or the network.
package game

import (
	"github.com/google/uuid"

	"github.com/megaclicker/clicker-bot/pkg/config"
)

// BoostKind identifies one of the three purchasable upgrades.
type BoostKind string

const (
	BoostClickMultiplier BoostKind = "click_multiplier"
	BoostAutoClicker     BoostKind = "auto_clicker"
	BoostPassiveIncome   BoostKind = "passive_income"
)

// BoostKinds lists every kind in shop display order.
var BoostKinds = []BoostKind{BoostClickMultiplier, BoostAutoClicker, BoostPassiveIncome}

// Valid reports whether k names a known boost kind.
func (k BoostKind) Valid() bool {
	switch k {
	case BoostClickMultiplier, BoostAutoClicker, BoostPassiveIncome:
		return true
	}

	return false
}

// BoostState tracks one upgrade's level and its next purchase cost. Cost
// only ever grows.
type BoostState struct {
	Level int   `json:"level"`
	Cost  int64 `json:"cost"`
}

// State is the single persisted aggregate per player. JSON field names match
// the legacy snapshot layout, so old saves keep loading.
type State struct {
	Coins           int64                    `json:"coins"`
	ClickPower      int64                    `json:"clickPower"`
	AutoClickPower  int64                    `json:"autoClickPower"`
	Level           int                      `json:"level"`
	LastDailyReward string                   `json:"lastDailyReward,omitempty"`
	DailyStreak     int                      `json:"dailyStreak"`
	ReferralsCount  int                      `json:"referralsCount"`
	UserID          string                   `json:"userId"`
	Boosts          map[BoostKind]BoostState `json:"boosts"`
}

// NewState builds the first-load defaults. The player identifier is
// assigned here exactly once; loading a snapshot over these defaults keeps
// the stored identifier instead.
func NewState(cfg config.GameConfig) State {
	return State{
		Coins:          0,
		ClickPower:     cfg.BaseClickPower,
		AutoClickPower: 0,
		Level:          1,
		UserID:         uuid.NewString(),
		Boosts: map[BoostKind]BoostState{
			BoostClickMultiplier: {Level: 0, Cost: cfg.ClickBoostCost},
			BoostAutoClicker:     {Level: 0, Cost: cfg.AutoBoostCost},
			BoostPassiveIncome:   {Level: 0, Cost: cfg.PassiveBoostCost},
		},
	}
}

// Clone returns a deep copy. Transition functions operate on copies so a
// rejected operation leaves the caller's state byte-for-byte unchanged.
func (s State) Clone() State {
	out := s
	out.Boosts = make(map[BoostKind]BoostState, len(s.Boosts))
	for kind, boost := range s.Boosts {
		out.Boosts[kind] = boost
	}

	return out
}

// credit adds amount to coins and re-derives the level, appending a LevelUp
// event when a threshold was crossed. Every coins change funnels through
// here or spend.
func credit(s State, cfg config.GameConfig, amount int64, source string) (State, []Event) {
	s.Coins += amount
	events := []Event{CoinsEarned{Amount: amount, Source: source}}

	if next := LevelForCoins(cfg.LevelThresholds, s.Coins); next > s.Level {
		s.Level = next
		events = append(events, LevelUp{NewLevel: next})
	}

	return s, events
}
