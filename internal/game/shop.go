package game

import (
	"github.com/megaclicker/clicker-bot/pkg/config"
	apperrors "github.com/megaclicker/clicker-bot/internal/errors"
)

// Effect rates per boost level. The auto-clicker replaces AutoClickPower,
// passive income stacks on top of it.
const (
	autoClickerRate   = 2
	passiveIncomeRate = 5
)

// CoinFunded reports whether a purchase of kind spends coins. The passive
// income upgrade is ad-gated instead, never coin-gated: when the rewarded-ad
// capability is missing or fails, the purchase proceeds unconditionally.
func CoinFunded(kind BoostKind) bool {
	return kind != BoostPassiveIncome
}

// Purchase applies one upgrade purchase. Coin-funded kinds are rejected with
// an insufficient-funds error when coins < cost; the input state is never
// modified. Ad gating for the passive income kind happens in the runtime
// before this is called.
func Purchase(s State, kind BoostKind, cfg config.GameConfig) (State, []Event, error) {
	boost, ok := s.Boosts[kind]
	if !ok {
		boost = defaultBoost(kind, cfg)
	}

	if CoinFunded(kind) && s.Coins < boost.Cost {
		return s, nil, apperrors.NewInsufficientFundsError(boost.Cost - s.Coins)
	}

	next := s.Clone()
	spent := int64(0)
	if CoinFunded(kind) {
		spent = boost.Cost
		next.Coins -= spent
	}

	newLevel := boost.Level + 1
	// geometric cost growth, floor-truncated at every step
	newCost := int64(float64(boost.Cost) * cfg.CostRatio)
	next.Boosts[kind] = BoostState{Level: newLevel, Cost: newCost}

	prevAuto := next.AutoClickPower
	switch kind {
	case BoostClickMultiplier:
		next.ClickPower = cfg.BaseClickPower + int64(newLevel)
	case BoostAutoClicker:
		next.AutoClickPower = int64(newLevel) * autoClickerRate
	case BoostPassiveIncome:
		next.AutoClickPower += int64(newLevel) * passiveIncomeRate
	}

	events := []Event{BoostPurchased{Kind: kind, NewLevel: newLevel, NewCost: newCost, Spent: spent}}
	if (prevAuto == 0) != (next.AutoClickPower == 0) {
		events = append(events, AutoIncomeChanged{Power: next.AutoClickPower})
	}

	return next, events, nil
}

func defaultBoost(kind BoostKind, cfg config.GameConfig) BoostState {
	switch kind {
	case BoostAutoClicker:
		return BoostState{Cost: cfg.AutoBoostCost}
	case BoostPassiveIncome:
		return BoostState{Cost: cfg.PassiveBoostCost}
	default:
		return BoostState{Cost: cfg.ClickBoostCost}
	}
}
