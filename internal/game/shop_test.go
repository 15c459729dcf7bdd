package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/megaclicker/clicker-bot/internal/errors"
)

func TestPurchaseClickMultiplier(t *testing.T) {
	cfg := testGameConfig()
	s := NewState(cfg)
	s.Coins = 50

	next, events, err := Purchase(s, BoostClickMultiplier, cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(0), next.Coins)
	assert.Equal(t, 1, next.Boosts[BoostClickMultiplier].Level)
	assert.Equal(t, int64(75), next.Boosts[BoostClickMultiplier].Cost)
	assert.Equal(t, int64(2), next.ClickPower)

	require.Len(t, events, 1)
	purchased, ok := events[0].(BoostPurchased)
	require.True(t, ok)
	assert.Equal(t, BoostClickMultiplier, purchased.Kind)
	assert.Equal(t, int64(50), purchased.Spent)
}

func TestPurchaseInsufficientFundsIsAtomic(t *testing.T) {
	cfg := testGameConfig()
	s := NewState(cfg)
	s.Coins = 49

	next, events, err := Purchase(s, BoostClickMultiplier, cfg)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeInsufficientFunds, appErr.Code)
	assert.Equal(t, int64(1), appErr.Shortfall)

	assert.Empty(t, events)
	assert.Equal(t, s, next, "rejected purchase must not change any field")
}

func TestPurchaseCostGrowthMatchesPerStepFloor(t *testing.T) {
	cfg := testGameConfig()
	s := NewState(cfg)
	s.Coins = 1 << 40

	expected := cfg.ClickBoostCost
	for n := 1; n <= 12; n++ {
		var err error
		s, _, err = Purchase(s, BoostClickMultiplier, cfg)
		require.NoError(t, err)

		// the floor applies at every step, not to the closed form
		expected = int64(float64(expected) * cfg.CostRatio)
		assert.Equal(t, expected, s.Boosts[BoostClickMultiplier].Cost, "after %d purchases", n)
		assert.Equal(t, n, s.Boosts[BoostClickMultiplier].Level)
	}
}

func TestPurchaseKindsAreIndependent(t *testing.T) {
	cfg := testGameConfig()
	s := NewState(cfg)
	s.Coins = 10000

	next, _, err := Purchase(s, BoostAutoClicker, cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg.ClickBoostCost, next.Boosts[BoostClickMultiplier].Cost)
	assert.Equal(t, cfg.PassiveBoostCost, next.Boosts[BoostPassiveIncome].Cost)
	assert.Equal(t, int64(150), next.Boosts[BoostAutoClicker].Cost)
}

func TestPurchaseAutoClickerReplacesPower(t *testing.T) {
	cfg := testGameConfig()
	s := NewState(cfg)
	s.Coins = 10000

	s, events, err := Purchase(s, BoostAutoClicker, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.AutoClickPower)

	// 0 -> positive transition starts the passive ticker
	require.Len(t, events, 2)
	changed, ok := events[1].(AutoIncomeChanged)
	require.True(t, ok)
	assert.Equal(t, int64(2), changed.Power)

	s, events, err = Purchase(s, BoostAutoClicker, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.AutoClickPower, "auto clicker replaces, not stacks")
	assert.Len(t, events, 1)
}

func TestPurchasePassiveIncomeIsNotCoinGated(t *testing.T) {
	cfg := testGameConfig()
	s := NewState(cfg)
	s.Coins = 0

	next, _, err := Purchase(s, BoostPassiveIncome, cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(0), next.Coins, "ad-funded purchase must not spend coins")
	assert.Equal(t, int64(5), next.AutoClickPower)
	assert.Equal(t, 1, next.Boosts[BoostPassiveIncome].Level)
	assert.Equal(t, int64(300), next.Boosts[BoostPassiveIncome].Cost)
}

func TestPurchasePassiveIncomeStacksOnAutoClicker(t *testing.T) {
	cfg := testGameConfig()
	s := NewState(cfg)
	s.Coins = 10000

	s, _, err := Purchase(s, BoostAutoClicker, cfg)
	require.NoError(t, err)
	s, _, err = Purchase(s, BoostPassiveIncome, cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(7), s.AutoClickPower)
}
