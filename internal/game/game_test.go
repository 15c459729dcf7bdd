package game

import (
	"time"

	"github.com/megaclicker/clicker-bot/pkg/config"
)

func testGameConfig() config.GameConfig {
	return config.GameConfig{
		LevelThresholds:  []int64{0, 100, 500, 2000, 10000, 50000},
		BaseClickPower:   1,
		ClickBoostCost:   50,
		AutoBoostCost:    100,
		PassiveBoostCost: 200,
		CostRatio:        1.5,
		PowerUpSpawnMin:  30 * time.Second,
		PowerUpSpawnMax:  5 * time.Minute,
		PowerUpFlight:    10 * time.Second,
		BoostDuration:    15 * time.Second,
		BoostMultiplier:  1.5,
		DailyRewardBase:  50,
		DailyRewardStep:  20,
		ReferralBonus:    1000,
		TapsPerSecond:    10,
		TapBurst:         20,
	}
}
