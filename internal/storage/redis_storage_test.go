package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megaclicker/clicker-bot/internal/game"
	"github.com/megaclicker/clicker-bot/pkg/config"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGameConfig() config.GameConfig {
	return config.GameConfig{
		LevelThresholds:  []int64{0, 100, 500, 2000, 10000, 50000},
		BaseClickPower:   1,
		ClickBoostCost:   50,
		AutoBoostCost:    100,
		PassiveBoostCost: 200,
		CostRatio:        1.5,
	}
}

func TestSaveAndLoad(t *testing.T) {
	store := NewRedisStorage(setupTestRedis(t), testLogger())
	ctx := context.Background()

	saved := game.NewState(testGameConfig())
	saved.Coins = 1234
	saved.Level = 3
	saved.DailyStreak = 5
	saved.Boosts[game.BoostClickMultiplier] = game.BoostState{Level: 2, Cost: 112}

	require.NoError(t, store.Save(ctx, 42, saved))

	loaded, err := store.Load(ctx, 42, game.NewState(testGameConfig()))
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestLoadNotFoundReturnsDefaults(t *testing.T) {
	store := NewRedisStorage(setupTestRedis(t), testLogger())

	defaults := game.NewState(testGameConfig())
	loaded, err := store.Load(context.Background(), 99, defaults)

	require.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.Equal(t, defaults, loaded)
}

func TestLoadMergesOldSnapshotOverDefaults(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStorage(client, testLogger())
	ctx := context.Background()

	// legacy snapshot: no daily, referral, or userId fields, and no
	// passive_income boost entry
	legacy := `{"coins":700,"clickPower":3,"autoClickPower":2,"level":3,` +
		`"boosts":{"click_multiplier":{"level":2,"cost":112},"auto_clicker":{"level":1,"cost":150}}}`
	require.NoError(t, client.Set(ctx, "player:state:7", legacy, 0).Err())

	defaults := game.NewState(testGameConfig())
	loaded, err := store.Load(ctx, 7, defaults)
	require.NoError(t, err)

	assert.Equal(t, int64(700), loaded.Coins)
	assert.Equal(t, 3, loaded.Level)
	assert.Equal(t, 0, loaded.DailyStreak)
	assert.Equal(t, defaults.UserID, loaded.UserID, "missing id falls back to the fresh default")
	assert.Equal(t, game.BoostState{Level: 2, Cost: 112}, loaded.Boosts[game.BoostClickMultiplier])
	assert.Equal(t, game.BoostState{Level: 0, Cost: 200}, loaded.Boosts[game.BoostPassiveIncome],
		"boost kinds unknown to the snapshot keep their defaults")
}

func TestLoadKeepsStoredUserID(t *testing.T) {
	store := NewRedisStorage(setupTestRedis(t), testLogger())
	ctx := context.Background()

	first := game.NewState(testGameConfig())
	require.NoError(t, store.Save(ctx, 1, first))

	// a later session builds fresh defaults with a new uuid; the stored
	// identifier must win
	loaded, err := store.Load(ctx, 1, game.NewState(testGameConfig()))
	require.NoError(t, err)
	assert.Equal(t, first.UserID, loaded.UserID)
}

func TestDelete(t *testing.T) {
	store := NewRedisStorage(setupTestRedis(t), testLogger())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 5, game.NewState(testGameConfig())))
	require.NoError(t, store.Delete(ctx, 5))

	_, err := store.Load(ctx, 5, game.NewState(testGameConfig()))
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}
