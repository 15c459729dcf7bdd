package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megaclicker/clicker-bot/internal/adgate"
	"github.com/megaclicker/clicker-bot/internal/clock"
	"github.com/megaclicker/clicker-bot/internal/domain"
	apperrors "github.com/megaclicker/clicker-bot/internal/errors"
	"github.com/megaclicker/clicker-bot/internal/game"
	"github.com/megaclicker/clicker-bot/internal/referral"
	"github.com/megaclicker/clicker-bot/internal/repository"
	"github.com/megaclicker/clicker-bot/internal/storage"
	"github.com/megaclicker/clicker-bot/pkg/config"
)

func testBalance() *config.Balance {
	return config.NewBalance(config.GameConfig{
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
		TapsPerSecond:    20,
		TapBurst:         40,
	})
}

type testEnv struct {
	store   storage.Storage
	client  *redis.Client
	clk     *clock.FakeClock
	deps    Deps
	manager *Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := storage.NewRedisStorage(client, log)

	deps := Deps{
		Balance:  testBalance(),
		Store:    store,
		Clock:    clk,
		Gate:     adgate.Noop{},
		Notifier: NopNotifier{},
		Log:      log,
	}

	manager := NewManager(deps, referral.NewLedger(client, log), nil, log)
	t.Cleanup(func() { manager.CloseAll(context.Background()) })

	return &testEnv{
		store:   store,
		client:  client,
		clk:     clk,
		deps:    deps,
		manager: manager,
	}
}

func TestTapCreditsAndPersists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s, err := env.manager.Get(ctx, 42, "alice")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := s.Tap(ctx)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(3), s.Snapshot().Coins)

	// every commit is written through, so a reload sees the same coins
	loaded, err := env.store.Load(ctx, 42, game.NewState(env.deps.Balance.Game()))
	require.NoError(t, err)
	assert.Equal(t, int64(3), loaded.Coins)
}

func TestGetReturnsSameSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.manager.Get(ctx, 42, "alice")
	require.NoError(t, err)

	second, err := env.manager.Get(ctx, 42, "alice")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestRejectedPurchaseLeavesStateUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s, err := env.manager.Get(ctx, 42, "alice")
	require.NoError(t, err)

	before := s.Snapshot()

	_, err = s.Buy(ctx, game.BoostClickMultiplier)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeInsufficientFunds, appErr.Code)

	assert.Equal(t, before, s.Snapshot())
}

func TestPurchaseArmsPassiveTicker(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s, err := env.manager.Get(ctx, 42, "alice")
	require.NoError(t, err)
	assert.False(t, s.sched.Active(passiveTimer))

	for i := 0; i < 100; i++ {
		_, err := s.Tap(ctx)
		require.NoError(t, err)
	}

	_, err = s.Buy(ctx, game.BoostAutoClicker)
	require.NoError(t, err)

	assert.Equal(t, int64(2), s.Snapshot().AutoClickPower)
	assert.True(t, s.sched.Active(passiveTimer))
}

func TestRedeemReferralCreditsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s, err := env.manager.Get(ctx, 42, "alice")
	require.NoError(t, err)

	credited, err := env.manager.RedeemReferral(ctx, s, "friend-token")
	require.NoError(t, err)
	assert.True(t, credited)
	assert.Equal(t, int64(1000), s.Snapshot().Coins)

	credited, err = env.manager.RedeemReferral(ctx, s, "friend-token")
	require.NoError(t, err)
	assert.False(t, credited)
	assert.Equal(t, int64(1000), s.Snapshot().Coins)
}

func TestRedeemOwnTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s, err := env.manager.Get(ctx, 42, "alice")
	require.NoError(t, err)

	credited, err := env.manager.RedeemReferral(ctx, s, s.Snapshot().UserID)
	require.NoError(t, err)
	assert.False(t, credited)
	assert.Equal(t, int64(0), s.Snapshot().Coins)
}

func TestDailyStatusAndClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s, err := env.manager.Get(ctx, 42, "alice")
	require.NoError(t, err)

	status := s.DailyStatus()
	assert.True(t, status.Owed)
	assert.Equal(t, int64(50), status.Amount)

	_, err = s.ClaimDaily(ctx)
	require.NoError(t, err)
	assert.False(t, s.DailyStatus().Owed)

	_, err = s.ClaimDaily(ctx)
	require.Error(t, err)
}

func TestCloseRefusesFurtherCommands(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s, err := env.manager.Get(ctx, 42, "alice")
	require.NoError(t, err)

	_, err = s.Tap(ctx)
	require.NoError(t, err)

	s.Close(ctx)

	_, err = s.Tap(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	loaded, err := env.store.Load(ctx, 42, game.NewState(env.deps.Balance.Game()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.Coins)
}

func TestEvictIdleClosesQuietSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s, err := env.manager.Get(ctx, 42, "alice")
	require.NoError(t, err)

	_, err = s.Tap(ctx)
	require.NoError(t, err)

	env.clk.Advance(idleTTL + time.Minute)
	env.manager.evictIdle(ctx)

	_, err = s.Tap(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	// the next Get starts a new session from the saved snapshot
	again, err := env.manager.Get(ctx, 42, "alice")
	require.NoError(t, err)
	assert.NotSame(t, s, again)
	assert.Equal(t, int64(1), again.Snapshot().Coins)
}

type fakeDirectory struct {
	mu   sync.Mutex
	rows map[int64]*domain.Player
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{rows: make(map[int64]*domain.Player)}
}

func (d *fakeDirectory) add(p *domain.Player) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rows[p.TelegramID] = p
}

func (d *fakeDirectory) FindByTelegramID(_ context.Context, telegramID int64) (*domain.Player, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.rows[telegramID]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, repository.ErrPlayerNotFound
}

func (d *fakeDirectory) FindByUserID(_ context.Context, userID string) (*domain.Player, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.rows {
		if p.UserID == userID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repository.ErrPlayerNotFound
}

func (d *fakeDirectory) Upsert(_ context.Context, player *domain.Player) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.rows[player.TelegramID]; ok && existing.Referrals > player.Referrals {
		player.Referrals = existing.Referrals
	}
	clone := *player
	d.rows[player.TelegramID] = &clone
	return nil
}

func (d *fakeDirectory) IncrementReferrals(_ context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.rows {
		if p.UserID == userID {
			p.Referrals++
			return nil
		}
	}
	return repository.ErrPlayerNotFound
}

func (d *fakeDirectory) TopByCoins(context.Context, int) ([]*domain.Player, error) {
	return nil, nil
}

func TestRedeemReferralCreditsLiveReferrer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	referrer, err := env.manager.Get(ctx, 1, "bob")
	require.NoError(t, err)
	visitor, err := env.manager.Get(ctx, 2, "alice")
	require.NoError(t, err)

	credited, err := env.manager.RedeemReferral(ctx, visitor, referrer.Snapshot().UserID)
	require.NoError(t, err)
	assert.True(t, credited)

	assert.Equal(t, int64(1000), visitor.Snapshot().Coins)
	assert.Equal(t, 1, referrer.Snapshot().ReferralsCount)

	// the bump is committed, so it survives a reload
	loaded, err := env.store.Load(ctx, 1, game.NewState(env.deps.Balance.Game()))
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.ReferralsCount)
}

func TestRedeemReferralBumpsOfflineReferrer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dir := newFakeDirectory()
	dir.add(&domain.Player{TelegramID: 1, UserID: "ref-token", Username: "bob"})
	env.manager.players = dir

	visitor, err := env.manager.Get(ctx, 2, "alice")
	require.NoError(t, err)

	credited, err := env.manager.RedeemReferral(ctx, visitor, "ref-token")
	require.NoError(t, err)
	assert.True(t, credited)

	row, err := dir.FindByUserID(ctx, "ref-token")
	require.NoError(t, err)
	assert.Equal(t, 1, row.Referrals)

	// the referrer comes online later and starts from the directory count
	referrer, err := env.manager.Get(ctx, 1, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, referrer.Snapshot().ReferralsCount)
}

func TestFailedReferralGrantReleasesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s, err := env.manager.Get(ctx, 42, "alice")
	require.NoError(t, err)
	s.Close(ctx)

	credited, err := env.manager.RedeemReferral(ctx, s, "friend-token")
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, credited)

	// the marker must not stay consumed with no coins granted
	redeemed, err := env.manager.ledger.Redeemed(ctx, 42, "friend-token")
	require.NoError(t, err)
	assert.False(t, redeemed)
}

type slowFirstSaveStore struct {
	storage.Storage

	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (s *slowFirstSaveStore) Save(ctx context.Context, playerID int64, state game.State) error {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	s.mu.Unlock()

	if first {
		close(s.entered)
		<-s.release
	}

	return s.Storage.Save(ctx, playerID, state)
}

func TestConcurrentTapsPersistInCommitOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	slow := &slowFirstSaveStore{
		Storage: env.store,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	deps := env.deps
	deps.Store = slow

	s := New(42, "alice", game.NewState(deps.Balance.Game()), deps)
	defer s.Close(ctx)

	first := make(chan struct{})
	go func() {
		_, _ = s.Tap(ctx)
		close(first)
	}()
	<-slow.entered

	// the second tap commits while the first snapshot is still being
	// written; it must not be overwritten by the older one
	second := make(chan struct{})
	go func() {
		_, _ = s.Tap(ctx)
		close(second)
	}()
	time.Sleep(20 * time.Millisecond)
	close(slow.release)
	<-first
	<-second

	loaded, err := env.store.Load(ctx, 42, game.NewState(deps.Balance.Game()))
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Coins)
	assert.Equal(t, int64(2), s.Snapshot().Coins)
}
