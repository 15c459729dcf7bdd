// Package session owns the per-player runtime: the game state loaded from
// storage, the passive income ticker, the power-up machine and the write
// path back to Redis and the directory queue.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/megaclicker/clicker-bot/internal/adgate"
	"github.com/megaclicker/clicker-bot/internal/clock"
	"github.com/megaclicker/clicker-bot/internal/game"
	"github.com/megaclicker/clicker-bot/internal/jobs"
	"github.com/megaclicker/clicker-bot/internal/powerup"
	"github.com/megaclicker/clicker-bot/internal/scheduler"
	"github.com/megaclicker/clicker-bot/internal/storage"
	"github.com/megaclicker/clicker-bot/pkg/config"
	"github.com/megaclicker/clicker-bot/pkg/metrics"
)

// ErrClosed is returned when a command reaches a session that has already
// been torn down.
var ErrClosed = errors.New("session closed")

const (
	passiveTimer   = "passive:tick"
	directoryTimer = "directory:sync"

	directorySyncPeriod = time.Minute
)

// Notifier pushes game moments to the player. The bot layer implements it;
// tests use Nop.
type Notifier interface {
	LevelUp(telegramID int64, level int)
	PowerUpSpawned(telegramID int64)
	BoostActivated(telegramID int64, seconds int, multiplier float64)
	BoostEnded(telegramID int64)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) LevelUp(int64, int)        {}
func (NopNotifier) PowerUpSpawned(int64)      {}
func (NopNotifier) BoostActivated(int64, int, float64) {}
func (NopNotifier) BoostEnded(int64)          {}

// Deps bundles the collaborators a session needs.
type Deps struct {
	Balance  *config.Balance
	Store    storage.Storage
	Clock    clock.Clock
	Gate     adgate.Gate
	Queue    jobs.Manager
	Notifier Notifier
	Log      *slog.Logger
}

// Session is one player's live game. All mutations funnel through Apply so
// the pure engine stays the single source of truth for the rules.
type Session struct {
	mu         sync.Mutex
	telegramID int64
	username   string
	state      game.State

	balance  *config.Balance
	store    storage.Storage
	clk      clock.Clock
	sched    *scheduler.Scheduler
	machine  *powerup.Machine
	gate     adgate.Gate
	queue    jobs.Manager
	notifier Notifier
	log      *slog.Logger

	touched time.Time
	closed  bool

	// commitSeq numbers committed states (guarded by mu); savedSeq tracks
	// the newest one that reached the store (guarded by saveMu). Together
	// they keep concurrent saves from persisting an older state over a
	// newer one.
	commitSeq uint64
	saveMu    sync.Mutex
	savedSeq  uint64
}

// New builds a session around an already loaded state. Call Start to arm
// the timers.
func New(telegramID int64, username string, state game.State, deps Deps) *Session {
	if deps.Notifier == nil {
		deps.Notifier = NopNotifier{}
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.Gate == nil {
		deps.Gate = adgate.Noop{}
	}

	s := &Session{
		telegramID: telegramID,
		username:   username,
		state:      state,
		balance:    deps.Balance,
		store:      deps.Store,
		clk:        deps.Clock,
		sched:      scheduler.New(),
		gate:       deps.Gate,
		queue:      deps.Queue,
		notifier:   deps.Notifier,
		log:        deps.Log.With(slog.Int64("telegram_id", telegramID)),
		touched:    deps.Clock.Now(),
	}

	s.machine = powerup.NewMachine(
		telegramID,
		deps.Balance.Game,
		deps.Clock,
		s.sched,
		deps.Gate,
		s.log,
		powerup.Hooks{
			OnSpawned:   func(powerup.Appearance) { s.notifier.PowerUpSpawned(telegramID) },
			OnActivated: func(seconds int, multiplier float64) {
				metrics.BoostStarted()
				s.notifier.BoostActivated(telegramID, seconds, multiplier)
			},
			OnEnded: func() {
				metrics.BoostEnded()
				s.notifier.BoostEnded(telegramID)
			},
		},
	)

	return s
}

// Start arms the power-up spawn timer, the passive ticker when the loaded
// state already has auto income, and the periodic directory sync.
func (s *Session) Start() {
	s.machine.Start()

	s.mu.Lock()
	s.syncPassiveTickerLocked()
	s.mu.Unlock()

	s.sched.Every(directoryTimer, directorySyncPeriod, func() {
		s.enqueueDirectorySync(context.Background())
	})
}

// Close tears the session down: timers stop, the final snapshot is saved
// and the directory gets a last sync.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.machine.Stop()
	s.sched.Stop()

	s.mu.Lock()
	s.commitSeq++
	seq := s.commitSeq
	state := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, seq, state)

	s.enqueueDirectorySync(ctx)
}

// TelegramID returns the owning player's Telegram identifier.
func (s *Session) TelegramID() int64 { return s.telegramID }

// Username returns the display name captured at load time.
func (s *Session) Username() string { return s.username }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() game.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Clone()
}

// PowerUp exposes the lifecycle machine for the presentation layer.
func (s *Session) PowerUp() *powerup.Machine { return s.machine }

// LastActive returns the time of the last player-driven command.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.touched
}

// DailyStatus reports whether a daily reward is pending and how much it
// would pay.
func (s *Session) DailyStatus() game.DailyStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return game.DailyStatusAt(s.state, s.balance.Game(), s.clk.Now())
}

// Tap processes one manual click at the current effective power.
func (s *Session) Tap(ctx context.Context) ([]game.Event, error) {
	s.mu.Lock()
	power := s.machine.EffectivePower(s.state.ClickPower)
	s.mu.Unlock()

	events, err := s.Apply(ctx, game.Click{Power: power})
	if err == nil {
		metrics.RecordTap()
	}

	return events, err
}

// Buy purchases one level of the given upgrade. Upgrades that are not
// coin-funded go through the rewarded ad gate first; a gate failure never
// denies the purchase.
func (s *Session) Buy(ctx context.Context, kind game.BoostKind) ([]game.Event, error) {
	if kind.Valid() && !game.CoinFunded(kind) {
		if err := s.gate.Show(ctx, s.telegramID, "shop:"+string(kind)); err != nil {
			s.log.WarnContext(ctx, "ad gate failed, granting upgrade anyway", "error", err)
		}
	}

	events, err := s.Apply(ctx, game.Buy{Kind: kind})
	if err != nil {
		metrics.RecordPurchase(string(kind), "rejected")
		return nil, err
	}

	metrics.RecordPurchase(string(kind), "ok")

	return events, nil
}

// ClaimDaily claims the pending daily reward.
func (s *Session) ClaimDaily(ctx context.Context) ([]game.Event, error) {
	return s.Apply(ctx, game.ClaimDailyReward{})
}

// Apply runs cmd through the engine, commits the next state and reacts to
// the emitted events. Rejected commands leave the state untouched.
func (s *Session) Apply(ctx context.Context, cmd game.Command) ([]game.Event, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}

	next, events, err := game.Apply(s.state, cmd, s.balance.Game(), s.clk.Now())
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	// Passive ticks keep earning for idle players and must not count as
	// activity, or idle sessions would never be evicted.
	if _, passive := cmd.(game.PassiveTick); !passive {
		s.touched = s.clk.Now()
	}

	s.state = next
	s.syncPassiveTickerLocked()
	s.commitSeq++
	seq := s.commitSeq
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, seq, snapshot)

	s.react(ctx, events)

	return events, nil
}

// persist writes the snapshot to storage unless a newer commit already got
// there. saveMu serializes the writes, so snapshots always land in commit
// order even when commands race.
func (s *Session) persist(ctx context.Context, seq uint64, snapshot game.State) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if seq <= s.savedSeq {
		return
	}

	if err := s.store.Save(ctx, s.telegramID, snapshot); err != nil {
		s.log.WarnContext(ctx, "failed to save snapshot", "error", err)
		return
	}

	s.savedSeq = seq
}

func (s *Session) react(ctx context.Context, events []game.Event) {
	dirty := false

	for _, ev := range events {
		switch e := ev.(type) {
		case game.CoinsEarned:
			metrics.RecordCoinsEarned(e.Source, e.Amount)
		case game.LevelUp:
			s.notifier.LevelUp(s.telegramID, e.NewLevel)
			dirty = true
		case game.BoostPurchased:
			dirty = true
		case game.DailyClaimed:
			metrics.RecordDailyClaim()
			dirty = true
		case game.ReferralCredited:
			metrics.RecordReferralCredited()
			dirty = true
		case game.ReferralRecorded:
			dirty = true
		}
	}

	if dirty {
		s.enqueueDirectorySync(ctx)
	}
}

// syncPassiveTickerLocked keeps the one-second income ticker in step with
// the current auto click power. Callers hold s.mu.
func (s *Session) syncPassiveTickerLocked() {
	if s.state.AutoClickPower > 0 {
		if !s.sched.Active(passiveTimer) {
			s.sched.Every(passiveTimer, time.Second, func() {
				_, _ = s.Apply(context.Background(), game.PassiveTick{})
			})
		}
		return
	}

	s.sched.Cancel(passiveTimer)
}

func (s *Session) enqueueDirectorySync(ctx context.Context) {
	if s.queue == nil {
		return
	}

	s.mu.Lock()
	payload := jobs.PlayerSyncPayload{
		TelegramID: s.telegramID,
		UserID:     s.state.UserID,
		Username:   s.username,
		Coins:      s.state.Coins,
		Level:      s.state.Level,
		Referrals:  s.state.ReferralsCount,
	}
	s.mu.Unlock()

	task, err := jobs.NewPlayerSyncTask(payload)
	if err != nil {
		s.log.WarnContext(ctx, "failed to build directory sync task", "error", err)
		return
	}

	if _, err := s.queue.Enqueue(ctx, task); err != nil {
		s.log.WarnContext(ctx, "failed to enqueue directory sync", "error", err)
	}
}
