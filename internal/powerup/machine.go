package powerup

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/megaclicker/clicker-bot/internal/adgate"
	"github.com/megaclicker/clicker-bot/internal/clock"
	"github.com/megaclicker/clicker-bot/internal/scheduler"
	"github.com/megaclicker/clicker-bot/pkg/config"
)

// Timer names owned by the machine inside its session's scheduler.
const (
	timerSpawn     = "powerup:spawn"
	timerFlight    = "powerup:flight"
	timerCountdown = "powerup:countdown"
)

// Hooks let the presentation layer react to lifecycle edges. All hooks are
// optional and invoked outside the machine lock.
type Hooks struct {
	OnSpawned   func(a Appearance)
	OnExpired   func()
	OnActivated func(seconds int, multiplier float64)
	OnEnded     func()
}

// Machine drives one player's power-up lifecycle. At most one power-up is in
// flight and at most one boost is active at any instant.
type Machine struct {
	mu       sync.Mutex
	playerID int64
	balance  func() config.GameConfig
	clk      clock.Clock
	sched    *scheduler.Scheduler
	gate     adgate.Gate
	rng      *rand.Rand
	log      *slog.Logger
	hooks    Hooks

	phase      Phase
	appearance Appearance
	remaining  int
}

// NewMachine builds a dormant machine. Call Start to arm the first spawn.
func NewMachine(
	playerID int64,
	balance func() config.GameConfig,
	clk clock.Clock,
	sched *scheduler.Scheduler,
	gate adgate.Gate,
	log *slog.Logger,
	hooks Hooks,
) *Machine {
	if log == nil {
		log = slog.Default()
	}
	if gate == nil {
		gate = adgate.Noop{}
	}

	return &Machine{
		playerID: playerID,
		balance:  balance,
		clk:      clk,
		sched:    sched,
		gate:     gate,
		rng:      rand.New(rand.NewSource(clk.Now().UnixNano() ^ playerID)),
		log:      log,
		hooks:    hooks,
		phase:    PhaseDormant,
	}
}

// Start arms the spawn timer with a fresh random delay.
func (m *Machine) Start() {
	m.scheduleSpawn()
}

// Stop tears the lifecycle down: all timers are cancelled and the machine
// returns to dormant with no side effects.
func (m *Machine) Stop() {
	m.sched.Cancel(timerSpawn)
	m.sched.Cancel(timerFlight)
	m.sched.Cancel(timerCountdown)

	m.mu.Lock()
	wasActive := m.phase == PhaseActive
	m.setPhaseLocked(PhaseDormant)
	m.remaining = 0
	m.mu.Unlock()

	// a boost cut short by teardown still ends
	if wasActive && m.hooks.OnEnded != nil {
		m.hooks.OnEnded()
	}
}

// CurrentPhase returns the machine's phase.
func (m *Machine) CurrentPhase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// BoostActive reports whether the click multiplier is currently running.
func (m *Machine) BoostActive() bool {
	return m.CurrentPhase() == PhaseActive
}

// Remaining returns the seconds left on the active boost, zero otherwise.
func (m *Machine) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseActive {
		return 0
	}

	return m.remaining
}

// EffectivePower applies the temporary multiplier to the base click power
// while the boost is active.
func (m *Machine) EffectivePower(base int64) int64 {
	if !m.BoostActive() {
		return base
	}

	return int64(float64(base) * m.balance().BoostMultiplier)
}

// Position returns the current flight position, or ok=false when nothing is
// visible.
func (m *Machine) Position() (x, y float64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseVisible {
		return 0, 0, false
	}

	return m.appearance.PositionAt(m.clk.Now())
}

// Catch handles a player interaction with the visible power-up. It reports
// false when nothing was catchable: catching while dormant, expired, or
// paused on the ad gate is a no-op, never a queued action. When a rewarded
// ad gate is configured the machine holds in the caught phase until the
// gate resolves; gate failure falls open and the boost activates anyway.
func (m *Machine) Catch(ctx context.Context) bool {
	m.mu.Lock()
	if m.phase != PhaseVisible {
		m.mu.Unlock()
		return false
	}

	m.sched.Cancel(timerFlight)
	m.setPhaseLocked(PhaseCaught)
	m.mu.Unlock()

	if err := m.gate.Show(ctx, m.playerID, "powerup"); err != nil {
		m.log.Warn("powerup ad gate failed, activating anyway",
			slog.Int64("player_id", m.playerID),
			slog.Any("error", err),
		)
	}

	m.activate()
	return true
}

func (m *Machine) scheduleSpawn() {
	cfg := m.balance()

	m.mu.Lock()
	window := cfg.PowerUpSpawnMax - cfg.PowerUpSpawnMin
	delay := cfg.PowerUpSpawnMin
	if window > 0 {
		delay += time.Duration(m.rng.Int63n(int64(window)))
	}
	m.mu.Unlock()

	m.sched.After(timerSpawn, delay, m.spawn)
}

func (m *Machine) spawn() {
	cfg := m.balance()

	m.mu.Lock()
	// never spawn on top of a running boost or pending ad flow
	if m.phase != PhaseDormant {
		m.mu.Unlock()
		m.scheduleSpawn()
		return
	}

	m.appearance = Appearance{
		StartX:         m.rng.Float64(),
		SpawnedAt:      m.clk.Now(),
		FlightDuration: cfg.PowerUpFlight,
	}
	m.setPhaseLocked(PhaseVisible)
	appearance := m.appearance
	m.mu.Unlock()

	m.sched.After(timerFlight, appearance.FlightDuration, m.expire)

	if m.hooks.OnSpawned != nil {
		m.hooks.OnSpawned(appearance)
	}
}

func (m *Machine) expire() {
	m.mu.Lock()
	if m.phase != PhaseVisible {
		m.mu.Unlock()
		return
	}

	m.setPhaseLocked(PhaseExpired)
	m.setPhaseLocked(PhaseDormant)
	m.mu.Unlock()

	m.scheduleSpawn()

	if m.hooks.OnExpired != nil {
		m.hooks.OnExpired()
	}
}

func (m *Machine) activate() {
	cfg := m.balance()

	m.mu.Lock()
	if m.phase != PhaseCaught {
		// torn down while the ad was running
		m.mu.Unlock()
		return
	}

	m.setPhaseLocked(PhaseActive)
	m.remaining = int(cfg.BoostDuration / time.Second)
	seconds := m.remaining
	m.mu.Unlock()

	m.sched.Every(timerCountdown, time.Second, m.countdownTick)

	if m.hooks.OnActivated != nil {
		m.hooks.OnActivated(seconds, cfg.BoostMultiplier)
	}
}

func (m *Machine) countdownTick() {
	m.mu.Lock()
	if m.phase != PhaseActive {
		m.mu.Unlock()
		return
	}

	m.remaining--
	if m.remaining > 0 {
		m.mu.Unlock()
		return
	}

	m.setPhaseLocked(PhaseDormant)
	m.mu.Unlock()

	m.sched.Cancel(timerCountdown)
	m.scheduleSpawn()

	if m.hooks.OnEnded != nil {
		m.hooks.OnEnded()
	}
}

func (m *Machine) setPhaseLocked(to Phase) {
	if m.phase == to {
		return
	}

	if !IsTransitionAllowed(m.phase, to) {
		m.log.Warn("invalid powerup transition",
			slog.Int64("player_id", m.playerID),
			slog.String("from", string(m.phase)),
			slog.String("to", string(to)),
		)
		return
	}

	transitionRecorder(string(m.phase), string(to))
	m.phase = to
}
