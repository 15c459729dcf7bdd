package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/megaclicker/clicker-bot/internal/errors"
	"github.com/megaclicker/clicker-bot/internal/game"
	"github.com/megaclicker/clicker-bot/internal/referral"
	"github.com/megaclicker/clicker-bot/internal/repository"
	"github.com/megaclicker/clicker-bot/internal/storage"
	"github.com/megaclicker/clicker-bot/pkg/metrics"
)

const (
	idleTTL       = 30 * time.Minute
	evictionSweep = time.Minute
)

// Manager loads sessions on demand and evicts the ones that went quiet.
// One session exists per Telegram user at any time.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	closed   bool

	deps    Deps
	ledger  *referral.Ledger
	players repository.PlayerRepository
	log     *slog.Logger
}

func NewManager(deps Deps, ledger *referral.Ledger, players repository.PlayerRepository, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}

	return &Manager{
		sessions: make(map[int64]*Session),
		deps:     deps,
		ledger:   ledger,
		players:  players,
		log:      log,
	}
}

// Get returns the live session for the player, loading the snapshot from
// storage on first contact. A player with no snapshot starts a fresh game.
func (m *Manager) Get(ctx context.Context, telegramID int64, username string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	if s, ok := m.sessions[telegramID]; ok {
		return s, nil
	}

	defaults := game.NewState(m.deps.Balance.Game())

	state, err := m.deps.Store.Load(ctx, telegramID, defaults)
	fresh := false
	if err != nil {
		if !errors.Is(err, storage.ErrSnapshotNotFound) {
			return nil, apperrors.NewStorageError(err)
		}
		fresh = true
	}

	// Referrals credited while the player was offline only exist in the
	// directory row; the snapshot is behind until we fold them back in.
	if m.players != nil {
		if row, err := m.players.FindByTelegramID(ctx, telegramID); err == nil {
			if row.Referrals > state.ReferralsCount {
				state.ReferralsCount = row.Referrals
			}
		} else if !errors.Is(err, repository.ErrPlayerNotFound) {
			m.log.WarnContext(ctx, "failed to read directory row", "error", err)
		}
	}

	s := New(telegramID, username, state, m.deps)
	s.Start()
	m.sessions[telegramID] = s
	metrics.SetActiveSessions(len(m.sessions))

	if fresh {
		// Put the new player in the directory right away so their
		// referral link resolves for others.
		s.enqueueDirectorySync(ctx)
	}

	m.log.InfoContext(ctx, "session started",
		slog.Int64("telegram_id", telegramID),
		slog.Bool("fresh", fresh),
	)

	return s, nil
}

// RedeemReferral runs the full referral flow for the session's player:
// ledger check, bonus credit, and the referrer's counter bump. Returns
// false when the token was already redeemed or is the player's own.
func (m *Manager) RedeemReferral(ctx context.Context, s *Session, token string) (bool, error) {
	snap := s.Snapshot()

	credited, err := m.ledger.Redeem(ctx, s.TelegramID(), token, snap.UserID)
	if err != nil || !credited {
		return false, err
	}

	if _, err := s.Apply(ctx, game.CreditReferral{Token: token}); err != nil {
		// Give the marker back so the bonus is not lost to a closing
		// session.
		if relErr := m.ledger.Release(ctx, s.TelegramID(), token); relErr != nil {
			m.log.WarnContext(ctx, "failed to release referral marker", "error", relErr)
		}
		return false, err
	}

	m.creditReferrer(ctx, token)

	return true, nil
}

// creditReferrer bumps the referrer's counter in their live session when
// they are online, falling back to the directory row otherwise. The upsert
// keeps the larger counter, so a sync from a session that has not seen the
// bump yet cannot undo it.
func (m *Manager) creditReferrer(ctx context.Context, token string) {
	if referrer := m.findByUserID(token); referrer != nil {
		if _, err := referrer.Apply(ctx, game.RecordReferral{}); err == nil {
			return
		}
		// session is closing, fall through to the directory
	}

	if m.players == nil {
		return
	}

	if err := m.players.IncrementReferrals(ctx, token); err != nil && !errors.Is(err, repository.ErrPlayerNotFound) {
		m.log.WarnContext(ctx, "failed to bump referrer counter", "error", err)
	}
}

// findByUserID returns the live session owning the game identifier, if any.
func (m *Manager) findByUserID(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.Snapshot().UserID == userID {
			return s
		}
	}

	return nil
}

// RunEviction closes sessions idle longer than the TTL until ctx is
// cancelled. The saved snapshot means eviction loses nothing.
func (m *Manager) RunEviction(ctx context.Context) {
	ticker := time.NewTicker(evictionSweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.evictIdle(ctx)
		}
	}
}

func (m *Manager) evictIdle(ctx context.Context) {
	cutoff := m.deps.Clock.Now().Add(-idleTTL)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	metrics.SetActiveSessions(len(m.sessions))
	m.mu.Unlock()

	for _, s := range idle {
		s.Close(ctx)
		m.log.InfoContext(ctx, "session evicted", slog.Int64("telegram_id", s.TelegramID()))
	}
}

// CloseAll tears every session down. Used during graceful shutdown.
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[int64]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close(ctx)
	}

	metrics.SetActiveSessions(0)
}
