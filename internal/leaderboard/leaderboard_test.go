package leaderboard

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megaclicker/clicker-bot/internal/domain"
	"github.com/megaclicker/clicker-bot/internal/repository"
)

type stubPlayers struct {
	top []*domain.Player
}

func (s *stubPlayers) FindByTelegramID(context.Context, int64) (*domain.Player, error) {
	return nil, repository.ErrPlayerNotFound
}

func (s *stubPlayers) FindByUserID(context.Context, string) (*domain.Player, error) {
	return nil, repository.ErrPlayerNotFound
}

func (s *stubPlayers) Upsert(context.Context, *domain.Player) error { return nil }

func (s *stubPlayers) IncrementReferrals(context.Context, string) error { return nil }

func (s *stubPlayers) TopByCoins(_ context.Context, limit int) ([]*domain.Player, error) {
	if limit > len(s.top) {
		limit = len(s.top)
	}
	return s.top[:limit], nil
}

func newTestBoard(t *testing.T, players repository.PlayerRepository) *Board {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewBoard(client, players, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func somePlayers(n int) []*domain.Player {
	players := make([]*domain.Player, 0, n)
	for i := 0; i < n; i++ {
		players = append(players, &domain.Player{
			TelegramID: int64(100 + i),
			Username:   "player" + string(rune('a'+i)),
			Coins:      int64((n - i) * 100),
		})
	}
	return players
}

func TestRebuildAndPage(t *testing.T) {
	board := newTestBoard(t, &stubPlayers{})
	ctx := context.Background()

	require.NoError(t, board.Rebuild(ctx, somePlayers(25)))

	first, totalPages, err := board.Page(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, totalPages)
	require.Len(t, first, 10)
	assert.Equal(t, 1, first[0].Rank)
	assert.Equal(t, "playera", first[0].Username)
	assert.Equal(t, int64(2500), first[0].Coins)

	last, totalPages, err := board.Page(ctx, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, totalPages)
	require.Len(t, last, 5)
	assert.Equal(t, 21, last[0].Rank)

	clamped, _, err := board.Page(ctx, 99, 10)
	require.NoError(t, err)
	assert.Equal(t, last, clamped)
}

func TestRebuildDropsStaleMembers(t *testing.T) {
	board := newTestBoard(t, &stubPlayers{})
	ctx := context.Background()

	require.NoError(t, board.Rebuild(ctx, somePlayers(5)))
	require.NoError(t, board.Rebuild(ctx, somePlayers(2)))

	entries, totalPages, err := board.Page(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, totalPages)
	assert.Len(t, entries, 2)
}

func TestPageFallsBackToDirectoryWhenEmpty(t *testing.T) {
	board := newTestBoard(t, &stubPlayers{top: somePlayers(3)})

	entries, totalPages, err := board.Page(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, totalPages)
	require.Len(t, entries, 3)
	assert.Equal(t, "playera", entries[0].Username)
}

func TestTopUsesFirstPage(t *testing.T) {
	board := newTestBoard(t, &stubPlayers{})
	ctx := context.Background()

	require.NoError(t, board.Rebuild(ctx, somePlayers(4)))

	entries, err := board.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(400), entries[0].Coins)
}

func TestAnonymousPlayersGetPlaceholderName(t *testing.T) {
	board := newTestBoard(t, &stubPlayers{})
	ctx := context.Background()

	require.NoError(t, board.Rebuild(ctx, []*domain.Player{{TelegramID: 42, Coins: 10}}))

	entries, _, err := board.Page(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Игрок 42", entries[0].Username)
}
