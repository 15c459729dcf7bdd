// Package leaderboard maintains the coin leaderboard as a Redis sorted set,
// materialized from the player directory by a background job.
package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/megaclicker/clicker-bot/internal/domain"
	"github.com/megaclicker/clicker-bot/internal/repository"
)

const (
	boardKey = "leaderboard:coins"
	namesKey = "leaderboard:names"
)

// Entry is a single leaderboard row.
type Entry struct {
	Rank     int
	Username string
	Coins    int64
}

// Board reads the materialized leaderboard and rebuilds it from directory
// rows.
type Board struct {
	client  *redis.Client
	players repository.PlayerRepository
	log     *slog.Logger
}

func NewBoard(client *redis.Client, players repository.PlayerRepository, log *slog.Logger) *Board {
	return &Board{
		client:  client,
		players: players,
		log:     log,
	}
}

// Rebuild replaces the sorted set with the given directory rows. The old set
// is deleted first so players who fell out of the top do not linger.
func (b *Board) Rebuild(ctx context.Context, players []*domain.Player) error {
	pipe := b.client.TxPipeline()
	pipe.Del(ctx, boardKey, namesKey)

	for _, p := range players {
		member := strconv.FormatInt(p.TelegramID, 10)
		pipe.ZAdd(ctx, boardKey, redis.Z{Score: float64(p.Coins), Member: member})

		name := p.Username
		if name == "" {
			name = "Игрок " + member
		}
		pipe.HSet(ctx, namesKey, member, name)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuild leaderboard: %w", err)
	}

	return nil
}

// Top returns the best n players. When the materialized set is empty (cold
// start, Redis flush) it falls back to a direct directory query.
func (b *Board) Top(ctx context.Context, n int) ([]Entry, error) {
	entries, _, err := b.Page(ctx, 1, n)
	return entries, err
}

// Page returns one page of the leaderboard plus the total page count. Pages
// are 1-based; out-of-range pages are clamped.
func (b *Board) Page(ctx context.Context, page, perPage int) ([]Entry, int, error) {
	if perPage <= 0 {
		perPage = 10
	}
	if page < 1 {
		page = 1
	}

	total, err := b.client.ZCard(ctx, boardKey).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("read leaderboard size: %w", err)
	}

	if total == 0 {
		entries, err := b.topFromDirectory(ctx, perPage)
		return entries, 1, err
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if page > totalPages {
		page = totalPages
	}

	start := int64(page-1) * int64(perPage)
	rows, err := b.client.ZRevRangeWithScores(ctx, boardKey, start, start+int64(perPage)-1).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("read leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		member, _ := row.Member.(string)
		name, err := b.client.HGet(ctx, namesKey, member).Result()
		if err != nil {
			name = "Игрок " + member
		}

		entries = append(entries, Entry{
			Rank:     int(start) + i + 1,
			Username: name,
			Coins:    int64(row.Score),
		})
	}

	return entries, totalPages, nil
}

func (b *Board) topFromDirectory(ctx context.Context, n int) ([]Entry, error) {
	if b.log != nil {
		b.log.DebugContext(ctx, "leaderboard not materialized, querying directory")
	}

	players, err := b.players.TopByCoins(ctx, n)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(players))
	for i, p := range players {
		name := p.Username
		if name == "" {
			name = "Игрок " + strconv.FormatInt(p.TelegramID, 10)
		}

		entries = append(entries, Entry{
			Rank:     i + 1,
			Username: name,
			Coins:    p.Coins,
		})
	}

	return entries, nil
}
