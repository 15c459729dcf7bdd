// Package repository provides SQL-backed persistence for the player
// directory.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/megaclicker/clicker-bot/internal/domain"
	apperrors "github.com/megaclicker/clicker-bot/internal/errors"
)

// ErrPlayerNotFound indicates the directory has no row for the identifier.
var ErrPlayerNotFound = errors.New("player not found")

// PlayerRepository defines persistence operations for the player directory.
type PlayerRepository interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*domain.Player, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Player, error)
	Upsert(ctx context.Context, player *domain.Player) error
	IncrementReferrals(ctx context.Context, userID string) error
	TopByCoins(ctx context.Context, limit int) ([]*domain.Player, error)
}

type playerRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPlayerRepository creates a new SQL-backed player repository.
func NewPlayerRepository(db *sql.DB, log *slog.Logger) PlayerRepository {
	return &playerRepository{
		db:  db,
		log: log,
	}
}

const playerColumns = "id, telegram_id, user_id, username, coins, level, referrals, created_at, updated_at"

// FindByTelegramID retrieves a player by their Telegram identifier.
func (r *playerRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.Player, error) {
	query := fmt.Sprintf("SELECT %s FROM players WHERE telegram_id = $1", playerColumns)
	return r.scanOne(ctx, query, telegramID)
}

// FindByUserID retrieves a player by the opaque game identifier embedded in
// referral links.
func (r *playerRepository) FindByUserID(ctx context.Context, userID string) (*domain.Player, error) {
	query := fmt.Sprintf("SELECT %s FROM players WHERE user_id = $1", playerColumns)
	return r.scanOne(ctx, query, userID)
}

// Upsert inserts the player or refreshes the mutable columns of an existing
// row. The referral counter keeps the larger of the two values: offline
// increments race with syncs from sessions that have not observed them yet,
// and the counter never goes down.
func (r *playerRepository) Upsert(ctx context.Context, player *domain.Player) error {
	const query = `
		INSERT INTO players (telegram_id, user_id, username, coins, level, referrals, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			coins = EXCLUDED.coins,
			level = EXCLUDED.level,
			referrals = GREATEST(players.referrals, EXCLUDED.referrals),
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(
		ctx,
		query,
		player.TelegramID,
		player.UserID,
		player.Username,
		player.Coins,
		player.Level,
		player.Referrals,
	); err != nil {
		if r.log != nil {
			r.log.Error("failed to upsert player", slog.Int64("telegram_id", player.TelegramID), slog.Any("error", err))
		}
		return apperrors.NewDatabaseError(fmt.Errorf("upsert player: %w", err))
	}

	return nil
}

// IncrementReferrals bumps the referral counter for the referring player.
func (r *playerRepository) IncrementReferrals(ctx context.Context, userID string) error {
	const query = `UPDATE players SET referrals = referrals + 1, updated_at = NOW() WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to increment referrals", slog.String("user_id", userID), slog.Any("error", err))
		}
		return apperrors.NewDatabaseError(fmt.Errorf("increment referrals: %w", err))
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrPlayerNotFound
	}

	return nil
}

// TopByCoins returns the richest players for the leaderboard refresh job.
func (r *playerRepository) TopByCoins(ctx context.Context, limit int) ([]*domain.Player, error) {
	query := fmt.Sprintf("SELECT %s FROM players ORDER BY coins DESC, updated_at ASC LIMIT $1", playerColumns)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError(fmt.Errorf("select top players: %w", err))
	}
	defer rows.Close()

	var players []*domain.Player
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(
			&p.ID,
			&p.TelegramID,
			&p.UserID,
			&p.Username,
			&p.Coins,
			&p.Level,
			&p.Referrals,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, apperrors.NewDatabaseError(fmt.Errorf("scan player row: %w", err))
		}
		players = append(players, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	return players, nil
}

func (r *playerRepository) scanOne(ctx context.Context, query string, arg any) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	var p domain.Player
	if err := row.Scan(
		&p.ID,
		&p.TelegramID,
		&p.UserID,
		&p.Username,
		&p.Coins,
		&p.Level,
		&p.Referrals,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}

		if r.log != nil {
			r.log.Error("failed to fetch player", slog.Any("error", err))
		}
		return nil, apperrors.NewDatabaseError(fmt.Errorf("select player: %w", err))
	}

	return &p, nil
}
