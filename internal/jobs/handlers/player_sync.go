// Package handlers implements asynq task handlers for background jobs.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/megaclicker/clicker-bot/internal/domain"
	"github.com/megaclicker/clicker-bot/internal/jobs"
	"github.com/megaclicker/clicker-bot/internal/repository"
)

// PlayerSyncHandler upserts a player snapshot into the directory. Sessions
// enqueue these after commits that touch coins, level or referrals so the
// hot path never blocks on Postgres.
type PlayerSyncHandler struct {
	players repository.PlayerRepository
	log     *slog.Logger
}

func NewPlayerSyncHandler(players repository.PlayerRepository, log *slog.Logger) *PlayerSyncHandler {
	return &PlayerSyncHandler{
		players: players,
		log:     log,
	}
}

func (h *PlayerSyncHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.PlayerSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx, "player sync: failed to decode payload", slog.String("error", err.Error()))
		}
		return err
	}

	player := &domain.Player{
		TelegramID: payload.TelegramID,
		UserID:     payload.UserID,
		Username:   payload.Username,
		Coins:      payload.Coins,
		Level:      payload.Level,
		Referrals:  payload.Referrals,
	}

	if err := h.players.Upsert(ctx, player); err != nil {
		return err
	}

	if h.log != nil {
		h.log.DebugContext(ctx, "player sync: directory updated",
			slog.Int64("telegram_id", payload.TelegramID),
			slog.Int64("coins", payload.Coins),
		)
	}

	return nil
}
