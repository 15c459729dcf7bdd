package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/megaclicker/clicker-bot/internal/jobs"
	"github.com/megaclicker/clicker-bot/internal/leaderboard"
	"github.com/megaclicker/clicker-bot/internal/repository"
)

const defaultLeaderboardLimit = 100

// LeaderboardRefreshHandler materializes the directory's top players into
// the Redis leaderboard.
type LeaderboardRefreshHandler struct {
	players repository.PlayerRepository
	board   *leaderboard.Board
	log     *slog.Logger
}

func NewLeaderboardRefreshHandler(players repository.PlayerRepository, board *leaderboard.Board, log *slog.Logger) *LeaderboardRefreshHandler {
	return &LeaderboardRefreshHandler{
		players: players,
		board:   board,
		log:     log,
	}
}

func (h *LeaderboardRefreshHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.LeaderboardRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx, "leaderboard refresh: failed to decode payload", slog.String("error", err.Error()))
		}
		return err
	}

	limit := payload.Limit
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	players, err := h.players.TopByCoins(ctx, limit)
	if err != nil {
		return err
	}

	if err := h.board.Rebuild(ctx, players); err != nil {
		return err
	}

	if h.log != nil {
		h.log.InfoContext(ctx, "leaderboard refreshed", slog.Int("players", len(players)))
	}

	return nil
}
