package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/megaclicker/clicker-bot/internal/game"
)

const snapshotKeyPattern = "player:state:%d"

// RedisStorage persists game snapshots as JSON blobs in Redis, one key per
// player, with no expiry.
type RedisStorage struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisStorage initializes a Redis-backed Storage implementation.
func NewRedisStorage(client *redis.Client, log *slog.Logger) Storage {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStorage{
		client: client,
		log:    log,
	}
}

// Load returns the stored snapshot merged over defaults, or
// ErrSnapshotNotFound when the player has never saved.
func (s *RedisStorage) Load(ctx context.Context, playerID int64, defaults game.State) (game.State, error) {
	data, err := s.client.Get(ctx, snapshotKey(playerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return defaults, ErrSnapshotNotFound
		}

		s.log.Error("failed to load game snapshot", "player_id", playerID, "error", err)
		return defaults, err
	}

	// unmarshalling into the pre-populated defaults keeps every field the
	// snapshot does not mention, including boost entries added since the
	// save was written
	state := defaults.Clone()
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		s.log.Error("failed to decode game snapshot", "player_id", playerID, "error", err)
		return defaults, err
	}

	return state, nil
}

// Save overwrites the player's snapshot.
func (s *RedisStorage) Save(ctx context.Context, playerID int64, state game.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		s.log.Error("failed to encode game snapshot", "player_id", playerID, "error", err)
		return err
	}

	if err := s.client.Set(ctx, snapshotKey(playerID), data, 0).Err(); err != nil {
		s.log.Error("failed to save game snapshot", "player_id", playerID, "error", err)
		return err
	}

	return nil
}

// Delete removes the player's snapshot.
func (s *RedisStorage) Delete(ctx context.Context, playerID int64) error {
	if err := s.client.Del(ctx, snapshotKey(playerID)).Err(); err != nil {
		s.log.Error("failed to delete game snapshot", "player_id", playerID, "error", err)
		return err
	}

	return nil
}

func snapshotKey(playerID int64) string {
	return fmt.Sprintf(snapshotKeyPattern, playerID)
}
