// Package storage persists game snapshots. Every committed mutation is
// written back, so a crash loses at most the latest single mutation.
package storage

import (
	"context"
	"errors"

	"github.com/megaclicker/clicker-bot/internal/game"
)

// ErrSnapshotNotFound indicates that a player has no saved game yet.
var ErrSnapshotNotFound = errors.New("game snapshot not found")

// Storage defines the persistence contract for game snapshots.
type Storage interface {
	// Load returns the saved state for the player merged over the given
	// defaults: fields absent from the snapshot keep their default value,
	// which is how older saves survive schema growth.
	Load(ctx context.Context, playerID int64, defaults game.State) (game.State, error)
	// Save overwrites the player's snapshot.
	Save(ctx context.Context, playerID int64, state game.State) error
	// Delete removes the player's snapshot.
	Delete(ctx context.Context, playerID int64) error
}
