// Package referral tracks one-time referral-bonus redemptions. Idempotence
// is scoped to (player, token): revisiting the same link never re-credits,
// while the same token redeemed by a different player is a fresh grant.
package referral

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Ledger owns the set of redeemed referral tokens for every player.
type Ledger struct {
	client *redis.Client
	log    *slog.Logger
}

// NewLedger builds a Redis-backed referral ledger.
func NewLedger(client *redis.Client, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}

	return &Ledger{
		client: client,
		log:    log,
	}
}

// Redeem attempts to mark token as redeemed for the player. It returns true
// exactly once per (player, token) pair. An empty token or the player's own
// identifier never redeems.
func (l *Ledger) Redeem(ctx context.Context, playerID int64, token, ownUserID string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" || token == ownUserID {
		return false, nil
	}

	granted, err := l.client.SetNX(ctx, redeemKey(playerID, token), 1, 0).Result()
	if err != nil {
		l.log.Error("failed to mark referral token redeemed",
			slog.Int64("player_id", playerID), slog.Any("error", err))
		return false, err
	}

	return granted, nil
}

// Release drops the redemption marker so a redemption that failed after
// marking can be retried.
func (l *Ledger) Release(ctx context.Context, playerID int64, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	return l.client.Del(ctx, redeemKey(playerID, token)).Err()
}

// Redeemed reports whether the player has already used the token.
func (l *Ledger) Redeemed(ctx context.Context, playerID int64, token string) (bool, error) {
	n, err := l.client.Exists(ctx, redeemKey(playerID, token)).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// ShareLink builds the player's outbound referral deep link.
func ShareLink(botUsername, userID string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, userID)
}

// redeemKey derives a bounded per-token marker key. Tokens arrive from the
// deep link payload, so they are hashed rather than embedded raw.
func redeemKey(playerID int64, token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("referral:redeemed:%d:%s", playerID, hex.EncodeToString(sum[:16]))
}
