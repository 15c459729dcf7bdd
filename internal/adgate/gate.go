// Package adgate models the optional rewarded-advertisement capability.
// Core logic never branches on presence of the ad SDK: it calls a Gate and
// the selected implementation decides what that means.
package adgate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/megaclicker/clicker-bot/internal/errors"
	"github.com/megaclicker/clicker-bot/pkg/config"
)

// Gate shows a rewarded advertisement and reports whether it completed.
// A nil error means the reward may be granted. Callers own the fallback
// policy; every engine call site falls open on error.
type Gate interface {
	Show(ctx context.Context, playerID int64, placement string) error
}

// Noop is the pass-through used when no ad provider is configured. It always
// succeeds, which makes gated purchases and catches unconditional.
type Noop struct{}

func (Noop) Show(ctx context.Context, playerID int64, placement string) error { return nil }

// HTTPGate talks to an external rewarded-ad provider over HTTP. A circuit
// breaker keeps a dead provider from adding a timeout to every call.
type HTTPGate struct {
	url     string
	client  *http.Client
	breaker *apperrors.CircuitBreaker
	log     *slog.Logger
}

// NewHTTPGate builds a provider-backed gate from the ads configuration.
func NewHTTPGate(cfg config.AdsConfig, log *slog.Logger) *HTTPGate {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if log == nil {
		log = slog.Default()
	}

	return &HTTPGate{
		url:     cfg.ProviderURL,
		client:  &http.Client{Timeout: timeout},
		breaker: apperrors.NewCircuitBreaker(),
		log:     log,
	}
}

type showRequest struct {
	PlayerID  int64  `json:"player_id"`
	Placement string `json:"placement"`
}

type showResponse struct {
	Completed bool `json:"completed"`
}

// Show asks the provider to run a rewarded ad for the player and blocks
// until it resolves or times out.
func (g *HTTPGate) Show(ctx context.Context, playerID int64, placement string) error {
	err := g.breaker.Call(func() error {
		return g.show(ctx, playerID, placement)
	})
	if err != nil {
		g.log.Warn("rewarded ad gate failed",
			slog.Int64("player_id", playerID),
			slog.String("placement", placement),
			slog.Any("error", err),
		)
		return apperrors.NewAdGateError(err)
	}

	return nil
}

func (g *HTTPGate) show(ctx context.Context, playerID int64, placement string) error {
	body, err := json.Marshal(showRequest{PlayerID: playerID, Placement: placement})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ad provider returned status %d", resp.StatusCode)
	}

	var result showResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	if !result.Completed {
		return fmt.Errorf("ad was not watched to completion")
	}

	return nil
}

// Select picks the gate implementation at startup so the rest of the engine
// stays ignorant of whether ads are configured.
func Select(cfg config.AdsConfig, log *slog.Logger) Gate {
	if cfg.Enabled && cfg.ProviderURL != "" {
		return NewHTTPGate(cfg, log)
	}

	return Noop{}
}
