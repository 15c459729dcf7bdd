package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/megaclicker/clicker-bot/internal/game"
	"github.com/megaclicker/clicker-bot/internal/ratelimit"
)

// NewTapHandler processes one tap. The answer goes out as a callback toast
// so the chat is not flooded with per-tap messages.
func NewTapHandler(deps Deps) CallbackHandler {
	return func(c telebot.Context) error {
		tr := deps.Translator(c)

		s, err := deps.Session(c)
		if err != nil {
			return err
		}

		ctx := context.Background()

		if deps.Limiter != nil {
			limit, window := ratelimit.TapRule(deps.Balance.Game())
			key := fmt.Sprintf("taps:%d", s.TelegramID())

			result, err := deps.Limiter.Check(ctx, key, limit, window)
			switch {
			case err != nil && !errors.Is(err, ratelimit.ErrLimitExceeded):
				// a broken limiter must not stop the game
				deps.Log.Warn("tap limiter unavailable", slog.Any("error", err))
			case result != nil && !result.Allowed:
				return c.Respond(&telebot.CallbackResponse{Text: tr.T("tap.rate_limited")})
			}
		}

		events, err := s.Tap(ctx)
		if err != nil {
			return err
		}

		var earned int64
		for _, ev := range events {
			if coins, ok := ev.(game.CoinsEarned); ok {
				earned += coins.Amount
			}
		}

		return c.Respond(&telebot.CallbackResponse{
			Text: tr.T("tap.result", earned, s.Snapshot().Coins),
		})
	}
}
