package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"

	"github.com/megaclicker/clicker-bot/internal/game"
)

// NewDailyHandler shows the pending daily reward, or tells the player to
// come back tomorrow.
func NewDailyHandler(deps Deps) CallbackHandler {
	return func(c telebot.Context) error {
		tr := deps.Translator(c)

		s, err := deps.Session(c)
		if err != nil {
			return err
		}

		status := s.DailyStatus()
		if !status.Owed {
			return c.Respond(&telebot.CallbackResponse{Text: tr.T("daily.already")})
		}

		return c.Send(tr.T("daily.offer", status.Amount, status.NewStreak), deps.Keyboard.DailyClaim(tr))
	}
}

// NewDailyClaimHandler claims the reward. A duplicate claim surfaces as an
// AppError that the error middleware converts into a quiet message.
func NewDailyClaimHandler(deps Deps) CallbackHandler {
	return func(c telebot.Context) error {
		tr := deps.Translator(c)

		s, err := deps.Session(c)
		if err != nil {
			return err
		}

		events, err := s.ClaimDaily(context.Background())
		if err != nil {
			return err
		}

		for _, ev := range events {
			if claimed, ok := ev.(game.DailyClaimed); ok {
				return c.Send(tr.T("daily.claimed", claimed.Amount, claimed.Streak))
			}
		}

		return nil
	}
}
