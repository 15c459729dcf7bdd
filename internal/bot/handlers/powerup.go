package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"
)

// NewCatchHandler tries to catch the flying power-up. Catching after it
// expired, or when none is in flight, is a quiet miss.
func NewCatchHandler(deps Deps) CallbackHandler {
	return func(c telebot.Context) error {
		tr := deps.Translator(c)

		s, err := deps.Session(c)
		if err != nil {
			return err
		}

		if !s.PowerUp().Catch(context.Background()) {
			return c.Respond(&telebot.CallbackResponse{Text: tr.T("powerup.missed")})
		}

		return c.Respond(&telebot.CallbackResponse{
			Text: tr.T("powerup.activated", deps.Balance.Game().BoostMultiplier, s.PowerUp().Remaining()),
		})
	}
}
