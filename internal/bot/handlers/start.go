package handlers

import (
	"context"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"
)

// NewStartHandler greets the player, redeems a referral deep link payload
// when one is present, and offers the daily reward if it is pending.
func NewStartHandler(deps Deps) Handler {
	return func(c telebot.Context) error {
		tr := deps.Translator(c)

		s, err := deps.Session(c)
		if err != nil {
			return err
		}

		ctx := context.Background()

		if payload := startPayload(c); payload != "" {
			credited, err := deps.Sessions.RedeemReferral(ctx, s, payload)
			switch {
			case err != nil:
				deps.Log.Warn("referral redemption failed",
					slog.Int64("telegram_id", s.TelegramID()),
					slog.Any("error", err),
				)
			case credited:
				_ = c.Send(tr.T("start.referral_credited", deps.Balance.Game().ReferralBonus))
			}
		}

		name := ""
		if sender := c.Sender(); sender != nil {
			name = sender.FirstName
		}
		if name == "" {
			name = s.Username()
		}

		if err := c.Send(tr.T("start.welcome", name), deps.Keyboard.MainMenu(tr)); err != nil {
			return err
		}

		if status := s.DailyStatus(); status.Owed {
			return c.Send(tr.T("daily.offer", status.Amount, status.NewStreak), deps.Keyboard.DailyClaim(tr))
		}

		return nil
	}
}

// NewMenuHandler shows the main menu. The router falls back to it for text
// that matches no command.
func NewMenuHandler(deps Deps) Handler {
	return func(c telebot.Context) error {
		tr := deps.Translator(c)
		return c.Send(tr.T("menu.hint"), deps.Keyboard.MainMenu(tr))
	}
}

// startPayload extracts the deep link token from "/start <token>". The
// router dispatches raw text updates, so the payload is parsed off the
// message itself.
func startPayload(c telebot.Context) string {
	msg := c.Message()
	if msg == nil {
		return ""
	}

	if payload := strings.TrimSpace(msg.Payload); payload != "" {
		return payload
	}

	_, rest, found := strings.Cut(msg.Text, " ")
	if !found {
		return ""
	}

	return strings.TrimSpace(rest)
}
