// Package handlers contains the Telegram-facing game handlers.
package handlers

import (
	"context"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/megaclicker/clicker-bot/internal/bot/keyboard"
	"github.com/megaclicker/clicker-bot/internal/i18n"
	"github.com/megaclicker/clicker-bot/internal/leaderboard"
	"github.com/megaclicker/clicker-bot/internal/ratelimit"
	"github.com/megaclicker/clicker-bot/internal/session"
	"github.com/megaclicker/clicker-bot/pkg/config"
)

// Handler processes bot commands.
type Handler func(c telebot.Context) error

// CallbackHandler processes inline callback events.
type CallbackHandler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// Deps bundles everything the game handlers share.
type Deps struct {
	Sessions    *session.Manager
	Keyboard    *keyboard.Builder
	I18n        *i18n.Manager
	Limiter     ratelimit.Limiter
	Balance     *config.Balance
	Board       *leaderboard.Board
	BotUsername string
	Log         *slog.Logger
}

// Translator picks the catalog matching the sender's Telegram language.
func (d Deps) Translator(c telebot.Context) i18n.Translator {
	lang := ""
	if sender := c.Sender(); sender != nil {
		lang = sender.LanguageCode
	}

	return d.I18n.Translator(lang)
}

// Session resolves the live session for the update's sender.
func (d Deps) Session(c telebot.Context) (*session.Session, error) {
	sender := c.Sender()
	if sender == nil {
		return nil, session.ErrClosed
	}

	username := sender.Username
	if username == "" {
		username = sender.FirstName
	}

	return d.Sessions.Get(context.Background(), sender.ID, username)
}

// callbackData returns the update's callback payload without the telebot
// unique marker.
func callbackData(c telebot.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}

	return strings.TrimPrefix(cb.Data, "\f")
}
