package bot

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/megaclicker/clicker-bot/internal/bot/keyboard"
	"github.com/megaclicker/clicker-bot/internal/i18n"
)

// Notifier pushes session events to the player's chat. It implements
// session.Notifier over the running telebot instance.
type Notifier struct {
	telebot *telebot.Bot
	kb      *keyboard.Builder
	i18n    *i18n.Manager
	log     *slog.Logger
}

func NewNotifier(tb *telebot.Bot, kb *keyboard.Builder, translations *i18n.Manager, log *slog.Logger) *Notifier {
	return &Notifier{
		telebot: tb,
		kb:      kb,
		i18n:    translations,
		log:     log,
	}
}

func (n *Notifier) LevelUp(telegramID int64, level int) {
	tr := n.i18n.Translator("")
	n.send(telegramID, tr.T("level.up", level))
}

func (n *Notifier) PowerUpSpawned(telegramID int64) {
	tr := n.i18n.Translator("")
	n.send(telegramID, tr.T("powerup.spawned"), n.kb.Catch(tr))
}

func (n *Notifier) BoostActivated(telegramID int64, seconds int, multiplier float64) {
	tr := n.i18n.Translator("")
	n.send(telegramID, tr.T("powerup.activated", multiplier, seconds))
}

func (n *Notifier) BoostEnded(telegramID int64) {
	tr := n.i18n.Translator("")
	n.send(telegramID, tr.T("powerup.ended"))
}

func (n *Notifier) send(telegramID int64, what string, opts ...interface{}) {
	if n.telebot == nil {
		return
	}

	recipient := &telebot.User{ID: telegramID}
	if _, err := n.telebot.Send(recipient, what, opts...); err != nil && n.log != nil {
		n.log.Warn("failed to deliver notification",
			slog.Int64("telegram_id", telegramID),
			slog.Any("error", err),
		)
	}
}
