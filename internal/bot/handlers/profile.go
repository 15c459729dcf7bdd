package handlers

import (
	"fmt"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/megaclicker/clicker-bot/internal/game"
	"github.com/megaclicker/clicker-bot/internal/referral"
)

// NewProfileHandler renders the player's stats, progress and achievements.
func NewProfileHandler(deps Deps) CallbackHandler {
	return func(c telebot.Context) error {
		tr := deps.Translator(c)

		s, err := deps.Session(c)
		if err != nil {
			return err
		}

		snap := s.Snapshot()
		cfg := deps.Balance.Game()

		var b strings.Builder
		b.WriteString(tr.T("profile.title") + "\n\n")
		b.WriteString(tr.T("profile.coins", snap.Coins) + "\n")
		b.WriteString(tr.T("profile.level", snap.Level) + "\n")

		if _, ok := game.NextThreshold(cfg.LevelThresholds, snap.Level); ok {
			progress := game.ProgressPercent(cfg.LevelThresholds, snap.Level, snap.Coins)
			b.WriteString(tr.T("profile.progress", progress) + "\n")
		} else {
			b.WriteString(tr.T("profile.progress_max") + "\n")
		}

		b.WriteString(tr.T("profile.click_power", s.PowerUp().EffectivePower(snap.ClickPower)) + "\n")
		b.WriteString(tr.T("profile.auto_power", snap.AutoClickPower) + "\n")
		b.WriteString(tr.T("profile.referrals", snap.ReferralsCount) + "\n")

		b.WriteString("\n" + tr.T("profile.achievements") + "\n")
		for _, a := range game.Achievements(snap.Level) {
			if a.Unlocked {
				b.WriteString(fmt.Sprintf("%s %s\n", a.Icon, a.Title))
			} else {
				b.WriteString(fmt.Sprintf("%s %s\n", tr.T("profile.locked"), a.Title))
			}
		}

		return c.Send(b.String())
	}
}

// NewShareHandler sends the player's referral deep link.
func NewShareHandler(deps Deps) CallbackHandler {
	return func(c telebot.Context) error {
		tr := deps.Translator(c)

		s, err := deps.Session(c)
		if err != nil {
			return err
		}

		link := referral.ShareLink(deps.BotUsername, s.Snapshot().UserID)

		return c.Send(tr.T("profile.share", link))
	}
}
