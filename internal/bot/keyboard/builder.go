// Package keyboard renders the inline keyboards of the game UI.
package keyboard

import (
	"fmt"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/megaclicker/clicker-bot/internal/game"
	"github.com/megaclicker/clicker-bot/internal/i18n"
)

// Callback prefixes shared between the builder and the router.
const (
	CallbackTap        = "tap"
	CallbackShop       = "shop"
	CallbackBuy        = "buy"
	CallbackDaily      = "daily"
	CallbackDailyClaim = "daily_claim"
	CallbackProfile    = "profile"
	CallbackTop        = "top"
	CallbackShare      = "share"
	CallbackCatch      = "catch"
)

// Builder creates the inline keyboards of the game screens.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log}
}

// MainMenu builds the home screen keyboard.
func (b *Builder) MainMenu(tr i18n.Translator) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{
			{Text: tr.T("buttons.tap"), Data: CallbackTap},
		},
		{
			{Text: tr.T("buttons.shop"), Data: CallbackShop},
			{Text: tr.T("buttons.daily"), Data: CallbackDaily},
		},
		{
			{Text: tr.T("buttons.profile"), Data: CallbackProfile},
			{Text: tr.T("buttons.top"), Data: CallbackTop},
		},
		{
			{Text: tr.T("buttons.share"), Data: CallbackShare},
		},
	}

	return markup
}

// ShopMenu builds one buy button per upgrade, labeled with its next cost.
func (b *Builder) ShopMenu(tr i18n.Translator, state game.State) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}

	for _, kind := range game.BoostKinds {
		boost := state.Boosts[kind]

		data, err := EncodeCallback(CallbackBuy, string(kind))
		if err != nil {
			if b.log != nil {
				b.log.Warn("failed to encode shop callback", slog.String("kind", string(kind)), slog.Any("error", err))
			}
			continue
		}

		label := fmt.Sprintf("%s · %d 🪙", tr.T("shop."+string(kind)), boost.Cost)
		markup.InlineKeyboard = append(markup.InlineKeyboard, []telebot.InlineButton{
			{Text: label, Data: data},
		})
	}

	return markup
}

// DailyClaim builds the claim confirmation button.
func (b *Builder) DailyClaim(tr i18n.Translator) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{
			{Text: tr.T("buttons.claim"), Data: CallbackDailyClaim},
		},
	}

	return markup
}

// Pagination returns up to three inline buttons (prev, current page, next)
// sharing a callback action whose payload is the target page number.
func (b *Builder) Pagination(tr i18n.Translator, action string, page, totalPages int) []telebot.InlineButton {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	buttons := make([]telebot.InlineButton, 0, 3)

	if page > 1 {
		if data, err := EncodeCallback(action, strconv.Itoa(page-1)); err == nil {
			buttons = append(buttons, telebot.InlineButton{Text: tr.T("buttons.prev"), Data: data})
		}
	}

	if data, err := EncodeCallback(action, strconv.Itoa(page)); err == nil {
		buttons = append(buttons, telebot.InlineButton{
			Text: fmt.Sprintf("%d/%d", page, totalPages),
			Data: data,
		})
	}

	if page < totalPages {
		if data, err := EncodeCallback(action, strconv.Itoa(page+1)); err == nil {
			buttons = append(buttons, telebot.InlineButton{Text: tr.T("buttons.next"), Data: data})
		}
	}

	return buttons
}

// Catch builds the power-up catch button.
func (b *Builder) Catch(tr i18n.Translator) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{
			{Text: tr.T("buttons.catch"), Data: CallbackCatch},
		},
	}

	return markup
}
