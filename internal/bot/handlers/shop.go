package handlers

import (
	"context"
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"github.com/megaclicker/clicker-bot/internal/bot/keyboard"
	"github.com/megaclicker/clicker-bot/internal/game"
)

// NewShopHandler renders the boost shop.
func NewShopHandler(deps Deps) CallbackHandler {
	return func(c telebot.Context) error {
		tr := deps.Translator(c)

		s, err := deps.Session(c)
		if err != nil {
			return err
		}

		snap := s.Snapshot()

		return c.Send(
			shopText(deps, c, snap),
			deps.Keyboard.ShopMenu(tr, snap),
		)
	}
}

// NewBuyHandler executes a purchase picked from the shop keyboard.
func NewBuyHandler(deps Deps) CallbackHandler {
	return func(c telebot.Context) error {
		tr := deps.Translator(c)

		s, err := deps.Session(c)
		if err != nil {
			return err
		}

		_, payload, err := keyboard.DecodeCallback(callbackData(c))
		if err != nil {
			return err
		}

		kind := game.BoostKind(payload)
		if !kind.Valid() {
			return c.Respond(&telebot.CallbackResponse{Text: tr.T("errors.generic")})
		}

		events, err := s.Buy(context.Background(), kind)
		if err != nil {
			// the error middleware turns AppError into a user message
			return err
		}

		for _, ev := range events {
			if bought, ok := ev.(game.BoostPurchased); ok {
				_ = c.Respond(&telebot.CallbackResponse{
					Text: tr.T("shop.bought", tr.T("shop."+string(bought.Kind)), bought.NewLevel, bought.NewCost),
				})
				break
			}
		}

		// refresh prices on the open shop screen
		snap := s.Snapshot()
		return c.Edit(shopText(deps, c, snap), deps.Keyboard.ShopMenu(tr, snap))
	}
}

func shopText(deps Deps, c telebot.Context, snap game.State) string {
	tr := deps.Translator(c)

	text := tr.T("shop.title") + "\n\n"
	for _, kind := range game.BoostKinds {
		boost := snap.Boosts[kind]
		text += tr.T("shop.item", tr.T("shop."+string(kind)), boost.Level, boost.Cost) + "\n"
	}

	return text + "\n" + fmt.Sprintf("🪙 %d", snap.Coins)
}
