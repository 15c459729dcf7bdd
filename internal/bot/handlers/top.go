package handlers

import (
	"context"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/megaclicker/clicker-bot/internal/bot/keyboard"
)

const topPageSize = 10

// NewTopHandler renders one page of the coin leaderboard. The callback
// payload carries the requested page number; /top and a bare callback show
// the first page.
func NewTopHandler(deps Deps) CallbackHandler {
	return func(c telebot.Context) error {
		tr := deps.Translator(c)

		page := 1
		if _, payload, err := keyboard.DecodeCallback(callbackData(c)); err == nil {
			if n, err := strconv.Atoi(payload); err == nil && n > 0 {
				page = n
			}
		}

		entries, totalPages, err := deps.Board.Page(context.Background(), page, topPageSize)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			return c.Send(tr.T("top.empty"))
		}

		var b strings.Builder
		b.WriteString(tr.T("top.title") + "\n\n")
		for _, entry := range entries {
			b.WriteString(tr.T("top.row", entry.Rank, entry.Username, entry.Coins) + "\n")
		}

		markup := &telebot.ReplyMarkup{}
		if row := deps.Keyboard.Pagination(tr, keyboard.CallbackTop, page, totalPages); len(row) > 0 {
			markup.InlineKeyboard = [][]telebot.InlineButton{row}
		}

		if c.Callback() != nil {
			return c.Edit(b.String(), markup)
		}

		return c.Send(b.String(), markup)
	}
}
