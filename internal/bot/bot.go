package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/megaclicker/clicker-bot/internal/bot/handlers"
	"github.com/megaclicker/clicker-bot/internal/bot/keyboard"
	apperrors "github.com/megaclicker/clicker-bot/internal/errors"
	"github.com/megaclicker/clicker-bot/internal/i18n"
	"github.com/megaclicker/clicker-bot/pkg/config"
)

const (
	CommandStart   = "/start"
	CommandProfile = "/profile"
	CommandTop     = "/top"
)

// Bot wraps telebot.Bot with the game routing.
type Bot struct {
	telebot    *telebot.Bot
	router     *Router
	keyboard   *keyboard.Builder
	notifier   *Notifier
	errHandler *apperrors.Handler
	log        *slog.Logger
	cfg        config.Config
}

// New builds a telegram bot instance configured according to the
// application settings. Routes are wired separately with SetupRoutes once
// the session manager exists.
func New(cfg config.Config, translations *i18n.Manager, log *slog.Logger) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Server.Port,
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	kb := keyboard.NewBuilder(log)

	return &Bot{
		telebot:    tb,
		router:     NewRouter(log),
		keyboard:   kb,
		notifier:   NewNotifier(tb, kb, translations, log),
		errHandler: apperrors.NewHandler(log, cfg.Sentry.Enabled),
		log:        log,
		cfg:        cfg,
	}, nil
}

// Notifier exposes the chat notifier for the session layer.
func (b *Bot) Notifier() *Notifier {
	return b.notifier
}

// Username returns the bot's Telegram username for referral links.
func (b *Bot) Username() string {
	if b.cfg.Bot.Username != "" {
		return b.cfg.Bot.Username
	}
	if b.telebot.Me != nil {
		return b.telebot.Me.Username
	}

	return ""
}

// SetupRoutes registers the middleware chain and every game handler.
func (b *Bot) SetupRoutes(deps handlers.Deps) {
	deps.Keyboard = b.keyboard
	if deps.BotUsername == "" {
		deps.BotUsername = b.Username()
	}

	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(MetricsMiddleware)

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(deps))
	b.router.RegisterCommand(CommandProfile, handlers.Handler(handlers.NewProfileHandler(deps)))
	b.router.RegisterCommand(CommandTop, handlers.Handler(handlers.NewTopHandler(deps)))

	b.router.RegisterCallback(keyboard.CallbackTap, handlers.NewTapHandler(deps))
	b.router.RegisterCallback(keyboard.CallbackShop, handlers.NewShopHandler(deps))
	b.router.RegisterCallback(keyboard.CallbackBuy, handlers.NewBuyHandler(deps))
	b.router.RegisterCallback(keyboard.CallbackDaily, handlers.NewDailyHandler(deps))
	b.router.RegisterCallback(keyboard.CallbackDailyClaim, handlers.NewDailyClaimHandler(deps))
	b.router.RegisterCallback(keyboard.CallbackProfile, handlers.NewProfileHandler(deps))
	b.router.RegisterCallback(keyboard.CallbackTop, handlers.NewTopHandler(deps))
	b.router.RegisterCallback(keyboard.CallbackShare, handlers.NewShareHandler(deps))
	b.router.RegisterCallback(keyboard.CallbackCatch, handlers.NewCatchHandler(deps))

	b.router.SetDefault(handlers.NewMenuHandler(deps))

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations
// such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}
