package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/megaclicker/clicker-bot/internal/adgate"
	"github.com/megaclicker/clicker-bot/internal/bot"
	"github.com/megaclicker/clicker-bot/internal/bot/handlers"
	"github.com/megaclicker/clicker-bot/internal/clock"
	"github.com/megaclicker/clicker-bot/internal/database"
	"github.com/megaclicker/clicker-bot/internal/health"
	"github.com/megaclicker/clicker-bot/internal/i18n"
	"github.com/megaclicker/clicker-bot/internal/jobs"
	jobhandlers "github.com/megaclicker/clicker-bot/internal/jobs/handlers"
	"github.com/megaclicker/clicker-bot/internal/leaderboard"
	"github.com/megaclicker/clicker-bot/internal/lifecycle"
	"github.com/megaclicker/clicker-bot/internal/ratelimit"
	"github.com/megaclicker/clicker-bot/internal/referral"
	"github.com/megaclicker/clicker-bot/internal/repository"
	"github.com/megaclicker/clicker-bot/internal/session"
	"github.com/megaclicker/clicker-bot/internal/storage"
	"github.com/megaclicker/clicker-bot/pkg/config"
	"github.com/megaclicker/clicker-bot/pkg/graceful"
	"github.com/megaclicker/clicker-bot/pkg/logger"
	redisclient "github.com/megaclicker/clicker-bot/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.InitSentry(*cfg); err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}

	log := logger.New(*cfg)
	log.Info("starting mega clicker bot", slog.String("env", cfg.AppEnv))

	db, err := sql.Open("postgres", cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	migrationsDir := cfg.DB.MigrationsDir
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := database.NewMigrator(db, log).ApplyDir(ctx, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	balance := config.NewBalance(cfg.Game)
	balance.Watch(v, log)

	translations, err := i18n.LoadFromDir("internal/i18n/locales", cfg.Bot.DefaultLang)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	players := repository.NewPlayerRepository(db, log)
	board := leaderboard.NewBoard(rdb.Client, players, log)
	ledger := referral.NewLedger(rdb.Client, log)
	store := storage.NewRedisStorage(rdb.Client, log)
	limiter := ratelimit.NewRedisLimiter(rdb.Client, log)
	gate := adgate.Select(cfg.Ads, log)

	shutdown := lifecycle.NewShutdown(log)

	tgBot, err := bot.New(*cfg, translations, log)
	if err != nil {
		return err
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	var (
		queue    jobs.Manager
		stopJobs func(context.Context) error
	)
	if cfg.Jobs.Enabled {
		queue = jobs.NewManager(redisOpt, log)

		worker := jobs.NewWorker(redisOpt, map[string]int{
			jobs.QueueCritical: 6,
			jobs.QueueDefault:  3,
			jobs.QueueLow:      1,
		}, cfg.Jobs.Concurrency, log)
		worker.RegisterHandler(jobs.TaskTypePlayerSync, jobhandlers.NewPlayerSyncHandler(players, log))
		worker.RegisterHandler(jobs.TaskTypeLeaderboardRefresh, jobhandlers.NewLeaderboardRefreshHandler(players, board, log))

		go func() {
			if err := worker.Run(); err != nil {
				log.Error("jobs worker stopped", slog.Any("error", err))
			}
		}()

		scheduler := jobs.NewScheduler(redisOpt, log)
		if err := scheduler.RegisterTasks(cfg.Jobs.LeaderboardRefresh, cfg.Jobs.LeaderboardSize); err != nil {
			return fmt.Errorf("register scheduled tasks: %w", err)
		}
		scheduler.Run()

		stopJobs = func(context.Context) error {
			scheduler.Shutdown()
			worker.Shutdown()
			return queue.Close()
		}
	}

	sessions := session.NewManager(session.Deps{
		Balance:  balance,
		Store:    store,
		Clock:    clock.RealClock{},
		Gate:     gate,
		Queue:    queue,
		Notifier: tgBot.Notifier(),
		Log:      log,
	}, ledger, players, log)

	go sessions.RunEviction(ctx)

	tgBot.SetupRoutes(handlers.Deps{
		Sessions:    sessions,
		I18n:        translations,
		Limiter:     limiter,
		Balance:     balance,
		Board:       board,
		BotUsername: cfg.Bot.Username,
		Log:         log,
	})

	checker := health.NewChecker(log)
	checker.AddCheck("db", health.NewDBChecker(db))
	checker.AddCheck("redis", health.NewRedisChecker(rdb.Client))
	checker.AddCheck("telegram", health.NewTelegramChecker(tgBot.Telebot()))

	go func() {
		if err := serveHTTP(ctx, *cfg, checker, log); err != nil {
			log.Error("http server failed", slog.Any("error", err))
		}
	}()

	go tgBot.Start()
	log.Info("bot is running")

	// Hooks run in order: stop taking updates, flush sessions, then drain
	// the queue they flushed into.
	shutdown.Register("bot", func(context.Context) error {
		tgBot.Stop()
		return nil
	})
	shutdown.Register("sessions", func(sctx context.Context) error {
		sessions.CloseAll(sctx)
		return nil
	})
	if stopJobs != nil {
		shutdown.Register("jobs", stopJobs)
	}

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return shutdown.Execute(shutdownCtx)
}

func serveHTTP(ctx context.Context, cfg config.Config, checker *health.Checker, log *slog.Logger) error {
	if cfg.Server.Port == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		status := http.StatusOK
		for _, result := range results {
			if result != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		for name, result := range results {
			fmt.Fprintf(w, "%s: %s\n", name, result)
		}
	})

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           logger.Middleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return graceful.NewServer(log, srv, timeout).ListenAndServe(ctx)
}
