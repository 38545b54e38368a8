package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Proton-105/dataeng-assistant/internal/api"
	"github.com/Proton-105/dataeng-assistant/internal/bot"
	"github.com/Proton-105/dataeng-assistant/internal/chat"
	"github.com/Proton-105/dataeng-assistant/internal/conversation"
	"github.com/Proton-105/dataeng-assistant/internal/database"
	apperrors "github.com/Proton-105/dataeng-assistant/internal/errors"
	"github.com/Proton-105/dataeng-assistant/internal/health"
	"github.com/Proton-105/dataeng-assistant/internal/idempotency"
	"github.com/Proton-105/dataeng-assistant/internal/jobs"
	"github.com/Proton-105/dataeng-assistant/internal/leads"
	"github.com/Proton-105/dataeng-assistant/internal/lifecycle"
	"github.com/Proton-105/dataeng-assistant/internal/ratelimit"
	"github.com/Proton-105/dataeng-assistant/internal/repository"
	"github.com/Proton-105/dataeng-assistant/internal/session"
	"github.com/Proton-105/dataeng-assistant/pkg/config"
	"github.com/Proton-105/dataeng-assistant/pkg/metrics"
	"github.com/Proton-105/dataeng-assistant/pkg/redis"
)

func serveCMD() *cobra.Command {
	var skipMigrations bool
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot, HTTP API and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, a, !skipMigrations)
		},
	}
	serve.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on start")

	return serve
}

func serve(ctx context.Context, a *app, migrate bool) error {
	cfg, log := a.cfg, a.log.Logger
	log.Info("starting", slog.String("app", cfg.App.Name), slog.String("env", cfg.AppEnv), slog.String("version", cfg.App.Version))

	flush, err := a.initSentry()
	if err != nil {
		return err
	}
	defer flush()

	base, err := loadKnowledge()
	if err != nil {
		return err
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg.Database)
	if err != nil {
		_ = rc.Close()
		return err
	}

	shutdown := lifecycle.NewShutdown(log, cfg.Server.ShutdownTimeout)
	shutdown.Register("postgres", lifecycle.Closer(db.Close))
	shutdown.Register("redis", lifecycle.Closer(rc.Close))
	defer func() {
		if err := shutdown.Execute(context.Background()); err != nil {
			log.Error("shutdown finished with errors", slog.Any("error", err))
		}
	}()

	if migrate {
		if _, err := database.NewMigrator(db, log).Apply(ctx, database.Migrations()); err != nil {
			return err
		}
	}

	var queue jobs.Manager
	if cfg.Jobs.Enabled {
		queue = jobs.NewManager(asynqOpt(cfg.Redis), log)
		shutdown.Register("jobs", lifecycle.Closer(queue.Close))
	}

	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)
	repo := repository.NewLeadRepository(db, log)
	leadSvc := leads.NewService(repo, queue, log)

	storage := session.NewRedisStorage(rc.Client, log, cfg.Session.TTL)
	sessions := session.NewManager(storage, log, rc.Client)
	pacer := conversation.NewPacer(cfg.Pacing.Scale)
	chatSvc := chat.NewService(conversation.NewEngine(base), sessions, leadSvc, log)

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewRedisLimiter(rc.Client, log)
	}
	idem := idempotency.NewManager(idempotency.NewRedisStore(rc.Client, log), log)

	checker := health.NewChecker(log)
	checker.AddCheck("postgres", health.NewDBChecker(db))
	checker.AddCheck("redis", health.NewRedisChecker(rc))
	checker.AddCheck("knowledge", health.KnowledgeChecker(base))
	probes := lifecycle.NewProbes(checker, log)

	var tg *bot.Bot
	if cfg.Bot.Enabled {
		tg, err = bot.New(cfg.Bot, bot.Deps{
			Chat:        chatSvc,
			Knowledge:   base,
			Pacer:       pacer,
			Limiter:     limiter,
			ChatLimit:   rule(cfg.RateLimit.Chat),
			Idempotency: idem,
			Errors:      errHandler,
		}, log)
		if err != nil {
			return err
		}
		checker.AddCheck("telegram", health.NewTelegramChecker(tg.Telebot()))
	}

	config.Watch(a.viper, log, func(next *config.Config) {
		pacer.SetScale(next.Pacing.Scale)
		a.log.SetLevel(next.Logger.Level)
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		probes.Drain()
		return nil
	})

	if tg != nil {
		g.Go(func() error { return tg.Run(gctx) })
	}

	if cfg.Server.Enabled {
		srv := api.NewServer(cfg.Server, cfg.App, api.Deps{
			Chat:        chatSvc,
			Contacts:    leadSvc,
			Knowledge:   base,
			Pacer:       pacer,
			Health:      checker,
			Probes:      probes,
			Idempotency: idem,
			Limiter:     limiter,
			Limit:       rule(cfg.RateLimit.API),
			Errors:      errHandler,
		}, log)
		g.Go(func() error { return srv.Run(gctx) })
	}

	if queue != nil {
		startJobs(gctx, g, asynqOpt(cfg.Redis), cfg.Jobs, db, queue, true, log)
	}

	cleaner := session.NewCleaner(storage, log, cfg.Session.TTL, cfg.Session.CleanupInterval)
	g.Go(func() error {
		cleaner.Run(gctx)
		return nil
	})

	if cfg.Metrics.Enabled {
		collector := metrics.NewSessionCollector(sessions, cfg.Metrics.Interval)
		g.Go(func() error {
			collector.Run(gctx)
			return nil
		})
	}

	log.Info("assistant started",
		slog.Bool("bot", cfg.Bot.Enabled),
		slog.Bool("api", cfg.Server.Enabled),
		slog.Bool("jobs", cfg.Jobs.Enabled),
		slog.Int("topics", base.Len()),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("assistant stopped")
	return nil
}

func rule(r config.RateLimitRule) ratelimit.Rule {
	return ratelimit.Rule{Limit: r.Limit, Window: r.Window}
}
