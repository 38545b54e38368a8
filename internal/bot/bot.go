// Package bot serves the assistant over Telegram.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/dataeng-assistant/internal/bot/handlers"
	"github.com/Proton-105/dataeng-assistant/internal/bot/keyboard"
	"github.com/Proton-105/dataeng-assistant/internal/conversation"
	errors "github.com/Proton-105/dataeng-assistant/internal/errors"
	"github.com/Proton-105/dataeng-assistant/internal/idempotency"
	"github.com/Proton-105/dataeng-assistant/internal/knowledge"
	"github.com/Proton-105/dataeng-assistant/internal/middleware"
	"github.com/Proton-105/dataeng-assistant/internal/ratelimit"
	"github.com/Proton-105/dataeng-assistant/pkg/config"
)

// Deps are the services the bot drives.
type Deps struct {
	Chat        handlers.Chat
	Knowledge   *knowledge.Base
	Pacer       *conversation.Pacer
	Limiter     ratelimit.Limiter
	ChatLimit   ratelimit.Rule
	Idempotency idempotency.Manager
	Errors      *errors.Handler
}

// Bot wraps telebot.Bot with application dependencies required for handling updates.
type Bot struct {
	telebot  *telebot.Bot
	log      *slog.Logger
	router   *Router
	keyboard *keyboard.Builder
	deps     Deps
}

// New builds a telegram bot instance configured according to the application settings.
func New(cfg config.BotConfig, deps Deps, log *slog.Logger) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	settings := telebot.Settings{
		Token: cfg.Token,
		OnError: func(err error, c telebot.Context) {
			log.Error("telegram update failed", slog.String("session_id", handlers.SessionID(c)), slog.Any("error", err))
		},
	}

	if cfg.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen:   cfg.WebhookListen,
			Endpoint: &telebot.WebhookEndpoint{PublicURL: cfg.WebhookURL},
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.PollTimeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	return newBot(tb, deps, log), nil
}

func newBot(tb *telebot.Bot, deps Deps, log *slog.Logger) *Bot {
	if deps.Errors == nil {
		deps.Errors = errors.NewHandler(log, false)
	}

	b := &Bot{
		telebot:  tb,
		log:      log,
		router:   NewRouter(log),
		keyboard: keyboard.NewBuilder(log),
		deps:     deps,
	}

	b.setupRouter()
	b.registerTelebotHandlers()

	return b
}

// Run serves updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if b.telebot == nil {
		return nil
	}

	if err := b.telebot.SetCommands(menuCommands); err != nil {
		b.log.Warn("failed to publish bot commands", slog.Any("error", err))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.log.Info("telegram bot started", slog.String("username", b.username()))
		b.telebot.Start()
	}()

	<-ctx.Done()
	b.Stop()
	<-done
	return nil
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

// Router exposes the update router.
func (b *Bot) Router() *Router {
	return b.router
}

func (b *Bot) setupRouter() {
	d := b.deps

	b.router.Use(RecoveryMiddleware(b.log, d.Errors))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(middleware.Idempotency(d.Idempotency, b.log))
	b.router.Use(middleware.RateLimit(d.Limiter, d.ChatLimit, b.log))
	b.router.Use(ErrorHandlingMiddleware(d.Errors))
	b.router.Use(middleware.Metrics)

	convo := handlers.NewConversation(d.Chat, d.Pacer, b.keyboard, b.log)

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(d.Chat, b.keyboard, b.log))
	b.router.RegisterCommand(CommandCancel, handlers.NewCancelHandler(d.Chat, b.log))
	b.router.RegisterCommand(CommandProfile, handlers.NewProfileHandler(d.Chat, b.log))
	b.router.RegisterCommand(CommandTopics, handlers.NewTopicsHandler(d.Knowledge, b.log))
	b.router.RegisterCommand(CommandHelp, handlers.NewHelpHandler())

	b.router.RegisterCallback(keyboard.CallbackQuickReply, convo.QuickReply)
	b.router.RegisterCallback(keyboard.CallbackTopicsPage, handlers.NewTopicsPageCallback(d.Knowledge, b.log))

	b.router.SetDefault(convo.Text)
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}

func (b *Bot) username() string {
	if b.telebot == nil || b.telebot.Me == nil {
		return ""
	}
	return b.telebot.Me.Username
}
