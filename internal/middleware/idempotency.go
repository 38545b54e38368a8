package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/dataeng-assistant/internal/bot/handlers"
	"github.com/Proton-105/dataeng-assistant/internal/idempotency"
)

// UpdateTTL is how long a processed Telegram update is remembered.
const UpdateTTL = 24 * time.Hour

// Idempotency ensures handlers execute at most once per Telegram update key, so webhook
// redeliveries do not advance a conversation twice.
func Idempotency(manager idempotency.Manager, log *slog.Logger) handlers.Middleware {
	if manager == nil {
		return func(next handlers.Handler) handlers.Handler {
			return next
		}
	}
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			key := UpdateKey(c)
			if key == "" {
				return next(c)
			}

			ctx := handlers.Context(c)

			var handlerErr error
			result, err := manager.Execute(ctx, key, UpdateTTL, func(context.Context) (any, error) {
				handlerErr = next(c)
				return nil, handlerErr
			})
			switch {
			case errors.Is(err, idempotency.ErrRequestInProgress):
				log.DebugContext(ctx, "update already in progress", slog.String("key", key))
				return nil
			case err != nil && handlerErr == nil:
				log.WarnContext(ctx, "idempotency check failed", slog.String("key", key), slog.Any("error", err))
				return next(c)
			case err != nil:
				return err
			}

			if result.FromCache {
				log.DebugContext(ctx, "duplicate update skipped", slog.String("key", key))
			}
			return nil
		}
	}
}

// UpdateKey identifies a Telegram update by callback id or chat and message id.
func UpdateKey(c telebot.Context) string {
	if c == nil {
		return ""
	}

	if cb := c.Callback(); cb != nil && cb.ID != "" {
		return fmt.Sprintf("tg:cb:%s", cb.ID)
	}

	if msg := c.Message(); msg != nil && msg.ID != 0 {
		chatID := int64(0)
		if msg.Chat != nil {
			chatID = msg.Chat.ID
		}
		return fmt.Sprintf("tg:msg:%d:%d", chatID, msg.ID)
	}

	return ""
}
