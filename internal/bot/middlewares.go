package bot

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/dataeng-assistant/internal/bot/handlers"
	errors "github.com/Proton-105/dataeng-assistant/internal/errors"
	"github.com/Proton-105/dataeng-assistant/internal/middleware"
	"github.com/Proton-105/dataeng-assistant/pkg/logger"
)

const fallbackErrorText = "⚠️ Something went wrong. Please try again later."

// RecoveryMiddleware catches panics, reports them via the centralized handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *errors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					ctx := handlers.Context(c)
					log.ErrorContext(ctx, "panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					userMsg := fallbackErrorText
					if errHandler != nil {
						appErr := errors.NewStateError("panic recovered", fmt.Errorf("%v", r))
						if msg, _ := errHandler.Handle(ctx, appErr); msg != "" {
							userMsg = msg
						}
					}

					if c != nil {
						if sendErr := c.Send(userMsg); sendErr != nil {
							log.ErrorContext(ctx, "failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging for handler failures.
func ErrorHandlingMiddleware(errHandler *errors.Handler) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			userMsg := fallbackErrorText
			if errHandler != nil {
				if msg, _ := errHandler.Handle(handlers.Context(c), err); msg != "" {
					userMsg = msg
				}
			}

			if c.Callback() != nil {
				_ = c.Respond(&telebot.CallbackResponse{Text: userMsg, ShowAlert: true})
				return nil
			}
			_ = c.Send(userMsg)
			return nil
		}
	}
}

// LoggingMiddleware gives every update a correlation id and logs its handling.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()
			ctx := logger.WithCorrelationID(handlers.Context(c), "")
			handlers.WithContext(c, ctx)

			sessionID := handlers.SessionID(c)
			action := middleware.CommandName(c)

			log.DebugContext(ctx, "handling update", slog.String("session_id", sessionID), slog.String("action", action))
			err := next(c)
			log.InfoContext(ctx, "handled update",
				slog.String("session_id", sessionID),
				slog.String("action", action),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}
