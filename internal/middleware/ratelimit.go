package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/dataeng-assistant/internal/bot/handlers"
	"github.com/Proton-105/dataeng-assistant/internal/ratelimit"
)

const throttledText = "You're sending messages a little too fast. Please wait a moment and try again."

// RateLimit enforces a per-chat limit on Telegram updates. Limiter failures let the update through.
func RateLimit(limiter ratelimit.Limiter, rule ratelimit.Rule, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			id := handlers.SessionID(c)
			if limiter == nil || rule.Disabled() || id == "" {
				return next(c)
			}

			ctx := handlers.Context(c)
			result, err := limiter.Check(ctx, "chat:"+id, rule)
			if err != nil {
				log.WarnContext(ctx, "rate limiter error", slog.String("session_id", id), slog.Any("error", err))
				return next(c)
			}

			if !result.Allowed {
				log.WarnContext(ctx, "rate limit exceeded", slog.String("session_id", id))
				if c.Callback() != nil {
					return c.Respond(&telebot.CallbackResponse{Text: throttledText})
				}
				return c.Send(throttledText)
			}

			return next(c)
		}
	}
}

// HTTPRateLimit enforces a per-client-address limit on API requests, answering 429 when exceeded.
func HTTPRateLimit(limiter ratelimit.Limiter, rule ratelimit.Rule, log *slog.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter == nil || rule.Disabled() {
				return next(c)
			}

			ctx := c.Request().Context()
			result, err := limiter.Check(ctx, "ip:"+c.RealIP(), rule)
			if err != nil {
				log.WarnContext(ctx, "rate limiter error", slog.Any("error", err))
				return next(c)
			}

			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
			header.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

			if !result.Allowed {
				retry := result.RetryAfter(time.Now())
				header.Set("Retry-After", strconv.Itoa(int(retry.Round(time.Second)/time.Second)))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}

			return next(c)
		}
	}
}
