package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Proton-105/dataeng-assistant/pkg/logger"
	"github.com/Proton-105/dataeng-assistant/pkg/metrics"
)

// RequestLogger tags each request with a correlation id, logs it and records its duration.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			ctx := logger.WithCorrelationID(req.Context(), req.Header.Get(logger.CorrelationIDHeader))
			c.SetRequest(req.WithContext(ctx))
			c.Response().Header().Set(logger.CorrelationIDHeader, logger.CorrelationIDFromContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			elapsed := time.Since(start)

			metrics.RecordHTTPRequest(req.Method, route, strconv.Itoa(status), elapsed)
			log.InfoContext(ctx, "handled http request",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", elapsed),
			)

			return nil
		}
	}
}
