package middleware

import (
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/dataeng-assistant/internal/bot/handlers"
	"github.com/Proton-105/dataeng-assistant/internal/bot/keyboard"
	"github.com/Proton-105/dataeng-assistant/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting them to Prometheus.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordCommand(CommandName(c), status, time.Since(start))

		return err
	}
}

// CommandName returns a low-cardinality label for an update: the command, the callback family,
// or "text" for free-form messages.
func CommandName(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Data != "" {
		unique, _, _ := keyboard.DecodeCallback(cb.Data)
		return "callback:" + unique
	}

	text := strings.TrimSpace(c.Text())
	switch {
	case text == "":
		return "unknown"
	case strings.HasPrefix(text, "/"):
		cmd, _, _ := strings.Cut(strings.Fields(text)[0], "@")
		return cmd
	default:
		return "text"
	}
}
