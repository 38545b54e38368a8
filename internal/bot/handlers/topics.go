package handlers

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/dataeng-assistant/internal/bot/keyboard"
	"github.com/Proton-105/dataeng-assistant/internal/knowledge"
)

// NewTopicsHandler sends the first page of the topic catalog.
func NewTopicsHandler(base *knowledge.Base, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		text, markup := topicPage(base, 1, log)
		return send(c, text, markup)
	}
}

// NewTopicsPageCallback edits the topic list message to show the requested page.
func NewTopicsPageCallback(base *knowledge.Base, log *slog.Logger) CallbackHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		page := 1
		if cb := c.Callback(); cb != nil {
			if _, data, err := keyboard.DecodeCallback(cb.Data); err == nil {
				if n, convErr := strconv.Atoi(data); convErr == nil {
					page = n
				}
			}
		}

		if err := c.Respond(); err != nil {
			log.Debug("topics callback not acknowledged", slog.Any("error", err))
		}

		text, markup := topicPage(base, page, log)
		if markup == nil {
			return c.Edit(text)
		}
		return c.Edit(text, markup)
	}
}

// topicPage renders one topic per page.
func topicPage(base *knowledge.Base, page int, log *slog.Logger) (string, *telebot.ReplyMarkup) {
	topics := base.Topics()
	if len(topics) == 0 {
		return "No topics are available right now.", nil
	}

	page = keyboard.ClampPage(page, len(topics))
	topic := topics[page-1]

	text := fmt.Sprintf("📚 %s\n\n%s\n\nKeywords: %s", topic.ID, topic.Preview(), strings.Join(topic.Keywords, ", "))

	markup, err := keyboard.NewInlineKeyboard().
		AddRow(keyboard.PaginationButtons(keyboard.CallbackTopicsPage, page, len(topics))...).
		Build()
	if err != nil {
		if log != nil {
			log.Warn("topics keyboard not built", slog.Any("error", err))
		}
		return text, nil
	}
	return text, markup
}
