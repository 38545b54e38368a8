package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/dataeng-assistant/internal/bot/keyboard"
	"github.com/Proton-105/dataeng-assistant/internal/session"
)

// NewStartHandler opens a fresh conversation and sends the welcome message.
func NewStartHandler(svc Chat, kb *keyboard.Builder, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		id := SessionID(c)
		if id == "" {
			log.Warn("start handler invoked without chat")
			return nil
		}

		_, welcome, err := svc.Start(Context(c), id, session.ChannelTelegram)
		if err != nil {
			return err
		}

		return send(c, welcome.Text, kb.QuickReplies(welcome.SuggestedReplies))
	}
}

func send(c telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	if markup == nil {
		return c.Send(text)
	}
	return c.Send(text, markup)
}
