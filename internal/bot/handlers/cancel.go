package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"
)

const cancelText = "Conversation cleared. Send /start whenever you want to begin again."

// NewCancelHandler forgets the conversation for the chat.
func NewCancelHandler(svc Chat, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		id := SessionID(c)
		if id == "" {
			log.Warn("cancel handler invoked without chat")
			return nil
		}

		if err := svc.Reset(Context(c), id); err != nil {
			return err
		}

		return c.Send(cancelText)
	}
}
