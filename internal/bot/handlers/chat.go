package handlers

import (
	"errors"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/dataeng-assistant/internal/bot/keyboard"
	"github.com/Proton-105/dataeng-assistant/internal/conversation"
	"github.com/Proton-105/dataeng-assistant/internal/session"
)

// Conversation handles free text and quick reply taps.
type Conversation struct {
	svc   Chat
	pacer *conversation.Pacer
	kb    *keyboard.Builder
	log   *slog.Logger
}

// NewConversation wires the chat service to Telegram updates. A nil pacer sends replies at once.
func NewConversation(svc Chat, pacer *conversation.Pacer, kb *keyboard.Builder, log *slog.Logger) *Conversation {
	if log == nil {
		log = slog.Default()
	}
	if kb == nil {
		kb = keyboard.NewBuilder(log)
	}
	return &Conversation{svc: svc, pacer: pacer, kb: kb, log: log}
}

// Text answers a plain text message.
func (h *Conversation) Text(c telebot.Context) error {
	return h.converse(c, c.Text())
}

// QuickReply answers a "qr:<label>" callback as if the label had been typed.
func (h *Conversation) QuickReply(c telebot.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}

	_, label, err := keyboard.DecodeCallback(cb.Data)
	if err != nil {
		return nil
	}

	if err := c.Respond(); err != nil {
		h.log.Debug("quick reply not acknowledged", slog.Any("error", err))
	}

	return h.converse(c, label)
}

func (h *Conversation) converse(c telebot.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	id := SessionID(c)
	if id == "" {
		h.log.Warn("message without chat ignored")
		return nil
	}

	ctx := Context(c)
	result, err := h.svc.Send(ctx, id, session.ChannelTelegram, text)
	if err != nil {
		if errors.Is(err, conversation.ErrEmptyInput) {
			return nil
		}
		return err
	}

	notify := func() error {
		if err := c.Notify(telebot.Typing); err != nil {
			h.log.Debug("typing indicator not sent", slog.Any("error", err))
		}
		return nil
	}
	if err := h.pacer.Pace(ctx, result.Turn.Reply, notify); err != nil {
		return err
	}

	msg := result.Turn.Message
	return send(c, msg.Text, h.kb.QuickReplies(msg.SuggestedReplies))
}
