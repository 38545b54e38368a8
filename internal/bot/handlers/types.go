package handlers

import (
	"context"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/dataeng-assistant/internal/chat"
	"github.com/Proton-105/dataeng-assistant/internal/conversation"
	"github.com/Proton-105/dataeng-assistant/internal/session"
)

// Handler processes bot commands.
type Handler func(c telebot.Context) error

// CallbackHandler processes inline callback events.
type CallbackHandler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// Chat is the part of the chat service the Telegram handlers drive.
type Chat interface {
	Start(ctx context.Context, id string, channel session.Channel) (*session.Session, conversation.Message, error)
	Send(ctx context.Context, id string, channel session.Channel, text string) (chat.Result, error)
	Reset(ctx context.Context, id string) error
	Profile(ctx context.Context, id string) (conversation.Profile, conversation.State, error)
}

const (
	sessionPrefix = "tg:"
	contextKey    = "request_ctx"
)

// SessionID derives the chat session id for an update, preferring the chat over the sender.
func SessionID(c telebot.Context) string {
	if c == nil {
		return ""
	}
	if chat := c.Chat(); chat != nil {
		return sessionPrefix + strconv.FormatInt(chat.ID, 10)
	}
	if sender := c.Sender(); sender != nil {
		return sessionPrefix + strconv.FormatInt(sender.ID, 10)
	}
	return ""
}

// WithContext stores the request context on the update.
func WithContext(c telebot.Context, ctx context.Context) {
	c.Set(contextKey, ctx)
}

// Context returns the request context stored by the middleware chain.
func Context(c telebot.Context) context.Context {
	if c != nil {
		if ctx, ok := c.Get(contextKey).(context.Context); ok && ctx != nil {
			return ctx
		}
	}
	return context.Background()
}
