package middleware

import (
	"io"
	"log/slog"

	telebot "gopkg.in/telebot.v3"
)

type fakeContext struct {
	telebot.Context

	chat      *telebot.Chat
	message   *telebot.Message
	callback  *telebot.Callback
	text      string
	sent      []any
	responses []*telebot.CallbackResponse
	store     map[string]any
}

func newTextContext(chatID int64, messageID int, text string) *fakeContext {
	chat := &telebot.Chat{ID: chatID}
	return &fakeContext{
		chat:    chat,
		message: &telebot.Message{ID: messageID, Chat: chat, Text: text},
		text:    text,
	}
}

func (f *fakeContext) Chat() *telebot.Chat           { return f.chat }
func (f *fakeContext) Sender() *telebot.User         { return nil }
func (f *fakeContext) Message() *telebot.Message     { return f.message }
func (f *fakeContext) Callback() *telebot.Callback   { return f.callback }
func (f *fakeContext) Text() string                  { return f.text }
func (f *fakeContext) Send(what any, _ ...any) error { f.sent = append(f.sent, what); return nil }

func (f *fakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	f.responses = append(f.responses, resp...)
	return nil
}

func (f *fakeContext) Get(key string) any {
	return f.store[key]
}

func (f *fakeContext) Set(key string, val any) {
	if f.store == nil {
		f.store = make(map[string]any)
	}
	f.store[key] = val
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
