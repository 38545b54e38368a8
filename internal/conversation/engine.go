package conversation

import (
	"errors"
	"strings"
	"time"

	"github.com/Proton-105/dataeng-assistant/internal/knowledge"
)

// ErrEmptyInput is returned for blank input; callers are expected to refuse it before it gets here.
var ErrEmptyInput = errors.New("conversation: input is empty")

// Conversation is the full state of one session's dialogue.
type Conversation struct {
	State      State      `json:"state"`
	Profile    Profile    `json:"profile"`
	Transcript Transcript `json:"transcript"`
}

// Turn is the result of feeding one input into the engine.
type Turn struct {
	Conversation Conversation
	Reply        Reply
	// Message is the bot message appended to the transcript for Reply.
	Message Message
	// TopicID is set when a knowledge topic answered the input.
	TopicID string
	// From is the state before the turn.
	From State
}

// Transitioned reports whether the turn changed the conversation state.
func (t Turn) Transitioned() bool {
	return t.From != t.Conversation.State
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine puts the knowledge matcher in front of the onboarding router.
type Engine struct {
	base   *knowledge.Base
	router *Router
	now    func() time.Time
}

// NewEngine builds an engine over the given catalog; nil selects the built-in one.
func NewEngine(base *knowledge.Base, opts ...Option) *Engine {
	if base == nil {
		base = knowledge.Default()
	}

	e := &Engine{
		base:   base,
		router: NewRouter(base),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Knowledge exposes the catalog the engine matches against.
func (e *Engine) Knowledge() *knowledge.Base {
	return e.base
}

// Open starts a conversation in the greeting state with the welcome message on record.
func (e *Engine) Open() (Conversation, Message) {
	msg := e.botMessage(Welcome())
	return Conversation{
		State:      StateGreeting,
		Transcript: Transcript{}.Append(msg),
	}, msg
}

// Respond records the user input, answers it and records the answer. A topic match always
// wins over the onboarding flow and leaves state and profile untouched.
func (e *Engine) Respond(convo Conversation, input string) (Turn, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return Turn{}, ErrEmptyInput
	}

	if !convo.State.Valid() {
		convo.State = StateGreeting
	}

	turn := Turn{From: convo.State}
	convo.Transcript = convo.Transcript.Append(Message{Origin: OriginUser, Text: text, Timestamp: e.now()})

	if topic, ok := e.base.Match(text); ok {
		turn.TopicID = topic.ID
		turn.Reply = reply(topic.Response, topic.SuggestedReplies, typingTopic)
	} else {
		out := e.router.Advance(convo.State, convo.Profile, text)
		convo.State = out.State
		convo.Profile = out.Profile
		turn.Reply = out.Reply
	}

	turn.Message = e.botMessage(turn.Reply)
	convo.Transcript = convo.Transcript.Append(turn.Message)
	turn.Conversation = convo

	return turn, nil
}

func (e *Engine) botMessage(r Reply) Message {
	return Message{
		Origin:           OriginBot,
		Text:             r.Text,
		SuggestedReplies: cloneStrings(r.SuggestedReplies),
		Timestamp:        e.now(),
	}
}
