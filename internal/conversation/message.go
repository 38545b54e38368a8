package conversation

import (
	"slices"
	"time"
)

// Origin identifies who authored a message.
type Origin string

const (
	// OriginBot marks messages written by the assistant.
	OriginBot Origin = "bot"
	// OriginUser marks messages typed or picked by the user.
	OriginUser Origin = "user"
)

// Message is one entry in a session transcript.
type Message struct {
	Origin           Origin    `json:"origin"`
	Text             string    `json:"text"`
	SuggestedReplies []string  `json:"suggested_replies,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Transcript is the append-only message log of one conversation.
type Transcript []Message

// Append returns a new transcript with msg added at the end. t itself is never written to.
func (t Transcript) Append(msg Message) Transcript {
	msg.SuggestedReplies = cloneStrings(msg.SuggestedReplies)
	return append(slices.Clip(t), msg)
}

// LastBot returns the most recent bot message.
func (t Transcript) LastBot() (Message, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Origin == OriginBot {
			return t[i], true
		}
	}
	return Message{}, false
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}
