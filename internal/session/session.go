// Package session persists conversations between turns.
package session

import (
	"time"

	"github.com/Proton-105/dataeng-assistant/internal/conversation"
)

// Channel identifies the transport a session was opened on.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelHTTP     Channel = "http"
	ChannelCLI      Channel = "cli"
)

// Session is one user's conversation plus bookkeeping.
type Session struct {
	ID           string                    `json:"id"`
	Channel      Channel                   `json:"channel"`
	Conversation conversation.Conversation `json:"conversation"`
	// LeadCaptured is set once the profile has been handed to the lead service.
	LeadCaptured bool      `json:"lead_captured"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// New wraps a freshly opened conversation.
func New(id string, channel Channel, convo conversation.Conversation, now time.Time) *Session {
	return &Session{
		ID:           id,
		Channel:      channel,
		Conversation: convo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Idle reports how long the session has gone without an update.
func (s *Session) Idle(now time.Time) time.Duration {
	return now.Sub(s.UpdatedAt)
}
