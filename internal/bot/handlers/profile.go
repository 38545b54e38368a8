package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/dataeng-assistant/internal/conversation"
	"github.com/Proton-105/dataeng-assistant/internal/session"
)

const (
	noProfileText = "We haven't talked yet. Send /start to begin."
	notShared     = "not shared yet"
)

var stageLabels = map[conversation.State]string{
	conversation.StateGreeting:          "Getting started",
	conversation.StateCollectingInfo:    "Introductions",
	conversation.StateDiscussingUseCase: "Discussing your use case",
	conversation.StateAnswering:         "Questions and answers",
}

// NewProfileHandler shows what the assistant has learned about the user so far.
func NewProfileHandler(svc Chat, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		id := SessionID(c)
		if id == "" {
			return nil
		}

		profile, state, err := svc.Profile(Context(c), id)
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			return c.Send(noProfileText)
		case err != nil:
			return err
		}

		return c.Send(FormatProfile(profile, state))
	}
}

// FormatProfile renders the collected profile fields.
func FormatProfile(p conversation.Profile, state conversation.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", orNotShared(p.Name))
	fmt.Fprintf(&b, "Company: %s\n", orNotShared(p.Company))
	fmt.Fprintf(&b, "Role: %s\n", orNotShared(p.Role))
	fmt.Fprintf(&b, "Use case: %s\n", orNotShared(p.UseCase))

	stage, ok := stageLabels[state]
	if !ok {
		stage = string(state)
	}
	fmt.Fprintf(&b, "Stage: %s", stage)
	return b.String()
}

func orNotShared(v string) string {
	if strings.TrimSpace(v) == "" {
		return notShared
	}
	return v
}
