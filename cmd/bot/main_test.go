package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/dataeng-assistant/internal/chat"
	"github.com/Proton-105/dataeng-assistant/internal/conversation"
	"github.com/Proton-105/dataeng-assistant/internal/knowledge"
	"github.com/Proton-105/dataeng-assistant/internal/session"
)

func newTestService() *chat.Service {
	manager := session.NewManager(session.NewMemoryStorage(session.DefaultTTL), nil, nil)
	return chat.NewService(conversation.NewEngine(knowledge.Default()), manager, nil, nil)
}

func TestRunChatOnboarding(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("Get started\n\nAlice\n/quit\nnever read\n")

	err := runChat(context.Background(), newTestService(), nil, in, &out)
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "Data Engineering Assistant")
	assert.Contains(t, got, "[Get started] [Browse topics] [Talk to expert]")
	assert.Contains(t, got, "What should I call you?")
	assert.Contains(t, got, "Nice to meet you, Alice!")
	assert.NotContains(t, got, "never read")
}

func TestRunChatResetAndEOF(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("Get started\n/reset\n")

	err := runChat(context.Background(), newTestService(), nil, in, &out)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out.String(), "Data Engineering Assistant"))
}

func TestRunChatStopsOnCancelledPacing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := runChat(ctx, newTestService(), conversation.NewPacer(1), strings.NewReader("Get started\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrintTopics(t *testing.T) {
	base, err := knowledge.NewBase([]knowledge.Topic{
		{ID: "kafka", Keywords: []string{"kafka", "stream"}, Response: "Kafka is a log."},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	printTopics(&out, base, true)

	assert.Equal(t, "kafka\tkafka, stream\nKafka is a log.\n\n1 topics\n", out.String())
}
