package idempotency

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupManager(t *testing.T) (Manager, *RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewRedisStore(client, log)
	return NewManager(store, log), store, mr
}

type receipt struct {
	TicketID string `json:"ticket_id"`
}

func TestManager_ExecutesOnce(t *testing.T) {
	m, _, _ := setupManager(t)
	ctx := context.Background()

	calls := 0
	op := func(context.Context) (any, error) {
		calls++
		return receipt{TicketID: "DE-1"}, nil
	}

	first, err := m.Execute(ctx, "contact:abc", time.Hour, op)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := m.Execute(ctx, "contact:abc", time.Hour, op)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, calls)

	var got receipt
	require.NoError(t, second.Decode(&got))
	assert.Equal(t, "DE-1", got.TicketID)
}

func TestManager_FailureIsNotRemembered(t *testing.T) {
	m, _, _ := setupManager(t)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := m.Execute(ctx, "k", time.Hour, func(context.Context) (any, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	res, err := m.Execute(ctx, "k", time.Hour, func(context.Context) (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.False(t, res.FromCache)
}

func TestManager_InProgress(t *testing.T) {
	m, store, _ := setupManager(t)
	ctx := context.Background()

	locked, err := store.Lock(ctx, "busy", time.Minute)
	require.NoError(t, err)
	require.True(t, locked)

	_, err = m.Execute(ctx, "busy", time.Hour, func(context.Context) (any, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrRequestInProgress)
}

func TestManager_RecordExpires(t *testing.T) {
	m, _, mr := setupManager(t)
	ctx := context.Background()

	_, err := m.Execute(ctx, "short", time.Minute, func(context.Context) (any, error) { return 1, nil })
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	res, err := m.Execute(ctx, "short", time.Minute, func(context.Context) (any, error) { return 2, nil })
	require.NoError(t, err)
	assert.False(t, res.FromCache)
}

func TestGenerateKey(t *testing.T) {
	a := GenerateKey("contact", "jane@example.com", "1")
	b := GenerateKey("contact", "jane@example.com", "1")
	c := GenerateKey("contact", "jane@example.com", "2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "contact:"))
	assert.Len(t, a, len("contact:")+64)

	assert.NotEqual(t, GenerateKey("s", "ab", "c"), GenerateKey("s", "a", "bc"))
	assert.NotEqual(t, GenerateKey("a", "x"), GenerateKey("b", "x"))
}
