package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_RoundTrip(t *testing.T) {
	storage := NewMemoryStorage(time.Hour)
	ctx := context.Background()

	sess := testSession("abc", time.Now())
	require.NoError(t, storage.Save(ctx, sess))

	got, err := storage.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ID)

	got.Conversation.Profile.Name = "changed"
	again, err := storage.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, again.Conversation.Profile.Name)

	require.NoError(t, storage.Delete(ctx, "abc"))
	_, err = storage.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStorage_Expiry(t *testing.T) {
	storage := NewMemoryStorage(time.Minute)
	now := time.Now()
	storage.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, testSession("abc", now)))

	now = now.Add(2 * time.Minute)

	_, err := storage.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	sessions, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
