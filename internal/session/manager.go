package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPattern = "session:lock:%s"
	lockTTL        = 5 * time.Second
)

// ErrEmptyID is returned when a session id is blank.
var ErrEmptyID = errors.New("session id is empty")

// UpdateFunc receives the stored session, or nil when none exists, and returns the session to save.
type UpdateFunc func(current *Session) (*Session, error)

// Manager serializes read-modify-write cycles on a session.
type Manager struct {
	storage     Storage
	log         *slog.Logger
	redisClient *redis.Client
}

// NewManager creates a session manager using the provided storage backend and redis client for locking.
// A nil redis client disables locking.
func NewManager(storage Storage, log *slog.Logger, redisClient *redis.Client) *Manager {
	if log == nil {
		log = slog.Default()
	}

	return &Manager{
		storage:     storage,
		log:         log,
		redisClient: redisClient,
	}
}

// Get proxies to the underlying storage implementation.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	return m.storage.Get(ctx, id)
}

// List returns every persisted session.
func (m *Manager) List(ctx context.Context) ([]*Session, error) {
	return m.storage.List(ctx)
}

// Update loads the session under a distributed lock, applies fn and saves what it returns.
func (m *Manager) Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	if err := m.lock(ctx, id); err != nil {
		return nil, err
	}
	defer m.unlock(ctx, id)

	current, err := m.storage.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		current = nil
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, fmt.Errorf("session %s: update returned nil", id)
	}

	next.ID = id
	if err := m.storage.Save(ctx, next); err != nil {
		return nil, err
	}

	return next, nil
}

// Delete removes the stored session while holding the lock.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}

	if err := m.lock(ctx, id); err != nil {
		return err
	}
	defer m.unlock(ctx, id)

	return m.storage.Delete(ctx, id)
}

func (m *Manager) lock(ctx context.Context, id string) error {
	if m.redisClient == nil {
		return nil
	}

	key := fmt.Sprintf(lockKeyPattern, id)
	acquired, err := m.redisClient.SetNX(ctx, key, 1, lockTTL).Result()
	if err != nil {
		m.log.Error("failed to acquire session lock", "session_id", id, "error", err)
		return err
	}

	if !acquired {
		m.log.Warn("session lock already held", "session_id", id)
		return ErrSessionLocked
	}

	return nil
}

func (m *Manager) unlock(ctx context.Context, id string) {
	if m.redisClient == nil {
		return
	}

	key := fmt.Sprintf(lockKeyPattern, id)
	if err := m.redisClient.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
		m.log.Error("failed to release session lock", "session_id", id, "error", err)
	}
}

// CountByState groups the stored sessions by conversation state.
func (m *Manager) CountByState(ctx context.Context) (map[string]int, error) {
	sessions, err := m.storage.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, sess := range sessions {
		counts[string(sess.Conversation.State)]++
	}
	return counts, nil
}
