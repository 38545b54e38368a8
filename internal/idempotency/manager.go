// Package idempotency makes repeated deliveries of the same request run once.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

const defaultLockTTL = time.Minute

var ErrRequestInProgress = errors.New("request with this key is already in progress")

// Operation produces the response that is remembered for a key.
type Operation func(ctx context.Context) (any, error)

// Result is the stored response and whether it came from an earlier run.
type Result struct {
	Response  json.RawMessage
	FromCache bool
}

// Decode unmarshals the stored response into v.
func (r *Result) Decode(v any) error {
	if r == nil || len(r.Response) == 0 {
		return nil
	}
	return json.Unmarshal(r.Response, v)
}

// Manager runs an operation at most once per key within the ttl.
type Manager interface {
	Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error)
}

type manager struct {
	store   Store
	log     *slog.Logger
	lockTTL time.Duration
}

// NewManager builds a Manager over store.
func NewManager(store Store, log *slog.Logger) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{
		store:   store,
		log:     log,
		lockTTL: defaultLockTTL,
	}
}

// Execute runs fn unless key already completed, in which case the stored response is returned.
// A concurrent run with the same key yields ErrRequestInProgress. Failed runs are not remembered.
func (m *manager) Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error) {
	if fn == nil {
		return nil, errors.New("operation fn cannot be nil")
	}

	record, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if record != nil && record.Status == StatusCompleted {
		return &Result{Response: record.Response, FromCache: true}, nil
	}

	locked, err := m.store.Lock(ctx, key, m.lockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrRequestInProgress
	}
	defer func() {
		if err := m.store.ReleaseLock(context.WithoutCancel(ctx), key); err != nil {
			m.log.Warn("idempotency lock not released", slog.String("key", key), slog.Any("error", err))
		}
	}()

	response, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(response)
	if err != nil {
		return nil, err
	}

	if err := m.store.Set(ctx, key, &Record{Status: StatusCompleted, Response: encoded}, ttl); err != nil {
		m.log.Warn("idempotency record not stored", slog.String("key", key), slog.Any("error", err))
	}

	return &Result{Response: encoded}, nil
}
