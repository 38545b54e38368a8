package session

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner removes idle sessions on a schedule.
type Cleaner struct {
	storage  Storage
	log      *slog.Logger
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(storage Storage, log *slog.Logger, ttl, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if interval <= 0 {
		interval = time.Minute
	}

	return &Cleaner{
		storage:  storage,
		log:      log,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
	}
}

// Run starts the cleanup loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.storage == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("session cleaner stopped", slog.String("reason", context.Cause(ctx).Error()))
			return
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

// Sweep deletes every session idle for longer than the TTL and returns how many were removed.
func (c *Cleaner) Sweep(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}

	sessions, err := c.storage.List(ctx)
	if err != nil {
		c.log.Error("session cleaner list failed", slog.Any("error", err))
		return 0
	}

	now := c.now()
	removed := 0
	for _, sess := range sessions {
		if sess.Idle(now) <= c.ttl {
			continue
		}

		if err := c.storage.Delete(ctx, sess.ID); err != nil {
			c.log.Error("session cleaner failed to delete session", slog.String("session_id", sess.ID), slog.Any("error", err))
			continue
		}
		removed++
		c.log.Info("idle session cleared", slog.String("session_id", sess.ID))
	}

	return removed
}
