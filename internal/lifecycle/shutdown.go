// Package lifecycle coordinates readiness and graceful shutdown of the process.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const DefaultShutdownTimeout = 15 * time.Second

// Shutdown coordinates graceful shutdown hooks in parallel.
type Shutdown struct {
	mu      sync.Mutex
	hooks   []Hook
	log     *slog.Logger
	timeout time.Duration
	once    sync.Once
	err     error
}

// NewShutdown constructs a coordinator whose hooks share one deadline.
func NewShutdown(log *slog.Logger, timeout time.Duration) *Shutdown {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	return &Shutdown{log: log, timeout: timeout}
}

// Register adds a named shutdown hook.
func (s *Shutdown) Register(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, Hook{Name: name, Fn: fn})
}

// Execute runs all registered hooks concurrently and waits for completion. Only the first call
// runs the hooks; later calls return the same result.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.once.Do(func() {
		s.err = s.run(ctx)
	})
	return s.err
}

func (s *Shutdown) run(ctx context.Context) error {
	s.mu.Lock()
	hooks := append([]Hook(nil), s.hooks...)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	s.log.Info("shutdown sequence started", slog.Int("hook_count", len(hooks)))

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)

	for _, h := range hooks {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := h.Fn(ctx); err != nil {
				s.log.Error("shutdown hook failed", slog.String("hook", h.Name), slog.Any("error", err))
				errMu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", h.Name, err))
				errMu.Unlock()
				return
			}

			s.log.Debug("shutdown hook completed", slog.String("hook", h.Name))
		}()
	}

	wg.Wait()
	s.log.Info("shutdown sequence finished", slog.Duration("elapsed", time.Since(start)))

	return errors.Join(errs...)
}
