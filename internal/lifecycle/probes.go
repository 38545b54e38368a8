package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/Proton-105/dataeng-assistant/internal/health"
)

// ErrShuttingDown is reported by readiness once the shutdown sequence has begun.
var ErrShuttingDown = errors.New("lifecycle: shutting down")

// Probes answers liveness and readiness for orchestrators.
type Probes struct {
	checker  *health.Checker
	log      *slog.Logger
	draining atomic.Bool
}

// NewProbes creates probes backed by the dependency checker.
func NewProbes(checker *health.Checker, log *slog.Logger) *Probes {
	if log == nil {
		log = slog.Default()
	}
	return &Probes{checker: checker, log: log}
}

// Liveness reports success while the process can serve at all.
func (p *Probes) Liveness(context.Context) error {
	return nil
}

// Readiness fails while draining or when any dependency check fails.
func (p *Probes) Readiness(ctx context.Context) error {
	if p.draining.Load() {
		return ErrShuttingDown
	}
	if p.checker == nil {
		return nil
	}

	report := p.checker.Check(ctx)
	if !report.Healthy() {
		p.log.Debug("readiness probe failed", slog.Any("checks", report.Checks))
		return errors.New("lifecycle: dependencies degraded")
	}
	return nil
}

// Drain marks the process as not ready so load balancers stop routing to it.
func (p *Probes) Drain() {
	p.draining.Store(true)
}
