package conversation

import (
	"context"
	"sync/atomic"
	"time"
)

// Pacer shows a typing indicator for a reply's typing delay before it is delivered. The delay
// is cosmetic; a scale of zero disables it.
type Pacer struct {
	scale atomic.Uint64 // multiplier in permille
}

// NewPacer builds a pacer that multiplies typing delays by scale.
func NewPacer(scale float64) *Pacer {
	p := &Pacer{}
	p.SetScale(scale)
	return p
}

// SetScale changes the delay multiplier; negative values are treated as zero.
func (p *Pacer) SetScale(scale float64) {
	if scale < 0 {
		scale = 0
	}
	p.scale.Store(uint64(scale * 1000))
}

// Delay returns the scaled typing delay for a reply.
func (p *Pacer) Delay(r Reply) time.Duration {
	if p == nil {
		return 0
	}
	return r.Typing * time.Duration(p.scale.Load()) / 1000
}

// Pace calls notify, then waits for the scaled delay or until ctx is done.
func (p *Pacer) Pace(ctx context.Context, r Reply, notify func() error) error {
	delay := p.Delay(r)
	if delay <= 0 {
		return nil
	}

	if notify != nil {
		if err := notify(); err != nil {
			return err
		}
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
