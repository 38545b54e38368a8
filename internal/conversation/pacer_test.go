package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPacer_Delay(t *testing.T) {
	r := Reply{Typing: typingTopic}

	testCases := []struct {
		name  string
		scale float64
		want  time.Duration
	}{
		{name: "real time", scale: 1, want: typingTopic},
		{name: "half", scale: 0.5, want: 600 * time.Millisecond},
		{name: "disabled", scale: 0, want: 0},
		{name: "negative clamps", scale: -2, want: 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewPacer(tc.scale).Delay(r))
		})
	}

	var nilPacer *Pacer
	assert.Zero(t, nilPacer.Delay(r))
}

func TestPacer_PaceDisabledSkipsNotify(t *testing.T) {
	called := false
	err := NewPacer(0).Pace(context.Background(), Reply{Typing: typingLong}, func() error {
		called = true
		return nil
	})

	assert.NoError(t, err)
	assert.False(t, called)
}

func TestPacer_PaceNotifiesThenWaits(t *testing.T) {
	p := NewPacer(0.01)
	called := false

	start := time.Now()
	err := p.Pace(context.Background(), Reply{Typing: typingLong}, func() error {
		called = true
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, called)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestPacer_PaceNotifyError(t *testing.T) {
	boom := errors.New("boom")

	err := NewPacer(1).Pace(context.Background(), Reply{Typing: typingLong}, func() error { return boom })

	assert.ErrorIs(t, err, boom)
}

func TestPacer_PaceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPacer(1).Pace(ctx, Reply{Typing: typingTopic}, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPacer_SetScaleAtRuntime(t *testing.T) {
	p := NewPacer(1)
	p.SetScale(2)

	assert.Equal(t, 2*typingShort, p.Delay(Reply{Typing: typingShort}))
}
