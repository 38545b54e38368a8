package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	counts map[string]int
	err    error
}

func (s stubCounter) CountByState(context.Context) (map[string]int, error) {
	return s.counts, s.err
}

func TestSessionCollector_Collect(t *testing.T) {
	c := NewSessionCollector(stubCounter{counts: map[string]int{"greeting": 2, "answering": 1, "": 1}}, 0)

	require.NoError(t, c.Collect(context.Background()))

	assert.Equal(t, 4.0, testutil.ToFloat64(activeSessions))
	assert.Equal(t, 2.0, testutil.ToFloat64(sessionsByState.WithLabelValues("greeting")))
	assert.Equal(t, 0.0, testutil.ToFloat64(sessionsByState.WithLabelValues("collecting_info")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sessionsByState.WithLabelValues("unknown")))
}

func TestSessionCollector_Error(t *testing.T) {
	boom := errors.New("boom")
	c := NewSessionCollector(stubCounter{err: boom}, 0)

	assert.ErrorIs(t, c.Collect(context.Background()), boom)
}

func TestRecordTurn(t *testing.T) {
	before := testutil.ToFloat64(chatTurnsTotal.WithLabelValues("answering", "topic"))
	RecordTurn("answering", "topic")
	assert.Equal(t, before+1, testutil.ToFloat64(chatTurnsTotal.WithLabelValues("answering", "topic")))

	before = testutil.ToFloat64(analyticsEventsTotal.WithLabelValues("unknown"))
	RecordAnalyticsEvent("")
	assert.Equal(t, before+1, testutil.ToFloat64(analyticsEventsTotal.WithLabelValues("unknown")))
}
