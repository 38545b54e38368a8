// Package metrics exposes the Prometheus instruments used across the assistant.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP API requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	chatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total number of conversation turns by resulting state and outcome",
		},
		[]string{"state", "outcome"},
	)
	topicMatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topic_matches_total",
			Help: "Total number of inputs answered from the knowledge base",
		},
		[]string{"topic"},
	)
	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "state_transitions_total",
			Help: "Total number of conversation state transitions",
		},
		[]string{"from", "to"},
	)
	leadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_total",
			Help: "Total number of leads and contact requests stored",
		},
		[]string{"source", "status"},
	)
	analyticsEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_events_total",
			Help: "Total number of client analytics events",
		},
		[]string{"event_type"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of stored sessions",
		},
	)
	sessionsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sessions_by_state",
			Help: "Number of stored sessions per conversation state",
		},
		[]string{"state"},
	)
)

// TrackedStates are always reported, even at zero.
var TrackedStates = []string{"greeting", "collecting_info", "discussing_usecase", "answering"}

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	command = orUnknown(command)
	botCommandsTotal.WithLabelValues(command, orUnknown(status)).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordHTTPRequest records one API request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	route = orUnknown(route)
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordTurn counts a conversation turn.
func RecordTurn(state, outcome string) {
	chatTurnsTotal.WithLabelValues(orUnknown(state), orUnknown(outcome)).Inc()
}

// RecordTopicMatch counts an input answered by a knowledge topic.
func RecordTopicMatch(topic string) {
	topicMatchesTotal.WithLabelValues(orUnknown(topic)).Inc()
}

// RecordStateTransition tracks conversation transitions.
func RecordStateTransition(from, to string) {
	stateTransitionsTotal.WithLabelValues(orUnknown(from), orUnknown(to)).Inc()
}

// RecordLead counts a stored lead or contact request.
func RecordLead(source, status string) {
	leadsTotal.WithLabelValues(orUnknown(source), orUnknown(status)).Inc()
}

// RecordAnalyticsEvent counts a client-reported event.
func RecordAnalyticsEvent(eventType string) {
	analyticsEventsTotal.WithLabelValues(orUnknown(eventType)).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	errorsTotal.WithLabelValues(orUnknown(errType), orUnknown(severity)).Inc()
}

// SetActiveSessions updates the gauge for current sessions.
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}

// SetSessionsByState updates the gauge for the given state.
func SetSessionsByState(state string, count int) {
	sessionsByState.WithLabelValues(orUnknown(state)).Set(float64(count))
}

// StateCounter reports how many sessions sit in each conversation state.
type StateCounter interface {
	CountByState(ctx context.Context) (map[string]int, error)
}

// SessionCollector periodically gathers session counts and emits gauge metrics.
type SessionCollector struct {
	counter  StateCounter
	interval time.Duration
}

// NewSessionCollector builds a metrics collector bound to the provided counter.
func NewSessionCollector(counter StateCounter, interval time.Duration) *SessionCollector {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &SessionCollector{counter: counter, interval: interval}
}

// Run polls the counter every interval, updating session gauges until ctx is cancelled.
func (c *SessionCollector) Run(ctx context.Context) {
	if c == nil || c.counter == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		_ = c.Collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Collect refreshes the session gauges once.
func (c *SessionCollector) Collect(ctx context.Context) error {
	stateCounts, err := c.counter.CountByState(ctx)
	if err != nil {
		return err
	}

	total := 0
	for _, n := range stateCounts {
		total += n
	}
	SetActiveSessions(total)

	sessionsByState.Reset()

	for _, tracked := range TrackedStates {
		SetSessionsByState(tracked, stateCounts[tracked])
	}

	for label, count := range stateCounts {
		if isTracked(label) {
			continue
		}
		SetSessionsByState(label, count)
	}

	return nil
}

func isTracked(state string) bool {
	for _, tracked := range TrackedStates {
		if tracked == state {
			return true
		}
	}
	return false
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
