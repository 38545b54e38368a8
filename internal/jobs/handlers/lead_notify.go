// Package handlers implements the asynq task handlers.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Proton-105/dataeng-assistant/internal/domain"
	"github.com/Proton-105/dataeng-assistant/internal/jobs"
	"github.com/Proton-105/dataeng-assistant/internal/repository"
)

// NotificationStore records that the team has been told about a record.
type NotificationStore interface {
	MarkLeadNotified(ctx context.Context, id int64, at time.Time) error
	MarkContactNotified(ctx context.Context, id int64, at time.Time) error
}

// LeadNotifyHandler announces a new lead or contact request and marks it notified.
type LeadNotifyHandler struct {
	store NotificationStore
	log   *slog.Logger
	now   func() time.Time
}

func NewLeadNotifyHandler(store NotificationStore, log *slog.Logger) *LeadNotifyHandler {
	if log == nil {
		log = slog.Default()
	}
	return &LeadNotifyHandler{store: store, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (h *LeadNotifyHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.LeadNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.log.ErrorContext(ctx, "lead notify: failed to decode payload", slog.String("task_type", t.Type()), slog.Any("error", err))
		return fmt.Errorf("decode payload: %w", asynq.SkipRetry)
	}

	var err error
	switch payload.Kind {
	case jobs.KindLead:
		err = h.store.MarkLeadNotified(ctx, payload.ID, h.now())
	case jobs.KindContact:
		err = h.store.MarkContactNotified(ctx, payload.ID, h.now())
	default:
		h.log.WarnContext(ctx, "lead notify: unknown kind", slog.String("kind", payload.Kind))
		return fmt.Errorf("unknown kind %q: %w", payload.Kind, asynq.SkipRetry)
	}

	if errors.Is(err, repository.ErrNotFound) {
		h.log.WarnContext(ctx, "lead notify: record vanished", slog.String("kind", payload.Kind), slog.Int64("id", payload.ID))
		return fmt.Errorf("%s %d: %w", payload.Kind, payload.ID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}

	h.log.InfoContext(ctx, "data engineering team notified", slog.String("kind", payload.Kind), slog.Int64("id", payload.ID))
	return nil
}

// LeadLister lists stored leads.
type LeadLister interface {
	ListLeads(ctx context.Context) ([]domain.Lead, error)
}

// LeadSweepHandler re-queues notifications for leads the team has not heard about yet.
type LeadSweepHandler struct {
	leads LeadLister
	queue jobs.Manager
	log   *slog.Logger
}

func NewLeadSweepHandler(leads LeadLister, queue jobs.Manager, log *slog.Logger) *LeadSweepHandler {
	if log == nil {
		log = slog.Default()
	}
	return &LeadSweepHandler{leads: leads, queue: queue, log: log}
}

func (h *LeadSweepHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	leads, err := h.leads.ListLeads(ctx)
	if err != nil {
		return err
	}

	queued := 0
	for _, lead := range leads {
		if lead.NotifiedAt != nil {
			continue
		}

		task, err := jobs.NewLeadNotifyTask(jobs.KindLead, lead.ID)
		if err != nil {
			return err
		}
		if _, err := h.queue.Enqueue(ctx, task); err != nil {
			return err
		}
		queued++
	}

	if queued > 0 {
		h.log.InfoContext(ctx, "lead sweep: re-queued notifications", slog.Int("count", queued))
	}
	return nil
}
