package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Proton-105/dataeng-assistant/internal/domain"
	"github.com/Proton-105/dataeng-assistant/internal/jobs"
	"github.com/Proton-105/dataeng-assistant/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) MarkLeadNotified(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockStore) MarkContactNotified(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

func (m *mockQueue) Close() error { return nil }

type stubLister []domain.Lead

func (s stubLister) ListLeads(context.Context) ([]domain.Lead, error) { return s, nil }

func TestLeadNotifyHandler(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		kind      string
		setup     func(ms *mockStore)
		wantErr   bool
		wantRetry bool
	}{
		{
			name: "lead",
			kind: jobs.KindLead,
			setup: func(ms *mockStore) {
				ms.On("MarkLeadNotified", mock.Anything, int64(4), now).Return(nil).Once()
			},
		},
		{
			name: "contact",
			kind: jobs.KindContact,
			setup: func(ms *mockStore) {
				ms.On("MarkContactNotified", mock.Anything, int64(4), now).Return(nil).Once()
			},
		},
		{
			name: "missing record is not retried",
			kind: jobs.KindLead,
			setup: func(ms *mockStore) {
				ms.On("MarkLeadNotified", mock.Anything, int64(4), now).Return(repository.ErrNotFound).Once()
			},
			wantErr: true,
		},
		{
			name: "database failure is retried",
			kind: jobs.KindContact,
			setup: func(ms *mockStore) {
				ms.On("MarkContactNotified", mock.Anything, int64(4), now).Return(errors.New("down")).Once()
			},
			wantErr:   true,
			wantRetry: true,
		},
		{
			name:    "unknown kind",
			kind:    "invoice",
			setup:   func(*mockStore) {},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ms := &mockStore{}
			tc.setup(ms)

			h := NewLeadNotifyHandler(ms, testLogger())
			h.now = func() time.Time { return now }

			task, err := jobs.NewLeadNotifyTask(tc.kind, 4)
			assert.NoError(t, err)

			err = h.ProcessTask(context.Background(), task)
			if tc.wantErr {
				assert.Error(t, err)
				assert.Equal(t, !tc.wantRetry, errors.Is(err, asynq.SkipRetry))
			} else {
				assert.NoError(t, err)
			}
			ms.AssertExpectations(t)
		})
	}
}

func TestLeadNotifyHandler_BadPayload(t *testing.T) {
	h := NewLeadNotifyHandler(&mockStore{}, testLogger())

	err := h.ProcessTask(context.Background(), asynq.NewTask(jobs.TaskTypeLeadNotify, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestLeadSweepHandler(t *testing.T) {
	notified := time.Now()
	leads := stubLister{
		{ID: 1},
		{ID: 2, NotifiedAt: &notified},
		{ID: 3},
	}

	mq := &mockQueue{}
	mq.On("Enqueue", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
		return task.Type() == jobs.TaskTypeLeadNotify
	})).Return(nil, nil).Twice()

	err := NewLeadSweepHandler(leads, mq, testLogger()).ProcessTask(context.Background(), jobs.NewLeadSweepTask())

	assert.NoError(t, err)
	mq.AssertExpectations(t)
}
