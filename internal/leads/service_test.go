package leads

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Proton-105/dataeng-assistant/internal/domain"
	apperrors "github.com/Proton-105/dataeng-assistant/internal/errors"
	"github.com/Proton-105/dataeng-assistant/internal/jobs"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateLead(ctx context.Context, lead *domain.Lead) (bool, error) {
	args := m.Called(ctx, lead)
	if args.Bool(0) {
		lead.ID = 11
	}
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	args := m.Called(ctx)
	leads, _ := args.Get(0).([]domain.Lead)
	return leads, args.Error(1)
}

func (m *mockRepo) MarkLeadNotified(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockRepo) CreateContact(ctx context.Context, req *domain.ContactRequest) error {
	args := m.Called(ctx, req)
	req.ID = 21
	return args.Error(0)
}

func (m *mockRepo) MarkContactNotified(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task.Type())
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

func (m *mockQueue) Close() error { return nil }

func validLead() LeadInput {
	return LeadInput{SessionID: "tg:1", Channel: "telegram", Name: "Jane", Company: "Acme", Role: "Engineer", UseCase: "Build pipelines"}
}

func TestService_Capture(t *testing.T) {
	testCases := []struct {
		name        string
		input       LeadInput
		setup       func(mr *mockRepo, mq *mockQueue)
		wantCreated bool
		wantErr     bool
	}{
		{
			name:  "new lead is stored and announced",
			input: validLead(),
			setup: func(mr *mockRepo, mq *mockQueue) {
				mr.On("CreateLead", mock.Anything, mock.MatchedBy(func(l *domain.Lead) bool {
					return l.SessionID == "tg:1" && l.Company == "Acme"
				})).Return(true, nil).Once()
				mq.On("Enqueue", mock.Anything, jobs.TaskTypeLeadNotify).Return(nil, nil).Once()
			},
			wantCreated: true,
		},
		{
			name:  "repeat capture is a no-op",
			input: validLead(),
			setup: func(mr *mockRepo, _ *mockQueue) {
				mr.On("CreateLead", mock.Anything, mock.Anything).Return(false, nil).Once()
			},
		},
		{
			name:  "queue failure does not fail capture",
			input: validLead(),
			setup: func(mr *mockRepo, mq *mockQueue) {
				mr.On("CreateLead", mock.Anything, mock.Anything).Return(true, nil).Once()
				mq.On("Enqueue", mock.Anything, jobs.TaskTypeLeadNotify).Return(nil, errors.New("redis down")).Once()
			},
			wantCreated: true,
		},
		{
			name:    "incomplete profile",
			input:   LeadInput{SessionID: "tg:1", Channel: "telegram", Name: "Jane"},
			setup:   func(*mockRepo, *mockQueue) {},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mr, mq := &mockRepo{}, &mockQueue{}
			tc.setup(mr, mq)

			created, err := NewService(mr, mq, testLogger()).Capture(context.Background(), tc.input)

			assert.Equal(t, tc.wantCreated, created)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			mr.AssertExpectations(t)
			mq.AssertExpectations(t)
		})
	}
}

func TestService_CaptureRetriesDatabaseErrors(t *testing.T) {
	mr := &mockRepo{}
	mr.On("CreateLead", mock.Anything, mock.Anything).Return(false, errors.New("connection reset")).Once()
	mr.On("CreateLead", mock.Anything, mock.Anything).Return(true, nil).Once()

	created, err := NewService(mr, nil, testLogger()).Capture(context.Background(), validLead())

	require.NoError(t, err)
	assert.True(t, created)
	mr.AssertExpectations(t)
}

func TestService_CaptureGivesUp(t *testing.T) {
	mr := &mockRepo{}
	mr.On("CreateLead", mock.Anything, mock.Anything).Return(false, errors.New("connection refused"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewService(mr, nil, testLogger()).Capture(ctx, validLead())

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeLead, appErr.Code)
}

func TestService_SubmitContact(t *testing.T) {
	now := time.Unix(1717000000, 0).UTC()

	mr, mq := &mockRepo{}, &mockQueue{}
	mr.On("CreateContact", mock.Anything, mock.MatchedBy(func(req *domain.ContactRequest) bool {
		return req.TicketID == "DE-1717000000" && req.Email == "jane@acme.io"
	})).Return(nil).Once()
	mq.On("Enqueue", mock.Anything, jobs.TaskTypeLeadNotify).Return(nil, nil).Once()

	svc := NewService(mr, mq, testLogger())
	svc.now = func() time.Time { return now }

	receipt, err := svc.SubmitContact(context.Background(), ContactInput{
		Name:    " Jane ",
		Email:   "jane@acme.io",
		Company: "Acme",
		Message: "We need help with Kafka",
	})

	require.NoError(t, err)
	assert.Equal(t, "DE-1717000000", receipt.TicketID)
	assert.Equal(t, ContactThanks, receipt.Message)
	mr.AssertExpectations(t)
	mq.AssertExpectations(t)
}

func TestService_SubmitContactValidation(t *testing.T) {
	svc := NewService(&mockRepo{}, nil, testLogger())

	testCases := []struct {
		name        string
		input       ContactInput
		wantMissing []string
		wantInvalid []string
	}{
		{
			name:        "everything missing",
			input:       ContactInput{Email: "  "},
			wantMissing: []string{"name", "email", "company", "message"},
		},
		{
			name:        "bad email",
			input:       ContactInput{Name: "Jane", Email: "jane", Company: "Acme", Message: "hi"},
			wantInvalid: []string{"email"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitContact(context.Background(), tc.input)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.wantMissing, verr.Missing)
			assert.Equal(t, tc.wantInvalid, verr.Invalid)
		})
	}
}

func TestService_Export(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mr := &mockRepo{}
	mr.On("ListLeads", mock.Anything).Return([]domain.Lead{
		{ID: 1, SessionID: "tg:1", Channel: "telegram", Name: "Jane", Company: "Acme", Role: "Engineer", UseCase: "pipelines", CreatedAt: created},
		{ID: 2, SessionID: "http:2", Channel: "http", Name: "Bob", Company: "Beta", Role: "CTO", CreatedAt: created, NotifiedAt: &created},
	}, nil).Once()

	var buf bytes.Buffer
	n, err := NewService(mr, nil, testLogger()).Export(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][3])
	assert.Equal(t, "Jane", rows[1][3])
	assert.Equal(t, "2024-05-01T12:00:00Z", rows[2][7])
}
