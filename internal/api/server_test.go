package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/dataeng-assistant/internal/chat"
	"github.com/Proton-105/dataeng-assistant/internal/conversation"
	apperrors "github.com/Proton-105/dataeng-assistant/internal/errors"
	"github.com/Proton-105/dataeng-assistant/internal/health"
	"github.com/Proton-105/dataeng-assistant/internal/idempotency"
	"github.com/Proton-105/dataeng-assistant/internal/knowledge"
	"github.com/Proton-105/dataeng-assistant/internal/leads"
	"github.com/Proton-105/dataeng-assistant/internal/session"
	"github.com/Proton-105/dataeng-assistant/pkg/config"
)

type mockContacts struct {
	mock.Mock
}

func (m *mockContacts) SubmitContact(ctx context.Context, in leads.ContactInput) (leads.ContactReceipt, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(leads.ContactReceipt), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()

	if deps.Chat == nil {
		manager := session.NewManager(session.NewMemoryStorage(session.DefaultTTL), testLogger(), nil)
		deps.Chat = chat.NewService(conversation.NewEngine(nil), manager, nil, testLogger())
	}
	if deps.Contacts == nil {
		deps.Contacts = &mockContacts{}
	}

	return NewServer(config.ServerConfig{}, config.AppConfig{Name: "dataeng-assistant", Version: "1.2.3"}, deps, testLogger())
}

func do(t *testing.T, s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestChat_RejectsBlankMessage(t *testing.T) {
	s := newTestServer(t, Deps{})

	for _, body := range []string{`{}`, `{"message":"   "}`} {
		rec := do(t, s, http.MethodPost, "/api/chat", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Message is required", decode[errorResponse](t, rec).Error)
	}
}

func TestChat_GeneratesSessionAndContinuesIt(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s, http.MethodPost, "/api/chat", `{"message":"Get started"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	first := decode[chatResponse](t, rec)
	require.NotEmpty(t, first.SessionID)
	assert.Equal(t, string(conversation.StateCollectingInfo), first.State)
	assert.NotZero(t, first.Timestamp)
	assert.NotNil(t, first.QuickReplies)

	rec = do(t, s, http.MethodPost, "/api/chat", `{"message":"Jane","session_id":"`+first.SessionID+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	second := decode[chatResponse](t, rec)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Contains(t, second.Message, "Jane")
}

func TestChat_TopicMatch(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s, http.MethodPost, "/api/chat", `{"message":"Tell me about Kafka","session_id":"abc"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[chatResponse](t, rec)
	streaming, _ := knowledge.Default().Topic("streaming")
	assert.Equal(t, streaming.Response, resp.Message)
	assert.Equal(t, "streaming", resp.TopicID)
	assert.Equal(t, "abc", resp.SessionID)
	assert.Equal(t, string(conversation.StateGreeting), resp.State)
}

type stubChat struct {
	err error
}

func (s stubChat) Send(context.Context, string, session.Channel, string) (chat.Result, error) {
	return chat.Result{}, s.err
}

func TestChat_MapsServiceErrors(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "session busy", err: apperrors.NewSessionBusyError(session.ErrSessionLocked), want: http.StatusConflict},
		{name: "validation", err: apperrors.NewValidationError("session id is required"), want: http.StatusBadRequest},
		{name: "state", err: apperrors.NewStateError("send message", errors.New("redis down")), want: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, Deps{Chat: stubChat{err: tc.err}})

			rec := do(t, s, http.MethodPost, "/api/chat", `{"message":"hi"}`, nil)
			assert.Equal(t, tc.want, rec.Code)
			assert.NotEmpty(t, decode[errorResponse](t, rec).Error)
		})
	}
}

func TestTopics(t *testing.T) {
	s := newTestServer(t, Deps{})
	e := s.Echo()

	req := httptest.NewRequest(http.MethodGet, "/api/topics", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, s.topics(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[topicsResponse](t, rec)
	base := knowledge.Default()
	assert.Equal(t, base.Len(), resp.Count)
	require.Len(t, resp.Topics, base.Len())
	assert.Equal(t, "pipelines", resp.Topics[0].ID)
	assert.True(t, strings.HasSuffix(resp.Topics[0].Preview, "..."))
}

func TestSuggest(t *testing.T) {
	s := newTestServer(t, Deps{})

	testCases := []struct {
		context string
		first   string
	}{
		{context: "Our Pipeline keeps failing", first: "How do I monitor pipeline failures?"},
		{context: "kafka lag", first: "How do I handle out-of-order events?"},
		{context: "moving to GCP", first: "What are best practices for cloud cost optimization?"},
		{context: "", first: "Tell me about data pipelines"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.context, func(t *testing.T) {
			body, _ := json.Marshal(suggestRequest{Context: tc.context})
			rec := do(t, s, http.MethodPost, "/api/suggest", string(body), nil)
			require.Equal(t, http.StatusOK, rec.Code)

			resp := decode[map[string][]string](t, rec)
			require.Len(t, resp["suggestions"], 3)
			assert.Equal(t, tc.first, resp["suggestions"][0])
		})
	}
}

func TestContact_MissingFields(t *testing.T) {
	contacts := &mockContacts{}
	contacts.On("SubmitContact", mock.Anything, mock.Anything).
		Return(leads.ContactReceipt{}, &leads.ValidationError{Missing: []string{"email"}})
	s := newTestServer(t, Deps{Contacts: contacts})

	rec := do(t, s, http.MethodPost, "/api/contact", `{"name":"Jane"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "Missing required fields", resp.Error)
	assert.Equal(t, []string{"name", "email", "company", "message"}, resp.Required)
}

func TestContact_InvalidEmail(t *testing.T) {
	contacts := &mockContacts{}
	contacts.On("SubmitContact", mock.Anything, mock.Anything).
		Return(leads.ContactReceipt{}, &leads.ValidationError{Invalid: []string{"email"}})
	s := newTestServer(t, Deps{Contacts: contacts})

	rec := do(t, s, http.MethodPost, "/api/contact", `{"name":"Jane","email":"nope","company":"Acme","message":"hi"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"email"}, decode[errorResponse](t, rec).Invalid)
}

func TestContact_Success(t *testing.T) {
	contacts := &mockContacts{}
	want := leads.ContactInput{Name: "Jane", Email: "jane@acme.io", Company: "Acme", Message: "Help with Kafka", UseCase: "streaming"}
	contacts.On("SubmitContact", mock.Anything, want).
		Return(leads.ContactReceipt{TicketID: "DE-1700000000", Message: leads.ContactThanks}, nil).Once()
	s := newTestServer(t, Deps{Contacts: contacts})

	body, _ := json.Marshal(want)
	rec := do(t, s, http.MethodPost, "/api/contact", string(body), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[contactResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "DE-1700000000", resp.TicketID)
	assert.Equal(t, leads.ContactThanks, resp.Message)
	contacts.AssertExpectations(t)
}

func TestContact_IdempotencyKeyReplaysReceipt(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	contacts := &mockContacts{}
	contacts.On("SubmitContact", mock.Anything, mock.Anything).
		Return(leads.ContactReceipt{TicketID: "DE-42", Message: leads.ContactThanks}, nil).Once()

	s := newTestServer(t, Deps{
		Contacts:    contacts,
		Idempotency: idempotency.NewManager(idempotency.NewRedisStore(client, testLogger()), testLogger()),
	})

	body := `{"name":"Jane","email":"jane@acme.io","company":"Acme","message":"hi"}`
	headers := map[string]string{HeaderIdempotencyKey: "form-123"}

	for i := 0; i < 2; i++ {
		rec := do(t, s, http.MethodPost, "/api/contact", body, headers)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "DE-42", decode[contactResponse](t, rec).TicketID)
	}

	contacts.AssertNumberOfCalls(t, "SubmitContact", 1)
}

func TestContact_StorageFailure(t *testing.T) {
	contacts := &mockContacts{}
	contacts.On("SubmitContact", mock.Anything, mock.Anything).
		Return(leads.ContactReceipt{}, apperrors.NewLeadError("submit contact request", errors.New("db down")))
	s := newTestServer(t, Deps{Contacts: contacts})

	rec := do(t, s, http.MethodPost, "/api/contact", `{"name":"a","email":"a@b.co","company":"c","message":"d"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "couldn't save")
}

func TestAnalytics(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s, http.MethodPost, "/api/analytics", `{"event_type":"chat_opened"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]bool{"tracked": true}, decode[map[string]bool](t, rec))
}

func TestHealth(t *testing.T) {
	checker := health.NewChecker(testLogger())
	checker.AddCheck("knowledge", health.KnowledgeChecker(knowledge.Default()))
	s := newTestServer(t, Deps{Health: checker})

	rec := do(t, s, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[healthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, serviceName, resp.Service)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, map[string]string{"knowledge": health.StatusOK}, resp.Checks)

	checker.AddCheck("postgres", health.CheckFunc(func(context.Context) error { return errors.New("connection refused") }))

	rec = do(t, s, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp = decode[healthResponse](t, rec)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["postgres"])
}

func TestProbesAndMetrics(t *testing.T) {
	s := newTestServer(t, Deps{})

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/livez", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/readyz", "", nil).Code)

	rec := do(t, s, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decode[errorResponse](t, rec).Error)
}
