// Package chat runs conversation turns against stored sessions.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Proton-105/dataeng-assistant/internal/conversation"
	apperrors "github.com/Proton-105/dataeng-assistant/internal/errors"
	"github.com/Proton-105/dataeng-assistant/internal/leads"
	"github.com/Proton-105/dataeng-assistant/internal/session"
	"github.com/Proton-105/dataeng-assistant/pkg/metrics"
)

// LeadRecorder receives a profile once its owner reaches the answering stage.
type LeadRecorder interface {
	Capture(ctx context.Context, in leads.LeadInput) (bool, error)
}

// CaptureTimeout bounds one lead capture, retries included.
const CaptureTimeout = 10 * time.Second

// Result is the outcome of one Send.
type Result struct {
	Session *session.Session
	Turn    conversation.Turn
}

// Service ties the conversation engine to session storage.
type Service struct {
	engine   *conversation.Engine
	sessions *session.Manager
	leads    LeadRecorder
	log      *slog.Logger
	now      func() time.Time
}

// NewService builds a chat service. A nil recorder disables lead capture.
func NewService(engine *conversation.Engine, sessions *session.Manager, recorder LeadRecorder, log *slog.Logger) *Service {
	if engine == nil {
		engine = conversation.NewEngine(nil)
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		engine:   engine,
		sessions: sessions,
		leads:    recorder,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Engine exposes the underlying conversation engine.
func (s *Service) Engine() *conversation.Engine {
	return s.engine
}

// Start opens a fresh conversation for id, replacing any existing one.
func (s *Service) Start(ctx context.Context, id string, channel session.Channel) (*session.Session, conversation.Message, error) {
	var welcome conversation.Message

	sess, err := s.sessions.Update(ctx, id, func(*session.Session) (*session.Session, error) {
		sess := s.open(id, channel)
		welcome = sess.Conversation.Transcript[0]
		return sess, nil
	})
	if err != nil {
		return nil, conversation.Message{}, s.wrap("start session", err)
	}

	metrics.RecordTurn(string(conversation.StateGreeting), "start")
	return sess, welcome, nil
}

// Send feeds text into the session's conversation and stores the result. A missing session is
// opened first so its transcript starts with the welcome message.
func (s *Service) Send(ctx context.Context, id string, channel session.Channel, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, conversation.ErrEmptyInput
	}

	var turn conversation.Turn
	sess, err := s.sessions.Update(ctx, id, func(current *session.Session) (*session.Session, error) {
		if current == nil {
			current = s.open(id, channel)
		}

		var err error
		turn, err = s.engine.Respond(current.Conversation, text)
		if err != nil {
			return nil, err
		}

		current.Conversation = turn.Conversation
		current.UpdatedAt = s.now()
		return current, nil
	})
	if err != nil {
		if errors.Is(err, conversation.ErrEmptyInput) {
			return Result{}, err
		}
		return Result{}, s.wrap("send message", err)
	}

	if sess.Conversation.State == conversation.StateAnswering && !sess.LeadCaptured && s.capture(ctx, sess) {
		sess = s.markCaptured(ctx, sess)
	}

	s.record(ctx, sess, turn)
	return Result{Session: sess, Turn: turn}, nil
}

// Reset forgets the session entirely.
func (s *Service) Reset(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return s.wrap("reset session", err)
	}
	return nil
}

// Session returns the stored session.
func (s *Service) Session(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, err
		}
		return nil, s.wrap("load session", err)
	}
	return sess, nil
}

// Profile returns what has been collected about the user so far.
func (s *Service) Profile(ctx context.Context, id string) (conversation.Profile, conversation.State, error) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return conversation.Profile{}, "", err
	}
	return sess.Conversation.Profile, sess.Conversation.State, nil
}

// Transcript returns the full message log of the session.
func (s *Service) Transcript(ctx context.Context, id string) (conversation.Transcript, error) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Conversation.Transcript, nil
}

func (s *Service) open(id string, channel session.Channel) *session.Session {
	convo, _ := s.engine.Open()
	return session.New(id, channel, convo, s.now())
}

func (s *Service) capture(ctx context.Context, sess *session.Session) bool {
	if s.leads == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, CaptureTimeout)
	defer cancel()

	profile := sess.Conversation.Profile
	_, err := s.leads.Capture(ctx, leads.LeadInput{
		SessionID: sess.ID,
		Channel:   string(sess.Channel),
		Name:      profile.Name,
		Company:   profile.Company,
		Role:      profile.Role,
		UseCase:   profile.UseCase,
	})
	if err != nil {
		s.log.WarnContext(ctx, "lead capture failed", slog.String("session_id", sess.ID), slog.Any("error", err))
		return false
	}
	return true
}

// markCaptured flags the stored session after a successful capture. A failure only means the
// next turn captures again, which the lead store treats as a no-op.
func (s *Service) markCaptured(ctx context.Context, sess *session.Session) *session.Session {
	marked, err := s.sessions.Update(ctx, sess.ID, func(current *session.Session) (*session.Session, error) {
		if current == nil {
			return nil, session.ErrSessionNotFound
		}
		current.LeadCaptured = true
		return current, nil
	})
	if err != nil {
		s.log.WarnContext(ctx, "failed to flag captured lead", slog.String("session_id", sess.ID), slog.Any("error", err))
		return sess
	}
	return marked
}

func (s *Service) record(ctx context.Context, sess *session.Session, turn conversation.Turn) {
	state := string(turn.Conversation.State)

	outcome := "scripted"
	if turn.TopicID != "" {
		outcome = "topic"
		metrics.RecordTopicMatch(turn.TopicID)
	}
	metrics.RecordTurn(state, outcome)

	if turn.Transitioned() {
		metrics.RecordStateTransition(string(turn.From), state)
	}

	s.log.DebugContext(ctx, "turn completed",
		slog.String("session_id", sess.ID),
		slog.String("from", string(turn.From)),
		slog.String("to", state),
		slog.String("topic", turn.TopicID),
	)
}

func (s *Service) wrap(op string, err error) error {
	switch {
	case errors.Is(err, session.ErrSessionLocked):
		return apperrors.NewSessionBusyError(err)
	case errors.Is(err, session.ErrEmptyID):
		return apperrors.NewValidationError("session id is required")
	default:
		return apperrors.NewStateError(op, err)
	}
}
