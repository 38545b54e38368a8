package api

import (
	stdErrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Proton-105/dataeng-assistant/internal/conversation"
	"github.com/Proton-105/dataeng-assistant/internal/session"
)

const sessionPrefix = "web:"

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Message      string   `json:"message"`
	QuickReplies []string `json:"quick_replies"`
	Timestamp    float64  `json:"timestamp"`
	SessionID    string   `json:"session_id"`
	State        string   `json:"state"`
	TopicID      string   `json:"topic_id,omitempty"`
}

func (s *Server) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Message is required")
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx := c.Request().Context()
	result, err := s.deps.Chat.Send(ctx, sessionPrefix+sessionID, session.ChannelHTTP, req.Message)
	if err != nil {
		if stdErrors.Is(err, conversation.ErrEmptyInput) {
			return echo.NewHTTPError(http.StatusBadRequest, "Message is required")
		}
		return err
	}

	if err := s.deps.Pacer.Pace(ctx, result.Turn.Reply, nil); err != nil {
		return err
	}

	msg := result.Turn.Message
	replies := msg.SuggestedReplies
	if replies == nil {
		replies = []string{}
	}

	return c.JSON(http.StatusOK, chatResponse{
		Message:      msg.Text,
		QuickReplies: replies,
		Timestamp:    unixSeconds(msg.Timestamp),
		SessionID:    sessionID,
		State:        string(result.Turn.Conversation.State),
		TopicID:      result.Turn.TopicID,
	})
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
