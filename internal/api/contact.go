package api

import (
	"context"
	stdErrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Proton-105/dataeng-assistant/internal/idempotency"
	"github.com/Proton-105/dataeng-assistant/internal/leads"
	"github.com/Proton-105/dataeng-assistant/pkg/metrics"
)

// HeaderIdempotencyKey lets clients retry a contact submission without creating a second ticket.
const HeaderIdempotencyKey = "Idempotency-Key"

const contactKeyTTL = 24 * time.Hour

type contactResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	TicketID string `json:"ticket_id"`
}

func (s *Server) contact(c echo.Context) error {
	var in leads.ContactInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body")
	}

	ctx := c.Request().Context()
	submit := func() (contactResponse, error) {
		receipt, err := s.deps.Contacts.SubmitContact(ctx, in)
		if err != nil {
			return contactResponse{}, err
		}
		return contactResponse{Success: true, Message: receipt.Message, TicketID: receipt.TicketID}, nil
	}

	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if key == "" || s.deps.Idempotency == nil {
		resp, err := submit()
		if err != nil {
			return s.contactError(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	}

	result, err := s.deps.Idempotency.Execute(ctx, idempotency.GenerateKey("contact", key), contactKeyTTL,
		func(context.Context) (any, error) { return submit() })
	switch {
	case stdErrors.Is(err, idempotency.ErrRequestInProgress):
		return echo.NewHTTPError(http.StatusConflict, "A request with this Idempotency-Key is in progress")
	case err != nil:
		return s.contactError(c, err)
	}

	var resp contactResponse
	if err := result.Decode(&resp); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) contactError(c echo.Context, err error) error {
	var verr *leads.ValidationError
	if !stdErrors.As(err, &verr) {
		return err
	}

	if len(verr.Missing) > 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:    "Missing required fields",
			Required: leads.ContactFields,
		})
	}
	return c.JSON(http.StatusBadRequest, errorResponse{
		Error:   "Invalid fields",
		Invalid: verr.Invalid,
	})
}

type analyticsRequest struct {
	EventType string `json:"event_type"`
}

func (s *Server) analytics(c echo.Context) error {
	var req analyticsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body")
	}

	eventType := strings.TrimSpace(req.EventType)
	metrics.RecordAnalyticsEvent(eventType)
	s.log.InfoContext(c.Request().Context(), "analytics event", "event_type", eventType)

	return c.JSON(http.StatusOK, map[string]bool{"tracked": true})
}
