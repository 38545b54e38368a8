// Package leads stores completed profiles and contact requests and tells the team about them.
package leads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/Proton-105/dataeng-assistant/internal/domain"
	apperrors "github.com/Proton-105/dataeng-assistant/internal/errors"
	"github.com/Proton-105/dataeng-assistant/internal/jobs"
	"github.com/Proton-105/dataeng-assistant/internal/repository"
	"github.com/Proton-105/dataeng-assistant/pkg/metrics"
)

// ContactThanks is returned to everyone who submits a contact request.
const ContactThanks = "Thank you! Our team will reach out within 24 hours."

// ContactFields lists the fields a contact request must carry.
var ContactFields = []string{"name", "email", "company", "message"}

// LeadInput is a profile ready to be handed to the team.
type LeadInput struct {
	SessionID string `json:"session_id" validate:"required"`
	Channel   string `json:"channel" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Company   string `json:"company" validate:"required"`
	Role      string `json:"role" validate:"required"`
	UseCase   string `json:"use_case"`
}

// ContactInput is an explicit request to talk to an expert.
type ContactInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company" validate:"required"`
	Message string `json:"message" validate:"required"`
	UseCase string `json:"use_case"`
}

// ContactReceipt confirms a stored contact request.
type ContactReceipt struct {
	TicketID string
	Message  string
}

// ValidationError lists the fields that were missing or malformed.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "leads: " + strings.Join(parts, "; ")
}

// Service persists leads through the repository and queues notifications.
type Service struct {
	repo     repository.LeadRepository
	queue    jobs.Manager
	breaker  *apperrors.CircuitBreaker
	retry    apperrors.RetryPolicy
	validate *validator.Validate
	log      *slog.Logger
	now      func() time.Time
}

// NewService builds a lead service. A nil queue disables notifications.
func NewService(repo repository.LeadRepository, queue jobs.Manager, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	retry := apperrors.DefaultRetryPolicy
	retry.OnRetry = func(attempt int, err error) {
		log.Warn("lead storage failed, retrying", slog.Int("attempt", attempt), slog.Any("error", err))
	}

	return &Service{
		repo:     repo,
		queue:    queue,
		breaker:  apperrors.NewCircuitBreaker(apperrors.DefaultBreakerConfig),
		retry:    retry,
		validate: validate,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Capture stores a completed onboarding profile once per session. It reports whether a new lead
// was created.
func (s *Service) Capture(ctx context.Context, in LeadInput) (bool, error) {
	in = LeadInput{
		SessionID: strings.TrimSpace(in.SessionID),
		Channel:   strings.TrimSpace(in.Channel),
		Name:      strings.TrimSpace(in.Name),
		Company:   strings.TrimSpace(in.Company),
		Role:      strings.TrimSpace(in.Role),
		UseCase:   strings.TrimSpace(in.UseCase),
	}
	if err := s.check(in); err != nil {
		return false, err
	}

	lead := &domain.Lead{
		SessionID: in.SessionID,
		Channel:   in.Channel,
		Name:      in.Name,
		Company:   in.Company,
		Role:      in.Role,
		UseCase:   in.UseCase,
		CreatedAt: s.now(),
	}

	var created bool
	err := s.store(ctx, func() error {
		var err error
		created, err = s.repo.CreateLead(ctx, lead)
		return err
	})
	if err != nil {
		metrics.RecordLead("onboarding", "failed")
		return false, apperrors.NewLeadError("capture lead", err)
	}

	if !created {
		metrics.RecordLead("onboarding", "duplicate")
		return false, nil
	}

	metrics.RecordLead("onboarding", "created")
	s.log.InfoContext(ctx, "lead captured",
		slog.Int64("lead_id", lead.ID),
		slog.String("session_id", lead.SessionID),
		slog.String("company", lead.Company),
	)
	s.notify(ctx, jobs.KindLead, lead.ID)

	return true, nil
}

// SubmitContact validates and stores a contact request and returns its ticket.
func (s *Service) SubmitContact(ctx context.Context, in ContactInput) (ContactReceipt, error) {
	in = ContactInput{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Company: strings.TrimSpace(in.Company),
		Message: strings.TrimSpace(in.Message),
		UseCase: strings.TrimSpace(in.UseCase),
	}
	if err := s.check(in); err != nil {
		return ContactReceipt{}, err
	}

	now := s.now()
	req := &domain.ContactRequest{
		TicketID:  domain.TicketID(now),
		Name:      in.Name,
		Email:     in.Email,
		Company:   in.Company,
		Message:   in.Message,
		UseCase:   in.UseCase,
		CreatedAt: now,
	}

	if err := s.store(ctx, func() error { return s.repo.CreateContact(ctx, req) }); err != nil {
		metrics.RecordLead("contact", "failed")
		return ContactReceipt{}, apperrors.NewLeadError("submit contact request", err)
	}

	metrics.RecordLead("contact", "created")
	s.log.InfoContext(ctx, "contact request received",
		slog.String("ticket_id", req.TicketID),
		slog.String("company", req.Company),
		slog.String("email", req.Email),
	)
	s.notify(ctx, jobs.KindContact, req.ID)

	return ContactReceipt{TicketID: req.TicketID, Message: ContactThanks}, nil
}

func (s *Service) store(ctx context.Context, fn func() error) error {
	return s.breaker.Call(func() error {
		return s.retry.Do(ctx, func() error {
			if err := fn(); err != nil {
				return apperrors.NewDatabaseError(err)
			}
			return nil
		})
	})
}

func (s *Service) notify(ctx context.Context, kind string, id int64) {
	if s.queue == nil {
		return
	}

	task, err := jobs.NewLeadNotifyTask(kind, id)
	if err == nil {
		_, err = s.queue.Enqueue(ctx, task)
	}
	if err != nil {
		// the periodic sweep picks up leads whose notification never got queued
		s.log.WarnContext(ctx, "failed to queue notification", slog.String("kind", kind), slog.Int64("id", id), slog.Any("error", err))
	}
}

func (s *Service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			verr.Missing = append(verr.Missing, fe.Field())
		} else {
			verr.Invalid = append(verr.Invalid, fe.Field())
		}
	}
	return verr
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}
