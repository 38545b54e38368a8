package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Proton-105/dataeng-assistant/internal/domain"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// LeadRepository defines persistence operations for leads and contact requests.
type LeadRepository interface {
	// CreateLead stores the lead once per session; a repeat for the same session is a no-op
	// that reports created=false.
	CreateLead(ctx context.Context, lead *domain.Lead) (created bool, err error)
	ListLeads(ctx context.Context) ([]domain.Lead, error)
	MarkLeadNotified(ctx context.Context, id int64, at time.Time) error
	CreateContact(ctx context.Context, req *domain.ContactRequest) error
	MarkContactNotified(ctx context.Context, id int64, at time.Time) error
}

type leadRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewLeadRepository creates a new SQL-backed lead repository.
func NewLeadRepository(db *sql.DB, log *slog.Logger) LeadRepository {
	if log == nil {
		log = slog.Default()
	}

	return &leadRepository{
		db:  db,
		log: log,
	}
}

// CreateLead persists a new lead and fills its id and creation time.
func (r *leadRepository) CreateLead(ctx context.Context, lead *domain.Lead) (bool, error) {
	const query = `
		INSERT INTO leads (session_id, channel, name, company, role, use_case, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO NOTHING
		RETURNING id
	`

	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		lead.SessionID,
		lead.Channel,
		lead.Name,
		lead.Company,
		lead.Role,
		lead.UseCase,
		lead.CreatedAt,
	).Scan(&lead.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		r.log.Error("failed to create lead", slog.String("session_id", lead.SessionID), slog.Any("error", err))
		return false, fmt.Errorf("insert lead: %w", err)
	}

	return true, nil
}

// ListLeads returns every lead, oldest first.
func (r *leadRepository) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	const query = `
		SELECT id, session_id, channel, name, company, role, use_case, created_at, notified_at
		FROM leads
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Error("failed to list leads", slog.Any("error", err))
		return nil, fmt.Errorf("select leads: %w", err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		var (
			lead       domain.Lead
			notifiedAt sql.NullTime
		)
		if err := rows.Scan(
			&lead.ID,
			&lead.SessionID,
			&lead.Channel,
			&lead.Name,
			&lead.Company,
			&lead.Role,
			&lead.UseCase,
			&lead.CreatedAt,
			&notifiedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		if notifiedAt.Valid {
			at := notifiedAt.Time
			lead.NotifiedAt = &at
		}
		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}

	return leads, nil
}

// MarkLeadNotified records when the team was told about the lead.
func (r *leadRepository) MarkLeadNotified(ctx context.Context, id int64, at time.Time) error {
	return r.markNotified(ctx, "leads", id, at)
}

// CreateContact persists a contact request and fills its id.
func (r *leadRepository) CreateContact(ctx context.Context, req *domain.ContactRequest) error {
	const query = `
		INSERT INTO contact_requests (ticket_id, name, email, company, message, use_case, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}

	if err := r.db.QueryRowContext(
		ctx,
		query,
		req.TicketID,
		req.Name,
		req.Email,
		req.Company,
		req.Message,
		req.UseCase,
		req.CreatedAt,
	).Scan(&req.ID); err != nil {
		r.log.Error("failed to create contact request", slog.String("ticket_id", req.TicketID), slog.Any("error", err))
		return fmt.Errorf("insert contact request: %w", err)
	}

	return nil
}

// MarkContactNotified records when the team was told about the contact request.
func (r *leadRepository) MarkContactNotified(ctx context.Context, id int64, at time.Time) error {
	return r.markNotified(ctx, "contact_requests", id, at)
}

func (r *leadRepository) markNotified(ctx context.Context, table string, id int64, at time.Time) error {
	// table is one of two constants above
	query := fmt.Sprintf(`UPDATE %s SET notified_at = $1 WHERE id = $2`, table)

	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		r.log.Error("failed to mark notified", slog.String("table", table), slog.Int64("id", id), slog.Any("error", err))
		return fmt.Errorf("update %s notified_at: %w", table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
