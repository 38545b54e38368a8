package domain

import (
	"fmt"
	"time"
)

// ContactRequest is an explicit request to be contacted by an expert.
type ContactRequest struct {
	ID         int64
	TicketID   string
	Name       string
	Email      string
	Company    string
	Message    string
	UseCase    string
	CreatedAt  time.Time
	NotifiedAt *time.Time
}

// TicketID formats the reference handed back to the requester.
func TicketID(at time.Time) string {
	return fmt.Sprintf("DE-%d", at.Unix())
}
