// Package domain holds the records the assistant persists.
package domain

import "time"

// Lead is a completed onboarding profile kept for follow-up by the data engineering team.
type Lead struct {
	ID         int64
	SessionID  string
	Channel    string
	Name       string
	Company    string
	Role       string
	UseCase    string
	CreatedAt  time.Time
	NotifiedAt *time.Time
}
