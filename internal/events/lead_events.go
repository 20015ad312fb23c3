package events

import "github.com/google/uuid"

// Event names for lead lifecycle events.
const (
	LeadCapturedName     = "lead.captured"
	LeadScoredName       = "lead.scored"
	OutreachRecordedName = "lead.outreach_recorded"
)

// LeadCaptured is published after a new lead is persisted.
type LeadCaptured struct {
	BaseEvent
	LeadID  uuid.UUID `json:"lead_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Company string    `json:"company"`
}

// EventName returns the unique event identifier.
func (e LeadCaptured) EventName() string { return LeadCapturedName }

// LeadScored is published after scoring results are applied to a lead.
type LeadScored struct {
	BaseEvent
	LeadID       uuid.UUID `json:"lead_id"`
	LeadName     string    `json:"lead_name"`
	Company      string    `json:"company"`
	FitScore     int       `json:"fit_score"`
	FitBand      string    `json:"fit_band"`
	UseCaseLabel string    `json:"use_case_label"`
}

// EventName returns the unique event identifier.
func (e LeadScored) EventName() string { return LeadScoredName }

// OutreachRecorded is published after an outreach email is recorded for a lead.
type OutreachRecorded struct {
	BaseEvent
	LeadID  uuid.UUID `json:"lead_id"`
	Subject string    `json:"subject"`
}

// EventName returns the unique event identifier.
func (e OutreachRecorded) EventName() string { return OutreachRecordedName }
