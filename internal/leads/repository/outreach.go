package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNoOutreach is returned when a lead has no recorded outreach yet.
var ErrNoOutreach = errors.New("no outreach recorded")

type Outreach struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	EmailSubject *string
	EmailBody    *string
	Status       string
	SentAt       time.Time
}

type InsertOutreachParams struct {
	LeadID       uuid.UUID
	EmailSubject *string
	EmailBody    *string
	Status       string
}

// InsertOutreach records an outreach email sent by the workflow engine.
func (r *Repository) InsertOutreach(ctx context.Context, params InsertOutreachParams) (Outreach, error) {
	var item Outreach
	err := r.pool.QueryRow(ctx, `
		INSERT INTO outreach (lead_id, email_subject, email_body, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lead_id, email_subject, email_body, status, sent_at
	`, params.LeadID, params.EmailSubject, params.EmailBody, params.Status,
	).Scan(&item.ID, &item.LeadID, &item.EmailSubject, &item.EmailBody, &item.Status, &item.SentAt)
	return item, err
}

// LatestOutreach returns the most recent outreach for a lead.
func (r *Repository) LatestOutreach(ctx context.Context, leadID uuid.UUID) (Outreach, error) {
	var item Outreach
	err := r.pool.QueryRow(ctx, `
		SELECT id, lead_id, email_subject, email_body, status, sent_at
		FROM outreach
		WHERE lead_id = $1
		ORDER BY sent_at DESC
		LIMIT 1
	`, leadID,
	).Scan(&item.ID, &item.LeadID, &item.EmailSubject, &item.EmailBody, &item.Status, &item.SentAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Outreach{}, ErrNoOutreach
	}
	return item, err
}
