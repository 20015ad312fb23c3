// Package settings stores the operator-editable application settings.
package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoSettings is returned when no settings row has been saved yet.
var ErrNoSettings = errors.New("no settings saved")

// Record is a persisted settings row.
type Record struct {
	SlackWebhook       *string
	OpenAIAPIKey       *string
	EmailNotifications bool
	InstantAlerts      bool
	AdminEmail         *string
	EmailTemplate      *string
}

// Store is the persistence contract for settings.
type Store interface {
	GetLatest(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) (Record, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

const recordColumns = `slack_webhook, openai_api_key, email_notifications, instant_alerts, admin_email, email_template`

// GetLatest returns the most recently saved settings row.
func (r *Repository) GetLatest(ctx context.Context) (Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM settings
		ORDER BY updated_at DESC
		LIMIT 1
	`).Scan(&rec.SlackWebhook, &rec.OpenAIAPIKey, &rec.EmailNotifications,
		&rec.InstantAlerts, &rec.AdminEmail, &rec.EmailTemplate)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNoSettings
	}
	return rec, err
}

// Save updates the latest settings row, inserting one if none exists.
func (r *Repository) Save(ctx context.Context, rec Record) (Record, error) {
	var saved Record
	err := r.pool.QueryRow(ctx, `
		UPDATE settings SET
			slack_webhook = $1, openai_api_key = $2, email_notifications = $3,
			instant_alerts = $4, admin_email = $5, email_template = $6,
			updated_at = now()
		WHERE id = (SELECT id FROM settings ORDER BY updated_at DESC LIMIT 1)
		RETURNING `+recordColumns,
		rec.SlackWebhook, rec.OpenAIAPIKey, rec.EmailNotifications,
		rec.InstantAlerts, rec.AdminEmail, rec.EmailTemplate,
	).Scan(&saved.SlackWebhook, &saved.OpenAIAPIKey, &saved.EmailNotifications,
		&saved.InstantAlerts, &saved.AdminEmail, &saved.EmailTemplate)
	if errors.Is(err, pgx.ErrNoRows) {
		err = r.pool.QueryRow(ctx, `
			INSERT INTO settings (`+recordColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+recordColumns,
			rec.SlackWebhook, rec.OpenAIAPIKey, rec.EmailNotifications,
			rec.InstantAlerts, rec.AdminEmail, rec.EmailTemplate,
		).Scan(&saved.SlackWebhook, &saved.OpenAIAPIKey, &saved.EmailNotifications,
			&saved.InstantAlerts, &saved.AdminEmail, &saved.EmailTemplate)
	}
	return saved, err
}
