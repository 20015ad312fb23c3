package settings

import (
	"context"
	"errors"
	"sync"

	"pulsecapture_backend/platform/apperr"
	"pulsecapture_backend/platform/logger"
)

// DefaultEmailTemplate is the outreach template used until an operator saves
// their own. {{name}} is replaced with the lead's name.
const DefaultEmailTemplate = `Hi {{name}},

Thanks for reaching out. We looked at the problem you described and believe we can help.

Would you be open to a short call this week?

Your Sales Team`

// Settings is the resolved application settings snapshot.
type Settings struct {
	SlackWebhook       string `json:"slack_webhook"`
	OpenAIAPIKey       string `json:"openai_api_key"`
	EmailNotifications bool   `json:"email_notifications"`
	InstantAlerts      bool   `json:"instant_alerts"`
	AdminEmail         string `json:"admin_email"`
	EmailTemplate      string `json:"email_template"`
}

// UpdateRequest carries the editable settings. Only fields present in the
// request are changed.
type UpdateRequest struct {
	SlackWebhook       *string `json:"slack_webhook" validate:"omitempty,url,max=500"`
	OpenAIAPIKey       *string `json:"openai_api_key" validate:"omitempty,max=255"`
	EmailNotifications *bool   `json:"email_notifications"`
	InstantAlerts      *bool   `json:"instant_alerts"`
	AdminEmail         *string `json:"admin_email" validate:"omitempty,email,max=255"`
	EmailTemplate      *string `json:"email_template" validate:"omitempty,max=5000"`
}

// Service caches the current settings in memory. Reads never hit the
// database; updates persist first and then swap the snapshot atomically.
type Service struct {
	repo Store
	log  *logger.Logger

	mu      sync.RWMutex
	current Settings
}

func NewService(repo Store, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		log:     log,
		current: defaults(),
	}
}

func defaults() Settings {
	return Settings{
		EmailNotifications: true,
		InstantAlerts:      true,
		EmailTemplate:      DefaultEmailTemplate,
	}
}

// Load populates the cache from the database. Called once at startup; a
// missing row leaves the defaults in place.
func (s *Service) Load(ctx context.Context) error {
	rec, err := s.repo.GetLatest(ctx)
	if errors.Is(err, ErrNoSettings) {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = fromRecord(rec)
	s.mu.Unlock()
	return nil
}

// Snapshot returns the current settings.
func (s *Service) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update merges the request into the current settings, persists the result
// and refreshes the cache. Readers see either the old or the new snapshot,
// never a partial one.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	if req.SlackWebhook != nil {
		next.SlackWebhook = *req.SlackWebhook
	}
	if req.OpenAIAPIKey != nil {
		next.OpenAIAPIKey = *req.OpenAIAPIKey
	}
	if req.EmailNotifications != nil {
		next.EmailNotifications = *req.EmailNotifications
	}
	if req.InstantAlerts != nil {
		next.InstantAlerts = *req.InstantAlerts
	}
	if req.AdminEmail != nil {
		next.AdminEmail = *req.AdminEmail
	}
	if req.EmailTemplate != nil {
		next.EmailTemplate = *req.EmailTemplate
	}

	saved, err := s.repo.Save(ctx, toRecord(next))
	if err != nil {
		s.log.DatabaseError("save settings", err)
		return Settings{}, apperr.Internal("Failed to save settings")
	}

	s.current = fromRecord(saved)
	return s.current, nil
}

func fromRecord(rec Record) Settings {
	out := Settings{
		EmailNotifications: rec.EmailNotifications,
		InstantAlerts:      rec.InstantAlerts,
		EmailTemplate:      DefaultEmailTemplate,
	}
	if rec.SlackWebhook != nil {
		out.SlackWebhook = *rec.SlackWebhook
	}
	if rec.OpenAIAPIKey != nil {
		out.OpenAIAPIKey = *rec.OpenAIAPIKey
	}
	if rec.AdminEmail != nil {
		out.AdminEmail = *rec.AdminEmail
	}
	if rec.EmailTemplate != nil && *rec.EmailTemplate != "" {
		out.EmailTemplate = *rec.EmailTemplate
	}
	return out
}

func toRecord(set Settings) Record {
	rec := Record{
		EmailNotifications: set.EmailNotifications,
		InstantAlerts:      set.InstantAlerts,
	}
	if set.SlackWebhook != "" {
		rec.SlackWebhook = &set.SlackWebhook
	}
	if set.OpenAIAPIKey != "" {
		rec.OpenAIAPIKey = &set.OpenAIAPIKey
	}
	if set.AdminEmail != "" {
		rec.AdminEmail = &set.AdminEmail
	}
	if set.EmailTemplate != "" {
		rec.EmailTemplate = &set.EmailTemplate
	}
	return rec
}
