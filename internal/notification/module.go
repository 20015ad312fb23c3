package notification

import (
	"context"

	"pulsecapture_backend/internal/events"
	"pulsecapture_backend/internal/settings"
	"pulsecapture_backend/platform/logger"
)

// SettingsProvider exposes the current notification settings.
type SettingsProvider interface {
	Snapshot() settings.Settings
}

// Module listens for lead events and pushes Slack alerts. It registers no
// HTTP routes.
type Module struct {
	notifier *Notifier
	settings SettingsProvider
	log      *logger.Logger
}

// NewModule wires the notifier to the event bus.
func NewModule(bus events.Bus, provider SettingsProvider, log *logger.Logger) *Module {
	m := &Module{
		notifier: NewNotifier(log),
		settings: provider,
		log:      log,
	}

	bus.Subscribe(events.LeadScoredName, events.HandlerFunc(m.handleLeadScored))
	return m
}

func (m *Module) handleLeadScored(ctx context.Context, event events.Event) error {
	scored, ok := event.(events.LeadScored)
	if !ok {
		return nil
	}

	current := m.settings.Snapshot()
	if !current.InstantAlerts || current.SlackWebhook == "" {
		return nil
	}

	if err := m.notifier.SendLeadScoredAlert(ctx, current.SlackWebhook,
		scored.LeadName, scored.Company, scored.FitBand, scored.UseCaseLabel, scored.FitScore); err != nil {
		m.log.Error("slack alert failed", "lead_id", scored.LeadID.String(), "error", err.Error())
		return err
	}
	return nil
}
