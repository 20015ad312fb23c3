package settings

import (
	"context"
	"strings"
	"sync"
	"testing"

	"pulsecapture_backend/platform/logger"
)

type memoryStore struct {
	mu    sync.Mutex
	rec   *Record
	saves int
}

func (s *memoryStore) GetLatest(_ context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return Record{}, ErrNoSettings
	}
	return *s.rec, nil
}

func (s *memoryStore) Save(_ context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = &rec
	s.saves++
	return rec, nil
}

func strptr(s string) *string { return &s }

func boolptr(b bool) *bool { return &b }

func TestSnapshotDefaults(t *testing.T) {
	svc := NewService(&memoryStore{}, logger.New("test"))

	if err := svc.Load(t.Context()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	current := svc.Snapshot()
	if !current.EmailNotifications || !current.InstantAlerts {
		t.Errorf("notification toggles must default on: %+v", current)
	}
	if !strings.Contains(current.EmailTemplate, "{{name}}") {
		t.Error("default email template must contain the {{name}} placeholder")
	}
	if current.SlackWebhook != "" || current.OpenAIAPIKey != "" {
		t.Error("integrations must default empty")
	}
}

func TestLoadExistingSettings(t *testing.T) {
	store := &memoryStore{rec: &Record{
		SlackWebhook:       strptr("https://hooks.slack.test/T123"),
		EmailNotifications: false,
		InstantAlerts:      true,
		EmailTemplate:      strptr("Hello {{name}}"),
	}}
	svc := NewService(store, logger.New("test"))

	if err := svc.Load(t.Context()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	current := svc.Snapshot()
	if current.SlackWebhook != "https://hooks.slack.test/T123" {
		t.Errorf("slack_webhook = %q", current.SlackWebhook)
	}
	if current.EmailNotifications {
		t.Error("email_notifications must load as false")
	}
	if current.EmailTemplate != "Hello {{name}}" {
		t.Errorf("email_template = %q", current.EmailTemplate)
	}
}

func TestUpdateMergesAndPersists(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store, logger.New("test"))

	saved, err := svc.Update(t.Context(), UpdateRequest{
		SlackWebhook: strptr("https://hooks.slack.test/T999"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if saved.SlackWebhook != "https://hooks.slack.test/T999" {
		t.Errorf("slack_webhook = %q", saved.SlackWebhook)
	}
	if !saved.InstantAlerts {
		t.Error("untouched fields must keep their values")
	}

	// second partial update must not clobber the first
	saved, err = svc.Update(t.Context(), UpdateRequest{InstantAlerts: boolptr(false)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if saved.SlackWebhook != "https://hooks.slack.test/T999" {
		t.Error("partial update clobbered slack_webhook")
	}
	if saved.InstantAlerts {
		t.Error("instant_alerts not updated")
	}

	if store.saves != 2 {
		t.Errorf("saves = %d, want 2", store.saves)
	}
}

func TestSnapshotReflectsUpdate(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store, logger.New("test"))

	before := svc.Snapshot()
	if _, err := svc.Update(t.Context(), UpdateRequest{SlackWebhook: strptr("https://hooks.slack.test/A")}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	after := svc.Snapshot()
	if after.SlackWebhook == before.SlackWebhook {
		t.Error("snapshot must reflect the saved update")
	}
}

func TestSnapshotConcurrentAccess(t *testing.T) {
	svc := NewService(&memoryStore{}, logger.New("test"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Update(context.Background(), UpdateRequest{InstantAlerts: boolptr(true)})
		}()
		go func() {
			defer wg.Done()
			_ = svc.Snapshot()
		}()
	}
	wg.Wait()
}
