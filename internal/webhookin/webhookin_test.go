package webhookin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pulsecapture_backend/internal/events"
	"pulsecapture_backend/internal/leads/repository/mock"
	"pulsecapture_backend/internal/leads/service"
	"pulsecapture_backend/internal/leads/transport"
	"pulsecapture_backend/internal/workflow"
	"pulsecapture_backend/platform/logger"
	"pulsecapture_backend/platform/validator"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type noopDispatcher struct{}

func (noopDispatcher) DispatchLeadProcessing(context.Context, workflow.LeadPayload) {}

type noopOutreach struct{}

func (noopOutreach) TriggerOutreach(context.Context, uuid.UUID) workflow.Result {
	return workflow.Result{Success: true}
}

type testAuthConfig struct {
	secret string
}

func (c testAuthConfig) GetWebhookSigningSecret() string { return c.secret }

func newTestModule(t *testing.T, secret string, deduper *Deduper) (*gin.Engine, *service.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New("test")
	svc := service.New(mock.NewStore(), noopDispatcher{}, noopOutreach{}, events.NewInMemoryBus(log), validator.New(), log)

	if deduper == nil {
		var err error
		deduper, err = NewDeduper("", log)
		if err != nil {
			t.Fatalf("NewDeduper: %v", err)
		}
	}

	engine := gin.New()
	module := NewModule(svc, testAuthConfig{secret: secret}, deduper, log)
	callbacks := engine.Group("/api/webhooks")
	callbacks.GET("/test", module.handler.test)
	signed := callbacks.Group("")
	signed.Use(module.verify, module.deduper.Middleware())
	signed.POST("/lead-processing", module.handler.leadProcessing)
	signed.POST("/send-outreach", module.handler.sendOutreach)

	return engine, svc
}

func newMiniredisDeduper(t *testing.T) *Deduper {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewDeduperWithClient(client, logger.New("test"))
}

func captureLead(t *testing.T, svc *service.Service) string {
	t.Helper()
	resp, err := svc.Create(t.Context(), transport.CreateLeadRequest{
		Name:        "Jane Smith",
		Email:       "jane@acme.test",
		ProblemText: "We spend two days a week reconciling invoices by hand",
	})
	if err != nil {
		t.Fatalf("capture lead: %v", err)
	}
	return resp.LeadID
}

func scoringBody(t *testing.T, leadID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"lead_id":        leadID,
		"use_case_label": "invoice-automation",
		"fit_score":      85,
		"fit_band":       "High",
		"ai_rationale":   "strong fit",
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return body
}

func postCallback(engine *gin.Engine, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestLeadProcessingCallback(t *testing.T) {
	engine, svc := newTestModule(t, "", nil)
	leadID := captureLead(t, svc)

	rec := postCallback(engine, "/api/webhooks/lead-processing", scoringBody(t, leadID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	lead, err := svc.Get(t.Context(), leadID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if lead.Status != "scored" {
		t.Errorf("status = %q, want scored", lead.Status)
	}
	if lead.FitScore == nil || *lead.FitScore != 85 {
		t.Errorf("fit_score = %v, want 85", lead.FitScore)
	}
}

func TestLeadProcessingCallbackUnknownLead(t *testing.T) {
	engine, _ := newTestModule(t, "", nil)

	rec := postCallback(engine, "/api/webhooks/lead-processing", scoringBody(t, uuid.NewString()), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body %s", rec.Code, rec.Body.String())
	}
}

func TestLeadProcessingCallbackMissingLeadID(t *testing.T) {
	engine, _ := newTestModule(t, "", nil)

	body, _ := json.Marshal(map[string]interface{}{"fit_score": 50})
	rec := postCallback(engine, "/api/webhooks/lead-processing", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}
}

func TestSendOutreachCallback(t *testing.T) {
	engine, svc := newTestModule(t, "", nil)
	leadID := captureLead(t, svc)

	if rec := postCallback(engine, "/api/webhooks/lead-processing", scoringBody(t, leadID), nil); rec.Code != http.StatusOK {
		t.Fatalf("scoring callback failed: %d", rec.Code)
	}

	body, _ := json.Marshal(map[string]interface{}{
		"lead_id":       leadID,
		"email_subject": "Quick question about invoice matching",
		"email_body":    "Saw your submission and thought this might help.",
	})
	rec := postCallback(engine, "/api/webhooks/send-outreach", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	lead, err := svc.Get(t.Context(), leadID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if lead.Status != "outreach_sent" {
		t.Errorf("status = %q, want outreach_sent", lead.Status)
	}
	if lead.OutreachSentAt == nil {
		t.Error("outreach_sent_at not stamped")
	}
}

func TestSignatureVerification(t *testing.T) {
	const secret = "callback-secret"
	engine, svc := newTestModule(t, secret, nil)
	leadID := captureLead(t, svc)
	body := scoringBody(t, leadID)

	// missing signature
	rec := postCallback(engine, "/api/webhooks/lead-processing", body, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing signature: status = %d, want 401", rec.Code)
	}

	// tampered signature
	rec = postCallback(engine, "/api/webhooks/lead-processing", body, map[string]string{
		SignatureHeader: Sign("wrong-secret", body),
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("tampered signature: status = %d, want 401", rec.Code)
	}

	// tampered body under a valid signature of the original
	sig := Sign(secret, body)
	tampered := bytes.Replace(body, []byte("85"), []byte("99"), 1)
	rec = postCallback(engine, "/api/webhooks/lead-processing", tampered, map[string]string{
		SignatureHeader: sig,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("tampered body: status = %d, want 401", rec.Code)
	}

	// valid signature
	rec = postCallback(engine, "/api/webhooks/lead-processing", body, map[string]string{
		SignatureHeader: sig,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("valid signature: status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
}

func TestDeliveryDeduplication(t *testing.T) {
	engine, svc := newTestModule(t, "", newMiniredisDeduper(t))
	leadID := captureLead(t, svc)
	body := scoringBody(t, leadID)
	headers := map[string]string{DeliveryIDHeader: "delivery-42"}

	rec := postCallback(engine, "/api/webhooks/lead-processing", body, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("first delivery: status = %d", rec.Code)
	}

	rec = postCallback(engine, "/api/webhooks/lead-processing", body, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("redelivery: status = %d", rec.Code)
	}
	var resp struct {
		Duplicate bool `json:"duplicate"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode redelivery response: %v", err)
	}
	if !resp.Duplicate {
		t.Fatal("redelivery must be acknowledged as duplicate")
	}

	timeline, err := svc.Events(t.Context(), leadID)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	var scoredEvents int
	for _, event := range timeline {
		if event.EventType == "lead_scored" {
			scoredEvents++
		}
	}
	if scoredEvents != 1 {
		t.Fatalf("scored events = %d, want 1 after dedup", scoredEvents)
	}
}

func TestCallbackWithoutDeliveryIDAppliesTwice(t *testing.T) {
	engine, svc := newTestModule(t, "", newMiniredisDeduper(t))
	leadID := captureLead(t, svc)
	body := scoringBody(t, leadID)

	for i := 0; i < 2; i++ {
		if rec := postCallback(engine, "/api/webhooks/lead-processing", body, nil); rec.Code != http.StatusOK {
			t.Fatalf("delivery %d: status = %d", i+1, rec.Code)
		}
	}

	timeline, err := svc.Events(t.Context(), leadID)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	var scoredEvents int
	for _, event := range timeline {
		if event.EventType == "lead_scored" {
			scoredEvents++
		}
	}
	if scoredEvents != 2 {
		t.Fatalf("scored events = %d, want 2 without delivery ids", scoredEvents)
	}
}

func TestWebhookTestEndpoint(t *testing.T) {
	engine, _ := newTestModule(t, "a-secret", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/webhooks/test", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success response")
	}
}
