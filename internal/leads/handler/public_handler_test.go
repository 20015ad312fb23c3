package handler

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
	"pulsecapture_backend/internal/workflow"
	"pulsecapture_backend/platform/logger"
	"pulsecapture_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"pulsecapture_backend/platform/httpkit"
)

type noopDispatcher struct{}

func (noopDispatcher) DispatchLeadProcessing(context.Context, workflow.LeadPayload) {}

type noopOutreach struct{}

func (noopOutreach) TriggerOutreach(context.Context, uuid.UUID) workflow.Result {
	return workflow.Result{Success: true}
}

func newTestRouter(t *testing.T) (*gin.Engine, *service.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New("test")
	svc := service.New(mock.NewStore(), noopDispatcher{}, noopOutreach{}, events.NewInMemoryBus(log), validator.New(), log)

	engine := gin.New()
	limiter := httpkit.NewIPRateLimiter(rate.Limit(1000), 1000, log)
	NewPublicHandler(svc).RegisterRoutes(engine.Group("/api"), limiter.RateLimit())
	return engine, svc
}

func postJSON(t *testing.T, engine *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestCreateLeadEndpoint(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := postJSON(t, engine, "/api/leads", map[string]string{
		"name":         "Jane Smith",
		"email":        "jane@acme.test",
		"company":      "Acme Corp",
		"problem_text": "We spend two days a week reconciling invoices by hand",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		LeadID  string `json:"leadId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.LeadID == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if _, err := uuid.Parse(resp.LeadID); err != nil {
		t.Errorf("leadId is not a uuid: %q", resp.LeadID)
	}
}

func TestCreateLeadEndpointValidation(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := postJSON(t, engine, "/api/leads", map[string]string{
		"name":         "Jane Smith",
		"email":        "jane@acme.test",
		"problem_text": "too short",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "Validation error" {
		t.Errorf("error = %q, want Validation error", resp.Error)
	}
	if len(resp.Details) == 0 {
		t.Error("expected validation details")
	}
}

func TestCreateLeadEndpointMalformedJSON(t *testing.T) {
	engine, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/leads", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetLeadEndpoint(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := postJSON(t, engine, "/api/leads", map[string]string{
		"name":         "Jane Smith",
		"email":        "jane@acme.test",
		"problem_text": "We spend two days a week reconciling invoices by hand",
	})
	var created struct {
		LeadID string `json:"leadId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/leads/"+created.LeadID, nil)
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "new" {
		t.Errorf("status = %v, want new", resp["status"])
	}
	// the public view never leaks scoring fields
	for _, hidden := range []string{"fit_score", "fit_band", "ai_rationale", "problem_text"} {
		if _, ok := resp[hidden]; ok {
			t.Errorf("public view must not expose %q", hidden)
		}
	}
}

func TestGetLeadEndpointNotFound(t *testing.T) {
	engine, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/leads/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "Lead not found" {
		t.Errorf("error = %q, want Lead not found", resp.Error)
	}
}
