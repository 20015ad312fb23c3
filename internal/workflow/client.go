// Package workflow integrates with the external workflow engine. It triggers
// lead processing and outreach runs over HTTP webhooks and dispatches those
// triggers asynchronously.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pulsecapture_backend/platform/config"
	"pulsecapture_backend/platform/logger"

	"github.com/google/uuid"
)

const apiKeyHeader = "X-N8N-API-KEY"

// Result captures the outcome of a single webhook call.
type Result struct {
	Success bool                   `json:"success"`
	Status  int                    `json:"status"`
	Error   string                 `json:"error,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// LeadPayload is the trigger body for a lead-processing run.
type LeadPayload struct {
	LeadID      string    `json:"lead_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Company     string    `json:"company"`
	Website     string    `json:"website"`
	ProblemText string    `json:"problem_text"`
	Timestamp   time.Time `json:"timestamp"`
}

// Client calls the workflow engine's webhook endpoints.
type Client struct {
	httpClient *http.Client
	cfg        config.WorkflowConfig
	log        *logger.Logger
}

// NewClient creates a workflow engine client. Calls time out after 10 seconds.
func NewClient(cfg config.WorkflowConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cfg:        cfg,
		log:        log,
	}
}

// TriggerLeadProcessing starts a scoring run for a freshly captured lead.
func (c *Client) TriggerLeadProcessing(ctx context.Context, payload LeadPayload) Result {
	url := c.cfg.GetLeadProcessingWebhookURL()
	if url == "" {
		return Result{Success: false, Error: "lead processing webhook URL not configured"}
	}

	result := c.post(ctx, url, payload)
	c.log.WebhookDispatch("lead_processing", payload.LeadID, result.Success, result.Status, result.Error)
	return result
}

// TriggerOutreach asks the workflow engine to draft and send outreach for a
// scored lead. A response body carrying success:false is treated as failure
// even on HTTP 200.
func (c *Client) TriggerOutreach(ctx context.Context, leadID uuid.UUID) Result {
	url := c.cfg.GetOutreachWebhookURL()
	if url == "" {
		return Result{Success: false, Error: "outreach webhook URL not configured"}
	}

	payload := map[string]interface{}{
		"lead_id":   leadID.String(),
		"timestamp": time.Now().UTC(),
	}

	result := c.post(ctx, url, payload)
	if result.Success {
		if flag, ok := result.Data["success"].(bool); ok && !flag {
			result.Success = false
			if msg, ok := result.Data["error"].(string); ok && msg != "" {
				result.Error = msg
			} else {
				result.Error = "workflow engine reported failure"
			}
		}
	}
	c.log.WebhookDispatch("send_outreach", leadID.String(), result.Success, result.Status, result.Error)
	return result
}

// TestConnection verifies the engine's REST API is reachable with the
// configured API key.
func (c *Client) TestConnection(ctx context.Context) Result {
	base := strings.TrimSuffix(c.cfg.GetWorkflowBaseURL(), "/")
	if base == "" {
		return Result{Success: false, Error: "workflow engine base URL not configured"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/v1/workflows", nil)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	if key := c.cfg.GetWorkflowAPIKey(); key != "" {
		req.Header.Set(apiKeyHeader, key)
	}

	return c.do(req)
}

func (c *Client) post(ctx context.Context, url string, payload interface{}) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if key := c.cfg.GetWorkflowAPIKey(); key != "" {
		req.Header.Set(apiKeyHeader, key)
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) Result {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	result := Result{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && len(raw) > 0 {
		var data map[string]interface{}
		if json.Unmarshal(raw, &data) == nil {
			result.Data = data
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		result.Error = fmt.Sprintf("workflow engine responded with status %d", resp.StatusCode)
		return result
	}

	result.Success = true
	return result
}
