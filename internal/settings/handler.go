package settings

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pulsecapture_backend/internal/workflow"
	"pulsecapture_backend/platform/httpkit"
	"pulsecapture_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// SlackTester posts a connectivity-check message to a Slack webhook.
type SlackTester interface {
	SendTest(ctx context.Context, webhookURL string) error
}

// EmailSender delivers a single test email.
type EmailSender interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

// EngineTester probes the workflow engine's REST API.
type EngineTester interface {
	TestConnection(ctx context.Context) workflow.Result
}

// Handler serves the settings endpoints and the integration checks.
type Handler struct {
	svc         *Service
	validate    *validator.Validator
	slack       SlackTester
	mail        EmailSender
	smtpEnabled bool
	engine      EngineTester

	openaiBaseURL string
	httpClient    *http.Client
}

func NewHandler(svc *Service, validate *validator.Validator, slack SlackTester, mail EmailSender, smtpEnabled bool, engine EngineTester) *Handler {
	return &Handler{
		svc:           svc,
		validate:      validate,
		slack:         slack,
		mail:          mail,
		smtpEnabled:   smtpEnabled,
		engine:        engine,
		openaiBaseURL: defaultOpenAIBaseURL,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterRoutes mounts the settings routes on the authenticated group.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	group := protected.Group("/settings")
	group.GET("", h.get)
	group.PUT("", h.update)
	group.POST("/test/slack", h.testSlack)
	group.POST("/test/openai", h.testOpenAI)
	group.POST("/test/email", h.testEmail)
	group.POST("/test/n8n", h.testEngine)
}

func (h *Handler) get(c *gin.Context) {
	httpkit.OK(c, h.svc.Snapshot())
}

func (h *Handler) update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Validation error", []string{"invalid JSON body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Validation error", validator.FormatErrors(err))
		return
	}

	saved, err := h.svc.Update(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, saved)
}

func (h *Handler) testSlack(c *gin.Context) {
	var req struct {
		WebhookURL string `json:"webhook_url"`
	}
	_ = c.ShouldBindJSON(&req)

	webhookURL := req.WebhookURL
	if webhookURL == "" {
		webhookURL = h.svc.Snapshot().SlackWebhook
	}
	if webhookURL == "" {
		httpkit.Error(c, http.StatusBadRequest, "Slack webhook not configured", nil)
		return
	}

	if err := h.slack.SendTest(c.Request.Context(), webhookURL); err != nil {
		httpkit.Error(c, http.StatusBadGateway, "Slack test failed", err.Error())
		return
	}

	httpkit.OK(c, gin.H{"success": true, "message": "Slack test message sent"})
}

func (h *Handler) testOpenAI(c *gin.Context) {
	var req struct {
		APIKey string `json:"api_key"`
	}
	_ = c.ShouldBindJSON(&req)

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = h.svc.Snapshot().OpenAIAPIKey
	}
	if apiKey == "" {
		httpkit.Error(c, http.StatusBadRequest, "OpenAI API key not configured", nil)
		return
	}

	httpReq, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet,
		strings.TrimSuffix(h.openaiBaseURL, "/")+"/v1/models", nil)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "OpenAI test failed", err.Error())
		return
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		httpkit.Error(c, http.StatusBadGateway, "OpenAI test failed", err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		httpkit.Error(c, http.StatusBadGateway, "OpenAI test failed", "invalid API key")
		return
	}
	if resp.StatusCode >= http.StatusBadRequest {
		httpkit.Error(c, http.StatusBadGateway, "OpenAI test failed",
			fmt.Sprintf("unexpected status %d", resp.StatusCode))
		return
	}

	httpkit.OK(c, gin.H{"success": true, "message": "OpenAI API key is valid"})
}

func (h *Handler) testEmail(c *gin.Context) {
	var req struct {
		To string `json:"to"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := h.validate.Var(req.To, "required,email"); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Validation error", []string{"to must be a valid email address"})
		return
	}

	if !h.smtpEnabled || h.mail == nil {
		httpkit.Error(c, http.StatusBadRequest, "SMTP is not configured", nil)
		return
	}

	template := h.svc.Snapshot().EmailTemplate
	if !strings.Contains(template, "{{name}}") {
		httpkit.Error(c, http.StatusBadRequest, "Email template must contain the {{name}} placeholder", nil)
		return
	}
	body := strings.ReplaceAll(template, "{{name}}", "Test Lead")

	if err := h.mail.Send(c.Request.Context(), req.To, "Test email", body); err != nil {
		httpkit.Error(c, http.StatusBadGateway, "Email test failed", err.Error())
		return
	}

	httpkit.OK(c, gin.H{"success": true, "message": "Test email sent"})
}

func (h *Handler) testEngine(c *gin.Context) {
	result := h.engine.TestConnection(c.Request.Context())
	if !result.Success {
		httpkit.Error(c, http.StatusBadGateway, "Workflow engine test failed", result.Error)
		return
	}

	httpkit.OK(c, gin.H{"success": true, "message": "Workflow engine is reachable"})
}
