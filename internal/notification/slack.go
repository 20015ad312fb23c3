// Package notification pushes lead alerts to Slack.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pulsecapture_backend/platform/logger"
)

// Notifier posts messages to a Slack incoming webhook.
type Notifier struct {
	httpClient *http.Client
	log        *logger.Logger
}

// NewNotifier creates a Slack notifier. Posts time out after 5 seconds so a
// slow Slack never stalls event handling.
func NewNotifier(log *logger.Logger) *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		log:        log,
	}
}

type block struct {
	Type   string      `json:"type"`
	Text   *blockText  `json:"text,omitempty"`
	Fields []blockText `json:"fields,omitempty"`
}

type blockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type message struct {
	Text   string  `json:"text"`
	Blocks []block `json:"blocks,omitempty"`
}

// SendTest posts a short connectivity-check message.
func (n *Notifier) SendTest(ctx context.Context, webhookURL string) error {
	return n.post(ctx, webhookURL, message{
		Text: "Test notification: your Slack integration is working.",
	})
}

// SendLeadScoredAlert posts a formatted alert for a freshly scored lead.
func (n *Notifier) SendLeadScoredAlert(ctx context.Context, webhookURL, leadName, company, fitBand, useCase string, fitScore int) error {
	if company == "" {
		company = "-"
	}
	if useCase == "" {
		useCase = "-"
	}

	return n.post(ctx, webhookURL, message{
		Text: fmt.Sprintf("New scored lead: %s (%s, score %d)", leadName, fitBand, fitScore),
		Blocks: []block{
			{
				Type: "header",
				Text: &blockText{Type: "plain_text", Text: "New scored lead"},
			},
			{
				Type: "section",
				Fields: []blockText{
					{Type: "mrkdwn", Text: "*Name:*\n" + leadName},
					{Type: "mrkdwn", Text: "*Company:*\n" + company},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Fit:*\n%s (%d)", fitBand, fitScore)},
					{Type: "mrkdwn", Text: "*Use case:*\n" + useCase},
				},
			},
		},
	})
}

func (n *Notifier) post(ctx context.Context, webhookURL string, msg message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("slack responded with status %d", resp.StatusCode)
	}
	return nil
}
