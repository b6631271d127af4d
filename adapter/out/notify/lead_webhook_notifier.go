// Package notify delivers lead alerts to an external webhook channel.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lead_server/core/domain"
	"lead_server/core/port/out"
	"lead_server/pkg/httputil"
	"lead_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
)

// =============================================================================
// Webhook Notifier
// =============================================================================

// WebhookNotifier posts lead alerts to a configured webhook URL. With an
// empty URL it is a no-op, so wiring stays unconditional. Delivery failures
// are reported to the caller but must never fail the triggering operation.
type WebhookNotifier struct {
	url    string
	client *http.Client
	cb     *gobreaker.CircuitBreaker
}

// NewWebhookNotifier creates a webhook notifier for the given URL.
func NewWebhookNotifier(url string) *WebhookNotifier {
	cbSettings := gobreaker.Settings{
		Name:        "lead-webhook",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithField("breaker", name).
				Warn("Circuit breaker state changed from %s to %s", from.String(), to.String())
		},
	}

	return &WebhookNotifier{
		url:    url,
		client: httputil.NewClient(httputil.DefaultClientConfig()),
		cb:     gobreaker.NewCircuitBreaker(cbSettings),
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *WebhookNotifier) Enabled() bool {
	return n.url != ""
}

// webhookPayload is the chat-style message body: a headline plus labeled
// fields the receiving channel renders as a card.
type webhookPayload struct {
	Text   string         `json:"text"`
	Fields []webhookField `json:"fields"`
}

type webhookField struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// NotifyLead posts one lead alert. No-op when no URL is configured.
func (n *WebhookNotifier) NotifyLead(ctx context.Context, lead *domain.LeadRecord) error {
	if !n.Enabled() {
		return nil
	}

	payload := buildPayload(lead)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	_, err = n.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to deliver webhook: %w", err)
	}
	return nil
}

func buildPayload(lead *domain.LeadRecord) *webhookPayload {
	location := lead.Location.City
	if lead.Location.State != "" {
		location = fmt.Sprintf("%s, %s", lead.Location.City, lead.Location.State)
	}

	return &webhookPayload{
		Text: fmt.Sprintf("New %s lead: %s (%s)",
			strings.ToUpper(string(lead.Priority)), lead.Name, lead.Company),
		Fields: []webhookField{
			{Title: "Score", Value: fmt.Sprintf("%d", lead.Score)},
			{Title: "Priority", Value: string(lead.Priority)},
			{Title: "Business Type", Value: string(lead.BusinessType)},
			{Title: "Submission Type", Value: string(lead.SubmissionType)},
			{Title: "Location", Value: location},
			{Title: "Email", Value: lead.Email},
		},
	}
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.LeadNotifier = (*WebhookNotifier)(nil)
