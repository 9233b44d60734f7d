package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// INotifier posts escalation events to the configured endpoint. Calls are
// fire-and-forget from the orchestrator's point of view: a failure is logged
// by the caller and never fails the chat turn.
type INotifier interface {
	NotifyEscalation(ctx context.Context, event EscalationEvent) error
	Enabled() bool
}

type EscalationEvent struct {
	ConversationID string  `json:"conversation_id"`
	VisitorID      string  `json:"visitor_id"`
	Intent         string  `json:"intent"`
	Score          float64 `json:"score"`
	Reason         string  `json:"reason"`
	Message        string  `json:"message"`
	OccurredAt     string  `json:"occurred_at"`
}

type notifier struct {
	url    string
	client *http.Client
}

func New() INotifier {
	timeout := 5 * time.Second
	if raw := os.Getenv("ESCALATION_WEBHOOK_TIMEOUT"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			timeout = parsed
		}
	}

	return &notifier{
		url: os.Getenv("ESCALATION_WEBHOOK_URL"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (n *notifier) Enabled() bool {
	return n.url != ""
}

func (n *notifier) NotifyEscalation(ctx context.Context, event EscalationEvent) error {
	if n.url == "" {
		return fmt.Errorf("ESCALATION_WEBHOOK_URL not configured")
	}

	if event.OccurredAt == "" {
		event.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal escalation event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("build escalation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("escalation webhook returned status %d", resp.StatusCode)
	}

	return nil
}
