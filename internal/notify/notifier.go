package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/id8-org/id8-recovery/internal/logger"
)

// Notifier delivers collaboration and generation events to interested
// channels. Delivery is best effort; callers never block business logic on
// a notification error.
type Notifier interface {
	NotifyCollaboratorAdded(ctx context.Context, e CollaboratorAddedEvent) error
	NotifyProposalSubmitted(ctx context.Context, e ProposalSubmittedEvent) error
	NotifyProposalReviewed(ctx context.Context, e ProposalReviewedEvent) error
	NotifyDeepDiveCompleted(ctx context.Context, e DeepDiveCompletedEvent) error
}

// NoopNotifier is used when no webhook is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyCollaboratorAdded(context.Context, CollaboratorAddedEvent) error { return nil }
func (NoopNotifier) NotifyProposalSubmitted(context.Context, ProposalSubmittedEvent) error { return nil }
func (NoopNotifier) NotifyProposalReviewed(context.Context, ProposalReviewedEvent) error   { return nil }
func (NoopNotifier) NotifyDeepDiveCompleted(context.Context, DeepDiveCompletedEvent) error { return nil }

// WebhookNotifier posts events as JSON to a configured endpoint.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	log        *logger.Logger
}

func NewWebhookNotifier(url string, log *logger.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (n *WebhookNotifier) NotifyCollaboratorAdded(ctx context.Context, e CollaboratorAddedEvent) error {
	return n.post(ctx, "collaborator_added", e)
}

func (n *WebhookNotifier) NotifyProposalSubmitted(ctx context.Context, e ProposalSubmittedEvent) error {
	return n.post(ctx, "proposal_submitted", e)
}

func (n *WebhookNotifier) NotifyProposalReviewed(ctx context.Context, e ProposalReviewedEvent) error {
	return n.post(ctx, "proposal_reviewed", e)
}

func (n *WebhookNotifier) NotifyDeepDiveCompleted(ctx context.Context, e DeepDiveCompletedEvent) error {
	return n.post(ctx, "deep_dive_completed", e)
}

func (n *WebhookNotifier) post(ctx context.Context, eventType string, payload interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
		"sent_at": time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.log.Warn("webhook delivery failed", "type", eventType, "error", err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		err := fmt.Errorf("webhook returned status %d", resp.StatusCode)
		n.log.Warn("webhook delivery rejected", "type", eventType, "status", resp.StatusCode)
		return err
	}
	return nil
}
