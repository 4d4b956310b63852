package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/linkdrop/internal/logger"
)

// Notifier delivers a text message to a chat recipient.
//
// Delivery is best effort by contract: the lifecycle engine only ever
// talks to an Async-wrapped Notifier, so a failed send can never block
// or roll back a transition.
type Notifier interface {
	Notify(ctx context.Context, recipientID, text string) error
}

// LogNotifier writes notifications to the service log. Used when no
// gateway URL is configured (dev, tests).
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, recipientID, text string) error {
	n.log.Info("notification",
		logger.String("recipient", recipientID),
		logger.String("text", text))
	return nil
}

// WebhookNotifier posts notifications to the chat gateway as JSON.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier posting to url. The client uses
// a short timeout and never follows redirects.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type webhookPayload struct {
	// MessageID lets the gateway deduplicate redeliveries.
	MessageID   string `json:"message_id"`
	RecipientID string `json:"recipient_id"`
	Text        string `json:"text"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, recipientID, text string) error {
	body, err := json.Marshal(webhookPayload{
		MessageID:   uuid.NewString(),
		RecipientID: recipientID,
		Text:        text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("gateway rejected notification: %s", resp.Status)
	}
	return nil
}

// Async wraps a Notifier so every send is fire-and-forget. Failures are
// logged and swallowed; Notify always returns nil immediately.
type Async struct {
	next    Notifier
	log     logger.Logger
	timeout time.Duration
}

// NewAsync wraps next. timeout bounds each delivery attempt.
func NewAsync(next Notifier, log logger.Logger, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Async{
		next:    next,
		log:     log,
		timeout: timeout,
	}
}

func (a *Async) Notify(_ context.Context, recipientID, text string) error {
	// Detach from the caller's context: the triggering transition must
	// not wait on delivery.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		if err := a.next.Notify(ctx, recipientID, text); err != nil {
			a.log.Warn("notification delivery failed",
				logger.String("recipient", recipientID),
				logger.Error(err))
		}
	}()
	return nil
}
