package notifier

import (
	"context"
	"fmt"
	"time"

	"balance_watcher/internal/app/port"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
)

const webhookRequestTimeout = 10 * time.Second

// WebhookNotifier posts messages as JSON to a generic HTTP webhook.
type WebhookNotifier struct {
	url    string
	client *fasthttp.Client
	logger port.Logger
}

// NewWebhookNotifier creates a webhook notifier targeting the given URL.
func NewWebhookNotifier(url string, logger port.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &fasthttp.Client{ReadTimeout: webhookRequestTimeout, WriteTimeout: webhookRequestTimeout},
		logger: logger,
	}
}

type webhookPayload struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Time      string `json:"time"`
}

// Send posts the message to the webhook endpoint.
func (n *WebhookNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := jsoniter.Marshal(webhookPayload{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Time:      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	if err := n.client.DoTimeout(req, resp, webhookRequestTimeout); err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("webhook returned status %d", code)
	}
	n.logger.Debug("Webhook message delivered", "recipient", recipient, "subject", subject)
	return nil
}
