package payment

import (
	"github.com/go-faster/errors"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Event is a verified webhook event, reduced to what the handler needs.
// Object carries the raw JSON of the event's data.object.
type Event struct {
	ID     string
	Type   string
	Object []byte
}

// WebhookVerifier checks Stripe webhook signatures against the endpoint's
// signing secret.
type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier creates a verifier for the given signing secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// Verify validates the Stripe-Signature header over the raw payload and
// returns the decoded event. Any failure here means the payload cannot be
// trusted and must be answered with HTTP 400.
func (v *WebhookVerifier) Verify(payload []byte, sigHeader string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, sigHeader, v.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, errors.Wrap(err, "verify webhook signature")
	}

	return &Event{
		ID:     ev.ID,
		Type:   string(ev.Type),
		Object: ev.Data.Raw,
	}, nil
}
