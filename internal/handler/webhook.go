package handler

import (
	"io"
	"net/http"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/lebonpanier/boutique-api/internal/domain/order"
)

const (
	eventCheckoutCompleted = "checkout.session.completed"

	// maxWebhookBody bounds the payload we are willing to read.
	maxWebhookBody = 1 << 20

	seenEventsCapacity = 1_000_000
	seenEventsFPR      = 0.01
)

// webhookState tracks processed event ids in a bloom filter. A definite miss
// means first delivery; a hit is only a probable redelivery and is logged as
// such. Correctness never rests on this: the order-creation procedure is
// idempotent per cart id.
type webhookState struct {
	mu   sync.Mutex
	seen *bloom.BloomFilter
}

func newWebhookState() *webhookState {
	return &webhookState{seen: bloom.NewWithEstimates(seenEventsCapacity, seenEventsFPR)}
}

// markSeen records the event id and reports whether it may have been
// delivered before.
func (s *webhookState) markSeen(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen.TestAndAddString(eventID)
}

// webhookAck is the body returned to the payment processor. Business
// failures ride in Error next to a 200 status so the processor does not
// retry them; only transport failures get a retryable status.
type webhookAck struct {
	Received bool   `json:"received"`
	OrderID  string `json:"orderId,omitempty"`
	Error    string `json:"error,omitempty"`
}

// StripeWebhook handles payment confirmations. Signature failures are the
// only 400s; everything downstream of a verified payload answers 200 unless
// the infrastructure itself failed.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	lg := zctx.From(r.Context())

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "", "corps de requête illisible")
		return
	}

	event, err := h.verifier.Verify(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		lg.Warn("webhook signature verification failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, "", "signature invalide")
		return
	}

	if event.Type != eventCheckoutCompleted {
		writeJSON(w, http.StatusOK, webhookAck{Received: true})
		return
	}

	sessionID, cartID, err := parseSessionObject(event.Object)
	if err != nil || cartID == "" {
		// A completed session without a cart reference cannot be tied back to
		// anything we sold; retrying will not change that, so acknowledge.
		lg.Error("webhook session missing cart reference",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, webhookAck{Received: true, Error: "référence du panier absente"})
		return
	}

	if h.webhook.markSeen(event.ID) {
		lg.Info("probable webhook redelivery",
			zap.String("event_id", event.ID),
			zap.String("cart_id", cartID),
		)
	}

	orderID, err := h.orders.CreateFromCart(r.Context(), cartID, sessionID)
	if err != nil {
		var rejected *order.RejectedError
		if errors.As(err, &rejected) {
			// Business rejection: acknowledged so the processor stops
			// redelivering. The money is already captured; reconciliation is
			// an operational concern, hence the error-level log.
			lg.Error("order creation rejected",
				zap.String("event_id", event.ID),
				zap.String("cart_id", cartID),
				zap.String("reason", rejected.Reason),
			)
			writeJSON(w, http.StatusOK, webhookAck{Received: true, Error: rejected.Reason})
			return
		}

		// Infrastructure failure: a retryable status makes the processor try
		// again later.
		lg.Error("order creation failed",
			zap.String("event_id", event.ID),
			zap.String("cart_id", cartID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "", "erreur interne")
		return
	}

	lg.Info("order created from webhook",
		zap.String("event_id", event.ID),
		zap.String("cart_id", cartID),
		zap.String("order_id", orderID),
	)
	writeJSON(w, http.StatusOK, webhookAck{Received: true, OrderID: orderID})
}

// parseSessionObject pulls the session id and client_reference_id out of the
// raw checkout.session object.
func parseSessionObject(data []byte) (sessionID, cartID string, err error) {
	d := jx.DecodeBytes(data)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Str()
			if err != nil {
				return err
			}
			sessionID = v
			return nil
		case "client_reference_id":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Str()
			if err != nil {
				return err
			}
			cartID = v
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return "", "", errors.Wrap(err, "parse session object")
	}
	return sessionID, cartID, nil
}
