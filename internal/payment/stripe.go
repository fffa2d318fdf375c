// Package payment adapts the Stripe SDK to the checkout domain ports:
// Checkout Session creation and webhook event verification.
package payment

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/lebonpanier/boutique-api/internal/domain/checkout"
)

var _ checkout.PaymentGateway = (*StripeGateway)(nil)

// StripeConfig holds the non-secret Stripe settings.
type StripeConfig struct {
	// SuccessURL and CancelURL are where Stripe redirects the shopper after
	// the hosted payment page.
	SuccessURL string
	CancelURL  string
}

// StripeGateway implements checkout.PaymentGateway over an injected Stripe
// client. No package-level Stripe state is used.
type StripeGateway struct {
	api *client.API
	cfg StripeConfig
}

// NewStripeGateway creates a gateway with its own Stripe API client.
func NewStripeGateway(secretKey string, cfg StripeConfig) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, cfg: cfg}
}

// CreateSession creates a Stripe Checkout Session in payment mode. The cart
// id is set as the session's client_reference_id so the webhook can find the
// cart to materialize. The shipping method is billed as its own line item.
func (g *StripeGateway) CreateSession(ctx context.Context, p checkout.SessionParams) (*checkout.Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(p.Lines)+1)
	for _, l := range p.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(l.Quantity.Int())),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(l.Product.Price.Currency())),
				UnitAmount: stripe.Int64(l.Product.Price.Cents()),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(l.Product.Name),
				},
			},
		})
	}
	if !p.ShippingMethod.Price.IsZero() {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(p.ShippingMethod.Price.Currency())),
				UnitAmount: stripe.Int64(p.ShippingMethod.Price.Cents()),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Livraison: " + p.ShippingMethod.Name),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Params:            stripe.Params{Context: ctx},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(p.CartID),
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		LineItems:         lineItems,
	}
	params.AddMetadata("cart_id", p.CartID)
	if p.UserID != "" {
		params.AddMetadata("user_id", p.UserID)
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "create stripe checkout session")
	}

	return &checkout.Session{ID: s.ID, URL: s.URL}, nil
}
