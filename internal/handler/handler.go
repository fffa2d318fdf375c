// Package handler exposes the storefront HTTP API: product catalog reads,
// cart mutations, checkout, and the payment processor webhook.
package handler

import (
	"net/http"

	"github.com/lebonpanier/boutique-api/internal/domain/cart"
	"github.com/lebonpanier/boutique-api/internal/domain/checkout"
	"github.com/lebonpanier/boutique-api/internal/domain/order"
	"github.com/lebonpanier/boutique-api/internal/domain/product"
	"github.com/lebonpanier/boutique-api/internal/domain/shipping"
	"github.com/lebonpanier/boutique-api/internal/payment"
)

// WebhookVerifier authenticates webhook payloads. Implemented by
// payment.WebhookVerifier in production.
type WebhookVerifier interface {
	Verify(payload []byte, sigHeader string) (*payment.Event, error)
}

// Handler holds the HTTP handlers and their domain dependencies.
type Handler struct {
	products product.Repository
	carts    cart.Repository
	shipping shipping.Repository
	checkout *checkout.Service
	orders   order.Repository
	verifier WebhookVerifier
	webhook  *webhookState
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products product.Repository,
	carts cart.Repository,
	shippingMethods shipping.Repository,
	checkoutSvc *checkout.Service,
	orders order.Repository,
	verifier WebhookVerifier,
) *Handler {
	return &Handler{
		products: products,
		carts:    carts,
		shipping: shippingMethods,
		checkout: checkoutSvc,
		orders:   orders,
		verifier: verifier,
		webhook:  newWebhookState(),
	}
}

// Register mounts every route on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /api/shipping-methods", h.ListShippingMethods)

	mux.HandleFunc("POST /api/carts", h.CreateCart)
	mux.HandleFunc("GET /api/carts/{cartID}", h.GetCart)
	mux.HandleFunc("POST /api/carts/{cartID}/items", h.AddCartItem)
	mux.HandleFunc("PATCH /api/carts/{cartID}/items/{itemID}", h.UpdateCartItem)
	mux.HandleFunc("DELETE /api/carts/{cartID}/items/{itemID}", h.RemoveCartItem)
	mux.HandleFunc("DELETE /api/carts/{cartID}/items", h.ClearCart)

	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("POST /webhooks/stripe", h.StripeWebhook)
}
