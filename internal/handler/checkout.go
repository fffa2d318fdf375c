package handler

import (
	"net/http"

	"github.com/lebonpanier/boutique-api/internal/domain/checkout"
)

type checkoutRequest struct {
	CartID           string            `json:"cartId"`
	UserID           string            `json:"userId,omitempty"`
	ShippingAddress  *checkout.Address `json:"shippingAddress"`
	BillingAddress   *checkout.Address `json:"billingAddress"`
	ShippingMethodID string            `json:"shippingMethodId"`
}

type checkoutResponse struct {
	SessionID  string `json:"sessionId"`
	SessionURL string `json:"sessionUrl"`
}

// Checkout runs the checkout orchestration and returns the hosted payment
// session the shopper should be redirected to.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "", "Requête invalide")
		return
	}

	result, err := h.checkout.Checkout(r.Context(), checkout.Request{
		CartID:           req.CartID,
		UserID:           req.UserID,
		ShippingAddress:  req.ShippingAddress,
		BillingAddress:   req.BillingAddress,
		ShippingMethodID: req.ShippingMethodID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{
		SessionID:  result.SessionID,
		SessionURL: result.SessionURL,
	})
}
