package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/lebonpanier/boutique-api/internal/domain/cart"
	"github.com/lebonpanier/boutique-api/internal/domain/checkout"
	"github.com/lebonpanier/boutique-api/internal/domain/money"
	"github.com/lebonpanier/boutique-api/internal/domain/product"
)

// errorResponse is the JSON error envelope. Code carries the checkout error
// enum when one applies; Message is always the user-facing French string.
type errorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeDomainError maps a domain error to an HTTP response. Technical detail
// of unexpected errors is logged, never surfaced; the shopper only ever sees
// French business messages.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var bizErr *checkout.BusinessError
	if errors.As(err, &bizErr) {
		writeError(w, statusForCheckoutCode(bizErr.Code), string(bizErr.Code), bizErr.Message)
		return
	}

	var valErr *money.ValidationError
	if errors.As(err, &valErr) {
		writeError(w, http.StatusBadRequest, "", valErr.Error())
		return
	}

	switch {
	case errors.Is(err, cart.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, product.ErrNotFound):
		writeError(w, http.StatusNotFound, "", err.Error())
		return
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}

	var (
		qtyLimitErr    *cart.QuantityLimitError
		unavailableErr *product.UnavailableError
		stockErr       *product.InsufficientStockError
		mismatchErr    *money.CurrencyMismatchError
	)
	switch {
	case errors.Is(err, cart.ErrFull),
		errors.As(err, &qtyLimitErr),
		errors.As(err, &unavailableErr),
		errors.As(err, &stockErr),
		errors.As(err, &mismatchErr):
		writeError(w, http.StatusUnprocessableEntity, "", err.Error())
		return
	}

	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "", "Une erreur interne est survenue")
}

// statusForCheckoutCode maps checkout error codes to HTTP statuses: request
// shape problems are 400, business rejections 422, and a processor failure
// surfaces as 502.
func statusForCheckoutCode(code checkout.ErrorCode) int {
	switch code {
	case checkout.CodeInvalidCartData, checkout.CodeInvalidAddress, checkout.CodeInvalidShippingMethod:
		return http.StatusBadRequest
	case checkout.CodeSessionCreationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}
