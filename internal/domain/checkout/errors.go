// Package checkout implements the checkout orchestration: request
// validation, product and address validation against fresh data, payment
// session creation, and session metadata bookkeeping.
package checkout

// ErrorCode enumerates the business failures a checkout can report.
type ErrorCode string

const (
	CodeInvalidCartData       ErrorCode = "INVALID_CART_DATA"
	CodeEmptyCart             ErrorCode = "EMPTY_CART"
	CodeInvalidAddress        ErrorCode = "INVALID_ADDRESS"
	CodeProductNotFound       ErrorCode = "PRODUCT_NOT_FOUND"
	CodeProductUnavailable    ErrorCode = "PRODUCT_UNAVAILABLE"
	CodeInsufficientStock     ErrorCode = "INSUFFICIENT_STOCK"
	CodeInvalidShippingMethod ErrorCode = "INVALID_SHIPPING_METHOD"
	CodeSessionCreationFailed ErrorCode = "STRIPE_SESSION_CREATION_FAILED"
)

// BusinessError is a checkout rule violation. Message is the user-facing
// French string rendered to the shopper; technical detail never travels in
// it and is logged server-side instead.
type BusinessError struct {
	Code    ErrorCode
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

func businessErr(code ErrorCode, msg string) *BusinessError {
	return &BusinessError{Code: code, Message: msg}
}
