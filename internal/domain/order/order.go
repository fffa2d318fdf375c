// Package order defines the order aggregate and the contract for
// materializing an order from a paid cart.
//
// Order creation is not performed in Go: the webhook handler invokes the
// create_order_from_cart stored procedure, which atomically re-checks stock,
// copies the cart lines into order_items, decrements inventory, and marks
// the cart consumed. The procedure is idempotent per cart id, which is what
// makes the payment processor's at-least-once webhook delivery safe.
package order

import (
	"context"
	"time"

	"github.com/lebonpanier/boutique-api/internal/domain/money"
)

// Status enumerates the order lifecycle states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
)

// Order represents a materialized customer order.
type Order struct {
	ID               string
	UserID           string
	CartID           string
	StripeCheckoutID string
	Items            []Item
	Total            money.Money
	Status           Status
	CreatedAt        time.Time
}

// Item is a single order line, denormalized from the cart at creation time.
type Item struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	UnitPrice money.Money `json:"unitPrice"`
	Quantity  int         `json:"quantity"`
}

// RejectedError carries a business rejection from the order-creation
// procedure (unknown cart, cart already consumed, stock exhausted between
// checkout and payment). It is NOT a transport failure: the webhook handler
// acknowledges it with HTTP 200 so the processor does not retry.
type RejectedError struct {
	CartID string
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

// Repository defines persistence operations for orders.
type Repository interface {
	// CreateFromCart invokes the atomic order-creation procedure and returns
	// the new order id. A *RejectedError signals a business rejection;
	// any other error is infrastructural.
	CreateFromCart(ctx context.Context, cartID, stripeCheckoutID string) (string, error)
	// GetByID returns a persisted order.
	GetByID(ctx context.Context, id string) (*Order, error)
}
