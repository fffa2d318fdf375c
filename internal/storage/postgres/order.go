package postgres

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lebonpanier/boutique-api/internal/domain/money"
	"github.com/lebonpanier/boutique-api/internal/domain/order"
)

const (
	createOrderFromCartSQL = `SELECT create_order_from_cart($1, $2)`

	getOrderSQL = `SELECT id, COALESCE(user_id, ''), cart_id, stripe_checkout_id,
			total, currency, status, created_at
		FROM orders WHERE id = $1`

	getOrderItemsSQL = `SELECT product_id, name, unit_price, currency, quantity
		FROM order_items WHERE order_id = $1 ORDER BY product_id`
)

// errPrefix marks a business rejection in the procedure's return value.
const errPrefix = "ERROR"

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Order
// creation delegates entirely to the create_order_from_cart procedure, which
// is the system's single atomic, idempotent write path for orders.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateFromCart invokes the stored procedure. The procedure returns the
// order id on success (including repeat calls for the same cart) or a string
// starting with "ERROR" on business rejection.
func (r *OrderRepository) CreateFromCart(ctx context.Context, cartID, stripeCheckoutID string) (string, error) {
	var result string
	err := r.pool.QueryRow(ctx, createOrderFromCartSQL, cartID, stripeCheckoutID).Scan(&result)
	if err != nil {
		return "", errors.Wrapf(err, "create order from cart %q", cartID)
	}

	if strings.HasPrefix(result, errPrefix) {
		reason := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(result, errPrefix), ":"))
		return "", &order.RejectedError{CartID: cartID, Reason: reason}
	}

	return result, nil
}

// GetByID returns a persisted order with its line items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var (
		o        order.Order
		total    decimal.Decimal
		currency string
		status   string
	)
	err := r.pool.QueryRow(ctx, getOrderSQL, id).Scan(
		&o.ID, &o.UserID, &o.CartID, &o.StripeCheckoutID,
		&total, &currency, &status, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Errorf("order %q not found", id)
		}
		return nil, errors.Wrapf(err, "get order %q", id)
	}

	m, err := money.New(total, currency)
	if err != nil {
		return nil, errors.Wrapf(err, "order %q total", id)
	}
	o.Total = m
	o.Status = order.Status(status)

	rows, err := r.pool.Query(ctx, getOrderItemsSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order items %q", id)
	}
	o.Items, err = pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return nil, errors.Wrapf(err, "scan order items %q", id)
	}

	return &o, nil
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var (
		it       order.Item
		price    decimal.Decimal
		currency string
	)
	if err := row.Scan(&it.ProductID, &it.Name, &price, &currency, &it.Quantity); err != nil {
		return order.Item{}, err
	}

	m, err := money.New(price, currency)
	if err != nil {
		return order.Item{}, errors.Wrapf(err, "order item %q price", it.ProductID)
	}
	it.UnitPrice = m
	return it, nil
}
