package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lebonpanier/boutique-api/internal/domain/money"
	"github.com/lebonpanier/boutique-api/internal/domain/shipping"
)

const (
	listShippingMethodsSQL = `SELECT id, name, price, currency, active
		FROM shipping_methods WHERE active ORDER BY price`

	getShippingMethodSQL = `SELECT id, name, price, currency, active
		FROM shipping_methods WHERE id = $1 AND active`
)

var _ shipping.Repository = (*ShippingRepository)(nil)

// ShippingRepository implements shipping.Repository backed by PostgreSQL.
type ShippingRepository struct {
	pool *pgxpool.Pool
}

// NewShippingRepository returns a ShippingRepository that uses the given pool.
func NewShippingRepository(pool *pgxpool.Pool) *ShippingRepository {
	return &ShippingRepository{pool: pool}
}

// List returns the active shipping methods, cheapest first.
func (r *ShippingRepository) List(ctx context.Context) ([]shipping.Method, error) {
	rows, err := r.pool.Query(ctx, listShippingMethodsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list shipping methods")
	}
	return pgx.CollectRows(rows, scanShippingMethod)
}

// GetByID returns a single active shipping method.
func (r *ShippingRepository) GetByID(ctx context.Context, id string) (*shipping.Method, error) {
	rows, err := r.pool.Query(ctx, getShippingMethodSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get shipping method %q", id)
	}

	m, err := pgx.CollectExactlyOneRow(rows, scanShippingMethod)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shipping.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get shipping method %q", id)
	}
	return &m, nil
}

func scanShippingMethod(row pgx.CollectableRow) (shipping.Method, error) {
	var (
		m        shipping.Method
		price    decimal.Decimal
		currency string
	)
	if err := row.Scan(&m.ID, &m.Name, &price, &currency, &m.Active); err != nil {
		return shipping.Method{}, err
	}

	p, err := money.New(price, currency)
	if err != nil {
		return shipping.Method{}, errors.Wrapf(err, "shipping method %q price", m.ID)
	}
	m.Price = p
	return m, nil
}
