package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lebonpanier/boutique-api/internal/domain/cart"
)

const (
	getCartSQL = `SELECT document FROM carts WHERE id = $1 AND status = 'open'`

	getCartByUserSQL = `SELECT document FROM carts
		WHERE user_id = $1 AND status = 'open'
		ORDER BY updated_at DESC LIMIT 1`

	saveCartSQL = `INSERT INTO carts (id, user_id, document, status, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, 'open', $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at`

	deleteCartSQL = `DELETE FROM carts WHERE id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository persists cart aggregates as JSONB documents. Saves are
// last-write-wins; carts consumed by order creation (status 'converted')
// are invisible to reads.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Get returns the open cart with the given id.
func (r *CartRepository) Get(ctx context.Context, id string) (*cart.Cart, error) {
	return r.getOne(ctx, getCartSQL, id)
}

// GetByUser returns the most recently updated open cart of a user.
func (r *CartRepository) GetByUser(ctx context.Context, userID string) (*cart.Cart, error) {
	return r.getOne(ctx, getCartByUserSQL, userID)
}

// Save upserts the cart document.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal cart document")
	}

	_, err = r.pool.Exec(ctx, saveCartSQL,
		c.ID(), c.UserID(), doc, c.CreatedAt(), c.UpdatedAt(),
	)
	if err != nil {
		return errors.Wrapf(err, "save cart %q", c.ID())
	}
	return nil
}

// Delete removes a cart outright. Used on logout, not on order completion;
// the order-creation procedure marks carts converted instead.
func (r *CartRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, deleteCartSQL, id); err != nil {
		return errors.Wrapf(err, "delete cart %q", id)
	}
	return nil
}

func (r *CartRepository) getOne(ctx context.Context, sql, arg string) (*cart.Cart, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, sql, arg).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get cart %q", arg)
	}

	var c cart.Cart
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, errors.Wrapf(err, "decode cart %q", arg)
	}
	return &c, nil
}
