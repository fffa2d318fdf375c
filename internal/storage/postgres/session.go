package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lebonpanier/boutique-api/internal/domain/checkout"
)

const saveSessionSQL = `INSERT INTO checkout_sessions
		(session_id, cart_id, user_id, amount, currency, shipping_method_id,
		 shipping_address, billing_address, created_at)
	VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
	ON CONFLICT (session_id) DO NOTHING`

var _ checkout.SessionMetadataStore = (*SessionRepository)(nil)

// SessionRepository persists checkout session metadata: the association
// between a Stripe session, the cart it pays for, and the addresses given.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a SessionRepository that uses the given pool.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Save records the session metadata. Duplicate session ids are ignored.
func (r *SessionRepository) Save(ctx context.Context, m checkout.SessionMetadata) error {
	shippingJSON, err := json.Marshal(m.ShippingAddress)
	if err != nil {
		return errors.Wrap(err, "marshal shipping address")
	}
	billingJSON, err := json.Marshal(m.BillingAddress)
	if err != nil {
		return errors.Wrap(err, "marshal billing address")
	}

	_, err = r.pool.Exec(ctx, saveSessionSQL,
		m.SessionID, m.CartID, m.UserID,
		m.Amount.Amount(), m.Amount.Currency(), m.ShippingMethodID,
		shippingJSON, billingJSON, m.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "save checkout session %q", m.SessionID)
	}
	return nil
}
