package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lebonpanier/boutique-api/internal/domain/checkout"
)

const saveAddressSQL = `INSERT INTO addresses
		(id, user_id, kind, first_name, last_name, line1, line2, city, postal_code, country, phone)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (user_id, kind) DO UPDATE SET
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		line1 = EXCLUDED.line1,
		line2 = EXCLUDED.line2,
		city = EXCLUDED.city,
		postal_code = EXCLUDED.postal_code,
		country = EXCLUDED.country,
		phone = EXCLUDED.phone,
		updated_at = now()`

var _ checkout.AddressStore = (*AddressRepository)(nil)

// AddressRepository persists the last shipping/billing address of
// authenticated users, one row per (user, kind).
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// Save upserts a user's address for the given kind.
func (r *AddressRepository) Save(ctx context.Context, userID string, kind checkout.AddressKind, a checkout.Address) error {
	_, err := r.pool.Exec(ctx, saveAddressSQL,
		uuid.New().String(), userID, string(kind),
		a.FirstName, a.LastName, a.Line1, a.Line2, a.City, a.PostalCode, a.Country, a.Phone,
	)
	if err != nil {
		return errors.Wrapf(err, "save %s address for user %q", kind, userID)
	}
	return nil
}
