// Package product defines the catalog entity and its read-side repository.
package product

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/lebonpanier/boutique-api/internal/domain/money"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("produit introuvable")

// Product represents a catalog item available for purchase. Carts hold
// Product values by copy: the copy is the stock/price snapshot taken at
// mutation time, never a live reference to the catalog row.
type Product struct {
	ID     string
	Name   string
	Slug   string
	Price  money.Money
	Stock  int
	Active bool
}

// Repository defines read operations for the product catalog. Implementations
// must return ErrNotFound for missing single-row lookups.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}
