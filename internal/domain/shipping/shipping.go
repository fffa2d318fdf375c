// Package shipping defines the shipping methods offered at checkout.
package shipping

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/lebonpanier/boutique-api/internal/domain/money"
)

// ErrNotFound is returned when a requested shipping method does not exist
// or is no longer offered.
var ErrNotFound = errors.New("mode de livraison introuvable")

// Method is a shipping option with its flat price.
type Method struct {
	ID     string
	Name   string
	Price  money.Money
	Active bool
}

// Repository defines read operations for shipping methods. Implementations
// must return ErrNotFound for missing or inactive methods.
type Repository interface {
	List(ctx context.Context) ([]Method, error)
	GetByID(ctx context.Context, id string) (*Method, error)
}
