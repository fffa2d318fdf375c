package cart

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested cart does not exist.
var ErrNotFound = errors.New("panier introuvable")

// Repository defines persistence for cart documents. Saves are
// last-write-wins: the aggregate is a per-request value and concurrent
// updates to the same cart are not serialized at this layer.
type Repository interface {
	Get(ctx context.Context, id string) (*Cart, error)
	GetByUser(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error
}
