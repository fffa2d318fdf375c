// Package cart implements the shopping cart aggregate. A Cart is a
// copy-on-write value: every mutation validates its invariants first and,
// on success, returns a fresh *Cart, leaving the receiver untouched.
//
// Invariants enforced on every mutation:
//   - at most MaxItems distinct line items;
//   - per-line quantity between 1 and MaxItemQuantity;
//   - per-line quantity never exceeds the product's stock snapshot;
//   - only active products are admitted.
package cart

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/multierr"

	"github.com/lebonpanier/boutique-api/internal/domain/money"
	"github.com/lebonpanier/boutique-api/internal/domain/product"
)

const (
	// MaxItems is the maximum number of distinct line items in a cart.
	MaxItems = 100
	// MaxItemQuantity is the maximum quantity of a single line item.
	MaxItemQuantity = 999
)

// Sentinel errors for cart mutations. Messages are user-facing French.
var (
	ErrFull            = errors.New("le panier est plein (100 articles maximum)")
	ErrItemNotFound    = errors.New("article introuvable dans le panier")
	ErrInvalidQuantity = errors.New("la quantité doit être supérieure à zéro")
	ErrEmpty           = errors.New("le panier est vide")
)

// QuantityLimitError indicates a line item would exceed MaxItemQuantity.
type QuantityLimitError struct {
	ItemID    string
	Requested int
}

func (e *QuantityLimitError) Error() string {
	return fmt.Sprintf("la quantité par article est limitée à %d (demandé: %d)",
		MaxItemQuantity, e.Requested)
}

// Item is a single cart line. It is immutable: mutations on the cart replace
// the whole Item value. The embedded Product is the stock/price snapshot
// taken when the line was last touched.
type Item struct {
	ID       string
	Product  product.Product
	Quantity money.Quantity
	AddedAt  time.Time
}

// LineTotal returns price × quantity for this line.
func (it Item) LineTotal() money.Money {
	return it.Product.Price.MulQuantity(it.Quantity)
}

// Cart is the aggregate root. The zero value is not usable; construct with
// New or decode a persisted document.
type Cart struct {
	id        string
	userID    string
	items     map[string]Item
	createdAt time.Time
	updatedAt time.Time
}

// New creates an empty cart owned by the given user. userID may be empty for
// guest sessions.
func New(id, userID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		id:        id,
		userID:    userID,
		items:     make(map[string]Item),
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the cart identifier.
func (c *Cart) ID() string { return c.id }

// UserID returns the owning user id, empty for guest carts.
func (c *Cart) UserID() string { return c.userID }

// CreatedAt returns the creation timestamp.
func (c *Cart) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last mutation timestamp.
func (c *Cart) UpdatedAt() time.Time { return c.updatedAt }

// Item returns the line with the given id.
func (c *Cart) Item(itemID string) (Item, bool) {
	it, ok := c.items[itemID]
	return it, ok
}

// Items returns the cart lines ordered by the time they were added, oldest
// first. Ties are broken by item id so the order is deterministic.
func (c *Cart) Items() []Item {
	items := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		items = append(items, it)
	}
	sortItems(items)
	return items
}

// AddItem admits a product into the cart, returning the resulting cart.
// When the item id already holds a line, the quantities are summed and the
// product snapshot is refreshed; otherwise a new line is inserted. Fails
// fast on the first violated invariant.
func (c *Cart) AddItem(itemID string, p product.Product, qty money.Quantity) (*Cart, error) {
	if qty.IsZero() {
		return nil, ErrInvalidQuantity
	}
	if !p.Active {
		return nil, &product.UnavailableError{ProductID: p.ID, Name: p.Name}
	}

	existing, ok := c.items[itemID]
	if !ok && len(c.items) >= MaxItems {
		return nil, ErrFull
	}

	newQty := qty
	if ok {
		newQty = existing.Quantity.Add(qty)
	}
	if newQty.Int() > MaxItemQuantity {
		return nil, &QuantityLimitError{ItemID: itemID, Requested: newQty.Int()}
	}
	if newQty.Int() > p.Stock {
		return nil, &product.InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Available: p.Stock,
			Requested: newQty.Int(),
		}
	}

	addedAt := time.Now().UTC()
	if ok {
		addedAt = existing.AddedAt
	}

	next := c.clone()
	next.items[itemID] = Item{
		ID:       itemID,
		Product:  p,
		Quantity: newQty,
		AddedAt:  addedAt,
	}
	return next, nil
}

// RemoveItem removes the line with the given id. Fails when it is absent.
func (c *Cart) RemoveItem(itemID string) (*Cart, error) {
	if _, ok := c.items[itemID]; !ok {
		return nil, ErrItemNotFound
	}
	next := c.clone()
	delete(next.items, itemID)
	return next, nil
}

// UpdateItemQuantity replaces a line's quantity. A zero quantity degrades to
// RemoveItem. The new quantity is validated against the per-line cap and the
// line's product snapshot, exactly as AddItem does.
func (c *Cart) UpdateItemQuantity(itemID string, qty money.Quantity) (*Cart, error) {
	if qty.IsZero() {
		return c.RemoveItem(itemID)
	}

	existing, ok := c.items[itemID]
	if !ok {
		return nil, ErrItemNotFound
	}
	if !existing.Product.Active {
		return nil, &product.UnavailableError{ProductID: existing.Product.ID, Name: existing.Product.Name}
	}
	if qty.Int() > MaxItemQuantity {
		return nil, &QuantityLimitError{ItemID: itemID, Requested: qty.Int()}
	}
	if qty.Int() > existing.Product.Stock {
		return nil, &product.InsufficientStockError{
			ProductID: existing.Product.ID,
			Name:      existing.Product.Name,
			Available: existing.Product.Stock,
			Requested: qty.Int(),
		}
	}

	next := c.clone()
	existing.Quantity = qty
	next.items[itemID] = existing
	return next, nil
}

// Clear returns a cart with no items.
func (c *Cart) Clear() *Cart {
	next := c.clone()
	next.items = make(map[string]Item)
	return next
}

// TotalAmount returns the sum of every line total. An empty cart totals zero
// in the default currency. Mixing currencies inside one cart is a bug and is
// reported as an error.
func (c *Cart) TotalAmount() (money.Money, error) {
	total := money.Zero(money.DefaultCurrency)
	for _, it := range c.items {
		sum, err := total.Add(it.LineTotal())
		if err != nil {
			return money.Money{}, err
		}
		total = sum
	}
	return total, nil
}

// TotalItems returns the sum of all line quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, it := range c.items {
		total += it.Quantity.Int()
	}
	return total
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// IsFull reports whether the cart holds MaxItems distinct lines.
func (c *Cart) IsFull() bool { return len(c.items) >= MaxItems }

// Validate checks every invariant and returns all violations combined into a
// single error, unlike the mutation methods which fail fast. Used before
// checkout so the shopper sees the complete list of problems at once.
func (c *Cart) Validate() error {
	var err error
	if c.IsEmpty() {
		err = multierr.Append(err, ErrEmpty)
	}
	for _, it := range c.Items() {
		if it.Quantity.IsZero() {
			err = multierr.Append(err, errors.Wrap(ErrInvalidQuantity, it.ID))
		}
		if it.Quantity.Int() > MaxItemQuantity {
			err = multierr.Append(err, &QuantityLimitError{ItemID: it.ID, Requested: it.Quantity.Int()})
		}
		if !it.Product.Active {
			err = multierr.Append(err, &product.UnavailableError{ProductID: it.Product.ID, Name: it.Product.Name})
		}
		if it.Quantity.Int() > it.Product.Stock {
			err = multierr.Append(err, &product.InsufficientStockError{
				ProductID: it.Product.ID,
				Name:      it.Product.Name,
				Available: it.Product.Stock,
				Requested: it.Quantity.Int(),
			})
		}
	}
	return err
}

// clone copies the cart and its item map, stamping the new UpdatedAt.
func (c *Cart) clone() *Cart {
	items := make(map[string]Item, len(c.items))
	for k, v := range c.items {
		items[k] = v
	}
	return &Cart{
		id:        c.id,
		userID:    c.userID,
		items:     items,
		createdAt: c.createdAt,
		updatedAt: time.Now().UTC(),
	}
}

func sortItems(items []Item) {
	slices.SortFunc(items, func(a, b Item) int {
		if c := a.AddedAt.Compare(b.AddedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
