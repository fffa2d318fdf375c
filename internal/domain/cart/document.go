package cart

import (
	"encoding/json"
	"time"

	"github.com/lebonpanier/boutique-api/internal/domain/money"
	"github.com/lebonpanier/boutique-api/internal/domain/product"
)

// cartDoc is the persisted JSON shape of a cart. The storage layer writes it
// into a JSONB column; the same document travels to API clients.
type cartDoc struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Items     []itemDoc `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type itemDoc struct {
	ID       string     `json:"id"`
	Product  productDoc `json:"product"`
	Quantity int        `json:"quantity"`
	AddedAt  time.Time  `json:"addedAt"`
}

type productDoc struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Slug   string      `json:"slug"`
	Price  money.Money `json:"price"`
	Stock  int         `json:"stock"`
	Active bool        `json:"active"`
}

// MarshalJSON implements json.Marshaler. Items are emitted oldest-first.
func (c *Cart) MarshalJSON() ([]byte, error) {
	items := c.Items()
	doc := cartDoc{
		ID:        c.id,
		UserID:    c.userID,
		Items:     make([]itemDoc, len(items)),
		CreatedAt: c.createdAt,
		UpdatedAt: c.updatedAt,
	}
	for i, it := range items {
		doc.Items[i] = itemDoc{
			ID: it.ID,
			Product: productDoc{
				ID:     it.Product.ID,
				Name:   it.Product.Name,
				Slug:   it.Product.Slug,
				Price:  it.Product.Price,
				Stock:  it.Product.Stock,
				Active: it.Product.Active,
			},
			Quantity: it.Quantity.Int(),
			AddedAt:  it.AddedAt,
		}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON implements json.Unmarshaler. Quantities are re-validated so a
// tampered or corrupted document cannot smuggle a negative count back in.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var doc cartDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	items := make(map[string]Item, len(doc.Items))
	for _, it := range doc.Items {
		qty, err := money.NewQuantity(it.Quantity)
		if err != nil {
			return err
		}
		items[it.ID] = Item{
			ID: it.ID,
			Product: product.Product{
				ID:     it.Product.ID,
				Name:   it.Product.Name,
				Slug:   it.Product.Slug,
				Price:  it.Product.Price,
				Stock:  it.Product.Stock,
				Active: it.Product.Active,
			},
			Quantity: qty,
			AddedAt:  it.AddedAt,
		}
	}

	c.id = doc.ID
	c.userID = doc.UserID
	c.items = items
	c.createdAt = doc.CreatedAt
	c.updatedAt = doc.UpdatedAt
	return nil
}
