package checkout

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/lebonpanier/boutique-api/internal/domain/money"
	"github.com/lebonpanier/boutique-api/internal/domain/product"
)

// Line is a productId/quantity pair to validate against the live catalog.
type Line struct {
	ProductID string
	Quantity  int
}

// ValidatedLine is a Line that passed validation, enriched with the fresh
// product row and its computed total.
type ValidatedLine struct {
	Product   product.Product
	Quantity  money.Quantity
	LineTotal money.Money
}

// ProductValidator re-checks cart lines against current product rows at
// checkout time. The cart's own snapshots may be stale by then; this is the
// authoritative pass.
type ProductValidator struct {
	products product.Repository
}

// NewProductValidator creates a ProductValidator over the given catalog.
func NewProductValidator(products product.Repository) *ProductValidator {
	return &ProductValidator{products: products}
}

// Validate batch-fetches the referenced products and checks each line:
// the product must exist, be active, and hold enough stock. It fails fast
// with a *BusinessError; on success it returns the validated lines and
// their exact total.
func (v *ProductValidator) Validate(ctx context.Context, lines []Line) ([]ValidatedLine, money.Money, error) {
	if len(lines) == 0 {
		return nil, money.Money{}, businessErr(CodeEmptyCart, "Le panier est vide")
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		if l.Quantity <= 0 {
			return nil, money.Money{}, businessErr(CodeInvalidCartData,
				fmt.Sprintf("Quantité invalide pour le produit %s", l.ProductID))
		}
		ids[i] = l.ProductID
	}

	fetched, err := v.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, money.Money{}, errors.Wrap(err, "get products")
	}

	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	validated := make([]ValidatedLine, 0, len(lines))
	total := money.Zero(money.DefaultCurrency)
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, money.Money{}, businessErr(CodeProductNotFound,
				fmt.Sprintf("Le produit %s est introuvable", l.ProductID))
		}
		if !p.Active {
			unavailable := &product.UnavailableError{ProductID: p.ID, Name: p.Name}
			return nil, money.Money{}, businessErr(CodeProductUnavailable, unavailable.Error())
		}
		if l.Quantity > p.Stock {
			insufficient := &product.InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Available: p.Stock,
				Requested: l.Quantity,
			}
			return nil, money.Money{}, businessErr(CodeInsufficientStock, insufficient.Error())
		}

		qty, err := money.NewQuantity(l.Quantity)
		if err != nil {
			return nil, money.Money{}, err
		}
		lineTotal := p.Price.MulQuantity(qty)
		total, err = total.Add(lineTotal)
		if err != nil {
			return nil, money.Money{}, errors.Wrapf(err, "line total for product %s", p.ID)
		}

		validated = append(validated, ValidatedLine{
			Product:   p,
			Quantity:  qty,
			LineTotal: lineTotal,
		})
	}

	return validated, total, nil
}
