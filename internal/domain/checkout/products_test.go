package checkout

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebonpanier/boutique-api/internal/domain/money"
	"github.com/lebonpanier/boutique-api/internal/domain/product"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID   map[string]product.Product
	getErr error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) { return nil, nil }

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) GetBySlug(_ context.Context, _ string) (*product.Product, error) {
	return nil, product.ErrNotFound
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- Helpers ---

func newCatalogProduct(t *testing.T, id, price string, stock int) product.Product {
	t.Helper()
	m, err := money.New(decimal.RequireFromString(price), "EUR")
	require.NoError(t, err)
	return product.Product{ID: id, Name: "Produit " + id, Slug: "produit-" + id, Price: m, Stock: stock, Active: true}
}

func newProductRepo(products ...product.Product) *mockProductRepo {
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &mockProductRepo{byID: byID}
}

// --- Tests ---

func TestProductValidate_OK(t *testing.T) {
	p1 := newCatalogProduct(t, "p1", "10.00", 10)
	p2 := newCatalogProduct(t, "p2", "5.50", 10)
	v := NewProductValidator(newProductRepo(p1, p2))

	lines, total, err := v.Validate(context.Background(), []Line{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	want, err := money.New(decimal.RequireFromString("25.50"), "EUR")
	require.NoError(t, err)
	assert.True(t, total.Equal(want))
	assert.Equal(t, 2, lines[0].Quantity.Int())
	assert.True(t, lines[0].LineTotal.Equal(p1.Price.MulQuantity(lines[0].Quantity)))
}

func TestProductValidate_EmptyLines(t *testing.T) {
	v := NewProductValidator(newProductRepo())

	_, _, err := v.Validate(context.Background(), nil)

	var bErr *BusinessError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeEmptyCart, bErr.Code)
}

func TestProductValidate_InvalidQuantity(t *testing.T) {
	v := NewProductValidator(newProductRepo())

	_, _, err := v.Validate(context.Background(), []Line{{ProductID: "p1", Quantity: 0}})

	var bErr *BusinessError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeInvalidCartData, bErr.Code)
	assert.Equal(t, "Quantité invalide pour le produit p1", bErr.Message)
}

func TestProductValidate_NotFound(t *testing.T) {
	v := NewProductValidator(newProductRepo())

	_, _, err := v.Validate(context.Background(), []Line{{ProductID: "ghost", Quantity: 1}})

	var bErr *BusinessError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeProductNotFound, bErr.Code)
	assert.Equal(t, "Le produit ghost est introuvable", bErr.Message)
}

func TestProductValidate_Inactive(t *testing.T) {
	p := newCatalogProduct(t, "p1", "10.00", 10)
	p.Active = false
	v := NewProductValidator(newProductRepo(p))

	_, _, err := v.Validate(context.Background(), []Line{{ProductID: "p1", Quantity: 1}})

	var bErr *BusinessError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeProductUnavailable, bErr.Code)
}

func TestProductValidate_InsufficientStock(t *testing.T) {
	p := newCatalogProduct(t, "p1", "10.00", 5)
	v := NewProductValidator(newProductRepo(p))

	_, _, err := v.Validate(context.Background(), []Line{{ProductID: "p1", Quantity: 10}})

	var bErr *BusinessError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeInsufficientStock, bErr.Code)
	assert.Equal(t, "Stock insuffisant pour le produit Produit p1. Disponible: 5, Demandé: 10", bErr.Message)
}

func TestProductValidate_RepositoryError(t *testing.T) {
	repoErr := errors.New("db down")
	v := NewProductValidator(&mockProductRepo{getErr: repoErr})

	_, _, err := v.Validate(context.Background(), []Line{{ProductID: "p1", Quantity: 1}})

	require.ErrorIs(t, err, repoErr)
	var bErr *BusinessError
	assert.False(t, errors.As(err, &bErr))
}
