//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) < 4 {
		t.Fatalf("expected at least 4 products, got %d", len(products))
	}
	for _, p := range products {
		if !p.Active {
			t.Errorf("product %s: listing must only contain active products", p.ID)
		}
		if p.Price <= 0 {
			t.Errorf("product %s: price %v, want > 0", p.ID, p.Price)
		}
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/products/mug-emaille")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	p := decodeJSON[productResponse](t, resp)
	if p.Name != "Mug émaillé" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.Price != 14.5 {
		t.Errorf("price: got %v, want 14.5", p.Price)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/inexistant")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Message == "" {
		t.Error("expected a French error message")
	}
}

func TestListShippingMethods(t *testing.T) {
	resp := doGet(t, "/api/shipping-methods")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
