//go:build integration

package integration

import (
	"math"
	"net/http"
	"testing"
)

// createCart creates a fresh cart and returns its id.
func createCart(t *testing.T, userID string) string {
	t.Helper()

	resp := doPost(t, "/api/carts", map[string]string{"userId": userID})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create cart: expected 201, got %d", resp.StatusCode)
	}
	body := decodeJSON[cartResponse](t, resp)
	if body.Cart.ID == "" {
		t.Fatal("create cart: empty id")
	}
	return body.Cart.ID
}

func addItem(t *testing.T, cartID, productID string, qty int) *http.Response {
	t.Helper()
	return doPost(t, "/api/carts/"+cartID+"/items", map[string]any{
		"productId": productID,
		"quantity":  qty,
	})
}

func TestCartFlow(t *testing.T) {
	cartID := createCart(t, "")

	// Add two products.
	resp := addItem(t, cartID, "mug-emaille", 2)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d", resp.StatusCode)
	}

	resp = addItem(t, cartID, "tote-bag-coton", 1)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[cartResponse](t, resp)
	if len(body.Cart.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(body.Cart.Items))
	}
	if body.TotalItems != 3 {
		t.Errorf("total items: got %d, want 3", body.TotalItems)
	}
	// 2 × 14.50 + 1 × 9.90 = 38.90
	if math.Abs(body.TotalAmount-38.90) > 0.001 {
		t.Errorf("total amount: got %v, want 38.90", body.TotalAmount)
	}
	if body.Currency != "EUR" {
		t.Errorf("currency: got %q, want EUR", body.Currency)
	}

	// Update one line, then remove the other.
	resp = doPatch(t, "/api/carts/"+cartID+"/items/mug-emaille", map[string]int{"quantity": 1})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update item: expected 200, got %d", resp.StatusCode)
	}

	resp = doDelete(t, "/api/carts/"+cartID+"/items/tote-bag-coton")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove item: expected 200, got %d", resp.StatusCode)
	}

	body = decodeJSON[cartResponse](t, resp)
	if len(body.Cart.Items) != 1 || body.Cart.Items[0].Quantity != 1 {
		t.Fatalf("expected a single line of quantity 1, got %+v", body.Cart.Items)
	}

	// The state survives a reload.
	resp = doGet(t, "/api/carts/"+cartID)
	defer resp.Body.Close()
	body = decodeJSON[cartResponse](t, resp)
	if body.TotalItems != 1 {
		t.Errorf("reloaded total items: got %d, want 1", body.TotalItems)
	}
}

func TestCart_AddMergesSameProduct(t *testing.T) {
	cartID := createCart(t, "")

	resp := addItem(t, cartID, "mug-emaille", 1)
	resp.Body.Close()
	resp = addItem(t, cartID, "mug-emaille", 2)
	defer resp.Body.Close()

	body := decodeJSON[cartResponse](t, resp)
	if len(body.Cart.Items) != 1 {
		t.Fatalf("expected merged single line, got %d", len(body.Cart.Items))
	}
	if body.Cart.Items[0].Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", body.Cart.Items[0].Quantity)
	}
}

func TestCart_InsufficientStock(t *testing.T) {
	cartID := createCart(t, "")

	resp := addItem(t, cartID, "affiche-a2", 999)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if body.Message == "" {
		t.Error("expected a stock error message")
	}
}

func TestCart_UnknownProduct(t *testing.T) {
	cartID := createCart(t, "")

	resp := addItem(t, cartID, "inexistant", 1)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCart_ClearCart(t *testing.T) {
	cartID := createCart(t, "")

	resp := addItem(t, cartID, "mug-emaille", 1)
	resp.Body.Close()

	resp = doDelete(t, "/api/carts/"+cartID+"/items")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d", resp.StatusCode)
	}
	body := decodeJSON[cartResponse](t, resp)
	if len(body.Cart.Items) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(body.Cart.Items))
	}
}
