package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lebonpanier/boutique-api/internal/domain/cart"
	"github.com/lebonpanier/boutique-api/internal/domain/money"
)

// cartResponse wraps the cart document with its derived totals. The cart
// itself marshals through the aggregate's own JSON representation.
type cartResponse struct {
	Cart        *cart.Cart `json:"cart"`
	TotalAmount float64    `json:"totalAmount"`
	Currency    string     `json:"currency"`
	TotalItems  int        `json:"totalItems"`
}

func writeCart(w http.ResponseWriter, r *http.Request, status int, c *cart.Cart) {
	total, err := c.TotalAmount()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, status, cartResponse{
		Cart:        c,
		TotalAmount: total.Amount().InexactFloat64(),
		Currency:    total.Currency(),
		TotalItems:  c.TotalItems(),
	})
}

type createCartRequest struct {
	UserID string `json:"userId"`
}

// CreateCart creates an empty cart, optionally bound to a user.
func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	var req createCartRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "", "Requête invalide")
			return
		}
	}

	c := cart.New(uuid.New().String(), req.UserID)
	if err := h.carts.Save(r.Context(), c); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeCart(w, r, http.StatusCreated, c)
}

// GetCart returns a cart with its totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), r.PathValue("cartID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeCart(w, r, http.StatusOK, c)
}

type addItemRequest struct {
	ItemID    string `json:"itemId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// AddCartItem admits a product into the cart. The product row is fetched
// fresh so the admission decision always runs against current stock and
// availability. When itemId is omitted it defaults to the product id, which
// naturally merges repeated adds of the same product into one line.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "", "Requête invalide")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "", "L'identifiant du produit est requis")
		return
	}

	qty, err := money.NewQuantity(req.Quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	c, err := h.carts.Get(r.Context(), r.PathValue("cartID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	itemID := req.ItemID
	if itemID == "" {
		itemID = p.ID
	}

	next, err := c.AddItem(itemID, *p, qty)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.carts.Save(r.Context(), next); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeCart(w, r, http.StatusOK, next)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem replaces a line's quantity; zero removes the line.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "", "Requête invalide")
		return
	}

	qty, err := money.NewQuantity(req.Quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	c, err := h.carts.Get(r.Context(), r.PathValue("cartID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	next, err := c.UpdateItemQuantity(r.PathValue("itemID"), qty)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.carts.Save(r.Context(), next); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeCart(w, r, http.StatusOK, next)
}

// RemoveCartItem deletes a line from the cart.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), r.PathValue("cartID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	next, err := c.RemoveItem(r.PathValue("itemID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.carts.Save(r.Context(), next); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeCart(w, r, http.StatusOK, next)
}

// ClearCart empties the cart unconditionally.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), r.PathValue("cartID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	next := c.Clear()
	if err := h.carts.Save(r.Context(), next); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeCart(w, r, http.StatusOK, next)
}
