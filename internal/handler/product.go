package handler

import (
	"net/http"

	"github.com/lebonpanier/boutique-api/internal/domain/product"
	"github.com/lebonpanier/boutique-api/internal/domain/shipping"
)

type productResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Slug   string  `json:"slug"`
	Price  float64 `json:"price"`
	Stock  int     `json:"stock"`
	Active bool    `json:"active"`
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:     p.ID,
		Name:   p.Name,
		Slug:   p.Slug,
		Price:  p.Price.Amount().InexactFloat64(),
		Stock:  p.Stock,
		Active: p.Active,
	}
}

// ListProducts returns the active catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetProduct returns a single product by id.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*p))
}

type shippingMethodResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ListShippingMethods returns the active shipping options.
func (h *Handler) ListShippingMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.shipping.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]shippingMethodResponse, len(methods))
	for i, m := range methods {
		resp[i] = toShippingMethodResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

func toShippingMethodResponse(m shipping.Method) shippingMethodResponse {
	return shippingMethodResponse{
		ID:    m.ID,
		Name:  m.Name,
		Price: m.Price.Amount().InexactFloat64(),
	}
}
