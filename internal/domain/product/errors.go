package product

import "fmt"

// UnavailableError indicates a product exists but is not active for sale.
type UnavailableError struct {
	ProductID string
	Name      string
}

func (e *UnavailableError) Error() string {
	name := e.Name
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("Le produit %s n'est plus disponible", name)
}

// InsufficientStockError indicates the requested quantity exceeds the stock
// available for a product. The message carries both figures so the shopper
// can adjust the order.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	name := e.Name
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("Stock insuffisant pour le produit %s. Disponible: %d, Demandé: %d",
		name, e.Available, e.Requested)
}
