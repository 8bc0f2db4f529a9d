package domain

import "fmt"

// Product represents one inventory item as reported by the catalog.
// Products are read-only inputs to the advisor core; they are never mutated.
type Product struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SKU          string `json:"sku,omitempty"`
	Category     string `json:"category,omitempty"`
	Stock        int    `json:"stock"`
	ReorderPoint int    `json:"reorderPoint,omitempty"`
	UnitPrice    int64  `json:"unitPrice,omitempty"` // minor currency units (cents)
}

// Validate checks the invariants the API accepts products under.
func (p Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidProduct)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must be >= 0", ErrInvalidProduct)
	}
	if p.UnitPrice < 0 {
		return fmt.Errorf("%w: unitPrice must be >= 0", ErrInvalidProduct)
	}
	return nil
}

// RestockRequest is the payload sent to the advisor service for one product.
type RestockRequest struct {
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Category    string `json:"category"`
	Quantity    int    `json:"quantity"`
}

// NewRestockRequest derives the advisor request from a product snapshot.
// Missing SKUs and categories get deterministic defaults so the request is
// always complete.
func NewRestockRequest(p Product) RestockRequest {
	sku := p.SKU
	if sku == "" {
		sku = "SKU-" + p.ID
	}
	category := p.Category
	if category == "" {
		category = "general"
	}
	return RestockRequest{
		ProductName: p.Name,
		SKU:         sku,
		Category:    category,
		Quantity:    p.Stock,
	}
}
