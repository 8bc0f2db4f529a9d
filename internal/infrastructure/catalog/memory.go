package catalog

import (
	"sync"

	"github.com/shelfwatch/backend/internal/domain"
)

// Memory holds the current product list in memory. Replace swaps the whole
// list atomically; readers always see a complete, consistent snapshot.
type Memory struct {
	products []domain.Product
	mutex    sync.RWMutex
}

// NewMemory creates an empty catalog
func NewMemory() *Memory {
	return &Memory{}
}

// Replace swaps the catalog contents with a copy of products
func (m *Memory) Replace(products []domain.Product) {
	copied := make([]domain.Product, len(products))
	copy(copied, products)

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.products = copied
}

// List returns a copy of the current product list
func (m *Memory) List() []domain.Product {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	copied := make([]domain.Product, len(m.products))
	copy(copied, m.products)
	return copied
}

// Len returns the number of products in the catalog
func (m *Memory) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.products)
}
