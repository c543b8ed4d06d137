package catalog

import (
	"context"
	"sync"

	"github.com/gasflow/backend/internal/domain/catalog"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StaticProductCatalog serves product master data from memory. Master data
// is owned by an upstream system; this catalog holds the synced snapshot.
type StaticProductCatalog struct {
	mu       sync.RWMutex
	products map[uuid.UUID]catalog.Product
}

// NewStaticProductCatalog creates a catalog preloaded with the given products
func NewStaticProductCatalog(products ...catalog.Product) *StaticProductCatalog {
	c := &StaticProductCatalog{products: make(map[uuid.UUID]catalog.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// Put adds or replaces a product
func (c *StaticProductCatalog) Put(product catalog.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[product.ID] = product
}

// Get returns the product or shared.ErrNotFound
func (c *StaticProductCatalog) Get(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[productID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}
