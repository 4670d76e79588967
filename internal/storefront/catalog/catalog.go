// Package catalog holds the read-only product catalog. Iteration order is
// load order and is never resorted.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
)

//go:embed products.yaml
var defaultCatalog []byte

// Catalog is an ordered, immutable set of products.
type Catalog struct {
	products []domain.Product
	index    map[string]int
}

// New validates the products and builds a catalog preserving their order.
func New(products []domain.Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("catalog has no products")
	}

	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		index:    make(map[string]int, len(products)),
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[p.Key]; dup {
			return nil, fmt.Errorf("duplicate product key %q", p.Key)
		}
		c.index[p.Key] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	products, err := parseYAML(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("parse default catalog: %w", err)
	}
	return New(products)
}

// Get returns the product with the exact key.
func (c *Catalog) Get(key string) (domain.Product, error) {
	i, ok := c.index[key]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, key)
	}
	return c.products[i], nil
}

// List returns all products in load order.
func (c *Catalog) List() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len reports the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}
