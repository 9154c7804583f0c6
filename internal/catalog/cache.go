package catalog

import (
	"context"
	"sync"

	"github.com/rosie073/shopfinalcross/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const loadKey = "catalog"

// Source is the remote side of the catalog.
type Source interface {
	List(ctx context.Context) ([]domain.Product, error)
	SaveAll(ctx context.Context, products []domain.Product) error
}

// Cache memoizes the product listing. It never fails: when the remote listing
// is unavailable or empty the compiled-in seed catalog is served instead.
type Cache struct {
	source Source
	log    *zap.Logger
	sfg    singleflight.Group

	mu       sync.RWMutex
	products []domain.Product
	loaded   bool
	gen      uint64
}

func NewCache(source Source, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{source: source, log: log}
}

func (c *Cache) List(ctx context.Context) []domain.Product {
	if products, ok := c.memo(); ok {
		return products
	}

	v, _, _ := c.sfg.Do(loadKey, func() (interface{}, error) {
		if products, ok := c.memo(); ok {
			return products, nil
		}
		return c.load(ctx), nil
	})
	return cloneProducts(v.([]domain.Product))
}

func (c *Cache) load(ctx context.Context) []domain.Product {
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	remote, err := c.source.List(ctx)
	if err != nil {
		// not memoized; the next List retries the remote
		c.log.Warn("catalog fetch failed, serving seed products", zap.Error(err))
		return SeedProducts()
	}

	products := remote
	if len(products) == 0 {
		products = SeedProducts()
	} else {
		products = withoutSeedDuplicates(products)
	}

	c.mu.Lock()
	if c.gen == gen {
		c.products = products
		c.loaded = true
	}
	c.mu.Unlock()
	return products
}

func (c *Cache) memo() ([]domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, false
	}
	return cloneProducts(c.products), true
}

// Get finds a product by id, in any of its numeric or string spellings.
func (c *Cache) Get(ctx context.Context, id any) (domain.Product, error) {
	want := domain.NormalizeID(id)
	for _, p := range c.List(ctx) {
		if domain.NormalizeID(p.ID) == want {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

// NewArrivals and Featured split the listing the way the home page shows it.
func (c *Cache) NewArrivals(ctx context.Context) []domain.Product {
	products := c.List(ctx)
	if len(products) > newArrivalCount {
		products = products[:newArrivalCount]
	}
	return products
}

func (c *Cache) Featured(ctx context.Context) []domain.Product {
	products := c.List(ctx)
	if len(products) <= newArrivalCount {
		return []domain.Product{}
	}
	return products[newArrivalCount:]
}

// Invalidate drops the memo; a load already in flight will not repopulate it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = nil
	c.loaded = false
	c.gen++
}

// Seed writes the seed catalog to the remote store and primes the memo with it.
// The memo is primed even when the write fails.
func (c *Cache) Seed(ctx context.Context) error {
	seed := SeedProducts()
	err := c.source.SaveAll(ctx, seed)

	c.mu.Lock()
	c.products = seed
	c.loaded = true
	c.gen++
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("catalog seed failed, continuing with local seed", zap.Error(err))
		return domain.NewBackendError("seed catalog", err)
	}
	return nil
}

func cloneProducts(in []domain.Product) []domain.Product {
	out := make([]domain.Product, len(in))
	for i, p := range in {
		p.Gallery = append([]string(nil), p.Gallery...)
		out[i] = p
	}
	return out
}
