package service

import (
	"context"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/cache"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// AlternativeBackrefs finds the products that list a product as an alternative
type AlternativeBackrefs interface {
	ListProductIDsByAlternative(ctx context.Context, altID string) ([]string, error)
}

// ProductViews owns the cached reads derived from a product: the product
// itself, its recommended alternatives, and the recommendations of every
// product that offers it as a substitute. A nil *ProductViews caches nothing.
type ProductViews struct {
	cache    *cache.Cache
	backrefs AlternativeBackrefs
	logger   *logger.Logger
}

// NewProductViews creates the product view cache over c
func NewProductViews(c *cache.Cache, backrefs AlternativeBackrefs, log *logger.Logger) *ProductViews {
	return &ProductViews{
		cache:    c,
		backrefs: backrefs,
		logger:   log.WithComponent("product-views"),
	}
}

func (v *ProductViews) store() *cache.Cache {
	if v == nil {
		return nil
	}
	return v.cache
}

// product returns the cached product, loading it on a miss
func (v *ProductViews) product(ctx context.Context, id string, load func(ctx context.Context) (*domain.Product, error)) (*domain.Product, error) {
	return cache.GetOrSet(ctx, v.store(), productCacheKey(id), load)
}

// Changed drops every cached view that depends on the stock, price or
// category of the given products.
func (v *ProductViews) Changed(ctx context.Context, productIDs ...string) {
	c := v.store()
	if c == nil || len(productIDs) == 0 {
		return
	}

	keys := make([]string, 0, 2*len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, productCacheKey(id), recommendedCacheKey(id))

		bases, err := v.backrefs.ListProductIDsByAlternative(ctx, id)
		if err != nil {
			// The base entries expire with the cache TTL.
			v.logger.Warn().Err(err).Str("product_id", id).Msg("failed to list products offering this alternative")
			continue
		}
		for _, base := range bases {
			keys = append(keys, recommendedCacheKey(base))
		}
	}
	c.Invalidate(ctx, keys...)
}
