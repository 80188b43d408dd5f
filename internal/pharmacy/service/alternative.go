package service

import (
	"context"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/cache"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

func recommendedCacheKey(productID string) string {
	return "alternatives:recommended:" + productID
}

// AlternativeStore persists product alternatives
type AlternativeStore interface {
	Create(ctx context.Context, a *domain.ProductAlternative) error
	Exists(ctx context.Context, productID, altID string) (bool, error)
	ListDetailedByProduct(ctx context.Context, productID string) ([]domain.AlternativeDetail, error)
	Delete(ctx context.Context, productID, id string) error
}

// CreateAlternativeInput lists another product as a substitute
type CreateAlternativeInput struct {
	AlternativeProductID string `json:"alternative_product_id" validate:"required,uuid"`
	Reason               string `json:"reason" validate:"max=1000"`
}

// AlternativeService manages product substitutes
type AlternativeService struct {
	alternatives AlternativeStore
	products     ProductStore
	cache        *cache.Cache
	logger       *logger.Logger
}

// NewAlternativeService creates a new product alternative service
func NewAlternativeService(alternatives AlternativeStore, products ProductStore, c *cache.Cache, log *logger.Logger) *AlternativeService {
	return &AlternativeService{
		alternatives: alternatives,
		products:     products,
		cache:        c,
		logger:       log.WithComponent("alternatives"),
	}
}

// Add lists an alternative for productID
func (s *AlternativeService) Add(ctx context.Context, productID string, in CreateAlternativeInput) (*domain.ProductAlternative, error) {
	a := &domain.ProductAlternative{
		ProductID:            productID,
		AlternativeProductID: in.AlternativeProductID,
		Reason:               in.Reason,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	for _, id := range []string{a.ProductID, a.AlternativeProductID} {
		if _, err := s.products.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}

	exists, err := s.alternatives.Exists(ctx, a.ProductID, a.AlternativeProductID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.DuplicateRelationship("product alternative")
	}

	if err := s.alternatives.Create(ctx, a); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, recommendedCacheKey(productID))
	return a, nil
}

// List lists every alternative of a product with its details
func (s *AlternativeService) List(ctx context.Context, productID string) ([]domain.AlternativeDetail, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.alternatives.ListDetailedByProduct(ctx, productID)
}

// Recommended returns the alternatives that are in stock, in the same
// category and cheaper. Results are cached until the product, its
// alternative links or any listed alternative changes.
func (s *AlternativeService) Recommended(ctx context.Context, productID string) ([]domain.AlternativeDetail, error) {
	return cache.GetOrSet(ctx, s.cache, recommendedCacheKey(productID), func(ctx context.Context) ([]domain.AlternativeDetail, error) {
		all, err := s.List(ctx, productID)
		if err != nil {
			return nil, err
		}
		return domain.RecommendedAlternatives(all), nil
	})
}

// Remove deletes one alternative of a product
func (s *AlternativeService) Remove(ctx context.Context, productID, alternativeID string) error {
	if err := s.alternatives.Delete(ctx, productID, alternativeID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, recommendedCacheKey(productID))
	return nil
}
