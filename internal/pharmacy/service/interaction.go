package service

import (
	"context"
	"fmt"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// InteractionStore persists drug interactions
type InteractionStore interface {
	Create(ctx context.Context, d *domain.DrugInteraction) error
	GetByID(ctx context.Context, id string) (*domain.DrugInteraction, error)
	List(ctx context.Context, page repository.Page) ([]domain.DrugInteraction, int64, error)
	FindBetween(ctx context.Context, x, y string) (*domain.DrugInteraction, error)
	ExistsBetween(ctx context.Context, x, y string) (bool, error)
	ListForProduct(ctx context.Context, productID string) ([]domain.DrugInteraction, error)
	ListAmong(ctx context.Context, ids []string) ([]domain.DrugInteraction, error)
	Delete(ctx context.Context, id string) error
}

// CreateInteractionInput records a known interaction between two products
type CreateInteractionInput struct {
	ProductAID  string          `json:"product_a_id" validate:"required,uuid"`
	ProductBID  string          `json:"product_b_id" validate:"required,uuid"`
	Severity    domain.Severity `json:"severity" validate:"required"`
	Description string          `json:"description" validate:"max=2000"`
}

// InteractionService manages the drug interaction register
type InteractionService struct {
	interactions InteractionStore
	products     ProductStore
	logger       *logger.Logger
}

// NewInteractionService creates a new drug interaction service
func NewInteractionService(interactions InteractionStore, products ProductStore, log *logger.Logger) *InteractionService {
	return &InteractionService{
		interactions: interactions,
		products:     products,
		logger:       log.WithComponent("interactions"),
	}
}

// Create records an interaction. The same pair in either order is a Conflict.
func (s *InteractionService) Create(ctx context.Context, in CreateInteractionInput) (*domain.DrugInteraction, error) {
	d := &domain.DrugInteraction{
		ProductAID:  in.ProductAID,
		ProductBID:  in.ProductBID,
		Severity:    in.Severity,
		Description: in.Description,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	for _, id := range []string{d.ProductAID, d.ProductBID} {
		if _, err := s.products.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}

	exists, err := s.interactions.ExistsBetween(ctx, d.ProductAID, d.ProductBID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.DuplicateRelationship("drug interaction between these products")
	}

	if err := s.interactions.Create(ctx, d); err != nil {
		return nil, err
	}
	s.logger.Info().Str("interaction_id", d.ID).Str("key", d.Key()).Msg("drug interaction recorded")
	return d, nil
}

// Get gets an interaction by ID
func (s *InteractionService) Get(ctx context.Context, id string) (*domain.DrugInteraction, error) {
	return s.interactions.GetByID(ctx, id)
}

// List lists interactions
func (s *InteractionService) List(ctx context.Context, params ListParams) ([]domain.DrugInteraction, int64, error) {
	return s.interactions.List(ctx, params.page())
}

// Between returns the interaction between two products in either order
func (s *InteractionService) Between(ctx context.Context, x, y string) (*domain.DrugInteraction, error) {
	if x == "" || y == "" {
		return nil, errors.BadRequest("both product ids are required")
	}
	return s.interactions.FindBetween(ctx, x, y)
}

// ForProduct lists the interactions a product takes part in
func (s *InteractionService) ForProduct(ctx context.Context, productID string) ([]domain.DrugInteraction, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.interactions.ListForProduct(ctx, productID)
}

// Delete deletes an interaction
func (s *InteractionService) Delete(ctx context.Context, id string) error {
	return s.interactions.Delete(ctx, id)
}

// CheckInteractions returns every known interaction between any two of
// productIDs, one entry per unordered pair.
func (s *InteractionService) CheckInteractions(ctx context.Context, productIDs []string) ([]domain.DrugInteraction, error) {
	ids := uniqueIDs(productIDs)
	if len(ids) < 2 {
		return []domain.DrugInteraction{}, nil
	}

	found, err := s.interactions.ListAmong(ctx, ids)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool)
	for _, pair := range domain.UniquePairs(ids) {
		wanted[domain.PairKey(pair[0], pair[1])] = true
	}
	out := make([]domain.DrugInteraction, 0, len(found))
	for _, d := range found {
		key := d.Key()
		if wanted[key] {
			out = append(out, d)
			delete(wanted, key)
		}
	}
	return out, nil
}

// interactionWarnings renders interactions as human-readable warnings.
func interactionWarnings(found []domain.DrugInteraction) []string {
	warnings := make([]string, 0, len(found))
	for _, d := range found {
		warnings = append(warnings, fmt.Sprintf("%s interaction between %s and %s: %s",
			d.Severity, d.ProductAID, d.ProductBID, d.Description))
	}
	return warnings
}
