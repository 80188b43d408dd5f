package database

import (
	"strings"

	"github.com/lib/pq"

	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

const invalidTextRepresentation = "22P02"

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return mapUniqueConstraint(pqErr)

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	// Invalid text representation (22P02), e.g. a malformed UUID
	case invalidTextRepresentation:
		return errors.BadRequest("invalid identifier or value format")

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "stock_level_non_negative"):
		return errors.ValidationField("stock_level", "must not be negative")
	case strings.Contains(constraint, "quantity_positive"):
		return errors.ValidationField("quantity", "must be greater than 0")
	case strings.Contains(constraint, "price_non_negative"):
		return errors.ValidationField("price", "must not be negative")
	case strings.Contains(constraint, "distinct_products"):
		return errors.ValidationField("product_id", "a product cannot be paired with itself")
	case strings.Contains(constraint, "status_valid"):
		return errors.ValidationField("status", "is not a valid status")
	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// mapUniqueConstraint creates a user-friendly error for unique constraint violations.
func mapUniqueConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "drug_interactions_pair"):
		return errors.DuplicateRelationship("drug interaction")
	case strings.Contains(constraint, "product_alternatives_pair"):
		return errors.DuplicateRelationship("product alternative")
	case strings.Contains(constraint, "open_prescription"):
		return errors.Conflict("prescription is already attached to an open order")
	case strings.Contains(constraint, "inventory_product_branch"):
		return errors.Conflict("inventory for this product and branch already exists")
	case strings.Contains(constraint, "sku"):
		return errors.Conflict("a product with this SKU already exists")
	case strings.Contains(constraint, "username"):
		return errors.Conflict("a user with this username already exists")
	case strings.Contains(constraint, "email"):
		return errors.Conflict("a record with this email already exists")
	case strings.Contains(constraint, "name"):
		return errors.Conflict("a record with this name already exists")
	default:
		return errors.Conflict("a record with these values already exists")
	}
}
