package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

// ProductAlternative links a product to one that can substitute for it.
type ProductAlternative struct {
	ID                   string    `db:"id" json:"id"`
	ProductID            string    `db:"product_id" json:"product_id"`
	AlternativeProductID string    `db:"alternative_product_id" json:"alternative_product_id"`
	Reason               string    `db:"reason" json:"reason"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}

// Validate rejects a product listed as its own alternative.
func (a *ProductAlternative) Validate() error {
	if a.ProductID == a.AlternativeProductID {
		return errors.ValidationField("alternative_product_id", "a product cannot be its own alternative")
	}
	return nil
}

// AlternativeDetail is a ProductAlternative joined with both products.
type AlternativeDetail struct {
	ProductAlternative
	ProductPrice             decimal.Decimal `db:"product_price" json:"-"`
	ProductCategoryID        *string         `db:"product_category_id" json:"-"`
	AlternativeName          string          `db:"alternative_name" json:"alternative_name"`
	AlternativeSKU           string          `db:"alternative_sku" json:"alternative_sku"`
	AlternativePrice         decimal.Decimal `db:"alternative_price" json:"alternative_price"`
	AlternativeCategoryID    *string         `db:"alternative_category_id" json:"alternative_category_id,omitempty"`
	AlternativeStockQuantity int             `db:"alternative_stock_quantity" json:"alternative_stock_quantity"`
}

// SameCategory is true when both products share a category.
func (d *AlternativeDetail) SameCategory() bool {
	return d.ProductCategoryID != nil && d.AlternativeCategoryID != nil &&
		*d.ProductCategoryID == *d.AlternativeCategoryID
}

// CheaperAlternative is true when the alternative costs strictly less.
func (d *AlternativeDetail) CheaperAlternative() bool {
	return d.AlternativePrice.LessThan(d.ProductPrice)
}

// InStock is true when the alternative has stock on hand.
func (d *AlternativeDetail) InStock() bool {
	return d.AlternativeStockQuantity > 0
}

// RecommendedAlternatives keeps the alternatives that are in stock, in the
// same category and cheaper. Input order is preserved.
func RecommendedAlternatives(all []AlternativeDetail) []AlternativeDetail {
	out := make([]AlternativeDetail, 0, len(all))
	for _, d := range all {
		if d.InStock() && d.SameCategory() && d.CheaperAlternative() {
			out = append(out, d)
		}
	}
	return out
}
