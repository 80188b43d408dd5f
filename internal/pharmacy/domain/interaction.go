package domain

import (
	"time"

	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

// Severity grades a drug interaction.
type Severity string

const (
	SeverityMinor           Severity = "MINOR"
	SeverityModerate        Severity = "MODERATE"
	SeverityMajor           Severity = "MAJOR"
	SeverityContraindicated Severity = "CONTRAINDICATED"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeverityMajor, SeverityContraindicated:
		return true
	}
	return false
}

// DrugInteraction is an unordered relation between two products.
type DrugInteraction struct {
	ID          string    `db:"id" json:"id"`
	ProductAID  string    `db:"product_a_id" json:"product_a_id"`
	ProductBID  string    `db:"product_b_id" json:"product_b_id"`
	Severity    Severity  `db:"severity" json:"severity"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PairKey identifies an unordered product pair: PairKey(x, y) == PairKey(y, x).
func PairKey(x, y string) string {
	if y < x {
		x, y = y, x
	}
	return x + ":" + y
}

// Key returns the interaction's unordered pair key.
func (d *DrugInteraction) Key() string {
	return PairKey(d.ProductAID, d.ProductBID)
}

// Involves reports whether productID is either side of the interaction.
func (d *DrugInteraction) Involves(productID string) bool {
	return d.ProductAID == productID || d.ProductBID == productID
}

// Validate rejects self-interactions and unknown severities.
func (d *DrugInteraction) Validate() error {
	details := map[string]string{}
	if d.ProductAID == d.ProductBID {
		details["product_b_id"] = "a product cannot interact with itself"
	}
	if !d.Severity.Valid() {
		details["severity"] = "must be one of: MINOR MODERATE MAJOR CONTRAINDICATED"
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// UniquePairs returns every unordered pair of distinct ids, skipping duplicates.
func UniquePairs(ids []string) [][2]string {
	seen := make(map[string]bool, len(ids))
	distinct := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}

	pairs := make([][2]string, 0, len(distinct)*(len(distinct)-1)/2)
	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			pairs = append(pairs, [2]string{distinct[i], distinct[j]})
		}
	}
	return pairs
}
