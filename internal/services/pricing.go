package services

import (
	"math"

	"github.com/google/uuid"

	"github.com/example/fitplay/internal/models"
)

// CreditRate is the platform-wide credits-per-MRP exchange rate.
const CreditRate = 2

// CreditPrice returns the credit price of a variant: the explicit credit
// price when stored, otherwise MRP times CreditRate. Every surface that
// displays or charges credits must derive the price here so the shown
// price and the charged price cannot drift.
func CreditPrice(v models.ProductVariant) int64 {
	if v.Credits != nil {
		return *v.Credits
	}
	return int64(math.Round(v.MRP * CreditRate))
}

// IsVisibleTo reports whether a product may appear on a company's
// storefront. A product with no company restrictions is visible to all.
func IsVisibleTo(p models.Product, companyID uuid.UUID) bool {
	if len(p.Companies) == 0 {
		return true
	}
	for _, company := range p.Companies {
		if company.ID == companyID {
			return true
		}
	}
	return false
}
