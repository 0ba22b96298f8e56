package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/example/fitplay/internal/models"
)

func TestCreditPricePrefersExplicitCredits(t *testing.T) {
	credits := int64(750)
	variant := models.ProductVariant{MRP: 100, Credits: &credits}

	if got := CreditPrice(variant); got != 750 {
		t.Fatalf("expected 750, got %d", got)
	}
}

func TestCreditPriceDerivesFromMRP(t *testing.T) {
	cases := []struct {
		mrp  float64
		want int64
	}{
		{100, 200},
		{49.75, 100},
		{0.2, 0},
		{0.25, 1},
	}

	for _, tc := range cases {
		got := CreditPrice(models.ProductVariant{MRP: tc.mrp})
		if got != tc.want {
			t.Fatalf("MRP %.2f: expected %d, got %d", tc.mrp, tc.want, got)
		}
	}
}

func TestIsVisibleTo(t *testing.T) {
	companyA := models.Company{}
	companyA.ID = uuid.New()
	companyB := models.Company{}
	companyB.ID = uuid.New()

	unrestricted := models.Product{}
	if !IsVisibleTo(unrestricted, companyA.ID) {
		t.Fatal("unrestricted product should be visible to any company")
	}
	if !IsVisibleTo(unrestricted, uuid.Nil) {
		t.Fatal("unrestricted product should be visible without a company")
	}

	restricted := models.Product{Companies: []models.Company{companyA}}
	if !IsVisibleTo(restricted, companyA.ID) {
		t.Fatal("restricted product should be visible to its company")
	}
	if IsVisibleTo(restricted, companyB.ID) {
		t.Fatal("restricted product should be hidden from other companies")
	}
	if IsVisibleTo(restricted, uuid.Nil) {
		t.Fatal("restricted product should be hidden without a company")
	}
}
