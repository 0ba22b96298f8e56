package models

import (
	"github.com/google/uuid"
)

// Product is a catalog item redeemable for credits. When HasVariants is
// false a single synthetic "Default" variant carries the price. An empty
// Companies set means the product is visible to every company.
type Product struct {
	BaseModel
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	SKU             string           `gorm:"uniqueIndex" json:"sku"`
	Stock           int              `json:"stock"`
	DiscountPercent float64          `json:"discount_percent"`
	HasVariants     bool             `json:"has_variants"`
	CategoryID      *uuid.UUID       `gorm:"type:uuid" json:"category_id"`
	Category        *Category        `json:"category,omitempty"`
	SubcategoryID   *uuid.UUID       `gorm:"type:uuid" json:"subcategory_id"`
	Subcategory     *Category        `gorm:"foreignKey:SubcategoryID" json:"subcategory,omitempty"`
	VendorID        *uuid.UUID       `gorm:"type:uuid" json:"vendor_id"`
	Vendor          *Vendor          `json:"vendor,omitempty"`
	Images          []ProductImage   `json:"images,omitempty"`
	Variants        []ProductVariant `json:"variants,omitempty"`
	Companies       []Company        `gorm:"many2many:product_companies;" json:"companies,omitempty"`
}

// ProductVariant is a purchasable configuration of a product. Credits is
// the explicit credit price; when nil the price derives from MRP.
type ProductVariant struct {
	BaseModel
	ProductID       uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	VariantCategory string    `json:"variant_category"`
	VariantValue    string    `json:"variant_value"`
	SKU             string    `json:"sku"`
	MRP             float64   `json:"mrp"`
	Credits         *int64    `json:"credits"`
}

type ProductImage struct {
	BaseModel
	ProductID    uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	URL          string    `json:"url"`
	AltText      string    `json:"alt_text"`
	DisplayOrder int       `json:"display_order"`
}
