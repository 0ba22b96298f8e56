package models

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name     string     `json:"name"`
	Slug     string     `gorm:"uniqueIndex" json:"slug"`
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	Parent   *Category  `json:"parent,omitempty"`
	Products []Product  `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

type Vendor struct {
	BaseModel
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	Products     []Product `json:"products,omitempty"`
}
