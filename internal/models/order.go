package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses.
const (
	OrderPending    = "PENDING"
	OrderApproved   = "APPROVED"
	OrderDispatched = "DISPATCHED"
	OrderDelivered  = "DELIVERED"
	OrderCancelled  = "CANCELLED"
)

var validNextStatus = map[string]map[string]bool{
	OrderPending:    {OrderApproved: true, OrderCancelled: true},
	OrderApproved:   {OrderDispatched: true, OrderCancelled: true},
	OrderDispatched: {OrderDelivered: true, OrderCancelled: true},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	return validNextStatus[from][to]
}

// IsOrderStatus reports whether s is a known order status.
func IsOrderStatus(s string) bool {
	_, ok := validNextStatus[s]
	return ok
}

// Order is the financial record of a credit redemption. Orders are never
// deleted; after creation only status and remarks change.
type Order struct {
	BaseModel
	UserID               uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User                 *User       `json:"user,omitempty"`
	Number               string      `gorm:"uniqueIndex" json:"number"`
	Status               string      `gorm:"index" json:"status"`
	Amount               int64       `json:"amount"`
	ShippingAddress      string      `json:"shipping_address"`
	ShippingPhone        string      `json:"shipping_phone"`
	DeliveryInstructions string      `json:"delivery_instructions"`
	Remarks              string      `json:"remarks"`
	TransactionID        *uuid.UUID  `gorm:"type:uuid" json:"transaction_id"`
	PlacedAt             time.Time   `json:"placed_at"`
	Items                []OrderItem `json:"items,omitempty"`
}

// OrderItem freezes the credit price of a variant at purchase time.
// Price must never be recomputed from the current variant.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID       `gorm:"type:uuid;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid" json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	VariantID *uuid.UUID      `gorm:"type:uuid" json:"variant_id"`
	Variant   *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     int64           `json:"price"`
}
