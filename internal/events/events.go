package events

import (
	"encoding/json"
	"time"
)

// Order lifecycle event types.
const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

// Envelope wraps every published event with routing metadata. The
// correlation ID is the order ID so consumers can partition per order.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderItemPayload struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

type OrderCreatedPayload struct {
	OrderID string             `json:"order_id"`
	Number  string             `json:"number"`
	UserID  string             `json:"user_id"`
	Items   []OrderItemPayload `json:"items"`
	Amount  int64              `json:"amount"`
}

type OrderStatusChangedPayload struct {
	OrderID    string `json:"order_id"`
	Number     string `json:"number"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Remarks    string `json:"remarks,omitempty"`
}
