package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidAmount   = errors.New("amount must be positive")
)

// InsufficientCreditsError is returned when a debit exceeds the wallet
// balance. Balance is the balance observed when the debit was attempted.
type InsufficientCreditsError struct {
	Required int64
	Balance  int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: need %d, have %d", e.Required, e.Balance)
}

// Shortfall returns how many credits the wallet is missing.
func (e *InsufficientCreditsError) Shortfall() int64 {
	return e.Required - e.Balance
}

// InsufficientStockError is returned when an order line exceeds the
// product's available stock.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// InvalidTransitionError is returned when an order status change violates
// the order state machine.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition %s -> %s", e.From, e.To)
}
