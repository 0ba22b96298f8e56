package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet transaction types.
const (
	TransactionAdd      = "ADD"
	TransactionRemove   = "REMOVE"
	TransactionPurchase = "PURCHASE"
)

// Wallet holds a user's spendable credit balance. It is mutated only
// through the wallet ledger; the sum of all transactions must equal the
// balance at all times.
type Wallet struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Balance   int64      `json:"balance"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// WalletTransaction is an append-only ledger entry. Amount is always
// positive; the type determines the sign applied to the balance.
type WalletTransaction struct {
	BaseModel
	WalletID     uuid.UUID  `gorm:"type:uuid;index" json:"wallet_id"`
	UserID       uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	Number       string     `gorm:"uniqueIndex" json:"number"`
	Type         string     `json:"type"`
	Amount       int64      `json:"amount"`
	Reason       string     `json:"reason"`
	BalanceAfter int64      `json:"balance_after"`
	OrderID      *uuid.UUID `gorm:"type:uuid" json:"order_id"`
}
