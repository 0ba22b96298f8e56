package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitplay/internal/models"
	"github.com/example/fitplay/internal/utils"
)

// WalletLedger is the single write path for credit balances. Every balance
// movement lands as an append-only WalletTransaction row created in the
// same database transaction as the balance update.
type WalletLedger struct {
	db *gorm.DB
}

// NewWalletLedger constructs a WalletLedger.
func NewWalletLedger(db *gorm.DB) *WalletLedger {
	return &WalletLedger{db: db}
}

// GetWallet returns the wallet owned by the user.
func (l *WalletLedger) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := l.db.WithContext(ctx).First(&wallet, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

// GetBalance returns the user's current spendable balance.
func (l *WalletLedger) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	wallet, err := l.GetWallet(ctx, userID)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// ListTransactions returns the user's ledger history, newest first.
func (l *WalletLedger) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletTransaction, int64, error) {
	query := l.db.WithContext(ctx).Model(&models.WalletTransaction{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []models.WalletTransaction
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// Apply records a ledger entry and moves the balance atomically. ADD
// credits the wallet; REMOVE and PURCHASE debit it and fail with
// InsufficientCreditsError when the balance cannot cover the amount.
func (l *WalletLedger) Apply(ctx context.Context, userID uuid.UUID, txType string, amount int64, reason string) (*models.WalletTransaction, error) {
	var entry *models.WalletTransaction
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := applyLedgerTx(tx, userID, txType, amount, reason, nil)
		if err != nil {
			return err
		}
		entry = applied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// applyLedgerTx performs the balance move inside an existing transaction so
// order settlement can share one unit of work with its order writes.
//
// Debits use a conditional UPDATE guarded by the current balance: the row
// lock taken by the UPDATE serializes concurrent debits against the same
// wallet, so two simultaneous purchases can never both pass the balance
// check.
func applyLedgerTx(tx *gorm.DB, userID uuid.UUID, txType string, amount int64, reason string, orderID *uuid.UUID) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var wallet models.Wallet
	if err := tx.First(&wallet, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	switch txType {
	case models.TransactionAdd:
		if err := tx.Model(&models.Wallet{}).Where("id = ?", wallet.ID).
			Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return nil, err
		}
	case models.TransactionRemove, models.TransactionPurchase:
		res := tx.Model(&models.Wallet{}).
			Where("id = ? AND balance >= ?", wallet.ID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, &InsufficientCreditsError{Required: amount, Balance: wallet.Balance}
		}
	default:
		return nil, fmt.Errorf("unknown wallet transaction type %q", txType)
	}

	if err := tx.First(&wallet, "id = ?", wallet.ID).Error; err != nil {
		return nil, err
	}

	entry := models.WalletTransaction{
		WalletID:     wallet.ID,
		UserID:       userID,
		Number:       utils.NewTransactionNumber(),
		Type:         txType,
		Amount:       amount,
		Reason:       reason,
		BalanceAfter: wallet.Balance,
		OrderID:      orderID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}
