package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/example/fitplay/internal/models"
	"github.com/example/fitplay/internal/services"
)

// ExpirySweeper removes credits from wallets whose expiry date has passed.
// The removal goes through the wallet ledger so the balance and its
// transaction history stay consistent.
type ExpirySweeper struct {
	db     *gorm.DB
	ledger *services.WalletLedger
}

// NewExpirySweeper constructs an ExpirySweeper.
func NewExpirySweeper(db *gorm.DB, ledger *services.WalletLedger) *ExpirySweeper {
	return &ExpirySweeper{db: db, ledger: ledger}
}

// Register schedules the nightly sweep.
func (s *ExpirySweeper) Register(c *cron.Cron) error {
	_, err := c.AddFunc("30 3 * * *", s.Run)
	return err
}

// Run sweeps all expired wallets once.
func (s *ExpirySweeper) Run() {
	var wallets []models.Wallet
	err := s.db.
		Where("expires_at IS NOT NULL AND expires_at < ? AND balance > 0", time.Now()).
		Find(&wallets).Error
	if err != nil {
		log.Printf("[Expiry] wallet scan failed: %v", err)
		return
	}

	for _, wallet := range wallets {
		_, err := s.ledger.Apply(context.Background(), wallet.UserID,
			models.TransactionRemove, wallet.Balance, "credits expired")
		if err != nil {
			log.Printf("[Expiry] sweep wallet %s failed: %v", wallet.ID, err)
		}
	}

	if len(wallets) > 0 {
		log.Printf("[Expiry] swept %d expired wallets", len(wallets))
	}
}
