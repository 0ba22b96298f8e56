package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/fitplay/internal/models"
	"github.com/example/fitplay/internal/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Wallet{}, &models.WalletTransaction{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedWallet(t *testing.T, db *gorm.DB, balance int64, expiresAt *time.Time) models.User {
	t.Helper()

	user := models.User{
		FirstName: "Test",
		Email:     uuid.NewString() + "@example.com",
		Role:      models.RoleEmployee,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := db.Create(&models.Wallet{UserID: user.ID, ExpiresAt: expiresAt}).Error; err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if balance > 0 {
		ledger := services.NewWalletLedger(db)
		if _, err := ledger.Apply(context.Background(), user.ID, models.TransactionAdd, balance, "allocation"); err != nil {
			t.Fatalf("seed balance: %v", err)
		}
	}
	return user
}

func TestRunSweepsExpiredWallets(t *testing.T) {
	db := newTestDB(t)
	ledger := services.NewWalletLedger(db)

	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	expired := seedWallet(t, db, 300, &past)
	active := seedWallet(t, db, 300, &future)
	open := seedWallet(t, db, 300, nil)

	NewExpirySweeper(db, ledger).Run()

	if balance, _ := ledger.GetBalance(context.Background(), expired.ID); balance != 0 {
		t.Fatalf("expected expired wallet to be emptied, got %d", balance)
	}
	if balance, _ := ledger.GetBalance(context.Background(), active.ID); balance != 300 {
		t.Fatalf("future expiry must be untouched, got %d", balance)
	}
	if balance, _ := ledger.GetBalance(context.Background(), open.ID); balance != 300 {
		t.Fatalf("wallet without expiry must be untouched, got %d", balance)
	}

	var entry models.WalletTransaction
	err := db.Where("user_id = ? AND type = ?", expired.ID, models.TransactionRemove).First(&entry).Error
	if err != nil {
		t.Fatalf("expected a REMOVE ledger entry: %v", err)
	}
	if entry.Amount != 300 || entry.Reason != "credits expired" {
		t.Fatalf("unexpected sweep entry: %+v", entry)
	}

	// A second sweep is a no-op.
	NewExpirySweeper(db, ledger).Run()
	var entries int64
	if err := db.Model(&models.WalletTransaction{}).
		Where("user_id = ? AND type = ?", expired.ID, models.TransactionRemove).
		Count(&entries).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if entries != 1 {
		t.Fatalf("expected one sweep entry, got %d", entries)
	}
}
