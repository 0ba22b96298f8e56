package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/fitplay/internal/models"
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

	if err := db.AutoMigrate(
		&models.Company{}, &models.User{}, &models.Wallet{}, &models.WalletTransaction{},
		&models.Category{}, &models.Vendor{}, &models.Product{}, &models.ProductVariant{},
		&models.ProductImage{}, &models.Order{}, &models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

func seedUserWithCredits(t *testing.T, db *gorm.DB, balance int64) models.User {
	t.Helper()

	user := models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     uuid.NewString() + "@example.com",
		Role:      models.RoleEmployee,
		IsClaimed: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := db.Create(&models.Wallet{UserID: user.ID}).Error; err != nil {
		t.Fatalf("create wallet: %v", err)
	}

	if balance > 0 {
		ledger := NewWalletLedger(db)
		if _, err := ledger.Apply(context.Background(), user.ID, models.TransactionAdd, balance, "initial allocation"); err != nil {
			t.Fatalf("seed balance: %v", err)
		}
	}

	return user
}

func seedProduct(t *testing.T, db *gorm.DB, stock int, credits int64) (models.Product, models.ProductVariant) {
	t.Helper()

	product := models.Product{
		Name:  "Yoga Mat",
		SKU:   uuid.NewString(),
		Stock: stock,
		Variants: []models.ProductVariant{{
			VariantCategory: "Default",
			VariantValue:    "Default",
			SKU:             uuid.NewString(),
			MRP:             float64(credits) / 2,
			Credits:         &credits,
		}},
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	return product, product.Variants[0]
}

func walletBalance(t *testing.T, db *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()

	var wallet models.Wallet
	if err := db.First(&wallet, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("load wallet: %v", err)
	}
	return wallet.Balance
}
