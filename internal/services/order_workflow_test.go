package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitplay/internal/models"
)

func newTestWorkflow(db *gorm.DB) *OrderWorkflow {
	return NewOrderWorkflow(db, NewWalletLedger(db), nil, nil)
}

func TestCreateOrderSettlement(t *testing.T) {
	db := newTestDB(t)
	user := seedUserWithCredits(t, db, 1000)
	product, variantA := seedProduct(t, db, 5, 300)
	second, variantB := seedProduct(t, db, 4, 350)
	workflow := newTestWorkflow(db)

	order, err := workflow.CreateOrder(context.Background(), user.ID, CreateOrderRequest{
		Items: []OrderItemRequest{
			{VariantID: variantA.ID, Quantity: 2},
			{VariantID: variantB.ID, Quantity: 1},
		},
		Shipping: ShippingInfo{Address: "12 Gym Lane", Phone: "+1-555-0100"},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if order.Amount != 950 {
		t.Fatalf("expected amount 950, got %d", order.Amount)
	}
	if order.Status != models.OrderPending {
		t.Fatalf("expected status PENDING, got %s", order.Status)
	}
	if order.TransactionID == nil {
		t.Fatal("expected a linked ledger transaction")
	}

	if got := walletBalance(t, db, user.ID); got != 50 {
		t.Fatalf("expected balance 50, got %d", got)
	}

	var entry models.WalletTransaction
	if err := db.First(&entry, "id = ?", *order.TransactionID).Error; err != nil {
		t.Fatalf("load ledger entry: %v", err)
	}
	if entry.Type != models.TransactionPurchase {
		t.Fatalf("expected PURCHASE entry, got %s", entry.Type)
	}
	if entry.Amount != 950 {
		t.Fatalf("expected entry amount 950, got %d", entry.Amount)
	}
	if entry.OrderID == nil || *entry.OrderID != order.ID {
		t.Fatal("ledger entry not linked to order")
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 3 {
		t.Fatalf("expected stock 3, got %d", reloaded.Stock)
	}
	reloaded = models.Product{}
	if err := db.First(&reloaded, "id = ?", second.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 3 {
		t.Fatalf("expected stock 3, got %d", reloaded.Stock)
	}

	var sum int64
	for _, item := range order.Items {
		sum += item.Price * int64(item.Quantity)
	}
	if sum != order.Amount {
		t.Fatalf("order amount %d does not match item sum %d", order.Amount, sum)
	}
}

func TestCreateOrderFreezesLinePrices(t *testing.T) {
	db := newTestDB(t)
	user := seedUserWithCredits(t, db, 1000)
	_, variant := seedProduct(t, db, 5, 300)
	workflow := newTestWorkflow(db)

	order, err := workflow.CreateOrder(context.Background(), user.ID, CreateOrderRequest{
		Items: []OrderItemRequest{{VariantID: variant.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := db.Model(&models.ProductVariant{}).Where("id = ?", variant.ID).
		Update("credits", 999).Error; err != nil {
		t.Fatalf("reprice variant: %v", err)
	}

	loaded, err := workflow.GetOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(loaded.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(loaded.Items))
	}
	if loaded.Items[0].Price != 300 {
		t.Fatalf("expected frozen price 300, got %d", loaded.Items[0].Price)
	}
	if loaded.Amount != 300 {
		t.Fatalf("expected amount 300, got %d", loaded.Amount)
	}
}

func TestCreateOrderInsufficientCredits(t *testing.T) {
	db := newTestDB(t)
	user := seedUserWithCredits(t, db, 100)
	product, variant := seedProduct(t, db, 5, 150)
	workflow := newTestWorkflow(db)

	_, err := workflow.CreateOrder(context.Background(), user.ID, CreateOrderRequest{
		Items: []OrderItemRequest{{VariantID: variant.ID, Quantity: 1}},
	})

	var insufficient *InsufficientCreditsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientCreditsError, got %v", err)
	}
	if insufficient.Shortfall() != 50 {
		t.Fatalf("expected shortfall 50, got %d", insufficient.Shortfall())
	}

	assertNoOrderWrites(t, db, user.ID, product.ID, 5)
	if got := walletBalance(t, db, user.ID); got != 100 {
		t.Fatalf("expected balance 100, got %d", got)
	}
}

func TestCreateOrderRollsBackOnStockShortage(t *testing.T) {
	db := newTestDB(t)
	user := seedUserWithCredits(t, db, 10000)
	first, firstVariant := seedProduct(t, db, 5, 100)
	second, secondVariant := seedProduct(t, db, 1, 100)
	workflow := newTestWorkflow(db)

	_, err := workflow.CreateOrder(context.Background(), user.ID, CreateOrderRequest{
		Items: []OrderItemRequest{
			{VariantID: firstVariant.ID, Quantity: 2},
			{VariantID: secondVariant.ID, Quantity: 3},
		},
	})

	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != second.ID {
		t.Fatal("stock error names the wrong product")
	}

	// The first line's decrement must roll back with everything else.
	assertNoOrderWrites(t, db, user.ID, first.ID, 5)
	assertNoOrderWrites(t, db, user.ID, second.ID, 1)
	if got := walletBalance(t, db, user.ID); got != 10000 {
		t.Fatalf("expected balance 10000, got %d", got)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	db := newTestDB(t)
	user := seedUserWithCredits(t, db, 1000)
	_, variant := seedProduct(t, db, 5, 100)
	workflow := newTestWorkflow(db)
	ctx := context.Background()

	if _, err := workflow.CreateOrder(ctx, user.ID, CreateOrderRequest{}); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	_, err := workflow.CreateOrder(ctx, user.ID, CreateOrderRequest{
		Items: []OrderItemRequest{{VariantID: variant.ID, Quantity: 0}},
	})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}

	_, err = workflow.CreateOrder(ctx, user.ID, CreateOrderRequest{
		Items: []OrderItemRequest{{VariantID: uuid.New(), Quantity: 1}},
	})
	if !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected ErrVariantNotFound, got %v", err)
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	db := newTestDB(t)
	user := seedUserWithCredits(t, db, 1000)
	_, variant := seedProduct(t, db, 5, 100)
	workflow := newTestWorkflow(db)
	ctx := context.Background()

	order, err := workflow.CreateOrder(ctx, user.ID, CreateOrderRequest{
		Items: []OrderItemRequest{{VariantID: variant.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	_, err = workflow.UpdateStatus(ctx, order.ID, models.OrderDispatched, "")
	var transitionErr *InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}

	if _, err := workflow.UpdateStatus(ctx, order.ID, "SHIPPED", ""); !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError for unknown status, got %v", err)
	}

	if _, err := workflow.UpdateStatus(ctx, order.ID, models.OrderApproved, "looks good"); err != nil {
		t.Fatalf("PENDING -> APPROVED: %v", err)
	}
}

func TestTransitionOrderRequiresObservedStatus(t *testing.T) {
	db := newTestDB(t)
	user := seedUserWithCredits(t, db, 1000)
	_, variant := seedProduct(t, db, 5, 100)
	workflow := newTestWorkflow(db)

	order, err := workflow.CreateOrder(context.Background(), user.ID, CreateOrderRequest{
		Items: []OrderItemRequest{{VariantID: variant.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// The order is PENDING: a write conditioned on a stale APPROVED
	// observation must not land.
	err = transitionOrder(db, order.ID, models.OrderApproved, models.OrderDispatched, "")
	var transitionErr *InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.Status != models.OrderPending {
		t.Fatalf("stale write changed status to %s", reloaded.Status)
	}

	if err := transitionOrder(db, order.ID, models.OrderPending, models.OrderApproved, ""); err != nil {
		t.Fatalf("PENDING -> APPROVED: %v", err)
	}

	// The PENDING observation is now stale in turn.
	err = transitionOrder(db, order.ID, models.OrderPending, models.OrderCancelled, "")
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError on stale cancel, got %v", err)
	}
}

func TestConcurrentCancelsRestockOnce(t *testing.T) {
	db := newTestDB(t)
	user := seedUserWithCredits(t, db, 1000)
	product, variant := seedProduct(t, db, 5, 100)
	workflow := newTestWorkflow(db)

	order, err := workflow.CreateOrder(context.Background(), user.ID, CreateOrderRequest{
		Items: []OrderItemRequest{{VariantID: variant.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := workflow.UpdateStatus(context.Background(), order.ID, models.OrderCancelled, "dup")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var transitionErr *InvalidTransitionError
		if !errors.As(err, &transitionErr) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one cancel to win, got %d", successes)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 5 {
		t.Fatalf("expected stock restored once to 5, got %d", reloaded.Stock)
	}
}

func TestCancelBeforeDispatchRestoresStock(t *testing.T) {
	db := newTestDB(t)
	user := seedUserWithCredits(t, db, 1000)
	product, variant := seedProduct(t, db, 5, 100)
	workflow := newTestWorkflow(db)
	ctx := context.Background()

	order, err := workflow.CreateOrder(ctx, user.ID, CreateOrderRequest{
		Items: []OrderItemRequest{{VariantID: variant.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := workflow.UpdateStatus(ctx, order.ID, models.OrderCancelled, "changed mind"); err != nil {
		t.Fatalf("cancel order: %v", err)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 5 {
		t.Fatalf("expected stock restored to 5, got %d", reloaded.Stock)
	}

	// Cancellation does not refund credits; reversal is an explicit
	// admin adjustment.
	if got := walletBalance(t, db, user.ID); got != 800 {
		t.Fatalf("expected balance 800, got %d", got)
	}
}

func TestCancelAfterDispatchKeepsStock(t *testing.T) {
	db := newTestDB(t)
	user := seedUserWithCredits(t, db, 1000)
	product, variant := seedProduct(t, db, 5, 100)
	workflow := newTestWorkflow(db)
	ctx := context.Background()

	order, err := workflow.CreateOrder(ctx, user.ID, CreateOrderRequest{
		Items: []OrderItemRequest{{VariantID: variant.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	for _, status := range []string{models.OrderApproved, models.OrderDispatched, models.OrderCancelled} {
		if _, err := workflow.UpdateStatus(ctx, order.ID, status, ""); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 3 {
		t.Fatalf("expected stock to stay at 3, got %d", reloaded.Stock)
	}
}

func assertNoOrderWrites(t *testing.T, db *gorm.DB, userID, productID uuid.UUID, wantStock int) {
	t.Helper()

	var orders int64
	if err := db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&orders).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orders != 0 {
		t.Fatalf("expected no orders, found %d", orders)
	}

	var purchases int64
	if err := db.Model(&models.WalletTransaction{}).
		Where("user_id = ? AND type = ?", userID, models.TransactionPurchase).
		Count(&purchases).Error; err != nil {
		t.Fatalf("count purchases: %v", err)
	}
	if purchases != 0 {
		t.Fatalf("expected no PURCHASE entries, found %d", purchases)
	}

	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if product.Stock != wantStock {
		t.Fatalf("expected stock %d, got %d", wantStock, product.Stock)
	}
}
