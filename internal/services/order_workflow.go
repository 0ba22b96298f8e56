package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitplay/internal/events"
	"github.com/example/fitplay/internal/models"
	"github.com/example/fitplay/internal/utils"
)

// OrderItemRequest is one requested cart line.
type OrderItemRequest struct {
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
}

// ShippingInfo carries the delivery fields frozen onto the order.
type ShippingInfo struct {
	Address              string `json:"address"`
	Phone                string `json:"phone"`
	DeliveryInstructions string `json:"delivery_instructions"`
}

// CreateOrderRequest is a validated cart ready for settlement.
type CreateOrderRequest struct {
	Items    []OrderItemRequest `json:"items"`
	Shipping ShippingInfo       `json:"shipping"`
}

// OrderWorkflow turns a cart into a persisted order plus a wallet debit,
// as one atomic unit of work.
type OrderWorkflow struct {
	db       *gorm.DB
	ledger   *WalletLedger
	producer *events.Producer
	telegram *TelegramService
}

// NewOrderWorkflow constructs an OrderWorkflow.
func NewOrderWorkflow(db *gorm.DB, ledger *WalletLedger, producer *events.Producer, telegram *TelegramService) *OrderWorkflow {
	return &OrderWorkflow{db: db, ledger: ledger, producer: producer, telegram: telegram}
}

// CreateOrder validates the cart, freezes per-line credit prices, and then
// atomically inserts the order with its items, decrements product stock and
// debits the wallet with a PURCHASE ledger entry. Any failure inside the
// transaction rolls every write back: an order without its debit (or a
// debit without its order) can never be observed.
func (w *OrderWorkflow) CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	order := models.Order{
		UserID:               userID,
		Number:               utils.NewOrderNumber(),
		Status:               models.OrderPending,
		ShippingAddress:      req.Shipping.Address,
		ShippingPhone:        req.Shipping.Phone,
		DeliveryInstructions: req.Shipping.DeliveryInstructions,
		PlacedAt:             time.Now(),
	}

	var total int64
	for _, item := range req.Items {
		var variant models.ProductVariant
		if err := w.db.WithContext(ctx).First(&variant, "id = ?", item.VariantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVariantNotFound
			}
			return nil, err
		}

		var product models.Product
		if err := w.db.WithContext(ctx).First(&product, "id = ?", variant.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}

		variantID := variant.ID
		price := CreditPrice(variant)
		order.Items = append(order.Items, models.OrderItem{
			ProductID: product.ID,
			VariantID: &variantID,
			Quantity:  item.Quantity,
			Price:     price,
		})
		total += price * int64(item.Quantity)
	}
	order.Amount = total

	// Fail fast before any write; the in-transaction conditional debit
	// below remains the authoritative check under concurrency.
	balance, err := w.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if total > balance {
		return nil, &InsufficientCreditsError{Required: total, Balance: balance}
	}

	err = w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var product models.Product
				if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
					return err
				}
				return &InsufficientStockError{
					ProductID: item.ProductID,
					Requested: item.Quantity,
					Available: product.Stock,
				}
			}
		}

		entry, err := applyLedgerTx(tx, userID, models.TransactionPurchase, total,
			fmt.Sprintf("Order %s", order.Number), &order.ID)
		if err != nil {
			return err
		}

		order.TransactionID = &entry.ID
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("transaction_id", entry.ID).Error
	})
	if err != nil {
		return nil, err
	}

	go w.dispatchOrderCreated(order)

	return &order, nil
}

// GetOrder fetches a single order with its items, variants and user.
func (w *OrderWorkflow) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := w.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Variant").
		Preload("User").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// UpdateStatus applies an admin-driven status transition. The transition is
// validated against the order state machine; cancelling an order that has
// not been dispatched restores product stock. The wallet is never touched
// here: credit reversal is an explicit admin adjustment, not a side effect
// of cancellation.
func (w *OrderWorkflow) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus, remarks string) (*models.Order, error) {
	var order models.Order
	if err := w.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !models.IsOrderStatus(newStatus) || !models.CanTransition(order.Status, newStatus) {
		return nil, &InvalidTransitionError{From: order.Status, To: newStatus}
	}

	fromStatus := order.Status
	restock := newStatus == models.OrderCancelled && fromStatus != models.OrderDispatched

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := transitionOrder(tx, order.ID, fromStatus, newStatus, remarks); err != nil {
			return err
		}

		if restock {
			for _, item := range order.Items {
				if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
					Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = newStatus
	if remarks != "" {
		order.Remarks = remarks
	}

	w.producer.Emit(events.EventOrderStatusChanged, order.ID.String(), events.OrderStatusChangedPayload{
		OrderID:    order.ID.String(),
		Number:     order.Number,
		FromStatus: fromStatus,
		ToStatus:   newStatus,
		Remarks:    remarks,
	})

	return &order, nil
}

// transitionOrder moves an order to newStatus only while it is still in
// fromStatus. The conditional write is the authoritative check under
// concurrency: the pre-validation above reads the status outside the
// transaction, so a transition that lost the race must fail here instead
// of overwriting a newer status or restocking twice.
func transitionOrder(tx *gorm.DB, orderID uuid.UUID, fromStatus, newStatus, remarks string) error {
	updates := map[string]interface{}{"status": newStatus}
	if remarks != "" {
		updates["remarks"] = remarks
	}

	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, fromStatus).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &InvalidTransitionError{From: fromStatus, To: newStatus}
	}
	return nil
}

// dispatchOrderCreated publishes the order event and notifies the admin
// chat after a successful settlement.
func (w *OrderWorkflow) dispatchOrderCreated(order models.Order) {
	items := make([]events.OrderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		payload := events.OrderItemPayload{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		if item.VariantID != nil {
			payload.VariantID = item.VariantID.String()
		}
		items = append(items, payload)
	}

	w.producer.Emit(events.EventOrderCreated, order.ID.String(), events.OrderCreatedPayload{
		OrderID: order.ID.String(),
		Number:  order.Number,
		UserID:  order.UserID.String(),
		Items:   items,
		Amount:  order.Amount,
	})

	if w.telegram == nil {
		return
	}

	var user models.User
	if err := w.db.First(&user, "id = ?", order.UserID).Error; err != nil {
		log.Printf("[Order] load user for notification failed: %v", err)
		return
	}

	notification := OrderNotification{
		OrderNumber: order.Number,
		UserName:    user.FirstName + " " + user.LastName,
		UserEmail:   user.Email,
		ItemCount:   len(order.Items),
		Amount:      order.Amount,
		Status:      order.Status,
	}
	if err := w.telegram.NotifyNewOrder(notification); err != nil {
		log.Printf("[Order] Telegram notification failed: %v", err)
	}
}
