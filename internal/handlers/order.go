package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitplay/internal/models"
	"github.com/example/fitplay/internal/services"
	"github.com/example/fitplay/internal/utils"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	db       *gorm.DB
	workflow *services.OrderWorkflow
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, workflow *services.OrderWorkflow) *OrderHandler {
	return &OrderHandler{db: db, workflow: workflow}
}

type createOrderRequest struct {
	UserID   string                      `json:"user_id"`
	Items    []services.OrderItemRequest `json:"items"`
	Shipping services.ShippingInfo       `json:"shipping"`
}

// CreateOrder places an order for the caller, or on another user's behalf
// when the caller is an admin.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	caller, err := currentUser(h.db, c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	targetID := caller.ID
	if req.UserID != "" {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid user_id")
		}
		if parsed != caller.ID && caller.Role != models.RoleAdmin {
			return fiber.NewError(fiber.StatusForbidden, "cannot order on behalf of another user")
		}
		targetID = parsed
	}

	order, err := h.workflow.CreateOrder(c.UserContext(), targetID, services.CreateOrderRequest{
		Items:    req.Items,
		Shipping: req.Shipping,
	})
	if err != nil {
		var insufficient *services.InsufficientCreditsError
		if errors.As(err, &insufficient) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success":   false,
				"error":     insufficient.Error(),
				"shortfall": insufficient.Shortfall(),
			})
		}
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":             order.ID,
			"number":         order.Number,
			"status":         order.Status,
			"amount":         order.Amount,
			"placed_at":      order.PlacedAt,
			"transaction_id": order.TransactionID,
			"items":          order.Items,
		},
	})
}

// ListOrders returns orders for the authenticated user.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	caller, err := currentUser(h.db, c)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{}).Where("user_id = ?", caller.ID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order. Owners see their own orders; admins see
// any order; HR sees orders placed inside their company.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	caller, err := currentUser(h.db, c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.workflow.GetOrder(c.UserContext(), id)
	if err != nil {
		return mapServiceError(err)
	}

	if order.UserID != caller.ID && caller.Role != models.RoleAdmin {
		allowed := false
		if caller.Role == models.RoleHR && caller.CompanyID != nil && order.User != nil &&
			order.User.CompanyID != nil && *order.User.CompanyID == *caller.CompanyID {
			allowed = true
		}
		if !allowed {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// ListAllOrders returns every order for admins, or the company's orders
// for HR, with status filter and search.
func (h *OrderHandler) ListAllOrders(c *fiber.Ctx) error {
	caller, err := currentUser(h.db, c)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if caller.Role == models.RoleHR {
		if caller.CompanyID == nil {
			return fiber.NewError(fiber.StatusForbidden, "no company assigned")
		}
		query = query.Joins("JOIN users ON users.id = orders.user_id").
			Where("users.company_id = ?", *caller.CompanyID)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("orders.status = ?", status)
	}

	if search := c.Query("search"); search != "" {
		query = query.Where("orders.number LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("User").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type updateStatusRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

// UpdateStatus moves an order through its state machine.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Status == "" {
		return fiber.NewError(fiber.StatusBadRequest, "status is required")
	}

	order, err := h.workflow.UpdateStatus(c.UserContext(), id, req.Status, req.Remarks)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
