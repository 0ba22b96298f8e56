package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitplay/internal/middleware"
	"github.com/example/fitplay/internal/models"
	"github.com/example/fitplay/internal/services"
	"github.com/example/fitplay/internal/utils"
)

// WalletHandler exposes wallet balances, ledger history and admin credit
// adjustments.
type WalletHandler struct {
	db     *gorm.DB
	ledger *services.WalletLedger
}

// NewWalletHandler constructs WalletHandler.
func NewWalletHandler(db *gorm.DB, ledger *services.WalletLedger) *WalletHandler {
	return &WalletHandler{db: db, ledger: ledger}
}

// GetWallet returns the caller's wallet.
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	wallet, err := h.ledger.GetWallet(c.UserContext(), userID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": wallet})
}

// ListTransactions returns the caller's ledger history.
func (h *WalletHandler) ListTransactions(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	transactions, total, err := h.ledger.ListTransactions(c.UserContext(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    transactions,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type adjustCreditsRequest struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// AdjustCredits applies an ADD or REMOVE ledger entry to a user's wallet.
// Admins may adjust any wallet; HR only wallets inside their own company.
func (h *WalletHandler) AdjustCredits(c *fiber.Ctx) error {
	caller, err := currentUser(h.db, c)
	if err != nil {
		return err
	}

	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var target models.User
	if err := h.db.First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	if caller.Role == models.RoleHR {
		if caller.CompanyID == nil || target.CompanyID == nil || *caller.CompanyID != *target.CompanyID {
			return fiber.NewError(fiber.StatusForbidden, "user belongs to another company")
		}
	}

	var req adjustCreditsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Type != models.TransactionAdd && req.Type != models.TransactionRemove {
		return fiber.NewError(fiber.StatusBadRequest, "type must be ADD or REMOVE")
	}
	if req.Reason == "" {
		return fiber.NewError(fiber.StatusBadRequest, "reason is required")
	}

	entry, err := h.ledger.Apply(c.UserContext(), targetID, req.Type, req.Amount, req.Reason)
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

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": entry})
}
