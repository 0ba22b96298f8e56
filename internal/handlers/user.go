package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitplay/internal/models"
	"github.com/example/fitplay/internal/services"
	"github.com/example/fitplay/internal/utils"
)

// UserHandler manages user accounts. Admins manage everyone; HR manages
// employees inside their own company.
type UserHandler struct {
	db     *gorm.DB
	ledger *services.WalletLedger
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(db *gorm.DB, ledger *services.WalletLedger) *UserHandler {
	return &UserHandler{db: db, ledger: ledger}
}

// RegisterUserRoutes wires user management endpoints onto the router group.
func (h *UserHandler) RegisterUserRoutes(router fiber.Router) {
	router.Get("/", h.ListUsers)
	router.Get("/:id", h.GetUser)
	router.Post("/", h.CreateUser)
	router.Put("/:id", h.UpdateUser)
	router.Delete("/:id", h.DeleteUser)
}

type createUserRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	CompanyID      string `json:"company_id"`
	InitialCredits int64  `json:"initial_credits"`
	CreditsExpire  string `json:"credits_expire"`
}

// CreateUser provisions an account with a wallet and a claim token. The
// employee later claims the account to set a password. Optional initial
// credits are granted through the ledger.
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	caller, err := currentUser(h.db, c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" || req.FirstName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "first_name and email are required")
	}
	if req.Role == "" {
		req.Role = models.RoleEmployee
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleHR && req.Role != models.RoleEmployee {
		return fiber.NewError(fiber.StatusBadRequest, "invalid role")
	}
	if req.InitialCredits < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "initial_credits cannot be negative")
	}

	var companyID *uuid.UUID
	if req.CompanyID != "" {
		parsed, err := uuid.Parse(req.CompanyID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid company_id")
		}
		var company models.Company
		if err := h.db.First(&company, "id = ?", parsed).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "company not found")
			}
			return err
		}
		companyID = &parsed
	}

	if caller.Role == models.RoleHR {
		if req.Role != models.RoleEmployee {
			return fiber.NewError(fiber.StatusForbidden, "hr can only create employees")
		}
		if caller.CompanyID == nil {
			return fiber.NewError(fiber.StatusForbidden, "no company assigned")
		}
		if companyID == nil || *companyID != *caller.CompanyID {
			return fiber.NewError(fiber.StatusForbidden, "user must belong to your company")
		}
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var expiresAt *time.Time
	if req.CreditsExpire != "" {
		parsed, err := time.Parse("2006-01-02", req.CreditsExpire)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "credits_expire must be YYYY-MM-DD")
		}
		expiresAt = &parsed
	}

	claimToken, err := newClaimToken()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate claim token")
	}

	user := models.User{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Role:       req.Role,
		CompanyID:  companyID,
		ClaimToken: claimToken,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Wallet{UserID: user.ID, ExpiresAt: expiresAt}).Error
	})
	if err != nil {
		return err
	}

	if req.InitialCredits > 0 {
		if _, err := h.ledger.Apply(c.UserContext(), user.ID, models.TransactionAdd,
			req.InitialCredits, "initial allocation"); err != nil {
			return mapServiceError(err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":        userResponse(user),
			"claim_token": claimToken,
		},
	})
}

// ListUsers returns users. Admins see everyone; HR only their company.
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	caller, err := currentUser(h.db, c)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.User{})

	if caller.Role == models.RoleHR {
		if caller.CompanyID == nil {
			return fiber.NewError(fiber.StatusForbidden, "no company assigned")
		}
		query = query.Where("company_id = ?", *caller.CompanyID)
	} else if companyID := c.Query("company_id"); companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var users []models.User
	if err := query.Preload("Company").Preload("Wallet").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&users).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetUser returns a single user with company and wallet.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	caller, err := currentUser(h.db, c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.db.Preload("Company").Preload("Wallet").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	if caller.Role == models.RoleHR {
		if caller.CompanyID == nil || user.CompanyID == nil || *user.CompanyID != *caller.CompanyID {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": user})
}

type updateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id"`
}

// UpdateUser updates account fields. Role and company changes are admin
// only.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	caller, err := currentUser(h.db, c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	if caller.Role == models.RoleHR {
		if caller.CompanyID == nil || user.CompanyID == nil || *user.CompanyID != *caller.CompanyID {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.Role != "" {
		if caller.Role != models.RoleAdmin {
			return fiber.NewError(fiber.StatusForbidden, "only admins can change roles")
		}
		if req.Role != models.RoleAdmin && req.Role != models.RoleHR && req.Role != models.RoleEmployee {
			return fiber.NewError(fiber.StatusBadRequest, "invalid role")
		}
		updates["role"] = req.Role
	}
	if req.CompanyID != "" {
		if caller.Role != models.RoleAdmin {
			return fiber.NewError(fiber.StatusForbidden, "only admins can move users between companies")
		}
		companyID, err := uuid.Parse(req.CompanyID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid company_id")
		}
		var company models.Company
		if err := h.db.First(&company, "id = ?", companyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "company not found")
			}
			return err
		}
		updates["company_id"] = companyID
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&user).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "user updated"})
}

// DeleteUser removes an account with no order history.
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	caller, err := currentUser(h.db, c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if id == caller.ID {
		return fiber.NewError(fiber.StatusBadRequest, "cannot delete your own account")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	if caller.Role == models.RoleHR {
		if caller.CompanyID == nil || user.CompanyID == nil || *user.CompanyID != *caller.CompanyID {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		if user.Role != models.RoleEmployee {
			return fiber.NewError(fiber.StatusForbidden, "hr can only delete employees")
		}
	}

	var orders int64
	if err := h.db.Model(&models.Order{}).Where("user_id = ?", id).Count(&orders).Error; err != nil {
		return err
	}
	if orders > 0 {
		return fiber.NewError(fiber.StatusConflict, "user has order history")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var wallet models.Wallet
		if err := tx.Where("user_id = ?", id).First(&wallet).Error; err == nil {
			if err := tx.Delete(&models.WalletTransaction{}, "wallet_id = ?", wallet.ID).Error; err != nil {
				return err
			}
			if err := tx.Delete(&wallet).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
