package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitplay/internal/models"
	"github.com/example/fitplay/internal/utils"
)

// CompanyHandler manages companies.
type CompanyHandler struct {
	db *gorm.DB
}

// NewCompanyHandler constructs CompanyHandler.
func NewCompanyHandler(db *gorm.DB) *CompanyHandler {
	return &CompanyHandler{db: db}
}

// RegisterCompanyRoutes wires company endpoints onto the router group.
func (h *CompanyHandler) RegisterCompanyRoutes(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("/", adminOnly, h.ListCompanies)
	router.Get("/:id", h.GetCompany)
	router.Post("/", adminOnly, h.CreateCompany)
	router.Put("/:id", adminOnly, h.UpdateCompany)
	router.Delete("/:id", adminOnly, h.DeleteCompany)
}

type companyRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	LinkedInURL string `json:"linkedin_url"`
}

// CreateCompany registers a company.
func (h *CompanyHandler) CreateCompany(c *fiber.Ctx) error {
	var req companyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	var existing models.Company
	if err := h.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "company already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	company := models.Company{
		Name:        req.Name,
		Address:     req.Address,
		LinkedInURL: req.LinkedInURL,
	}
	if err := h.db.Create(&company).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": company})
}

// ListCompanies returns companies with employee counts.
func (h *CompanyHandler) ListCompanies(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Company{})

	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var companies []models.Company
	if err := query.Order("name asc").Limit(pg.Limit).Offset(pg.Offset).Find(&companies).Error; err != nil {
		return err
	}

	data := make([]fiber.Map, 0, len(companies))
	for _, company := range companies {
		var employees int64
		if err := h.db.Model(&models.User{}).Where("company_id = ?", company.ID).Count(&employees).Error; err != nil {
			return err
		}
		data = append(data, fiber.Map{
			"id":             company.ID,
			"name":           company.Name,
			"address":        company.Address,
			"linkedin_url":   company.LinkedInURL,
			"employee_count": employees,
			"created_at":     company.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetCompany returns a single company. HR may only read their own company.
func (h *CompanyHandler) GetCompany(c *fiber.Ctx) error {
	caller, err := currentUser(h.db, c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if caller.Role != models.RoleAdmin {
		if caller.CompanyID == nil || *caller.CompanyID != id {
			return fiber.NewError(fiber.StatusNotFound, "company not found")
		}
	}

	var company models.Company
	if err := h.db.First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "company not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": company})
}

// UpdateCompany updates company fields.
func (h *CompanyHandler) UpdateCompany(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var company models.Company
	if err := h.db.First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "company not found")
		}
		return err
	}

	var req companyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.LinkedInURL != "" {
		updates["linkedin_url"] = req.LinkedInURL
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&company).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": company})
}

// DeleteCompany removes a company with no remaining users.
func (h *CompanyHandler) DeleteCompany(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var users int64
	if err := h.db.Model(&models.User{}).Where("company_id = ?", id).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return fiber.NewError(fiber.StatusConflict, "company still has users")
	}

	if err := h.db.Delete(&models.Company{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
