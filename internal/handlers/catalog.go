package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitplay/internal/models"
)

// CatalogHandler manages categories and vendors.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// RegisterCategoryRoutes wires category endpoints onto the router group.
func (h *CatalogHandler) RegisterCategoryRoutes(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("/", h.ListCategories)
	router.Get("/:id", h.GetCategory)
	router.Post("/", adminOnly, h.CreateCategory)
	router.Put("/:id", adminOnly, h.UpdateCategory)
	router.Delete("/:id", adminOnly, h.DeleteCategory)
}

// RegisterVendorRoutes wires vendor endpoints onto the router group.
func (h *CatalogHandler) RegisterVendorRoutes(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("/", h.ListVendors)
	router.Get("/:id", h.GetVendor)
	router.Post("/", adminOnly, h.CreateVendor)
	router.Put("/:id", adminOnly, h.UpdateVendor)
	router.Delete("/:id", adminOnly, h.DeleteVendor)
}

type categoryRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ParentID string `json:"parent_id"`
}

// CreateCategory creates a category, optionally nested under a parent.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if req.Slug == "" {
		req.Slug = slugify(req.Name)
	}

	category := models.Category{Name: req.Name, Slug: req.Slug}
	if req.ParentID != "" {
		parentID, err := uuid.Parse(req.ParentID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid parent_id")
		}
		var parent models.Category
		if err := h.db.First(&parent, "id = ?", parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "parent category not found")
			}
			return err
		}
		category.ParentID = &parentID
	}

	if err := h.db.Create(&category).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": category})
}

// ListCategories returns all categories. Pass ?root=true for top-level only.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	query := h.db.Model(&models.Category{})
	if c.Query("root") == "true" {
		query = query.Where("parent_id IS NULL")
	}

	var categories []models.Category
	if err := query.Order("name asc").Find(&categories).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": categories})
}

// GetCategory returns a single category with its parent.
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.db.Preload("Parent").First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

// UpdateCategory updates category fields.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Slug != "" {
		updates["slug"] = req.Slug
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&category).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

// DeleteCategory removes a category without products or children.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var products int64
	if err := h.db.Model(&models.Product{}).
		Where("category_id = ? OR subcategory_id = ?", id, id).
		Count(&products).Error; err != nil {
		return err
	}
	if products > 0 {
		return fiber.NewError(fiber.StatusConflict, "category has products")
	}

	var children int64
	if err := h.db.Model(&models.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
		return err
	}
	if children > 0 {
		return fiber.NewError(fiber.StatusConflict, "category has subcategories")
	}

	if err := h.db.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type vendorRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
}

// CreateVendor creates a vendor.
func (h *CatalogHandler) CreateVendor(c *fiber.Ctx) error {
	var req vendorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	vendor := models.Vendor{Name: req.Name, ContactEmail: req.ContactEmail}
	if err := h.db.Create(&vendor).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": vendor})
}

// ListVendors returns all vendors.
func (h *CatalogHandler) ListVendors(c *fiber.Ctx) error {
	var vendors []models.Vendor
	if err := h.db.Order("name asc").Find(&vendors).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": vendors})
}

// GetVendor returns a single vendor.
func (h *CatalogHandler) GetVendor(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var vendor models.Vendor
	if err := h.db.First(&vendor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "vendor not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": vendor})
}

// UpdateVendor updates vendor fields.
func (h *CatalogHandler) UpdateVendor(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var vendor models.Vendor
	if err := h.db.First(&vendor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "vendor not found")
		}
		return err
	}

	var req vendorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.ContactEmail != "" {
		updates["contact_email"] = req.ContactEmail
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&vendor).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": vendor})
}

// DeleteVendor removes a vendor without products.
func (h *CatalogHandler) DeleteVendor(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var products int64
	if err := h.db.Model(&models.Product{}).Where("vendor_id = ?", id).Count(&products).Error; err != nil {
		return err
	}
	if products > 0 {
		return fiber.NewError(fiber.StatusConflict, "vendor has products")
	}

	if err := h.db.Delete(&models.Vendor{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	return slug
}
