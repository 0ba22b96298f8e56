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

// DefaultVariantLabel names the synthetic variant created for products
// without explicit variants.
const DefaultVariantLabel = "Default"

// ProductHandler manages catalog products and their variants.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// RegisterProductRoutes wires product endpoints onto the router group.
func (h *ProductHandler) RegisterProductRoutes(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("/", h.ListProducts)
	router.Get("/:id", h.GetProduct)
	router.Post("/", adminOnly, h.CreateProduct)
	router.Put("/:id", adminOnly, h.UpdateProduct)
	router.Delete("/:id", adminOnly, h.DeleteProduct)
	router.Post("/:id/variants", adminOnly, h.AddVariant)
	router.Put("/:id/variants/:variantId", adminOnly, h.UpdateVariant)
	router.Delete("/:id/variants/:variantId", adminOnly, h.DeleteVariant)
}

type variantRequest struct {
	VariantCategory string  `json:"variant_category"`
	VariantValue    string  `json:"variant_value"`
	SKU             string  `json:"sku"`
	MRP             float64 `json:"mrp"`
	Credits         *int64  `json:"credits"`
}

type imageRequest struct {
	URL          string `json:"url"`
	AltText      string `json:"alt_text"`
	DisplayOrder int    `json:"display_order"`
}

type productRequest struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	SKU             string           `json:"sku"`
	Stock           int              `json:"stock"`
	DiscountPercent float64          `json:"discount_percent"`
	HasVariants     bool             `json:"has_variants"`
	CategoryID      string           `json:"category_id"`
	SubcategoryID   string           `json:"subcategory_id"`
	VendorID        string           `json:"vendor_id"`
	CompanyIDs      []string         `json:"company_ids"`
	Images          []imageRequest   `json:"images"`
	Variants        []variantRequest `json:"variants"`
	MRP             float64          `json:"mrp"`
	Credits         *int64           `json:"credits"`
}

// CreateProduct persists a new product. Products without explicit variants
// get a single synthetic Default variant carrying the price, so order
// lines can always reference a variant.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.SKU == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name and sku are required")
	}
	if req.Stock < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "stock cannot be negative")
	}
	if req.HasVariants && len(req.Variants) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "variants are required when has_variants is true")
	}

	product := models.Product{
		Name:            req.Name,
		Description:     req.Description,
		SKU:             req.SKU,
		Stock:           req.Stock,
		DiscountPercent: req.DiscountPercent,
		HasVariants:     req.HasVariants,
	}

	if id, ok := parseOptionalUUID(req.CategoryID); ok {
		product.CategoryID = id
	}
	if id, ok := parseOptionalUUID(req.SubcategoryID); ok {
		product.SubcategoryID = id
	}
	if id, ok := parseOptionalUUID(req.VendorID); ok {
		product.VendorID = id
	}

	for _, img := range req.Images {
		product.Images = append(product.Images, models.ProductImage{
			URL:          img.URL,
			AltText:      img.AltText,
			DisplayOrder: img.DisplayOrder,
		})
	}

	if req.HasVariants {
		for _, v := range req.Variants {
			product.Variants = append(product.Variants, models.ProductVariant{
				VariantCategory: v.VariantCategory,
				VariantValue:    v.VariantValue,
				SKU:             v.SKU,
				MRP:             v.MRP,
				Credits:         v.Credits,
			})
		}
	} else {
		product.Variants = []models.ProductVariant{{
			VariantCategory: DefaultVariantLabel,
			VariantValue:    DefaultVariantLabel,
			SKU:             req.SKU,
			MRP:             req.MRP,
			Credits:         req.Credits,
		}}
	}

	if len(req.CompanyIDs) > 0 {
		var companies []models.Company
		if err := h.db.Find(&companies, "id IN ?", req.CompanyIDs).Error; err != nil {
			return err
		}
		if len(companies) != len(req.CompanyIDs) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown company in company_ids")
		}
		product.Companies = companies
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": productResponse(product)})
}

// GetProduct returns a single product with variants, images and derived
// credit prices. Non-admin callers only see products visible to their
// company.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.Preload("Variants").Preload("Images").Preload("Companies").
		Preload("Category").Preload("Subcategory").Preload("Vendor").
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	role, _ := middleware.GetCurrentRole(c)
	if role != models.RoleAdmin {
		caller, err := currentUser(h.db, c)
		if err != nil {
			return err
		}
		companyID := uuid.Nil
		if caller.CompanyID != nil {
			companyID = *caller.CompanyID
		}
		if !services.IsVisibleTo(product, companyID) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": productResponse(product)})
}

// ListProducts returns the catalog. Admins see everything; everyone else
// sees only products visible to their company.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	role, _ := middleware.GetCurrentRole(c)
	if role != models.RoleAdmin {
		caller, err := currentUser(h.db, c)
		if err != nil {
			return err
		}
		if caller.CompanyID != nil {
			query = query.Where(
				"products.id NOT IN (SELECT product_id FROM product_companies) OR products.id IN (SELECT product_id FROM product_companies WHERE company_id = ?)",
				*caller.CompanyID,
			)
		} else {
			query = query.Where("products.id NOT IN (SELECT product_id FROM product_companies)")
		}
	}

	if search := c.Query("search"); search != "" {
		query = query.Where("products.name LIKE ?", "%"+search+"%")
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("products.category_id = ?", categoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Variants").Preload("Images").Preload("Category").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	data := make([]fiber.Map, 0, len(products))
	for _, product := range products {
		data = append(data, productResponse(product))
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

type updateProductRequest struct {
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Stock           *int           `json:"stock"`
	DiscountPercent *float64       `json:"discount_percent"`
	CategoryID      string         `json:"category_id"`
	SubcategoryID   string         `json:"subcategory_id"`
	VendorID        string         `json:"vendor_id"`
	CompanyIDs      []string       `json:"company_ids"`
	Images          []imageRequest `json:"images"`
	MRP             *float64       `json:"mrp"`
	Credits         *int64         `json:"credits"`
}

// UpdateProduct applies a partial update: only fields present in the body
// change. For products without variants the synthetic Default variant
// price moves with the request.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.Preload("Variants").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req updateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "stock cannot be negative")
		}
		updates["stock"] = *req.Stock
	}
	if req.DiscountPercent != nil {
		updates["discount_percent"] = *req.DiscountPercent
	}
	if id, ok := parseOptionalUUID(req.CategoryID); ok {
		updates["category_id"] = id
	}
	if id, ok := parseOptionalUUID(req.SubcategoryID); ok {
		updates["subcategory_id"] = id
	}
	if id, ok := parseOptionalUUID(req.VendorID); ok {
		updates["vendor_id"] = id
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&product).Updates(updates).Error; err != nil {
				return err
			}
		}

		if len(req.Images) > 0 {
			if err := tx.Delete(&models.ProductImage{}, "product_id = ?", product.ID).Error; err != nil {
				return err
			}
			for _, img := range req.Images {
				image := models.ProductImage{
					ProductID:    product.ID,
					URL:          img.URL,
					AltText:      img.AltText,
					DisplayOrder: img.DisplayOrder,
				}
				if err := tx.Create(&image).Error; err != nil {
					return err
				}
			}
		}

		if req.CompanyIDs != nil {
			var companies []models.Company
			if len(req.CompanyIDs) > 0 {
				if err := tx.Find(&companies, "id IN ?", req.CompanyIDs).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&product).Association("Companies").Replace(companies); err != nil {
				return err
			}
		}

		if !product.HasVariants && (req.MRP != nil || req.Credits != nil) {
			priceUpdates := map[string]interface{}{}
			if req.MRP != nil {
				priceUpdates["mrp"] = *req.MRP
			}
			if req.Credits != nil {
				priceUpdates["credits"] = *req.Credits
			}
			if err := tx.Model(&models.ProductVariant{}).
				Where("product_id = ? AND variant_category = ?", product.ID, DefaultVariantLabel).
				Updates(priceUpdates).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "product updated"})
}

// DeleteProduct removes a product that no order references.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var referenced int64
	if err := h.db.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&referenced).Error; err != nil {
		return err
	}
	if referenced > 0 {
		return fiber.NewError(fiber.StatusConflict, "product is referenced by orders")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ProductVariant{}, "product_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ProductImage{}, "product_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AddVariant appends a variant to a product with explicit variants.
func (h *ProductHandler) AddVariant(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if !product.HasVariants {
		return fiber.NewError(fiber.StatusBadRequest, "product does not use variants")
	}

	var req variantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	variant := models.ProductVariant{
		ProductID:       product.ID,
		VariantCategory: req.VariantCategory,
		VariantValue:    req.VariantValue,
		SKU:             req.SKU,
		MRP:             req.MRP,
		Credits:         req.Credits,
	}
	if err := h.db.Create(&variant).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": variantResponse(variant)})
}

// UpdateVariant edits a variant that no order line references yet.
// Variants referenced by orders are frozen.
func (h *ProductHandler) UpdateVariant(c *fiber.Ctx) error {
	variantID, err := uuid.Parse(c.Params("variantId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid variant id")
	}

	var variant models.ProductVariant
	if err := h.db.First(&variant, "id = ?", variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "variant not found")
		}
		return err
	}

	referenced, err := h.variantReferenced(variantID)
	if err != nil {
		return err
	}
	if referenced {
		return fiber.NewError(fiber.StatusConflict, "variant is referenced by orders")
	}

	var req variantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{
		"mrp":     req.MRP,
		"credits": req.Credits,
	}
	if req.VariantCategory != "" {
		updates["variant_category"] = req.VariantCategory
	}
	if req.VariantValue != "" {
		updates["variant_value"] = req.VariantValue
	}
	if req.SKU != "" {
		updates["sku"] = req.SKU
	}

	if err := h.db.Model(&variant).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": variantResponse(variant)})
}

// DeleteVariant removes a variant that no order line references.
func (h *ProductHandler) DeleteVariant(c *fiber.Ctx) error {
	variantID, err := uuid.Parse(c.Params("variantId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid variant id")
	}

	referenced, err := h.variantReferenced(variantID)
	if err != nil {
		return err
	}
	if referenced {
		return fiber.NewError(fiber.StatusConflict, "variant is referenced by orders")
	}

	if err := h.db.Delete(&models.ProductVariant{}, "id = ?", variantID).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) variantReferenced(variantID uuid.UUID) (bool, error) {
	var count int64
	if err := h.db.Model(&models.OrderItem{}).Where("variant_id = ?", variantID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func parseOptionalUUID(value string) (*uuid.UUID, bool) {
	if value == "" {
		return nil, false
	}
	if id, err := uuid.Parse(value); err == nil {
		return &id, true
	}
	return nil, false
}

func variantResponse(v models.ProductVariant) fiber.Map {
	return fiber.Map{
		"id":               v.ID,
		"product_id":       v.ProductID,
		"variant_category": v.VariantCategory,
		"variant_value":    v.VariantValue,
		"sku":              v.SKU,
		"mrp":              v.MRP,
		"credits":          v.Credits,
		"credit_price":     services.CreditPrice(v),
	}
}

func productResponse(p models.Product) fiber.Map {
	variants := make([]fiber.Map, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, variantResponse(v))
	}

	return fiber.Map{
		"id":               p.ID,
		"name":             p.Name,
		"description":      p.Description,
		"sku":              p.SKU,
		"stock":            p.Stock,
		"discount_percent": p.DiscountPercent,
		"has_variants":     p.HasVariants,
		"category":         p.Category,
		"subcategory":      p.Subcategory,
		"vendor":           p.Vendor,
		"images":           p.Images,
		"variants":         variants,
		"companies":        p.Companies,
		"created_at":       p.CreatedAt,
		"updated_at":       p.UpdatedAt,
	}
}
