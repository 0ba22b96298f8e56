package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/fitplay/internal/cache"
	"github.com/example/fitplay/internal/models"
	"github.com/example/fitplay/internal/services"
)

// AnalyticsHandler serves dashboard aggregates and order exports. Admins
// see the whole platform; HR sees their own company.
type AnalyticsHandler struct {
	db        *gorm.DB
	analytics *services.AnalyticsService
	rdb       *redis.Client
}

// NewAnalyticsHandler constructs AnalyticsHandler.
func NewAnalyticsHandler(db *gorm.DB, analytics *services.AnalyticsService, rdb *redis.Client) *AnalyticsHandler {
	return &AnalyticsHandler{db: db, analytics: analytics, rdb: rdb}
}

// RegisterAnalyticsRoutes wires analytics endpoints onto the router group.
func (h *AnalyticsHandler) RegisterAnalyticsRoutes(router fiber.Router) {
	router.Get("/overview", h.GetOverview)
	router.Get("/timeseries", h.GetTimeSeries)
	router.Get("/export/csv", h.ExportCSV)
	router.Get("/export/xlsx", h.ExportXLSX)
}

// scope resolves the company filter for the caller. Admins may pass
// ?company_id= to scope; HR is always pinned to their own company.
func (h *AnalyticsHandler) scope(c *fiber.Ctx) (*uuid.UUID, error) {
	caller, err := currentUser(h.db, c)
	if err != nil {
		return nil, err
	}

	if caller.Role == models.RoleHR {
		if caller.CompanyID == nil {
			return nil, fiber.NewError(fiber.StatusForbidden, "no company assigned")
		}
		return caller.CompanyID, nil
	}

	if companyID := c.Query("company_id"); companyID != "" {
		parsed, err := uuid.Parse(companyID)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid company_id")
		}
		return &parsed, nil
	}
	return nil, nil
}

// GetOverview returns dashboard totals, cached briefly per scope.
func (h *AnalyticsHandler) GetOverview(c *fiber.Ctx) error {
	companyID, err := h.scope(c)
	if err != nil {
		return err
	}

	scopeKey := "all"
	if companyID != nil {
		scopeKey = companyID.String()
	}
	cacheKey := fmt.Sprintf(cache.KeyAnalyticsOverview, scopeKey)

	var cached services.Overview
	if cache.GetJSON(c.UserContext(), h.rdb, cacheKey, &cached) {
		return c.JSON(fiber.Map{"success": true, "data": cached, "cached": true})
	}

	overview, err := h.analytics.GetOverview(c.UserContext(), companyID)
	if err != nil {
		return err
	}

	cache.SetJSON(c.UserContext(), h.rdb, cacheKey, overview, cache.TTLAnalyticsOverview)

	return c.JSON(fiber.Map{"success": true, "data": overview})
}

// GetTimeSeries returns per-day order counts and credits spent. Range
// comes from ?period=7d|30d|90d or explicit ?date_from=/&date_to=.
func (h *AnalyticsHandler) GetTimeSeries(c *fiber.Ctx) error {
	companyID, err := h.scope(c)
	if err != nil {
		return err
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		return err
	}

	points, err := h.analytics.GetTimeSeries(c.UserContext(), from, to, companyID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": points})
}

// ExportCSV streams the order export as a CSV attachment.
func (h *AnalyticsHandler) ExportCSV(c *fiber.Ctx) error {
	rows, err := h.exportRows(c)
	if err != nil {
		return err
	}

	data, err := services.OrdersCSV(rows)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("orders-%s.csv", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}

// ExportXLSX streams the order export as an Excel attachment.
func (h *AnalyticsHandler) ExportXLSX(c *fiber.Ctx) error {
	rows, err := h.exportRows(c)
	if err != nil {
		return err
	}

	data, err := services.OrdersXLSX(rows)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}

func (h *AnalyticsHandler) exportRows(c *fiber.Ctx) ([]services.OrderExportRow, error) {
	companyID, err := h.scope(c)
	if err != nil {
		return nil, err
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		return nil, err
	}

	return h.analytics.GetExportRows(c.UserContext(), from, to, companyID)
}

func parseDateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now().UTC()

	if dateFrom := c.Query("date_from"); dateFrom != "" {
		from, err := time.Parse("2006-01-02", dateFrom)
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "date_from must be YYYY-MM-DD")
		}
		to := now
		if dateTo := c.Query("date_to"); dateTo != "" {
			parsed, err := time.Parse("2006-01-02", dateTo)
			if err != nil {
				return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "date_to must be YYYY-MM-DD")
			}
			to = parsed
		}
		if from.After(to) {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "date_from must precede date_to")
		}
		return from, to, nil
	}

	days := 30
	switch c.Query("period", "30d") {
	case "7d":
		days = 7
	case "30d":
		days = 30
	case "90d":
		days = 90
	default:
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "period must be 7d, 30d or 90d")
	}

	return now.AddDate(0, 0, -days), now, nil
}
