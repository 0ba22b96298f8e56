package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/fitplay/internal/middleware"
	"github.com/example/fitplay/internal/models"
	"github.com/example/fitplay/internal/services"
)

// currentUser loads the authenticated user record.
func currentUser(db *gorm.DB, c *fiber.Ctx) (*models.User, error) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		return nil, err
	}
	return &user, nil
}

// mapServiceError translates core service errors into HTTP errors.
// InsufficientCreditsError is handled at call sites so the response can
// carry the shortfall.
func mapServiceError(err error) error {
	var stockErr *services.InsufficientStockError
	var transitionErr *services.InvalidTransitionError

	switch {
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidAmount):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrWalletNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrVariantNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.As(err, &stockErr):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.As(err, &transitionErr):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return err
}
