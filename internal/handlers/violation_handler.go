package handlers

import (
	"errors"

	"github.com/emrekaraca/learnguard-backend/internal/dto"
	"github.com/emrekaraca/learnguard-backend/internal/middleware"
	"github.com/emrekaraca/learnguard-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ViolationHandler serves the content-protection ingestion endpoint and the
// subject's own summary.
type ViolationHandler struct {
	violations *services.ViolationService
}

func NewViolationHandler(violations *services.ViolationService) *ViolationHandler {
	return &ViolationHandler{violations: violations}
}

func (h *ViolationHandler) Submit(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Failure("Unauthorized"))
	}

	var req dto.SubmitViolationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure("Invalid request body"))
	}
	if err := validateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(err.Error()))
	}

	resp, err := h.violations.Submit(userID, &req, c.Get(fiber.HeaderUserAgent), c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountBlocked), errors.Is(err, services.ErrAdminExempt):
			return c.Status(fiber.StatusForbidden).JSON(dto.Failure(err.Error()))
		case errors.Is(err, services.ErrInvalidKind), errors.Is(err, services.ErrInvalidDescription):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(err.Error()))
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Failure(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Failure("Failed to record violation"))
	}

	message := "Violation recorded"
	if resp.ShouldBlock {
		message = "Account blocked due to repeated security violations"
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Success(resp, message))
}

func (h *ViolationHandler) MySummary(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Failure("Unauthorized"))
	}

	summary, err := h.violations.OwnSummary(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.Failure(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Failure("Failed to load summary"))
	}

	return c.JSON(dto.Success(summary, "OK"))
}
