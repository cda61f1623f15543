package handlers

import (
	"errors"
	"strconv"

	"github.com/emrekaraca/learnguard-backend/internal/dto"
	"github.com/emrekaraca/learnguard-backend/internal/middleware"
	"github.com/emrekaraca/learnguard-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminHandler is the review console: violation feed, offender summaries and
// the block/unblock commands.
type AdminHandler struct {
	violations *services.ViolationService
}

func NewAdminHandler(violations *services.ViolationService) *AdminHandler {
	return &AdminHandler{violations: violations}
}

func (h *AdminHandler) ListViolations(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	var userID *uuid.UUID
	if raw := c.Query("userId", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Failure("Invalid userId filter"))
		}
		userID = &id
	}

	resp, err := h.violations.List(page, limit, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Failure("Failed to fetch violations"))
	}

	summaries, err := h.violations.OffenderSummaries()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Failure("Failed to fetch violations"))
	}
	resp.UserSummaries = summaries

	return c.JSON(dto.Success(resp, "OK"))
}

func (h *AdminHandler) OffenderSummaries(c *fiber.Ctx) error {
	summaries, err := h.violations.OffenderSummaries()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Failure("Failed to fetch summaries"))
	}

	return c.JSON(dto.Success(fiber.Map{"users": summaries}, "OK"))
}

func (h *AdminHandler) UnblockUser(c *fiber.Ctx) error {
	adminID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Failure("Unauthorized"))
	}

	var req dto.UnblockUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure("Invalid request body"))
	}
	if req.UserID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure("userId is required"))
	}

	user, err := h.violations.Unblock(adminID, req.UserID)
	if err != nil {
		return adminActionError(c, err, "Failed to unblock user")
	}

	return c.JSON(dto.Success(fiber.Map{"user": user}, "User unblocked successfully"))
}

func (h *AdminHandler) BlockUser(c *fiber.Ctx) error {
	adminID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Failure("Unauthorized"))
	}

	var req dto.BlockUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure("Invalid request body"))
	}
	if req.UserID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure("userId is required"))
	}

	user, err := h.violations.Block(adminID, req.UserID)
	if err != nil {
		return adminActionError(c, err, "Failed to block user")
	}

	return c.JSON(dto.Success(fiber.Map{"user": user}, "User blocked successfully"))
}

func adminActionError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrSelfTarget),
		errors.Is(err, services.ErrNotBlocked),
		errors.Is(err, services.ErrAlreadyBlocked):
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(err.Error()))
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.Failure(err.Error()))
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.Failure(fallback))
}
