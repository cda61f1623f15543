package handlers

import (
	"errors"

	"github.com/emrekaraca/learnguard-backend/internal/dto"
	"github.com/emrekaraca/learnguard-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure("Invalid request body"))
	}
	if err := validateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(err.Error()))
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.Failure(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Failure("Registration failed"))
	}

	return c.Status(fiber.StatusCreated).JSON(dto.Success(resp, "Account created"))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure("Invalid request body"))
	}
	if err := validateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(err.Error()))
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountBlocked):
			return c.Status(fiber.StatusForbidden).JSON(dto.Failure(err.Error()))
		case errors.Is(err, services.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Failure(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Failure("Login failed"))
	}

	return c.JSON(dto.Success(resp, "Signed in"))
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure("Invalid request body"))
	}
	if err := validateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(err.Error()))
	}

	resp, err := h.authService.Refresh(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountBlocked):
			return c.Status(fiber.StatusForbidden).JSON(dto.Failure(err.Error()))
		case errors.Is(err, services.ErrInvalidToken):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Failure(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Failure("Token refresh failed"))
	}

	return c.JSON(dto.Success(resp, "Token refreshed"))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure("Invalid request body"))
	}

	if err := h.authService.Logout(&req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Failure("Logout failed"))
	}

	return c.JSON(dto.Success(nil, "Signed out"))
}
