package routes

import (
	"time"

	"github.com/emrekaraca/learnguard-backend/internal/config"
	"github.com/emrekaraca/learnguard-backend/internal/handlers"
	"github.com/emrekaraca/learnguard-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	violationHandler *handlers.ViolationHandler,
	adminHandler *handlers.AdminHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth routes are public, with a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Content protection: violation ingestion and the subject's own summary
	api.Post("/violations", middleware.JWTProtected(cfg), violationHandler.Submit)
	api.Get("/violations/me", middleware.JWTProtected(cfg), violationHandler.MySummary)

	// Admin review console
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/violations", adminHandler.ListViolations)
	admin.Get("/violations/users", adminHandler.OffenderSummaries)
	admin.Post("/users/block", adminHandler.BlockUser)
	admin.Post("/users/unblock", adminHandler.UnblockUser)
}
