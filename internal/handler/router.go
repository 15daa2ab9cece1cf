package handler

import (
	"time"

	"go-ombor/internal/access"
	applog "go-ombor/internal/log"
	"go-ombor/internal/middleware"
	"go-ombor/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Services are the application services the HTTP layer drives.
type Services struct {
	Auth      service.AuthService
	Users     service.UserService
	Inventory service.InventoryService
	Dashboard service.DashboardService
}

// RegisterRoutes mounts the /api/v1 surface on app. Each page group is gated by its permission.
func RegisterRoutes(app *fiber.App, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	dashHandler := NewDashboardHandler(svc.Dashboard)
	stockHandler := NewStockHandler(svc.Inventory)
	invHandler := NewInventoryHandler(svc.Inventory)
	userHandler := NewUserHandler(svc.Users)

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	loginLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 5 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate_login_hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	})
	api.Post("/auth/login", loginLimiter, authHandler.Login)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(svc.Auth))

	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/change-password", authHandler.ChangePassword)

	dashboard := protected.Group("/dashboard", middleware.RequirePage(access.PageDashboard))
	dashboard.Get("/stats", dashHandler.GetDashboardStats)
	dashboard.Get("/stock-movement", dashHandler.GetStockMovement)

	inbound := middleware.RequirePage(access.PageInbound)
	protected.Post("/inbound/scan", inbound, stockHandler.InboundScan)
	protected.Post("/inbound/barcode", inbound, stockHandler.GenerateBarcode)
	protected.Post("/inbound", inbound, stockHandler.ConfirmInbound)

	outbound := middleware.RequirePage(access.PageOutbound)
	protected.Post("/outbound/scan", outbound, stockHandler.OutboundScan)
	protected.Post("/outbound", outbound, stockHandler.ConfirmOutbound)

	inventory := middleware.RequirePage(access.PageInventory)
	protected.Get("/products", inventory, invHandler.GetProducts)
	protected.Get("/products/:id", inventory, invHandler.GetProduct)
	protected.Put("/products/:id", inventory, invHandler.UpdateProduct)
	protected.Get("/categories", inventory, invHandler.GetCategories)
	protected.Get("/units", inventory, invHandler.GetUnits)
	protected.Get("/transactions", inventory, invHandler.GetTransactions)
	protected.Get("/transactions/:id", inventory, invHandler.GetTransaction)

	admin := middleware.RequirePage(access.PageAdminUsers)
	protected.Get("/users", admin, userHandler.GetUsers)
	protected.Post("/users", admin, userHandler.CreateUser)
	protected.Get("/users/:id", admin, userHandler.GetUser)
	protected.Put("/users/:id", admin, userHandler.UpdateUser)
	protected.Delete("/users/:id", admin, userHandler.DeleteUser)
	protected.Get("/permissions", admin, userHandler.GetPermissions)
}
