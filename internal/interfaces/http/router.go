package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-stock/internal/application/auth"
	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/application/usecase"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC        *usecase.ProductUseCase
	UserUC           *usecase.UserUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	StockQueries     *inventory.StockQueryUseCase
	Replenishment    *inventory.ReplenishmentUseCase
	AuthUC           *auth.AuthUseCase
	JWTSecret        string
	// Storage nombre del backend activo ("memory" | "postgres"), expuesto en /health.
	Storage string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Storage: deps.Storage})
	})

	api := app.Group("/api/v2")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleEmployee)
	adminOnly := RequireRole(entity.RoleAdmin)

	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/users", adminOnly, authHandler.CreateUser)

	// Movimientos y consultas del libro
	stock := protected.Group("/stock", anyRole)
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.StockQueries, deps.Replenishment)
	stock.Post("/in", inventoryHandler.StockIn)
	stock.Post("/out", inventoryHandler.StockOut)
	stock.Post("/return", inventoryHandler.Return)
	stock.Post("/loss", inventoryHandler.Loss)
	stock.Post("/adjustment", adminOnly, inventoryHandler.Adjustment)
	stock.Get("/history/:productId", inventoryHandler.History)
	stock.Get("/recent", inventoryHandler.Recent)
	stock.Get("/validate/:productId", inventoryHandler.Validate)
	stock.Get("/movements", inventoryHandler.Movements)
	stock.Get("/summary/:productId", inventoryHandler.Summary)
	stock.Get("/replenishment", inventoryHandler.GetReplenishmentList)

	// Products: las rutas fijas antes de /:id
	products := protected.Group("/products", anyRole)
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Post("/search", productHandler.Search)
	products.Get("/search", productHandler.SearchQuery)
	products.Get("/category/:category", productHandler.ByCategory)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/out-of-stock", productHandler.OutOfStock)
	products.Get("/categories", productHandler.Categories)
	products.Get("/stats", productHandler.Stats)
	products.Get("/report.pdf", productHandler.ReportPDF)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
}
