package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cafe-stock-api/internal/application/alerts"
	"github.com/jhoicas/cafe-stock-api/internal/application/auth"
	"github.com/jhoicas/cafe-stock-api/internal/application/expiration"
	"github.com/jhoicas/cafe-stock-api/internal/application/inventory"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	StockInUC    *inventory.StockInUseCase
	DeductUC     *inventory.DeductStockUseCase
	SpoilageUC   *inventory.SpoilageUseCase
	ReportUC     *inventory.SpoilageReportUseCase
	ExpirationUC *expiration.UseCase
	AlertsUC     *alerts.UseCase
	BatchRepo    repository.BatchRepository
	NotifRepo    repository.NotificationRepository
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Inventario: ingresos, deducciones y mermas
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.StockInUC, deps.DeductUC, deps.SpoilageUC, deps.ReportUC)
	inv.Post("/stock-in", inventoryHandler.RegisterStockIn)
	inv.Post("/deductions", inventoryHandler.RegisterDeduction)
	inv.Post("/spoilage", inventoryHandler.RegisterSpoilage)
	inv.Get("/spoilage/report", inventoryHandler.SpoilageReport)
	inv.Delete("/spoilage/:id",
		RequireRole(entity.RoleAdmin, entity.RoleGerente), inventoryHandler.DeleteSpoilage)

	// Lotes y job de caducados
	batchHandler := NewBatchHandler(deps.BatchRepo, deps.ExpirationUC)
	inv.Get("/batches/expiring", batchHandler.ListExpiring)
	inv.Post("/process-expired",
		RequireRole(entity.RoleAdmin, entity.RoleGerente), batchHandler.ProcessExpired)
	protected.Get("/ingredients/:id/batches", batchHandler.ListByIngredient)

	// Notificaciones
	notifications := protected.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.NotifRepo, deps.AlertsUC)
	notifications.Get("/", notificationHandler.ListOpen)
	notifications.Post("/generate", notificationHandler.Generate)
	notifications.Post("/:id/clear", notificationHandler.Clear)
}
