package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/application/usecase"
	"github.com/jhoicas/warehouse-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC    *usecase.ItemUseCase
	Engine    *inventory.MovementEngine
	Reporter  *inventory.ValuationReporter
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	adminOnly := RequireRole(jwt.RoleAdmin)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleOperator)

	// Items y valorización
	items := api.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	valuationHandler := NewValuationHandler(deps.Reporter, deps.Engine)
	items.Post("/", adminOnly, itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", adminOnly, itemHandler.Update)
	items.Delete("/:id", adminOnly, itemHandler.Delete)
	items.Get("/:id/valuation", valuationHandler.Valuation)
	items.Get("/:id/valuation/report", valuationHandler.Report)
	items.Get("/:id/output-cost", valuationHandler.OutputCost)

	// Movimientos
	movements := api.Group("/movements")
	movementHandler := NewMovementHandler(deps.Engine)
	movements.Post("/input", writers, movementHandler.RecordInput)
	movements.Post("/output", writers, movementHandler.RecordOutput)
	movements.Get("/", movementHandler.List)
	movements.Get("/:id", movementHandler.GetByID)

	// Correcciones administrativas: sin validación de existencias
	movements.Post("/", adminOnly, movementHandler.Create)
	movements.Put("/:id", adminOnly, movementHandler.Update)
	movements.Delete("/:id", adminOnly, movementHandler.Delete)
}
