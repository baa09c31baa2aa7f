package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/access"
	"github.com/jhoicas/Inventario-ledger/internal/application/audit"
	"github.com/jhoicas/Inventario-ledger/internal/application/auth"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/jwt"
)

// HealthChecker verificación del store (ping a la DB); nil = siempre sano.
type HealthChecker func(ctx context.Context) error

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	ProductUC     *usecase.ProductUseCase
	Engine        *inventory.MovementEngine
	Replenishment *inventory.ReplenishmentUseCase
	Recorder      *audit.Recorder
	Access        *access.Service
	Users         repository.UserRepository
	Tokens        *jwt.Signer
	Health        HealthChecker
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps.Health))

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Access)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token y usuario activo)
	protected := api.Group("/", AuthMiddleware(deps.Tokens), LoadActor(deps.Users))
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/me", authHandler.Me)

	can := func(c entity.Capability) fiber.Handler { return RequireCapability(c, deps.Access) }

	// Movimientos: el motor exige perfil vigente
	inventoryHandler := NewInventoryHandler(deps.Engine, deps.Replenishment)
	invGroup := protected.Group("/inventory")
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Post("/movements/bulk", inventoryHandler.RegisterBulk)

	// Products
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Get("/low-stock", can(entity.CapViewReports), inventoryHandler.LowStock)
	products.Get("/stats", can(entity.CapViewReports), inventoryHandler.Stats)
	products.Post("/", can(entity.CapEditProducts), productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", can(entity.CapEditProducts), productHandler.Update)
	products.Post("/:id/deactivate", can(entity.CapEditProducts), productHandler.Deactivate)
	products.Delete("/:id", can(entity.CapDeleteRecords), productHandler.Delete)
	products.Get("/:id/movements", inventoryHandler.History)
	products.Get("/:id/reconcile", can(entity.CapViewReports), inventoryHandler.Reconcile)

	// Audit
	auditHandler := NewAuditHandler(deps.Recorder, deps.Access)
	protected.Get("/audit", can(entity.CapViewAuditLogs), auditHandler.List)
	protected.Delete("/audit", RequireTier(entity.TierLegalRepresentative, deps.Access), auditHandler.Purge)

	// Profiles
	profileHandler := NewProfileHandler(deps.Access)
	protected.Get("/profiles/:userId", profileHandler.Get)
	protected.Put("/profiles/:userId", can(entity.CapManageUsers), profileHandler.Put)
}

func healthHandler(check HealthChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if check != nil {
			if err := check(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
