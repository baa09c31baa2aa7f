package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// LocalActor key del usuario autenticado cargado desde el repositorio.
const LocalActor = "actor"

// userLoader es el contrato mínimo para cargar el actor del token.
type userLoader interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// accessChecker lo implementa *access.Service; la interfaz evita acoplar el middleware al servicio.
type accessChecker interface {
	Require(ctx context.Context, userID string, c entity.Capability) error
	RequireTier(ctx context.Context, userID string, tier entity.Tier) error
}

// LoadActor carga el usuario del token en c.Locals. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 Unauthorized → el usuario del token no existe o está inactivo.
//   - 503 Service Unavailable → fallo al consultar el directorio de usuarios.
func LoadActor(users userLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "user_id no encontrado en el token"})
		}
		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "USER_LOOKUP_FAILED",
				Message: "no se pudo verificar el usuario, intente más tarde",
			})
		}
		if user == nil || user.Status != entity.UserStatusActive {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario inexistente o inactivo"})
		}
		c.Locals(LocalActor, user)
		return c.Next()
	}
}

// GetActor devuelve el actor cargado por LoadActor (nil si no pasó por el middleware).
func GetActor(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalActor).(*entity.User)
	return u
}

// RequireCapability responde 403 con la capability faltante si el perfil del usuario no la concede.
func RequireCapability(capability entity.Capability, checker accessChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := checker.Require(c.UserContext(), GetUserID(c), capability); err != nil {
			return writeError(c, err)
		}
		return c.Next()
	}
}

// RequireTier responde 403 con el tier requerido si el perfil vigente del usuario no lo tiene.
func RequireTier(tier entity.Tier, checker accessChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := checker.RequireTier(c.UserContext(), GetUserID(c), tier); err != nil {
			return writeError(c, err)
		}
		return c.Next()
	}
}

// requestContext IP y User-Agent de la petición para la auditoría.
func requestContext(c *fiber.Ctx) *entity.RequestContext {
	return &entity.RequestContext{IPAddress: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}
