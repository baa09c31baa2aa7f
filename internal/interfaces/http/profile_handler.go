package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/access"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	domainaccess "github.com/jhoicas/Inventario-ledger/internal/domain/access"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// ProfileHandler lectura y escritura de perfiles de acceso.
type ProfileHandler struct {
	svc *access.Service
}

// NewProfileHandler construye el handler.
func NewProfileHandler(svc *access.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Get godoc
// @Summary      Perfil de acceso de un usuario con permisos efectivos
// @Description  Un usuario puede ver su propio perfil; para otros se requiere manage_users.
// @Tags         profiles
// @Security     Bearer
// @Produce      json
// @Param        userId  path  string  true  "ID del usuario"
// @Success      200  {object}  dto.ProfileResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/profiles/{userId} [get]
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Params("userId")
	if userID != GetUserID(c) {
		if err := h.svc.Require(ctx, GetUserID(c), entity.CapManageUsers); err != nil {
			return writeError(c, err)
		}
	}
	p, err := h.svc.Profile(ctx, userID)
	if err != nil {
		return writeError(c, err)
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "el usuario no tiene perfil de acceso"})
	}
	return c.JSON(toProfileResponse(p, time.Now()))
}

// Put godoc
// @Summary      Crear o reemplazar el perfil de acceso de un usuario
// @Description  authorized_by debe ser un LEGAL_REPRESENTATIVE. Cada cambio se audita como CRITICAL.
// @Tags         profiles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        userId  path  string  true  "ID del usuario"
// @Param        body    body  dto.SaveProfileRequest  true  "tier, active, expires_on, authorized_by, custom_permissions"
// @Success      200  {object}  dto.ProfileResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/profiles/{userId} [put]
func (h *ProfileHandler) Put(c *fiber.Ctx) error {
	var in dto.SaveProfileRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	profile, err := fromSaveProfileRequest(c.Params("userId"), in)
	if err != nil {
		return writeError(c, err)
	}
	saved, err := h.svc.SaveProfile(c.UserContext(), GetActor(c), profile, requestContext(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toProfileResponse(saved, time.Now()))
}

func fromSaveProfileRequest(userID string, in dto.SaveProfileRequest) (*entity.AccessProfile, error) {
	tier, ok := entity.ParseTier(in.Tier)
	if !ok {
		return nil, fmt.Errorf("%w: tier %q", domain.ErrInvalidInput, in.Tier)
	}
	p := &entity.AccessProfile{
		UserID:       userID,
		Tier:         tier,
		Active:       in.Active,
		AuthorizedBy: strings.TrimSpace(in.AuthorizedBy),
	}
	if in.ExpiresOn != nil && *in.ExpiresOn != "" {
		d, err := time.Parse(time.DateOnly, *in.ExpiresOn)
		if err != nil {
			return nil, fmt.Errorf("%w: expires_on", domain.ErrInvalidInput)
		}
		p.ExpiresOn = &d
	}
	if len(in.CustomPermissions) > 0 {
		p.CustomPermissions = make(map[entity.Capability]bool, len(in.CustomPermissions))
		for name, v := range in.CustomPermissions {
			capability, ok := entity.ParseCapability(name)
			if !ok {
				return nil, fmt.Errorf("%w: capability desconocida %q", domain.ErrInvalidInput, name)
			}
			p.CustomPermissions[capability] = v
		}
	}
	return p, nil
}

func toProfileResponse(p *entity.AccessProfile, now time.Time) dto.ProfileResponse {
	res := dto.ProfileResponse{
		UserID:       p.UserID,
		Tier:         p.Tier.String(),
		Active:       p.Active,
		Effective:    domainaccess.IsActive(p, now),
		AuthorizedBy: p.AuthorizedBy,
		Capabilities: make(map[string]bool, entity.NumCapabilities),
		UpdatedAt:    p.UpdatedAt,
	}
	if p.ExpiresOn != nil {
		res.ExpiresOn = p.ExpiresOn.Format(time.DateOnly)
	}
	if len(p.CustomPermissions) > 0 {
		res.CustomPermissions = make(map[string]bool, len(p.CustomPermissions))
		for c, v := range p.CustomPermissions {
			res.CustomPermissions[c.String()] = v
		}
	}
	for c := entity.Capability(0); c < entity.NumCapabilities; c++ {
		res.Capabilities[c.String()] = domainaccess.HasCapability(p, c, now)
	}
	return res
}
