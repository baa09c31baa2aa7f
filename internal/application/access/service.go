// Package access expone el evaluador de perfiles de acceso a los casos de uso y a la capa HTTP.
package access

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	domainaccess "github.com/jhoicas/Inventario-ledger/internal/domain/access"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// ProfileHooks observador de cambios de perfil (auditoría CRITICAL).
type ProfileHooks interface {
	ProfileChanged(ctx context.Context, actor *entity.User, before, after *entity.AccessProfile, req *entity.RequestContext)
}

// Service resuelve permisos efectivos a partir del perfil persistido.
// Un error al leer el perfil se trata como denegación y se registra en el log.
type Service struct {
	profileRepo repository.AccessProfileRepository
	userRepo    repository.UserRepository
	hooks       ProfileHooks
	log         *logger.Logger
	now         func() time.Time
}

// NewService construye el servicio. hooks y log pueden ser nil.
func NewService(profileRepo repository.AccessProfileRepository, userRepo repository.UserRepository, hooks ProfileHooks, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{profileRepo: profileRepo, userRepo: userRepo, hooks: hooks, log: log, now: time.Now}
}

// Profile devuelve el perfil del usuario o (nil, nil) si no tiene.
func (s *Service) Profile(ctx context.Context, userID string) (*entity.AccessProfile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

func (s *Service) load(ctx context.Context, userID string) *entity.AccessProfile {
	if userID == "" {
		return nil
	}
	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("no se pudo leer el perfil de acceso")
		return nil
	}
	return p
}

// TierOf tier del usuario; false si no tiene perfil.
func (s *Service) TierOf(ctx context.Context, userID string) (entity.Tier, bool) {
	p := s.load(ctx, userID)
	if p == nil {
		return 0, false
	}
	return p.Tier, true
}

// IsActive falso sin perfil, con active=false o vencido.
func (s *Service) IsActive(ctx context.Context, userID string) bool {
	return domainaccess.IsActive(s.load(ctx, userID), s.now())
}

// HasCapability resuelve la capability para el usuario.
func (s *Service) HasCapability(ctx context.Context, userID string, c entity.Capability) bool {
	return domainaccess.HasCapability(s.load(ctx, userID), c, s.now())
}

// Require devuelve *domain.CapabilityDeniedError si el usuario no tiene la capability.
func (s *Service) Require(ctx context.Context, userID string, c entity.Capability) error {
	if !s.HasCapability(ctx, userID, c) {
		return &domain.CapabilityDeniedError{Capability: c.String()}
	}
	return nil
}

// RequireTier exige perfil vigente con el tier indicado.
func (s *Service) RequireTier(ctx context.Context, userID string, tier entity.Tier) error {
	p := s.load(ctx, userID)
	if !domainaccess.IsActive(p, s.now()) || p.Tier != tier {
		return &domain.CapabilityDeniedError{RequiredTier: tier.String()}
	}
	return nil
}

// SaveProfile valida que authorized_by sea LEGAL_REPRESENTATIVE, persiste (upsert por usuario)
// y dispara el hook PERMISSION_CHANGE.
func (s *Service) SaveProfile(ctx context.Context, actor *entity.User, profile *entity.AccessProfile, req *entity.RequestContext) (*entity.AccessProfile, error) {
	if profile == nil || profile.UserID == "" || profile.Tier >= entity.NumTiers {
		return nil, domain.ErrInvalidInput
	}
	for c := range profile.CustomPermissions {
		if c >= entity.NumCapabilities {
			return nil, domain.ErrInvalidInput
		}
	}
	user, err := s.userRepo.GetByID(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if profile.AuthorizedBy != "" {
		grantor, err := s.profileRepo.GetByUserID(ctx, profile.AuthorizedBy)
		if err != nil {
			return nil, err
		}
		if err := domainaccess.ValidateGrant(profile.AuthorizedBy, grantor); err != nil {
			return nil, err
		}
	}

	before, err := s.profileRepo.GetByUserID(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	saved := *profile
	saved.UpdatedAt = now
	saved.CreatedAt = now
	if before != nil {
		saved.CreatedAt = before.CreatedAt
	}
	if err := s.profileRepo.Upsert(ctx, &saved); err != nil {
		return nil, err
	}
	if s.hooks != nil {
		s.hooks.ProfileChanged(ctx, actor, before, &saved, req)
	}
	return &saved, nil
}
