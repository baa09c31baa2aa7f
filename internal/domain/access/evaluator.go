// Package access resuelve permisos efectivos a partir de un perfil jerárquico.
package access

import (
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// tierDefaults tabla fija capability × tier.
var tierDefaults = [entity.NumTiers][entity.NumCapabilities]bool{
	entity.TierLegalRepresentative: {
		entity.CapManageUsers:      true,
		entity.CapApproveMovements: true,
		entity.CapEditProducts:     true,
		entity.CapViewReports:      true,
		entity.CapGenerateReports:  true,
		entity.CapChangeSettings:   true,
		entity.CapViewAuditLogs:    true,
		entity.CapDeleteRecords:    true,
	},
	entity.TierDelegateRepresentative: {
		entity.CapApproveMovements: true,
		entity.CapEditProducts:     true,
		entity.CapViewReports:      true,
		entity.CapGenerateReports:  true,
		entity.CapViewAuditLogs:    true,
	},
	entity.TierOperator: {
		entity.CapViewReports: true,
	},
}

// TierDefault valor por defecto del tier; false para tier o capability desconocidos.
func TierDefault(tier entity.Tier, c entity.Capability) bool {
	if tier >= entity.NumTiers || c >= entity.NumCapabilities {
		return false
	}
	return tierDefaults[tier][c]
}

// IsActive falso si no hay perfil, si active=false o si hoy es posterior a expires_on.
func IsActive(p *entity.AccessProfile, today time.Time) bool {
	if p == nil || !p.Active {
		return false
	}
	if p.ExpiresOn != nil && dateOf(today).After(dateOf(*p.ExpiresOn)) {
		return false
	}
	return true
}

// HasCapability orden de resolución: perfil inactivo, override custom, default del tier.
func HasCapability(p *entity.AccessProfile, c entity.Capability, today time.Time) bool {
	if !IsActive(p, today) {
		return false
	}
	if c >= entity.NumCapabilities {
		return false
	}
	if v, ok := p.CustomPermissions[c]; ok {
		return v
	}
	return TierDefault(p.Tier, c)
}

// HasCapabilityNamed igual que HasCapability para nombres externos; nombre desconocido = false.
func HasCapabilityNamed(p *entity.AccessProfile, name string, today time.Time) bool {
	c, ok := entity.ParseCapability(name)
	if !ok {
		return false
	}
	return HasCapability(p, c, today)
}

// ValidateGrant exige que quien autoriza tenga perfil LEGAL_REPRESENTATIVE.
// authorizedBy vacío es válido (perfil sin otorgante).
func ValidateGrant(authorizedBy string, grantor *entity.AccessProfile) error {
	if authorizedBy == "" {
		return nil
	}
	if grantor == nil || grantor.Tier != entity.TierLegalRepresentative {
		return &domain.UnauthorizedGrantError{AuthorizedBy: authorizedBy}
	}
	return nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
