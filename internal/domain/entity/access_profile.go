package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Tier nivel jerárquico de acceso (LEGAL_REPRESENTATIVE > DELEGATE_REPRESENTATIVE > OPERATOR).
type Tier uint8

// Tiers soportados.
const (
	TierLegalRepresentative Tier = iota
	TierDelegateRepresentative
	TierOperator
	NumTiers
)

var tierNames = [NumTiers]string{
	TierLegalRepresentative:    "LEGAL_REPRESENTATIVE",
	TierDelegateRepresentative: "DELEGATE_REPRESENTATIVE",
	TierOperator:               "OPERATOR",
}

func (t Tier) String() string {
	if t < NumTiers {
		return tierNames[t]
	}
	return fmt.Sprintf("Tier(%d)", uint8(t))
}

// ParseTier convierte el nombre externo (JSON/SQL) en Tier.
func ParseTier(s string) (Tier, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range tierNames {
		if name == s {
			return Tier(i), true
		}
	}
	return 0, false
}

// Capability permiso evaluado contra los defaults del tier y los overrides del perfil.
type Capability uint8

// Capabilities conocidas.
const (
	CapManageUsers Capability = iota
	CapApproveMovements
	CapEditProducts
	CapViewReports
	CapGenerateReports
	CapChangeSettings
	CapViewAuditLogs
	CapDeleteRecords
	NumCapabilities
)

var capabilityNames = [NumCapabilities]string{
	CapManageUsers:      "manage_users",
	CapApproveMovements: "approve_movements",
	CapEditProducts:     "edit_products",
	CapViewReports:      "view_reports",
	CapGenerateReports:  "generate_reports",
	CapChangeSettings:   "change_settings",
	CapViewAuditLogs:    "view_audit_logs",
	CapDeleteRecords:    "delete_records",
}

func (c Capability) String() string {
	if c < NumCapabilities {
		return capabilityNames[c]
	}
	return fmt.Sprintf("Capability(%d)", uint8(c))
}

// ParseCapability convierte el nombre externo en Capability; false si no existe.
func ParseCapability(s string) (Capability, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range capabilityNames {
		if name == s {
			return Capability(i), true
		}
	}
	return 0, false
}

// AccessProfile perfil de acceso uno-a-uno con el usuario.
type AccessProfile struct {
	UserID            string
	Tier              Tier
	Active            bool
	ExpiresOn         *time.Time // fecha (sin hora); vencido si hoy > ExpiresOn
	AuthorizedBy      string     // usuario LEGAL_REPRESENTATIVE que otorgó el perfil; "" = ninguno
	CustomPermissions map[Capability]bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (p *AccessProfile) String() string {
	return fmt.Sprintf("%s (%s)", p.UserID, p.Tier)
}

// AuditKind implementa Auditable.
func (p *AccessProfile) AuditKind() EntityKind { return EntityKindAccessProfile }

// AuditID implementa Auditable.
func (p *AccessProfile) AuditID() string { return p.UserID }

// AuditFields implementa Auditable. custom_permissions se serializa ordenado para que el diff sea estable.
func (p *AccessProfile) AuditFields() map[string]string {
	expires := ""
	if p.ExpiresOn != nil {
		expires = p.ExpiresOn.Format(time.DateOnly)
	}
	perms := make([]string, 0, len(p.CustomPermissions))
	for c, v := range p.CustomPermissions {
		perms = append(perms, c.String()+"="+formatBool(v))
	}
	sort.Strings(perms)
	return map[string]string{
		"user_id":            p.UserID,
		"tier":               p.Tier.String(),
		"active":             formatBool(p.Active),
		"expires_on":         expires,
		"authorized_by":      p.AuthorizedBy,
		"custom_permissions": strings.Join(perms, ","),
		"created_at":         formatTime(p.CreatedAt),
		"updated_at":         formatTime(p.UpdatedAt),
	}
}
