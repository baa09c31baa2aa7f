package dto

import "time"

// SaveProfileRequest body para PUT /api/profiles/:userId.
type SaveProfileRequest struct {
	Tier              string          `json:"tier" validate:"required,oneof=LEGAL_REPRESENTATIVE DELEGATE_REPRESENTATIVE OPERATOR"`
	Active            bool            `json:"active"`
	ExpiresOn         *string         `json:"expires_on" validate:"omitempty,datetime=2006-01-02"`
	AuthorizedBy      string          `json:"authorized_by"`
	CustomPermissions map[string]bool `json:"custom_permissions"`
}

// ProfileResponse perfil de acceso con permisos efectivos resueltos.
type ProfileResponse struct {
	UserID            string          `json:"user_id"`
	Tier              string          `json:"tier"`
	Active            bool            `json:"active"`
	Effective         bool            `json:"effective"` // activo y no vencido hoy
	ExpiresOn         string          `json:"expires_on,omitempty"`
	AuthorizedBy      string          `json:"authorized_by,omitempty"`
	CustomPermissions map[string]bool `json:"custom_permissions,omitempty"`
	Capabilities      map[string]bool `json:"capabilities"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
