package entity

import "time"

// Estados válidos para User.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema (actor de movimientos y auditoría).
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName nombre visible: Name o, si está vacío, Username.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

func (u *User) String() string { return u.DisplayName() }

// AuditKind implementa Auditable.
func (u *User) AuditKind() EntityKind { return EntityKindUser }

// AuditID implementa Auditable.
func (u *User) AuditID() string { return u.ID }

// AuditFields implementa Auditable. El hash de contraseña nunca entra al snapshot.
func (u *User) AuditFields() map[string]string {
	return map[string]string{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"name":       u.Name,
		"status":     u.Status,
		"created_at": formatTime(u.CreatedAt),
		"updated_at": formatTime(u.UpdatedAt),
	}
}
