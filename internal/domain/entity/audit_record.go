package entity

import "time"

// AuditAction tipo de evento auditado.
type AuditAction string

// Acciones de auditoría.
const (
	AuditCreate           AuditAction = "CREATE"
	AuditUpdate           AuditAction = "UPDATE"
	AuditDelete           AuditAction = "DELETE"
	AuditLogin            AuditAction = "LOGIN"
	AuditLogout           AuditAction = "LOGOUT"
	AuditPermissionChange AuditAction = "PERMISSION_CHANGE"
	AuditExport           AuditAction = "EXPORT"
	AuditImport           AuditAction = "IMPORT"
	AuditApprove          AuditAction = "APPROVE"
	AuditReject           AuditAction = "REJECT"
	AuditOther            AuditAction = "OTHER"
)

// Valid informa si la acción es conocida.
func (a AuditAction) Valid() bool {
	switch a {
	case AuditCreate, AuditUpdate, AuditDelete, AuditLogin, AuditLogout, AuditPermissionChange,
		AuditExport, AuditImport, AuditApprove, AuditReject, AuditOther:
		return true
	}
	return false
}

// Severity nivel de criticidad de un registro de auditoría.
type Severity string

// Severidades.
const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Valid informa si la severidad es conocida.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// EntityKind etiqueta del tipo de entidad auditada.
type EntityKind string

// Tipos de entidad que pueden auditarse por hooks de ciclo de vida.
const (
	EntityKindProduct          EntityKind = "product"
	EntityKindStockLedgerEntry EntityKind = "stock_ledger_entry"
	EntityKindAccessProfile    EntityKind = "access_profile"
	EntityKindUser             EntityKind = "user"
)

// DefaultAuditedKinds lista estática usada cuando la configuración no define otra.
var DefaultAuditedKinds = []EntityKind{
	EntityKindProduct,
	EntityKindStockLedgerEntry,
	EntityKindAccessProfile,
	EntityKindUser,
}

// Auditable lo implementan las entidades observadas por el registrador de auditoría.
type Auditable interface {
	AuditKind() EntityKind
	AuditID() string
	String() string
	// AuditFields snapshot campo -> valor en texto, base del diff de UPDATE.
	AuditFields() map[string]string
}

// SubjectRef referencia a la entidad afectada. Display se fija al escribir
// y sobrevive al borrado de la entidad.
type SubjectRef struct {
	Kind    EntityKind
	ID      string
	Display string
}

// SubjectOf construye la referencia snapshot de una entidad auditable.
func SubjectOf(a Auditable) *SubjectRef {
	if a == nil {
		return nil
	}
	return &SubjectRef{Kind: a.AuditKind(), ID: a.AuditID(), Display: a.String()}
}

// FieldChange par viejo/nuevo de un campo modificado.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// RequestContext metadatos de la petición que originó la acción.
type RequestContext struct {
	IPAddress string
	UserAgent string
}

// AuditRecord registro inmutable de auditoría. ActorID vacío = acción de sistema o anónima.
type AuditRecord struct {
	ID          string
	ActorID     string
	ActorName   string
	Timestamp   time.Time
	Action      AuditAction
	Severity    Severity
	Subject     *SubjectRef
	Description string
	Metadata    map[string]any
	Changes     map[string]FieldChange
	IPAddress   string
	UserAgent   string
}

// AuditFilter criterios de consulta del log de auditoría.
type AuditFilter struct {
	ActorID     string
	Action      AuditAction
	Severity    Severity
	SubjectKind EntityKind
	SubjectID   string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}
