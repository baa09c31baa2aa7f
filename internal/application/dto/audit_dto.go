package dto

import "time"

// AuditQuery filtros de GET /api/audit.
type AuditQuery struct {
	ActorID     string `query:"actor_id"`
	Action      string `query:"action" validate:"omitempty,oneof=CREATE UPDATE DELETE LOGIN LOGOUT PERMISSION_CHANGE EXPORT IMPORT APPROVE REJECT OTHER"`
	Severity    string `query:"severity" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	SubjectKind string `query:"subject_kind"`
	SubjectID   string `query:"subject_id"`
	From        string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To          string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit       int    `query:"limit" validate:"min=0,max=500"`
	Offset      int    `query:"offset" validate:"min=0"`
}

// FieldChangeDTO par viejo/nuevo.
type FieldChangeDTO struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// AuditRecordResponse salida de un registro de auditoría.
type AuditRecordResponse struct {
	ID             string                    `json:"id"`
	ActorID        string                    `json:"actor_id,omitempty"`
	ActorName      string                    `json:"actor_name,omitempty"`
	Timestamp      time.Time                 `json:"timestamp"`
	Action         string                    `json:"action"`
	Severity       string                    `json:"severity"`
	SubjectKind    string                    `json:"subject_kind,omitempty"`
	SubjectID      string                    `json:"subject_id,omitempty"`
	SubjectDisplay string                    `json:"subject_display,omitempty"`
	Description    string                    `json:"description"`
	Metadata       map[string]any            `json:"metadata,omitempty"`
	Changes        map[string]FieldChangeDTO `json:"changes,omitempty"`
	IPAddress      string                    `json:"ip_address,omitempty"`
	UserAgent      string                    `json:"user_agent,omitempty"`
}

// AuditListResponse lista paginada de auditoría.
type AuditListResponse struct {
	Items []AuditRecordResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// PurgeAuditResponse salida de DELETE /api/audit.
type PurgeAuditResponse struct {
	Deleted int64     `json:"deleted"`
	Before  time.Time `json:"before"`
}
