// Package audit registra eventos de ciclo de vida y acciones explícitas en el log de auditoría.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	domainaudit "github.com/jhoicas/Inventario-ledger/internal/domain/audit"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// Config lista estática de tipos de entidad auditados por hooks. Vacía = entity.DefaultAuditedKinds.
type Config struct {
	AuditedKinds []entity.EntityKind
}

// Recorder escribe exactamente un registro por invocación de Record.
// Los hooks de ciclo de vida son best-effort: registran el fallo en el log y no lo propagan.
type Recorder struct {
	repo    repository.AuditRepository
	audited map[entity.EntityKind]struct{}
	log     *logger.Logger
	now     func() time.Time
}

// NewRecorder construye el registrador. log nil usa logger.Nop().
func NewRecorder(repo repository.AuditRepository, cfg Config, log *logger.Logger) *Recorder {
	kinds := cfg.AuditedKinds
	if len(kinds) == 0 {
		kinds = entity.DefaultAuditedKinds
	}
	audited := make(map[entity.EntityKind]struct{}, len(kinds))
	for _, k := range kinds {
		audited[k] = struct{}{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{repo: repo, audited: audited, log: log, now: time.Now}
}

// Entry datos de un registro. Severity vacía = LOW.
type Entry struct {
	Actor       *entity.User
	Action      entity.AuditAction
	Description string
	Subject     *entity.SubjectRef
	Severity    entity.Severity
	Metadata    map[string]any
	Changes     map[string]entity.FieldChange
	Request     *entity.RequestContext
}

// Record escribe un registro. El sujeto ya viene como snapshot (Display fijado al construir la referencia).
func (r *Recorder) Record(ctx context.Context, in Entry) (*entity.AuditRecord, error) {
	if !in.Action.Valid() {
		return nil, fmt.Errorf("%w: acción de auditoría %q", domain.ErrInvalidInput, in.Action)
	}
	severity := in.Severity
	if severity == "" {
		severity = entity.SeverityLow
	}
	if !severity.Valid() {
		return nil, fmt.Errorf("%w: severidad %q", domain.ErrInvalidInput, severity)
	}
	rec := &entity.AuditRecord{
		ID:          uuid.New().String(),
		Timestamp:   r.now().UTC(),
		Action:      in.Action,
		Severity:    severity,
		Description: in.Description,
		Metadata:    in.Metadata,
		Changes:     in.Changes,
	}
	if in.Actor != nil {
		rec.ActorID = in.Actor.ID
		rec.ActorName = in.Actor.DisplayName()
	}
	if in.Subject != nil {
		subject := *in.Subject
		rec.Subject = &subject
	}
	if in.Request != nil {
		rec.IPAddress = in.Request.IPAddress
		rec.UserAgent = in.Request.UserAgent
	}
	if err := r.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuditStoreUnavailable, err)
	}
	return rec, nil
}

// IsAudited informa si el tipo de entidad está en la lista de auditados.
func (r *Recorder) IsAudited(kind entity.EntityKind) bool {
	_, ok := r.audited[kind]
	return ok
}

// ── Hooks de ciclo de vida ──────────────────────────────────────────────────

// EntityCreated registra CREATE (MEDIUM). Sin actor autenticado no se audita (acción de sistema).
func (r *Recorder) EntityCreated(ctx context.Context, actor *entity.User, e entity.Auditable, req *entity.RequestContext) {
	if actor == nil || !r.IsAudited(e.AuditKind()) {
		return
	}
	r.bestEffort(ctx, Entry{
		Actor:       actor,
		Action:      entity.AuditCreate,
		Description: fmt.Sprintf("Creó %s: %s", e.AuditKind(), e.String()),
		Subject:     entity.SubjectOf(e),
		Severity:    entity.SeverityMedium,
		Request:     req,
	})
}

// EntityUpdated registra UPDATE (LOW) con el diff campo a campo entre before y el estado actual.
func (r *Recorder) EntityUpdated(ctx context.Context, actor *entity.User, before map[string]string, after entity.Auditable, req *entity.RequestContext) {
	if actor == nil || !r.IsAudited(after.AuditKind()) {
		return
	}
	r.bestEffort(ctx, Entry{
		Actor:       actor,
		Action:      entity.AuditUpdate,
		Description: fmt.Sprintf("Actualizó %s: %s", after.AuditKind(), after.String()),
		Subject:     entity.SubjectOf(after),
		Severity:    entity.SeverityLow,
		Changes:     domainaudit.Diff(before, after.AuditFields()),
		Request:     req,
	})
}

// EntityDeleted registra DELETE (HIGH). La referencia conserva el texto de la entidad borrada.
func (r *Recorder) EntityDeleted(ctx context.Context, actor *entity.User, e entity.Auditable, req *entity.RequestContext) {
	if actor == nil || !r.IsAudited(e.AuditKind()) {
		return
	}
	r.bestEffort(ctx, Entry{
		Actor:       actor,
		Action:      entity.AuditDelete,
		Description: fmt.Sprintf("Eliminó %s: %s", e.AuditKind(), e.String()),
		Subject:     entity.SubjectOf(e),
		Severity:    entity.SeverityHigh,
		Metadata: map[string]any{
			"model":       string(e.AuditKind()),
			"object_repr": e.String(),
		},
		Request: req,
	})
}

// Imported implementa el hook de lotes del motor de movimientos.
func (r *Recorder) Imported(ctx context.Context, actor *entity.User, model string, count int, req *entity.RequestContext) {
	if _, err := r.Import(ctx, actor, model, count, req); err != nil {
		r.logFailure(entity.AuditImport, err)
	}
}

// ProfileChanged registra PERMISSION_CHANGE, siempre CRITICAL. before nil = perfil creado.
func (r *Recorder) ProfileChanged(ctx context.Context, actor *entity.User, before, after *entity.AccessProfile, req *entity.RequestContext) {
	if actor == nil {
		return
	}
	desc := fmt.Sprintf("Creó perfil %s para %s", after.Tier, after.UserID)
	var changes map[string]entity.FieldChange
	if before != nil {
		desc = fmt.Sprintf("Alteró perfil de %s", after.UserID)
		changes = domainaudit.Diff(before.AuditFields(), after.AuditFields())
		delete(changes, "user_id")
	}
	r.bestEffort(ctx, Entry{
		Actor:       actor,
		Action:      entity.AuditPermissionChange,
		Description: desc,
		Subject:     entity.SubjectOf(after),
		Severity:    entity.SeverityCritical,
		Changes:     changes,
		Request:     req,
	})
}

// ── Autenticación ───────────────────────────────────────────────────────────

// Login login exitoso (LOW).
func (r *Recorder) Login(ctx context.Context, user *entity.User, req *entity.RequestContext) {
	r.bestEffort(ctx, Entry{
		Actor:       user,
		Action:      entity.AuditLogin,
		Description: fmt.Sprintf("Login realizado por %s", user.DisplayName()),
		Severity:    entity.SeverityLow,
		Request:     req,
	})
}

// Logout cierre de sesión (LOW). Sin usuario no hay registro.
func (r *Recorder) Logout(ctx context.Context, user *entity.User, req *entity.RequestContext) {
	if user == nil {
		return
	}
	r.bestEffort(ctx, Entry{
		Actor:       user,
		Action:      entity.AuditLogout,
		Description: fmt.Sprintf("Logout realizado por %s", user.DisplayName()),
		Severity:    entity.SeverityLow,
		Request:     req,
	})
}

// LoginFailed intento fallido (MEDIUM). Se registra siempre, sin actor, con el username en metadata.
func (r *Recorder) LoginFailed(ctx context.Context, username string, req *entity.RequestContext) {
	if username == "" {
		username = "desconocido"
	}
	r.bestEffort(ctx, Entry{
		Action:      entity.AuditLogin,
		Description: fmt.Sprintf("Intento de login fallido para usuario: %s", username),
		Severity:    entity.SeverityMedium,
		Metadata:    map[string]any{"username": username},
		Request:     req,
	})
}

// ── Acciones explícitas ─────────────────────────────────────────────────────

// Export exportación de datos (MEDIUM).
func (r *Recorder) Export(ctx context.Context, actor *entity.User, model string, count int, req *entity.RequestContext) (*entity.AuditRecord, error) {
	return r.Record(ctx, Entry{
		Actor:       actor,
		Action:      entity.AuditExport,
		Description: fmt.Sprintf("Exportó %d registros de %s", count, model),
		Severity:    entity.SeverityMedium,
		Metadata:    map[string]any{"model": model, "count": count},
		Request:     req,
	})
}

// Import importación de datos (HIGH).
func (r *Recorder) Import(ctx context.Context, actor *entity.User, model string, count int, req *entity.RequestContext) (*entity.AuditRecord, error) {
	return r.Record(ctx, Entry{
		Actor:       actor,
		Action:      entity.AuditImport,
		Description: fmt.Sprintf("Importó %d registros para %s", count, model),
		Severity:    entity.SeverityHigh,
		Metadata:    map[string]any{"model": model, "count": count},
		Request:     req,
	})
}

// Approval aprobación o rechazo (MEDIUM).
func (r *Recorder) Approval(ctx context.Context, actor *entity.User, objectRepr string, approved bool, req *entity.RequestContext) (*entity.AuditRecord, error) {
	action, verb := entity.AuditApprove, "Aprobó"
	if !approved {
		action, verb = entity.AuditReject, "Rechazó"
	}
	return r.Record(ctx, Entry{
		Actor:       actor,
		Action:      action,
		Description: fmt.Sprintf("%s: %s", verb, objectRepr),
		Severity:    entity.SeverityMedium,
		Request:     req,
	})
}

// ── Consulta y retención ────────────────────────────────────────────────────

// List registros más recientes primero.
func (r *Recorder) List(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditRecord, error) {
	return r.repo.List(ctx, filter)
}

// PurgeBefore borra registros anteriores al corte. Solo un LEGAL_REPRESENTATIVE puede hacerlo,
// y la purga deja su propio registro DELETE CRITICAL.
func (r *Recorder) PurgeBefore(ctx context.Context, actor *entity.User, actorTier *entity.Tier, cutoff time.Time, req *entity.RequestContext) (int64, error) {
	if actor == nil {
		return 0, domain.ErrUnauthorized
	}
	if actorTier == nil || *actorTier != entity.TierLegalRepresentative {
		return 0, &domain.CapabilityDeniedError{RequiredTier: entity.TierLegalRepresentative.String()}
	}
	deleted, err := r.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrAuditStoreUnavailable, err)
	}
	_, err = r.Record(ctx, Entry{
		Actor:       actor,
		Action:      entity.AuditDelete,
		Description: fmt.Sprintf("Eliminó %d registros de auditoría anteriores a %s", deleted, cutoff.UTC().Format(time.RFC3339)),
		Severity:    entity.SeverityCritical,
		Metadata: map[string]any{
			"model":  "audit_record",
			"count":  deleted,
			"cutoff": cutoff.UTC().Format(time.RFC3339),
		},
		Request: req,
	})
	return deleted, err
}

func (r *Recorder) bestEffort(ctx context.Context, in Entry) {
	if _, err := r.Record(ctx, in); err != nil {
		r.logFailure(in.Action, err)
	}
}

func (r *Recorder) logFailure(action entity.AuditAction, err error) {
	r.log.Error().Err(err).Str("action", string(action)).Msg("no se pudo escribir el registro de auditoría")
}
