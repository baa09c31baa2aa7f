package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/audit"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// tierResolver lo implementa *access.Service.
type tierResolver interface {
	TierOf(ctx context.Context, userID string) (entity.Tier, bool)
	IsActive(ctx context.Context, userID string) bool
}

// AuditHandler consulta y retención del log de auditoría.
type AuditHandler struct {
	recorder *audit.Recorder
	tiers    tierResolver
}

// NewAuditHandler construye el handler.
func NewAuditHandler(recorder *audit.Recorder, tiers tierResolver) *AuditHandler {
	return &AuditHandler{recorder: recorder, tiers: tiers}
}

// List godoc
// @Summary      Consultar log de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        actor_id      query  string  false  "Actor"
// @Param        action        query  string  false  "Acción"
// @Param        severity      query  string  false  "Severidad"
// @Param        subject_kind  query  string  false  "Tipo de entidad"
// @Param        subject_id    query  string  false  "ID de entidad"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta (RFC3339)"
// @Param        limit         query  int     false  "Límite"  default(50)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.AuditListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	var q dto.AuditQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	page := dto.PageQuery{Limit: q.Limit, Offset: q.Offset}.Resolve(50, 500)
	filter := entity.AuditFilter{
		ActorID:     q.ActorID,
		Action:      entity.AuditAction(q.Action),
		Severity:    entity.Severity(q.Severity),
		SubjectKind: entity.EntityKind(q.SubjectKind),
		SubjectID:   q.SubjectID,
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	// Formato ya validado por el tag datetime.
	if q.From != "" {
		from, _ := time.Parse(time.RFC3339, q.From)
		filter.From = &from
	}
	if q.To != "" {
		to, _ := time.Parse(time.RFC3339, q.To)
		filter.To = &to
	}
	records, err := h.recorder.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.AuditListResponse{
		Items: make([]dto.AuditRecordResponse, len(records)),
		Page:  page,
	}
	for i, r := range records {
		out.Items[i] = toAuditRecordResponse(r)
	}
	return c.JSON(out)
}

// Purge godoc
// @Summary      Purgar registros de auditoría anteriores a una fecha
// @Description  Solo LEGAL_REPRESENTATIVE. La purga deja su propio registro CRITICAL.
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        before  query  string  true  "Corte (RFC3339 o YYYY-MM-DD)"
// @Success      200  {object}  dto.PurgeAuditResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit [delete]
func (h *AuditHandler) Purge(c *fiber.Ctx) error {
	cutoff, ok := parseCutoff(c.Query("before"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "before: RFC3339 o YYYY-MM-DD requerido"})
	}
	ctx := c.UserContext()
	actor := GetActor(c)
	var tier *entity.Tier
	if actor != nil && h.tiers.IsActive(ctx, actor.ID) {
		if t, ok := h.tiers.TierOf(ctx, actor.ID); ok {
			tier = &t
		}
	}
	deleted, err := h.recorder.PurgeBefore(ctx, actor, tier, cutoff, requestContext(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PurgeAuditResponse{Deleted: deleted, Before: cutoff})
}

func parseCutoff(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func toAuditRecordResponse(r *entity.AuditRecord) dto.AuditRecordResponse {
	res := dto.AuditRecordResponse{
		ID:          r.ID,
		ActorID:     r.ActorID,
		ActorName:   r.ActorName,
		Timestamp:   r.Timestamp,
		Action:      string(r.Action),
		Severity:    string(r.Severity),
		Description: r.Description,
		Metadata:    r.Metadata,
		IPAddress:   r.IPAddress,
		UserAgent:   r.UserAgent,
	}
	if r.Subject != nil {
		res.SubjectKind = string(r.Subject.Kind)
		res.SubjectID = r.Subject.ID
		res.SubjectDisplay = r.Subject.Display
	}
	if len(r.Changes) > 0 {
		res.Changes = make(map[string]dto.FieldChangeDTO, len(r.Changes))
		for field, ch := range r.Changes {
			res.Changes[field] = dto.FieldChangeDTO{Old: ch.Old, New: ch.New}
		}
	}
	return res
}
