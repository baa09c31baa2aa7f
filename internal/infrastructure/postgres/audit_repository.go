package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo log de auditoría sobre PostgreSQL. metadata y changes se guardan como JSONB.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta un registro inmutable.
func (r *AuditRepo) Create(ctx context.Context, rec *entity.AuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	metadata, err := marshalJSON(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	changes, err := marshalJSON(rec.Changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}
	var kind, id, display *string
	if rec.Subject != nil {
		k := string(rec.Subject.Kind)
		kind, id, display = &k, &rec.Subject.ID, &rec.Subject.Display
	}
	query := `
		INSERT INTO audit_records (id, actor_id, actor_name, timestamp, action, severity,
			subject_kind, subject_id, subject_display, description, metadata, changes, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.q.Exec(ctx, query,
		rec.ID, nullString(rec.ActorID), rec.ActorName, rec.Timestamp, string(rec.Action), string(rec.Severity),
		kind, id, display, rec.Description, metadata, changes, rec.IPAddress, rec.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// List más reciente primero, con filtros opcionales.
func (r *AuditRepo) List(ctx context.Context, f entity.AuditFilter) ([]*entity.AuditRecord, error) {
	where, args := auditWhere(f)
	query := `
		SELECT id, actor_id, actor_name, timestamp, action, severity, subject_kind, subject_id, subject_display,
			description, metadata, changes, ip_address, user_agent
		FROM audit_records` + where + `
		ORDER BY timestamp DESC, seq DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditRecord
	for rows.Next() {
		var (
			rec                     entity.AuditRecord
			actorID                 *string
			action, severity        string
			kind, id, display       *string
			metadataRaw, changesRaw []byte
		)
		if err := rows.Scan(&rec.ID, &actorID, &rec.ActorName, &rec.Timestamp, &action, &severity,
			&kind, &id, &display, &rec.Description, &metadataRaw, &changesRaw, &rec.IPAddress, &rec.UserAgent); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.ActorID = derefString(actorID)
		rec.Action = entity.AuditAction(action)
		rec.Severity = entity.Severity(severity)
		if kind != nil {
			rec.Subject = &entity.SubjectRef{Kind: entity.EntityKind(*kind), ID: derefString(id), Display: derefString(display)}
		}
		if len(metadataRaw) > 0 {
			if err := json.Unmarshal(metadataRaw, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		if len(changesRaw) > 0 {
			if err := json.Unmarshal(changesRaw, &rec.Changes); err != nil {
				return nil, fmt.Errorf("unmarshal changes: %w", err)
			}
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}

// DeleteBefore elimina registros con timestamp anterior al corte.
func (r *AuditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM audit_records WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge audit records: %w", err)
	}
	return tag.RowsAffected(), nil
}

func auditWhere(f entity.AuditFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ActorID != "" {
		add("actor_id = $%d", f.ActorID)
	}
	if f.Action != "" {
		add("action = $%d", string(f.Action))
	}
	if f.Severity != "" {
		add("severity = $%d", string(f.Severity))
	}
	if f.SubjectKind != "" {
		add("subject_kind = $%d", string(f.SubjectKind))
	}
	if f.SubjectID != "" {
		add("subject_id = $%d", f.SubjectID)
	}
	if f.From != nil {
		add("timestamp >= $%d", *f.From)
	}
	if f.To != nil {
		add("timestamp <= $%d", *f.To)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// marshalJSON devuelve nil (NULL) para mapas vacíos.
func marshalJSON[M ~map[string]V, V any](m M) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}
