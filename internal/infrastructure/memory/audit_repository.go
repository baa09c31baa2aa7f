package memory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo log de auditoría en memoria.
type AuditRepo struct {
	s *Store
}

// NewAuditRepository construye el repositorio.
func NewAuditRepository(s *Store) *AuditRepo {
	return &AuditRepo{s: s}
}

func (r *AuditRepo) Create(_ context.Context, record *entity.AuditRecord) error {
	if record == nil {
		return errors.New("registro de auditoría nil")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, cloneAudit(record))
	return nil
}

// List más reciente primero; a igual timestamp gana el último escrito.
func (r *AuditRepo) List(_ context.Context, f entity.AuditFilter) ([]*entity.AuditRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.AuditRecord, 0)
	for i := len(r.s.audits) - 1; i >= 0; i-- {
		if rec := r.s.audits[i]; matches(rec, f) {
			out = append(out, cloneAudit(rec))
		}
	}
	return page(out, f.Limit, f.Offset), nil
}

func (r *AuditRepo) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.audits[:0]
	var deleted int64
	for _, rec := range r.s.audits {
		if rec.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	r.s.audits = kept
	return deleted, nil
}

func matches(rec *entity.AuditRecord, f entity.AuditFilter) bool {
	if f.ActorID != "" && rec.ActorID != f.ActorID {
		return false
	}
	if f.Action != "" && rec.Action != f.Action {
		return false
	}
	if f.Severity != "" && rec.Severity != f.Severity {
		return false
	}
	if f.SubjectKind != "" && (rec.Subject == nil || rec.Subject.Kind != f.SubjectKind) {
		return false
	}
	if f.SubjectID != "" && (rec.Subject == nil || rec.Subject.ID != f.SubjectID) {
		return false
	}
	if f.From != nil && rec.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && rec.Timestamp.After(*f.To) {
		return false
	}
	return true
}
