// Package memory implementa los puertos de persistencia en memoria (desarrollo, tests y APP_STORE=memory).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// Store estado compartido por todos los repositorios en memoria.
// mu protege los datos; rowLocks emula SELECT FOR UPDATE con un lock por producto.
type Store struct {
	mu       sync.RWMutex
	products map[string]*entity.Product
	entries  []*entity.StockLedgerEntry // append-only, orden de commit
	audits   []*entity.AuditRecord      // append-only salvo retención
	profiles map[string]*entity.AccessProfile
	users    map[string]*entity.User

	locksMu  sync.Mutex
	rowLocks map[string]chan struct{}
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[string]*entity.Product),
		profiles: make(map[string]*entity.AccessProfile),
		users:    make(map[string]*entity.User),
		rowLocks: make(map[string]chan struct{}),
	}
}

// lockRow bloquea la fila del producto hasta unlockRow; respeta la cancelación de ctx mientras espera.
func (s *Store) lockRow(ctx context.Context, id string) error {
	s.locksMu.Lock()
	ch, ok := s.rowLocks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.rowLocks[id] = ch
	}
	s.locksMu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) unlockRow(id string) {
	s.locksMu.Lock()
	ch := s.rowLocks[id]
	s.locksMu.Unlock()
	<-ch
}

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	if p.UnitPrice != nil {
		v := *p.UnitPrice
		c.UnitPrice = &v
	}
	if p.ExpiryDate != nil {
		v := *p.ExpiryDate
		c.ExpiryDate = &v
	}
	return &c
}

func cloneEntry(e *entity.StockLedgerEntry) *entity.StockLedgerEntry {
	c := *e
	return &c
}

func cloneProfile(p *entity.AccessProfile) *entity.AccessProfile {
	c := *p
	if p.ExpiresOn != nil {
		v := *p.ExpiresOn
		c.ExpiresOn = &v
	}
	if p.CustomPermissions != nil {
		c.CustomPermissions = make(map[entity.Capability]bool, len(p.CustomPermissions))
		for k, v := range p.CustomPermissions {
			c.CustomPermissions[k] = v
		}
	}
	return &c
}

func cloneAudit(r *entity.AuditRecord) *entity.AuditRecord {
	c := *r
	if r.Subject != nil {
		s := *r.Subject
		c.Subject = &s
	}
	if r.Metadata != nil {
		c.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			c.Metadata[k] = v
		}
	}
	if r.Changes != nil {
		c.Changes = make(map[string]entity.FieldChange, len(r.Changes))
		for k, v := range r.Changes {
			c.Changes[k] = v
		}
	}
	return &c
}

// page aplica limit/offset; limit <= 0 = sin límite.
func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
