// Package audit contiene la lógica pura de auditoría (diff de cambios).
package audit

import "github.com/jhoicas/Inventario-ledger/internal/domain/entity"

// excludedFields campos de contabilidad interna que nunca entran al diff.
var excludedFields = map[string]struct{}{
	"id":         {},
	"created_at": {},
	"updated_at": {},
}

// Diff devuelve campo -> {old, new} para cada campo cuyo valor en texto difiere,
// sobre la unión de campos de ambos snapshots. Un campo ausente se compara como "".
func Diff(before, after map[string]string) map[string]entity.FieldChange {
	changes := make(map[string]entity.FieldChange)
	for field, old := range before {
		if _, skip := excludedFields[field]; skip {
			continue
		}
		if nv := after[field]; nv != old {
			changes[field] = entity.FieldChange{Old: old, New: nv}
		}
	}
	for field, nv := range after {
		if _, skip := excludedFields[field]; skip {
			continue
		}
		if _, seen := before[field]; seen {
			continue
		}
		if nv != "" {
			changes[field] = entity.FieldChange{Old: "", New: nv}
		}
	}
	return changes
}
