package audit_test

import (
	"testing"

	"github.com/jhoicas/Inventario-ledger/internal/domain/audit"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestDiff_SoloCamposCambiados(t *testing.T) {
	before := map[string]string{"id": "1", "name": "Tornillo", "current_stock": "10", "updated_at": "a"}
	after := map[string]string{"id": "1", "name": "Tornillo", "current_stock": "15", "updated_at": "b"}

	got := audit.Diff(before, after)
	assert.Equal(t, map[string]entity.FieldChange{"current_stock": {Old: "10", New: "15"}}, got)
}

func TestDiff_ExcluyeCamposDeContabilidad(t *testing.T) {
	before := map[string]string{"id": "1", "created_at": "x", "updated_at": "y"}
	after := map[string]string{"id": "2", "created_at": "z", "updated_at": "w"}
	assert.Empty(t, audit.Diff(before, after))
}

func TestDiff_UnionDeCampos(t *testing.T) {
	before := map[string]string{"notes": "viejo"}
	after := map[string]string{"document": "FAC-1"}

	got := audit.Diff(before, after)
	assert.Equal(t, entity.FieldChange{Old: "viejo", New: ""}, got["notes"])
	assert.Equal(t, entity.FieldChange{Old: "", New: "FAC-1"}, got["document"])
}

func TestDiff_SinCambios(t *testing.T) {
	snap := map[string]string{"name": "x", "is_active": "true"}
	assert.Empty(t, audit.Diff(snap, snap))
}
