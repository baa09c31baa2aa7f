package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento del ledger.
type MovementKind string

// Tipos de movimiento de inventario.
const (
	MovementEntry      MovementKind = "ENTRY"      // entrada: suma al stock
	MovementExit       MovementKind = "EXIT"       // salida: resta del stock
	MovementAdjustment MovementKind = "ADJUSTMENT" // ajuste: fija el stock a un valor absoluto
)

// Valid informa si el tipo es uno de los tres soportados.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementEntry, MovementExit, MovementAdjustment:
		return true
	}
	return false
}

// StockLedgerEntry registro inmutable de un movimiento de stock.
// Para ADJUSTMENT, Quantity es el stock absoluto resultante, no un delta.
// StockBefore y StockAfter los calcula el motor al confirmar; nunca los provee el caller.
type StockLedgerEntry struct {
	ID          string
	ProductID   string
	Kind        MovementKind
	Quantity    decimal.Decimal
	Document    string // factura, remisión, acta de conteo
	Notes       string
	ActorID     string
	StockBefore decimal.Decimal
	StockAfter  decimal.Decimal
	CreatedAt   time.Time
}

// Difference delta con signo aplicado al stock.
func (e *StockLedgerEntry) Difference() decimal.Decimal {
	return e.StockAfter.Sub(e.StockBefore)
}

func (e *StockLedgerEntry) String() string {
	return fmt.Sprintf("%s %s (%s -> %s) producto %s", e.Kind, e.Quantity.String(),
		e.StockBefore.String(), e.StockAfter.String(), e.ProductID)
}

// AuditKind implementa Auditable.
func (e *StockLedgerEntry) AuditKind() EntityKind { return EntityKindStockLedgerEntry }

// AuditID implementa Auditable.
func (e *StockLedgerEntry) AuditID() string { return e.ID }

// AuditFields implementa Auditable.
func (e *StockLedgerEntry) AuditFields() map[string]string {
	return map[string]string{
		"id":           e.ID,
		"product_id":   e.ProductID,
		"kind":         string(e.Kind),
		"quantity":     e.Quantity.String(),
		"document":     e.Document,
		"notes":        e.Notes,
		"actor_id":     e.ActorID,
		"stock_before": e.StockBefore.String(),
		"stock_after":  e.StockAfter.String(),
		"created_at":   formatTime(e.CreatedAt),
	}
}
