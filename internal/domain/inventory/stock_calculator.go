package inventory

import (
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// QuantityScale decimales que persiste el ledger (NUMERIC(18,4)).
const QuantityScale int32 = 4

// ValidateQuantity verifica la cantidad según el tipo antes de tomar cualquier lock.
// ENTRY/EXIT exigen cantidad > 0; ADJUSTMENT es el stock objetivo y exige >= 0.
// Ninguna admite más de QuantityScale decimales significativos.
func ValidateQuantity(kind entity.MovementKind, qty decimal.Decimal) error {
	if !kind.Valid() {
		return domain.ErrInvalidMovementKind
	}
	if !qty.Equal(qty.Truncate(QuantityScale)) {
		return &domain.InvalidQuantityError{Kind: string(kind), Quantity: qty, MaxScale: QuantityScale}
	}
	if kind == entity.MovementAdjustment {
		if qty.IsNegative() {
			return &domain.InvalidQuantityError{Kind: string(kind), Quantity: qty}
		}
		return nil
	}
	if !qty.IsPositive() {
		return &domain.InvalidQuantityError{Kind: string(kind), Quantity: qty}
	}
	return nil
}

// ApplyMovement calcula el stock resultante (servicio de dominio).
//
//	ENTRY:      nuevo = actual + cantidad
//	EXIT:       nuevo = actual - cantidad (error si cantidad > actual)
//	ADJUSTMENT: nuevo = cantidad
func ApplyMovement(productID string, current decimal.Decimal, kind entity.MovementKind, qty decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateQuantity(kind, qty); err != nil {
		return decimal.Zero, err
	}
	switch kind {
	case entity.MovementEntry:
		return current.Add(qty), nil
	case entity.MovementExit:
		if qty.GreaterThan(current) {
			return decimal.Zero, &domain.InsufficientStockError{ProductID: productID, Available: current, Requested: qty}
		}
		return current.Sub(qty), nil
	default:
		return qty, nil
	}
}

// ReplayResult resultado de reproducir la cadena de un producto.
type ReplayResult struct {
	Stock      decimal.Decimal
	Consistent bool
	// BrokenAt ID de la primera entrada cuyo stock_before o stock_after no encaja; "" si la cadena es íntegra.
	BrokenAt string
}

// ReplayStock reproduce las entradas en orden de creación desde stock 0.
// Verifica que cada stock_before sea el acumulado previo y que stock_after sea el valor aplicado.
func ReplayStock(entries []*entity.StockLedgerEntry) ReplayResult {
	res := ReplayResult{Stock: decimal.Zero, Consistent: true}
	for _, e := range entries {
		var next decimal.Decimal
		switch e.Kind {
		case entity.MovementEntry:
			next = res.Stock.Add(e.Quantity)
		case entity.MovementExit:
			next = res.Stock.Sub(e.Quantity)
		default:
			next = e.Quantity
		}
		if res.Consistent && (!e.StockBefore.Equal(res.Stock) || !e.StockAfter.Equal(next)) {
			res.Consistent = false
			res.BrokenAt = e.ID
		}
		res.Stock = next
	}
	return res
}
