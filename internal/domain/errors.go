package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrUserNotFound          = errors.New("usuario no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrDuplicate             = errors.New("recurso duplicado")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrConflict              = errors.New("conflicto con el estado actual")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrInvalidQuantity       = errors.New("cantidad inválida")
	ErrInvalidMovementKind   = errors.New("tipo de movimiento inválido")
	ErrProductNotFound       = errors.New("producto no encontrado")
	ErrProductInactive       = errors.New("producto inactivo")
	ErrProductReferenced     = errors.New("producto referenciado por movimientos de stock")
	ErrProfileInactive       = errors.New("perfil de acceso inactivo o expirado")
	ErrUnauthorizedGrant     = errors.New("autorización de perfil inválida")
	ErrCapabilityDenied      = errors.New("permiso denegado")
	ErrBatchTooLarge         = errors.New("lote de movimientos demasiado grande")
	ErrAuditStoreUnavailable = errors.New("almacenamiento de auditoría no disponible")
)

// InsufficientStockError detalla el faltante de una salida rechazada.
type InsufficientStockError struct {
	ProductID string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: disponible %s, solicitado %s", e.Available.String(), e.Requested.String())
}

// Shortfall devuelve cuánto falta para cubrir la salida.
func (e *InsufficientStockError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidQuantityError detalla una cantidad rechazada antes de tomar el lock.
type InvalidQuantityError struct {
	Kind     string
	Quantity decimal.Decimal
	// MaxScale > 0 cuando el rechazo es por exceso de decimales.
	MaxScale int32
}

func (e *InvalidQuantityError) Error() string {
	if e.MaxScale > 0 {
		return fmt.Sprintf("cantidad inválida para %s: %s (máximo %d decimales)", e.Kind, e.Quantity.String(), e.MaxScale)
	}
	if e.Kind == "ADJUSTMENT" {
		return fmt.Sprintf("cantidad inválida para %s: %s (el valor objetivo debe ser >= 0)", e.Kind, e.Quantity.String())
	}
	return fmt.Sprintf("cantidad inválida para %s: %s (debe ser > 0)", e.Kind, e.Quantity.String())
}

func (e *InvalidQuantityError) Unwrap() error { return ErrInvalidQuantity }

// UnauthorizedGrantError authorized_by no es un LEGAL_REPRESENTATIVE.
type UnauthorizedGrantError struct {
	AuthorizedBy string
}

func (e *UnauthorizedGrantError) Error() string {
	return fmt.Sprintf("autorización de perfil inválida: %q no es LEGAL_REPRESENTATIVE", e.AuthorizedBy)
}

func (e *UnauthorizedGrantError) Unwrap() error { return ErrUnauthorizedGrant }

// CapabilityDeniedError nombra la capability o el tier que faltó.
type CapabilityDeniedError struct {
	Capability   string
	RequiredTier string
}

func (e *CapabilityDeniedError) Error() string {
	if e.RequiredTier != "" {
		return fmt.Sprintf("acceso denegado: se requiere perfil %s", e.RequiredTier)
	}
	return fmt.Sprintf("acceso denegado: falta el permiso %q", e.Capability)
}

func (e *CapabilityDeniedError) Unwrap() error { return ErrCapabilityDenied }
