package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// AccessProfileRepository perfil de acceso uno-a-uno con el usuario.
type AccessProfileRepository interface {
	// GetByUserID devuelve (nil, nil) si el usuario no tiene perfil.
	GetByUserID(ctx context.Context, userID string) (*entity.AccessProfile, error)
	Upsert(ctx context.Context, profile *entity.AccessProfile) error
}
