package memory

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.AccessProfileRepository = (*AccessProfileRepo)(nil)

// AccessProfileRepo perfiles de acceso en memoria.
type AccessProfileRepo struct {
	s *Store
}

// NewAccessProfileRepository construye el repositorio.
func NewAccessProfileRepository(s *Store) *AccessProfileRepo {
	return &AccessProfileRepo{s: s}
}

func (r *AccessProfileRepo) GetByUserID(_ context.Context, userID string) (*entity.AccessProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return cloneProfile(p), nil
}

func (r *AccessProfileRepo) Upsert(_ context.Context, profile *entity.AccessProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.profiles[profile.UserID] = cloneProfile(profile)
	return nil
}
