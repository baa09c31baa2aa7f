package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.AccessProfileRepository = (*AccessProfileRepo)(nil)

// AccessProfileRepo perfiles de acceso sobre PostgreSQL. tier y capabilities se guardan por nombre.
type AccessProfileRepo struct {
	q Querier
}

// NewAccessProfileRepository construye el adaptador.
func NewAccessProfileRepository(q Querier) *AccessProfileRepo {
	return &AccessProfileRepo{q: q}
}

// GetByUserID devuelve (nil, nil) si el usuario no tiene perfil.
func (r *AccessProfileRepo) GetByUserID(ctx context.Context, userID string) (*entity.AccessProfile, error) {
	query := `
		SELECT user_id, tier, active, expires_on, authorized_by, custom_permissions, created_at, updated_at
		FROM access_profiles WHERE user_id = $1`
	var (
		p            entity.AccessProfile
		tier         string
		authorizedBy *string
		customRaw    []byte
	)
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &tier, &p.Active, &p.ExpiresOn, &authorizedBy, &customRaw, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get access profile: %w", err)
	}
	var ok bool
	if p.Tier, ok = entity.ParseTier(tier); !ok {
		return nil, fmt.Errorf("perfil %s: tier desconocido %q", userID, tier)
	}
	p.AuthorizedBy = derefString(authorizedBy)
	if p.CustomPermissions, err = decodePermissions(customRaw); err != nil {
		return nil, fmt.Errorf("perfil %s: %w", userID, err)
	}
	return &p, nil
}

// Upsert crea o reemplaza el perfil del usuario.
func (r *AccessProfileRepo) Upsert(ctx context.Context, p *entity.AccessProfile) error {
	custom, err := encodePermissions(p.CustomPermissions)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO access_profiles (user_id, tier, active, expires_on, authorized_by, custom_permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id)
		DO UPDATE SET tier = EXCLUDED.tier, active = EXCLUDED.active, expires_on = EXCLUDED.expires_on,
		    authorized_by = EXCLUDED.authorized_by, custom_permissions = EXCLUDED.custom_permissions,
		    updated_at = EXCLUDED.updated_at`
	_, err = r.q.Exec(ctx, query,
		p.UserID, p.Tier.String(), p.Active, p.ExpiresOn, nullString(p.AuthorizedBy), custom, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("upsert access profile: %w", err)
	}
	return nil
}

func encodePermissions(perms map[entity.Capability]bool) ([]byte, error) {
	byName := make(map[string]bool, len(perms))
	for c, v := range perms {
		byName[c.String()] = v
	}
	return json.Marshal(byName)
}

func decodePermissions(raw []byte) (map[entity.Capability]bool, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var byName map[string]bool
	if err := json.Unmarshal(raw, &byName); err != nil {
		return nil, fmt.Errorf("custom_permissions: %w", err)
	}
	if len(byName) == 0 {
		return nil, nil
	}
	perms := make(map[entity.Capability]bool, len(byName))
	for name, v := range byName {
		c, ok := entity.ParseCapability(name)
		if !ok {
			return nil, fmt.Errorf("custom_permissions: capability desconocida %q", name)
		}
		perms[c] = v
	}
	return perms, nil
}
