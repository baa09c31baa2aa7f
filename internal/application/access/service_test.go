package access_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/application/access"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileEvent struct {
	before, after *entity.AccessProfile
}

type hookSpy struct{ events []profileEvent }

func (h *hookSpy) ProfileChanged(_ context.Context, _ *entity.User, before, after *entity.AccessProfile, _ *entity.RequestContext) {
	h.events = append(h.events, profileEvent{before, after})
}

type fixture struct {
	svc   *access.Service
	hooks *hookSpy
	legal *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	profiles := memory.NewAccessProfileRepository(store)
	for _, u := range []string{"legal", "oper", "nuevo"} {
		require.NoError(t, users.Create(ctx, &entity.User{ID: u, Username: u, Status: entity.UserStatusActive}))
	}
	require.NoError(t, profiles.Upsert(ctx, &entity.AccessProfile{UserID: "legal", Tier: entity.TierLegalRepresentative, Active: true}))
	require.NoError(t, profiles.Upsert(ctx, &entity.AccessProfile{UserID: "oper", Tier: entity.TierOperator, Active: true}))
	hooks := &hookSpy{}
	return &fixture{
		svc:   access.NewService(profiles, users, hooks, nil),
		hooks: hooks,
		legal: &entity.User{ID: "legal", Username: "legal"},
	}
}

func TestSaveProfile_AutorizadoPorRepresentanteLegal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved, err := f.svc.SaveProfile(ctx, f.legal, &entity.AccessProfile{
		UserID: "nuevo", Tier: entity.TierDelegateRepresentative, Active: true, AuthorizedBy: "legal",
	}, nil)
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero())
	require.Len(t, f.hooks.events, 1)
	assert.Nil(t, f.hooks.events[0].before)

	again, err := f.svc.SaveProfile(ctx, f.legal, &entity.AccessProfile{
		UserID: "nuevo", Tier: entity.TierOperator, Active: true, AuthorizedBy: "legal",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, saved.CreatedAt, again.CreatedAt, "created_at se conserva")
	require.Len(t, f.hooks.events, 2)
	assert.Equal(t, entity.TierDelegateRepresentative, f.hooks.events[1].before.Tier)
}

func TestSaveProfile_AutorizadorNoLegalSeRechaza(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SaveProfile(context.Background(), f.legal, &entity.AccessProfile{
		UserID: "nuevo", Tier: entity.TierOperator, Active: true, AuthorizedBy: "oper",
	}, nil)
	var grantErr *domain.UnauthorizedGrantError
	require.ErrorAs(t, err, &grantErr)
	assert.Equal(t, "oper", grantErr.AuthorizedBy)
	assert.Empty(t, f.hooks.events, "sin escritura no hay auditoría")

	p, err := f.svc.Profile(context.Background(), "nuevo")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSaveProfile_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveProfile(ctx, f.legal, &entity.AccessProfile{UserID: "fantasma", Tier: entity.TierOperator}, nil)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.svc.SaveProfile(ctx, f.legal, &entity.AccessProfile{UserID: "nuevo", Tier: entity.NumTiers}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.SaveProfile(ctx, f.legal, &entity.AccessProfile{
		UserID: "nuevo", Tier: entity.TierOperator,
		CustomPermissions: map[entity.Capability]bool{entity.NumCapabilities: true},
	}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// authorized_by vacío es válido
	_, err = f.svc.SaveProfile(ctx, f.legal, &entity.AccessProfile{UserID: "nuevo", Tier: entity.TierOperator, Active: true}, nil)
	assert.NoError(t, err)
}

func TestRequire_MensajeNombraLaCapability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NoError(t, f.svc.Require(ctx, "oper", entity.CapViewReports))
	err := f.svc.Require(ctx, "oper", entity.CapDeleteRecords)
	require.ErrorIs(t, err, domain.ErrCapabilityDenied)
	assert.Contains(t, err.Error(), "delete_records")

	assert.Error(t, f.svc.Require(ctx, "sin-perfil", entity.CapViewReports))
	assert.Error(t, f.svc.Require(ctx, "", entity.CapViewReports))
}

func TestRequireTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.NoError(t, f.svc.RequireTier(ctx, "legal", entity.TierLegalRepresentative))

	err := f.svc.RequireTier(ctx, "oper", entity.TierLegalRepresentative)
	var denied *domain.CapabilityDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "LEGAL_REPRESENTATIVE", denied.RequiredTier)
	assert.Error(t, f.svc.RequireTier(ctx, "nadie", entity.TierOperator))
}

func TestIsActive_PerfilVencido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	yesterday := time.Now().AddDate(0, 0, -1)
	_, err := f.svc.SaveProfile(ctx, f.legal, &entity.AccessProfile{
		UserID: "nuevo", Tier: entity.TierOperator, Active: true, ExpiresOn: &yesterday,
	}, nil)
	require.NoError(t, err)

	assert.False(t, f.svc.IsActive(ctx, "nuevo"))
	assert.False(t, f.svc.HasCapability(ctx, "nuevo", entity.CapViewReports))
	assert.True(t, f.svc.IsActive(ctx, "oper"))

	tier, ok := f.svc.TierOf(ctx, "oper")
	assert.True(t, ok)
	assert.Equal(t, entity.TierOperator, tier)
}
