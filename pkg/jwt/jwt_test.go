package jwt_test

import (
	"testing"
	"time"

	"github.com/jhoicas/Inventario-ledger/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secreto-de-pruebas"

func newSigner(t *testing.T, issuer string) *jwt.Signer {
	t.Helper()
	s, err := jwt.NewSigner(testSecret, issuer, 5*time.Minute)
	require.NoError(t, err)
	return s
}

func TestIssueParse_IdaYVuelta(t *testing.T) {
	s := newSigner(t, "inventario-ledger")
	token, exp, err := s.Issue("u-1", "ana")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, 5*time.Second)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID())
	assert.Equal(t, "ana", claims.Username)
	assert.NotEmpty(t, claims.ID, "cada token lleva jti")
}

func TestIssue_TokensDistintosPorEmision(t *testing.T) {
	s := newSigner(t, "x")
	a, _, err := s.Issue("u-1", "ana")
	require.NoError(t, err)
	b, _, err := s.Issue("u-1", "ana")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, _, err := newSigner(t, "x").Issue("u-1", "ana")
	require.NoError(t, err)

	other, err := jwt.NewSigner("otro-secreto", "x", time.Minute)
	require.NoError(t, err)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestParse_Expirado(t *testing.T) {
	s := newSigner(t, "x")
	past := s.WithClock(func() time.Time { return time.Now().Add(-time.Hour) })
	token, _, err := past.Issue("u-1", "ana")
	require.NoError(t, err)

	_, err = s.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestParse_OtroEmisor(t *testing.T) {
	token, _, err := newSigner(t, "otro-sistema").Issue("u-1", "ana")
	require.NoError(t, err)

	_, err = newSigner(t, "inventario-ledger").Parse(token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestNewSigner_Validaciones(t *testing.T) {
	_, err := jwt.NewSigner("", "x", time.Minute)
	assert.Error(t, err)

	s, err := jwt.NewSigner(testSecret, "x", 0)
	require.NoError(t, err)
	_, exp, err := s.Issue("u-1", "ana")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(jwt.DefaultTTL), exp, 5*time.Second)

	_, _, err = s.Issue("", "ana")
	assert.Error(t, err)
}
