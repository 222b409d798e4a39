package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-api/config"
	"retail-api/internal/apperr"
)

func newTestService() *Service {
	return NewService(config.AuthConfig{
		SecretKey:      "test-secret",
		AccessTokenTTL: 30 * time.Minute,
	})
}

func TestHashAndVerifyPassword(t *testing.T) {
	svc := newTestService()

	hash, err := svc.HashPassword("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", hash)

	assert.True(t, svc.VerifyPassword("pw123", hash))
	assert.False(t, svc.VerifyPassword("wrong", hash))
}

func TestHashPasswordSalted(t *testing.T) {
	svc := newTestService()

	h1, err := svc.HashPassword("pw123")
	require.NoError(t, err)
	h2, err := svc.HashPassword("pw123")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestIssueAndVerifyToken(t *testing.T) {
	svc := newTestService()

	token, err := svc.IssueToken("ana")
	require.NoError(t, err)

	subject, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ana", subject)
}

func TestVerifyTokenExpired(t *testing.T) {
	svc := newTestService()

	token, err := svc.IssueTokenTTL("ana", -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	other := NewService(config.AuthConfig{
		SecretKey:      "another-secret",
		AccessTokenTTL: 30 * time.Minute,
	})

	token, err := other.IssueToken("ana")
	require.NoError(t, err)

	_, err = newTestService().VerifyToken(token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestVerifyTokenMissingSubject(t *testing.T) {
	svc := newTestService()

	token, err := svc.IssueToken("")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := newTestService().VerifyToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
