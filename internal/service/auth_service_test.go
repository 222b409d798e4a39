package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-api/config"
	"retail-api/internal/apperr"
	"retail-api/internal/auth"
	"retail-api/internal/store"
)

func newAuthFixture(t *testing.T) (*AuthService, *auth.Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens := auth.NewService(config.AuthConfig{
		SecretKey:      "test-secret",
		AccessTokenTTL: 30 * time.Minute,
	})
	st := store.NewStoreWithDB(sqlx.NewDb(db, "sqlmock"))

	return NewAuthService(st, tokens), tokens, mock
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), &RegisterRequest{Username: "ana"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
}

func TestRegisterDuplicateUser(t *testing.T) {
	svc, _, mock := newAuthFixture(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT EXISTS(SELECT 1 FROM users WHERE (username = $1 OR email = $2) AND deleted = FALSE)")).
		WithArgs("ana", "ana@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "ana", Email: "ana@x.com", Password: "pw123",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, tokens, mock := newAuthFixture(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT EXISTS(SELECT 1 FROM users WHERE (username = $1 OR email = $2) AND deleted = FALSE)")).
		WithArgs("ana", "ana@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO users (username, senha, email, admin)")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	user, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "ana", Email: "ana@x.com", Password: "pw123",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), user.ID)
	assert.NotEqual(t, "pw123", user.Senha)
	assert.True(t, tokens.VerifyPassword("pw123", user.Senha))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, mock := newAuthFixture(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM users WHERE username = $1 AND deleted = FALSE")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Login(context.Background(), &LoginRequest{Username: "ghost", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestLoginWrongPassword(t *testing.T) {
	svc, tokens, mock := newAuthFixture(t)

	hash, err := tokens.HashPassword("right")
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM users WHERE username = $1 AND deleted = FALSE")).
		WithArgs("ana").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "senha", "email"}).
			AddRow(int64(1), "ana", hash, "ana@x.com"))

	_, err = svc.Login(context.Background(), &LoginRequest{Username: "ana", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, tokens, mock := newAuthFixture(t)

	hash, err := tokens.HashPassword("pw123")
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM users WHERE username = $1 AND deleted = FALSE")).
		WithArgs("ana").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "senha", "email"}).
			AddRow(int64(1), "ana", hash, "ana@x.com"))

	resp, err := svc.Login(context.Background(), &LoginRequest{Username: "ana", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)

	subject, err := tokens.VerifyToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ana", subject)
}

func TestRefreshInvalidToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Refresh(context.Background(), "garbage")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestRefreshDeletedUser(t *testing.T) {
	svc, tokens, mock := newAuthFixture(t)

	token, err := tokens.IssueToken("ana")
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM users WHERE username = $1 AND deleted = FALSE")).
		WithArgs("ana").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = svc.Refresh(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
