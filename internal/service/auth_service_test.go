package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idp-tool/internal/auth"
	"idp-tool/internal/config"
	"idp-tool/internal/repository"
)

type stubSender struct {
	to   string
	link string
	err  error
}

func (s *stubSender) SendMagicLink(to, link string) error {
	s.to = to
	s.link = link
	return s.err
}

func newAuthService(t *testing.T, sender *stubSender) (*AuthService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	authSvc := auth.NewService(&config.JWTConfig{Secret: "test", Expiration: time.Hour})

	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewLoginTokenRepository(db),
		authSvc,
		nil,
		sender,
		15*time.Minute,
		"http://localhost:3000/login/verify",
	)
	return svc, mock
}

func TestRequestMagicLink(t *testing.T) {
	sender := &stubSender{}
	svc, mock := newAuthService(t, sender)
	userID := uuid.New()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "user@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "created_at", "last_login_at"}).
			AddRow(userID, "user@example.com", time.Now(), nil))

	mock.ExpectQuery(`INSERT INTO login_tokens`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	err := svc.RequestMagicLink("  User@Example.COM ")
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", sender.to)
	assert.True(t, strings.HasPrefix(sender.link, "http://localhost:3000/login/verify?token="))
	assert.Contains(t, sender.link, ".")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestMagicLinkInvalidEmail(t *testing.T) {
	svc, _ := newAuthService(t, &stubSender{})

	assert.ErrorIs(t, svc.RequestMagicLink(""), ErrInvalidEmail)
	assert.ErrorIs(t, svc.RequestMagicLink("not-an-email"), ErrInvalidEmail)
}

func TestRequestMagicLinkSendFailureIsNotSurfaced(t *testing.T) {
	sender := &stubSender{err: errors.New("smtp down")}
	svc, mock := newAuthService(t, sender)
	userID := uuid.New()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "user@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "created_at", "last_login_at"}).
			AddRow(userID, "user@example.com", time.Now(), nil))

	mock.ExpectQuery(`INSERT INTO login_tokens`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	// The caller still sees success so addresses cannot be probed
	assert.NoError(t, svc.RequestMagicLink("user@example.com"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestMagicLinkStoreFailureIsNotSurfaced(t *testing.T) {
	sender := &stubSender{}
	svc, mock := newAuthService(t, sender)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "user@example.com").
		WillReturnError(errors.New("connection refused"))

	assert.NoError(t, svc.RequestMagicLink("user@example.com"))
	// No link must go out when the token was never stored
	assert.Empty(t, sender.link)
}

func TestVerifyMagicLink(t *testing.T) {
	sender := &stubSender{}
	svc, mock := newAuthService(t, sender)

	userID := uuid.New()
	tokenID := uuid.New()
	secret := "plain-secret"
	hash, err := auth.HashLoginSecret(secret)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM login_tokens`).
		WithArgs(tokenID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "secret_hash", "expires_at", "used_at", "created_at"}).
			AddRow(tokenID, userID, hash, time.Now().Add(time.Minute), nil, time.Now()))

	mock.ExpectExec(`UPDATE login_tokens`).
		WithArgs(tokenID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`FROM users`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "created_at", "last_login_at"}).
			AddRow(userID, "user@example.com", time.Now(), nil))

	mock.ExpectExec(`UPDATE users SET last_login_at`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	jwt, user, err := svc.VerifyMagicLink(tokenID.String() + "." + secret)
	require.NoError(t, err)
	assert.NotEmpty(t, jwt)
	assert.Equal(t, "user@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyMagicLinkWrongSecret(t *testing.T) {
	svc, mock := newAuthService(t, &stubSender{})

	userID := uuid.New()
	tokenID := uuid.New()
	hash, err := auth.HashLoginSecret("the-real-secret")
	require.NoError(t, err)

	mock.ExpectQuery(`FROM login_tokens`).
		WithArgs(tokenID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "secret_hash", "expires_at", "used_at", "created_at"}).
			AddRow(tokenID, userID, hash, time.Now().Add(time.Minute), nil, time.Now()))

	_, _, err = svc.VerifyMagicLink(tokenID.String() + ".guessed")
	assert.ErrorIs(t, err, ErrInvalidLoginToken)
}

func TestVerifyMagicLinkExpired(t *testing.T) {
	svc, mock := newAuthService(t, &stubSender{})

	userID := uuid.New()
	tokenID := uuid.New()
	hash, err := auth.HashLoginSecret("secret")
	require.NoError(t, err)

	mock.ExpectQuery(`FROM login_tokens`).
		WithArgs(tokenID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "secret_hash", "expires_at", "used_at", "created_at"}).
			AddRow(tokenID, userID, hash, time.Now().Add(-time.Minute), nil, time.Now()))

	_, _, err = svc.VerifyMagicLink(tokenID.String() + ".secret")
	assert.ErrorIs(t, err, ErrInvalidLoginToken)
}

func TestVerifyMagicLinkAlreadyUsed(t *testing.T) {
	svc, mock := newAuthService(t, &stubSender{})

	userID := uuid.New()
	tokenID := uuid.New()
	hash, err := auth.HashLoginSecret("secret")
	require.NoError(t, err)
	used := time.Now().Add(-time.Minute)

	mock.ExpectQuery(`FROM login_tokens`).
		WithArgs(tokenID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "secret_hash", "expires_at", "used_at", "created_at"}).
			AddRow(tokenID, userID, hash, time.Now().Add(time.Minute), used, time.Now()))

	_, _, err = svc.VerifyMagicLink(tokenID.String() + ".secret")
	assert.ErrorIs(t, err, ErrInvalidLoginToken)
}

func TestVerifyMagicLinkMalformed(t *testing.T) {
	svc, _ := newAuthService(t, &stubSender{})

	_, _, err := svc.VerifyMagicLink("no-separator")
	assert.ErrorIs(t, err, ErrInvalidLoginToken)

	_, _, err = svc.VerifyMagicLink("not-a-uuid.secret")
	assert.ErrorIs(t, err, ErrInvalidLoginToken)
}
