package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenRepo(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTokenRepo(db), mock
}

func TestStoreRefresh(t *testing.T) {
	repo, mock := newTokenRepo(t)

	exp := time.Now().UTC().Add(24 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`)).
		WithArgs(uint64(7), "hash-a", exp).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.StoreRefresh(context.Background(), 7, "hash-a", exp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateRefresh(t *testing.T) {
	query := regexp.QuoteMeta(
		`SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1`)
	cols := []string{"user_id", "expires_at", "revoked_at"}

	t.Run("active token", func(t *testing.T) {
		repo, mock := newTokenRepo(t)
		mock.ExpectQuery(query).WithArgs("hash-a").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(7, time.Now().UTC().Add(time.Hour), nil))

		uid, err := repo.ValidateRefresh(context.Background(), "hash-a")
		require.NoError(t, err)
		assert.Equal(t, uint64(7), uid)
	})

	t.Run("revoked token looks unknown", func(t *testing.T) {
		repo, mock := newTokenRepo(t)
		mock.ExpectQuery(query).WithArgs("hash-b").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(7, time.Now().UTC().Add(time.Hour), time.Now().UTC()))

		_, err := repo.ValidateRefresh(context.Background(), "hash-b")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("expired token looks unknown", func(t *testing.T) {
		repo, mock := newTokenRepo(t)
		mock.ExpectQuery(query).WithArgs("hash-c").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(7, time.Now().UTC().Add(-time.Minute), nil))

		_, err := repo.ValidateRefresh(context.Background(), "hash-c")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestRevokeByHash(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE token_hash = ? AND revoked_at IS NULL`)).
		WithArgs("hash-a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RevokeByHash(context.Background(), "hash-a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
