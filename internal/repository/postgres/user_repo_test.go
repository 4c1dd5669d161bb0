package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/seawolf-games/battleship-server/internal/errs"
	"github.com/seawolf-games/battleship-server/internal/model"
)

func TestUserRepo_Create_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	u := &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "ahab",
		Email:    "ahab@pequod.sea",
		PwdHash:  []byte("hash"),
	}

	mock.ExpectExec(`INSERT INTO users \(id, username, email, pwd_hash\)`).
		WithArgs(u.ID, u.Username, u.Email, u.PwdHash).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, r.Create(context.Background(), u))
}

func TestUserRepo_Create_DuplicateUsername(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	u := &model.User{ID: uuid.Must(uuid.NewV4()), Username: "ahab", Email: "a@b.c", PwdHash: []byte("h")}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Username, u.Email, u.PwdHash).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	require.ErrorIs(t, r.Create(context.Background(), u), errs.ErrAlreadyExists)
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	id := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, username, email, pwd_hash, created_at FROM users WHERE username=\$1`).
		WithArgs("ahab").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "pwd_hash", "created_at"}).
			AddRow(id, "ahab", "ahab@pequod.sea", []byte("hash"), ts))

	u, err := r.GetByUsername(context.Background(), "ahab")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Equal(t, "ahab", u.Username)

	mock.ExpectQuery(`SELECT id, username, email, pwd_hash, created_at FROM users WHERE username=\$1`).
		WithArgs("nemo").
		WillReturnError(pgx.ErrNoRows)

	_, err = r.GetByUsername(context.Background(), "nemo")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_UpdatePassword(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE users SET pwd_hash = \$2 WHERE id = \$1`).
		WithArgs(id, []byte("new")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.UpdatePassword(context.Background(), id, []byte("new")))

	mock.ExpectExec(`UPDATE users SET pwd_hash = \$2 WHERE id = \$1`).
		WithArgs(id, []byte("new")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.UpdatePassword(context.Background(), id, []byte("new")), errs.ErrNotFound)
}

func TestUserRepo_Delete(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(context.Background(), id))

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(context.Background(), id), errs.ErrNotFound)
}

func TestClassify_TransientFaults(t *testing.T) {
	require.NoError(t, classify(nil))

	conn := &pgconn.PgError{Code: "08006"}
	require.ErrorIs(t, classify(conn), errs.ErrStorageUnavailable)

	shutdown := &pgconn.PgError{Code: "57P01"}
	require.ErrorIs(t, classify(shutdown), errs.ErrStorageUnavailable)

	unique := &pgconn.PgError{Code: "23505"}
	require.NotErrorIs(t, classify(unique), errs.ErrStorageUnavailable)

	require.ErrorIs(t, classify(context.DeadlineExceeded), errs.ErrStorageUnavailable)

	plain := errors.New("boom")
	require.Equal(t, plain, classify(plain))
}
