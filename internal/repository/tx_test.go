package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxRunnerCommitsOnSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	runner := NewTxRunner(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE accounts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := runner.WithinTx(context.Background(), func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(context.Background(), "UPDATE accounts SET balance = balance + 1")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunnerRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	runner := NewTxRunner(db)
	boom := errors.New("debit failed")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := runner.WithinTx(context.Background(), func(tx *sqlx.Tx) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
