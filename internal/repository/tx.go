package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type txRunner struct {
	db *sqlx.DB
}

// NewTxRunner wraps the database in a TxRunner.
func NewTxRunner(db *sqlx.DB) TxRunner {
	return &txRunner{db: db}
}

func (r *txRunner) WithinTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}
