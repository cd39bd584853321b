package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	apperrors "github.com/aldisetia/obligation-engine/pkg/errors"
)

type accountLedger struct{}

// NewAccountLedger returns the Postgres-backed ledger. The executor is passed
// per call so a debit can share the settlement transaction.
func NewAccountLedger() AccountLedger {
	return &accountLedger{}
}

func (l *accountLedger) Debit(ctx context.Context, q sqlx.ExtContext, userID, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	return l.adjust(ctx, q, userID, accountID, amount.Neg())
}

func (l *accountLedger) Credit(ctx context.Context, q sqlx.ExtContext, userID, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	return l.adjust(ctx, q, userID, accountID, amount)
}

func (l *accountLedger) adjust(ctx context.Context, q sqlx.ExtContext, userID, accountID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $3, updated_at = $4
		WHERE id = $1 AND user_id = $2
		RETURNING balance
	`

	var balance decimal.Decimal
	err := sqlx.GetContext(ctx, q, &balance, query, accountID, userID, delta, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, apperrors.WrapAccountNotFound(accountID.String())
		}
		return decimal.Zero, err
	}

	return balance, nil
}
