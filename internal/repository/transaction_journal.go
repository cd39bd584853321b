package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aldisetia/obligation-engine/internal/domain"
)

type transactionJournal struct{}

// NewTransactionJournal returns the Postgres-backed append-only journal.
func NewTransactionJournal() TransactionJournal {
	return &transactionJournal{}
}

func (j *transactionJournal) Append(ctx context.Context, q sqlx.ExtContext, entry *domain.Transaction) (*domain.Transaction, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO transactions (id, user_id, type, amount, account_id, category_id, description, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Type,
		entry.Amount,
		entry.AccountID,
		entry.CategoryID,
		entry.Description,
		entry.OccurredAt,
		entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return entry, nil
}
