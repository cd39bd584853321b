package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldisetia/obligation-engine/internal/domain"
)

func TestTransactionJournalAppend(t *testing.T) {
	t.Run("fills id and created timestamp", func(t *testing.T) {
		db, mock := newMockDB(t)
		journal := NewTransactionJournal()

		mock.ExpectExec(`INSERT INTO transactions`).WillReturnResult(sqlmock.NewResult(0, 1))

		entry := &domain.Transaction{
			UserID:      uuid.New(),
			Type:        domain.TransactionTypeExpense,
			Amount:      decimal.RequireFromString("120.50"),
			AccountID:   uuid.New(),
			Description: "Recurring expense: Internet subscription",
			OccurredAt:  time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
		}

		stored, err := journal.Append(context.Background(), db, entry)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, stored.ID)
		assert.False(t, stored.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps a caller-supplied id", func(t *testing.T) {
		db, mock := newMockDB(t)
		journal := NewTransactionJournal()

		mock.ExpectExec(`INSERT INTO transactions`).WillReturnResult(sqlmock.NewResult(0, 1))

		id := uuid.New()
		entry := &domain.Transaction{
			ID:        id,
			UserID:    uuid.New(),
			Type:      domain.TransactionTypeIncome,
			Amount:    decimal.RequireFromString("500"),
			AccountID: uuid.New(),
			CreatedAt: time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
		}

		stored, err := journal.Append(context.Background(), db, entry)

		require.NoError(t, err)
		assert.Equal(t, id, stored.ID)
	})
}
