package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a journal entry.
type TransactionType string

const (
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// Transaction is one append-only entry in the monetary movement journal.
type Transaction struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	Type        TransactionType `json:"type" db:"type"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	AccountID   uuid.UUID       `json:"account_id" db:"account_id"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty" db:"category_id"`
	Description string          `json:"description,omitempty" db:"description"`
	OccurredAt  time.Time       `json:"occurred_at" db:"occurred_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Account is the ledger-side view of a money account. Only the balance
// operations live in this module; account CRUD is owned elsewhere.
type Account struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Name      string          `json:"name" db:"name"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
