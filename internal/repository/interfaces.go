package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/aldisetia/obligation-engine/internal/domain"
)

// LoanRepository defines the interface for loan data operations. Every read
// and write is scoped to the owning user; a row owned by someone else behaves
// exactly like a missing row.
type LoanRepository interface {
	// Create persists a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan owned by the user
	GetByID(ctx context.Context, userID, loanID uuid.UUID) (*domain.Loan, error)

	// Update overwrites a loan with an optimistic version check
	Update(ctx context.Context, loan *domain.Loan) error

	// UpdateWithin is Update running on an explicit transaction, used when a
	// payment on an account-linked loan settles atomically with the account
	// adjustment and journal append.
	UpdateWithin(ctx context.Context, q sqlx.ExtContext, loan *domain.Loan) error

	// Delete permanently removes a loan owned by the user
	Delete(ctx context.Context, userID, loanID uuid.UUID) error

	// List retrieves all loans owned by the user
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error)

	// ListByStatus retrieves loans in a given status
	ListByStatus(ctx context.Context, userID uuid.UUID, status domain.LoanStatus) ([]*domain.Loan, error)

	// ListByType retrieves loans in a given direction
	ListByType(ctx context.Context, userID uuid.UUID, loanType domain.LoanType) ([]*domain.Loan, error)

	// ListOverdue retrieves ACTIVE loans past their due date
	ListOverdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Loan, error)

	// ListDueSoon retrieves ACTIVE loans due within the window
	ListDueSoon(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Loan, error)

	// ListReminderDue retrieves loans whose reminder has come due
	ListReminderDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Loan, error)

	// ListAllReminderDue retrieves reminder-enabled loans across all users
	// whose reminder has come due, used by the daily reminder scan.
	ListAllReminderDue(ctx context.Context, now time.Time) ([]*domain.Loan, error)

	// MarkOverdue flips ACTIVE loans past due to OVERDUE across all users,
	// used by the daily sweep job. Returns the number of rows updated.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// RecurringExpenseRepository defines the interface for recurring expense data
// operations, with the same per-user scoping rules as LoanRepository.
type RecurringExpenseRepository interface {
	Create(ctx context.Context, expense *domain.RecurringExpense) error

	GetByID(ctx context.Context, userID, expenseID uuid.UUID) (*domain.RecurringExpense, error)

	// Update overwrites an expense with an optimistic version check
	Update(ctx context.Context, expense *domain.RecurringExpense) error

	// UpdateWithin is Update running on an explicit transaction, used by the
	// settlement flow so the due-date advance commits atomically with the
	// account debit and journal append.
	UpdateWithin(ctx context.Context, q sqlx.ExtContext, expense *domain.RecurringExpense) error

	Delete(ctx context.Context, userID, expenseID uuid.UUID) error

	List(ctx context.Context, userID uuid.UUID) ([]*domain.RecurringExpense, error)

	ListByStatus(ctx context.Context, userID uuid.UUID, status domain.RecurringStatus) ([]*domain.RecurringExpense, error)

	ListByFrequency(ctx context.Context, userID uuid.UUID, frequency domain.Frequency) ([]*domain.RecurringExpense, error)

	// ListDueToday retrieves ACTIVE expenses whose next due date falls on the given day
	ListDueToday(ctx context.Context, userID uuid.UUID, day time.Time) ([]*domain.RecurringExpense, error)

	// ListOverdue retrieves ACTIVE expenses past their next due date
	ListOverdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.RecurringExpense, error)

	// ListDueSoon retrieves ACTIVE expenses due within the window
	ListDueSoon(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.RecurringExpense, error)

	// ListAutoPay retrieves ACTIVE expenses with auto-pay enabled
	ListAutoPay(ctx context.Context, userID uuid.UUID) ([]*domain.RecurringExpense, error)

	// ListReminderDue retrieves ACTIVE expenses across all users that have
	// entered their reminder window, used by the daily reminder scan.
	ListReminderDue(ctx context.Context, now time.Time) ([]*domain.RecurringExpense, error)
}

// AccountLedger exposes the balance operations this module drives on money
// accounts. Methods take an explicit sqlx executor so they can join the
// caller's transaction.
type AccountLedger interface {
	// Debit subtracts amount from the account balance and returns the updated balance
	Debit(ctx context.Context, q sqlx.ExtContext, userID, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)

	// Credit adds amount to the account balance and returns the updated balance
	Credit(ctx context.Context, q sqlx.ExtContext, userID, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
}

// TransactionJournal is the append-only log of monetary movements.
type TransactionJournal interface {
	Append(ctx context.Context, q sqlx.ExtContext, entry *domain.Transaction) (*domain.Transaction, error)
}

// TxRunner runs a function inside a single database transaction, committing
// when it returns nil and rolling back otherwise.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}
