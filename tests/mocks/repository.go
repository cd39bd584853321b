package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/aldisetia/obligation-engine/internal/domain"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, userID, loanID uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, userID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) UpdateWithin(ctx context.Context, q sqlx.ExtContext, loan *domain.Loan) error {
	args := m.Called(ctx, q, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) Delete(ctx context.Context, userID, loanID uuid.UUID) error {
	args := m.Called(ctx, userID, loanID)
	return args.Error(0)
}

func (m *MockLoanRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByStatus(ctx context.Context, userID uuid.UUID, status domain.LoanStatus) ([]*domain.Loan, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByType(ctx context.Context, userID uuid.UUID, loanType domain.LoanType) ([]*domain.Loan, error) {
	args := m.Called(ctx, userID, loanType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListOverdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Loan, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListDueSoon(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Loan, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListReminderDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Loan, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListAllReminderDue(ctx context.Context, now time.Time) ([]*domain.Loan, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockRecurringExpenseRepository struct {
	mock.Mock
}

func (m *MockRecurringExpenseRepository) Create(ctx context.Context, expense *domain.RecurringExpense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockRecurringExpenseRepository) GetByID(ctx context.Context, userID, expenseID uuid.UUID) (*domain.RecurringExpense, error) {
	args := m.Called(ctx, userID, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringExpense), args.Error(1)
}

func (m *MockRecurringExpenseRepository) Update(ctx context.Context, expense *domain.RecurringExpense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockRecurringExpenseRepository) UpdateWithin(ctx context.Context, q sqlx.ExtContext, expense *domain.RecurringExpense) error {
	args := m.Called(ctx, q, expense)
	return args.Error(0)
}

func (m *MockRecurringExpenseRepository) Delete(ctx context.Context, userID, expenseID uuid.UUID) error {
	args := m.Called(ctx, userID, expenseID)
	return args.Error(0)
}

func (m *MockRecurringExpenseRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.RecurringExpense, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RecurringExpense), args.Error(1)
}

func (m *MockRecurringExpenseRepository) ListByStatus(ctx context.Context, userID uuid.UUID, status domain.RecurringStatus) ([]*domain.RecurringExpense, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RecurringExpense), args.Error(1)
}

func (m *MockRecurringExpenseRepository) ListByFrequency(ctx context.Context, userID uuid.UUID, frequency domain.Frequency) ([]*domain.RecurringExpense, error) {
	args := m.Called(ctx, userID, frequency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RecurringExpense), args.Error(1)
}

func (m *MockRecurringExpenseRepository) ListDueToday(ctx context.Context, userID uuid.UUID, day time.Time) ([]*domain.RecurringExpense, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RecurringExpense), args.Error(1)
}

func (m *MockRecurringExpenseRepository) ListOverdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.RecurringExpense, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RecurringExpense), args.Error(1)
}

func (m *MockRecurringExpenseRepository) ListDueSoon(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.RecurringExpense, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RecurringExpense), args.Error(1)
}

func (m *MockRecurringExpenseRepository) ListAutoPay(ctx context.Context, userID uuid.UUID) ([]*domain.RecurringExpense, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RecurringExpense), args.Error(1)
}

func (m *MockRecurringExpenseRepository) ListReminderDue(ctx context.Context, now time.Time) ([]*domain.RecurringExpense, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RecurringExpense), args.Error(1)
}

type MockAccountLedger struct {
	mock.Mock
}

func (m *MockAccountLedger) Debit(ctx context.Context, q sqlx.ExtContext, userID, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, q, userID, accountID, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountLedger) Credit(ctx context.Context, q sqlx.ExtContext, userID, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, q, userID, accountID, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockTransactionJournal struct {
	mock.Mock
}

func (m *MockTransactionJournal) Append(ctx context.Context, q sqlx.ExtContext, entry *domain.Transaction) (*domain.Transaction, error) {
	args := m.Called(ctx, q, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// MockTxRunner executes the function with a nil transaction when its
// expectation returns nil, mirroring commit/rollback semantics closely enough
// for service tests.
type MockTxRunner struct {
	mock.Mock
}

func (m *MockTxRunner) WithinTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(nil)
}
