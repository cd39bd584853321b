package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aldisetia/obligation-engine/internal/config"
	"github.com/aldisetia/obligation-engine/internal/domain"
	apperrors "github.com/aldisetia/obligation-engine/pkg/errors"
	"github.com/aldisetia/obligation-engine/tests/mocks"
)

type recurringMocks struct {
	repo    *mocks.MockRecurringExpenseRepository
	ledger  *mocks.MockAccountLedger
	journal *mocks.MockTransactionJournal
	tx      *mocks.MockTxRunner
}

func newRecurringService(t *testing.T) (*RecurringExpenseService, *recurringMocks) {
	t.Helper()

	m := &recurringMocks{
		repo:    &mocks.MockRecurringExpenseRepository{},
		ledger:  &mocks.MockAccountLedger{},
		journal: &mocks.MockTransactionJournal{},
		tx:      &mocks.MockTxRunner{},
	}

	cfg := &config.Config{
		Business: config.BusinessConfig{DueSoonDays: 7},
		Redis:    config.RedisConfig{SummaryTTL: "5m"},
	}

	s := NewRecurringExpenseService(m.repo, m.ledger, m.journal, m.tx, nil, cfg, zerolog.Nop())
	s.now = func() time.Time { return testNow }
	return s, m
}

func activeExpense(userID uuid.UUID) *domain.RecurringExpense {
	return &domain.RecurringExpense{
		ID:                 uuid.New(),
		UserID:             userID,
		Name:               "Internet subscription",
		Amount:             decimal.RequireFromString("120.50"),
		Frequency:          domain.FrequencyMonthly,
		AccountID:          uuid.New(),
		StartDate:          time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		NextDueDate:        time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		Status:             domain.RecurringStatusActive,
		ReminderDaysBefore: 3,
		Version:            2,
	}
}

func TestRecurringServiceCreateExpense(t *testing.T) {
	userID := uuid.New()

	t.Run("derives first due date one period after start", func(t *testing.T) {
		svc, m := newRecurringService(t)
		m.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.RecurringExpense")).Return(nil)

		expense, err := svc.CreateExpense(context.Background(), userID, &domain.CreateRecurringExpenseRequest{
			Name:      "Rent",
			Amount:    decimal.RequireFromString("850.00"),
			Frequency: domain.FrequencyMonthly,
			AccountID: uuid.New(),
			StartDate: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		})

		require.NoError(t, err)
		assert.Equal(t, domain.RecurringStatusActive, expense.Status)
		assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), expense.NextDueDate)
		assert.Equal(t, domain.DefaultReminderDaysBefore, expense.ReminderDaysBefore)
		m.repo.AssertExpectations(t)
	})

	t.Run("explicit next due date wins over derivation", func(t *testing.T) {
		svc, m := newRecurringService(t)
		m.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.RecurringExpense")).Return(nil)

		explicit := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
		expense, err := svc.CreateExpense(context.Background(), userID, &domain.CreateRecurringExpenseRequest{
			Name:        "Gym",
			Amount:      decimal.RequireFromString("35.00"),
			Frequency:   domain.FrequencyMonthly,
			AccountID:   uuid.New(),
			StartDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			NextDueDate: &explicit,
		})

		require.NoError(t, err)
		assert.Equal(t, explicit, expense.NextDueDate)
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		svc, m := newRecurringService(t)

		_, err := svc.CreateExpense(context.Background(), userID, &domain.CreateRecurringExpenseRequest{
			Name:      "Rent",
			Amount:    decimal.Zero,
			Frequency: domain.FrequencyMonthly,
			AccountID: uuid.New(),
			StartDate: testNow,
		})

		assert.True(t, apperrors.IsValidation(err))
		m.repo.AssertNotCalled(t, "Create")
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		svc, _ := newRecurringService(t)

		_, err := svc.CreateExpense(context.Background(), userID, &domain.CreateRecurringExpenseRequest{
			Amount:    decimal.RequireFromString("10"),
			Frequency: domain.FrequencyMonthly,
			AccountID: uuid.New(),
			StartDate: testNow,
		})

		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestRecurringServiceMarkAsPaid(t *testing.T) {
	userID := uuid.New()

	t.Run("settles journal, debit and due-date advance atomically", func(t *testing.T) {
		svc, m := newRecurringService(t)
		expense := activeExpense(userID)

		m.repo.On("GetByID", mock.Anything, userID, expense.ID).Return(expense, nil)
		m.tx.On("WithinTx", mock.Anything, mock.AnythingOfType("func(*sqlx.Tx) error")).Return(nil)
		m.journal.On("Append", mock.Anything, mock.Anything, mock.MatchedBy(func(entry *domain.Transaction) bool {
			return entry.Type == domain.TransactionTypeExpense &&
				entry.Amount.Equal(expense.Amount) &&
				entry.AccountID == expense.AccountID &&
				entry.Description == "Recurring expense: Internet subscription"
		})).Return(nil, nil)
		m.ledger.On("Debit", mock.Anything, mock.Anything, userID, expense.AccountID, expense.Amount).
			Return(decimal.RequireFromString("879.50"), nil)
		m.repo.On("UpdateWithin", mock.Anything, mock.Anything, expense).Return(nil)

		updated, err := svc.MarkAsPaid(context.Background(), userID, expense.ID)

		require.NoError(t, err)
		// Paid on June 15 against a May 31 bill: the cadence advances from the
		// previous due date, not from the payment day.
		assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), updated.NextDueDate)
		require.NotNil(t, updated.LastPaidDate)
		assert.Equal(t, testNow, *updated.LastPaidDate)
		assert.Equal(t, domain.RecurringStatusActive, updated.Status)
		m.repo.AssertExpectations(t)
		m.ledger.AssertExpectations(t)
		m.journal.AssertExpectations(t)
	})

	t.Run("completes once the advanced date passes the end date", func(t *testing.T) {
		svc, m := newRecurringService(t)
		expense := activeExpense(userID)
		end := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
		expense.EndDate = &end

		m.repo.On("GetByID", mock.Anything, userID, expense.ID).Return(expense, nil)
		m.tx.On("WithinTx", mock.Anything, mock.Anything).Return(nil)
		m.journal.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
		m.ledger.On("Debit", mock.Anything, mock.Anything, userID, expense.AccountID, expense.Amount).
			Return(decimal.Zero, nil)
		m.repo.On("UpdateWithin", mock.Anything, mock.Anything, expense).Return(nil)

		updated, err := svc.MarkAsPaid(context.Background(), userID, expense.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.RecurringStatusCompleted, updated.Status)
	})

	t.Run("journal failure aborts before any debit", func(t *testing.T) {
		svc, m := newRecurringService(t)
		expense := activeExpense(userID)
		previousDue := expense.NextDueDate

		m.repo.On("GetByID", mock.Anything, userID, expense.ID).Return(expense, nil)
		m.tx.On("WithinTx", mock.Anything, mock.Anything).Return(nil)
		m.journal.On("Append", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("insert failed"))

		_, err := svc.MarkAsPaid(context.Background(), userID, expense.ID)

		assert.True(t, apperrors.IsSettlementFailure(err))
		assert.Equal(t, previousDue, expense.NextDueDate)
		assert.Nil(t, expense.LastPaidDate)
		m.ledger.AssertNotCalled(t, "Debit")
		m.repo.AssertNotCalled(t, "UpdateWithin")
	})

	t.Run("missing account surfaces as not found, dates untouched", func(t *testing.T) {
		svc, m := newRecurringService(t)
		expense := activeExpense(userID)
		previousDue := expense.NextDueDate

		m.repo.On("GetByID", mock.Anything, userID, expense.ID).Return(expense, nil)
		m.tx.On("WithinTx", mock.Anything, mock.Anything).Return(nil)
		m.journal.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
		m.ledger.On("Debit", mock.Anything, mock.Anything, userID, expense.AccountID, expense.Amount).
			Return(decimal.Zero, apperrors.WrapAccountNotFound(expense.AccountID.String()))

		_, err := svc.MarkAsPaid(context.Background(), userID, expense.ID)

		assert.True(t, apperrors.IsNotFound(err))
		assert.False(t, apperrors.IsSettlementFailure(err))
		assert.Equal(t, previousDue, expense.NextDueDate)
		m.repo.AssertNotCalled(t, "UpdateWithin")
	})

	t.Run("version conflict passes through", func(t *testing.T) {
		svc, m := newRecurringService(t)
		expense := activeExpense(userID)

		m.repo.On("GetByID", mock.Anything, userID, expense.ID).Return(expense, nil)
		m.tx.On("WithinTx", mock.Anything, mock.Anything).Return(nil)
		m.journal.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
		m.ledger.On("Debit", mock.Anything, mock.Anything, userID, expense.AccountID, expense.Amount).
			Return(decimal.Zero, nil)
		m.repo.On("UpdateWithin", mock.Anything, mock.Anything, expense).
			Return(apperrors.WrapVersionConflict("recurring expense", expense.ID.String()))

		_, err := svc.MarkAsPaid(context.Background(), userID, expense.ID)

		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("unknown or foreign expense is not found", func(t *testing.T) {
		svc, m := newRecurringService(t)
		expenseID := uuid.New()

		m.repo.On("GetByID", mock.Anything, userID, expenseID).Return(nil, sql.ErrNoRows)

		_, err := svc.MarkAsPaid(context.Background(), userID, expenseID)

		assert.True(t, apperrors.IsNotFound(err))
		m.tx.AssertNotCalled(t, "WithinTx")
	})
}

func TestRecurringServiceStatusTransitions(t *testing.T) {
	userID := uuid.New()

	t.Run("pause suspends an active expense", func(t *testing.T) {
		svc, m := newRecurringService(t)
		expense := activeExpense(userID)

		m.repo.On("GetByID", mock.Anything, userID, expense.ID).Return(expense, nil)
		m.repo.On("Update", mock.Anything, expense).Return(nil)

		updated, err := svc.Pause(context.Background(), userID, expense.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.RecurringStatusPaused, updated.Status)
	})

	t.Run("pausing a paused expense is a silent no-op", func(t *testing.T) {
		svc, m := newRecurringService(t)
		expense := activeExpense(userID)
		expense.Status = domain.RecurringStatusPaused

		m.repo.On("GetByID", mock.Anything, userID, expense.ID).Return(expense, nil)

		updated, err := svc.Pause(context.Background(), userID, expense.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.RecurringStatusPaused, updated.Status)
		m.repo.AssertNotCalled(t, "Update")
	})

	t.Run("resume reactivates a paused expense", func(t *testing.T) {
		svc, m := newRecurringService(t)
		expense := activeExpense(userID)
		expense.Status = domain.RecurringStatusPaused

		m.repo.On("GetByID", mock.Anything, userID, expense.ID).Return(expense, nil)
		m.repo.On("Update", mock.Anything, expense).Return(nil)

		updated, err := svc.Resume(context.Background(), userID, expense.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.RecurringStatusActive, updated.Status)
	})

	t.Run("cancel stops billing for good", func(t *testing.T) {
		svc, m := newRecurringService(t)
		expense := activeExpense(userID)

		m.repo.On("GetByID", mock.Anything, userID, expense.ID).Return(expense, nil)
		m.repo.On("Update", mock.Anything, expense).Return(nil)

		updated, err := svc.Cancel(context.Background(), userID, expense.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.RecurringStatusCancelled, updated.Status)
	})
}

func TestRecurringServiceUpdateExpense(t *testing.T) {
	userID := uuid.New()

	baseRequest := func(e *domain.RecurringExpense) *domain.UpdateRecurringExpenseRequest {
		return &domain.UpdateRecurringExpenseRequest{
			ID:        e.ID,
			Name:      "Internet subscription",
			Amount:    decimal.RequireFromString("135.00"),
			Frequency: e.Frequency,
			AccountID: e.AccountID,
			StartDate: e.StartDate,
		}
	}

	t.Run("keeps the scheduled cadence when no due date is supplied", func(t *testing.T) {
		svc, m := newRecurringService(t)
		expense := activeExpense(userID)
		scheduled := expense.NextDueDate

		m.repo.On("GetByID", mock.Anything, userID, expense.ID).Return(expense, nil)
		m.repo.On("Update", mock.Anything, expense).Return(nil)

		updated, err := svc.UpdateExpense(context.Background(), userID, baseRequest(expense))

		require.NoError(t, err)
		assert.Equal(t, "135", updated.Amount.String())
		assert.Equal(t, scheduled, updated.NextDueDate)
	})

	t.Run("replaces the due date when one is supplied", func(t *testing.T) {
		svc, m := newRecurringService(t)
		expense := activeExpense(userID)

		m.repo.On("GetByID", mock.Anything, userID, expense.ID).Return(expense, nil)
		m.repo.On("Update", mock.Anything, expense).Return(nil)

		req := baseRequest(expense)
		moved := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
		req.NextDueDate = &moved

		updated, err := svc.UpdateExpense(context.Background(), userID, req)

		require.NoError(t, err)
		assert.Equal(t, moved, updated.NextDueDate)
	})
}

func TestRecurringServiceMonthlyTotal(t *testing.T) {
	userID := uuid.New()
	svc, m := newRecurringService(t)

	expenses := []*domain.RecurringExpense{
		{Amount: decimal.RequireFromString("120.50"), Status: domain.RecurringStatusActive},
		{Amount: decimal.RequireFromString("35.00"), Status: domain.RecurringStatusActive},
		{Amount: decimal.RequireFromString("99.99"), Status: domain.RecurringStatusPaused},
	}
	m.repo.On("ListByFrequency", mock.Anything, userID, domain.FrequencyMonthly).Return(expenses, nil)

	total, err := svc.MonthlyTotal(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, "155.5", total.String())
}

func TestRecurringServiceSummary(t *testing.T) {
	userID := uuid.New()
	svc, m := newRecurringService(t)

	overdue := activeExpense(userID)
	overdue.NextDueDate = testNow.AddDate(0, 0, -3)

	dueToday := activeExpense(userID)
	dueToday.NextDueDate = testNow

	paused := activeExpense(userID)
	paused.Status = domain.RecurringStatusPaused

	yearly := activeExpense(userID)
	yearly.Frequency = domain.FrequencyYearly
	yearly.NextDueDate = testNow.AddDate(0, 3, 0)

	m.repo.On("List", mock.Anything, userID).
		Return([]*domain.RecurringExpense{overdue, dueToday, paused, yearly}, nil)

	summary, err := svc.Summary(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.ActiveCount)
	assert.Equal(t, 1, summary.OverdueCount)
	assert.Equal(t, 1, summary.DueTodayCount)
	assert.Equal(t, "241", summary.MonthlyTotal.String())
}

func TestRecurringServiceScanReminders(t *testing.T) {
	svc, m := newRecurringService(t)

	due := []*domain.RecurringExpense{
		activeExpense(uuid.New()),
		activeExpense(uuid.New()),
	}
	m.repo.On("ListReminderDue", mock.Anything, testNow).Return(due, nil)

	count, err := svc.ScanReminders(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRecurringServiceListValidation(t *testing.T) {
	svc, _ := newRecurringService(t)

	_, err := svc.ListExpensesByStatus(context.Background(), uuid.New(), domain.RecurringStatus("NOPE"))
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.ListExpensesByFrequency(context.Background(), uuid.New(), domain.Frequency("FORTNIGHTLY"))
	assert.True(t, apperrors.IsValidation(err))
}

func TestRecurringServiceDelete(t *testing.T) {
	userID := uuid.New()
	expenseID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc, m := newRecurringService(t)
		m.repo.On("Delete", mock.Anything, userID, expenseID).Return(nil)

		require.NoError(t, svc.DeleteExpense(context.Background(), userID, expenseID))
	})

	t.Run("not found passes through", func(t *testing.T) {
		svc, m := newRecurringService(t)
		m.repo.On("Delete", mock.Anything, userID, expenseID).
			Return(apperrors.WrapExpenseNotFound(expenseID.String()))

		err := svc.DeleteExpense(context.Background(), userID, expenseID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
