package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFrequencyAdvance(t *testing.T) {
	tests := []struct {
		name      string
		frequency Frequency
		from      time.Time
		expected  time.Time
	}{
		{"daily", FrequencyDaily, date(2024, 3, 15), date(2024, 3, 16)},
		{"weekly", FrequencyWeekly, date(2024, 3, 15), date(2024, 3, 22)},
		{"monthly", FrequencyMonthly, date(2024, 1, 1), date(2024, 2, 1)},
		{"monthly from Jan 31 clamps to leap Feb 29", FrequencyMonthly, date(2024, 1, 31), date(2024, 2, 29)},
		{"monthly from Jan 31 clamps to Feb 28", FrequencyMonthly, date(2023, 1, 31), date(2023, 2, 28)},
		{"monthly keeps day when it fits", FrequencyMonthly, date(2024, 4, 30), date(2024, 5, 30)},
		{"quarterly", FrequencyQuarterly, date(2024, 1, 15), date(2024, 4, 15)},
		{"quarterly from Nov 30 over year boundary", FrequencyQuarterly, date(2023, 11, 30), date(2024, 2, 29)},
		{"yearly", FrequencyYearly, date(2024, 5, 10), date(2025, 5, 10)},
		{"yearly from leap Feb 29 clamps to Feb 28", FrequencyYearly, date(2024, 2, 29), date(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.frequency.Advance(tt.from))
		})
	}
}

func TestNewRecurringExpense(t *testing.T) {
	userID := uuid.New()
	now := date(2024, 1, 1)

	t.Run("first due date is one period after start", func(t *testing.T) {
		expense := NewRecurringExpense(userID, &CreateRecurringExpenseRequest{
			Name:      "Netflix",
			Amount:    decimal.RequireFromString("15.99"),
			Frequency: FrequencyMonthly,
			AccountID: uuid.New(),
			StartDate: date(2024, 1, 1),
		}, now)

		assert.Equal(t, date(2024, 2, 1), expense.NextDueDate)
		assert.Equal(t, RecurringStatusActive, expense.Status)
		assert.Equal(t, DefaultReminderDaysBefore, expense.ReminderDaysBefore)
		assert.EqualValues(t, 1, expense.Version)
	})

	t.Run("explicit next due date wins", func(t *testing.T) {
		explicit := date(2024, 1, 20)
		expense := NewRecurringExpense(userID, &CreateRecurringExpenseRequest{
			Name:        "Rent",
			Amount:      decimal.RequireFromString("900.00"),
			Frequency:   FrequencyMonthly,
			AccountID:   uuid.New(),
			StartDate:   date(2024, 1, 1),
			NextDueDate: &explicit,
		}, now)

		assert.Equal(t, explicit, expense.NextDueDate)
	})

	t.Run("explicit reminder window wins", func(t *testing.T) {
		days := 10
		expense := NewRecurringExpense(userID, &CreateRecurringExpenseRequest{
			Name:               "Insurance",
			Amount:             decimal.RequireFromString("120.00"),
			Frequency:          FrequencyYearly,
			AccountID:          uuid.New(),
			StartDate:          date(2024, 1, 1),
			ReminderDaysBefore: &days,
		}, now)

		assert.Equal(t, 10, expense.ReminderDaysBefore)
	})
}

func TestRecurringExpenseSettle(t *testing.T) {
	now := date(2024, 2, 10)

	t.Run("cadence advances from previous due date, not from now", func(t *testing.T) {
		expense := &RecurringExpense{
			Frequency:   FrequencyMonthly,
			NextDueDate: date(2024, 2, 1),
			Status:      RecurringStatusActive,
		}

		// Paid nine days late; the next bill still lands on the 1st.
		expense.Settle(now)

		assert.Equal(t, date(2024, 3, 1), expense.NextDueDate)
		require.NotNil(t, expense.LastPaidDate)
		assert.Equal(t, now, *expense.LastPaidDate)
		assert.Equal(t, RecurringStatusActive, expense.Status)
	})

	t.Run("advancing past the end date completes the expense", func(t *testing.T) {
		end := date(2024, 2, 15)
		expense := &RecurringExpense{
			Frequency:   FrequencyMonthly,
			NextDueDate: date(2024, 2, 1),
			EndDate:     &end,
			Status:      RecurringStatusActive,
		}

		expense.Settle(now)

		assert.Equal(t, RecurringStatusCompleted, expense.Status)
	})
}

func TestRecurringExpensePredicates(t *testing.T) {
	now := date(2024, 2, 10)

	t.Run("due today", func(t *testing.T) {
		expense := &RecurringExpense{NextDueDate: date(2024, 2, 10), Status: RecurringStatusActive}
		assert.True(t, expense.IsDueToday(now))
		assert.False(t, expense.IsOverdue(now))
	})

	t.Run("overdue only while active", func(t *testing.T) {
		expense := &RecurringExpense{NextDueDate: date(2024, 2, 1), Status: RecurringStatusActive}
		assert.True(t, expense.IsOverdue(now))

		expense.Status = RecurringStatusPaused
		assert.False(t, expense.IsOverdue(now))
	})

	t.Run("due soon inside reminder window", func(t *testing.T) {
		expense := &RecurringExpense{
			NextDueDate:        date(2024, 2, 12),
			ReminderDaysBefore: 3,
			Status:             RecurringStatusActive,
		}
		assert.True(t, expense.IsDueSoon(now))

		expense.NextDueDate = date(2024, 2, 20)
		assert.False(t, expense.IsDueSoon(now))
	})

	t.Run("overdue is not due soon", func(t *testing.T) {
		expense := &RecurringExpense{
			NextDueDate:        date(2024, 2, 5),
			ReminderDaysBefore: 3,
			Status:             RecurringStatusActive,
		}
		assert.False(t, expense.IsDueSoon(now))
	})
}
