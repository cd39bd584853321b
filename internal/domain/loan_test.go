package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nullDecimal(s string) decimal.NullDecimal {
	d, _ := decimal.NewFromString(s)
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func TestNewLoan(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		req           *CreateLoanRequest
		expectedTotal string
	}{
		{
			name: "simple interest applied once",
			req: &CreateLoanRequest{
				CounterpartyName: "Budi",
				Type:             LoanTypeLent,
				PrincipalAmount:  decimal.RequireFromString("1000.00"),
				InterestRate:     nullDecimal("5"),
				LoanDate:         now,
			},
			expectedTotal: "1050",
		},
		{
			name: "no interest rate keeps total equal to principal",
			req: &CreateLoanRequest{
				CounterpartyName: "Sari",
				Type:             LoanTypeBorrowed,
				PrincipalAmount:  decimal.RequireFromString("250.50"),
				LoanDate:         now,
			},
			expectedTotal: "250.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := NewLoan(userID, tt.req, now)

			assert.Equal(t, userID, loan.UserID)
			assert.Equal(t, LoanStatusActive, loan.Status)
			assert.True(t, loan.PaidAmount.IsZero())
			assert.Equal(t, tt.expectedTotal, loan.TotalAmount.String())
			assert.True(t, loan.RemainingAmount.Equal(loan.TotalAmount))
			assert.True(t, loan.RemainingAmount.Equal(loan.TotalAmount.Sub(loan.PaidAmount)))
			assert.EqualValues(t, 1, loan.Version)
		})
	}
}

func TestLoanApplyPayment(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	newLoan := func() *Loan {
		return NewLoan(uuid.New(), &CreateLoanRequest{
			CounterpartyName: "Budi",
			Type:             LoanTypeLent,
			PrincipalAmount:  decimal.RequireFromString("1000.00"),
			InterestRate:     nullDecimal("5"),
			LoanDate:         now.AddDate(0, -1, 0),
		}, now.AddDate(0, -1, 0))
	}

	t.Run("exact payoff transitions to PAID_OFF", func(t *testing.T) {
		loan := newLoan()
		loan.ApplyPayment(decimal.RequireFromString("1050.00"), now)

		assert.Equal(t, LoanStatusPaidOff, loan.Status)
		assert.True(t, loan.RemainingAmount.IsZero())
		require.NotNil(t, loan.LastPaymentDate)
		assert.Equal(t, now, *loan.LastPaymentDate)
		assert.True(t, loan.IsFullyPaid())
	})

	t.Run("partial payment transitions to PARTIALLY_PAID", func(t *testing.T) {
		loan := newLoan()
		loan.ApplyPayment(decimal.RequireFromString("500.00"), now)

		assert.Equal(t, LoanStatusPartiallyPaid, loan.Status)
		assert.Equal(t, "550", loan.RemainingAmount.String())
		assert.False(t, loan.IsFullyPaid())
	})

	t.Run("zero payment leaves status unchanged", func(t *testing.T) {
		loan := newLoan()
		loan.ApplyPayment(decimal.Zero, now)

		assert.Equal(t, LoanStatusActive, loan.Status)
		assert.True(t, loan.RemainingAmount.Equal(loan.TotalAmount))
	})

	t.Run("over-payment drives remaining negative and still pays off", func(t *testing.T) {
		loan := newLoan()
		loan.ApplyPayment(decimal.RequireFromString("1200.00"), now)

		assert.Equal(t, LoanStatusPaidOff, loan.Status)
		assert.Equal(t, "-150", loan.RemainingAmount.String())
	})

	t.Run("remaining stays total minus paid across payments", func(t *testing.T) {
		loan := newLoan()
		loan.ApplyPayment(decimal.RequireFromString("100.00"), now)
		loan.ApplyPayment(decimal.RequireFromString("33.33"), now)

		assert.True(t, loan.RemainingAmount.Equal(loan.TotalAmount.Sub(loan.PaidAmount)))
	})
}

func TestLoanPercentagePaid(t *testing.T) {
	loan := &Loan{
		TotalAmount: decimal.RequireFromString("200.00"),
		PaidAmount:  decimal.RequireFromString("50.00"),
	}
	assert.Equal(t, "25", loan.PercentagePaid().String())

	zero := &Loan{TotalAmount: decimal.Zero, PaidAmount: decimal.Zero}
	assert.True(t, zero.PercentagePaid().IsZero())
}

func TestLoanIsOverdue(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -3)

	loan := &Loan{Status: LoanStatusActive, DueDate: &past}
	assert.True(t, loan.IsOverdue(now))

	// A partially paid loan past its due date is not reported overdue.
	loan.Status = LoanStatusPartiallyPaid
	assert.False(t, loan.IsOverdue(now))

	noDue := &Loan{Status: LoanStatusActive}
	assert.False(t, noDue.IsOverdue(now))

	future := now.AddDate(0, 0, 3)
	notYet := &Loan{Status: LoanStatusActive, DueDate: &future}
	assert.False(t, notYet.IsOverdue(now))
}

func TestLoanIsReminderDue(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	loan := &Loan{ReminderEnabled: true, NextReminderDate: &past}
	assert.True(t, loan.IsReminderDue(now))

	loan.ReminderEnabled = false
	assert.False(t, loan.IsReminderDue(now))
}

func TestLoanLabels(t *testing.T) {
	assert.Equal(t, "Partially Paid", LoanStatusPartiallyPaid.Label())
	assert.Equal(t, "Lent", LoanTypeLent.Label())
	assert.True(t, LoanStatusOverdue.Valid())
	assert.False(t, LoanStatus("UNKNOWN").Valid())
}
