package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aldisetia/obligation-engine/pkg/utils"
)

// LoanType is the direction of a loan, fixed at creation.
type LoanType string

const (
	LoanTypeLent     LoanType = "LENT"
	LoanTypeBorrowed LoanType = "BORROWED"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusActive        LoanStatus = "ACTIVE"
	LoanStatusPartiallyPaid LoanStatus = "PARTIALLY_PAID"
	LoanStatusPaidOff       LoanStatus = "PAID_OFF"
	LoanStatusOverdue       LoanStatus = "OVERDUE"
	LoanStatusCancelled     LoanStatus = "CANCELLED"
)

// Loan represents a single lend/borrow agreement between the owner and a named
// counterparty. Amounts are fixed-precision decimals; RemainingAmount and
// TotalAmount are derived and must stay consistent after every mutation:
// remaining == total - paid.
type Loan struct {
	ID                uuid.UUID           `json:"id" db:"id"`
	UserID            uuid.UUID           `json:"user_id" db:"user_id"`
	CounterpartyName  string              `json:"counterparty_name" db:"counterparty_name"`
	CounterpartyPhone string              `json:"counterparty_phone,omitempty" db:"counterparty_phone"`
	CounterpartyEmail string              `json:"counterparty_email,omitempty" db:"counterparty_email"`
	Type              LoanType            `json:"loan_type" db:"loan_type"`
	PrincipalAmount   decimal.Decimal     `json:"principal_amount" db:"principal_amount"`
	InterestRate      decimal.NullDecimal `json:"interest_rate,omitempty" db:"interest_rate"`
	TotalAmount       decimal.Decimal     `json:"total_amount" db:"total_amount"`
	PaidAmount        decimal.Decimal     `json:"paid_amount" db:"paid_amount"`
	RemainingAmount   decimal.Decimal     `json:"remaining_amount" db:"remaining_amount"`
	LoanDate          time.Time           `json:"loan_date" db:"loan_date"`
	DueDate           *time.Time          `json:"due_date,omitempty" db:"due_date"`
	LastPaymentDate   *time.Time          `json:"last_payment_date,omitempty" db:"last_payment_date"`
	Status            LoanStatus          `json:"status" db:"status"`
	IsUrgent          bool                `json:"is_urgent" db:"is_urgent"`
	ReminderEnabled   bool                `json:"reminder_enabled" db:"reminder_enabled"`
	NextReminderDate  *time.Time          `json:"next_reminder_date,omitempty" db:"next_reminder_date"`
	AccountID         *uuid.UUID          `json:"account_id,omitempty" db:"account_id"`
	Notes             string              `json:"notes,omitempty" db:"notes"`
	Version           int64               `json:"version" db:"version"`
	CreatedAt         time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" db:"updated_at"`
}

// NewLoan builds a loan for the given owner, deriving the interest-bearing
// total up front. Replaces what the persistence layer used to do implicitly:
// the service calls this before the insert so the derivation is testable on
// its own.
func NewLoan(userID uuid.UUID, req *CreateLoanRequest, now time.Time) *Loan {
	total := req.PrincipalAmount
	if req.InterestRate.Valid {
		total = utils.SimpleInterestTotal(req.PrincipalAmount, req.InterestRate.Decimal)
	}

	return &Loan{
		ID:                uuid.New(),
		UserID:            userID,
		CounterpartyName:  req.CounterpartyName,
		CounterpartyPhone: req.CounterpartyPhone,
		CounterpartyEmail: req.CounterpartyEmail,
		Type:              req.Type,
		PrincipalAmount:   req.PrincipalAmount,
		InterestRate:      req.InterestRate,
		TotalAmount:       total,
		PaidAmount:        decimal.Zero,
		RemainingAmount:   total,
		LoanDate:          req.LoanDate,
		DueDate:           req.DueDate,
		Status:            LoanStatusActive,
		IsUrgent:          req.IsUrgent,
		ReminderEnabled:   req.ReminderEnabled,
		NextReminderDate:  req.NextReminderDate,
		AccountID:         req.AccountID,
		Notes:             req.Notes,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// ApplyPayment accrues a payment against the loan and recomputes the derived
// fields and status. Over-payment is accepted; the remaining amount may go
// negative and the loan still transitions to PAID_OFF.
func (l *Loan) ApplyPayment(amount decimal.Decimal, now time.Time) {
	l.PaidAmount = l.PaidAmount.Add(amount)
	l.RemainingAmount = l.TotalAmount.Sub(l.PaidAmount)
	l.LastPaymentDate = &now

	switch {
	case l.RemainingAmount.LessThanOrEqual(decimal.Zero):
		l.Status = LoanStatusPaidOff
	case l.PaidAmount.GreaterThan(decimal.Zero):
		l.Status = LoanStatusPartiallyPaid
	}
}

// PercentagePaid returns how much of the total has been repaid, as a
// percentage. Zero when the total is zero.
func (l *Loan) PercentagePaid() decimal.Decimal {
	return utils.Percentage(l.PaidAmount, l.TotalAmount)
}

// IsOverdue reports whether the loan is past its due date. Only ACTIVE loans
// are flagged; a PARTIALLY_PAID loan past due is deliberately not reported
// here, matching the dashboard's long-standing behavior.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.DueDate != nil && l.DueDate.Before(now) && l.Status == LoanStatusActive
}

// IsFullyPaid reports whether nothing remains to be repaid.
func (l *Loan) IsFullyPaid() bool {
	return l.RemainingAmount.LessThanOrEqual(decimal.Zero)
}

// IsReminderDue reports whether a reminder should fire for this loan.
func (l *Loan) IsReminderDue(now time.Time) bool {
	return l.ReminderEnabled && l.NextReminderDate != nil && !l.NextReminderDate.After(now)
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	CounterpartyName  string              `json:"counterparty_name" validate:"required"`
	CounterpartyPhone string              `json:"counterparty_phone,omitempty"`
	CounterpartyEmail string              `json:"counterparty_email,omitempty" validate:"omitempty,email"`
	Type              LoanType            `json:"loan_type" validate:"required,oneof=LENT BORROWED"`
	PrincipalAmount   decimal.Decimal     `json:"principal_amount"`
	InterestRate      decimal.NullDecimal `json:"interest_rate,omitempty"`
	LoanDate          time.Time           `json:"loan_date" validate:"required"`
	DueDate           *time.Time          `json:"due_date,omitempty"`
	IsUrgent          bool                `json:"is_urgent,omitempty"`
	ReminderEnabled   bool                `json:"reminder_enabled,omitempty"`
	NextReminderDate  *time.Time          `json:"next_reminder_date,omitempty"`
	AccountID         *uuid.UUID          `json:"account_id,omitempty"`
	Notes             string              `json:"notes,omitempty"`
}

// UpdateLoanRequest overwrites the mutable fields of an existing loan. The
// totals are taken as-is: a changed principal or rate does not re-derive
// TotalAmount/RemainingAmount, the caller owns consistency on full updates.
type UpdateLoanRequest struct {
	ID                uuid.UUID           `json:"id" validate:"required"`
	CounterpartyName  string              `json:"counterparty_name" validate:"required"`
	CounterpartyPhone string              `json:"counterparty_phone,omitempty"`
	CounterpartyEmail string              `json:"counterparty_email,omitempty" validate:"omitempty,email"`
	PrincipalAmount   decimal.Decimal     `json:"principal_amount"`
	InterestRate      decimal.NullDecimal `json:"interest_rate,omitempty"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	PaidAmount        decimal.Decimal     `json:"paid_amount"`
	RemainingAmount   decimal.Decimal     `json:"remaining_amount"`
	LoanDate          time.Time           `json:"loan_date" validate:"required"`
	DueDate           *time.Time          `json:"due_date,omitempty"`
	Status            LoanStatus          `json:"status" validate:"required,oneof=ACTIVE PARTIALLY_PAID PAID_OFF OVERDUE CANCELLED"`
	IsUrgent          bool                `json:"is_urgent"`
	ReminderEnabled   bool                `json:"reminder_enabled"`
	NextReminderDate  *time.Time          `json:"next_reminder_date,omitempty"`
	AccountID         *uuid.UUID          `json:"account_id,omitempty"`
	Notes             string              `json:"notes,omitempty"`
}

type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// LoanSummary is the aggregate view consumed by dashboards and net-worth
// reports.
type LoanSummary struct {
	TotalLent            decimal.Decimal `json:"total_lent"`
	TotalBorrowed        decimal.Decimal `json:"total_borrowed"`
	NetPosition          decimal.Decimal `json:"net_position"`
	ActiveLentCount      int             `json:"active_lent_count"`
	ActiveBorrowedCount  int             `json:"active_borrowed_count"`
	OverdueLentCount     int             `json:"overdue_lent_count"`
	OverdueBorrowedCount int             `json:"overdue_borrowed_count"`
}
