package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aldisetia/obligation-engine/pkg/utils"
)

// Frequency is the billing cadence of a recurring expense.
type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

// Advance moves a date forward by exactly one period of the frequency.
// Month-based periods clamp to the end of shorter months, so a Jan 31 due
// date advances to Feb 28 (or Feb 29 in a leap year).
func (f Frequency) Advance(t time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return utils.AddMonthsClamped(t, 1)
	case FrequencyQuarterly:
		return utils.AddMonthsClamped(t, 3)
	case FrequencyYearly:
		return utils.AddYearsClamped(t, 1)
	}
	return t
}

// RecurringStatus is the lifecycle state of a recurring expense.
type RecurringStatus string

const (
	RecurringStatusActive    RecurringStatus = "ACTIVE"
	RecurringStatusPaused    RecurringStatus = "PAUSED"
	RecurringStatusCancelled RecurringStatus = "CANCELLED"
	RecurringStatusCompleted RecurringStatus = "COMPLETED"
)

// DefaultReminderDaysBefore is applied when a create request leaves the
// reminder window unset.
const DefaultReminderDaysBefore = 3

// RecurringExpense is a repeating bill. Settling it debits the linked account,
// appends a journal entry, and advances NextDueDate by one period of
// Frequency from the previous due date.
type RecurringExpense struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	UserID             uuid.UUID       `json:"user_id" db:"user_id"`
	Name               string          `json:"name" db:"name"`
	Description        string          `json:"description,omitempty" db:"description"`
	Provider           string          `json:"provider,omitempty" db:"provider"`
	ReferenceNumber    string          `json:"reference_number,omitempty" db:"reference_number"`
	Amount             decimal.Decimal `json:"amount" db:"amount"`
	Frequency          Frequency       `json:"frequency" db:"frequency"`
	AccountID          uuid.UUID       `json:"account_id" db:"account_id"`
	CategoryID         *uuid.UUID      `json:"category_id,omitempty" db:"category_id"`
	StartDate          time.Time       `json:"start_date" db:"start_date"`
	EndDate            *time.Time      `json:"end_date,omitempty" db:"end_date"`
	NextDueDate        time.Time       `json:"next_due_date" db:"next_due_date"`
	LastPaidDate       *time.Time      `json:"last_paid_date,omitempty" db:"last_paid_date"`
	Status             RecurringStatus `json:"status" db:"status"`
	IsAutoPay          bool            `json:"is_auto_pay" db:"is_auto_pay"`
	ReminderDaysBefore int             `json:"reminder_days_before" db:"reminder_days_before"`
	Version            int64           `json:"version" db:"version"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// NewRecurringExpense builds an ACTIVE recurring expense for the given owner.
// When the request carries no explicit next due date, the first one is the
// start date advanced by one period: the first bill falls after the start
// date, not on it.
func NewRecurringExpense(userID uuid.UUID, req *CreateRecurringExpenseRequest, now time.Time) *RecurringExpense {
	nextDue := req.Frequency.Advance(req.StartDate)
	if req.NextDueDate != nil {
		nextDue = *req.NextDueDate
	}

	reminderDays := DefaultReminderDaysBefore
	if req.ReminderDaysBefore != nil {
		reminderDays = *req.ReminderDaysBefore
	}

	return &RecurringExpense{
		ID:                 uuid.New(),
		UserID:             userID,
		Name:               req.Name,
		Description:        req.Description,
		Provider:           req.Provider,
		ReferenceNumber:    req.ReferenceNumber,
		Amount:             req.Amount,
		Frequency:          req.Frequency,
		AccountID:          req.AccountID,
		CategoryID:         req.CategoryID,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		NextDueDate:        nextDue,
		Status:             RecurringStatusActive,
		IsAutoPay:          req.IsAutoPay,
		ReminderDaysBefore: reminderDays,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Settle applies the entity-side effects of marking the expense paid: the paid
// date moves to now and the cadence advances from the previous due date, so a
// late payment does not shrink the gap to the following bill. When the
// advanced date passes a configured end date the expense completes.
func (e *RecurringExpense) Settle(now time.Time) {
	e.LastPaidDate = &now
	e.NextDueDate = e.Frequency.Advance(e.NextDueDate)
	if e.EndDate != nil && e.NextDueDate.After(*e.EndDate) {
		e.Status = RecurringStatusCompleted
	}
}

// IsDueToday reports whether the next due date falls on the current day.
func (e *RecurringExpense) IsDueToday(now time.Time) bool {
	return utils.SameDay(e.NextDueDate, now)
}

// IsOverdue reports whether an ACTIVE expense has slipped past its due date.
func (e *RecurringExpense) IsOverdue(now time.Time) bool {
	return utils.TruncateToDay(e.NextDueDate).Before(utils.TruncateToDay(now)) && e.Status == RecurringStatusActive
}

// IsDueSoon reports whether the expense has entered its reminder window but is
// not yet overdue.
func (e *RecurringExpense) IsDueSoon(now time.Time) bool {
	windowStart := utils.TruncateToDay(e.NextDueDate).AddDate(0, 0, -e.ReminderDaysBefore)
	return utils.TruncateToDay(now).After(windowStart) && !e.IsOverdue(now)
}

// DTOs for requests and responses

type CreateRecurringExpenseRequest struct {
	Name               string          `json:"name" validate:"required"`
	Description        string          `json:"description,omitempty"`
	Provider           string          `json:"provider,omitempty"`
	ReferenceNumber    string          `json:"reference_number,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Frequency          Frequency       `json:"frequency" validate:"required,oneof=DAILY WEEKLY MONTHLY QUARTERLY YEARLY"`
	AccountID          uuid.UUID       `json:"account_id" validate:"required"`
	CategoryID         *uuid.UUID      `json:"category_id,omitempty"`
	StartDate          time.Time       `json:"start_date" validate:"required"`
	EndDate            *time.Time      `json:"end_date,omitempty"`
	NextDueDate        *time.Time      `json:"next_due_date,omitempty"`
	IsAutoPay          bool            `json:"is_auto_pay,omitempty"`
	ReminderDaysBefore *int            `json:"reminder_days_before,omitempty" validate:"omitempty,gte=0"`
}

// UpdateRecurringExpenseRequest overwrites the mutable fields. NextDueDate is
// only replaced when the caller supplies one.
type UpdateRecurringExpenseRequest struct {
	ID                 uuid.UUID       `json:"id" validate:"required"`
	Name               string          `json:"name" validate:"required"`
	Description        string          `json:"description,omitempty"`
	Provider           string          `json:"provider,omitempty"`
	ReferenceNumber    string          `json:"reference_number,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Frequency          Frequency       `json:"frequency" validate:"required,oneof=DAILY WEEKLY MONTHLY QUARTERLY YEARLY"`
	AccountID          uuid.UUID       `json:"account_id" validate:"required"`
	CategoryID         *uuid.UUID      `json:"category_id,omitempty"`
	StartDate          time.Time       `json:"start_date" validate:"required"`
	EndDate            *time.Time      `json:"end_date,omitempty"`
	NextDueDate        *time.Time      `json:"next_due_date,omitempty"`
	IsAutoPay          bool            `json:"is_auto_pay"`
	ReminderDaysBefore *int            `json:"reminder_days_before,omitempty" validate:"omitempty,gte=0"`
}

// RecurringSummary is the aggregate view consumed by dashboards.
type RecurringSummary struct {
	MonthlyTotal  decimal.Decimal `json:"monthly_total"`
	ActiveCount   int             `json:"active_count"`
	OverdueCount  int             `json:"overdue_count"`
	DueTodayCount int             `json:"due_today_count"`
}
