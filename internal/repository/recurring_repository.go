package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aldisetia/obligation-engine/internal/domain"
	apperrors "github.com/aldisetia/obligation-engine/pkg/errors"
)

const recurringColumns = `
	id, user_id, name, description, provider, reference_number, amount,
	frequency, account_id, category_id, start_date, end_date, next_due_date,
	last_paid_date, status, is_auto_pay, reminder_days_before, version,
	created_at, updated_at
`

const recurringUpdate = `
	UPDATE recurring_expenses
	SET name = $4, description = $5, provider = $6, reference_number = $7,
	    amount = $8, frequency = $9, account_id = $10, category_id = $11,
	    start_date = $12, end_date = $13, next_due_date = $14,
	    last_paid_date = $15, status = $16, is_auto_pay = $17,
	    reminder_days_before = $18, version = version + 1, updated_at = $19
	WHERE id = $1 AND user_id = $2 AND version = $3
`

type recurringExpenseRepository struct {
	db *sqlx.DB
}

func NewRecurringExpenseRepository(db *sqlx.DB) RecurringExpenseRepository {
	return &recurringExpenseRepository{db: db}
}

func (r *recurringExpenseRepository) Create(ctx context.Context, expense *domain.RecurringExpense) error {
	query := `
		INSERT INTO recurring_expenses (` + recurringColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.db.ExecContext(ctx, query,
		expense.ID,
		expense.UserID,
		expense.Name,
		expense.Description,
		expense.Provider,
		expense.ReferenceNumber,
		expense.Amount,
		expense.Frequency,
		expense.AccountID,
		expense.CategoryID,
		expense.StartDate,
		expense.EndDate,
		expense.NextDueDate,
		expense.LastPaidDate,
		expense.Status,
		expense.IsAutoPay,
		expense.ReminderDaysBefore,
		expense.Version,
		expense.CreatedAt,
		expense.UpdatedAt,
	)

	return err
}

func (r *recurringExpenseRepository) GetByID(ctx context.Context, userID, expenseID uuid.UUID) (*domain.RecurringExpense, error) {
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_expenses
		WHERE id = $1 AND user_id = $2
	`

	var expense domain.RecurringExpense
	if err := r.db.GetContext(ctx, &expense, query, expenseID, userID); err != nil {
		return nil, err
	}

	return &expense, nil
}

func (r *recurringExpenseRepository) Update(ctx context.Context, expense *domain.RecurringExpense) error {
	return r.UpdateWithin(ctx, r.db, expense)
}

func (r *recurringExpenseRepository) UpdateWithin(ctx context.Context, q sqlx.ExtContext, expense *domain.RecurringExpense) error {
	res, err := q.ExecContext(ctx, recurringUpdate,
		expense.ID,
		expense.UserID,
		expense.Version,
		expense.Name,
		expense.Description,
		expense.Provider,
		expense.ReferenceNumber,
		expense.Amount,
		expense.Frequency,
		expense.AccountID,
		expense.CategoryID,
		expense.StartDate,
		expense.EndDate,
		expense.NextDueDate,
		expense.LastPaidDate,
		expense.Status,
		expense.IsAutoPay,
		expense.ReminderDaysBefore,
		time.Now(),
	)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.WrapVersionConflict("recurring expense", expense.ID.String())
	}

	expense.Version++
	return nil
}

func (r *recurringExpenseRepository) Delete(ctx context.Context, userID, expenseID uuid.UUID) error {
	query := `DELETE FROM recurring_expenses WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, expenseID, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.WrapExpenseNotFound(expenseID.String())
	}

	return nil
}

func (r *recurringExpenseRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.RecurringExpense, error) {
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_expenses
		WHERE user_id = $1
		ORDER BY next_due_date
	`

	return r.selectExpenses(ctx, query, userID)
}

func (r *recurringExpenseRepository) ListByStatus(ctx context.Context, userID uuid.UUID, status domain.RecurringStatus) ([]*domain.RecurringExpense, error) {
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_expenses
		WHERE user_id = $1 AND status = $2
		ORDER BY next_due_date
	`

	return r.selectExpenses(ctx, query, userID, status)
}

func (r *recurringExpenseRepository) ListByFrequency(ctx context.Context, userID uuid.UUID, frequency domain.Frequency) ([]*domain.RecurringExpense, error) {
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_expenses
		WHERE user_id = $1 AND frequency = $2
		ORDER BY next_due_date
	`

	return r.selectExpenses(ctx, query, userID, frequency)
}

func (r *recurringExpenseRepository) ListDueToday(ctx context.Context, userID uuid.UUID, day time.Time) ([]*domain.RecurringExpense, error) {
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_expenses
		WHERE user_id = $1 AND status = $2 AND next_due_date::date = $3::date
		ORDER BY next_due_date
	`

	return r.selectExpenses(ctx, query, userID, domain.RecurringStatusActive, day)
}

func (r *recurringExpenseRepository) ListOverdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.RecurringExpense, error) {
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_expenses
		WHERE user_id = $1 AND status = $2 AND next_due_date::date < $3::date
		ORDER BY next_due_date
	`

	return r.selectExpenses(ctx, query, userID, domain.RecurringStatusActive, now)
}

func (r *recurringExpenseRepository) ListDueSoon(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.RecurringExpense, error) {
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_expenses
		WHERE user_id = $1 AND status = $2
		  AND next_due_date::date >= $3::date AND next_due_date::date <= $4::date
		ORDER BY next_due_date
	`

	return r.selectExpenses(ctx, query, userID, domain.RecurringStatusActive, from, to)
}

func (r *recurringExpenseRepository) ListAutoPay(ctx context.Context, userID uuid.UUID) ([]*domain.RecurringExpense, error) {
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_expenses
		WHERE user_id = $1 AND status = $2 AND is_auto_pay = TRUE
		ORDER BY next_due_date
	`

	return r.selectExpenses(ctx, query, userID, domain.RecurringStatusActive)
}

func (r *recurringExpenseRepository) ListReminderDue(ctx context.Context, now time.Time) ([]*domain.RecurringExpense, error) {
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_expenses
		WHERE status = $1
		  AND next_due_date::date - make_interval(days => reminder_days_before) < $2::date
		  AND next_due_date::date >= $2::date
		ORDER BY next_due_date
	`

	return r.selectExpenses(ctx, query, domain.RecurringStatusActive, now)
}

func (r *recurringExpenseRepository) selectExpenses(ctx context.Context, query string, args ...interface{}) ([]*domain.RecurringExpense, error) {
	var expenses []*domain.RecurringExpense
	if err := r.db.SelectContext(ctx, &expenses, query, args...); err != nil {
		return nil, err
	}

	return expenses, nil
}
