package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aldisetia/obligation-engine/internal/domain"
	apperrors "github.com/aldisetia/obligation-engine/pkg/errors"
)

const loanColumns = `
	id, user_id, counterparty_name, counterparty_phone, counterparty_email,
	loan_type, principal_amount, interest_rate, total_amount, paid_amount,
	remaining_amount, loan_date, due_date, last_payment_date, status,
	is_urgent, reminder_enabled, next_reminder_date, account_id, notes,
	version, created_at, updated_at
`

const loanUpdate = `
	UPDATE loans
	SET counterparty_name = $4, counterparty_phone = $5, counterparty_email = $6,
	    principal_amount = $7, interest_rate = $8, total_amount = $9,
	    paid_amount = $10, remaining_amount = $11, loan_date = $12,
	    due_date = $13, last_payment_date = $14, status = $15,
	    is_urgent = $16, reminder_enabled = $17, next_reminder_date = $18,
	    account_id = $19, notes = $20, version = version + 1, updated_at = $21
	WHERE id = $1 AND user_id = $2 AND version = $3
`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.UserID,
		loan.CounterpartyName,
		loan.CounterpartyPhone,
		loan.CounterpartyEmail,
		loan.Type,
		loan.PrincipalAmount,
		loan.InterestRate,
		loan.TotalAmount,
		loan.PaidAmount,
		loan.RemainingAmount,
		loan.LoanDate,
		loan.DueDate,
		loan.LastPaymentDate,
		loan.Status,
		loan.IsUrgent,
		loan.ReminderEnabled,
		loan.NextReminderDate,
		loan.AccountID,
		loan.Notes,
		loan.Version,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, userID, loanID uuid.UUID) (*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE id = $1 AND user_id = $2
	`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, loanID, userID); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	return r.UpdateWithin(ctx, r.db, loan)
}

func (r *loanRepository) UpdateWithin(ctx context.Context, q sqlx.ExtContext, loan *domain.Loan) error {
	res, err := q.ExecContext(ctx, loanUpdate,
		loan.ID,
		loan.UserID,
		loan.Version,
		loan.CounterpartyName,
		loan.CounterpartyPhone,
		loan.CounterpartyEmail,
		loan.PrincipalAmount,
		loan.InterestRate,
		loan.TotalAmount,
		loan.PaidAmount,
		loan.RemainingAmount,
		loan.LoanDate,
		loan.DueDate,
		loan.LastPaymentDate,
		loan.Status,
		loan.IsUrgent,
		loan.ReminderEnabled,
		loan.NextReminderDate,
		loan.AccountID,
		loan.Notes,
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
		return apperrors.WrapVersionConflict("loan", loan.ID.String())
	}

	loan.Version++
	return nil
}

func (r *loanRepository) Delete(ctx context.Context, userID, loanID uuid.UUID) error {
	query := `DELETE FROM loans WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, loanID, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.WrapLoanNotFound(loanID.String())
	}

	return nil
}

func (r *loanRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE user_id = $1
		ORDER BY loan_date DESC
	`

	return r.selectLoans(ctx, query, userID)
}

func (r *loanRepository) ListByStatus(ctx context.Context, userID uuid.UUID, status domain.LoanStatus) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE user_id = $1 AND status = $2
		ORDER BY loan_date DESC
	`

	return r.selectLoans(ctx, query, userID, status)
}

func (r *loanRepository) ListByType(ctx context.Context, userID uuid.UUID, loanType domain.LoanType) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE user_id = $1 AND loan_type = $2
		ORDER BY loan_date DESC
	`

	return r.selectLoans(ctx, query, userID, loanType)
}

func (r *loanRepository) ListOverdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE user_id = $1 AND status = $2 AND due_date IS NOT NULL AND due_date < $3
		ORDER BY due_date
	`

	return r.selectLoans(ctx, query, userID, domain.LoanStatusActive, now)
}

func (r *loanRepository) ListDueSoon(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE user_id = $1 AND status = $2 AND due_date IS NOT NULL AND due_date >= $3 AND due_date <= $4
		ORDER BY due_date
	`

	return r.selectLoans(ctx, query, userID, domain.LoanStatusActive, from, to)
}

func (r *loanRepository) ListReminderDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE user_id = $1 AND reminder_enabled = TRUE
		  AND next_reminder_date IS NOT NULL AND next_reminder_date <= $2
		ORDER BY next_reminder_date
	`

	return r.selectLoans(ctx, query, userID, now)
}

func (r *loanRepository) ListAllReminderDue(ctx context.Context, now time.Time) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE reminder_enabled = TRUE
		  AND next_reminder_date IS NOT NULL AND next_reminder_date <= $1
		ORDER BY next_reminder_date
	`

	return r.selectLoans(ctx, query, now)
}

func (r *loanRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE loans
		SET status = $1, version = version + 1, updated_at = $2
		WHERE status = $3 AND due_date IS NOT NULL AND due_date < $2
	`

	res, err := r.db.ExecContext(ctx, query, domain.LoanStatusOverdue, now, domain.LoanStatusActive)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *loanRepository) selectLoans(ctx context.Context, query string, args ...interface{}) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, err
	}

	return loans, nil
}
