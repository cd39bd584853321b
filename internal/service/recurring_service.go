package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aldisetia/obligation-engine/internal/config"
	"github.com/aldisetia/obligation-engine/internal/domain"
	"github.com/aldisetia/obligation-engine/internal/repository"
	apperrors "github.com/aldisetia/obligation-engine/pkg/errors"
)

// RecurringExpenseService owns the recurring bill scheduler. Settling a bill
// debits the linked account, appends a journal entry, and advances the due
// date, all inside one transaction: either all of it commits or none of it.
type RecurringExpenseService struct {
	expenseRepo repository.RecurringExpenseRepository
	ledger      repository.AccountLedger
	journal     repository.TransactionJournal
	tx          repository.TxRunner
	redis       *redis.Client
	config      *config.Config
	validate    *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

func NewRecurringExpenseService(
	expenseRepo repository.RecurringExpenseRepository,
	ledger repository.AccountLedger,
	journal repository.TransactionJournal,
	tx repository.TxRunner,
	redisClient *redis.Client,
	cfg *config.Config,
	logger zerolog.Logger,
) *RecurringExpenseService {
	return &RecurringExpenseService{
		expenseRepo: expenseRepo,
		ledger:      ledger,
		journal:     journal,
		tx:          tx,
		redis:       redisClient,
		config:      cfg,
		validate:    validator.New(),
		logger:      logger.With().Str("component", "recurring_service").Logger(),
		now:         time.Now,
	}
}

// CreateExpense validates the request and persists a new ACTIVE recurring
// expense. When no explicit next due date is supplied the first one is
// derived: start date advanced by one period of the frequency.
func (s *RecurringExpenseService) CreateExpense(ctx context.Context, userID uuid.UUID, req *domain.CreateRecurringExpenseRequest) (*domain.RecurringExpense, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.WrapValidationErr(err)
	}
	if !req.Amount.IsPositive() {
		return nil, apperrors.WrapValidation("amount must be greater than zero")
	}

	expense := domain.NewRecurringExpense(userID, req, s.now())

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx, userID)
	s.logger.Info().
		Str("expense_id", expense.ID.String()).
		Str("frequency", string(expense.Frequency)).
		Time("next_due_date", expense.NextDueDate).
		Msg("recurring expense created")

	return expense, nil
}

// GetExpense retrieves one recurring expense owned by the caller.
func (s *RecurringExpenseService) GetExpense(ctx context.Context, userID, expenseID uuid.UUID) (*domain.RecurringExpense, error) {
	return s.getOwned(ctx, userID, expenseID)
}

// UpdateExpense overwrites the mutable fields. The next due date is only
// replaced when the caller supplies one; otherwise the scheduled cadence is
// left alone.
func (s *RecurringExpenseService) UpdateExpense(ctx context.Context, userID uuid.UUID, req *domain.UpdateRecurringExpenseRequest) (*domain.RecurringExpense, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.WrapValidationErr(err)
	}
	if !req.Amount.IsPositive() {
		return nil, apperrors.WrapValidation("amount must be greater than zero")
	}

	expense, err := s.getOwned(ctx, userID, req.ID)
	if err != nil {
		return nil, err
	}

	expense.Name = req.Name
	expense.Description = req.Description
	expense.Provider = req.Provider
	expense.ReferenceNumber = req.ReferenceNumber
	expense.Amount = req.Amount
	expense.Frequency = req.Frequency
	expense.AccountID = req.AccountID
	expense.CategoryID = req.CategoryID
	expense.StartDate = req.StartDate
	expense.EndDate = req.EndDate
	expense.IsAutoPay = req.IsAutoPay
	if req.NextDueDate != nil {
		expense.NextDueDate = *req.NextDueDate
	}
	if req.ReminderDaysBefore != nil {
		expense.ReminderDaysBefore = *req.ReminderDaysBefore
	}

	if err := s.updateOwned(ctx, expense); err != nil {
		return nil, err
	}

	return expense, nil
}

// MarkAsPaid settles the current billing period as one atomic unit of work:
// a journal entry for the amount, a debit against the linked account, the
// paid date, and the due-date advance. The cadence advances from the previous
// due date, not from now, so paying late does not shrink the gap to the next
// bill. Any side-effect failure rolls the whole settlement back.
func (s *RecurringExpenseService) MarkAsPaid(ctx context.Context, userID, expenseID uuid.UUID) (*domain.RecurringExpense, error) {
	expense, err := s.getOwned(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	previousDue := expense.NextDueDate

	err = s.tx.WithinTx(ctx, func(tx *sqlx.Tx) error {
		entry := &domain.Transaction{
			UserID:      userID,
			Type:        domain.TransactionTypeExpense,
			Amount:      expense.Amount,
			AccountID:   expense.AccountID,
			CategoryID:  expense.CategoryID,
			Description: fmt.Sprintf("Recurring expense: %s", expense.Name),
			OccurredAt:  now,
		}
		if _, err := s.journal.Append(ctx, tx, entry); err != nil {
			return err
		}

		if _, err := s.ledger.Debit(ctx, tx, userID, expense.AccountID, expense.Amount); err != nil {
			return err
		}

		expense.Settle(now)
		return s.expenseRepo.UpdateWithin(ctx, tx, expense)
	})
	if err != nil {
		if apperrors.IsNotFound(err) || apperrors.IsConflict(err) {
			return nil, err
		}
		return nil, apperrors.WrapSettlementFailed(err)
	}

	s.invalidateSummary(ctx, userID)
	s.logger.Info().
		Str("expense_id", expense.ID.String()).
		Str("amount", expense.Amount.String()).
		Time("previous_due_date", previousDue).
		Time("next_due_date", expense.NextDueDate).
		Msg("recurring expense settled")

	return expense, nil
}

// Pause suspends billing without touching the due-date math. Pausing an
// already paused expense is a silent no-op.
func (s *RecurringExpenseService) Pause(ctx context.Context, userID, expenseID uuid.UUID) (*domain.RecurringExpense, error) {
	return s.setStatus(ctx, userID, expenseID, domain.RecurringStatusPaused)
}

// Resume reactivates a paused expense.
func (s *RecurringExpenseService) Resume(ctx context.Context, userID, expenseID uuid.UUID) (*domain.RecurringExpense, error) {
	return s.setStatus(ctx, userID, expenseID, domain.RecurringStatusActive)
}

// Cancel permanently stops billing; the record stays around for history.
func (s *RecurringExpenseService) Cancel(ctx context.Context, userID, expenseID uuid.UUID) (*domain.RecurringExpense, error) {
	return s.setStatus(ctx, userID, expenseID, domain.RecurringStatusCancelled)
}

func (s *RecurringExpenseService) setStatus(ctx context.Context, userID, expenseID uuid.UUID, status domain.RecurringStatus) (*domain.RecurringExpense, error) {
	expense, err := s.getOwned(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}

	if expense.Status == status {
		return expense, nil
	}

	expense.Status = status

	if err := s.updateOwned(ctx, expense); err != nil {
		return nil, err
	}

	return expense, nil
}

// DeleteExpense permanently removes the recurring expense.
func (s *RecurringExpenseService) DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) error {
	if err := s.expenseRepo.Delete(ctx, userID, expenseID); err != nil {
		if apperrors.IsNotFound(err) {
			return err
		}
		return apperrors.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx, userID)
	return nil
}

// ListExpenses retrieves every recurring expense owned by the caller.
func (s *RecurringExpenseService) ListExpenses(ctx context.Context, userID uuid.UUID) ([]*domain.RecurringExpense, error) {
	expenses, err := s.expenseRepo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return expenses, nil
}

// ListExpensesByStatus retrieves the caller's expenses in one lifecycle state.
func (s *RecurringExpenseService) ListExpensesByStatus(ctx context.Context, userID uuid.UUID, status domain.RecurringStatus) ([]*domain.RecurringExpense, error) {
	if !status.Valid() {
		return nil, apperrors.WrapValidation(fmt.Sprintf("unknown recurring status %q", status))
	}

	expenses, err := s.expenseRepo.ListByStatus(ctx, userID, status)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return expenses, nil
}

// ListExpensesByFrequency retrieves the caller's expenses on one cadence.
func (s *RecurringExpenseService) ListExpensesByFrequency(ctx context.Context, userID uuid.UUID, frequency domain.Frequency) ([]*domain.RecurringExpense, error) {
	if !frequency.Valid() {
		return nil, apperrors.WrapValidation(fmt.Sprintf("unknown frequency %q", frequency))
	}

	expenses, err := s.expenseRepo.ListByFrequency(ctx, userID, frequency)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return expenses, nil
}

// ListDueToday retrieves ACTIVE expenses due on the current day.
func (s *RecurringExpenseService) ListDueToday(ctx context.Context, userID uuid.UUID) ([]*domain.RecurringExpense, error) {
	expenses, err := s.expenseRepo.ListDueToday(ctx, userID, s.now())
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return expenses, nil
}

// ListOverdueExpenses retrieves ACTIVE expenses past their due date.
func (s *RecurringExpenseService) ListOverdueExpenses(ctx context.Context, userID uuid.UUID) ([]*domain.RecurringExpense, error) {
	expenses, err := s.expenseRepo.ListOverdue(ctx, userID, s.now())
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return expenses, nil
}

// ListDueSoonExpenses retrieves ACTIVE expenses due within the configured window.
func (s *RecurringExpenseService) ListDueSoonExpenses(ctx context.Context, userID uuid.UUID) ([]*domain.RecurringExpense, error) {
	now := s.now()
	to := now.AddDate(0, 0, s.config.Business.DueSoonDays)

	expenses, err := s.expenseRepo.ListDueSoon(ctx, userID, now, to)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return expenses, nil
}

// ListAutoPayExpenses retrieves ACTIVE expenses with auto-pay enabled.
// Auto-pay is informational here; nothing in this module triggers payment.
func (s *RecurringExpenseService) ListAutoPayExpenses(ctx context.Context, userID uuid.UUID) ([]*domain.RecurringExpense, error) {
	expenses, err := s.expenseRepo.ListAutoPay(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return expenses, nil
}

// MonthlyTotal sums the amounts of ACTIVE monthly expenses, the figure
// dashboards show as fixed monthly spend.
func (s *RecurringExpenseService) MonthlyTotal(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	expenses, err := s.expenseRepo.ListByFrequency(ctx, userID, domain.FrequencyMonthly)
	if err != nil {
		return decimal.Zero, apperrors.WrapDatabaseError(err)
	}

	total := decimal.Zero
	for _, expense := range expenses {
		if expense.Status == domain.RecurringStatusActive {
			total = total.Add(expense.Amount)
		}
	}

	return total, nil
}

// Summary computes the aggregate recurring-spend view for dashboards, cached
// per owner like the loan summary.
func (s *RecurringExpenseService) Summary(ctx context.Context, userID uuid.UUID) (*domain.RecurringSummary, error) {
	if cached := s.cachedSummary(ctx, userID); cached != nil {
		return cached, nil
	}

	expenses, err := s.expenseRepo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	now := s.now()
	summary := &domain.RecurringSummary{MonthlyTotal: decimal.Zero}

	for _, expense := range expenses {
		if expense.Status != domain.RecurringStatusActive {
			continue
		}

		summary.ActiveCount++
		if expense.Frequency == domain.FrequencyMonthly {
			summary.MonthlyTotal = summary.MonthlyTotal.Add(expense.Amount)
		}
		if expense.IsOverdue(now) {
			summary.OverdueCount++
		}
		if expense.IsDueToday(now) {
			summary.DueTodayCount++
		}
	}

	s.cacheSummary(ctx, userID, summary)
	return summary, nil
}

// ScanReminders logs every expense that has entered its reminder window,
// across all owners. Run daily by the scheduler; the notification transport
// lives outside this module.
func (s *RecurringExpenseService) ScanReminders(ctx context.Context) (int, error) {
	expenses, err := s.expenseRepo.ListReminderDue(ctx, s.now())
	if err != nil {
		return 0, apperrors.WrapDatabaseError(err)
	}

	for _, expense := range expenses {
		s.logger.Info().
			Str("expense_id", expense.ID.String()).
			Str("user_id", expense.UserID.String()).
			Str("name", expense.Name).
			Time("next_due_date", expense.NextDueDate).
			Msg("recurring expense reminder due")
	}

	return len(expenses), nil
}

func (s *RecurringExpenseService) getOwned(ctx context.Context, userID, expenseID uuid.UUID) (*domain.RecurringExpense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, userID, expenseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapExpenseNotFound(expenseID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}
	return expense, nil
}

func (s *RecurringExpenseService) updateOwned(ctx context.Context, expense *domain.RecurringExpense) error {
	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		if apperrors.IsConflict(err) {
			return err
		}
		return apperrors.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx, expense.UserID)
	return nil
}

func recurringSummaryKey(userID uuid.UUID) string {
	return fmt.Sprintf("recurring:summary:%s", userID)
}

func (s *RecurringExpenseService) cachedSummary(ctx context.Context, userID uuid.UUID) *domain.RecurringSummary {
	if s.redis == nil {
		return nil
	}

	raw, err := s.redis.Get(ctx, recurringSummaryKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug().Err(err).Msg("summary cache read failed")
		}
		return nil
	}

	var summary domain.RecurringSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *RecurringExpenseService) cacheSummary(ctx context.Context, userID uuid.UUID, summary *domain.RecurringSummary) {
	if s.redis == nil {
		return
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, recurringSummaryKey(userID), raw, s.config.GetSummaryTTL()).Err(); err != nil {
		s.logger.Debug().Err(err).Msg("summary cache write failed")
	}
}

func (s *RecurringExpenseService) invalidateSummary(ctx context.Context, userID uuid.UUID) {
	if s.redis == nil {
		return
	}

	if err := s.redis.Del(ctx, recurringSummaryKey(userID)).Err(); err != nil {
		s.logger.Debug().Err(err).Msg("summary cache invalidation failed")
	}
}
