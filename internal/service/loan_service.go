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

// LoanService owns the loan ledger: one lend/borrow agreement per record,
// payments accruing against it until settled. Every operation takes the
// calling owner explicitly; records of other owners are indistinguishable
// from missing ones.
type LoanService struct {
	loanRepo repository.LoanRepository
	ledger   repository.AccountLedger
	journal  repository.TransactionJournal
	tx       repository.TxRunner
	redis    *redis.Client
	config   *config.Config
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	ledger repository.AccountLedger,
	journal repository.TransactionJournal,
	tx repository.TxRunner,
	redisClient *redis.Client,
	cfg *config.Config,
	logger zerolog.Logger,
) *LoanService {
	return &LoanService{
		loanRepo: loanRepo,
		ledger:   ledger,
		journal:  journal,
		tx:       tx,
		redis:    redisClient,
		config:   cfg,
		validate: validator.New(),
		logger:   logger.With().Str("component", "loan_service").Logger(),
		now:      time.Now,
	}
}

// CreateLoan validates the request, derives the interest-bearing total and
// persists a new ACTIVE loan owned by the caller.
func (s *LoanService) CreateLoan(ctx context.Context, userID uuid.UUID, req *domain.CreateLoanRequest) (*domain.Loan, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.WrapValidationErr(err)
	}
	if !req.PrincipalAmount.IsPositive() {
		return nil, apperrors.WrapValidation("principal_amount must be greater than zero")
	}
	if req.InterestRate.Valid && req.InterestRate.Decimal.IsNegative() {
		return nil, apperrors.WrapValidation("interest_rate must not be negative")
	}

	loan := domain.NewLoan(userID, req, s.now())

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx, userID)
	s.logger.Info().
		Str("loan_id", loan.ID.String()).
		Str("loan_type", string(loan.Type)).
		Str("total_amount", loan.TotalAmount.String()).
		Msg("loan created")

	return loan, nil
}

// GetLoan retrieves one loan owned by the caller.
func (s *LoanService) GetLoan(ctx context.Context, userID, loanID uuid.UUID) (*domain.Loan, error) {
	return s.getOwned(ctx, userID, loanID)
}

// UpdateLoan overwrites the mutable fields of an existing loan. Totals are
// taken verbatim from the request: a changed principal or interest rate does
// not re-derive TotalAmount or RemainingAmount. Owner and loan type never
// change.
func (s *LoanService) UpdateLoan(ctx context.Context, userID uuid.UUID, req *domain.UpdateLoanRequest) (*domain.Loan, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.WrapValidationErr(err)
	}

	loan, err := s.getOwned(ctx, userID, req.ID)
	if err != nil {
		return nil, err
	}

	loan.CounterpartyName = req.CounterpartyName
	loan.CounterpartyPhone = req.CounterpartyPhone
	loan.CounterpartyEmail = req.CounterpartyEmail
	loan.PrincipalAmount = req.PrincipalAmount
	loan.InterestRate = req.InterestRate
	loan.TotalAmount = req.TotalAmount
	loan.PaidAmount = req.PaidAmount
	loan.RemainingAmount = req.RemainingAmount
	loan.LoanDate = req.LoanDate
	loan.DueDate = req.DueDate
	loan.Status = req.Status
	loan.IsUrgent = req.IsUrgent
	loan.ReminderEnabled = req.ReminderEnabled
	loan.NextReminderDate = req.NextReminderDate
	loan.AccountID = req.AccountID
	loan.Notes = req.Notes

	if err := s.updateOwned(ctx, loan); err != nil {
		return nil, err
	}

	return loan, nil
}

// RecordPayment accrues a payment against the loan. The paid amount adds up,
// the remaining amount is re-derived, and the status follows: PAID_OFF once
// nothing remains, PARTIALLY_PAID while something has been paid. Over-payment
// is accepted and may drive the remaining amount negative.
//
// When the loan is linked to an account the payment also moves money: a
// received payment on a LENT loan credits the account with an INCOME journal
// entry, a repayment on a BORROWED loan debits it with an EXPENSE entry, both
// in one transaction with the loan update.
func (s *LoanService) RecordPayment(ctx context.Context, userID, loanID uuid.UUID, amount decimal.Decimal) (*domain.Loan, error) {
	if amount.IsNegative() {
		return nil, apperrors.WrapValidation("payment amount must not be negative")
	}

	loan, err := s.getOwned(ctx, userID, loanID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	if loan.AccountID == nil {
		loan.ApplyPayment(amount, now)
		if err := s.updateOwned(ctx, loan); err != nil {
			return nil, err
		}
	} else {
		err = s.tx.WithinTx(ctx, func(tx *sqlx.Tx) error {
			entryType := domain.TransactionTypeIncome
			description := fmt.Sprintf("Loan payment received: %s", loan.CounterpartyName)
			adjust := s.ledger.Credit
			if loan.Type == domain.LoanTypeBorrowed {
				entryType = domain.TransactionTypeExpense
				description = fmt.Sprintf("Loan repayment: %s", loan.CounterpartyName)
				adjust = s.ledger.Debit
			}

			entry := &domain.Transaction{
				UserID:      userID,
				Type:        entryType,
				Amount:      amount,
				AccountID:   *loan.AccountID,
				Description: description,
				OccurredAt:  now,
			}
			if _, err := s.journal.Append(ctx, tx, entry); err != nil {
				return err
			}

			if _, err := adjust(ctx, tx, userID, *loan.AccountID, amount); err != nil {
				return err
			}

			loan.ApplyPayment(amount, now)
			return s.loanRepo.UpdateWithin(ctx, tx, loan)
		})
		if err != nil {
			if apperrors.IsNotFound(err) || apperrors.IsConflict(err) {
				return nil, err
			}
			return nil, apperrors.WrapSettlementFailed(err)
		}

		s.invalidateSummary(ctx, userID)
	}

	s.logger.Info().
		Str("loan_id", loan.ID.String()).
		Str("amount", amount.String()).
		Str("remaining", loan.RemainingAmount.String()).
		Str("status", string(loan.Status)).
		Msg("payment recorded")

	return loan, nil
}

// MarkUrgent flags the loan urgent; no other fields change.
func (s *LoanService) MarkUrgent(ctx context.Context, userID, loanID uuid.UUID) (*domain.Loan, error) {
	return s.setUrgency(ctx, userID, loanID, true)
}

// MarkNotUrgent clears the urgent flag.
func (s *LoanService) MarkNotUrgent(ctx context.Context, userID, loanID uuid.UUID) (*domain.Loan, error) {
	return s.setUrgency(ctx, userID, loanID, false)
}

func (s *LoanService) setUrgency(ctx context.Context, userID, loanID uuid.UUID, urgent bool) (*domain.Loan, error) {
	loan, err := s.getOwned(ctx, userID, loanID)
	if err != nil {
		return nil, err
	}

	loan.IsUrgent = urgent

	if err := s.updateOwned(ctx, loan); err != nil {
		return nil, err
	}

	return loan, nil
}

// DeleteLoan permanently removes the loan. There is no soft delete.
func (s *LoanService) DeleteLoan(ctx context.Context, userID, loanID uuid.UUID) error {
	if err := s.loanRepo.Delete(ctx, userID, loanID); err != nil {
		if apperrors.IsNotFound(err) {
			return err
		}
		return apperrors.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx, userID)
	return nil
}

// ListLoans retrieves every loan owned by the caller.
func (s *LoanService) ListLoans(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	loans, err := s.loanRepo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return loans, nil
}

// ListLoansByStatus retrieves the caller's loans in one lifecycle state.
func (s *LoanService) ListLoansByStatus(ctx context.Context, userID uuid.UUID, status domain.LoanStatus) ([]*domain.Loan, error) {
	if !status.Valid() {
		return nil, apperrors.WrapValidation(fmt.Sprintf("unknown loan status %q", status))
	}

	loans, err := s.loanRepo.ListByStatus(ctx, userID, status)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return loans, nil
}

// ListLoansByType retrieves the caller's loans in one direction.
func (s *LoanService) ListLoansByType(ctx context.Context, userID uuid.UUID, loanType domain.LoanType) ([]*domain.Loan, error) {
	if !loanType.Valid() {
		return nil, apperrors.WrapValidation(fmt.Sprintf("unknown loan type %q", loanType))
	}

	loans, err := s.loanRepo.ListByType(ctx, userID, loanType)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return loans, nil
}

// ListOverdueLoans retrieves ACTIVE loans past their due date.
func (s *LoanService) ListOverdueLoans(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	loans, err := s.loanRepo.ListOverdue(ctx, userID, s.now())
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return loans, nil
}

// ListDueSoonLoans retrieves ACTIVE loans whose due date falls within the
// configured window from now.
func (s *LoanService) ListDueSoonLoans(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	now := s.now()
	to := now.AddDate(0, 0, s.config.Business.DueSoonDays)

	loans, err := s.loanRepo.ListDueSoon(ctx, userID, now, to)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return loans, nil
}

// ListReminderDueLoans retrieves loans with an enabled reminder that has come due.
func (s *LoanService) ListReminderDueLoans(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	loans, err := s.loanRepo.ListReminderDue(ctx, userID, s.now())
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return loans, nil
}

// Summary computes the aggregate lent/borrowed view for dashboards and
// net-worth reports. The result is cached per owner and invalidated by every
// mutating loan operation.
func (s *LoanService) Summary(ctx context.Context, userID uuid.UUID) (*domain.LoanSummary, error) {
	if cached := s.cachedSummary(ctx, userID); cached != nil {
		return cached, nil
	}

	loans, err := s.loanRepo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	now := s.now()
	summary := &domain.LoanSummary{
		TotalLent:     decimal.Zero,
		TotalBorrowed: decimal.Zero,
	}

	for _, loan := range loans {
		active := loan.Status == domain.LoanStatusActive || loan.Status == domain.LoanStatusPartiallyPaid
		overdue := loan.IsOverdue(now) || loan.Status == domain.LoanStatusOverdue

		switch loan.Type {
		case domain.LoanTypeLent:
			summary.TotalLent = summary.TotalLent.Add(loan.PrincipalAmount)
			if active {
				summary.ActiveLentCount++
			}
			if overdue {
				summary.OverdueLentCount++
			}
		case domain.LoanTypeBorrowed:
			summary.TotalBorrowed = summary.TotalBorrowed.Add(loan.PrincipalAmount)
			if active {
				summary.ActiveBorrowedCount++
			}
			if overdue {
				summary.OverdueBorrowedCount++
			}
		}
	}

	summary.NetPosition = summary.TotalLent.Sub(summary.TotalBorrowed)

	s.cacheSummary(ctx, userID, summary)
	return summary, nil
}

// FlagOverdueLoans persists the OVERDUE status on every ACTIVE loan past its
// due date, across all owners. Run by the daily scheduler sweep; reads keep
// using the derived predicate regardless.
func (s *LoanService) FlagOverdueLoans(ctx context.Context) (int64, error) {
	count, err := s.loanRepo.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, apperrors.WrapDatabaseError(err)
	}

	if count > 0 {
		s.logger.Info().Int64("flagged", count).Msg("loans flagged overdue")
	}
	return count, nil
}

// ScanReminders logs every loan whose reminder has come due, across all
// owners. Run daily by the scheduler; the notification transport lives outside
// this module.
func (s *LoanService) ScanReminders(ctx context.Context) (int, error) {
	loans, err := s.loanRepo.ListAllReminderDue(ctx, s.now())
	if err != nil {
		return 0, apperrors.WrapDatabaseError(err)
	}

	for _, loan := range loans {
		s.logger.Info().
			Str("loan_id", loan.ID.String()).
			Str("user_id", loan.UserID.String()).
			Str("counterparty", loan.CounterpartyName).
			Str("remaining", loan.RemainingAmount.String()).
			Msg("loan reminder due")
	}

	return len(loans), nil
}

func (s *LoanService) getOwned(ctx context.Context, userID, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, userID, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapLoanNotFound(loanID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}
	return loan, nil
}

func (s *LoanService) updateOwned(ctx context.Context, loan *domain.Loan) error {
	if err := s.loanRepo.Update(ctx, loan); err != nil {
		if apperrors.IsConflict(err) {
			return err
		}
		return apperrors.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx, loan.UserID)
	return nil
}

func loanSummaryKey(userID uuid.UUID) string {
	return fmt.Sprintf("loan:summary:%s", userID)
}

func (s *LoanService) cachedSummary(ctx context.Context, userID uuid.UUID) *domain.LoanSummary {
	if s.redis == nil {
		return nil
	}

	raw, err := s.redis.Get(ctx, loanSummaryKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug().Err(err).Msg("summary cache read failed")
		}
		return nil
	}

	var summary domain.LoanSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *LoanService) cacheSummary(ctx context.Context, userID uuid.UUID, summary *domain.LoanSummary) {
	if s.redis == nil {
		return
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, loanSummaryKey(userID), raw, s.config.GetSummaryTTL()).Err(); err != nil {
		s.logger.Debug().Err(err).Msg("summary cache write failed")
	}
}

func (s *LoanService) invalidateSummary(ctx context.Context, userID uuid.UUID) {
	if s.redis == nil {
		return
	}

	if err := s.redis.Del(ctx, loanSummaryKey(userID)).Err(); err != nil {
		s.logger.Debug().Err(err).Msg("summary cache invalidation failed")
	}
}
