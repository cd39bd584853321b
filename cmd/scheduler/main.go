package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aldisetia/obligation-engine/internal/config"
	"github.com/aldisetia/obligation-engine/internal/repository"
	"github.com/aldisetia/obligation-engine/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg)
	log.Info().Msg("starting obligation scheduler")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	loanRepo := repository.NewLoanRepository(db)
	expenseRepo := repository.NewRecurringExpenseRepository(db)
	ledger := repository.NewAccountLedger()
	journal := repository.NewTransactionJournal()
	txRunner := repository.NewTxRunner(db)

	loanService := service.NewLoanService(loanRepo, ledger, journal, txRunner, nil, cfg, log.Logger)
	expenseService := service.NewRecurringExpenseService(expenseRepo, ledger, journal, txRunner, nil, cfg, log.Logger)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scheduler timezone")
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))
	setupCronJobs(c, cfg, loanService, expenseService)

	c.Start()
	log.Info().Msg("scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down scheduler")
	<-c.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Logging.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, loans *service.LoanService, expenses *service.RecurringExpenseService) {
	// Daily sweep persisting OVERDUE on loans past their due date.
	if _, err := c.AddFunc(cfg.Scheduler.OverdueSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		count, err := loans.FlagOverdueLoans(ctx)
		if err != nil {
			log.Error().Err(err).Msg("overdue sweep failed")
			return
		}
		log.Info().Int64("flagged", count).Msg("overdue sweep complete")
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule overdue sweep")
	}

	// Daily reminder scan: loans with a due reminder and recurring expenses
	// entering their window.
	if _, err := c.AddFunc(cfg.Scheduler.ReminderSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		loanCount, err := loans.ScanReminders(ctx)
		if err != nil {
			log.Error().Err(err).Msg("loan reminder scan failed")
		}

		expenseCount, err := expenses.ScanReminders(ctx)
		if err != nil {
			log.Error().Err(err).Msg("expense reminder scan failed")
			return
		}
		log.Info().
			Int("loan_reminders", loanCount).
			Int("expense_reminders", expenseCount).
			Msg("reminder scan complete")
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule reminder scan")
	}
}
