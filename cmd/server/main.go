package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aldisetia/obligation-engine/internal/config"
	"github.com/aldisetia/obligation-engine/internal/handler"
	"github.com/aldisetia/obligation-engine/internal/repository"
	"github.com/aldisetia/obligation-engine/internal/service"
	"github.com/aldisetia/obligation-engine/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg)

	db, err := initDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	if err := runMigrations(cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	loanRepo := repository.NewLoanRepository(db)
	expenseRepo := repository.NewRecurringExpenseRepository(db)
	ledger := repository.NewAccountLedger()
	journal := repository.NewTransactionJournal()
	txRunner := repository.NewTxRunner(db)

	loanService := service.NewLoanService(loanRepo, ledger, journal, txRunner, redisClient, cfg, log.Logger)
	expenseService := service.NewRecurringExpenseService(expenseRepo, ledger, journal, txRunner, redisClient, cfg, log.Logger)

	loanHandler := handler.NewLoanHandler(loanService)
	expenseHandler := handler.NewRecurringExpenseHandler(expenseService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(loanHandler, expenseHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      response.LoggingMiddleware(router),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
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

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func runMigrations(cfg *config.Config, db *sqlx.DB) error {
	driver, err := migratepg.WithInstance(db.DB, &migratepg.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.Database.MigrationsPath, "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	loanHandler *handler.LoanHandler,
	expenseHandler *handler.RecurringExpenseHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/loans", loanHandler.Create).Methods("POST")
	api.HandleFunc("/loans", loanHandler.List).Methods("GET")
	api.HandleFunc("/loans/summary", loanHandler.Summary).Methods("GET")
	api.HandleFunc("/loans/overdue", loanHandler.Overdue).Methods("GET")
	api.HandleFunc("/loans/due-soon", loanHandler.DueSoon).Methods("GET")
	api.HandleFunc("/loans/{loanId}", loanHandler.Get).Methods("GET")
	api.HandleFunc("/loans/{loanId}", loanHandler.Update).Methods("PUT")
	api.HandleFunc("/loans/{loanId}", loanHandler.Delete).Methods("DELETE")
	api.HandleFunc("/loans/{loanId}/payment", loanHandler.RecordPayment).Methods("POST")
	api.HandleFunc("/loans/{loanId}/urgent", loanHandler.MarkUrgent).Methods("POST")
	api.HandleFunc("/loans/{loanId}/urgent", loanHandler.MarkNotUrgent).Methods("DELETE")

	api.HandleFunc("/recurring-expenses", expenseHandler.Create).Methods("POST")
	api.HandleFunc("/recurring-expenses", expenseHandler.List).Methods("GET")
	api.HandleFunc("/recurring-expenses/summary", expenseHandler.Summary).Methods("GET")
	api.HandleFunc("/recurring-expenses/due-today", expenseHandler.DueToday).Methods("GET")
	api.HandleFunc("/recurring-expenses/overdue", expenseHandler.Overdue).Methods("GET")
	api.HandleFunc("/recurring-expenses/due-soon", expenseHandler.DueSoon).Methods("GET")
	api.HandleFunc("/recurring-expenses/auto-pay", expenseHandler.AutoPay).Methods("GET")
	api.HandleFunc("/recurring-expenses/{expenseId}", expenseHandler.Get).Methods("GET")
	api.HandleFunc("/recurring-expenses/{expenseId}", expenseHandler.Update).Methods("PUT")
	api.HandleFunc("/recurring-expenses/{expenseId}", expenseHandler.Delete).Methods("DELETE")
	api.HandleFunc("/recurring-expenses/{expenseId}/pay", expenseHandler.MarkAsPaid).Methods("POST")
	api.HandleFunc("/recurring-expenses/{expenseId}/pause", expenseHandler.Pause).Methods("POST")
	api.HandleFunc("/recurring-expenses/{expenseId}/resume", expenseHandler.Resume).Methods("POST")
	api.HandleFunc("/recurring-expenses/{expenseId}/cancel", expenseHandler.Cancel).Methods("POST")

	return router
}
