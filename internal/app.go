// internal/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "papertrade/internal/api"
	"papertrade/internal/api/handler"
	"papertrade/internal/config"
	"papertrade/internal/events"
	"papertrade/internal/quote"
	"papertrade/internal/repository"
	"papertrade/internal/repository/postgres"
	"papertrade/internal/service"
	"papertrade/internal/session"
	"papertrade/internal/util"
	"papertrade/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository        repository.UserRepository
	TransactionRepository repository.TransactionRepository
	DepositRepository     repository.DepositRepository

	// Collaborators
	Quotes    quote.Source
	Publisher events.Publisher
	Sessions  *session.Manager

	// Services
	AccountService   service.AccountService
	LedgerService    service.LedgerService
	PortfolioService service.PortfolioService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		app.Logger = util.GetLogger()
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.LogLevel)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database and build the core
	if err := app.InitializeCore(ctx); err != nil {
		return err
	}

	// 4. Sessions
	app.Sessions, err = session.NewManager(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		return fmt.Errorf("failed to initialize sessions: %w", err)
	}

	// 5. Initialize HTTP Handlers and Router
	app.HTTPHandler = router.NewRouter(router.Handlers{
		Auth:      handler.NewAuthHandler(app.AccountService, app.Sessions, app.Logger),
		Trade:     handler.NewTradeHandler(app.LedgerService, app.Logger),
		Portfolio: handler.NewPortfolioHandler(app.PortfolioService, app.Logger),
	}, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// InitializeCore connects to the database and builds repositories and
// services from an already loaded Config. The admin CLI stops here.
func (app *Application) InitializeCore(ctx context.Context) error {
	cfg := app.Config
	if app.Logger == nil {
		app.Logger = util.GetLogger()
	}

	database, err := db.NewPostgresDB(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, app.DB); err != nil {
			return err
		}
		app.Logger.Info("Database schema applied.")
	}

	// Initialize Repositories
	app.UserRepository = postgres.NewUserRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.DepositRepository = postgres.NewDepositRepository()
	app.Logger.Info("Repositories initialized.")

	app.Quotes, err = NewQuoteSource(cfg.Quote, app.Logger)
	if err != nil {
		return err
	}
	app.Publisher = NewPublisher(cfg.Kafka, app.Logger)

	// Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.AccountService = service.NewAccountService(app.DB, app.UserRepository, cfg.StartingCash, cfg.BcryptCost)
	app.LedgerService = service.NewLedgerService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.UserRepository,
		app.TransactionRepository,
		app.DepositRepository,
		app.Quotes,
		app.Publisher,
		app.Logger,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.PortfolioService = service.NewPortfolioService(
		app.DB,
		app.UserRepository,
		app.TransactionRepository,
		app.DepositRepository,
		app.Quotes,
	)
	app.Logger.Info("Services initialized.")
	return nil
}

// NewQuoteSource returns the fixed-price table when one is configured, and the
// Yahoo chart API otherwise.
func NewQuoteSource(cfg config.QuoteConfig, logger *slog.Logger) (quote.Source, error) {
	if cfg.StaticPrices != "" {
		prices, err := quote.ParseStaticPrices(cfg.StaticPrices)
		if err != nil {
			return nil, fmt.Errorf("invalid QUOTE_STATIC_PRICES: %w", err)
		}
		logger.Warn("Using static quote prices", "symbols", len(prices))
		return quote.NewStaticSource(prices), nil
	}
	return quote.NewYahooSource(cfg.BaseURL, cfg.Timeout, cfg.CacheTTL, logger), nil
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// no-op publisher otherwise.
func NewPublisher(cfg config.KafkaConfig, logger *slog.Logger) events.Publisher {
	if len(cfg.Brokers) == 0 {
		return events.NopPublisher{}
	}
	logger.Info("Publishing ledger events to Kafka", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return events.NewKafkaPublisher(cfg.Brokers, cfg.Topic)
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	var errs []error
	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			app.Logger.Error("Failed to close event publisher", "error", err)
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		} else {
			app.Logger.Info("Database connection closed.")
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
