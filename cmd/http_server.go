package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/devrahi999/ihntopup/internal"
	"github.com/devrahi999/ihntopup/internal/admin"
	adminrepo "github.com/devrahi999/ihntopup/internal/admin/postgres"
	"github.com/devrahi999/ihntopup/internal/auth"
	authrepo "github.com/devrahi999/ihntopup/internal/auth/postgres"
	"github.com/devrahi999/ihntopup/internal/catalog"
	catalogrepo "github.com/devrahi999/ihntopup/internal/catalog/postgres"
	"github.com/devrahi999/ihntopup/internal/core/events"
	gatewayclient "github.com/devrahi999/ihntopup/internal/gateway"
	"github.com/devrahi999/ihntopup/internal/order"
	orderrepo "github.com/devrahi999/ihntopup/internal/order/postgres"
	"github.com/devrahi999/ihntopup/internal/reconcile"
	reconcilerepo "github.com/devrahi999/ihntopup/internal/reconcile/postgres"
	"github.com/devrahi999/ihntopup/internal/support"
	supportrepo "github.com/devrahi999/ihntopup/internal/support/postgres"
	"github.com/devrahi999/ihntopup/internal/transport"
	"github.com/devrahi999/ihntopup/internal/transport/rest"
	"github.com/devrahi999/ihntopup/internal/transport/swagger"
	"github.com/devrahi999/ihntopup/internal/user"
	userrepo "github.com/devrahi999/ihntopup/internal/user/postgres"
	"github.com/devrahi999/ihntopup/internal/wallet"
	walletrepo "github.com/devrahi999/ihntopup/internal/wallet/postgres"
	"github.com/devrahi999/ihntopup/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	GormDB     *gorm.DB
	Router     *chi.Mux
	Logger     *slog.Logger
	Reconciler *reconcile.Service
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	// Broken API documents should fail loudly at boot, not in the UI.
	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		deps.Logger.Warn("openapi spec validation failed", "error", err)
	}

	sweepStop := startSweepLoop(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		close(sweepStop)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

// startSweepLoop runs the stale-intent sweep on its interval until the
// returned channel is closed.
func startSweepLoop(deps *Dependencies) chan struct{} {
	stop := make(chan struct{})
	interval := deps.Config.Reconcile.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	staleAfter := deps.Config.Reconcile.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				result, err := deps.Reconciler.SweepStale(ctx, staleAfter)
				cancel()
				if err != nil {
					deps.Logger.Error("stale intent sweep failed", "error", err)
					continue
				}
				if result.Examined > 0 {
					deps.Logger.Info("stale intent sweep finished",
						"examined", result.Examined,
						"committed", result.Committed,
						"cancelled", result.Cancelled)
				}
			case <-stop:
				return
			}
		}
	}()

	return stop
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm over pgx pool: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	gatewayBase, err := url.Parse(config.Gateway.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway base url: %w", err)
	}
	gwClient := gatewayclient.NewClient(gatewayclient.Config{
		BaseURL:         config.Gateway.BaseURL,
		APIKey:          config.Gateway.APIKey,
		ClientHost:      gatewayBase.Host,
		CheckoutTimeout: config.Gateway.CheckoutTimeout,
		VerifyTimeout:   config.Gateway.VerifyTimeout,
	}, lg)

	ledger := reconcilerepo.NewLedgerRepository(gormDB)
	reconciler := reconcile.NewService(ledger, gwClient, eventBus, reconcile.ServiceConfig{
		CommitRetries: config.Reconcile.CommitRetries,
		SeenCacheSize: config.Reconcile.SeenCacheSize,
		SuccessURL:    config.Gateway.SuccessURL(),
		CancelURL:     config.Gateway.CancelURL(),
		WebhookURL:    config.Gateway.WebhookURL(),
	}, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authrepo.NewRepository(gormDB), tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	userService := user.NewService(userrepo.NewRepository(gormDB))
	userHandler := user.NewHandler(userService)

	catalogRepo := catalogrepo.NewRepository(gormDB)
	catalogService := catalog.NewService(catalogRepo, lg)
	catalogHandler := catalog.NewHandler(catalogService, lg)

	walletService := wallet.NewService(walletrepo.NewRepository(gormDB), reconciler, lg)
	walletHandler := wallet.NewHandler(walletService, lg)

	orderRepo := orderrepo.NewRepository(gormDB)
	orderService := order.NewService(orderRepo, catalogRepo, reconciler, lg)
	orderHandler := order.NewHandler(orderService, lg)

	supportService := support.NewService(supportrepo.NewRepository(gormDB), lg)
	supportHandler := support.NewHandler(supportService, lg)

	adminService := admin.NewService(adminrepo.NewRepository(gormDB), lg)
	adminHandler := admin.NewHandler(adminService, lg)

	// Fulfillment reacts to committed payments through the event bus.
	order.NewEventHandler(orderRepo, lg).RegisterEventHandlers(eventBus)

	baseHandler := transport.NewBaseHandler(lg)
	reconcileHandler := reconcile.NewHandler(reconciler, lg)
	webhookHandler := reconcile.NewWebhookHandler(baseHandler, reconciler, lg)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Auth:      authHandler,
		User:      userHandler,
		Catalog:   catalogHandler,
		Wallet:    walletHandler,
		Order:     orderHandler,
		Support:   supportHandler,
		Admin:     adminHandler,
		Reconcile: reconcileHandler,
		Webhook:   webhookHandler,
	}, lg)

	return &Dependencies{
		Config:     config,
		Logger:     lg,
		DB:         db,
		GormDB:     gormDB,
		Router:     router,
		Reconciler: reconciler,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
