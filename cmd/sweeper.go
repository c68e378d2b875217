package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/devrahi999/ihntopup/internal/core/events"
	gatewayclient "github.com/devrahi999/ihntopup/internal/gateway"
	"github.com/devrahi999/ihntopup/internal/reconcile"
	reconcilerepo "github.com/devrahi999/ihntopup/internal/reconcile/postgres"
	"github.com/devrahi999/ihntopup/pkg/logger"
)

// sweeperCmd runs the stale-intent sweep as its own process, for
// deployments that keep background work out of the API servers.
var sweeperCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Run the stale payment intent sweeper",
	Long:  `Periodically re-verify pending payment intents against the gateway and settle or cancel the stale ones.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSweeper(); err != nil {
			fmt.Fprintf(os.Stderr, "sweeper failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func runSweeper() error {
	config, err := loadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to open gorm over pgx pool: %w", err)
	}

	gatewayBase, err := url.Parse(config.Gateway.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid gateway base url: %w", err)
	}
	gwClient := gatewayclient.NewClient(gatewayclient.Config{
		BaseURL:         config.Gateway.BaseURL,
		APIKey:          config.Gateway.APIKey,
		ClientHost:      gatewayBase.Host,
		CheckoutTimeout: config.Gateway.CheckoutTimeout,
		VerifyTimeout:   config.Gateway.VerifyTimeout,
	}, lg)

	eventBus := events.NewEventBus(lg)
	ledger := reconcilerepo.NewLedgerRepository(gormDB)
	reconciler := reconcile.NewService(ledger, gwClient, eventBus, reconcile.ServiceConfig{
		CommitRetries: config.Reconcile.CommitRetries,
		SeenCacheSize: config.Reconcile.SeenCacheSize,
		SuccessURL:    config.Gateway.SuccessURL(),
		CancelURL:     config.Gateway.CancelURL(),
		WebhookURL:    config.Gateway.WebhookURL(),
	}, lg)

	interval := config.Reconcile.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	staleAfter := config.Reconcile.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}

	lg.Info("sweeper started", "interval", interval, "stale_after", staleAfter)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			result, err := reconciler.SweepStale(ctx, staleAfter)
			cancel()
			if err != nil {
				lg.Error("stale intent sweep failed", "error", err)
				continue
			}
			lg.Info("stale intent sweep finished",
				"examined", result.Examined,
				"committed", result.Committed,
				"cancelled", result.Cancelled)
		case sig := <-sigChan:
			lg.Info("sweeper shutting down", "signal", sig)
			return nil
		}
	}
}
