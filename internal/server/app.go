// Package server initializes and runs the main application server. It opens
// the database, runs migrations, wires the account, proof, and extraction
// services, and starts the HTTP API with graceful shutdown: on termination
// every live session wallet is closed before the process exits.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/proofpay/internal/logging"
	"github.com/dmitrijs2005/proofpay/internal/server/accounts"
	"github.com/dmitrijs2005/proofpay/internal/server/config"
	"github.com/dmitrijs2005/proofpay/internal/server/extraction"
	"github.com/dmitrijs2005/proofpay/internal/server/httpapi"
	"github.com/dmitrijs2005/proofpay/internal/server/proofs"
	"github.com/dmitrijs2005/proofpay/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/proofpay/internal/server/sessions"
	"github.com/dmitrijs2005/proofpay/internal/server/storage"
	"github.com/dmitrijs2005/proofpay/internal/wallet"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	registry *sessions.Registry
	api      *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	registry := sessions.NewRegistry(logger)
	factory := wallet.NewRemoteFactory(c.WalletDaemonURL, c.WalletTimeout)

	accountService := accounts.NewService(db, rm, factory, registry, logger)
	proofService := proofs.NewService(proofs.NewRemoteProver(c.ProverURL, c.ProverTimeout), logger)
	extractor := extraction.NewGeminiExtractor(c.GeminiBaseURL, c.GeminiAPIKey, c.GeminiModel, logger)

	archive := storage.NewArchive(storage.Settings{
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
		Region:       c.S3Region,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	}, logger)

	api := httpapi.NewServer(c.EndpointAddr, accountService, proofService, extractor, archive,
		registry, c.SessionSecret, c.SessionTokenValidityDuration, logger)

	return &App{config: c, logger: logger, db: db, registry: registry, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the HTTP API until the context is cancelled or a termination
// signal arrives, then drains requests, closes every session wallet, and
// releases the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")
	app.initSignalHandler(cancelFunc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.api.Run()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			app.logger.Error(ctx, "http api failed", "error", err.Error())
		}
	}

	app.shutdown()
}

func (app *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	app.logger.Info(ctx, "shutting down")

	if err := app.api.Shutdown(ctx); err != nil {
		app.logger.Error(ctx, "http api shutdown", "error", err.Error())
	}

	// wallet resources must not outlive the process
	app.registry.Cleanup(ctx)

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing db", "error", err.Error())
	}

	app.logger.Info(ctx, "shutdown complete")
}
