// Package main is the entry point for the trade journal server.
//
// The application records trades, imports broker CSV exports and serves
// aggregate performance metrics over a small JSON API:
// - Repository pattern for data access (SQLite or in-memory)
// - Service layer for P&L derivation and metric aggregation
// - HTTP handlers for API endpoints
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"tradejournal/internal/config"
	"tradejournal/internal/database"
	"tradejournal/internal/modules/importer"
	"tradejournal/internal/modules/journal"
	"tradejournal/internal/modules/journal/handlers"
	"tradejournal/internal/server"
	"tradejournal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("backend", cfg.StorageBackend).
		Str("data_dir", cfg.DataDir).
		Bool("dev_mode", cfg.DevMode).
		Msg("Starting trade journal")

	// Pick the trade repository per configured backend. The in-memory
	// backend is for development and demos; SQLite is the default.
	var (
		repo journal.Repository
		db   *database.DB
	)
	switch cfg.StorageBackend {
	case config.BackendMemory:
		repo = journal.NewMemoryRepository()
	default:
		db, err = database.New(database.Config{
			Path: cfg.DatabasePath(),
			Name: "journal",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open database")
		}
		defer db.Close()

		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
		repo = journal.NewTradeRepository(db.Conn(), log)
	}

	journalSvc := journal.NewService(repo, log)
	importerSvc := importer.NewService(journalSvc, log)

	// Demo data so a fresh dev instance has something to show
	if cfg.DevMode && cfg.StorageBackend == config.BackendMemory {
		if err := journalSvc.SeedSampleTrades(); err != nil {
			log.Error().Err(err).Msg("Failed to seed sample trades")
		}
	}

	// Nightly WAL checkpoint keeps the journal file from growing
	// unbounded on long-running instances.
	var maintenance *cron.Cron
	if db != nil {
		maintenance = cron.New()
		if _, err := maintenance.AddFunc("15 3 * * *", func() {
			if err := db.WALCheckpoint("TRUNCATE"); err != nil {
				log.Error().Err(err).Msg("WAL checkpoint failed")
			}
		}); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule database maintenance")
		}
		maintenance.Start()
	}

	srv := server.New(server.Config{
		Log:      log,
		Config:   cfg,
		DB:       db,
		Handlers: handlers.NewHandler(journalSvc, importerSvc, log),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if maintenance != nil {
		maintenance.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
