// Package main is the entry point of the API server.
package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/BahMbeirik/Dossiers-Medicaux/config"
	"github.com/BahMbeirik/Dossiers-Medicaux/internal/handler"
	"github.com/BahMbeirik/Dossiers-Medicaux/internal/infra"
	"github.com/BahMbeirik/Dossiers-Medicaux/internal/repository"
	"github.com/BahMbeirik/Dossiers-Medicaux/internal/sealing"
	"github.com/BahMbeirik/Dossiers-Medicaux/internal/usecase"
)

func main() {
	ctx := context.Background()

	// Load .env if present; existing environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()

	var logLevel slog.Level
	switch cfg.LogLevel {
	case "DEBUG":
		logLevel = slog.LevelDebug
	case "WARN":
		logLevel = slog.LevelWarn
	case "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	// Tracer must be up before the logger so trace IDs attach to records.
	tp, err := infra.InitTracer(ctx, cfg)
	if err != nil {
		slog.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				slog.Error("failed to shutdown tracer", "error", err)
			}
		}()
	}

	infra.SetupLogger(cfg, logLevel)

	// The document key is loaded once and must be exactly 32 bytes; the
	// server refuses to start with a bad key rather than seal anything
	// under it. The key is never logged.
	key, err := base64.StdEncoding.DecodeString(cfg.AESKey)
	if err != nil {
		slog.Error("AES_KEY is not valid base64")
		os.Exit(1)
	}
	if len(key) != sealing.KeySize {
		slog.Error("AES_KEY must decode to exactly 32 bytes", "got", len(key))
		os.Exit(1)
	}

	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is not set")
		os.Exit(1)
	}
	db, err := infra.NewDB(cfg.DatabaseURL, cfg)
	if err != nil {
		slog.Error("failed to init database", "error", err)
		os.Exit(1)
	}

	ledger, err := infra.NewLedgerClient(ctx, cfg)
	if err != nil {
		slog.Error("failed to init ledger client", "error", err)
		os.Exit(1)
	}
	defer ledger.Close()

	// DI
	docRepo := repository.NewDocumentRepository(db)
	refRepo := repository.NewReferenceRepository(db)
	docService, err := usecase.NewDocumentService(docRepo, ledger, key)
	if err != nil {
		slog.Error("failed to init document service", "error", err)
		os.Exit(1)
	}
	refService := usecase.NewReferenceService(refRepo)
	dh := handler.NewDocumentHandler(docService)
	rh := handler.NewReferenceHandler(refService)
	router := handler.NewRouter(dh, rh, cfg)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
