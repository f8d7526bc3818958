// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/leseb/tabconv/pkg/adapters/http"
	"github.com/leseb/tabconv/pkg/core/config"
	"github.com/leseb/tabconv/pkg/core/services"
	"github.com/leseb/tabconv/pkg/filestore"
	"github.com/leseb/tabconv/pkg/observability/logging"
	"github.com/leseb/tabconv/pkg/observability/metrics"
	"github.com/leseb/tabconv/pkg/renderer"
	"github.com/leseb/tabconv/pkg/storage"

	_ "github.com/leseb/tabconv/pkg/filestore/filesystem"
	_ "github.com/leseb/tabconv/pkg/filestore/memory"
	_ "github.com/leseb/tabconv/pkg/filestore/s3"
	_ "github.com/leseb/tabconv/pkg/storage/memory"
	_ "github.com/leseb/tabconv/pkg/storage/postgres"
	_ "github.com/leseb/tabconv/pkg/storage/sqlite"
)

var (
	// Version is set via ldflags during build
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	port := flag.Int("port", 0, "HTTP port to listen on (overrides config)")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("tabconv server\nVersion: %s\nBuild Time: %s\n", Version, BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, cfgErr := config.Load(*configPath)
	if cfgErr != nil {
		cfg = config.Default()
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logger.Info("Starting tabconv server",
		"version", Version,
		"build_time", BuildTime)
	if cfgErr != nil {
		logger.Warn("Failed to load config, using defaults", "path", *configPath, "error", cfgErr)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	initCtx := context.Background()

	// Conversion journal
	var journal storage.Store
	if cfg.Journal.Type != "none" {
		j, err := storage.Providers.New(initCtx, cfg.Journal.Type, cfg.Journal.Params())
		if err != nil {
			logger.Error("Failed to initialize conversion journal", "type", cfg.Journal.Type, "error", err)
			os.Exit(1)
		}
		defer j.Close()
		journal = j
		logger.Info("Initialized conversion journal", "type", cfg.Journal.Type)
	}

	// Result archive
	var archive filestore.FileStore
	if cfg.Archive.Type != "" {
		a, err := filestore.Providers.New(initCtx, cfg.Archive.Type, cfg.Archive.Params())
		if err != nil {
			logger.Error("Failed to initialize result archive", "type", cfg.Archive.Type, "error", err)
			os.Exit(1)
		}
		defer a.Close(context.Background())
		archive = a
		logger.Info("Initialized result archive", "type", cfg.Archive.Type)
	}

	var m *metrics.Metrics
	opts := httpAdapter.Options{MaxUploadBytes: cfg.Server.MaxUploadBytes}
	if cfg.Metrics.Enabled {
		m = metrics.New()
		opts.Metrics = m.Handler()
	}

	svc := services.NewConversionService(logger, renderer.New(cfg.PDF), journal, archive, m)
	handler := httpAdapter.New(logger, svc, opts)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server error", "error", err)
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
		return
	}

	logger.Info("Server stopped gracefully")
}
