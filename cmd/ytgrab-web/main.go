package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iconidentify/ytgrab/internal/api"
	"github.com/iconidentify/ytgrab/internal/api/handler"
	"github.com/iconidentify/ytgrab/internal/config"
	"github.com/iconidentify/ytgrab/internal/logging"
	"github.com/iconidentify/ytgrab/internal/session"
	"github.com/iconidentify/ytgrab/internal/viewmodel"
	"github.com/iconidentify/ytgrab/pkg/backend"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ytgrab-web %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, logCloser, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("starting ytgrab-web",
		"version", Version,
		"build_time", BuildTime,
		"backend_url", cfg.Backend.BaseURL,
	)

	// Initialize dependencies
	client := backend.NewClient(backend.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout,
		RateLimit: cfg.Backend.RateLimit,
		RateBurst: cfg.Backend.RateBurst,
		UserAgent: cfg.Backend.UserAgent,
	}, logger)

	store := session.NewStore(func() *viewmodel.ViewModel {
		// The browser navigates itself; the page carries the download URL.
		return viewmodel.New(client, nil, logger)
	}, cfg.Session.TTL, logger)

	if err := store.StartSweeper(cfg.Session.SweepSchedule); err != nil {
		logger.Error("failed to start session sweeper", "error", err)
		os.Exit(1)
	}

	// Fetches outlive the request that started them, but not the process.
	fetchCtx, cancelFetches := context.WithCancel(context.Background())

	// Initialize handlers
	uiHandler := handler.NewUIHandler(fetchCtx, cfg.Server.SubmitWait, logger)
	healthHandler := handler.NewHealthHandler(store, client.BaseURL())

	// Setup router
	router := api.NewRouter(uiHandler, healthHandler, store, cfg.Session.CookieName, logger)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Stop accepting new requests
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Abandon pending fetches and stop the sweeper
	cancelFetches()
	store.Stop()

	logger.Info("shutdown complete")
}
