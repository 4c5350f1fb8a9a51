// ytgrab TUI - terminal client for the YouTube downloader backend.
// Fetches video details and opens downloads in the system browser.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/iconidentify/ytgrab/cmd/ytgrab-tui/internal/browser"
	"github.com/iconidentify/ytgrab/cmd/ytgrab-tui/internal/ui"
	"github.com/iconidentify/ytgrab/internal/config"
	"github.com/iconidentify/ytgrab/internal/logging"
	"github.com/iconidentify/ytgrab/internal/viewmodel"
	"github.com/iconidentify/ytgrab/pkg/backend"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ytgrab-tui %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "ytgrab-tui needs an interactive terminal")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs always go to a file.
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(os.TempDir(), "ytgrab-tui.log")
	}
	logger, logCloser, err := logging.New(cfg.Log, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	logger.Info("starting ytgrab-tui",
		"version", Version,
		"backend_url", cfg.Backend.BaseURL,
	)

	client := backend.NewClient(backend.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout,
		RateLimit: cfg.Backend.RateLimit,
		RateBurst: cfg.Backend.RateBurst,
		UserAgent: cfg.Backend.UserAgent,
	}, logger)

	vm := viewmodel.New(client, browser.NewOpener(os.Getenv("BROWSER")), logger)
	app := ui.NewApp(vm, client.BaseURL(), logger)

	if err := app.Run(); err != nil {
		logger.Error("tui exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
	logger.Info("ytgrab-tui stopped")
}
