package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kartoza/byproduct-exchange/internal/config"
	"github.com/kartoza/byproduct-exchange/internal/logging"
	"github.com/kartoza/byproduct-exchange/internal/server"
)

var version = "dev"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to a YAML config file (default: search CONFIG_PATH and standard locations)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dataDir := flag.String("data-dir", "", "Directory containing the CSV datasets (overrides config)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Byproduct Exchange v%s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Explicit flags take priority over file and environment
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}
	cfg.Version = version
	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Int("port", cfg.Server.Port).
		Str("source", cfg.Data.Source).
		Str("data_dir", cfg.Data.Dir).
		Msg("Byproduct Exchange starting")

	srv, err := server.New(*cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create server")
	}

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Server error")
		}
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
		if err := srv.Stop(); err != nil {
			logging.Error().Err(err).Msg("Error during shutdown")
		}
	}
}
