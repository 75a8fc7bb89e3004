package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"

	"circuitpy-sync/internal/config"
	"circuitpy-sync/internal/logger"
	"circuitpy-sync/internal/sync"
	"circuitpy-sync/internal/tui"
	"circuitpy-sync/pkg/models"
)

const version = "1.0.0"

func main() {
	var (
		configFile  = flag.String("config", "", "Configuration file path (JSON, YAML or TOML)")
		source      = flag.String("source", "", "Source directory (overrides config)")
		target      = flag.String("target", "", "Target device directory (overrides config)")
		interactive = flag.Bool("tui", false, "Show the live sync dashboard")
		once        = flag.Bool("once", false, "Run the initial sync and exit")
		debug       = flag.Bool("debug", false, "Enable debug logging")
		showVersion = flag.Bool("version", false, "Show version")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("circuitpy-sync version %s\n", version)
		return
	}

	logger := logger.New()
	defer logger.Close()

	cfg := loadConfig(*configFile)
	if *source != "" {
		cfg.SourceDir = *source
	}
	if *target != "" {
		cfg.TargetDir = *target
	}
	if *debug {
		cfg.Debug = true
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.LogFile != "" {
		if err := logger.SetLogFile(cfg.LogFile); err != nil {
			log.Printf("Failed to set log file: %v", err)
		}
	}

	if cfg.Debug {
		logger.SetLevel(0) // DEBUG level
	}

	syncer := sync.New(cfg, logger)

	switch {
	case *interactive:
		logger.SetConsoleOutput(io.Discard)
		app := tui.New(syncer, logger)
		if err := app.Run(); err != nil {
			log.Fatal(err)
		}
	case *once:
		if _, failed := syncer.InitialSync(context.Background()); failed > 0 {
			log.Fatalf("%d files failed to sync", failed)
		}
	default:
		if err := syncer.Start(); err != nil {
			log.Fatal(err)
		}
	}
}

// loadConfig falls back to the built-in defaults when no file is given or the
// file cannot be loaded.
func loadConfig(path string) *models.Config {
	if path == "" {
		return config.New()
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return config.New()
	}
	return cfg
}
