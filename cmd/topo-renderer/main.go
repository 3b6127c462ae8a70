// Package main is the entry point for the topo-renderer viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/krzyz/topo-renderer/internal/app"
	"github.com/krzyz/topo-renderer/internal/config"
	"github.com/krzyz/topo-renderer/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	opts := logger.DefaultOptions(cfg.Logging.LogFile)
	opts.Level = cfg.Logging.Level
	log := logger.New(opts)
	defer log.Sync()

	log.Info("=== topo-renderer ===")
	log.Sugar().Debugf("Config: %+v", cfg)

	// Write a starter config on first run so users have a file to edit
	if config.FindConfigFile() == "" {
		if err := config.Default().Save(); err != nil {
			log.Warn("writing default config", zap.Error(err))
		}
	}

	// Create and run the viewer
	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		log.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("viewer closed normally")
}
