// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package main provides the entry point for the mcp-drupal-server.
// The server answers Drupal documentation and automation requests from
// static docs, a live JSON:API backend, or both, with the operational
// mode decided at startup and adjusted as backend connectivity changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/Vincy69/mcp-drupal-server-sub001/internal/api"
	"github.com/Vincy69/mcp-drupal-server-sub001/internal/buildinfo"
	"github.com/Vincy69/mcp-drupal-server-sub001/internal/config"
	"github.com/Vincy69/mcp-drupal-server-sub001/internal/docs"
	"github.com/Vincy69/mcp-drupal-server-sub001/internal/drupal"
	"github.com/Vincy69/mcp-drupal-server-sub001/internal/logging"
	"github.com/Vincy69/mcp-drupal-server-sub001/internal/mode"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// init initializes the shared logger setup.
func init() {
	logging.Setup()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "config.yaml", "path to the configuration file")
		port        = flag.Int("port", 0, "override the listen port")
		debug       = flag.Bool("debug", false, "enable debug logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("mcp-drupal-server %s (commit %s, built %s)\n",
			buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)
		return nil
	}

	// A local .env is optional; environment wins over file values.
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded environment from .env")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *port > 0 {
		cfg.Port = *port
	}
	if *debug {
		cfg.Debug = true
	}

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if err := logging.ConfigureOutput(cfg.LoggingToFile, cfg.LogsDir, cfg.LogsMaxTotalSizeMB); err != nil {
		return err
	}

	log.Infof("mcp-drupal-server %s starting", buildinfo.Version)

	modeCfg, err := cfg.ModeCoordinatorConfig()
	if err != nil {
		return err
	}

	var backend *drupal.Client
	var prober mode.Prober
	if cfg.Drupal.BaseURL != "" {
		backend, err = drupal.NewClient(drupal.ClientConfig{
			BaseURL:  cfg.Drupal.BaseURL,
			Username: cfg.Drupal.Username,
			Password: cfg.Drupal.Password,
			Token:    cfg.Drupal.Token,
			Timeout:  modeCfg.ConnectTimeout,
		})
		if err != nil {
			return err
		}
		prober = backend
	}

	coordinator, err := mode.NewCoordinator(modeCfg, mode.NewRegistry(), prober)
	if err != nil {
		return err
	}
	coordinator.AddEventHandler(&mode.LogEventHandler{})
	defer coordinator.Destroy()

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	adopted, err := coordinator.Initialize(initCtx)
	cancelInit()
	if err != nil {
		return err
	}
	log.Infof("operating mode: %s", adopted)

	index, err := docs.LoadIndex()
	if err != nil {
		return err
	}

	var cache *docs.Cache
	if cfg.DocsCachePath != "" {
		retention := time.Duration(cfg.DocsCacheRetentionDays) * 24 * time.Hour
		cache, err = docs.OpenCache(cfg.DocsCachePath, retention)
		if err != nil {
			return err
		}
		defer cache.Close()
		if removed, err := cache.Sweep(); err != nil {
			log.Warnf("docs cache sweep: %v", err)
		} else if removed > 0 {
			log.Debugf("docs cache sweep removed %d pages", removed)
		}
	}

	server := api.NewServer(cfg, coordinator, backend, docs.NewService(index, cache))

	watcher := config.NewWatcher(*configPath, func(next *config.Config) {
		// Log level is the only setting applied without a restart.
		if next.Debug != cfg.Debug {
			if next.Debug {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.InfoLevel)
			}
			log.Infof("debug logging now %v", next.Debug)
		}
	})
	if err := watcher.Start(); err != nil {
		log.Warnf("config watcher unavailable: %v", err)
	} else {
		defer watcher.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Infof("received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("shutdown incomplete: %v", err)
	}
	return nil
}
