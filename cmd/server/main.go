// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/arnscope/internal/api"
	"github.com/tomtom215/arnscope/internal/bridge"
	"github.com/tomtom215/arnscope/internal/cache"
	"github.com/tomtom215/arnscope/internal/config"
	"github.com/tomtom215/arnscope/internal/engine"
	"github.com/tomtom215/arnscope/internal/ingest"
	"github.com/tomtom215/arnscope/internal/logging"
	"github.com/tomtom215/arnscope/internal/store"
	"github.com/tomtom215/arnscope/internal/supervisor"
	"github.com/tomtom215/arnscope/internal/supervisor/services"
	ws "github.com/tomtom215/arnscope/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.ConfigFrom(cfg.Logging))

	logging.Info().
		Str("store_path", cfg.Store.Path).
		Bool("store_in_memory", cfg.Store.InMemory).
		Str("cache_backend", cfg.Cache.Backend).
		Int("chunk_size", cfg.Engine.ChunkSize).
		Msg("Starting ArNScope with supervisor tree")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("ArNScope exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	db, err := store.OpenDB(cfg.Store)
	if err != nil {
		return err
	}
	defer closeDB(db)

	records := store.New(db)

	c, err := cache.New(cfg.Cache, db)
	if err != nil {
		return err
	}

	eng := engine.New(cfg.Engine)
	agg, err := bridge.New(eng, cfg.Bridge)
	if err != nil {
		return err
	}
	defer func() {
		if err := agg.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing aggregation bridge")
		}
	}()

	wsHub := ws.NewHub()
	handler := api.NewHandler(records, agg, c, wsHub, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Cached views from a previous run are unreachable under the new epoch.
	handler.InvalidateCache(ctx)

	if cfg.Ingest.SeedFile != "" {
		if err := seed(ctx, records, cfg.Ingest.SeedFile); err != nil {
			return err
		}
	}

	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.API)))
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
		return err
	}

	// Data layer
	tree.AddDataService(services.NewCacheSweeperService(c, cfg.Cache.SweepInterval))

	// Messaging layer
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddMessagingService(services.NewEventForwarderService(ws.NewEventForwarder(agg, wsHub, ws.DefaultProgressRate)))
	logging.Info().Msg("WebSocket hub and event forwarder added to supervisor tree")

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Interface("services", tree.Services()).Msg("Supervisor tree assembled")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}

// seed loads the configured record file before the server starts. An empty
// store is filled directly; otherwise the file is merged.
func seed(ctx context.Context, st *store.Store, path string) error {
	batch, err := ingest.DecodeFile(path)
	if err != nil {
		return err
	}
	stats, err := ingest.NewLoader(st).Load(ctx, batch)
	if err != nil {
		return err
	}
	logging.Info().
		Str("file", path).
		Str("mode", stats.Mode).
		Int("total", stats.Total).
		Msg("Seed file loaded")
	return nil
}

func closeDB(db *badger.DB) {
	if err := db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing record store")
	}
}
