// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

// Package config loads ArNScope configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built into defaultConfig
//  2. Config File: optional YAML (config.yaml, or the path in CONFIG_PATH)
//  3. Environment Variables: mapped names only (see envTransformFunc)
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Store      StoreConfig      `koanf:"store"`
	Cache      CacheConfig      `koanf:"cache"`
	Engine     EngineConfig     `koanf:"engine"`
	Bridge     BridgeConfig     `koanf:"bridge"`
	Server     ServerConfig     `koanf:"server"`
	API        APIConfig        `koanf:"api"`
	Ingest     IngestConfig     `koanf:"ingest"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// StoreConfig configures the BadgerDB record store.
type StoreConfig struct {
	Path       string `koanf:"path"`
	InMemory   bool   `koanf:"in_memory"`   // ignore Path and keep everything in RAM
	SyncWrites bool   `koanf:"sync_writes"` // fsync every commit
}

// CacheConfig configures the expiring cache.
type CacheConfig struct {
	Backend       string        `koanf:"backend"` // memory or badger
	DefaultTTL    time.Duration `koanf:"default_ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// EngineConfig configures the aggregation engine.
type EngineConfig struct {
	ChunkSize  int `koanf:"chunk_size"`
	TopHolders int `koanf:"top_holders"`
	TopDomains int `koanf:"top_domains"`
}

// BridgeConfig configures the worker bridge request queue.
type BridgeConfig struct {
	QueueSize int `koanf:"queue_size"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// APIConfig holds pagination, rate limit and CORS settings.
type APIConfig struct {
	DefaultPageSize   int           `koanf:"default_page_size"`
	MaxPageSize       int           `koanf:"max_page_size"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// IngestConfig holds the optional startup seed.
type IngestConfig struct {
	SeedFile string `koanf:"seed_file"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig holds suture restart policy.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
