// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

// Package logging provides the process-wide zerolog logger for ArNScope.
//
// Every package logs through this one logger so that output format, level and
// field names are consistent across the store, the aggregation engine, the
// event bus and the HTTP layer. Each entry carries time, level, service and
// message fields.
//
// # Quick Start
//
//	logging.Init(logging.ConfigFrom(cfg.Logging))
//
//	logging.Info().Int("records", n).Msg("Seed loaded")
//	logging.Err(err).Str("operation", "analytics").Msg("Aggregation failed")
//	logging.Ctx(ctx).Debug().Msg("Handling request")
//
// Adapters expose the same logger to libraries with their own logging
// interfaces: SlogHandler for log/slog consumers such as sutureslog, and
// WatermillAdapter for the in-process event bus.
//
// Always terminate an event with Msg or Send; an unterminated event is dropped.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/arnscope/internal/config"
)

// DefaultService is the service field when Config.Service is empty.
const DefaultService = "arnscope"

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error, fatal, panic, disabled.
	Level string

	// Format is json (default) or console.
	Format string

	// Caller adds file:line to every entry.
	Caller bool

	// Service names the process in every entry.
	Service string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// ConfigFrom converts the logging section of the application config.
func ConfigFrom(cfg config.LoggingConfig) Config {
	return Config{Level: cfg.Level, Format: cfg.Format, Caller: cfg.Caller}
}

var (
	mu     sync.RWMutex
	global zerolog.Logger
)

//nolint:gochecknoinits // logging must work before main calls Init
func init() {
	global = build(Config{})
}

// Init replaces the global logger. Safe to call more than once.
func Init(cfg Config) {
	l := build(cfg)
	mu.Lock()
	global = l
	mu.Unlock()
}

func build(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	service := cfg.Service
	if service == "" {
		service = DefaultService
	}

	c := zerolog.New(out).With().Timestamp().Str("service", service)
	if cfg.Caller {
		c = c.Caller()
	}
	return c.Logger()
}

// parseLevel maps a level name to zerolog.Level. Unknown names map to info.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// SetLevel changes the global level by name.
func SetLevel(level string) {
	zerolog.SetGlobalLevel(parseLevel(level))
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// SetLogger replaces the global logger. Tests use it to capture output.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}

func current() *zerolog.Logger {
	l := Logger()
	return &l
}

// Debug starts a debug level event.
func Debug() *zerolog.Event { return current().Debug() }

// Info starts an info level event.
func Info() *zerolog.Event { return current().Info() }

// Warn starts a warn level event.
func Warn() *zerolog.Event { return current().Warn() }

// Error starts an error level event.
func Error() *zerolog.Event { return current().Error() }

// Fatal starts a fatal level event. os.Exit(1) runs after Msg.
func Fatal() *zerolog.Event { return current().Fatal() }

// Err starts an error level event carrying err. A nil err logs at info.
func Err(err error) *zerolog.Event { return current().Err(err) }

// NewTestLogger returns a JSON logger writing to w.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
