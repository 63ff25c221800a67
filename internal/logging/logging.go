// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the structured logger used by every package.
//
// The terminal belongs to the chat view, so logs are written to a file.
// Packages obtain a scoped logger with Module:
//
//	log := logging.Module("transport")
//	log.Warn().Err(err).Msg("reconnect failed")
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	root   = zerolog.Nop()
	closer io.Closer
)

// Init configures the root logger at the given level, writing to path.
// An empty path or the "disabled" level discards all output.
func Init(level, path string) error {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	if path == "" || lvl == zerolog.Disabled {
		Set(zerolog.Nop(), nil)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	Set(zerolog.New(f).Level(lvl).With().Timestamp().Logger(), f)
	return nil
}

// Set replaces the root logger. c, if non-nil, is closed by Close.
func Set(l zerolog.Logger, c io.Closer) {
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	root = l
	closer = c
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	root = zerolog.Nop()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

// Module returns a logger with a module field for scoped logging.
func Module(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With().Str("module", name).Logger()
}
