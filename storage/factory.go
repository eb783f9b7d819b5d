// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package storage

import "fmt"

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Path is the JSON file, badger directory or sqlite database.
	Path  string
	Redis RedisConfig
}

// Open creates the Store for cfg.Backend. An empty backend means memory.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return OpenFileStore(cfg.Path)
	case BackendBadger:
		return OpenBadgerStore(cfg.Path)
	case BackendSQLite:
		return OpenSQLiteStore(cfg.Path)
	case BackendRedis:
		return OpenRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
