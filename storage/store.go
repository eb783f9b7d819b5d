// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package storage provides the durable key-value stores the persisted
// player preferences live in.
package storage

import (
	"context"
	"errors"
)

// DefaultKey is the record key shared by every player using a store.
const DefaultKey = "persist-controls"

const probeKey = "persist-controls-probe"

// ErrUnknownBackend is returned by Open for unsupported backend names.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Store is a synchronous string key-value store.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Probe reports whether s is usable by writing and deleting a test key.
func Probe(ctx context.Context, s Store) bool {
	if s == nil {
		return false
	}
	if err := s.Set(ctx, probeKey, probeKey); err != nil {
		return false
	}
	return s.Delete(ctx, probeKey) == nil
}
