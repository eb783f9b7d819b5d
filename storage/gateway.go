// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package storage

import "context"

// Gateway binds a Store to the single record key.
type Gateway struct {
	store Store
	key   string
}

func NewGateway(store Store, key string) *Gateway {
	if key == "" {
		key = DefaultKey
	}
	return &Gateway{store: store, key: key}
}

func (g *Gateway) Key() string {
	return g.key
}

// Available probes the underlying store. The result is not cached.
func (g *Gateway) Available(ctx context.Context) bool {
	return Probe(ctx, g.store)
}

func (g *Gateway) Read(ctx context.Context) (string, bool, error) {
	return g.store.Get(ctx, g.key)
}

func (g *Gateway) Write(ctx context.Context, value string) error {
	return g.store.Set(ctx, g.key, value)
}

func (g *Gateway) Clear(ctx context.Context) error {
	return g.store.Delete(ctx, g.key)
}
