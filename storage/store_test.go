// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore fails every write, like a store over quota or disabled.
type brokenStore struct {
	*MemoryStore
}

func (b *brokenStore) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	file, err := OpenFileStore(filepath.Join(dir, "state", "controls.json"))
	require.NoError(t, err)

	bdg, err := OpenBadgerStore(filepath.Join(dir, "badger"))
	require.NoError(t, err)

	sq, err := OpenSQLiteStore(filepath.Join(dir, "controls.db"))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rds, err := OpenRedisStore(RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)

	stores := map[string]Store{
		BackendMemory: NewMemoryStore(),
		BackendFile:   file,
		BackendBadger: bdg,
		BackendSQLite: sq,
		BackendRedis:  rds,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestBackends(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, DefaultKey)
			require.NoError(t, err)
			assert.False(t, ok, "fresh store should not contain the record")

			require.NoError(t, s.Set(ctx, DefaultKey, `{"volume":0.5}`))
			require.NoError(t, s.Set(ctx, DefaultKey, `{"volume":0.42}`))
			v, ok, err := s.Get(ctx, DefaultKey)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"volume":0.42}`, v)

			require.NoError(t, s.Delete(ctx, DefaultKey))
			_, ok, err = s.Get(ctx, DefaultKey)
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, s.Delete(ctx, "never-written"))
			assert.True(t, Probe(ctx, s))
		})
	}
}

func TestProbeLeavesNoKeyBehind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.True(t, Probe(ctx, s))
	_, ok, err := s.Get(ctx, probeKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProbeFailures(t *testing.T) {
	ctx := context.Background()
	assert.False(t, Probe(ctx, nil))
	assert.False(t, Probe(ctx, &brokenStore{NewMemoryStore()}))
}

func TestProbeUnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := OpenRedisStore(RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer s.Close()

	mr.Close()
	assert.False(t, Probe(context.Background(), s))
}

func TestFileStoreKeepsSiblingKeys(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "controls.json")

	a, err := OpenFileStore(path)
	require.NoError(t, err)
	b, err := OpenFileStore(path)
	require.NoError(t, err)

	require.NoError(t, a.Set(ctx, "first", "1"))
	require.NoError(t, b.Set(ctx, "second", "2"))

	v, ok, err := a.Get(ctx, "second")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	v, ok, err = b.Get(ctx, "first")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestFileStoreCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "controls.json")
	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o600))

	s, err := OpenFileStore(path)
	require.NoError(t, err)

	_, _, err = s.Get(ctx, DefaultKey)
	assert.Error(t, err)

	// clearing the record rewrites the file
	require.NoError(t, NewGateway(s, "").Clear(ctx))
	_, ok, err := s.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, Probe(ctx, s))
}

func TestFileStoreWriteReplacesCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "controls.json")
	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o600))

	s, err := OpenFileStore(path)
	require.NoError(t, err)

	assert.True(t, Probe(ctx, s))
	require.NoError(t, s.Set(ctx, DefaultKey, `{"volume":0.5}`))

	v, ok, err := s.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"volume":0.5}`, v)
}

func TestGateway(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	g := NewGateway(s, "")
	assert.Equal(t, DefaultKey, g.Key())
	assert.True(t, g.Available(ctx))

	require.NoError(t, g.Write(ctx, `{"muted":true}`))
	v, ok, err := s.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"muted":true}`, v)

	v, ok, err = g.Read(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"muted":true}`, v)

	require.NoError(t, g.Clear(ctx))
	_, ok, err = g.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	other := NewGateway(s, "player-2")
	assert.Equal(t, "player-2", other.Key())
}

func TestOpen(t *testing.T) {
	s, err := Open(Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(Config{Backend: BackendFile, Path: filepath.Join(t.TempDir(), "c.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(Config{Backend: "floppy"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestInstrument(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	s := Instrument(&brokenStore{NewMemoryStore()}, m)
	_, _, _ = s.Get(ctx, DefaultKey)
	_ = s.Set(ctx, DefaultKey, "{}")
	_ = s.Delete(ctx, DefaultKey)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("get", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("set", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("delete", "ok")))

	assert.Same(t, s, Instrument(s, nil))
}
