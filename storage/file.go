// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
)

// FileStore keeps all keys in one JSON object file. Every Get reads the file
// so it observes writes made by other processes; every Set replaces the file
// atomically.
// errCorruptFile marks a store file that is not a JSON object of strings.
var errCorruptFile = errors.New("corrupt store file")

type FileStore struct {
	mu   sync.Mutex
	path string
}

func OpenFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, _, err := f.loadForWrite()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, corrupt, err := f.loadForWrite()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok && !corrupt {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)
	buf, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	} else if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(buf) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(buf, &values); err != nil {
		return nil, fmt.Errorf("parse store file %s: %w: %w", f.path, errCorruptFile, err)
	}
	return values, nil
}

// loadForWrite is load, except that a corrupt file counts as empty so the
// next save replaces it.
func (f *FileStore) loadForWrite() (values map[string]string, corrupt bool, err error) {
	values, err = f.load()
	if errors.Is(err, errCorruptFile) {
		return make(map[string]string), true, nil
	}
	return values, false, err
}

func (f *FileStore) save(values map[string]string) error {
	buf, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	pendingFile, err := renameio.NewPendingFile(f.path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending store file: %w", err)
	}
	defer func() {
		_ = pendingFile.Cleanup()
	}()

	if _, err := pendingFile.Write(buf); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
