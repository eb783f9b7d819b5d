// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l := Init(Config{Console: &buf})

	l.Printf("volume %d%%", 42)
	l.PrintError("persist", errors.New("quota exceeded"))
	l.Debugf("hidden at info level")

	out := buf.String()
	assert.Contains(t, out, "volume 42%")
	assert.Contains(t, out, "quota exceeded")
	assert.Contains(t, out, "persist")
	assert.NotContains(t, out, "hidden at info level")
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Init(Config{Console: &buf, Level: "debug"})

	l.Debugf("rate %g", 1.5)
	assert.Contains(t, buf.String(), "rate 1.5")
}

func TestFileOutput(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "persistctl.log")
	l := Init(Config{Console: &buf, File: path})

	l.Print("storage ready")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "storage ready")
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Print("nothing")
	l.PrintError("nothing", errors.New("nothing"))
}
