// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 30
)

type Config struct {
	// Level is one of trace, debug, info, warn, error. Empty means info.
	Level string
	// File enables a rotating log file in addition to the console.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	// Console defaults to stderr.
	Console io.Writer
}

var _ LoggerInterface = (*Logger)(nil)

type Logger struct {
	zl zerolog.Logger
}

func Init(cfg Config) *Logger {
	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}
	var out io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: "2006-01-02 15:04:05"}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			fmt.Fprintf(console, "log directory %s: %v; logging to console only\n", filepath.Dir(cfg.File), err)
		} else {
			out = zerolog.MultiLevelWriter(out, zerolog.ConsoleWriter{
				Out: &lumberjack.Logger{
					Filename:   cfg.File,
					MaxSize:    orDefault(cfg.MaxSizeMB, DefaultMaxSizeMB),
					MaxBackups: orDefault(cfg.MaxBackups, DefaultMaxBackups),
					MaxAge:     orDefault(cfg.MaxAgeDays, DefaultMaxAgeDays),
					Compress:   cfg.Compress,
				},
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
		}
	}

	zl := zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) Print(s string) {
	l.zl.Info().Msg(s)
}

func (l *Logger) Printf(s string, as ...interface{}) {
	l.zl.Info().Msgf(s, as...)
}

func (l *Logger) Debugf(s string, as ...interface{}) {
	l.zl.Debug().Msgf(s, as...)
}

func (l *Logger) PrintError(source string, err error) {
	l.zl.Error().Str("source", source).Err(err).Msg("error")
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
