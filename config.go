// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/spezifisch/persistctl/logger"
	"github.com/spezifisch/persistctl/mpvplayer"
	"github.com/spezifisch/persistctl/prefs"
	"github.com/spezifisch/persistctl/storage"
)

// configError makes main exit with code 2.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", storage.BackendFile)
	v.SetDefault("storage.key", storage.DefaultKey)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("player.mpris", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", logger.DefaultMaxSizeMB)
	v.SetDefault("log.max_backups", logger.DefaultMaxBackups)
	v.SetDefault("log.max_age_days", logger.DefaultMaxAgeDays)
	v.SetDefault("log.compress", true)
}

// readConfig loads configFile, or persistctl.toml from the default
// locations when configFile is empty. A missing default file is not an
// error.
func readConfig(v *viper.Viper, configFile string) error {
	setDefaults(v)

	v.SetEnvPrefix("PERSISTCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("persistctl")
		v.SetConfigType("toml")
		v.AddConfigPath("$HOME/.config/persistctl")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return &configError{fmt.Errorf("config file error: %w", err)}
		}
	}

	switch backend := v.GetString("storage.backend"); backend {
	case storage.BackendMemory, storage.BackendFile, storage.BackendBadger, storage.BackendSQLite, storage.BackendRedis:
	default:
		return &configError{fmt.Errorf("config property storage.backend: %w: %s", storage.ErrUnknownBackend, backend)}
	}
	if _, err := playerRates(v); err != nil {
		return &configError{err}
	}
	return nil
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "persistctl")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "persistctl")
	}
	return "."
}

func storageConfig(v *viper.Viper) storage.Config {
	cfg := storage.Config{
		Backend: v.GetString("storage.backend"),
		Path:    v.GetString("storage.path"),
		Redis: storage.RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}
	if cfg.Path == "" {
		switch cfg.Backend {
		case storage.BackendFile:
			cfg.Path = filepath.Join(stateDir(), "controls.json")
		case storage.BackendBadger:
			cfg.Path = filepath.Join(stateDir(), "badger")
		case storage.BackendSQLite:
			cfg.Path = filepath.Join(stateDir(), "controls.db")
		}
	}
	return cfg
}

func loggerConfig(v *viper.Viper) logger.Config {
	return logger.Config{
		Level:      v.GetString("log.level"),
		File:       v.GetString("log.file"),
		MaxSizeMB:  v.GetInt("log.max_size_mb"),
		MaxBackups: v.GetInt("log.max_backups"),
		MaxAgeDays: v.GetInt("log.max_age_days"),
		Compress:   v.GetBool("log.compress"),
	}
}

func optionOverrides(v *viper.Viper) prefs.Overrides {
	return prefs.OverridesFromMap(v.GetStringMap("persist"))
}

// playerRates reads player.rates, which may hold numbers or numeric
// strings.
func playerRates(v *viper.Viper) ([]float64, error) {
	raw := v.Get("player.rates")
	if raw == nil {
		return mpvplayer.DefaultRates, nil
	}

	var items []interface{}
	switch r := raw.(type) {
	case []interface{}:
		items = r
	case []float64:
		return r, nil
	case string:
		for _, f := range strings.Fields(strings.ReplaceAll(r, ",", " ")) {
			items = append(items, f)
		}
	default:
		return nil, fmt.Errorf("config property player.rates: unsupported value %v", raw)
	}

	rates := make([]float64, 0, len(items))
	for _, item := range items {
		var rate float64
		switch n := item.(type) {
		case float64:
			rate = n
		case int64:
			rate = float64(n)
		case int:
			rate = float64(n)
		case string:
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return nil, fmt.Errorf("config property player.rates: %w", err)
			}
			rate = f
		default:
			return nil, fmt.Errorf("config property player.rates: unsupported value %v", item)
		}
		if rate <= 0 {
			return nil, fmt.Errorf("config property player.rates: rate %g must be positive", rate)
		}
		rates = append(rates, rate)
	}
	if len(rates) == 0 {
		return mpvplayer.DefaultRates, nil
	}
	return rates, nil
}
