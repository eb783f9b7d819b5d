// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import (
	"errors"

	"github.com/supersonic-app/go-mpv"
)

var errNilValue = errors.New("nil value")

func getPropertyInt64(g propertyGetter, name string) (int64, error) {
	value, err := g.GetProperty(name, mpv.FORMAT_INT64)
	if err != nil {
		return 0, err
	} else if value == nil {
		return 0, errNilValue
	}
	return value.(int64), nil
}

func getPropertyBool(g propertyGetter, name string) (bool, error) {
	value, err := g.GetProperty(name, mpv.FORMAT_FLAG)
	if err != nil {
		return false, err
	} else if value == nil {
		return false, errNilValue
	}
	return value.(bool), nil
}

func getPropertyDouble(g propertyGetter, name string) (float64, error) {
	value, err := g.GetProperty(name, mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0, err
	} else if value == nil {
		return 0, errNilValue
	}
	return value.(float64), nil
}

func getPropertyString(g propertyGetter, name string) (string, error) {
	value, err := g.GetProperty(name, mpv.FORMAT_STRING)
	if err != nil {
		return "", err
	} else if value == nil {
		return "", errNilValue
	}
	return value.(string), nil
}

// mpv volume is a percentage and may exceed 100 with volume-max.
func volumeFromMpv(percent float64) float64 {
	v := percent / 100
	if v > 1 {
		return 1
	} else if v < 0 {
		return 0
	}
	return v
}

func volumeToMpv(volume float64) float64 {
	if volume > 1 {
		volume = 1
	} else if volume < 0 {
		volume = 0
	}
	return volume * 100
}
