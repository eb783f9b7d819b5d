// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import (
	"github.com/supersonic-app/go-mpv"

	"github.com/spezifisch/persistctl/player"
)

var _ player.Player = (*Player)(nil)

// propertyGetter is the read side of an mpv instance.
type propertyGetter interface {
	GetProperty(name string, format mpv.Format) (interface{}, error)
}
