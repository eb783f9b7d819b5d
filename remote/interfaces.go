// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package remote

import "github.com/spezifisch/persistctl/player"

type ControlledPlayer interface {
	IsPaused() (bool, error)
	IsPlaying() (bool, error)

	Pause() error
	Stop() error

	Volume() (float64, error)
	SetVolume(volume float64) error
	PlaybackRate() (float64, error)
	SetPlaybackRate(rate float64) error
	PlaybackRates() []float64

	// Registers a callback which is invoked on the player's change notifications.
	On(ev player.Event, fn func())
}
