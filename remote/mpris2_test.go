// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package remote

import (
	"testing"

	"github.com/godbus/dbus/v5/prop"
	"github.com/stretchr/testify/assert"

	"github.com/spezifisch/persistctl/logger"
	"github.com/spezifisch/persistctl/player/playertest"
)

type controlledFake struct {
	*playertest.Player
	paused bool
}

func (c *controlledFake) IsPaused() (bool, error) { return c.paused, nil }
func (c *controlledFake) IsPlaying() (bool, error) { return !c.paused, nil }
func (c *controlledFake) Pause() error {
	c.paused = !c.paused
	return nil
}
func (c *controlledFake) Stop() error { return nil }

func newMpp() (*MprisPlayer, *controlledFake) {
	fake := &controlledFake{Player: playertest.New()}
	return &MprisPlayer{player: fake, logger: logger.Nop()}, fake
}

func TestVolumeChange(t *testing.T) {
	m, fake := newMpp()

	assert.Nil(t, m.volumeChange(&prop.Change{Value: 0.25}))
	assert.Equal(t, 0.25, fake.Vol)

	assert.Equal(t, prop.ErrInvalidArg, m.volumeChange(&prop.Change{Value: "loud"}))
	assert.Equal(t, 0.25, fake.Vol)
}

func TestRateChangeSnapsToSupportedRate(t *testing.T) {
	m, fake := newMpp()

	assert.Nil(t, m.rateChange(&prop.Change{Value: 1.4}))
	assert.Equal(t, 1.5, fake.Rate)

	assert.Equal(t, prop.ErrInvalidArg, m.rateChange(&prop.Change{Value: 0.0}))
	assert.Equal(t, 1.5, fake.Rate)
}

func TestPlayPause(t *testing.T) {
	m, fake := newMpp()

	m.Pause()
	assert.True(t, fake.paused)
	m.Pause()
	assert.True(t, fake.paused, "pause is not a toggle")
	m.Play()
	assert.False(t, fake.paused)
	m.PlayPause()
	assert.True(t, fake.paused)
}

func TestNearestRate(t *testing.T) {
	rates := []float64{0.5, 1, 1.5, 2}
	assert.Equal(t, 0.5, nearestRate(rates, 0.1))
	assert.Equal(t, 1.0, nearestRate(rates, 1.1))
	assert.Equal(t, 2.0, nearestRate(rates, 8))
	assert.Equal(t, 1.3, nearestRate(nil, 1.3))
}

func TestRateBounds(t *testing.T) {
	lo, hi := rateBounds([]float64{1, 0.5, 2, 1.25})
	assert.Equal(t, 0.5, lo)
	assert.Equal(t, 2.0, hi)

	lo, hi = rateBounds(nil)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestChangeNotificationsWithoutBus(t *testing.T) {
	m, _ := newMpp()
	m.OnVolumeChange()
	m.OnRateChange()
}
