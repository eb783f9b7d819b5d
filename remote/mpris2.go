// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package remote

import (
	"errors"
	"math"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/spezifisch/persistctl/logger"
	"github.com/spezifisch/persistctl/player"
)

const (
	objectPath  = "/org/mpris/MediaPlayer2"
	playerIface = "org.mpris.MediaPlayer2.Player"
	busName     = "org.mpris.MediaPlayer2.persistctl"
)

// MprisPlayer exposes volume and rate over MPRIS2. Changes made by desktop
// controls go through the player, so they are persisted like local ones.
type MprisPlayer struct {
	dbus   *dbus.Conn
	props  *prop.Properties
	player ControlledPlayer
	logger logger.LoggerInterface
}

func RegisterMprisPlayer(player_ ControlledPlayer, logger_ logger.LoggerInterface) (mpp *MprisPlayer, err error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return
	}

	mpp = &MprisPlayer{
		dbus:   conn,
		player: player_,
		logger: logger_,
	}

	err = conn.ExportAll(mpp, objectPath, playerIface)
	if err != nil {
		return
	}

	volume, _ := player_.Volume()
	rate, _ := player_.PlaybackRate()
	minRate, maxRate := rateBounds(player_.PlaybackRates())

	var mprisPlayer = map[string]*prop.Prop{
		"CanControl":     {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanGoNext":      {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanPause":       {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanPlay":        {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanSeek":        {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanGoPrevious":  {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Volume":         {Value: volume, Writable: true, Emit: prop.EmitTrue, Callback: mpp.volumeChange},
		"Rate":           {Value: rate, Writable: true, Emit: prop.EmitTrue, Callback: mpp.rateChange},
		"MinimumRate":    {Value: minRate, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"MaximumRate":    {Value: maxRate, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"PlaybackStatus": {Value: "Stopped", Writable: false, Emit: prop.EmitFalse, Callback: nil},
	}

	var mediaPlayer = map[string]*prop.Prop{
		"CanQuit":             {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanRaise":            {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"HasTrackList":        {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Identity":            {Value: "persistctl", Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"SupportedUriSchemes": {Value: []string{"file", "http", "https"}, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"SupportedMimeTypes":  {Value: []string{}, Writable: false, Emit: prop.EmitFalse, Callback: nil},
	}

	props, err := prop.Export(
		conn,
		objectPath,
		map[string]map[string]*prop.Prop{
			"org.mpris.MediaPlayer2": mediaPlayer,
			playerIface:              mprisPlayer,
		},
	)
	if err != nil {
		return
	}
	mpp.props = props

	n := &introspect.Node{
		Name: objectPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       playerIface,
				Methods:    introspect.Methods(mpp),
				Properties: props.Introspection(playerIface), // we implement the standard interface
			},
		},
	}
	err = conn.Export(introspect.NewIntrospectable(n), objectPath, "org.freedesktop.DBus.Introspectable")
	if err != nil {
		return
	}

	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		err = errors.New("name already owned")
		return
	}

	player_.On(player.EventVolumeChange, mpp.OnVolumeChange)
	player_.On(player.EventRateChange, mpp.OnRateChange)
	return
}

func (m *MprisPlayer) Close() {
	if err := m.dbus.Close(); err != nil {
		m.logger.PrintError("mpp Close", err)
	}
}

// Mandatory functions
func (m *MprisPlayer) Stop() {
	if err := m.player.Stop(); err != nil {
		m.logger.PrintError("mpp Stop", err)
	}
}

// set paused
func (m *MprisPlayer) Pause() {
	if paused, err := m.player.IsPaused(); err != nil {
		m.logger.PrintError("mpp IsPaused", err)
	} else if !paused {
		if err = m.player.Pause(); err != nil {
			m.logger.PrintError("mpp Pause", err)
		}
	}
}

// set playing
func (m *MprisPlayer) Play() {
	if playing, err := m.player.IsPlaying(); err != nil {
		m.logger.PrintError("mpp IsPlaying", err)
	} else if !playing {
		if err = m.player.Pause(); err != nil {
			m.logger.PrintError("mpp Pause", err)
		}
	}
}

func (m *MprisPlayer) PlayPause() {
	if err := m.player.Pause(); err != nil {
		m.logger.PrintError("mpp Pause", err)
	}
}

func (m *MprisPlayer) volumeChange(c *prop.Change) *dbus.Error {
	fVol, ok := c.Value.(float64)
	if !ok {
		return prop.ErrInvalidArg
	}
	if err := m.player.SetVolume(fVol); err != nil {
		m.logger.PrintError("volumeChange", err)
	} else {
		m.logger.Printf("mpris: adjust volume %f", fVol)
	}
	return nil
}

func (m *MprisPlayer) rateChange(c *prop.Change) *dbus.Error {
	fRate, ok := c.Value.(float64)
	if !ok || fRate <= 0 {
		return prop.ErrInvalidArg
	}
	rate := nearestRate(m.player.PlaybackRates(), fRate)
	if err := m.player.SetPlaybackRate(rate); err != nil {
		m.logger.PrintError("rateChange", err)
	} else {
		m.logger.Printf("mpris: adjust rate %f -> %f", fRate, rate)
	}
	return nil
}

// OnVolumeChange publishes the player's volume to MPRIS clients.
func (m *MprisPlayer) OnVolumeChange() {
	volume, err := m.player.Volume()
	if err != nil {
		m.logger.PrintError("mpris: Volume", err)
		return
	}
	if m.props != nil {
		m.props.SetMust(playerIface, "Volume", volume)
	}
}

// OnRateChange publishes the player's rate to MPRIS clients.
func (m *MprisPlayer) OnRateChange() {
	rate, err := m.player.PlaybackRate()
	if err != nil {
		m.logger.PrintError("mpris: PlaybackRate", err)
		return
	}
	if m.props != nil {
		m.props.SetMust(playerIface, "Rate", rate)
	}
}

// nearestRate snaps rate to the closest supported one so the persisted rate
// stays restorable.
func nearestRate(rates []float64, rate float64) float64 {
	if len(rates) == 0 {
		return rate
	}
	best := rates[0]
	for _, r := range rates[1:] {
		if math.Abs(r-rate) < math.Abs(best-rate) {
			best = r
		}
	}
	return best
}

func rateBounds(rates []float64) (lo, hi float64) {
	if len(rates) == 0 {
		return 1, 1
	}
	lo, hi = rates[0], rates[0]
	for _, r := range rates[1:] {
		lo = math.Min(lo, r)
		hi = math.Max(hi, r)
	}
	return
}
