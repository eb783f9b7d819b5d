// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package player describes the host media player the persisted controls are
// synchronized with.
package player

import "errors"

var ErrNoSuchTrack = errors.New("no such track")

// Event is a player change notification.
type Event int

const (
	// volume or mute changed
	EventVolumeChange Event = iota
	EventRateChange
	// caption/subtitle track selection changed
	EventTextTrackChange
	EventAudioTrackChange
)

func (e Event) String() string {
	switch e {
	case EventVolumeChange:
		return "volumechange"
	case EventRateChange:
		return "ratechange"
	case EventTextTrackChange:
		return "texttrackchange"
	case EventAudioTrackChange:
		return "audiotrackchange"
	}
	return "unknown"
}

type TrackMode int

const (
	ModeDisabled TrackMode = iota
	ModeHidden
	ModeShowing
)

const (
	KindCaptions  = "captions"
	KindSubtitles = "subtitles"
)

type TextTrack struct {
	ID       string
	Kind     string
	Language string
	Label    string
	// Default is set when the media source flags the track as the one to
	// show absent other input.
	Default bool
	Mode    TrackMode
}

// IsCaption reports whether the track is a caption or subtitle track, as
// opposed to chapters, descriptions or metadata.
func (t TextTrack) IsCaption() bool {
	return t.Kind == KindCaptions || t.Kind == KindSubtitles
}

type AudioTrack struct {
	ID       string
	Language string
	Label    string
	Enabled  bool
}

// Player is the host player contract. All callbacks run on the player's
// event goroutine, one at a time.
type Player interface {
	// Ready runs fn once the player is initialized. If it already is, fn
	// runs right away.
	Ready(fn func())
	// On subscribes fn to ev for the lifetime of the player.
	On(ev Event, fn func())

	Muted() (bool, error)
	SetMuted(muted bool) error
	// Volume is normalized to 0.0-1.0.
	Volume() (float64, error)
	SetVolume(volume float64) error
	PlaybackRate() (float64, error)
	SetPlaybackRate(rate float64) error
	// SetDefaultPlaybackRate sets the rate the player resets to on reloads.
	SetDefaultPlaybackRate(rate float64) error
	// PlaybackRates lists the rates the current source supports.
	PlaybackRates() []float64

	TextTracks() ([]TextTrack, error)
	SetTextTrackMode(id string, mode TrackMode) error
	AudioTracks() ([]AudioTrack, error)
	SetAudioTrackEnabled(id string, enabled bool) error
}
