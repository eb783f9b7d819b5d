// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package resolver reconciles persisted preference values with what the
// player currently supports, and reads the active track selection back.
package resolver

import (
	"fmt"
	"math"

	"github.com/spezifisch/persistctl/player"
)

const rateEpsilon = 1e-9

func ApplyMuted(p player.Player, muted bool) error {
	return p.SetMuted(muted)
}

func ApplyVolume(p player.Player, volume float64) error {
	return p.SetVolume(volume)
}

// SupportsRate reports whether rate is one of the player's playback rates.
func SupportsRate(p player.Player, rate float64) bool {
	for _, r := range p.PlaybackRates() {
		if math.Abs(r-rate) < rateEpsilon {
			return true
		}
	}
	return false
}

// ApplyPlaybackRate sets rate if the player supports it. It reports whether
// the rate was applied.
func ApplyPlaybackRate(p player.Player, rate float64) (bool, error) {
	if !SupportsRate(p, rate) {
		return false, nil
	}
	if err := p.SetPlaybackRate(rate); err != nil {
		return false, err
	}
	return true, nil
}

// PickCaption chooses the caption track to show. A track flagged as the
// source default always wins; otherwise the first track in lang is chosen.
// ok is false when no track should be shown.
func PickCaption(tracks []player.TextTrack, lang string) (pick player.TextTrack, ok bool) {
	for _, t := range tracks {
		if t.IsCaption() && t.Default {
			return t, true
		}
	}
	if lang == "" {
		return player.TextTrack{}, false
	}
	for _, t := range tracks {
		if t.IsCaption() && t.Language == lang {
			return t, true
		}
	}
	return player.TextTrack{}, false
}

// ApplyCaptions shows the track PickCaption selects and turns off every
// other showing caption track.
func ApplyCaptions(p player.Player, lang string) error {
	tracks, err := p.TextTracks()
	if err != nil {
		return fmt.Errorf("text tracks: %w", err)
	}
	pick, ok := PickCaption(tracks, lang)

	for _, t := range tracks {
		if !t.IsCaption() || t.Mode != player.ModeShowing {
			continue
		}
		if ok && t.ID == pick.ID {
			continue
		}
		if err := p.SetTextTrackMode(t.ID, player.ModeDisabled); err != nil {
			return err
		}
	}
	if ok && pick.Mode != player.ModeShowing {
		return p.SetTextTrackMode(pick.ID, player.ModeShowing)
	}
	return nil
}

// PickAudio returns the first audio track in lang.
func PickAudio(tracks []player.AudioTrack, lang string) (player.AudioTrack, bool) {
	for _, t := range tracks {
		if t.Language == lang {
			return t, true
		}
	}
	return player.AudioTrack{}, false
}

// ApplyAudioTrack enables the audio track in lang and disables the track
// that was enabled before, so at most one track ends up enabled. Without a
// match the current selection stays untouched.
func ApplyAudioTrack(p player.Player, lang string) error {
	tracks, err := p.AudioTracks()
	if err != nil {
		return fmt.Errorf("audio tracks: %w", err)
	}
	pick, ok := PickAudio(tracks, lang)
	if !ok || pick.Enabled {
		return nil
	}

	for _, t := range tracks {
		if t.Enabled {
			if err := p.SetAudioTrackEnabled(t.ID, false); err != nil {
				return err
			}
		}
	}
	return p.SetAudioTrackEnabled(pick.ID, true)
}

// ShowingCaptionLanguage returns the language of the showing caption track,
// or "" when captions are off.
func ShowingCaptionLanguage(p player.Player) (string, error) {
	tracks, err := p.TextTracks()
	if err != nil {
		return "", err
	}
	for _, t := range tracks {
		if t.IsCaption() && t.Mode == player.ModeShowing {
			return t.Language, nil
		}
	}
	return "", nil
}

// EnabledAudioLanguage returns the language of the enabled audio track. ok
// is false when no track is enabled.
func EnabledAudioLanguage(p player.Player) (lang string, ok bool, err error) {
	tracks, err := p.AudioTracks()
	if err != nil {
		return "", false, err
	}
	for _, t := range tracks {
		if t.Enabled {
			return t.Language, true, nil
		}
	}
	return "", false, nil
}
