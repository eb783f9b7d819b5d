// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package persist

import (
	"github.com/spezifisch/persistctl/player"
	"github.com/spezifisch/persistctl/prefs"
	"github.com/spezifisch/persistctl/resolver"
)

// binding ties a preference kind to the player.
type binding struct {
	// event that signals a change of the kind
	event player.Event
	// apply restores a recorded value; it is only called when rec has one
	apply func(p player.Player, rec prefs.Record) error
	// capture copies the current player value into rec. It returns false
	// when there is nothing to record.
	capture func(p player.Player, rec *prefs.Record) (bool, error)
	// after runs once the captured record is written
	after func(p player.Player, rec prefs.Record) error
}

var bindings = [...]binding{
	prefs.KindMuted: {
		event: player.EventVolumeChange,
		apply: func(p player.Player, rec prefs.Record) error {
			return resolver.ApplyMuted(p, *rec.Muted)
		},
		capture: func(p player.Player, rec *prefs.Record) (bool, error) {
			muted, err := p.Muted()
			if err != nil {
				return false, err
			}
			rec.SetMuted(muted)
			return true, nil
		},
	},
	prefs.KindVolume: {
		event: player.EventVolumeChange,
		apply: func(p player.Player, rec prefs.Record) error {
			return resolver.ApplyVolume(p, *rec.Volume)
		},
		capture: func(p player.Player, rec *prefs.Record) (bool, error) {
			volume, err := p.Volume()
			if err != nil {
				return false, err
			}
			rec.SetVolume(volume)
			return true, nil
		},
	},
	prefs.KindPlaybackRate: {
		event: player.EventRateChange,
		// a restored rate also becomes the default so later resets keep it
		apply: func(p player.Player, rec prefs.Record) error {
			applied, err := resolver.ApplyPlaybackRate(p, *rec.PlaybackRate)
			if err != nil || !applied {
				return err
			}
			return p.SetDefaultPlaybackRate(*rec.PlaybackRate)
		},
		capture: func(p player.Player, rec *prefs.Record) (bool, error) {
			rate, err := p.PlaybackRate()
			if err != nil {
				return false, err
			}
			rec.SetPlaybackRate(rate)
			return true, nil
		},
		after: func(p player.Player, rec prefs.Record) error {
			return p.SetDefaultPlaybackRate(*rec.PlaybackRate)
		},
	},
	prefs.KindCaptions: {
		event: player.EventTextTrackChange,
		apply: func(p player.Player, rec prefs.Record) error {
			return resolver.ApplyCaptions(p, *rec.Captions)
		},
		capture: func(p player.Player, rec *prefs.Record) (bool, error) {
			lang, err := resolver.ShowingCaptionLanguage(p)
			if err != nil {
				return false, err
			}
			rec.SetCaptions(lang)
			return true, nil
		},
	},
	prefs.KindAudioTrack: {
		event: player.EventAudioTrackChange,
		apply: func(p player.Player, rec prefs.Record) error {
			return resolver.ApplyAudioTrack(p, *rec.AudioTrack)
		},
		capture: func(p player.Player, rec *prefs.Record) (bool, error) {
			lang, ok, err := resolver.EnabledAudioLanguage(p)
			if err != nil || !ok {
				return false, err
			}
			rec.SetAudioTrack(lang)
			return true, nil
		},
	},
}
