// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package prefs

import "strings"

// Options selects which preference kinds are persisted and restored.
type Options struct {
	Muted        bool
	Volume       bool
	PlaybackRate bool
	Captions     bool
	AudioTrack   bool
}

// DefaultOptions enables every kind.
func DefaultOptions() Options {
	return Options{
		Muted:        true,
		Volume:       true,
		PlaybackRate: true,
		Captions:     true,
		AudioTrack:   true,
	}
}

// Overrides carries per-activation option values. Nil fields keep the base
// value.
type Overrides struct {
	Muted        *bool
	Volume       *bool
	PlaybackRate *bool
	Captions     *bool
	AudioTrack   *bool
}

// Merge returns base with every non-nil field of o applied.
func Merge(base Options, o Overrides) Options {
	if o.Muted != nil {
		base.Muted = *o.Muted
	}
	if o.Volume != nil {
		base.Volume = *o.Volume
	}
	if o.PlaybackRate != nil {
		base.PlaybackRate = *o.PlaybackRate
	}
	if o.Captions != nil {
		base.Captions = *o.Captions
	}
	if o.AudioTrack != nil {
		base.AudioTrack = *o.AudioTrack
	}
	return base
}

// Enabled reports whether kind k is selected.
func (o Options) Enabled(k Kind) bool {
	switch k {
	case KindMuted:
		return o.Muted
	case KindVolume:
		return o.Volume
	case KindPlaybackRate:
		return o.PlaybackRate
	case KindCaptions:
		return o.Captions
	case KindAudioTrack:
		return o.AudioTrack
	}
	return false
}

// EnabledKinds lists the selected kinds in apply order.
func (o Options) EnabledKinds() []Kind {
	kinds := make([]Kind, 0, len(Kinds))
	for _, k := range Kinds {
		if o.Enabled(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// OverridesFromMap reads overrides from a loosely typed option map such as a
// config section. Keys match the record keys case-insensitively, with or
// without underscores ("playbackRate", "playback_rate"). Unknown keys and
// non-boolean values are ignored.
func OverridesFromMap(m map[string]any) Overrides {
	var o Overrides
	for key, raw := range m {
		v, ok := raw.(bool)
		if !ok {
			continue
		}
		norm := strings.ToLower(strings.ReplaceAll(key, "_", ""))
		for _, k := range Kinds {
			if norm != strings.ToLower(k.String()) {
				continue
			}
			switch k {
			case KindMuted:
				o.Muted = &v
			case KindVolume:
				o.Volume = &v
			case KindPlaybackRate:
				o.PlaybackRate = &v
			case KindCaptions:
				o.Captions = &v
			case KindAudioTrack:
				o.AudioTrack = &v
			}
		}
	}
	return o
}
