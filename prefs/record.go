// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package prefs

// Record is the persisted set of last-known preferences. A nil field means
// no preference was recorded for that kind. An empty Captions string is a
// recorded "no captions" choice and differs from nil.
type Record struct {
	Muted        *bool    `json:"muted,omitempty"`
	Volume       *float64 `json:"volume,omitempty"`
	PlaybackRate *float64 `json:"playbackRate,omitempty"`
	Captions     *string  `json:"captions,omitempty"`
	AudioTrack   *string  `json:"audioTrack,omitempty"`
}

// Has reports whether a value is recorded for k.
func (r Record) Has(k Kind) bool {
	switch k {
	case KindMuted:
		return r.Muted != nil
	case KindVolume:
		return r.Volume != nil
	case KindPlaybackRate:
		return r.PlaybackRate != nil
	case KindCaptions:
		return r.Captions != nil
	case KindAudioTrack:
		return r.AudioTrack != nil
	}
	return false
}

// IsEmpty reports whether no preference is recorded at all.
func (r Record) IsEmpty() bool {
	for _, k := range Kinds {
		if r.Has(k) {
			return false
		}
	}
	return true
}

func (r *Record) SetMuted(v bool)           { r.Muted = &v }
func (r *Record) SetVolume(v float64)       { r.Volume = &v }
func (r *Record) SetPlaybackRate(v float64) { r.PlaybackRate = &v }
func (r *Record) SetCaptions(lang string)   { r.Captions = &lang }
func (r *Record) SetAudioTrack(lang string) { r.AudioTrack = &lang }
