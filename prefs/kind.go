// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package prefs

// Kind identifies one of the persisted player preferences.
type Kind int

const (
	KindMuted Kind = iota
	KindVolume
	KindPlaybackRate
	KindCaptions
	KindAudioTrack
)

// Kinds lists every preference kind in apply order.
var Kinds = []Kind{
	KindMuted,
	KindVolume,
	KindPlaybackRate,
	KindCaptions,
	KindAudioTrack,
}

// String returns the record key of the kind.
func (k Kind) String() string {
	switch k {
	case KindMuted:
		return "muted"
	case KindVolume:
		return "volume"
	case KindPlaybackRate:
		return "playbackRate"
	case KindCaptions:
		return "captions"
	case KindAudioTrack:
		return "audioTrack"
	}
	return "unknown"
}
