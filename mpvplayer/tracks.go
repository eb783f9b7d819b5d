// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import (
	"fmt"
	"strconv"

	"github.com/spezifisch/persistctl/player"
)

// mpvTrack is one entry of mpv's track-list property.
type mpvTrack struct {
	ID       string
	Type     string // audio, video or sub
	Language string
	Title    string
	Default  bool
	Selected bool
}

func readTrackList(g propertyGetter) ([]mpvTrack, error) {
	count, err := getPropertyInt64(g, "track-list/count")
	if err != nil {
		return nil, fmt.Errorf("track-list/count: %w", err)
	}

	tracks := make([]mpvTrack, 0, count)
	for i := int64(0); i < count; i++ {
		prefix := fmt.Sprintf("track-list/%d/", i)

		id, err := getPropertyInt64(g, prefix+"id")
		if err != nil {
			return nil, fmt.Errorf("%sid: %w", prefix, err)
		}
		typ, err := getPropertyString(g, prefix+"type")
		if err != nil {
			return nil, fmt.Errorf("%stype: %w", prefix, err)
		}
		// lang, title and the flags are unavailable for some tracks
		lang, _ := getPropertyString(g, prefix+"lang")
		title, _ := getPropertyString(g, prefix+"title")
		def, _ := getPropertyBool(g, prefix+"default")
		selected, _ := getPropertyBool(g, prefix+"selected")

		tracks = append(tracks, mpvTrack{
			ID:       strconv.FormatInt(id, 10),
			Type:     typ,
			Language: lang,
			Title:    title,
			Default:  def,
			Selected: selected,
		})
	}
	return tracks, nil
}

func textTracks(tracks []mpvTrack) []player.TextTrack {
	var out []player.TextTrack
	for _, t := range tracks {
		if t.Type != "sub" {
			continue
		}
		mode := player.ModeDisabled
		if t.Selected {
			mode = player.ModeShowing
		}
		out = append(out, player.TextTrack{
			ID:       t.ID,
			Kind:     player.KindSubtitles,
			Language: t.Language,
			Label:    t.Title,
			Default:  t.Default,
			Mode:     mode,
		})
	}
	return out
}

func audioTracks(tracks []mpvTrack) []player.AudioTrack {
	var out []player.AudioTrack
	for _, t := range tracks {
		if t.Type != "audio" {
			continue
		}
		out = append(out, player.AudioTrack{
			ID:       t.ID,
			Language: t.Language,
			Label:    t.Title,
			Enabled:  t.Selected,
		})
	}
	return out
}

func findTrack(tracks []mpvTrack, typ, id string) (mpvTrack, bool) {
	for _, t := range tracks {
		if t.Type == typ && t.ID == id {
			return t, true
		}
	}
	return mpvTrack{}, false
}
