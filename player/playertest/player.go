// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package playertest provides an in-memory player.Player for tests.
package playertest

import (
	"fmt"

	"github.com/spezifisch/persistctl/player"
)

var _ player.Player = (*Player)(nil)

// Player keeps its state in exported fields. Setters record a mutation and
// do not fire change notifications; tests call Fire for that.
type Player struct {
	IsMuted     bool
	Vol         float64
	Rate        float64
	DefaultRate float64
	Rates       []float64
	Texts       []player.TextTrack
	Audios      []player.AudioTrack

	// Err is returned by every getter and setter when set.
	Err error

	Mutations []string

	ready    bool
	readyFns []func()
	handlers map[player.Event][]func()
}

func New() *Player {
	return &Player{
		Vol:         1,
		Rate:        1,
		DefaultRate: 1,
		Rates:       []float64{0.5, 1, 1.5, 2},
		handlers:    make(map[player.Event][]func()),
	}
}

// MakeReady marks the player initialized and runs pending Ready callbacks.
func (p *Player) MakeReady() {
	p.ready = true
	fns := p.readyFns
	p.readyFns = nil
	for _, fn := range fns {
		fn()
	}
}

// Fire runs every handler subscribed to ev.
func (p *Player) Fire(ev player.Event) {
	for _, fn := range p.handlers[ev] {
		fn()
	}
}

// Subscribers returns the number of handlers for ev.
func (p *Player) Subscribers(ev player.Event) int {
	return len(p.handlers[ev])
}

func (p *Player) Ready(fn func()) {
	if p.ready {
		fn()
		return
	}
	p.readyFns = append(p.readyFns, fn)
}

func (p *Player) On(ev player.Event, fn func()) {
	p.handlers[ev] = append(p.handlers[ev], fn)
}

func (p *Player) mutate(format string, args ...interface{}) error {
	if p.Err != nil {
		return p.Err
	}
	p.Mutations = append(p.Mutations, fmt.Sprintf(format, args...))
	return nil
}

func (p *Player) Muted() (bool, error) { return p.IsMuted, p.Err }

func (p *Player) SetMuted(muted bool) error {
	if err := p.mutate("muted=%t", muted); err != nil {
		return err
	}
	p.IsMuted = muted
	return nil
}

func (p *Player) Volume() (float64, error) { return p.Vol, p.Err }

func (p *Player) SetVolume(volume float64) error {
	if err := p.mutate("volume=%g", volume); err != nil {
		return err
	}
	p.Vol = volume
	return nil
}

func (p *Player) PlaybackRate() (float64, error) { return p.Rate, p.Err }

func (p *Player) SetPlaybackRate(rate float64) error {
	if err := p.mutate("rate=%g", rate); err != nil {
		return err
	}
	p.Rate = rate
	return nil
}

func (p *Player) SetDefaultPlaybackRate(rate float64) error {
	if err := p.mutate("defaultRate=%g", rate); err != nil {
		return err
	}
	p.DefaultRate = rate
	return nil
}

func (p *Player) PlaybackRates() []float64 { return p.Rates }

func (p *Player) TextTracks() ([]player.TextTrack, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	out := make([]player.TextTrack, len(p.Texts))
	copy(out, p.Texts)
	return out, nil
}

func (p *Player) SetTextTrackMode(id string, mode player.TrackMode) error {
	for i := range p.Texts {
		if p.Texts[i].ID != id {
			continue
		}
		if err := p.mutate("text[%s]=%d", id, mode); err != nil {
			return err
		}
		p.Texts[i].Mode = mode
		return nil
	}
	return fmt.Errorf("text track %s: %w", id, player.ErrNoSuchTrack)
}

func (p *Player) AudioTracks() ([]player.AudioTrack, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	out := make([]player.AudioTrack, len(p.Audios))
	copy(out, p.Audios)
	return out, nil
}

func (p *Player) SetAudioTrackEnabled(id string, enabled bool) error {
	for i := range p.Audios {
		if p.Audios[i].ID != id {
			continue
		}
		if err := p.mutate("audio[%s]=%t", id, enabled); err != nil {
			return err
		}
		p.Audios[i].Enabled = enabled
		return nil
	}
	return fmt.Errorf("audio track %s: %w", id, player.ErrNoSuchTrack)
}

// ShowingLanguages returns the languages of all showing text tracks.
func (p *Player) ShowingLanguages() []string {
	var langs []string
	for _, t := range p.Texts {
		if t.Mode == player.ModeShowing {
			langs = append(langs, t.Language)
		}
	}
	return langs
}

// EnabledLanguages returns the languages of all enabled audio tracks.
func (p *Player) EnabledLanguages() []string {
	var langs []string
	for _, t := range p.Audios {
		if t.Enabled {
			langs = append(langs, t.Language)
		}
	}
	return langs
}
