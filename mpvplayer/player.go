// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import (
	"fmt"
	"sync"

	"github.com/supersonic-app/go-mpv"

	"github.com/spezifisch/persistctl/logger"
	"github.com/spezifisch/persistctl/player"
)

// DefaultRates is used when NewPlayer gets no rates.
var DefaultRates = []float64{0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}

type Player struct {
	instance  *mpv.Mpv
	mpvEvents chan *mpv.Event
	logger    logger.LoggerInterface
	rates     []float64
	done      chan struct{}

	mu          sync.Mutex
	ready       bool
	readyFns    []func()
	handlers    map[player.Event][]func()
	cbOnStopped []func()
	defaultRate float64
	last        snapshot
	haveLast    bool
	loaded      bool
}

func NewPlayer(logger logger.LoggerInterface, rates []float64) (p *Player, err error) {
	mpvInstance := mpv.Create()

	if err = mpvInstance.SetOptionString("audio-display", "no"); err != nil {
		mpvInstance.TerminateDestroy()
		return
	}
	if err = mpvInstance.SetOptionString("idle", "yes"); err != nil {
		mpvInstance.TerminateDestroy()
		return
	}

	if err = mpvInstance.Initialize(); err != nil {
		mpvInstance.TerminateDestroy()
		return
	}

	if len(rates) == 0 {
		rates = DefaultRates
	}

	p = newPlayer(mpvInstance, logger, rates)
	go p.mpvEngineEventHandler(mpvInstance)
	return
}

func newPlayer(instance *mpv.Mpv, logger logger.LoggerInterface, rates []float64) *Player {
	return &Player{
		instance:    instance,
		mpvEvents:   make(chan *mpv.Event),
		logger:      logger,
		rates:       rates,
		done:        make(chan struct{}),
		handlers:    make(map[player.Event][]func()),
		defaultRate: 1,
	}
}

func (p *Player) mpvEngineEventHandler(instance *mpv.Mpv) {
	for {
		evt := instance.WaitEvent(1)
		p.mpvEvents <- evt
		if evt != nil && evt.Event_Id == mpv.EVENT_SHUTDOWN {
			return
		}
	}
}

// Quit asks mpv to shut down; EventLoop returns once it has.
func (p *Player) Quit() {
	if err := p.instance.Command([]string{"quit"}); err != nil {
		p.logger.PrintError("quit", err)
	}
}

// Done is closed when EventLoop has returned.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// OnStopped registers a callback invoked when playback of the playlist ended.
func (p *Player) OnStopped(cb func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cbOnStopped = append(p.cbOnStopped, cb)
}

// Play replaces the playlist with uris and starts playing.
func (p *Player) Play(uris ...string) error {
	for i, uri := range uris {
		mode := "append"
		if i == 0 {
			mode = "replace"
		}
		if err := p.instance.Command([]string{"loadfile", uri, mode}); err != nil {
			return fmt.Errorf("loadfile %s: %w", uri, err)
		}
	}
	return nil
}

func (p *Player) Stop() error {
	p.logger.Printf("stopping (user)")
	return p.instance.Command([]string{"stop"})
}

func (p *Player) IsPaused() (bool, error) {
	return getPropertyBool(p.instance, "pause")
}

func (p *Player) IsPlaying() (bool, error) {
	idle, err := getPropertyBool(p.instance, "idle-active")
	if err != nil {
		return false, err
	}
	paused, err := p.IsPaused()
	if err != nil {
		return false, err
	}
	return !idle && !paused, nil
}

// Pause toggles pause.
func (p *Player) Pause() error {
	return p.instance.Command([]string{"cycle", "pause"})
}

func (p *Player) Ready(fn func()) {
	p.mu.Lock()
	if !p.ready {
		p.readyFns = append(p.readyFns, fn)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	fn()
}

func (p *Player) On(ev player.Event, fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[ev] = append(p.handlers[ev], fn)
}

func (p *Player) Muted() (bool, error) {
	return getPropertyBool(p.instance, "mute")
}

func (p *Player) SetMuted(muted bool) error {
	return p.instance.SetProperty("mute", mpv.FORMAT_FLAG, muted)
}

func (p *Player) Volume() (float64, error) {
	volume, err := getPropertyDouble(p.instance, "volume")
	if err != nil {
		return 0, err
	}
	return volumeFromMpv(volume), nil
}

func (p *Player) SetVolume(volume float64) error {
	return p.instance.SetProperty("volume", mpv.FORMAT_DOUBLE, volumeToMpv(volume))
}

func (p *Player) PlaybackRate() (float64, error) {
	return getPropertyDouble(p.instance, "speed")
}

func (p *Player) SetPlaybackRate(rate float64) error {
	return p.instance.SetProperty("speed", mpv.FORMAT_DOUBLE, rate)
}

// SetDefaultPlaybackRate sets the rate applied whenever a new file is loaded.
func (p *Player) SetDefaultPlaybackRate(rate float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defaultRate = rate
	return nil
}

func (p *Player) PlaybackRates() []float64 {
	return p.rates
}

func (p *Player) TextTracks() ([]player.TextTrack, error) {
	tracks, err := readTrackList(p.instance)
	if err != nil {
		return nil, err
	}
	return textTracks(tracks), nil
}

// SetTextTrackMode selects the subtitle track when showing. Any other mode
// deselects it if it is the current one; mpv has no hidden mode.
func (p *Player) SetTextTrackMode(id string, mode player.TrackMode) error {
	return p.selectTrack("sub", "sid", id, mode == player.ModeShowing)
}

func (p *Player) AudioTracks() ([]player.AudioTrack, error) {
	tracks, err := readTrackList(p.instance)
	if err != nil {
		return nil, err
	}
	return audioTracks(tracks), nil
}

func (p *Player) SetAudioTrackEnabled(id string, enabled bool) error {
	return p.selectTrack("audio", "aid", id, enabled)
}

func (p *Player) selectTrack(typ, property, id string, on bool) error {
	tracks, err := readTrackList(p.instance)
	if err != nil {
		return err
	}
	track, ok := findTrack(tracks, typ, id)
	if !ok {
		return fmt.Errorf("%s track %s: %w", typ, id, player.ErrNoSuchTrack)
	}
	if on {
		return p.instance.SetProperty(property, mpv.FORMAT_STRING, track.ID)
	}
	if track.Selected {
		return p.instance.SetProperty(property, mpv.FORMAT_STRING, "no")
	}
	return nil
}
