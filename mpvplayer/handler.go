// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import (
	"github.com/supersonic-app/go-mpv"

	"github.com/spezifisch/persistctl/player"
)

// snapshot holds the observed values change notifications are derived from.
type snapshot struct {
	volume float64
	muted  bool
	speed  float64
	sid    string
	aid    string
}

// changes lists the notifications needed to get from prev to s.
func (s snapshot) changes(prev snapshot) []player.Event {
	var events []player.Event
	if s.volume != prev.volume || s.muted != prev.muted {
		events = append(events, player.EventVolumeChange)
	}
	if s.speed != prev.speed {
		events = append(events, player.EventRateChange)
	}
	if s.sid != prev.sid {
		events = append(events, player.EventTextTrackChange)
	}
	if s.aid != prev.aid {
		events = append(events, player.EventAudioTrackChange)
	}
	return events
}

func takeSnapshot(g propertyGetter) (s snapshot) {
	// missing values (no file loaded) stay zero
	s.volume, _ = getPropertyDouble(g, "volume")
	s.muted, _ = getPropertyBool(g, "mute")
	s.speed, _ = getPropertyDouble(g, "speed")
	s.sid, _ = getPropertyString(g, "sid")
	s.aid, _ = getPropertyString(g, "aid")
	return
}

var observed = []struct {
	name   string
	format mpv.Format
}{
	{"volume", mpv.FORMAT_DOUBLE},
	{"mute", mpv.FORMAT_FLAG},
	{"speed", mpv.FORMAT_DOUBLE},
	{"sid", mpv.FORMAT_STRING},
	{"aid", mpv.FORMAT_STRING},
	{"track-list/count", mpv.FORMAT_INT64},
}

// EventLoop consumes mpv events until mpv shuts down. Ready callbacks and
// change handlers run on this goroutine.
func (p *Player) EventLoop() {
	defer close(p.done)

	for _, o := range observed {
		if err := p.instance.ObserveProperty(0, o.name, o.format); err != nil {
			p.logger.PrintError("Observe "+o.name, err)
		}
	}

	for evt := range p.mpvEvents {
		if evt == nil {
			continue
		}

		switch evt.Event_Id {
		case mpv.EVENT_SHUTDOWN:
			p.instance.TerminateDestroy()
			return

		case mpv.EVENT_PROPERTY_CHANGE:
			// which property changed is not extracted; the snapshot diff tells
			p.propertyChanged()

		case mpv.EVENT_FILE_LOADED:
			p.fileLoaded()

		case mpv.EVENT_IDLE:
			p.mu.Lock()
			wasLoaded := p.loaded
			p.loaded = false
			cbs := append([]func(){}, p.cbOnStopped...)
			p.mu.Unlock()
			if wasLoaded {
				p.logger.Print("mpv.EventLoop: playlist finished")
				for _, cb := range cbs {
					cb()
				}
			}

		case mpv.EVENT_START_FILE, mpv.EVENT_END_FILE, mpv.EVENT_NONE:
			continue

		default:
			p.logger.Printf("mpv.EventLoop: unhandled event id %v", evt.Event_Id)
		}
	}
}

func (p *Player) fileLoaded() {
	p.mu.Lock()
	first := !p.ready
	p.ready = true
	p.loaded = true
	fns := p.readyFns
	p.readyFns = nil
	rate := p.defaultRate
	p.mu.Unlock()

	if first {
		for _, fn := range fns {
			fn()
		}
	} else if err := p.SetPlaybackRate(rate); err != nil {
		p.logger.PrintError("mpv.EventLoop: default rate", err)
	}

	// changes made by ready callbacks are not reported back
	s := takeSnapshot(p.instance)
	p.mu.Lock()
	p.last = s
	p.haveLast = true
	p.mu.Unlock()
}

func (p *Player) propertyChanged() {
	s := takeSnapshot(p.instance)

	p.mu.Lock()
	var events []player.Event
	if p.haveLast {
		events = s.changes(p.last)
	}
	p.last = s
	p.haveLast = true
	p.mu.Unlock()

	for _, ev := range events {
		p.fire(ev)
	}
}

func (p *Player) fire(ev player.Event) {
	p.mu.Lock()
	handlers := append([]func(){}, p.handlers[ev]...)
	p.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}
