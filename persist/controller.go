// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package persist remembers a player's user-chosen controls (mute, volume,
// playback rate, captions, audio track) in durable storage and restores them
// the next time a player starts.
package persist

import (
	"context"
	"sync"

	"github.com/spezifisch/persistctl/logger"
	"github.com/spezifisch/persistctl/player"
	"github.com/spezifisch/persistctl/prefs"
	"github.com/spezifisch/persistctl/storage"
)

// State is the lifecycle stage of a Controller.
type State int

const (
	// StateInit waits for the player to become ready.
	StateInit State = iota
	// StateDisabled means storage is unusable. It is terminal.
	StateDisabled
	// StateListening means preferences were restored and changes are saved.
	StateListening
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateDisabled:
		return "disabled"
	case StateListening:
		return "listening"
	}
	return "unknown"
}

// Controller synchronizes one player with the persisted record.
type Controller struct {
	ctx     context.Context
	player  player.Player
	store   storage.Store
	key     string
	gateway *storage.Gateway
	options prefs.Options
	logger  logger.LoggerInterface

	mu     sync.Mutex
	state  State
	record prefs.Record
}

// Option configures a Controller created by New or Activate.
type Option func(*Controller)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l logger.LoggerInterface) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithKey stores the record under key instead of the shared
// storage.DefaultKey, isolating this player from others using the store.
func WithKey(key string) Option {
	return func(c *Controller) {
		c.key = key
	}
}

// New creates a controller in StateInit. Call Init once the player is ready,
// or use Activate.
func New(ctx context.Context, p player.Player, store storage.Store, overrides prefs.Overrides, opts ...Option) *Controller {
	c := &Controller{
		ctx:     ctx,
		player:  p,
		store:   store,
		key:     storage.DefaultKey,
		options: prefs.Merge(prefs.DefaultOptions(), overrides),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.gateway = storage.NewGateway(c.store, c.key)
	return c
}

// Activate is the plugin entry point: it defers Init until the player is
// ready. It never fails; when storage is unusable the controller disables
// itself and the player runs unaffected.
func Activate(ctx context.Context, p player.Player, store storage.Store, overrides prefs.Overrides, opts ...Option) *Controller {
	c := New(ctx, p, store, overrides, opts...)
	p.Ready(c.Init)
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Options() prefs.Options {
	return c.options
}

// Record returns the record as last read or written by this controller.
func (c *Controller) Record() prefs.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record
}

// Init probes storage, restores every enabled preference and subscribes to
// player changes. Only the first call has an effect.
func (c *Controller) Init() {
	c.mu.Lock()
	if c.state != StateInit {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if !c.gateway.Available(c.ctx) {
		c.setState(StateDisabled)
		c.logger.Print("persist: storage unavailable, player controls will not be remembered")
		return
	}

	rec := c.load()
	c.restore(rec)
	c.subscribe()
	c.setState(StateListening)
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) restore(rec prefs.Record) {
	for _, k := range c.options.EnabledKinds() {
		if !rec.Has(k) {
			continue
		}
		if err := bindings[k].apply(c.player, rec); err != nil {
			c.logger.PrintError("persist restore "+k.String(), err)
		}
	}
}

// subscribe registers one handler per change notification; kinds sharing a
// notification are captured together and written once.
func (c *Controller) subscribe() {
	var events []player.Event
	groups := make(map[player.Event][]prefs.Kind)
	for _, k := range c.options.EnabledKinds() {
		ev := bindings[k].event
		if _, ok := groups[ev]; !ok {
			events = append(events, ev)
		}
		groups[ev] = append(groups[ev], k)
	}

	for _, ev := range events {
		kinds := groups[ev]
		c.player.On(ev, func() {
			c.sync(kinds)
		})
	}
}

func (c *Controller) sync(kinds []prefs.Kind) {
	rec := c.load()

	captured := make([]prefs.Kind, 0, len(kinds))
	for _, k := range kinds {
		ok, err := bindings[k].capture(c.player, &rec)
		if err != nil {
			c.logger.PrintError("persist capture "+k.String(), err)
			continue
		}
		if ok {
			captured = append(captured, k)
		}
	}
	if len(captured) == 0 {
		return
	}

	c.save(rec)

	for _, k := range captured {
		after := bindings[k].after
		if after == nil {
			continue
		}
		if err := after(c.player, rec); err != nil {
			c.logger.PrintError("persist "+k.String(), err)
		}
	}
}

// load reads the stored record. A failed read falls back to the last record
// this controller saw.
func (c *Controller) load() prefs.Record {
	raw, ok, err := c.gateway.Read(c.ctx)
	if err != nil {
		c.logger.PrintError("persist read", err)
		return c.Record()
	}

	var rec prefs.Record
	if ok {
		rec = prefs.Decode(raw)
	}
	c.mu.Lock()
	c.record = rec
	c.mu.Unlock()
	return rec
}

// save writes the whole record. Failures are logged; the next successful
// write replaces whatever is stored.
func (c *Controller) save(rec prefs.Record) {
	c.mu.Lock()
	c.record = rec
	c.mu.Unlock()

	raw, err := prefs.Encode(rec)
	if err != nil {
		c.logger.PrintError("persist encode", err)
		return
	}
	if err := c.gateway.Write(c.ctx, raw); err != nil {
		c.logger.PrintError("persist write", err)
	}
}
