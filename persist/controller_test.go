// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package persist

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spezifisch/persistctl/logger"
	"github.com/spezifisch/persistctl/player"
	"github.com/spezifisch/persistctl/player/playertest"
	"github.com/spezifisch/persistctl/prefs"
	"github.com/spezifisch/persistctl/storage"
)

// recordingStore counts record reads/writes and can fail writes.
type recordingStore struct {
	*storage.MemoryStore
	gets     int
	sets     int
	failSets error
	failGets error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: storage.NewMemoryStore()}
}

func (r *recordingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == storage.DefaultKey {
		r.gets++
		if r.failGets != nil {
			return "", false, r.failGets
		}
	}
	return r.MemoryStore.Get(ctx, key)
}

func (r *recordingStore) Set(ctx context.Context, key, value string) error {
	if r.failSets != nil {
		return r.failSets
	}
	if key == storage.DefaultKey {
		r.sets++
	}
	return r.MemoryStore.Set(ctx, key, value)
}

func (r *recordingStore) seed(t *testing.T, raw string) {
	t.Helper()
	require.NoError(t, r.MemoryStore.Set(context.Background(), storage.DefaultKey, raw))
}

func (r *recordingStore) stored(t *testing.T) prefs.Record {
	t.Helper()
	raw, ok, err := r.MemoryStore.Get(context.Background(), storage.DefaultKey)
	require.NoError(t, err)
	if !ok {
		return prefs.Record{}
	}
	return prefs.Decode(raw)
}

func boolPtr(b bool) *bool { return &b }

func newPlayer() *playertest.Player {
	p := playertest.New()
	p.Texts = []player.TextTrack{
		{ID: "1", Kind: player.KindCaptions, Language: "en"},
		{ID: "2", Kind: player.KindSubtitles, Language: "fr"},
	}
	p.Audios = []player.AudioTrack{
		{ID: "1", Language: "en", Enabled: true},
		{ID: "2", Language: "de"},
	}
	return p
}

func activate(t *testing.T, p *playertest.Player, store storage.Store, o prefs.Overrides) *Controller {
	t.Helper()
	c := Activate(context.Background(), p, store, o)
	assert.Equal(t, StateInit, c.State(), "nothing happens before the player is ready")
	p.MakeReady()
	return c
}

func TestRestoreOnReady(t *testing.T) {
	store := newRecordingStore()
	store.seed(t, `{"muted":true,"volume":0.3,"playbackRate":1.5,"captions":"fr","audioTrack":"de"}`)
	p := newPlayer()

	c := activate(t, p, store, prefs.Overrides{})

	assert.Equal(t, StateListening, c.State())
	assert.True(t, p.IsMuted)
	assert.Equal(t, 0.3, p.Vol)
	assert.Equal(t, 1.5, p.Rate)
	assert.Equal(t, []string{"fr"}, p.ShowingLanguages())
	assert.Equal(t, []string{"de"}, p.EnabledLanguages())
	assert.Equal(t, 0, store.sets, "restoring must not write")
}

func TestRestoredRateBecomesDefault(t *testing.T) {
	store := newRecordingStore()
	store.seed(t, `{"playbackRate":1.5}`)
	p := newPlayer()

	activate(t, p, store, prefs.Overrides{})

	assert.Equal(t, 1.5, p.Rate)
	assert.Equal(t, 1.5, p.DefaultRate)
	assert.Equal(t, 0, store.sets)
}

func TestRestoreOnlyEnabledKinds(t *testing.T) {
	store := newRecordingStore()
	store.seed(t, `{"muted":true,"volume":0.3,"playbackRate":1.5}`)
	p := newPlayer()

	activate(t, p, store, prefs.Overrides{Volume: boolPtr(false), PlaybackRate: boolPtr(false)})

	assert.True(t, p.IsMuted)
	assert.Equal(t, 1.0, p.Vol)
	assert.Equal(t, 1.0, p.Rate)
}

func TestRestoreSkipsUnsupportedRate(t *testing.T) {
	store := newRecordingStore()
	store.seed(t, `{"playbackRate":3}`)
	p := newPlayer()

	activate(t, p, store, prefs.Overrides{})

	assert.Equal(t, 1.0, p.Rate)
	assert.Equal(t, 1.0, p.DefaultRate)
	assert.Empty(t, p.Mutations)
}

func TestRestoreFromMalformedRecord(t *testing.T) {
	store := newRecordingStore()
	store.seed(t, "not json")
	p := newPlayer()

	c := activate(t, p, store, prefs.Overrides{})

	assert.Equal(t, StateListening, c.State())
	assert.Empty(t, p.Mutations)
}

func TestCaptionDefaultWinsOnRestore(t *testing.T) {
	store := newRecordingStore()
	store.seed(t, `{"captions":"fr"}`)
	p := newPlayer()
	p.Texts[0].Default = true

	activate(t, p, store, prefs.Overrides{})

	assert.Equal(t, []string{"en"}, p.ShowingLanguages())
}

func TestWriteOnVolumeChange(t *testing.T) {
	store := newRecordingStore()
	p := newPlayer()
	activate(t, p, store, prefs.Overrides{})

	p.Vol = 0.42
	p.Fire(player.EventVolumeChange)

	rec := store.stored(t)
	require.NotNil(t, rec.Volume)
	assert.Equal(t, 0.42, *rec.Volume)
	require.NotNil(t, rec.Muted)
	assert.False(t, *rec.Muted)
	assert.Equal(t, 1, store.sets, "muted and volume share one write")
}

func TestVolumeDisabledLeavesRecordUnchanged(t *testing.T) {
	store := newRecordingStore()
	store.seed(t, `{"volume":0.8}`)
	p := newPlayer()
	activate(t, p, store, prefs.Overrides{Volume: boolPtr(false), Muted: boolPtr(false)})

	assert.Equal(t, 0, p.Subscribers(player.EventVolumeChange))
	p.Vol = 0.42
	p.Fire(player.EventVolumeChange)

	rec := store.stored(t)
	require.NotNil(t, rec.Volume)
	assert.Equal(t, 0.8, *rec.Volume)
	assert.Equal(t, 0, store.sets)
}

func TestMuteOnlyRecordsMuted(t *testing.T) {
	store := newRecordingStore()
	p := newPlayer()
	activate(t, p, store, prefs.Overrides{Volume: boolPtr(false)})

	p.IsMuted = true
	p.Vol = 0.1
	p.Fire(player.EventVolumeChange)

	var want prefs.Record
	want.SetMuted(true)
	if diff := cmp.Diff(want, store.stored(t)); diff != "" {
		t.Errorf("stored record mismatch (-want +got):\n%s", diff)
	}
}

func TestRateChangeUpdatesDefaultRate(t *testing.T) {
	store := newRecordingStore()
	p := newPlayer()
	activate(t, p, store, prefs.Overrides{})

	p.Rate = 2
	p.Fire(player.EventRateChange)

	rec := store.stored(t)
	require.NotNil(t, rec.PlaybackRate)
	assert.Equal(t, 2.0, *rec.PlaybackRate)
	assert.Equal(t, 2.0, p.DefaultRate)
}

func TestCaptionChangePersistsLanguageAndOff(t *testing.T) {
	store := newRecordingStore()
	p := newPlayer()
	activate(t, p, store, prefs.Overrides{})

	p.Texts[1].Mode = player.ModeShowing
	p.Fire(player.EventTextTrackChange)
	rec := store.stored(t)
	require.NotNil(t, rec.Captions)
	assert.Equal(t, "fr", *rec.Captions)

	p.Texts[1].Mode = player.ModeDisabled
	p.Fire(player.EventTextTrackChange)

	raw, ok, err := store.MemoryStore.Get(context.Background(), storage.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"captions":""}`, raw)
}

func TestAudioTrackChange(t *testing.T) {
	store := newRecordingStore()
	p := newPlayer()
	activate(t, p, store, prefs.Overrides{})

	p.Audios[0].Enabled = false
	p.Audios[1].Enabled = true
	p.Fire(player.EventAudioTrackChange)

	rec := store.stored(t)
	require.NotNil(t, rec.AudioTrack)
	assert.Equal(t, "de", *rec.AudioTrack)

	p.Audios = nil
	p.Fire(player.EventAudioTrackChange)
	assert.Equal(t, 1, store.sets, "no enabled track means nothing to record")
}

func TestWritesKeepSiblingFields(t *testing.T) {
	store := newRecordingStore()
	p := newPlayer()
	activate(t, p, store, prefs.Overrides{})

	p.Rate = 1.5
	p.Fire(player.EventRateChange)
	p.Vol = 0.2
	p.Fire(player.EventVolumeChange)

	rec := store.stored(t)
	require.NotNil(t, rec.PlaybackRate)
	require.NotNil(t, rec.Volume)
	assert.Equal(t, 1.5, *rec.PlaybackRate)
	assert.Equal(t, 0.2, *rec.Volume)
}

func TestSharedKeyLastWriteWins(t *testing.T) {
	store := newRecordingStore()
	p1, p2 := newPlayer(), newPlayer()
	activate(t, p1, store, prefs.Overrides{})
	activate(t, p2, store, prefs.Overrides{})

	p1.Vol = 0.1
	p1.Fire(player.EventVolumeChange)
	p2.Rate = 2
	p2.Fire(player.EventRateChange)
	p2.Vol = 0.9
	p2.Fire(player.EventVolumeChange)

	rec := store.stored(t)
	assert.Equal(t, 0.9, *rec.Volume)
	assert.Equal(t, 2.0, *rec.PlaybackRate)
}

func TestWithKeyIsolatesPlayers(t *testing.T) {
	store := storage.NewMemoryStore()
	p := newPlayer()
	c := Activate(context.Background(), p, store, prefs.Overrides{}, WithKey("player-2"))
	p.MakeReady()

	p.Vol = 0.5
	p.Fire(player.EventVolumeChange)

	_, ok, err := store.Get(context.Background(), storage.DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)
	raw, ok, err := store.Get(context.Background(), "player-2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"muted":false,"volume":0.5}`, raw)
	assert.Equal(t, 0.5, *c.Record().Volume)
}

func TestDisabledStorageIsNoop(t *testing.T) {
	overrides := []prefs.Overrides{
		{},
		{Muted: boolPtr(false), Captions: boolPtr(false)},
		{Muted: boolPtr(false), Volume: boolPtr(false), PlaybackRate: boolPtr(false), Captions: boolPtr(false), AudioTrack: boolPtr(false)},
	}
	for _, o := range overrides {
		var buf bytes.Buffer
		store := newRecordingStore()
		store.failSets = errors.New("storage disabled")
		p := newPlayer()

		c := Activate(context.Background(), p, store, o, WithLogger(logger.Init(logger.Config{Console: &buf})))
		p.MakeReady()

		assert.Equal(t, StateDisabled, c.State())
		for _, ev := range []player.Event{player.EventVolumeChange, player.EventRateChange, player.EventTextTrackChange, player.EventAudioTrackChange} {
			assert.Equal(t, 0, p.Subscribers(ev), ev.String())
		}
		assert.Equal(t, 0, store.gets)
		assert.Equal(t, 0, store.sets)
		assert.Empty(t, p.Mutations)
		assert.Contains(t, buf.String(), "storage unavailable")

		buf.Reset()
		c.Init()
		assert.Empty(t, buf.String(), "the notice is emitted once")
	}
}

func TestWriteFailureDoesNotStopListening(t *testing.T) {
	store := newRecordingStore()
	p := newPlayer()
	c := activate(t, p, store, prefs.Overrides{})

	store.failSets = errors.New("quota exceeded")
	p.Vol = 0.3
	p.Fire(player.EventVolumeChange)
	assert.Equal(t, 0, store.sets)
	assert.Equal(t, 0.3, *c.Record().Volume)

	store.failSets = nil
	p.Vol = 0.4
	p.Fire(player.EventVolumeChange)
	rec := store.stored(t)
	assert.Equal(t, 0.4, *rec.Volume)
}

func TestReadFailureFallsBackToLastRecord(t *testing.T) {
	store := newRecordingStore()
	p := newPlayer()
	activate(t, p, store, prefs.Overrides{})

	p.Rate = 1.5
	p.Fire(player.EventRateChange)

	store.failGets = errors.New("io error")
	p.Vol = 0.6
	p.Fire(player.EventVolumeChange)

	rec := store.stored(t)
	assert.Equal(t, 1.5, *rec.PlaybackRate)
	assert.Equal(t, 0.6, *rec.Volume)
}

func TestInitRunsOnce(t *testing.T) {
	store := newRecordingStore()
	p := newPlayer()
	c := activate(t, p, store, prefs.Overrides{})

	c.Init()
	assert.Equal(t, 1, p.Subscribers(player.EventVolumeChange))
	assert.Equal(t, 1, store.gets)
}

func TestActivateOnReadyPlayer(t *testing.T) {
	p := newPlayer()
	p.MakeReady()

	c := Activate(context.Background(), p, storage.NewMemoryStore(), prefs.Overrides{})
	assert.Equal(t, StateListening, c.State())
}
