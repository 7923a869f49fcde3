// Package playback owns the playback state machine: it is the only writer of
// PlaybackState, drives the per-frame sync loop, and reconciles live edits
// against an in-progress session.
package playback

import (
	"fmt"
	"log"

	"github.com/schollz/tapeline/internal/backend"
	"github.com/schollz/tapeline/internal/library"
	"github.com/schollz/tapeline/internal/model"
	"github.com/schollz/tapeline/internal/types"
)

// FrameSink is the cheap every-frame channel: the renderer moves the cursor
// glyph from it directly, without going through shared state. The expensive
// channel is CommitPosition, which runs at a reduced rate.
type FrameSink interface {
	RenderFrame(px float64)
}

// NopSink discards frames; used when no renderer is attached.
type NopSink struct{}

func (NopSink) RenderFrame(float64) {}

// Synchronizer keeps the model, the player and the cursor consistent with a
// single authoritative global position. All methods run on the event loop;
// backend completions arrive through the Handle* methods via the standing
// subscription in autoadvance.go.
type Synchronizer struct {
	m    *model.Model
	back backend.Backend
	lib  *library.Library
	sink FrameSink

	frameCount   int
	lastComputed float64
	haveComputed bool

	// load in flight: the track id captured at request time is the
	// generation marker that gates stale completions
	loading        bool
	loadingURL     string
	loadingTrackID string
	pendingSeek    float64
	hasPendingSeek bool

	// seek in flight: the frame loop skips a frame rather than act on a
	// position report that predates the seek
	seekPending bool

	loadedKey      string // source/variant currently loaded in the player
	lastStartedKey string
	retried        map[string]bool

	activeTrackID string
	skipDepth     int
}

func NewSynchronizer(m *model.Model, back backend.Backend, lib *library.Library, sink FrameSink) *Synchronizer {
	if sink == nil {
		sink = NopSink{}
	}
	return &Synchronizer{
		m:       m,
		back:    back,
		lib:     lib,
		sink:    sink,
		retried: map[string]bool{},
	}
}

func sourceKey(sourceID string, v types.Variant) string {
	return fmt.Sprintf("%s/%s", sourceID, v)
}

// Play transitions Stopped -> Playing: the active track and in-track offset
// are resolved from the current global position.
func (s *Synchronizer) Play() {
	if s.m.Playback.IsPlaying || s.m.Timeline.Len() == 0 {
		return
	}
	i, off := s.m.Timeline.Locate(s.m.Playback.Position)
	if i == -1 {
		return
	}
	s.m.Playback.IsPlaying = true
	s.setActive(i)
	s.applyVolume()
	s.startTrackAt(i, off)
	log.Printf("play: track %d at offset %.2f", i, off)
}

// Pause transitions Playing -> Stopped. The global position carries forward
// unchanged; a pending in-track seek from an unfinished load is dropped so
// the late completion cannot apply it.
func (s *Synchronizer) Pause() {
	if !s.m.Playback.IsPlaying {
		return
	}
	s.Flush()
	s.back.Pause()
	s.m.Playback.IsPlaying = false
	s.hasPendingSeek = false
	s.back.SetVolume(s.m.Playback.MasterVolume)
	log.Printf("pause at %.2f", s.m.Playback.Position)
}

// Toggle flips between Play and Pause.
func (s *Synchronizer) Toggle() {
	if s.m.Playback.IsPlaying {
		s.Pause()
	} else {
		s.Play()
	}
}

// SeekTo moves the authoritative position, clamped into [0, total]. While
// playing, a seek inside the active track reuses the loaded source; anywhere
// else switches the active track at the right in-track offset.
func (s *Synchronizer) SeekTo(t float64) {
	t = s.m.ClampPosition(t)
	if !s.m.Playback.IsPlaying {
		s.m.Playback.Position = t
		return
	}
	i, off := s.m.Timeline.Locate(t)
	if i == -1 {
		return
	}
	s.m.Playback.Position = t
	if i == s.m.Playback.ActiveIndex {
		tr := s.m.Timeline.Get(i)
		if s.loading && tr.ID == s.loadingTrackID {
			// track is still loading; the backend has nothing to seek
			// yet, so replace the queued offset instead
			s.pendingSeek = tr.TrimStart + off
			s.hasPendingSeek = true
			return
		}
		s.seekBackend(tr.TrimStart + off)
		return
	}
	s.setActive(i)
	s.applyVolume()
	s.startTrackAt(i, off)
}

// Step runs once per animation frame while Playing. It reads the player's
// mirrored time, pushes the cursor through the cheap render channel every
// frame, and commits to shared state every CommitEveryNFrames frames.
func (s *Synchronizer) Step() {
	if !s.m.Playback.IsPlaying || s.loading {
		return
	}
	if s.seekPending {
		// a seek is in flight; acting on the stale time would jump the
		// cursor backward for a frame
		return
	}
	tr, ok := s.m.ActiveTrack()
	if !ok {
		return
	}
	ct := s.back.CurrentTime()

	// Trim-end enforcement: the trim boundary behaves exactly like the
	// physical end of the file.
	if limit := s.backendEnd(tr); ct >= limit && limit > 0 {
		s.back.Pause()
		log.Printf("trim-end reached at %.2f (limit %.2f)", ct, limit)
		s.HandleEnded()
		return
	}

	if !s.back.IsPlaying() {
		// natural end reported between ended events
		s.HandleEnded()
		return
	}

	i := s.m.Playback.ActiveIndex
	newPos := s.m.Timeline.StartOffset(i) + (ct - tr.TrimStart)
	if min := s.m.Timeline.StartOffset(i); newPos < min {
		newPos = min
	}
	s.lastComputed = newPos
	s.haveComputed = true

	v := &s.m.Viewport
	s.sink.RenderFrame(model.TimeToPixel(s.m.Timeline, v.PxPerSecond(), newPos) - v.ScrollOffset)

	s.frameCount++
	if s.frameCount%types.CommitEveryNFrames == 0 {
		s.CommitPosition(newPos)
	}
}

// CommitPosition writes the authoritative shared position.
func (s *Synchronizer) CommitPosition(t float64) {
	s.m.Playback.Position = s.m.ClampPosition(t)
}

// Flush commits the last frame-computed position so teardown never loses it.
func (s *Synchronizer) Flush() {
	if s.haveComputed {
		s.CommitPosition(s.lastComputed)
		s.haveComputed = false
	}
}

// HandleEnded is the natural-end transition: advance, wrap when loop-all is
// on, or stop at the end of the timeline.
func (s *Synchronizer) HandleEnded() {
	if !s.m.Playback.IsPlaying || s.loading {
		return
	}
	i := s.m.Playback.ActiveIndex
	n := s.m.Timeline.Len()
	switch {
	case i+1 < n:
		s.advanceTo(i + 1)
	case s.m.Playback.LoopAll && n > 0:
		s.advanceTo(0)
	default:
		s.m.Playback.IsPlaying = false
		s.m.Playback.Position = s.m.Timeline.TotalDuration()
		s.setActive(-1)
		s.back.SetVolume(s.m.Playback.MasterVolume)
		log.Printf("end of timeline, stopped at %.2f", s.m.Playback.Position)
	}
}

func (s *Synchronizer) advanceTo(i int) {
	s.setActive(i)
	s.m.Playback.Position = s.m.Timeline.StartOffset(i)
	s.applyVolume()
	s.startTrackAt(i, 0)
	log.Printf("auto-advance to track %d at %.2f", i, s.m.Playback.Position)
}

// HandleLoaded applies a load completion. The URL must match the in-flight
// request and the captured track must still be the active one; anything else
// is a stale completion and is discarded.
func (s *Synchronizer) HandleLoaded(ev backend.LoadedEvent) {
	if !s.loading || ev.URL != s.loadingURL {
		return
	}
	s.loading = false
	tr, ok := s.m.ActiveTrack()
	if !ok || tr.ID != s.loadingTrackID || !s.m.Playback.IsPlaying {
		log.Printf("discarding stale load completion for %s", ev.URL)
		s.hasPendingSeek = false
		return
	}
	s.loadedKey = sourceKey(tr.SourceID, tr.Variant)
	if s.hasPendingSeek {
		s.seekBackend(s.pendingSeek)
		s.hasPendingSeek = false
	}
	s.back.Play()
}

// HandleError retries once with a refreshed URL, then marks the track
// unplayable and stops. The retry budget resets on track/variant change.
func (s *Synchronizer) HandleError(ev backend.ErrorEvent) {
	if !s.loading || ev.URL != s.loadingURL {
		return
	}
	tr, ok := s.m.ActiveTrack()
	if !ok || tr.ID != s.loadingTrackID {
		s.loading = false
		return
	}
	key := sourceKey(tr.SourceID, tr.Variant)
	if !s.retried[key] {
		s.retried[key] = true
		if url, ok := s.lib.RefreshURL(tr.SourceID, tr.Variant); ok {
			log.Printf("retrying %s with refreshed url", key)
			s.loadingURL = url
			s.back.Load(url)
			return
		}
	}
	log.Printf("track %s unplayable after retry", tr.ID)
	s.m.Unplayable[tr.ID] = true
	s.loading = false
	s.hasPendingSeek = false
	s.m.Playback.IsPlaying = false
	s.setActive(-1)
	s.back.SetVolume(s.m.Playback.MasterVolume)
}

// HandleTimeUpdate clears the seek suspension: the first report after a seek
// reflects the new position.
func (s *Synchronizer) HandleTimeUpdate(ev backend.TimeUpdateEvent) {
	s.seekPending = false
}

// StopForRemoval recovers from the active track disappearing: stop the
// player, clear active and volume state.
func (s *Synchronizer) StopForRemoval() {
	s.back.Pause()
	s.m.Playback.IsPlaying = false
	s.setActive(-1)
	s.loading = false
	s.hasPendingSeek = false
	s.back.SetVolume(s.m.Playback.MasterVolume)
	log.Printf("active track removed, playback stopped")
}

// ActiveTrackID is the identity of the playing track, independent of index.
func (s *Synchronizer) ActiveTrackID() string {
	return s.activeTrackID
}

func (s *Synchronizer) setActive(i int) {
	s.m.Playback.ActiveIndex = i
	if i >= 0 && i < s.m.Timeline.Len() {
		s.activeTrackID = s.m.Timeline.Get(i).ID
	} else {
		s.activeTrackID = ""
	}
}

// SetActiveIndex re-points the active index after a reorder without touching
// the player.
func (s *Synchronizer) SetActiveIndex(i int) {
	s.setActive(i)
}

func (s *Synchronizer) applyVolume() {
	if tr, ok := s.m.ActiveTrack(); ok {
		s.back.SetVolume(tr.Volume * s.m.Playback.MasterVolume)
	}
}

// ApplyVolume recomputes track x master gain and pushes it to the player.
func (s *Synchronizer) ApplyVolume() { s.applyVolume() }

func (s *Synchronizer) seekBackend(seconds float64) {
	s.seekPending = true
	s.back.SeekTo(seconds)
}

// backendEnd is the position in the loaded source where the active track's
// playable window closes.
func (s *Synchronizer) backendEnd(tr model.TimelineTrack) float64 {
	d := s.back.Duration()
	if d <= 0 {
		d = tr.Duration
	}
	return d - tr.TrimEnd
}

// startTrackAt points the player at track i, offset seconds into its
// effective window. A source already loaded at the same variant is reused
// with a plain seek; otherwise the load is requested and the in-track seek
// queued until the loaded completion arrives.
func (s *Synchronizer) startTrackAt(i int, offset float64) {
	tr := s.m.Timeline.Get(i)
	if s.m.Unplayable[tr.ID] {
		// skip over unplayable tracks, but never chase our own tail when
		// every track is unplayable
		if s.skipDepth >= s.m.Timeline.Len() {
			s.skipDepth = 0
			s.m.Playback.IsPlaying = false
			s.setActive(-1)
			log.Printf("no playable tracks, stopped")
			return
		}
		s.skipDepth++
		log.Printf("track %s marked unplayable, skipping", tr.ID)
		s.HandleEnded()
		s.skipDepth--
		return
	}
	key := sourceKey(tr.SourceID, tr.Variant)
	if key != s.lastStartedKey {
		delete(s.retried, key)
		s.lastStartedKey = key
	}
	seek := tr.TrimStart + offset
	if s.loadedKey == key && !s.loading {
		s.seekBackend(seek)
		s.back.Play()
		return
	}
	url, ok := s.lib.URL(tr.SourceID, tr.Variant)
	if !ok {
		log.Printf("no source for %s", key)
		s.m.Unplayable[tr.ID] = true
		s.HandleEnded()
		return
	}
	s.loading = true
	s.loadingURL = url
	s.loadingTrackID = tr.ID
	s.pendingSeek = seek
	s.hasPendingSeek = true
	s.back.Load(url)
}
