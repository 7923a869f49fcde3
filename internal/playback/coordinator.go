package playback

import (
	"log"

	"github.com/schollz/tapeline/internal/model"
)

// Coordinator reconciles live edits against an in-progress playback session.
// Every method is a no-op while stopped; the editing engine calls in after
// each mutation and the coordinator decides whether the player needs to
// follow.
type Coordinator struct {
	m *model.Model
	s *Synchronizer
}

func NewCoordinator(m *model.Model, s *Synchronizer) *Coordinator {
	return &Coordinator{m: m, s: s}
}

// TrimChanged runs after a trim edit. When the edit is on the active track
// and the player's position fell out of the new playable window, the player
// is seeked back into range; landing on the new end boundary also stops
// playback there rather than silently playing past a shortened end.
func (c *Coordinator) TrimChanged(trackID string) {
	if !c.m.Playback.IsPlaying || trackID != c.s.ActiveTrackID() {
		return
	}
	tr, ok := c.m.ActiveTrack()
	if !ok {
		return
	}
	ct := c.s.back.CurrentTime()
	lo := tr.TrimStart
	hi := c.s.backendEnd(tr)

	switch {
	case ct < lo:
		log.Printf("trim moved start past position, re-seeking to %.2f", lo)
		c.s.seekBackend(lo)
	case ct > hi:
		log.Printf("trim moved end before position, stopping at boundary")
		c.s.seekBackend(hi)
		i := c.m.Playback.ActiveIndex
		c.s.Pause()
		c.m.Playback.Position = c.m.Timeline.StartOffset(i) + tr.EffectiveDuration()
	}
}

// TimelineChanged runs after a reorder or removal. The active track is
// re-located by identity; if it is gone entirely, playback stops and active
// state is cleared.
func (c *Coordinator) TimelineChanged() {
	if !c.m.Playback.IsPlaying {
		return
	}
	id := c.s.ActiveTrackID()
	if id == "" {
		return
	}
	i := c.m.Timeline.IndexOf(id)
	if i == -1 {
		c.s.StopForRemoval()
		return
	}
	if i != c.m.Playback.ActiveIndex {
		log.Printf("active track moved from %d to %d", c.m.Playback.ActiveIndex, i)
	}
	c.s.SetActiveIndex(i)
	// the track's cumulative start may have shifted even if its index did not
	tr := c.m.Timeline.Get(i)
	ct := c.s.back.CurrentTime()
	c.m.Playback.Position = c.m.ClampPosition(c.m.Timeline.StartOffset(i) + (ct - tr.TrimStart))
}

// VolumeChanged runs after a master or per-track gain edit: recompute and
// push, without interrupting the position.
func (c *Coordinator) VolumeChanged(trackID string) {
	if !c.m.Playback.IsPlaying {
		return
	}
	if trackID != "" && trackID != c.s.ActiveTrackID() {
		return
	}
	c.s.ApplyVolume()
}
