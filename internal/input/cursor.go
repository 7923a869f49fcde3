package input

import (
	"log"
	"math"

	"github.com/schollz/tapeline/internal/model"
	"github.com/schollz/tapeline/internal/playback"
	"github.com/schollz/tapeline/internal/storage"
	"github.com/schollz/tapeline/internal/types"
)

// Cursor & seek engine: pointer and keyboard input to timeline position
// changes and track-boundary navigation.

// ClickSeek converts a click pixel to a global time and hands it to the
// synchronizer, which resolves in-track seek vs. track switch while playing.
func ClickSeek(m *model.Model, s *playback.Synchronizer, screenPx float64) {
	t := model.PixelToTime(m.Timeline, m.Viewport.PxPerSecond(), timelinePx(m, screenPx))
	s.SeekTo(m.ClampPosition(t))
	log.Printf("seek to %.2f", m.Playback.Position)
}

// Hover updates the hover preview for the pointer's pixel position. The
// label is suppressed within a small radius of a ruler tick label so the two
// never overlap.
func Hover(m *model.Model, screenPx int) {
	m.HoverPx = screenPx
	m.HoverValid = screenPx >= 0 && screenPx < m.Viewport.ContainerWidth
	if !m.HoverValid {
		return
	}
	for _, tick := range m.RulerTicks() {
		if math.Abs(float64(tick.Px-screenPx)) <= types.HoverSuppressPx {
			m.HoverValid = false
			return
		}
	}
}

// HoverLabel is the time label for the current hover position.
func HoverLabel(m *model.Model) (string, bool) {
	if !m.HoverValid {
		return "", false
	}
	t := model.PixelToTime(m.Timeline, m.Viewport.PxPerSecond(), timelinePx(m, float64(m.HoverPx)))
	return model.FormatTime(t), true
}

// NextTrack jumps to the start boundary of the following track. Navigation
// is for repositioning, so it always pauses first.
func NextTrack(m *model.Model, s *playback.Synchronizer) {
	s.Pause()
	if m.Timeline.Len() == 0 {
		return
	}
	i, _ := m.Timeline.Locate(m.Playback.Position)
	if i+1 < m.Timeline.Len() {
		m.Playback.Position = m.Timeline.StartOffset(i + 1)
	} else {
		m.Playback.Position = m.Timeline.StartOffset(i)
	}
}

// PrevTrack restarts the current track when more than the restart threshold
// has elapsed into it, otherwise jumps to the previous track's start.
func PrevTrack(m *model.Model, s *playback.Synchronizer) {
	s.Pause()
	if m.Timeline.Len() == 0 {
		return
	}
	i, off := m.Timeline.Locate(m.Playback.Position)
	if off > types.RestartThresholdSeconds || i == 0 {
		m.Playback.Position = m.Timeline.StartOffset(i)
	} else {
		m.Playback.Position = m.Timeline.StartOffset(i - 1)
	}
}

// SelectTrack marks a track as selected (distinct from active/playing).
// Exactly one track may be selected at a time.
func SelectTrack(m *model.Model, trackID string) {
	if m.Timeline.IndexOf(trackID) == -1 {
		m.SelectedID = ""
		return
	}
	m.SelectedID = trackID
}

// DeleteSelected removes the selected track from the timeline. Selection
// clears with it, and the coordinator recovers if it was the playing track.
func DeleteSelected(m *model.Model, c *playback.Coordinator) bool {
	if m.SelectedID == "" {
		return false
	}
	id := m.SelectedID
	if !m.Timeline.Remove(id) {
		m.SelectedID = ""
		return false
	}
	m.SelectedID = ""
	delete(m.Unplayable, id)
	c.TimelineChanged()
	storage.AutoSave(m)
	log.Printf("removed track %s", id)
	return true
}
