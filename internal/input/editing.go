package input

import (
	"log"
	"math"

	"github.com/schollz/tapeline/internal/library"
	"github.com/schollz/tapeline/internal/model"
	"github.com/schollz/tapeline/internal/playback"
	"github.com/schollz/tapeline/internal/storage"
	"github.com/schollz/tapeline/internal/types"
)

// Editing engine: live reorder, nearest-gap insertion, trim-edge drags.
// All pixel arguments are viewport pixels; conversion to timeline-origin
// pixels happens here.

func timelinePx(m *model.Model, screenPx float64) float64 {
	return screenPx + m.Viewport.ScrollOffset
}

// TrackAtPixel returns the index of the track whose display span contains
// the given viewport pixel, or -1.
func TrackAtPixel(m *model.Model, screenPx float64) int {
	px := timelinePx(m, screenPx)
	pps := m.Viewport.PxPerSecond()
	cum := 0.0
	for i, tr := range m.Timeline.Tracks {
		w := model.TrackWidthPx(tr, pps)
		if px >= cum && px < cum+w {
			return i
		}
		cum += w
	}
	return -1
}

// TrimEdgeAtPixel reports whether the pixel grabs a trim handle: within
// TrimHandlePx of the leading or trailing edge of a track.
func TrimEdgeAtPixel(m *model.Model, screenPx float64) (int, types.TrimEdge) {
	px := timelinePx(m, screenPx)
	pps := m.Viewport.PxPerSecond()
	cum := 0.0
	for i, tr := range m.Timeline.Tracks {
		w := model.TrackWidthPx(tr, pps)
		if math.Abs(px-cum) <= types.TrimHandlePx {
			return i, types.TrimEdgeStart
		}
		if math.Abs(px-(cum+w)) <= types.TrimHandlePx {
			return i, types.TrimEdgeEnd
		}
		cum += w
	}
	return -1, types.TrimEdgeNone
}

// --- Live reorder ---

// BeginReorderDrag starts dragging a track. The sequence reorders live as
// the pointer moves; release only clears the transient state.
func BeginReorderDrag(m *model.Model, trackID string) {
	if m.Timeline.IndexOf(trackID) == -1 {
		return
	}
	m.Drag = model.DragState{Active: true, TrackID: trackID}
	log.Printf("reorder drag started for %s", trackID)
}

// DragReorderOver reorders immediately so the visual order always matches
// the working order.
func DragReorderOver(m *model.Model, c *playback.Coordinator, screenPx float64) {
	if !m.Drag.Active {
		return
	}
	from := m.Timeline.IndexOf(m.Drag.TrackID)
	if from == -1 {
		m.Drag = model.DragState{}
		return
	}
	target := TrackAtPixel(m, screenPx)
	if target == -1 || target == from {
		return
	}
	m.Timeline.Move(from, target)
	c.TimelineChanged()
	log.Printf("reorder: %s moved %d -> %d", m.Drag.TrackID, from, target)
}

// EndReorderDrag commits nothing: the order is already final. It clears the
// drag state and persists.
func EndReorderDrag(m *model.Model) {
	if !m.Drag.Active {
		return
	}
	m.Drag = model.DragState{}
	storage.AutoSave(m)
}

// --- Insertion from an external source ---

// nearestBoundary picks the insertion gap whose boundary pixel is closest to
// the drop, including the virtual boundary at 0 and at the end.
func nearestBoundary(m *model.Model, screenPx float64) int {
	px := timelinePx(m, screenPx)
	bounds := model.BoundaryPx(m.Timeline, m.Viewport.PxPerSecond())
	best := 0
	bestDist := math.Inf(1)
	for i, b := range bounds {
		if d := math.Abs(px - b); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// InsertClipAt places a new track for the clip at the nearest insertion gap.
// A source already on the timeline is skipped.
func InsertClipAt(m *model.Model, c *playback.Coordinator, clip *library.Clip, id string, screenPx float64) bool {
	if m.Timeline.HasSource(clip.SourceID) {
		log.Printf("source %s already on timeline, skipping", clip.SourceID)
		return false
	}
	idx := nearestBoundary(m, screenPx)
	m.Timeline.Insert(idx, model.TimelineTrack{
		ID:       id,
		SourceID: clip.SourceID,
		Variant:  clip.DefaultVariant,
		Duration: clip.Duration,
		Volume:   1.0,
	})
	c.TimelineChanged()
	storage.AutoSave(m)
	log.Printf("inserted %s at index %d", clip.SourceID, idx)
	return true
}

// InsertBatchAt inserts an ordered batch contiguously at the nearest gap,
// skipping sources already present and advancing the index once per accepted
// clip so the batch order is preserved. IDs are matched positionally to the
// clips. Returns the number inserted.
func InsertBatchAt(m *model.Model, c *playback.Coordinator, clips []*library.Clip, ids []string, screenPx float64) int {
	idx := nearestBoundary(m, screenPx)
	accepted := 0
	for i, clip := range clips {
		if m.Timeline.HasSource(clip.SourceID) {
			continue
		}
		m.Timeline.Insert(idx, model.TimelineTrack{
			ID:       ids[i],
			SourceID: clip.SourceID,
			Variant:  clip.DefaultVariant,
			Duration: clip.Duration,
			Volume:   1.0,
		})
		idx++
		accepted++
	}
	if accepted > 0 {
		c.TimelineChanged()
		storage.AutoSave(m)
	}
	log.Printf("batch insert: %d of %d clips accepted", accepted, len(clips))
	return accepted
}

// --- Trim-edge drag ---

// BeginTrimDrag grabs a trim handle.
func BeginTrimDrag(m *model.Model, trackID string, edge types.TrimEdge, screenPx float64) {
	i := m.Timeline.IndexOf(trackID)
	if i == -1 || edge == types.TrimEdgeNone {
		return
	}
	tr := m.Timeline.Get(i)
	m.Trim = model.TrimDragState{
		Active:      true,
		TrackID:     trackID,
		Edge:        edge,
		GrabPx:      screenPx,
		StartAtGrab: tr.TrimStart,
		EndAtGrab:   tr.TrimEnd,
	}
}

// DragTrim applies a trim drag. The underlying time values are final during
// the drag (clamped live against the zoom-derived minimum); only the start
// gap is presentational.
func DragTrim(m *model.Model, c *playback.Coordinator, screenPx float64) {
	if !m.Trim.Active {
		return
	}
	i := m.Timeline.IndexOf(m.Trim.TrackID)
	if i == -1 {
		m.Trim = model.TrimDragState{}
		return
	}
	pps := m.Viewport.PxPerSecond()
	if pps <= 0 {
		return
	}
	deltaSec := (screenPx - m.Trim.GrabPx) / pps
	minDur := m.MinVisibleDuration()
	tr := m.Timeline.Get(i)

	if m.Trim.Edge == types.TrimEdgeStart {
		tr = tr.WithTrimStart(m.Trim.StartAtGrab+deltaSec, minDur)
		// leading edge recedes without shifting later tracks until release
		m.Trim.Gap = tr.TrimStart - m.Trim.StartAtGrab
		if m.Trim.Gap < 0 {
			m.Trim.Gap = 0
		}
	} else {
		tr = tr.WithTrimEnd(m.Trim.EndAtGrab-deltaSec, minDur)
	}
	m.Timeline.Set(i, tr)
	c.TrimChanged(tr.ID)
}

// EndTrimDrag releases the handle. The committed values are already final;
// the start gap snaps back to zero with a short eased transition driven by
// StepTrimGap.
func EndTrimDrag(m *model.Model) bool {
	if !m.Trim.Active {
		return false
	}
	m.Trim.Active = false
	storage.AutoSave(m)
	if m.Trim.Gap > 0 {
		m.Trim.GapAnimating = true
		return true
	}
	m.Trim = model.TrimDragState{}
	return false
}

// StepTrimGap eases the release gap toward zero; returns false when done.
func StepTrimGap(m *model.Model) bool {
	if !m.Trim.GapAnimating {
		return false
	}
	m.Trim.Gap *= types.TrimGapDecayFactor
	pps := m.Viewport.PxPerSecond()
	if m.Trim.Gap*pps < 0.5 {
		m.Trim = model.TrimDragState{}
		return false
	}
	return true
}

// --- Volume and variant edits ---

// AdjustTrackVolume nudges a track's gain and pushes it through the
// coordinator when that track is playing.
func AdjustTrackVolume(m *model.Model, c *playback.Coordinator, trackID string, delta float64) {
	i := m.Timeline.IndexOf(trackID)
	if i == -1 {
		return
	}
	tr := m.Timeline.Get(i)
	tr = tr.WithVolume(tr.Volume + delta)
	m.Timeline.Set(i, tr)
	c.VolumeChanged(trackID)
	storage.AutoSave(m)
}

// AdjustMasterVolume nudges the master gain.
func AdjustMasterVolume(m *model.Model, c *playback.Coordinator, delta float64) {
	v := m.Playback.MasterVolume + delta
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	m.Playback.MasterVolume = v
	c.VolumeChanged("")
	storage.AutoSave(m)
}

// ToggleVariant flips a track between the two renditions of its source.
func ToggleVariant(m *model.Model, trackID string) {
	i := m.Timeline.IndexOf(trackID)
	if i == -1 {
		return
	}
	tr := m.Timeline.Get(i)
	if tr.Variant == types.VariantVocal {
		tr = tr.WithVariant(types.VariantInstrumental)
	} else {
		tr = tr.WithVariant(types.VariantVocal)
	}
	m.Timeline.Set(i, tr)
	storage.AutoSave(m)
}
