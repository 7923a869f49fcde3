package model

import (
	"github.com/schollz/tapeline/internal/types"
)

// PlaybackState is the authoritative playback position. It is owned by the
// playback synchronizer; the cursor engine writes Position/ActiveIndex only
// through explicit seeks.
type PlaybackState struct {
	IsPlaying    bool
	Position     float64 // global seconds in [0, TotalDuration]
	ActiveIndex  int     // index into Timeline.Tracks, -1 when none
	MasterVolume float64
	LoopAll      bool
}

// ViewportState holds the time<->pixel mapping state. Zoom animates toward
// TargetZoom; the zoom loop owns Zoom/ScrollOffset, the playback loop never
// touches them.
type ViewportState struct {
	Zoom           float64
	TargetZoom     float64
	ScrollOffset   float64
	ContainerWidth int

	// Anchor captured at gesture start so the moment under the pointer stays
	// under the same screen pixel for the whole interpolation
	AnchorTime     float64
	AnchorScreenPx float64
	Animating      bool
}

// DragState is the transient state of a live reorder drag.
type DragState struct {
	Active  bool
	TrackID string
}

// TrimDragState is the transient state of a trim-edge drag. Gap is the
// presentational offset (seconds) that lets the leading edge recede during a
// start trim without shifting later tracks; it is never persisted.
type TrimDragState struct {
	Active       bool
	TrackID      string
	Edge         types.TrimEdge
	GrabPx       float64
	StartAtGrab  float64 // TrimStart value when the drag began
	EndAtGrab    float64 // TrimEnd value when the drag began
	Gap          float64
	GapAnimating bool
}

// Model is the shared mutable state for the whole program, in the same shape
// the rest of the packages expect: input mutates it, views read it.
type Model struct {
	Timeline *Timeline
	Playback PlaybackState
	Viewport ViewportState

	SelectedID string
	Drag       DragState
	Trim       TrimDragState

	// Hover preview, purely cosmetic
	HoverPx    int
	HoverValid bool

	// Tracks that failed to load twice; kept on the timeline but unplayable
	Unplayable map[string]bool

	ViewMode     types.ViewMode
	PreviousView types.ViewMode

	TermWidth  int
	TermHeight int

	OSCPort    int
	SaveFolder string
}

func NewModel(oscPort int, saveFolder string) *Model {
	m := &Model{
		Timeline:   NewTimeline(),
		OSCPort:    oscPort,
		SaveFolder: saveFolder,
		Unplayable: map[string]bool{},
		ViewMode:   types.TimelineView,
	}
	m.Playback.ActiveIndex = -1
	m.Playback.MasterVolume = 1.0
	m.Viewport.Zoom = 1.0
	m.Viewport.TargetZoom = 1.0
	m.Viewport.ContainerWidth = 120
	return m
}

// ActiveTrack returns the currently playing track, or ok=false.
func (m *Model) ActiveTrack() (TimelineTrack, bool) {
	i := m.Playback.ActiveIndex
	if i < 0 || i >= m.Timeline.Len() {
		return TimelineTrack{}, false
	}
	return m.Timeline.Get(i), true
}

// ClampPosition clamps a global seek target into [0, TotalDuration].
func (m *Model) ClampPosition(t float64) float64 {
	if t < 0 {
		return 0
	}
	if total := m.Timeline.TotalDuration(); t > total {
		return total
	}
	return t
}

// MinVisibleDuration is the trim floor at the current zoom: the smallest
// effective duration that still renders at MinClipPx pixels.
func (m *Model) MinVisibleDuration() float64 {
	pps := m.Viewport.PxPerSecond()
	if pps <= 0 {
		return 0
	}
	return types.MinClipPx / pps
}
