package types

// ViewMode selects which top-level view is rendered
type ViewMode int

const (
	TimelineView ViewMode = iota
	InspectorView
	SettingsView
)

// Variant selects which rendition of a source clip a track plays
type Variant int

const (
	VariantVocal Variant = iota
	VariantInstrumental
)

func (v Variant) String() string {
	if v == VariantInstrumental {
		return "instrumental"
	}
	return "vocal"
}

// TrimEdge identifies which edge of a track a trim drag grabs
type TrimEdge int

const (
	TrimEdgeNone TrimEdge = iota
	TrimEdgeStart
	TrimEdgeEnd
)

// Timeline geometry constants
const (
	// MinTimelineSeconds is the duration that exactly fills the container at zoom=1
	MinTimelineSeconds = 30 * 60.0

	// MaxZoom bounds the zoom factor; zoom=1 is fit-to-width
	MaxZoom = 64.0

	// MinTrackPx is the clickability floor: a track never renders narrower
	// than this many pixels regardless of zoom
	MinTrackPx = 16

	// MinClipPx divided by the current pxPerSecond gives the minimum
	// effective duration a trim drag may leave behind. Kept separate from
	// MinTrackPx on purpose: MinTrackPx is a display floor, MinClipPx is a
	// trim floor.
	MinClipPx = 8.0
)

// Zoom animation tuning
const (
	ZoomLerpFactor = 0.25
	ZoomEpsilon    = 1e-3
)

// Playback loop tuning
const (
	// FrameFPS is the rate of the playback frame loop
	FrameFPS = 60

	// CommitEveryNFrames throttles shared-state position commits; the cursor
	// itself is moved every frame through the render channel
	CommitEveryNFrames = 15
)

// Cursor engine tuning
const (
	// RestartThresholdSeconds: "previous" restarts the current track if more
	// than this much has elapsed into it, otherwise jumps a track back
	RestartThresholdSeconds = 2.0

	// HoverSuppressPx suppresses the hover time label within this pixel
	// radius of a ruler tick label
	HoverSuppressPx = 3
)

// TrimGapDecayFactor shrinks the transient start-trim gap each UI tick after
// the drag releases
const TrimGapDecayFactor = 0.65

// Screen layout rows shared by the renderer and mouse hit-testing
const (
	RowHeader = 0
	RowRuler  = 1
	LaneTop   = 2
	LaneRows  = 6
)

// TrimHandlePx is the grab radius around a track edge for trim drags
const TrimHandlePx = 2
