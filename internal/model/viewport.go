package model

import (
	"fmt"
	"math"

	"github.com/schollz/tapeline/internal/types"
)

// Time<->pixel mapping. Every conversion walks the track sequence so the
// MinTrackPx display floor is honored: a visually-floored short track still
// maps times correctly because interpolation inside a track uses the track's
// own elapsed/duration ratio, not a global per-pixel ratio.

// TrackWidthPx is the display width of one track at the given scale.
func TrackWidthPx(t TimelineTrack, pxPerSecond float64) float64 {
	w := math.Round(t.EffectiveDuration() * pxPerSecond)
	if w < types.MinTrackPx {
		w = types.MinTrackPx
	}
	return w
}

// TimeToPixel converts a global timeline position to a pixel offset from the
// timeline origin (not the viewport: callers subtract the scroll offset).
func TimeToPixel(tl *Timeline, pxPerSecond, t float64) float64 {
	if t < 0 {
		t = 0
	}
	elapsed := 0.0
	px := 0.0
	for _, tr := range tl.Tracks {
		eff := tr.EffectiveDuration()
		w := TrackWidthPx(tr, pxPerSecond)
		if t <= elapsed+eff {
			if eff <= 0 {
				return px
			}
			return px + (t-elapsed)/eff*w
		}
		elapsed += eff
		px += w
	}
	return px
}

// PixelToTime is the inverse walk: fractional interpolation by pixel offset
// within the containing track's display width.
func PixelToTime(tl *Timeline, pxPerSecond, px float64) float64 {
	if px < 0 {
		px = 0
	}
	elapsed := 0.0
	cum := 0.0
	for _, tr := range tl.Tracks {
		eff := tr.EffectiveDuration()
		w := TrackWidthPx(tr, pxPerSecond)
		if px <= cum+w {
			if w <= 0 {
				return elapsed
			}
			return elapsed + (px-cum)/w*eff
		}
		elapsed += eff
		cum += w
	}
	return elapsed
}

// TotalWidthPx is the full rendered width of the timeline.
func TotalWidthPx(tl *Timeline, pxPerSecond float64) float64 {
	w := 0.0
	for _, tr := range tl.Tracks {
		w += TrackWidthPx(tr, pxPerSecond)
	}
	return w
}

// BoundaryPx returns the cumulative boundary pixels of all insertion gaps,
// including the virtual boundary at 0 and at the end: len(tracks)+1 entries.
func BoundaryPx(tl *Timeline, pxPerSecond float64) []float64 {
	bounds := make([]float64, 0, len(tl.Tracks)+1)
	cum := 0.0
	bounds = append(bounds, 0)
	for _, tr := range tl.Tracks {
		cum += TrackWidthPx(tr, pxPerSecond)
		bounds = append(bounds, cum)
	}
	return bounds
}

// BasePxPerSecond fits the fixed minimum duration into the container, so at
// zoom=1 the timeline is exactly fit-to-width.
func (v *ViewportState) BasePxPerSecond() float64 {
	if v.ContainerWidth <= 0 {
		return 0
	}
	return float64(v.ContainerWidth) / types.MinTimelineSeconds
}

// PxPerSecond is the current scale.
func (v *ViewportState) PxPerSecond() float64 {
	return v.BasePxPerSecond() * v.Zoom
}

// TargetPxPerSecond is the scale the zoom animation is heading toward.
func (v *ViewportState) TargetPxPerSecond() float64 {
	return v.BasePxPerSecond() * v.TargetZoom
}

func clampZoom(z float64) float64 {
	if z < 1 {
		return 1
	}
	if z > types.MaxZoom {
		return types.MaxZoom
	}
	return z
}

// BeginZoom sets a new zoom target and captures the anchor: the timeline
// moment currently under anchorScreenPx stays under that pixel for the whole
// interpolation. Repeated gestures re-target without re-anchoring mid-flight
// only if the pointer moved.
func (m *Model) BeginZoom(target, anchorScreenPx float64) {
	v := &m.Viewport
	target = clampZoom(target)
	if !v.Animating || anchorScreenPx != v.AnchorScreenPx {
		v.AnchorScreenPx = anchorScreenPx
		v.AnchorTime = PixelToTime(m.Timeline, v.PxPerSecond(), v.ScrollOffset+anchorScreenPx)
	}
	v.TargetZoom = target
	v.Animating = math.Abs(v.TargetZoom-v.Zoom) > types.ZoomEpsilon
}

// StepZoomAnimation advances the zoom one frame: exponential-decay lerp of
// the current zoom toward the target, then a scroll recompute that pins the
// anchor. Returns false once the animation has settled.
func (m *Model) StepZoomAnimation() bool {
	v := &m.Viewport
	if !v.Animating {
		return false
	}
	v.Zoom += (v.TargetZoom - v.Zoom) * types.ZoomLerpFactor
	if math.Abs(v.TargetZoom-v.Zoom) <= types.ZoomEpsilon {
		v.Zoom = v.TargetZoom
		v.Animating = false
	}
	v.ScrollOffset = TimeToPixel(m.Timeline, v.PxPerSecond(), v.AnchorTime) - v.AnchorScreenPx
	m.ClampScroll()
	return v.Animating
}

// ClampScroll keeps the viewport inside the rendered timeline.
func (m *Model) ClampScroll() {
	v := &m.Viewport
	maxScroll := TotalWidthPx(m.Timeline, v.PxPerSecond()) - float64(v.ContainerWidth)
	if maxScroll < 0 {
		maxScroll = 0
	}
	if v.ScrollOffset > maxScroll {
		v.ScrollOffset = maxScroll
	}
	if v.ScrollOffset < 0 {
		v.ScrollOffset = 0
	}
}

// Resize recomputes the viewport for a new container width. Zoom is kept;
// the scale changes because the base px/second is width-derived.
func (m *Model) Resize(width int) {
	if width < 1 {
		width = 1
	}
	m.Viewport.ContainerWidth = width
	m.ClampScroll()
}

// RulerTick is one labeled tick on the time ruler.
type RulerTick struct {
	Px    int
	Label string
}

// RulerTicks places labeled ticks across the visible viewport at an interval
// picked from the visible duration, the way the waveform ruler does it.
func (m *Model) RulerTicks() []RulerTick {
	v := &m.Viewport
	pps := v.PxPerSecond()
	if pps <= 0 || v.ContainerWidth <= 0 {
		return nil
	}
	start := PixelToTime(m.Timeline, pps, v.ScrollOffset)
	end := PixelToTime(m.Timeline, pps, v.ScrollOffset+float64(v.ContainerWidth))
	visible := end - start
	if visible <= 0 {
		return nil
	}

	var interval float64
	switch {
	case visible < 10:
		interval = 1
	case visible < 60:
		interval = 5
	case visible < 300:
		interval = 30
	case visible < 1800:
		interval = 120
	default:
		interval = 300
	}

	ticks := []RulerTick{}
	first := math.Ceil(start/interval) * interval
	for t := first; t <= end; t += interval {
		px := TimeToPixel(m.Timeline, pps, t) - v.ScrollOffset
		if px < 0 || px >= float64(v.ContainerWidth) {
			continue
		}
		ticks = append(ticks, RulerTick{Px: int(px), Label: FormatTime(t)})
	}
	return ticks
}

// FormatTime renders seconds as m:ss for the ruler and hover labels.
func FormatTime(t float64) string {
	if t < 0 {
		t = 0
	}
	return fmt.Sprintf("%d:%02d", int(t)/60, int(t)%60)
}
