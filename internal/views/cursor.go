package views

import "math"

// CursorHandle is the cheap every-frame update channel: the playback loop
// writes a pixel here each frame and the next render places the cursor glyph
// from it, bypassing the throttled shared-state position entirely. Sub-pixel
// positions are kept so slow playback at high zoom still creeps.
type CursorHandle struct {
	px    float64
	valid bool
}

func NewCursorHandle() *CursorHandle {
	return &CursorHandle{}
}

// RenderFrame implements playback.FrameSink.
func (h *CursorHandle) RenderFrame(px float64) {
	h.px = px
	h.valid = true
}

// Invalidate drops the frame channel value so rendering falls back to the
// committed shared position.
func (h *CursorHandle) Invalidate() {
	h.valid = false
}

// Column returns the cursor's screen column, ok=false when the frame channel
// has no value or the cursor is off-viewport.
func (h *CursorHandle) Column(width int) (int, bool) {
	if !h.valid {
		return 0, false
	}
	col := int(math.Floor(h.px))
	if col < 0 || col >= width {
		return 0, false
	}
	return col, true
}
