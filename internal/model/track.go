package model

import (
	"github.com/schollz/tapeline/internal/types"
)

// TimelineTrack is one clip placement on the timeline. It is a value type:
// trim, volume and variant edits go through the With* helpers, which clamp
// their input and return a new value. The placement ID is distinct from the
// source clip ID so the same clip can appear twice.
type TimelineTrack struct {
	ID       string        `json:"id"`
	SourceID string        `json:"source_id"`
	Variant  types.Variant `json:"variant"`

	// Duration is the full untrimmed length in seconds, fixed at creation
	Duration  float64 `json:"duration"`
	TrimStart float64 `json:"trim_start"`
	TrimEnd   float64 `json:"trim_end"`
	Volume    float64 `json:"volume"`
}

// trimEpsilon is the slack used when a clamped trim lands just past the
// minimum-duration floor through rounding.
const trimEpsilon = 1e-9

// EffectiveDuration is the playable length after trim. The trim clamps keep
// it at or above the minimum visible duration, so it is always > 0.
func (t TimelineTrack) EffectiveDuration() float64 {
	return t.Duration - t.TrimStart - t.TrimEnd
}

// WithTrimStart returns a copy with the start trim set to v, clamped so that
// at least minDur seconds remain playable. Negative input clamps to zero.
func (t TimelineTrack) WithTrimStart(v, minDur float64) TimelineTrack {
	if v < 0 {
		v = 0
	}
	max := t.Duration - t.TrimEnd - minDur
	if max < 0 {
		max = 0
	}
	if v > max {
		v = max
	}
	t.TrimStart = v
	if t.EffectiveDuration() < minDur && t.TrimStart > 0 {
		// the clamp's subtraction chain can round a hair above the true
		// max; back the trim off so the floor holds
		t.TrimStart -= trimEpsilon
		if t.TrimStart < 0 {
			t.TrimStart = 0
		}
	}
	return t
}

// WithTrimEnd returns a copy with the end trim set to v, clamped the same way
// as WithTrimStart.
func (t TimelineTrack) WithTrimEnd(v, minDur float64) TimelineTrack {
	if v < 0 {
		v = 0
	}
	max := t.Duration - t.TrimStart - minDur
	if max < 0 {
		max = 0
	}
	if v > max {
		v = max
	}
	t.TrimEnd = v
	if t.EffectiveDuration() < minDur && t.TrimEnd > 0 {
		t.TrimEnd -= trimEpsilon
		if t.TrimEnd < 0 {
			t.TrimEnd = 0
		}
	}
	return t
}

// WithVolume returns a copy with the gain clamped into [0,1].
func (t TimelineTrack) WithVolume(v float64) TimelineTrack {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	t.Volume = v
	return t
}

// WithVariant returns a copy playing the other rendition of the same source.
func (t TimelineTrack) WithVariant(v types.Variant) TimelineTrack {
	t.Variant = v
	return t
}
