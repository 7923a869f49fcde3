package model

import "math"

// WaveformColumn is the drawn extent of one display column, normalized to
// [0,1] amplitude.
type WaveformColumn struct {
	Peak float64
}

// WaveformColumns turns a clip's amplitude peaks plus the track's trim window
// into per-column geometry. Pure function: trimmed-away samples are excluded,
// the remaining window is resampled into cols columns by max-abs bucketing.
func WaveformColumns(peaks []float64, tr TimelineTrack, cols int) []WaveformColumn {
	if cols <= 0 || len(peaks) == 0 || tr.Duration <= 0 {
		return nil
	}

	// Trim window expressed as sample indices
	n := len(peaks)
	lo := int(math.Floor(tr.TrimStart / tr.Duration * float64(n)))
	hi := int(math.Ceil((tr.Duration - tr.TrimEnd) / tr.Duration * float64(n)))
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if hi <= lo {
		hi = lo + 1
		if hi > n {
			lo, hi = n-1, n
		}
	}
	window := peaks[lo:hi]

	out := make([]WaveformColumn, cols)
	per := float64(len(window)) / float64(cols)
	for c := 0; c < cols; c++ {
		a := int(float64(c) * per)
		b := int(float64(c+1) * per)
		if b <= a {
			b = a + 1
		}
		if b > len(window) {
			b = len(window)
		}
		peak := 0.0
		for i := a; i < b; i++ {
			v := math.Abs(window[i])
			if v > peak {
				peak = v
			}
		}
		if peak > 1 {
			peak = 1
		}
		out[c] = WaveformColumn{Peak: peak}
	}
	return out
}

// WaveformRunes maps column geometry to the eighth-height block characters
// used throughout the views.
func WaveformRunes(cols []WaveformColumn) []rune {
	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	out := make([]rune, len(cols))
	for i, c := range cols {
		idx := int(math.Round(c.Peak * 8))
		if idx < 0 {
			idx = 0
		}
		if idx > 8 {
			idx = 8
		}
		out[i] = blocks[idx]
	}
	return out
}
