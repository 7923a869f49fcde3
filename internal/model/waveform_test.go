package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaveformColumns(t *testing.T) {
	tr := makeTrack("a", 8)

	t.Run("untrimmed resample keeps bucket maxima", func(t *testing.T) {
		peaks := []float64{0.1, 0.9, 0.2, 0.3, 0.5, 0.4, 0.0, 0.8}
		cols := WaveformColumns(peaks, tr, 4)
		assert.Len(t, cols, 4)
		assert.Equal(t, 0.9, cols[0].Peak)
		assert.Equal(t, 0.3, cols[1].Peak)
		assert.Equal(t, 0.5, cols[2].Peak)
		assert.Equal(t, 0.8, cols[3].Peak)
	})

	t.Run("trim excludes samples outside the window", func(t *testing.T) {
		peaks := []float64{1, 1, 0.2, 0.4, 0.4, 0.2, 1, 1}
		trimmed := tr.WithTrimStart(2, 0.5).WithTrimEnd(2, 0.5)
		cols := WaveformColumns(peaks, trimmed, 2)
		assert.Len(t, cols, 2)
		assert.Equal(t, 0.4, cols[0].Peak)
		assert.Equal(t, 0.4, cols[1].Peak)
	})

	t.Run("negative samples count by magnitude", func(t *testing.T) {
		cols := WaveformColumns([]float64{-0.7, 0.3}, tr, 1)
		assert.Equal(t, 0.7, cols[0].Peak)
	})

	t.Run("peaks clamp to one", func(t *testing.T) {
		cols := WaveformColumns([]float64{2.5}, tr, 1)
		assert.Equal(t, 1.0, cols[0].Peak)
	})

	t.Run("more columns than samples repeats without panicking", func(t *testing.T) {
		cols := WaveformColumns([]float64{0.5, 0.9}, tr, 6)
		assert.Len(t, cols, 6)
		for _, c := range cols {
			assert.True(t, c.Peak == 0.5 || c.Peak == 0.9)
		}
	})

	t.Run("degenerate input", func(t *testing.T) {
		assert.Nil(t, WaveformColumns(nil, tr, 4))
		assert.Nil(t, WaveformColumns([]float64{0.5}, tr, 0))
	})
}

func TestWaveformRunes(t *testing.T) {
	runes := WaveformRunes([]WaveformColumn{{0}, {0.5}, {1}})
	assert.Equal(t, []rune{' ', '▄', '█'}, runes)
}
