package views

import (
	"fmt"
	"strings"

	"github.com/schollz/gowaveform"

	"github.com/schollz/tapeline/internal/library"
	"github.com/schollz/tapeline/internal/model"
)

// RenderInspectorView renders the selected track's full source waveform from
// its audio file, with the trim window marked. High-resolution view for
// checking a trim against the actual audio.
func RenderInspectorView(m *model.Model, lib *library.Library) string {
	styles := getCommonStyles()
	var content strings.Builder

	i := m.Timeline.IndexOf(m.SelectedID)
	if i == -1 {
		content.WriteString(styles.Label.Render("No track selected"))
		content.WriteString("\n\n")
		content.WriteString(styles.Label.Render("Press 'w' to return"))
		content.WriteString("\n")
		return styles.Container.Render(content.String())
	}
	tr := m.Timeline.Get(i)
	clip, ok := lib.Get(tr.SourceID)
	if !ok {
		content.WriteString(styles.Label.Render("Source clip not in library"))
		content.WriteString("\n")
		return styles.Container.Render(content.String())
	}

	content.WriteString(styles.Normal.Render(fmt.Sprintf("Inspect: %s (%s)", clip.Title, tr.Variant)))
	content.WriteString("\n\n")

	width := m.TermWidth - 4
	if width < 40 {
		width = 40
	}
	height := m.TermHeight - 8
	if height < 6 {
		height = 6
	}

	waveStr, err := renderSourceWaveform(clip.Path(tr.Variant), width, height, tr)
	if err != nil {
		content.WriteString(styles.Label.Render(fmt.Sprintf("Error rendering waveform: %v", err)))
		content.WriteString("\n")
	} else {
		content.WriteString(waveStr)
	}

	content.WriteString(styles.Label.Render(fmt.Sprintf(
		"Duration: %.2fs | Trim: %.2fs / %.2fs | Effective: %.2fs | Volume: %.0f%%",
		tr.Duration, tr.TrimStart, tr.TrimEnd, tr.EffectiveDuration(), tr.Volume*100)))
	content.WriteString("\n")
	content.WriteString(styles.Label.Render("Press 'w' to return"))
	content.WriteString("\n")
	return styles.Container.Render(content.String())
}

// renderSourceWaveform draws the whole source file with the trim boundaries
// overlaid as colored columns.
func renderSourceWaveform(path string, width, height int, tr model.TimelineTrack) (string, error) {
	wf, err := gowaveform.LoadWaveform(path)
	if err != nil {
		return "", fmt.Errorf("failed to load waveform: %w", err)
	}
	view, err := wf.GenerateView(gowaveform.WaveformOptions{
		Start: 0,
		End:   tr.Duration,
		Width: width,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate view: %w", err)
	}
	if view == nil || len(view.Data) == 0 {
		return "No waveform data", nil
	}

	var maxAbs int16
	for _, val := range view.Data {
		if val < 0 {
			val = -val
		}
		if val > maxAbs {
			maxAbs = val
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}

	// one min/max pair per column, rendered as a symmetric bar
	grid := make([][]bool, height)
	for r := range grid {
		grid[r] = make([]bool, width)
	}
	center := height / 2
	for c := 0; c < len(view.Data)/2 && c < width; c++ {
		minVal := view.Data[c*2]
		maxVal := view.Data[c*2+1]
		lo := center - int(float64(maxVal)/float64(maxAbs)*float64(center))
		hi := center - int(float64(minVal)/float64(maxAbs)*float64(center))
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo < 0 {
			lo = 0
		}
		if hi >= height {
			hi = height - 1
		}
		for r := lo; r <= hi; r++ {
			grid[r][c] = true
		}
	}

	// trim boundary columns
	startCol := int(tr.TrimStart / tr.Duration * float64(width-1))
	endCol := int((tr.Duration - tr.TrimEnd) / tr.Duration * float64(width-1))

	const (
		colorReset = "\033[0m"
		colorCyan  = "\033[36m"
		colorDim   = "\033[2m"
	)

	var sb strings.Builder
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			ch := " "
			if grid[r][c] {
				ch = "█"
			}
			switch {
			case c == startCol || c == endCol:
				sb.WriteString(colorCyan + "│" + colorReset)
			case c < startCol || c > endCol:
				// trimmed-away region drawn dim
				sb.WriteString(colorDim + ch + colorReset)
			default:
				sb.WriteString(ch)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
