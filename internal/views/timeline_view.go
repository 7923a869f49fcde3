package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/schollz/tapeline/internal/library"
	"github.com/schollz/tapeline/internal/model"
	"github.com/schollz/tapeline/internal/types"
)

// RenderTimelineView draws the arranger: header, ruler, track lane, cursor
// row and status bar. The cursor column comes from the frame channel when
// playing and from the committed position otherwise.
func RenderTimelineView(m *model.Model, lib *library.Library, cursor *CursorHandle) string {
	styles := getCommonStyles()
	width := m.Viewport.ContainerWidth
	if width < 1 {
		width = 1
	}

	var content strings.Builder
	content.WriteString(renderHeader(m, styles, width))
	content.WriteString("\n")
	content.WriteString(renderRuler(m, styles, width))
	content.WriteString("\n")
	content.WriteString(renderLane(m, lib, styles, width))
	content.WriteString(renderCursorRow(m, styles, cursor, width))
	content.WriteString("\n")
	content.WriteString(renderStatus(m, styles))
	return styles.Container.Render(content.String())
}

func renderHeader(m *model.Model, styles *ViewStyles, width int) string {
	state := "stopped"
	if m.Playback.IsPlaying {
		state = "playing"
	}
	loop := ""
	if m.Playback.LoopAll {
		loop = " loop"
	}
	left := fmt.Sprintf("tapeline  %s%s", state, loop)
	right := fmt.Sprintf("%s / %s  zoom %.1fx  vol %2.0f%%",
		model.FormatTime(m.Playback.Position),
		model.FormatTime(m.Timeline.TotalDuration()),
		m.Viewport.Zoom,
		m.Playback.MasterVolume*100)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return styles.Normal.Render(left) + strings.Repeat(" ", gap) + styles.Label.Render(right)
}

func renderRuler(m *model.Model, styles *ViewStyles, width int) string {
	line := make([]rune, width)
	for i := range line {
		line[i] = '─'
	}
	labels := map[int]string{}
	for _, tick := range m.RulerTicks() {
		if tick.Px >= 0 && tick.Px < width {
			line[tick.Px] = '┼'
			labels[tick.Px] = tick.Label
		}
	}
	// overlay labels just after their tick, clipping at the right edge
	out := []rune(string(line))
	for px, label := range labels {
		for i, ch := range label {
			pos := px + 1 + i
			if pos >= width {
				break
			}
			out[pos] = ch
		}
	}
	s := styles.Ruler.Render(string(out))
	if label, ok := hoverOverlay(m); ok {
		s += "\n" + label
	} else {
		s += "\n"
	}
	return s
}

// hoverOverlay renders the hover time label on its own line, positioned
// under the pointer.
func hoverOverlay(m *model.Model) (string, bool) {
	label, ok := hoverLabel(m)
	if !ok {
		return "", false
	}
	styles := getCommonStyles()
	pad := m.HoverPx - len(label)/2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + styles.Hover.Render(label), true
}

func hoverLabel(m *model.Model) (string, bool) {
	if !m.HoverValid {
		return "", false
	}
	t := model.PixelToTime(m.Timeline, m.Viewport.PxPerSecond(),
		m.Viewport.ScrollOffset+float64(m.HoverPx))
	return model.FormatTime(t), true
}

// renderLane draws every track's span as waveform columns, with the
// transient start-trim gap applied to the dragged track only.
func renderLane(m *model.Model, lib *library.Library, styles *ViewStyles, width int) string {
	pps := m.Viewport.PxPerSecond()
	rows := make([][]string, types.LaneRows)
	for r := range rows {
		rows[r] = make([]string, width)
		for c := range rows[r] {
			rows[r][c] = " "
		}
	}

	cum := -m.Viewport.ScrollOffset
	for _, tr := range m.Timeline.Tracks {
		w := int(model.TrackWidthPx(tr, pps))
		start := cum
		if m.Trim.TrackID == tr.ID && m.Trim.Gap > 0 {
			// the leading edge recedes; later tracks keep their place
			start += m.Trim.Gap * pps
			w -= int(m.Trim.Gap * pps)
			if w < 1 {
				w = 1
			}
		}
		drawTrack(m, lib, styles, rows, tr, int(start), w, width)
		cum += model.TrackWidthPx(tr, pps)
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, ""))
		b.WriteString("\n")
	}
	return b.String()
}

func drawTrack(m *model.Model, lib *library.Library, styles *ViewStyles, rows [][]string, tr model.TimelineTrack, x, w, width int) {
	if x+w <= 0 || x >= width || w <= 0 {
		return
	}
	var cols []model.WaveformColumn
	if clip, ok := lib.Get(tr.SourceID); ok {
		cols = model.WaveformColumns(clip.Peaks, tr, w)
	}
	runes := model.WaveformRunes(cols)

	selected := tr.ID == m.SelectedID
	active := false
	if at, ok := m.ActiveTrack(); ok && at.ID == tr.ID {
		active = true
	}
	unplayable := m.Unplayable[tr.ID]

	waveRow := types.LaneRows - 2
	labelRow := types.LaneRows - 1
	for c := 0; c < w; c++ {
		col := x + c
		if col < 0 || col >= width {
			continue
		}
		ch := "▁"
		var st lipgloss.Style
		if c < len(runes) {
			ch = string(runes[c])
			st = lipgloss.NewStyle().Foreground(amplitudeColor(cols[c].Peak))
		} else {
			st = styles.Label
		}
		switch {
		case unplayable:
			st = styles.Unplayable
		case selected:
			st = styles.Selected
		case active:
			st = st.Bold(true)
		}
		rows[waveRow][col] = st.Render(ch)
		// top border marks track extent
		if c == 0 {
			rows[0][col] = styles.Label.Render("┌")
		} else if c == w-1 {
			rows[0][col] = styles.Label.Render("┐")
		} else {
			rows[0][col] = styles.Label.Render("─")
		}
	}

	label := fmt.Sprintf("%s·%s %2.0f%%", tr.SourceID, tr.Variant, tr.Volume*100)
	if len(label) > w {
		label = label[:w]
	}
	st := styles.Label
	if selected {
		st = styles.Selected
	}
	for i, ch := range label {
		col := x + i
		if col < 0 || col >= width {
			continue
		}
		rows[labelRow][col] = st.Render(string(ch))
	}
}

// renderCursorRow places the playback cursor glyph. While the frame channel
// is live its value wins; otherwise the committed position is mapped.
func renderCursorRow(m *model.Model, styles *ViewStyles, cursor *CursorHandle, width int) string {
	col, ok := -1, false
	if cursor != nil {
		col, ok = cursor.Column(width)
	}
	if !ok {
		px := model.TimeToPixel(m.Timeline, m.Viewport.PxPerSecond(), m.Playback.Position) - m.Viewport.ScrollOffset
		if px >= 0 && px < float64(width) {
			col, ok = int(px), true
		}
	}
	line := make([]string, width)
	for i := range line {
		line[i] = " "
	}
	if ok {
		line[col] = styles.Playback.Render("▲")
	}
	return strings.Join(line, "")
}

func renderStatus(m *model.Model, styles *ViewStyles) string {
	n := m.Timeline.Len()
	sel := "none"
	if m.SelectedID != "" {
		sel = m.SelectedID
	}
	help := "space play · ←→ nav · ↑↓ zoom · del remove · v variant · l loop · w inspect · q quit"
	return styles.Label.Render(fmt.Sprintf("%d tracks · selected %s\n%s", n, sel, help))
}
