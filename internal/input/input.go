package input

import (
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/schollz/tapeline/internal/library"
	"github.com/schollz/tapeline/internal/model"
	"github.com/schollz/tapeline/internal/playback"
	"github.com/schollz/tapeline/internal/storage"
	"github.com/schollz/tapeline/internal/types"
)

// The three cooperative loops. Each message type drives exactly one loop and
// each loop owns disjoint state: the frame loop writes playback state, the
// zoom loop writes viewport state, the gap loop writes trim gesture state.

type FrameTickMsg time.Time
type ZoomTickMsg time.Time
type GapTickMsg time.Time

func FrameTick() tea.Cmd {
	return tea.Tick(time.Second/types.FrameFPS, func(t time.Time) tea.Msg {
		return FrameTickMsg(t)
	})
}

func ZoomTick() tea.Cmd {
	return tea.Tick(time.Second/types.FrameFPS, func(t time.Time) tea.Msg {
		return ZoomTickMsg(t)
	})
}

func GapTick() tea.Cmd {
	return tea.Tick(time.Second/types.FrameFPS, func(t time.Time) tea.Msg {
		return GapTickMsg(t)
	})
}

// Deps bundles what the handlers need besides the model.
type Deps struct {
	Sync    *playback.Synchronizer
	Coord   *playback.Coordinator
	Library *library.Library
	Keys    KeyMap
}

var trackSeq int

// NewTrackID mints a placement id, distinct from the source clip id.
func NewTrackID() string {
	trackSeq++
	return fmt.Sprintf("trk-%d-%d", time.Now().UnixNano(), trackSeq)
}

// HandleKeyInput dispatches a key press against the timeline view.
func HandleKeyInput(m *model.Model, d Deps, msg tea.KeyMsg) tea.Cmd {
	k := d.Keys
	switch {
	case key.Matches(msg, k.Quit):
		d.Sync.Flush()
		storage.AutoSave(m)
		return tea.Quit

	case key.Matches(msg, k.Inspector):
		if m.ViewMode == types.InspectorView {
			m.ViewMode = m.PreviousView
		} else if m.SelectedID != "" {
			m.PreviousView = m.ViewMode
			m.ViewMode = types.InspectorView
		}
		return nil

	case key.Matches(msg, k.PlayPause):
		wasPlaying := m.Playback.IsPlaying
		d.Sync.Toggle()
		if !wasPlaying && m.Playback.IsPlaying {
			return FrameTick()
		}
		return nil

	case key.Matches(msg, k.Next):
		NextTrack(m, d.Sync)
		return nil

	case key.Matches(msg, k.Prev):
		PrevTrack(m, d.Sync)
		return nil

	case key.Matches(msg, k.Delete):
		DeleteSelected(m, d.Coord)
		return nil

	case key.Matches(msg, k.ZoomIn):
		return keyZoom(m, m.Viewport.TargetZoom*1.5)

	case key.Matches(msg, k.ZoomOut):
		return keyZoom(m, m.Viewport.TargetZoom/1.5)

	case key.Matches(msg, k.VolumeUp):
		if m.SelectedID != "" {
			AdjustTrackVolume(m, d.Coord, m.SelectedID, 0.05)
		}
		return nil

	case key.Matches(msg, k.VolumeDown):
		if m.SelectedID != "" {
			AdjustTrackVolume(m, d.Coord, m.SelectedID, -0.05)
		}
		return nil

	case key.Matches(msg, k.MasterUp):
		AdjustMasterVolume(m, d.Coord, 0.05)
		return nil

	case key.Matches(msg, k.MasterDown):
		AdjustMasterVolume(m, d.Coord, -0.05)
		return nil

	case key.Matches(msg, k.ToggleLoop):
		m.Playback.LoopAll = !m.Playback.LoopAll
		storage.AutoSave(m)
		return nil

	case key.Matches(msg, k.ToggleVariant):
		if m.SelectedID != "" {
			ToggleVariant(m, m.SelectedID)
		}
		return nil

	case key.Matches(msg, k.AddAll):
		return addAllClips(m, d)
	}
	return nil
}

// addAllClips inserts every library clip not already on the timeline, as an
// ordered batch at the end.
func addAllClips(m *model.Model, d Deps) tea.Cmd {
	ids := d.Library.SourceIDs()
	clips := make([]*library.Clip, 0, len(ids))
	trackIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		clip, ok := d.Library.Get(id)
		if !ok {
			continue
		}
		clips = append(clips, clip)
		trackIDs = append(trackIDs, NewTrackID())
	}
	endPx := model.TotalWidthPx(m.Timeline, m.Viewport.PxPerSecond()) - m.Viewport.ScrollOffset
	InsertBatchAt(m, d.Coord, clips, trackIDs, endPx)
	return nil
}

// keyZoom anchors keyboard zoom at the hover position when there is one,
// otherwise at the center of the viewport.
func keyZoom(m *model.Model, target float64) tea.Cmd {
	anchor := float64(m.Viewport.ContainerWidth) / 2
	if m.HoverValid {
		anchor = float64(m.HoverPx)
	}
	m.BeginZoom(target, anchor)
	if m.Viewport.Animating {
		return ZoomTick()
	}
	return nil
}

// pressState tracks a mouse press that has not yet committed to click vs drag.
type pressState struct {
	active  bool
	px      float64
	trackID string
	moved   bool
}

var press pressState

// HandleMouseInput drives seek, selection, reorder and trim gestures. A
// press inside the lane is ambiguous until the pointer moves: motion turns
// it into a drag, release without motion is a click (select + seek).
func HandleMouseInput(m *model.Model, d Deps, msg tea.MouseMsg) tea.Cmd {
	x := float64(msg.X)
	inLane := msg.Y >= types.LaneTop && msg.Y < types.LaneTop+types.LaneRows
	onRuler := msg.Y == types.RowRuler

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.BeginZoom(m.Viewport.TargetZoom*1.25, x)
			if m.Viewport.Animating {
				return ZoomTick()
			}
		case tea.MouseButtonWheelDown:
			m.BeginZoom(m.Viewport.TargetZoom/1.25, x)
			if m.Viewport.Animating {
				return ZoomTick()
			}
		case tea.MouseButtonLeft:
			if onRuler {
				ClickSeek(m, d.Sync, x)
				return nil
			}
			if !inLane {
				return nil
			}
			if i, edge := TrimEdgeAtPixel(m, x); edge != types.TrimEdgeNone {
				BeginTrimDrag(m, m.Timeline.Get(i).ID, edge, x)
				return nil
			}
			if i := TrackAtPixel(m, x); i != -1 {
				press = pressState{active: true, px: x, trackID: m.Timeline.Get(i).ID}
			}
		}

	case tea.MouseActionMotion:
		if m.Trim.Active {
			DragTrim(m, d.Coord, x)
			return nil
		}
		if m.Drag.Active {
			DragReorderOver(m, d.Coord, x)
			return nil
		}
		if press.active {
			if !press.moved && x != press.px {
				press.moved = true
				BeginReorderDrag(m, press.trackID)
				DragReorderOver(m, d.Coord, x)
			}
			return nil
		}
		Hover(m, msg.X)

	case tea.MouseActionRelease:
		if m.Trim.Active {
			if EndTrimDrag(m) {
				return GapTick()
			}
			return nil
		}
		if m.Drag.Active {
			EndReorderDrag(m)
			press = pressState{}
			return nil
		}
		if press.active {
			// click: select the track and seek to the click position
			SelectTrack(m, press.trackID)
			ClickSeek(m, d.Sync, press.px)
			press = pressState{}
		}
	}
	return nil
}

// StepFrame advances the playback loop one frame and reschedules while
// playing.
func StepFrame(m *model.Model, d Deps) tea.Cmd {
	if !m.Playback.IsPlaying {
		d.Sync.Flush()
		return nil
	}
	d.Sync.Step()
	if m.Playback.IsPlaying {
		return FrameTick()
	}
	d.Sync.Flush()
	return nil
}

// StepZoom advances the zoom animation and reschedules while animating.
func StepZoom(m *model.Model) tea.Cmd {
	if m.StepZoomAnimation() {
		return ZoomTick()
	}
	log.Printf("zoom settled at %.2f", m.Viewport.Zoom)
	return nil
}

// StepGap eases the released trim gap toward zero.
func StepGap(m *model.Model) tea.Cmd {
	if StepTrimGap(m) {
		return GapTick()
	}
	return nil
}
