// Package storage persists the timeline to the project folder. Saves are
// fire-and-forget from the engine's point of view: edits never wait on disk.
package storage

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"github.com/schollz/tapeline/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const stateFile = "timeline.json.gz"

// SavedState is everything worth keeping between sessions: the ordered
// timeline with per-track trim/volume, plus the master playback settings.
// Viewport and playback position are deliberately not persisted.
type SavedState struct {
	Tracks       []model.TimelineTrack `json:"tracks"`
	MasterVolume float64               `json:"master_volume"`
	LoopAll      bool                  `json:"loop_all"`
}

// Snapshot captures the persistable part of the model.
func Snapshot(m *model.Model) SavedState {
	tracks := make([]model.TimelineTrack, len(m.Timeline.Tracks))
	copy(tracks, m.Timeline.Tracks)
	return SavedState{
		Tracks:       tracks,
		MasterVolume: m.Playback.MasterVolume,
		LoopAll:      m.Playback.LoopAll,
	}
}

// DoSave writes the state synchronously. Errors are logged, never returned
// to an editing gesture.
func DoSave(saveFolder string, st SavedState) {
	if saveFolder == "" {
		return
	}
	if err := writeState(saveFolder, st); err != nil {
		log.Printf("save failed: %v", err)
	}
}

// AutoSave snapshots the model and writes in the background. The snapshot is
// taken before the goroutine starts so later edits cannot tear it.
func AutoSave(m *model.Model) {
	if m.SaveFolder == "" {
		return
	}
	st := Snapshot(m)
	folder := m.SaveFolder
	go DoSave(folder, st)
}

func writeState(saveFolder string, st SavedState) error {
	if err := os.MkdirAll(saveFolder, 0o755); err != nil {
		return fmt.Errorf("creating save folder: %w", err)
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	path := filepath.Join(saveFolder, stateFile)
	// unique temp per writer so overlapping saves cannot interleave into
	// the same file before the rename
	f, err := os.CreateTemp(saveFolder, stateFile+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	gz := gzip.NewWriter(f)
	if _, err := gz.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := gz.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadState hydrates the model's timeline from a previous save.
func LoadState(m *model.Model, saveFolder string) error {
	path := filepath.Join(saveFolder, stateFile)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("gzip: %w", err)
	}
	defer gz.Close()

	var st SavedState
	if err := json.NewDecoder(gz).Decode(&st); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	m.Timeline.Tracks = st.Tracks
	if m.Timeline.Tracks == nil {
		m.Timeline.Tracks = []model.TimelineTrack{}
	}
	m.Playback.MasterVolume = st.MasterVolume
	if m.Playback.MasterVolume <= 0 {
		m.Playback.MasterVolume = 1.0
	}
	m.Playback.LoopAll = st.LoopAll
	log.Printf("loaded %d tracks from %s", len(st.Tracks), path)
	return nil
}
