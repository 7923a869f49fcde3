// Package library is the read-only lookup from source clip IDs to metadata:
// title, full duration, amplitude peaks for waveform drawing, and the file
// URL of each variant. The engine never mutates a clip.
package library

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-audio/wav"

	"github.com/schollz/tapeline/internal/types"
)

// PeakBuckets is how many amplitude buckets are kept per clip.
const PeakBuckets = 2048

// Clip is one playable source with up to two variants. Variant files sit
// next to the main file as name.instrumental.wav; the main file is the
// vocal rendition.
type Clip struct {
	SourceID       string
	Title          string
	Duration       float64
	Peaks          []float64
	DefaultVariant types.Variant
	paths          map[types.Variant]string
}

// Path returns the file for a variant, falling back to the default variant's
// file when the requested one does not exist.
func (c *Clip) Path(v types.Variant) string {
	if p, ok := c.paths[v]; ok {
		return p
	}
	return c.paths[c.DefaultVariant]
}

type Library struct {
	dir   string
	clips map[string]*Clip
}

// NewClip builds a clip record directly, bypassing file decoding.
func NewClip(sourceID string, duration float64, paths map[types.Variant]string) *Clip {
	return &Clip{
		SourceID:       sourceID,
		Title:          sourceID,
		Duration:       duration,
		DefaultVariant: types.VariantVocal,
		paths:          paths,
	}
}

// NewStatic builds an in-memory library from prebuilt clips.
func NewStatic(clips ...*Clip) *Library {
	lib := &Library{clips: map[string]*Clip{}}
	for _, c := range clips {
		lib.clips[c.SourceID] = c
	}
	return lib
}

// Load scans dir for wav files and decodes each one's duration and peaks.
// Unreadable files are skipped with a log line, not a failure.
func Load(dir string) (*Library, error) {
	lib := &Library{dir: dir, clips: map[string]*Clip{}}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading clip dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".wav") {
			continue
		}
		base := strings.TrimSuffix(name, ".wav")
		variant := types.VariantVocal
		if strings.HasSuffix(base, ".instrumental") {
			base = strings.TrimSuffix(base, ".instrumental")
			variant = types.VariantInstrumental
		}
		path := filepath.Join(dir, name)

		clip, ok := lib.clips[base]
		if !ok {
			clip = &Clip{
				SourceID:       base,
				Title:          base,
				DefaultVariant: types.VariantVocal,
				paths:          map[types.Variant]string{},
			}
			lib.clips[base] = clip
		}
		clip.paths[variant] = path

		// Duration/peaks come from the default variant when present,
		// otherwise from whichever file we saw first
		if variant == clip.DefaultVariant || clip.Duration == 0 {
			dur, peaks, err := decodeWav(path)
			if err != nil {
				log.Printf("skipping %s: %v", path, err)
				delete(clip.paths, variant)
				continue
			}
			clip.Duration = dur
			clip.Peaks = peaks
		}
	}
	// Drop clips whose every file failed to decode
	for id, c := range lib.clips {
		if len(c.paths) == 0 {
			delete(lib.clips, id)
		}
	}
	log.Printf("library loaded %d clips from %s", len(lib.clips), dir)
	return lib, nil
}

// Get looks up a clip by source id.
func (l *Library) Get(sourceID string) (*Clip, bool) {
	c, ok := l.clips[sourceID]
	return c, ok
}

// SourceIDs returns all clip ids in stable order.
func (l *Library) SourceIDs() []string {
	ids := make([]string, 0, len(l.clips))
	for id := range l.clips {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// URL resolves the playable URL for a source/variant pair.
func (l *Library) URL(sourceID string, v types.Variant) (string, bool) {
	c, ok := l.clips[sourceID]
	if !ok {
		return "", false
	}
	return c.Path(v), true
}

// RefreshURL re-resolves a URL after a playback failure. For file-backed
// clips that means re-checking the file is still there; a missing file
// returns ok=false so the caller can mark the track unplayable.
func (l *Library) RefreshURL(sourceID string, v types.Variant) (string, bool) {
	path, ok := l.URL(sourceID, v)
	if !ok {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("refresh for %s/%s failed: %v", sourceID, v, err)
		return "", false
	}
	return path, true
}

func decodeWav(path string) (float64, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()

	// Decode PCM first; duration comes from the frame count. Asking the
	// decoder for Duration before the PCM pass leaves it unable to find the
	// data chunk.
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return 0, nil, fmt.Errorf("pcm: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return 0, nil, fmt.Errorf("empty pcm")
	}

	scale := float64(int(1) << (dec.BitDepth - 1))
	if scale <= 0 {
		scale = 1 << 15
	}
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	frames := len(buf.Data) / channels
	if buf.Format.SampleRate <= 0 {
		return 0, nil, fmt.Errorf("bad sample rate %d", buf.Format.SampleRate)
	}
	dur := float64(frames) / float64(buf.Format.SampleRate)

	buckets := PeakBuckets
	if frames < buckets {
		buckets = frames
	}
	peaks := make([]float64, buckets)
	for b := 0; b < buckets; b++ {
		lo := b * frames / buckets
		hi := (b + 1) * frames / buckets
		peak := 0.0
		for fr := lo; fr < hi; fr++ {
			// mono mixdown by first channel is enough for drawing
			v := math.Abs(float64(buf.Data[fr*channels]) / scale)
			if v > peak {
				peak = v
			}
		}
		peaks[b] = peak
	}
	return dur, peaks, nil
}
