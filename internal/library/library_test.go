package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"

	"github.com/schollz/tapeline/internal/types"
)

// writeTestWav writes a mono 16-bit file of the given length where every
// sample sits at the given normalized amplitude.
func writeTestWav(t *testing.T, path string, seconds, amplitude float64) {
	t.Helper()
	const sampleRate = 8000
	f, err := os.Create(path)
	assert.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	n := int(seconds * sampleRate)
	data := make([]int, n)
	for i := range data {
		data[i] = int(amplitude * 32767)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	assert.NoError(t, enc.Write(buf))
	assert.NoError(t, enc.Close())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeTestWav(t, filepath.Join(dir, "song.wav"), 2, 0.5)
	writeTestWav(t, filepath.Join(dir, "song.instrumental.wav"), 2, 0.25)
	writeTestWav(t, filepath.Join(dir, "other.wav"), 1, 0.9)
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	lib, err := Load(dir)
	assert.NoError(t, err)
	assert.Equal(t, []string{"other", "song"}, lib.SourceIDs())

	song, ok := lib.Get("song")
	assert.True(t, ok)
	assert.InDelta(t, 2.0, song.Duration, 0.01)
	assert.NotEmpty(t, song.Peaks)
	assert.LessOrEqual(t, len(song.Peaks), PeakBuckets)
	for _, p := range song.Peaks {
		assert.InDelta(t, 0.5, p, 0.01)
	}

	t.Run("variant files pair up under one source", func(t *testing.T) {
		vocal, ok := lib.URL("song", types.VariantVocal)
		assert.True(t, ok)
		assert.Equal(t, filepath.Join(dir, "song.wav"), vocal)

		inst, ok := lib.URL("song", types.VariantInstrumental)
		assert.True(t, ok)
		assert.Equal(t, filepath.Join(dir, "song.instrumental.wav"), inst)
	})

	t.Run("missing variant falls back to the default", func(t *testing.T) {
		other, _ := lib.Get("other")
		assert.Equal(t, filepath.Join(dir, "other.wav"), other.Path(types.VariantInstrumental))
	})

	t.Run("unknown source", func(t *testing.T) {
		_, ok := lib.Get("nope")
		assert.False(t, ok)
		_, ok = lib.URL("nope", types.VariantVocal)
		assert.False(t, ok)
	})
}

func TestLoadSkipsUndecodableFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestWav(t, filepath.Join(dir, "good.wav"), 1, 0.5)
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "bad.wav"), []byte("not a wav"), 0o644))

	lib, err := Load(dir)
	assert.NoError(t, err)
	assert.Equal(t, []string{"good"}, lib.SourceIDs())
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load("/no/such/dir")
	assert.Error(t, err)
}

func TestRefreshURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.wav")
	writeTestWav(t, path, 1, 0.5)

	lib, err := Load(dir)
	assert.NoError(t, err)

	url, ok := lib.RefreshURL("song", types.VariantVocal)
	assert.True(t, ok)
	assert.Equal(t, path, url)

	t.Run("deleted file fails the refresh", func(t *testing.T) {
		assert.NoError(t, os.Remove(path))
		_, ok := lib.RefreshURL("song", types.VariantVocal)
		assert.False(t, ok)
	})
}

func TestNewStatic(t *testing.T) {
	lib := NewStatic(NewClip("a", 3, map[types.Variant]string{types.VariantVocal: "/a.wav"}))
	url, ok := lib.URL("a", types.VariantVocal)
	assert.True(t, ok)
	assert.Equal(t, "/a.wav", url)
	assert.Equal(t, []string{"a"}, lib.SourceIDs())
}
