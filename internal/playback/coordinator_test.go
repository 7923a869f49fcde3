package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schollz/tapeline/internal/backend"
	"github.com/schollz/tapeline/internal/model"
)

func startedFixture(t *testing.T, durs ...float64) (*model.Model, *Coordinator, *Synchronizer, *backend.Fake) {
	t.Helper()
	m, back, s, _ := newSyncFixture(durs...)
	c := NewCoordinator(m, s)
	s.Play()
	back.FinishLoad()
	back.Advance(0.1)
	return m, c, s, back
}

func TestTrimChangedReseeksIntoWindow(t *testing.T) {
	m, c, _, f := startedFixture(t, 10)
	f.SeekTo(2)
	f.Advance(0.01)

	// new trim start lands past the player position
	tr := m.Timeline.Get(0).WithTrimStart(4, 0.5)
	m.Timeline.Set(0, tr)
	c.TrimChanged("trk-0")

	assert.Equal(t, 4.0, f.SeekCalls[len(f.SeekCalls)-1])
	assert.True(t, m.Playback.IsPlaying)
}

func TestTrimChangedStopsAtShortenedEnd(t *testing.T) {
	m, c, _, f := startedFixture(t, 10)
	f.SeekTo(8)
	f.Advance(0.01)

	m.Timeline.Set(0, m.Timeline.Get(0).WithVolume(0.5))
	c.VolumeChanged("trk-0")

	// new trim end closes the window before the player position
	tr := m.Timeline.Get(0).WithTrimEnd(5, 0.5) // playable window is now [0, 5]
	m.Timeline.Set(0, tr)
	c.TrimChanged("trk-0")

	assert.False(t, m.Playback.IsPlaying)
	assert.False(t, f.IsPlaying())
	assert.Equal(t, 5.0, f.SeekCalls[len(f.SeekCalls)-1])
	assert.Equal(t, 5.0, m.Playback.Position, "position parks at the new boundary")
	assert.Equal(t, m.Playback.MasterVolume, f.Volume, "per-track gain is cleared on stop")
}

func TestTrimChangedIgnoresInactiveTrack(t *testing.T) {
	m, c, _, f := startedFixture(t, 10, 5)
	before := len(f.SeekCalls)

	tr := m.Timeline.Get(1).WithTrimStart(3, 0.5)
	m.Timeline.Set(1, tr)
	c.TrimChanged("trk-1")

	assert.Len(t, f.SeekCalls, before)
	assert.True(t, m.Playback.IsPlaying)
}

func TestTimelineChangedReindexesActiveTrack(t *testing.T) {
	m, c, s, f := startedFixture(t, 3, 2, 4)
	f.SeekTo(1)

	// active first track moves to the back
	m.Timeline.Move(0, 2)
	c.TimelineChanged()

	assert.Equal(t, 2, m.Playback.ActiveIndex)
	assert.Equal(t, "trk-0", s.ActiveTrackID())
	// global position recomputes from the new cumulative start: 2+4 ahead
	assert.InDelta(t, 6.0+1.0, m.Playback.Position, 1e-9)
	assert.True(t, m.Playback.IsPlaying)
}

func TestTimelineChangedStopsWhenActiveTrackRemoved(t *testing.T) {
	m, c, _, f := startedFixture(t, 3, 2)
	m.Timeline.Remove("trk-0")
	c.TimelineChanged()

	assert.False(t, m.Playback.IsPlaying)
	assert.False(t, f.IsPlaying())
	assert.Equal(t, -1, m.Playback.ActiveIndex)
}

func TestTimelineChangedNoopWhileStopped(t *testing.T) {
	m, _, s, _ := newSyncFixture(3, 2)
	c := NewCoordinator(m, s)
	m.Timeline.Move(0, 1)
	c.TimelineChanged()
	assert.Equal(t, -1, m.Playback.ActiveIndex)
}

func TestVolumeChangedPushesGain(t *testing.T) {
	m, c, _, f := startedFixture(t, 10)

	tr := m.Timeline.Get(0).WithVolume(0.25)
	m.Timeline.Set(0, tr)
	c.VolumeChanged("trk-0")
	assert.InDelta(t, 0.25, f.Volume, 1e-9)

	t.Run("master change applies to the active track", func(t *testing.T) {
		m.Playback.MasterVolume = 0.5
		c.VolumeChanged("")
		assert.InDelta(t, 0.125, f.Volume, 1e-9)
	})

	t.Run("inactive track change is ignored", func(t *testing.T) {
		c.VolumeChanged("trk-other")
		assert.InDelta(t, 0.125, f.Volume, 1e-9)
	})
}
