package playback

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schollz/tapeline/internal/backend"
	"github.com/schollz/tapeline/internal/library"
	"github.com/schollz/tapeline/internal/model"
	"github.com/schollz/tapeline/internal/types"
)

type recordSink struct {
	frames []float64
}

func (r *recordSink) RenderFrame(px float64) { r.frames = append(r.frames, px) }

// newSyncFixture builds a model with one track per duration, each backed by
// its own library clip, wired to a fake player with the standing event
// subscription in place.
func newSyncFixture(durs ...float64) (*model.Model, *backend.Fake, *Synchronizer, *recordSink) {
	m := model.NewModel(57140, "")
	m.Viewport.ContainerWidth = 900
	m.Viewport.Zoom = 2
	m.Viewport.TargetZoom = 2

	back := backend.NewFake()
	clips := []*library.Clip{}
	for i, d := range durs {
		src := fmt.Sprintf("clip-%d", i)
		path := fmt.Sprintf("/clips/%s.wav", src)
		clips = append(clips, library.NewClip(src, d, map[types.Variant]string{
			types.VariantVocal: path,
		}))
		back.Durations[path] = d
		m.Timeline.Insert(i, model.TimelineTrack{
			ID:       fmt.Sprintf("trk-%d", i),
			SourceID: src,
			Duration: d,
			Volume:   1,
		})
	}
	lib := library.NewStatic(clips...)
	sink := &recordSink{}
	s := NewSynchronizer(m, back, lib, sink)
	StartAutoAdvance(s, back)
	return m, back, s, sink
}

func TestPlayLoadsAndAppliesQueuedSeek(t *testing.T) {
	m, back, s, _ := newSyncFixture(3, 2)
	m.Playback.Position = 0.5

	s.Play()
	assert.True(t, m.Playback.IsPlaying)
	assert.Equal(t, 0, m.Playback.ActiveIndex)
	assert.Equal(t, []string{"/clips/clip-0.wav"}, back.LoadCalls)
	assert.False(t, back.IsPlaying(), "player should not run before the load completes")

	back.FinishLoad()
	assert.Equal(t, []float64{0.5}, back.SeekCalls)
	assert.True(t, back.IsPlaying())
}

func TestSeekDuringLoadReplacesQueuedSeek(t *testing.T) {
	m, back, s, _ := newSyncFixture(10)

	s.Play()
	s.SeekTo(7)
	assert.Empty(t, back.SeekCalls, "nothing to seek while the load is in flight")

	back.FinishLoad()
	assert.Equal(t, []float64{7.0}, back.SeekCalls)
	assert.True(t, m.Playback.IsPlaying)
	assert.Equal(t, 7.0, m.Playback.Position)
}

func TestStepSuspendsUntilFirstTimeUpdateAfterSeek(t *testing.T) {
	_, back, s, sink := newSyncFixture(3)
	s.Play()
	back.FinishLoad()

	// seek is in flight until the player reports a new time
	s.Step()
	assert.Empty(t, sink.frames)

	back.Advance(0.1)
	s.Step()
	assert.Len(t, sink.frames, 1)
}

func TestPauseKeepsPositionAndDropsPendingSeek(t *testing.T) {
	m, back, s, _ := newSyncFixture(3, 2)
	m.Playback.Position = 1.0
	s.Play()

	// pause before the load completes: the late completion must not start
	// the player or apply the queued seek
	s.Pause()
	assert.False(t, m.Playback.IsPlaying)
	assert.Equal(t, 1.0, m.Playback.Position)

	back.FinishLoad()
	assert.False(t, back.IsPlaying())
	assert.Empty(t, back.SeekCalls)
}

func TestSeekWhileStoppedOnlyMovesPosition(t *testing.T) {
	m, back, s, _ := newSyncFixture(3, 2)
	s.SeekTo(4.2)
	assert.Equal(t, 4.2, m.Playback.Position)
	assert.Empty(t, back.LoadCalls)

	s.SeekTo(99)
	assert.Equal(t, 5.0, m.Playback.Position, "seek clamps to total duration")
	s.SeekTo(-1)
	assert.Equal(t, 0.0, m.Playback.Position)
}

func TestSeekInsideActiveTrackReusesLoadedSource(t *testing.T) {
	m, back, s, _ := newSyncFixture(5)
	s.Play()
	back.FinishLoad()
	back.Advance(0.1)

	s.SeekTo(3)
	assert.Len(t, back.LoadCalls, 1, "no reload for an in-track seek")
	assert.Equal(t, 3.0, back.SeekCalls[len(back.SeekCalls)-1])
	assert.Equal(t, 3.0, m.Playback.Position)
}

func TestSeekAcrossTracksSwitchesAndQueuesOffset(t *testing.T) {
	m, back, s, _ := newSyncFixture(3, 4)
	s.Play()
	back.FinishLoad()
	back.Advance(0.1)

	s.SeekTo(4.5) // 1.5s into the second track
	assert.Equal(t, 1, m.Playback.ActiveIndex)
	assert.Equal(t, "/clips/clip-1.wav", back.LoadCalls[len(back.LoadCalls)-1])

	back.FinishLoad()
	assert.Equal(t, 1.5, back.SeekCalls[len(back.SeekCalls)-1])
	assert.True(t, back.IsPlaying())
}

func TestAutoAdvanceAcrossBoundary(t *testing.T) {
	m, back, s, _ := newSyncFixture(3, 2)
	s.Play()
	back.FinishLoad()
	back.Advance(0.1)

	back.Advance(2.9) // hits the end of the first source, emits ended
	assert.Equal(t, 1, m.Playback.ActiveIndex)
	assert.Equal(t, 3.0, m.Playback.Position)
	assert.Equal(t, "/clips/clip-1.wav", back.LoadCalls[len(back.LoadCalls)-1])
	assert.True(t, m.Playback.IsPlaying)

	back.FinishLoad()
	assert.True(t, back.IsPlaying())
}

func TestLoopAllWrapsToFirstTrack(t *testing.T) {
	m, back, s, _ := newSyncFixture(3, 2)
	m.Playback.LoopAll = true
	m.Playback.Position = 3.5 // inside the last track
	s.Play()
	back.FinishLoad()
	back.Advance(0.1)

	back.Advance(5) // past the end of the last source
	assert.True(t, m.Playback.IsPlaying)
	assert.Equal(t, 0, m.Playback.ActiveIndex)
	assert.Equal(t, 0.0, m.Playback.Position)
	assert.Equal(t, "/clips/clip-0.wav", back.LoadCalls[len(back.LoadCalls)-1])
}

func TestNaturalEndStopsAtTotalDuration(t *testing.T) {
	m, back, s, _ := newSyncFixture(3, 2)
	m.Playback.Position = 3.5
	s.Play()
	back.FinishLoad()
	back.Advance(0.1)

	back.Advance(5)
	assert.False(t, m.Playback.IsPlaying)
	assert.Equal(t, -1, m.Playback.ActiveIndex)
	assert.Equal(t, 5.0, m.Playback.Position)
	assert.Equal(t, m.Playback.MasterVolume, back.Volume)
}

func TestTrimEndBehavesLikeFileEnd(t *testing.T) {
	m, back, s, _ := newSyncFixture(3, 2)
	tr := m.Timeline.Get(0).WithTrimEnd(1, 0.5) // playable window closes at 2.0
	m.Timeline.Set(0, tr)

	s.Play()
	back.FinishLoad()
	back.Advance(0.1)

	back.Advance(2.0) // player is at 2.1, past the trim boundary
	s.Step()
	assert.Equal(t, 1, m.Playback.ActiveIndex, "trim end advances to the next track")
	assert.Equal(t, "/clips/clip-1.wav", back.LoadCalls[len(back.LoadCalls)-1])
}

func TestTrimStartOffsetsTheInitialSeek(t *testing.T) {
	m, back, s, _ := newSyncFixture(5)
	tr := m.Timeline.Get(0).WithTrimStart(2, 0.5)
	m.Timeline.Set(0, tr)
	m.Playback.Position = 1.0 // 1s into the effective window

	s.Play()
	back.FinishLoad()
	assert.Equal(t, 3.0, back.SeekCalls[0], "trim start plus in-track offset")
}

func TestSameSourceReusedAcrossAdjacentTracks(t *testing.T) {
	m, back, s, _ := newSyncFixture(3)
	// second placement of the same clip
	m.Timeline.Insert(1, model.TimelineTrack{
		ID: "trk-again", SourceID: "clip-0", Duration: 3, Volume: 1,
	})

	s.Play()
	back.FinishLoad()
	back.Advance(0.1)
	back.Advance(3)

	assert.Equal(t, 1, m.Playback.ActiveIndex)
	assert.Len(t, back.LoadCalls, 1, "already-loaded source restarts with a seek")
	assert.Equal(t, 0.0, back.SeekCalls[len(back.SeekCalls)-1])
	assert.True(t, back.IsPlaying())
}

func TestCommitThrottling(t *testing.T) {
	m, back, s, sink := newSyncFixture(10)
	s.Play()
	back.FinishLoad()
	back.Advance(1.0)

	for i := 0; i < types.CommitEveryNFrames-1; i++ {
		s.Step()
	}
	assert.Len(t, sink.frames, types.CommitEveryNFrames-1)
	assert.Equal(t, 0.0, m.Playback.Position, "shared position held until the commit frame")

	s.Step()
	assert.Equal(t, 1.0, m.Playback.Position)
}

func TestFlushCommitsLastComputedFrame(t *testing.T) {
	m, back, s, _ := newSyncFixture(10)
	s.Play()
	back.FinishLoad()
	back.Advance(2.5)

	s.Step()
	assert.Equal(t, 0.0, m.Playback.Position)
	s.Flush()
	assert.Equal(t, 2.5, m.Playback.Position)

	// a second flush with no new frame is a no-op
	m.Playback.Position = 9
	s.Flush()
	assert.Equal(t, 9.0, m.Playback.Position)
}

func TestVolumeIsTrackTimesMaster(t *testing.T) {
	m, back, s, _ := newSyncFixture(3)
	tr := m.Timeline.Get(0).WithVolume(0.5)
	m.Timeline.Set(0, tr)
	m.Playback.MasterVolume = 0.8

	s.Play()
	assert.InDelta(t, 0.4, back.Volume, 1e-9)

	s.Pause()
	assert.InDelta(t, 0.8, back.Volume, 1e-9, "pause resets the player to master gain")
}

func TestErrorRetriesOnceWithRefreshedURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.wav")
	assert.NoError(t, os.WriteFile(path, []byte("riff"), 0o644))

	m := model.NewModel(57140, "")
	back := backend.NewFake()
	back.Durations[path] = 3
	lib := library.NewStatic(library.NewClip("clip", 3, map[types.Variant]string{
		types.VariantVocal: path,
	}))
	m.Timeline.Insert(0, model.TimelineTrack{ID: "trk-0", SourceID: "clip", Duration: 3, Volume: 1})
	s := NewSynchronizer(m, back, lib, nil)
	StartAutoAdvance(s, back)

	s.Play()
	back.FailNextLoad = true
	back.FinishLoad()
	assert.Len(t, back.LoadCalls, 2, "one retry with the refreshed url")
	assert.True(t, m.Playback.IsPlaying)
	assert.False(t, m.Unplayable["trk-0"])

	t.Run("second failure marks the track unplayable", func(t *testing.T) {
		back.FailNextLoad = true
		back.FinishLoad()
		assert.Len(t, back.LoadCalls, 2)
		assert.True(t, m.Unplayable["trk-0"])
		assert.False(t, m.Playback.IsPlaying)
		assert.Equal(t, -1, m.Playback.ActiveIndex)
	})
}

func TestErrorWithMissingFileSkipsRetry(t *testing.T) {
	m, back, s, _ := newSyncFixture(3) // /clips/... does not exist on disk
	s.Play()
	back.FailNextLoad = true
	back.FinishLoad()

	assert.Len(t, back.LoadCalls, 1, "refresh failed, no retry issued")
	assert.True(t, m.Unplayable["trk-0"])
	assert.False(t, m.Playback.IsPlaying)
}

func TestUnplayableTracksAreSkippedOnPlay(t *testing.T) {
	m, back, s, _ := newSyncFixture(3, 2)
	m.Unplayable["trk-0"] = true

	s.Play()
	assert.Equal(t, 1, m.Playback.ActiveIndex)
	assert.Equal(t, []string{"/clips/clip-1.wav"}, back.LoadCalls)

	t.Run("all tracks unplayable stops cleanly", func(t *testing.T) {
		m2, back2, s2, _ := newSyncFixture(3, 2)
		m2.Unplayable["trk-0"] = true
		m2.Unplayable["trk-1"] = true
		m2.Playback.LoopAll = true
		s2.Play()
		assert.False(t, m2.Playback.IsPlaying)
		assert.Equal(t, -1, m2.Playback.ActiveIndex)
		assert.Empty(t, back2.LoadCalls)
	})
}

func TestToggle(t *testing.T) {
	m, back, s, _ := newSyncFixture(3)
	s.Toggle()
	assert.True(t, m.Playback.IsPlaying)
	back.FinishLoad()
	s.Toggle()
	assert.False(t, m.Playback.IsPlaying)
}
