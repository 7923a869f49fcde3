package model

// Timeline is the ordered sequence of track placements. The slice order is
// the source of truth for ordering; there is no stored index field. All
// mutation is synchronous through the owning Model, so there is no locking.
type Timeline struct {
	Tracks []TimelineTrack `json:"tracks"`
}

func NewTimeline() *Timeline {
	return &Timeline{Tracks: []TimelineTrack{}}
}

// TotalDuration sums the effective durations of all tracks.
func (tl *Timeline) TotalDuration() float64 {
	total := 0.0
	for _, t := range tl.Tracks {
		total += t.EffectiveDuration()
	}
	return total
}

// Len returns the number of tracks.
func (tl *Timeline) Len() int {
	return len(tl.Tracks)
}

// IndexOf returns the position of the placement with the given id, or -1.
func (tl *Timeline) IndexOf(id string) int {
	for i, t := range tl.Tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Get returns a copy of the track at index i.
func (tl *Timeline) Get(i int) TimelineTrack {
	return tl.Tracks[i]
}

// Set replaces the track at index i.
func (tl *Timeline) Set(i int, t TimelineTrack) {
	tl.Tracks[i] = t
}

// HasSource reports whether any placement references the given source clip.
func (tl *Timeline) HasSource(sourceID string) bool {
	for _, t := range tl.Tracks {
		if t.SourceID == sourceID {
			return true
		}
	}
	return false
}

// Insert places a track at index i, clamping i into [0, len]. Placement IDs
// are unique; a duplicate ID is ignored.
func (tl *Timeline) Insert(i int, t TimelineTrack) {
	if tl.IndexOf(t.ID) != -1 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > len(tl.Tracks) {
		i = len(tl.Tracks)
	}
	tl.Tracks = append(tl.Tracks, TimelineTrack{})
	copy(tl.Tracks[i+1:], tl.Tracks[i:])
	tl.Tracks[i] = t
}

// Remove deletes the placement with the given id and returns true if found.
func (tl *Timeline) Remove(id string) bool {
	i := tl.IndexOf(id)
	if i == -1 {
		return false
	}
	tl.Tracks = append(tl.Tracks[:i], tl.Tracks[i+1:]...)
	return true
}

// Move relocates the track at index from to index to, shifting the tracks in
// between. Out-of-range indices are clamped.
func (tl *Timeline) Move(from, to int) {
	n := len(tl.Tracks)
	if n == 0 {
		return
	}
	if from < 0 || from >= n {
		return
	}
	if to < 0 {
		to = 0
	}
	if to >= n {
		to = n - 1
	}
	if from == to {
		return
	}
	t := tl.Tracks[from]
	if from < to {
		copy(tl.Tracks[from:], tl.Tracks[from+1:to+1])
	} else {
		copy(tl.Tracks[to+1:], tl.Tracks[to:from])
	}
	tl.Tracks[to] = t
}

// Locate resolves a global timeline position to (track index, offset within
// that track's effective duration). Positions at or past the end resolve to
// the last track; an empty timeline returns (-1, 0).
func (tl *Timeline) Locate(t float64) (int, float64) {
	if len(tl.Tracks) == 0 {
		return -1, 0
	}
	if t < 0 {
		t = 0
	}
	elapsed := 0.0
	for i, tr := range tl.Tracks {
		eff := tr.EffectiveDuration()
		if t < elapsed+eff || i == len(tl.Tracks)-1 {
			off := t - elapsed
			if off < 0 {
				off = 0
			}
			if off > eff {
				off = eff
			}
			return i, off
		}
		elapsed += eff
	}
	return -1, 0
}

// StartOffset returns the cumulative start time of the track at index i.
func (tl *Timeline) StartOffset(i int) float64 {
	elapsed := 0.0
	for j := 0; j < i && j < len(tl.Tracks); j++ {
		elapsed += tl.Tracks[j].EffectiveDuration()
	}
	return elapsed
}
