package backend

// Fake is an in-memory Backend for tests: every request is recorded, loads
// complete only when the test fires FinishLoad, and time advances only when
// the test calls Advance. Events are delivered synchronously.
type Fake struct {
	LoadedURL   string
	LoadPending bool
	Volume      float64
	SeekCalls   []float64
	LoadCalls   []string

	currentTime float64
	duration    float64
	playing     bool

	// FailNextLoad makes the next FinishLoad report an error instead
	FailNextLoad bool

	Durations map[string]float64 // per-URL durations for FinishLoad

	subs []func(Event)
}

func NewFake() *Fake {
	return &Fake{Durations: map[string]float64{}}
}

func (f *Fake) Load(url string) {
	f.LoadCalls = append(f.LoadCalls, url)
	f.LoadedURL = url
	f.LoadPending = true
	f.playing = false
}

// FinishLoad completes the pending load (or fails it) and emits the event.
func (f *Fake) FinishLoad() {
	if !f.LoadPending {
		return
	}
	f.LoadPending = false
	if f.FailNextLoad {
		f.FailNextLoad = false
		f.emit(ErrorEvent{URL: f.LoadedURL, Err: "load failed"})
		return
	}
	if d, ok := f.Durations[f.LoadedURL]; ok {
		f.duration = d
	}
	f.currentTime = 0
	f.emit(LoadedEvent{URL: f.LoadedURL, Duration: f.duration})
}

func (f *Fake) Play()  { f.playing = true }
func (f *Fake) Pause() { f.playing = false }

func (f *Fake) SeekTo(seconds float64) {
	f.SeekCalls = append(f.SeekCalls, seconds)
	f.currentTime = seconds
}

func (f *Fake) SetVolume(v float64) { f.Volume = v }

func (f *Fake) CurrentTime() float64 { return f.currentTime }
func (f *Fake) Duration() float64    { return f.duration }
func (f *Fake) IsPlaying() bool      { return f.playing }

// SetDuration primes the currently loaded source's duration.
func (f *Fake) SetDuration(d float64) { f.duration = d }

// Advance moves playback time forward and stops at the end of the source.
func (f *Fake) Advance(dt float64) {
	if !f.playing {
		return
	}
	f.currentTime += dt
	if f.currentTime >= f.duration {
		f.currentTime = f.duration
		f.playing = false
		f.emit(EndedEvent{})
	} else {
		f.emit(TimeUpdateEvent{CurrentTime: f.currentTime})
	}
}

func (f *Fake) Subscribe(fn func(Event)) func() {
	f.subs = append(f.subs, fn)
	i := len(f.subs) - 1
	return func() { f.subs[i] = nil }
}

func (f *Fake) emit(ev Event) {
	for _, fn := range f.subs {
		if fn != nil {
			fn(ev)
		}
	}
}
