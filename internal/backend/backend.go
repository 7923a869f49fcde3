// Package backend defines the control/event contract of the external audio
// player. The engine never decodes audio itself; it points the player at a
// source URL and follows the player's reported position.
package backend

// Event is a completion or telemetry notification from the player.
type Event interface{ backendEvent() }

// LoadedEvent fires when a load request completes. URL echoes the request so
// stale completions can be told apart from the current one.
type LoadedEvent struct {
	URL      string
	Duration float64
}

// TimeUpdateEvent carries the player's current position in seconds.
type TimeUpdateEvent struct {
	CurrentTime float64
}

// EndedEvent fires when the loaded source finishes playing on its own.
type EndedEvent struct{}

// ErrorEvent fires when a load or playback request fails.
type ErrorEvent struct {
	URL string
	Err string
}

func (LoadedEvent) backendEvent()     {}
func (TimeUpdateEvent) backendEvent() {}
func (EndedEvent) backendEvent()      {}
func (ErrorEvent) backendEvent()      {}

// Backend is the player control surface. Load/Play/Pause/SeekTo are
// fire-and-forget requests; completions arrive as events. CurrentTime and
// Duration read the locally mirrored state and never block.
type Backend interface {
	Load(url string)
	Play()
	Pause()
	SeekTo(seconds float64)
	SetVolume(v float64)

	CurrentTime() float64
	Duration() float64
	IsPlaying() bool

	// Subscribe registers a listener for player events and returns an
	// unsubscribe function. Listeners survive UI teardown, which is what
	// keeps auto-advance alive without a mounted view.
	Subscribe(fn func(Event)) (unsubscribe func())
}
