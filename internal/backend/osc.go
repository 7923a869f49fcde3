package backend

import (
	"log"
	"sync"

	"github.com/hypebeast/go-osc/osc"
)

// OSCBackend drives an out-of-process audio player over OSC. Control goes
// out on /tapeline/* messages; the player reports back on the dispatcher the
// caller registers with Register. CurrentTime/Duration mirror the last
// reported values so frame-loop reads never touch the network.
type OSCBackend struct {
	client *osc.Client

	mu          sync.Mutex
	currentTime float64
	duration    float64
	playing     bool

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

func NewOSCBackend(host string, port int) *OSCBackend {
	return &OSCBackend{
		client: osc.NewClient(host, port),
		subs:   map[int]func(Event){},
	}
}

// Register adds the player's report handlers to an existing OSC dispatcher,
// the same dispatcher the rest of the program listens on.
func (b *OSCBackend) Register(d *osc.StandardDispatcher) {
	d.AddMsgHandler("/tapeline/loaded", func(msg *osc.Message) {
		if len(msg.Arguments) < 2 {
			return
		}
		url, _ := msg.Arguments[0].(string)
		dur := float64(argFloat(msg.Arguments[1]))
		b.mu.Lock()
		b.duration = dur
		b.currentTime = 0
		b.mu.Unlock()
		log.Printf("backend loaded %s (%.2fs)", url, dur)
		b.emit(LoadedEvent{URL: url, Duration: dur})
	})
	d.AddMsgHandler("/tapeline/position", func(msg *osc.Message) {
		if len(msg.Arguments) < 2 {
			return
		}
		pos := float64(argFloat(msg.Arguments[0]))
		playing := argFloat(msg.Arguments[1]) > 0.5
		b.mu.Lock()
		b.currentTime = pos
		b.playing = playing
		b.mu.Unlock()
		b.emit(TimeUpdateEvent{CurrentTime: pos})
	})
	d.AddMsgHandler("/tapeline/ended", func(msg *osc.Message) {
		b.mu.Lock()
		b.playing = false
		b.mu.Unlock()
		log.Printf("backend reported natural end")
		b.emit(EndedEvent{})
	})
	d.AddMsgHandler("/tapeline/error", func(msg *osc.Message) {
		url := ""
		errStr := ""
		if len(msg.Arguments) > 0 {
			url, _ = msg.Arguments[0].(string)
		}
		if len(msg.Arguments) > 1 {
			errStr, _ = msg.Arguments[1].(string)
		}
		b.mu.Lock()
		b.playing = false
		b.mu.Unlock()
		log.Printf("backend error for %s: %s", url, errStr)
		b.emit(ErrorEvent{URL: url, Err: errStr})
	})
}

func argFloat(v interface{}) float32 {
	switch x := v.(type) {
	case float32:
		return x
	case float64:
		return float32(x)
	case int32:
		return float32(x)
	}
	return 0
}

func (b *OSCBackend) send(msg *osc.Message) {
	if err := b.client.Send(msg); err != nil {
		log.Printf("OSC send %s failed: %v", msg.Address, err)
	}
}

func (b *OSCBackend) Load(url string) {
	msg := osc.NewMessage("/tapeline/load")
	msg.Append(url)
	b.send(msg)
}

func (b *OSCBackend) Play() {
	b.mu.Lock()
	b.playing = true
	b.mu.Unlock()
	b.send(osc.NewMessage("/tapeline/play"))
}

func (b *OSCBackend) Pause() {
	b.mu.Lock()
	b.playing = false
	b.mu.Unlock()
	b.send(osc.NewMessage("/tapeline/pause"))
}

func (b *OSCBackend) SeekTo(seconds float64) {
	b.mu.Lock()
	b.currentTime = seconds
	b.mu.Unlock()
	msg := osc.NewMessage("/tapeline/seek")
	msg.Append(float32(seconds))
	b.send(msg)
}

func (b *OSCBackend) SetVolume(v float64) {
	msg := osc.NewMessage("/tapeline/volume")
	msg.Append(float32(v))
	b.send(msg)
}

func (b *OSCBackend) CurrentTime() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentTime
}

func (b *OSCBackend) Duration() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.duration
}

func (b *OSCBackend) IsPlaying() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing
}

func (b *OSCBackend) Subscribe(fn func(Event)) func() {
	b.subMu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.subMu.Unlock()
	return func() {
		b.subMu.Lock()
		delete(b.subs, id)
		b.subMu.Unlock()
	}
}

func (b *OSCBackend) emit(ev Event) {
	b.subMu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.subMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
