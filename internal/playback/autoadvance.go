package playback

import (
	"github.com/schollz/tapeline/internal/backend"
)

// AutoAdvance is the standing subscription that keeps the natural-end
// transition (advance / loop / stop) alive independent of any view's
// lifetime. It is registered once at application start and stays up for the
// life of the process.
type AutoAdvance struct {
	unsubscribe func()
}

// StartAutoAdvance subscribes the synchronizer to all player completions:
// ended drives the advance/loop/stop transition, loaded applies queued
// in-track seeks, errors drive the retry-once policy, and time updates clear
// the seek suspension.
func StartAutoAdvance(s *Synchronizer, b backend.Backend) *AutoAdvance {
	a := &AutoAdvance{}
	a.unsubscribe = b.Subscribe(func(ev backend.Event) {
		switch ev := ev.(type) {
		case backend.EndedEvent:
			s.HandleEnded()
		case backend.LoadedEvent:
			s.HandleLoaded(ev)
		case backend.ErrorEvent:
			s.HandleError(ev)
		case backend.TimeUpdateEvent:
			s.HandleTimeUpdate(ev)
		}
	})
	return a
}

// Stop tears the subscription down. Only used on process exit.
func (a *AutoAdvance) Stop() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}
