// Package midiconnector maps MIDI controller input onto transport actions,
// so play/pause and track navigation work from a pad without touching the
// keyboard. A MIDI driver must be registered by the build for ports to show
// up; with none present Devices returns an empty list and Listen fails,
// which callers treat as "no MIDI".
package midiconnector

import (
	"log"

	"gitlab.com/gomidi/midi/v2"
)

// Transport is the subset of playback control reachable from MIDI.
type Transport interface {
	Toggle()
	Next()
	Prev()
}

// Note assignments, standard transport-pad layout
const (
	NotePlay uint8 = 0x3C // C4
	NotePrev uint8 = 0x3E // D4
	NoteNext uint8 = 0x40 // E4
)

// Devices lists the available MIDI input ports.
func Devices() []string {
	ports := midi.GetInPorts()
	names := make([]string, 0, len(ports))
	for _, p := range ports {
		names = append(names, p.String())
	}
	return names
}

// Listen subscribes to a device and forwards note-on presses to the
// transport. Returns a stop function.
func Listen(device string, t Transport) (func(), error) {
	in, err := midi.FindInPort(device)
	if err != nil {
		return nil, err
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var ch, key, vel uint8
		if !msg.GetNoteStart(&ch, &key, &vel) {
			return
		}
		switch key {
		case NotePlay:
			t.Toggle()
		case NotePrev:
			t.Prev()
		case NoteNext:
			t.Next()
		}
	})
	if err != nil {
		return nil, err
	}
	log.Printf("listening for MIDI transport on %s", device)
	return stop, nil
}
