// Package score is the append-only drum timeline: notes, rests and the
// meta events around them, plus the sink that turns it into a MIDI file.
package score

import (
	"fmt"

	"github.com/james-see/drumscript/pkg/duration"
)

// Patch is a percussion key number (General MIDI drum map).
type Patch uint8

// EventKind tells events apart
type EventKind int

const (
	KindNote EventKind = iota
	KindRest
	KindTempo
	KindMeter
	KindControl
)

func (k EventKind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindRest:
		return "rest"
	case KindTempo:
		return "tempo"
	case KindMeter:
		return "meter"
	case KindControl:
		return "control"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is one entry of the timeline. At and Ticks are absolute
// positions in ticks (96 per quarter note).
type Event struct {
	Kind     EventKind
	At       uint32
	Ticks    uint32
	Duration duration.Token
	Patches  []Patch
	Velocity uint8
	Channel  uint8

	// Meter
	Beats     uint8
	Divisions uint8

	// Tempo
	BPM float64

	// Control change
	Controller uint8
	Value      uint8
}

// IsNote reports whether e sounds.
func (e Event) IsNote() bool {
	return e.Kind == KindNote
}

// IsTimed reports whether e occupies time on the timeline.
func (e Event) IsTimed() bool {
	return e.Kind == KindNote || e.Kind == KindRest
}
