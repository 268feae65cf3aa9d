package score

import (
	"fmt"
	"math"
)

// Sink receives a finished timeline. Times are absolute ticks; simultaneous
// voices arrive interleaved in emission order and the sink is responsible
// for merging them by time.
type Sink interface {
	AppendNote(at, ticks uint32, channel uint8, keys []uint8, velocity uint8) error
	AppendRest(at, ticks uint32) error
	SetTimeSignature(at uint32, beats, divisions uint8) error
	SetTempo(at uint32, microsecondsPerQuarter uint32) error
	SetControl(at uint32, channel, controller, value uint8) error
}

// Flush replays every event into sink.
func (s *Score) Flush(sink Sink) error {
	for i, ev := range s.events {
		var err error
		switch ev.Kind {
		case KindNote:
			keys := make([]uint8, len(ev.Patches))
			for j, p := range ev.Patches {
				keys[j] = uint8(p)
			}
			err = sink.AppendNote(ev.At, ev.Ticks, ev.Channel, keys, ev.Velocity)
		case KindRest:
			err = sink.AppendRest(ev.At, ev.Ticks)
		case KindMeter:
			err = sink.SetTimeSignature(ev.At, ev.Beats, ev.Divisions)
		case KindTempo:
			err = sink.SetTempo(ev.At, MicrosecondsPerQuarter(ev.BPM))
		case KindControl:
			err = sink.SetControl(ev.At, ev.Channel, ev.Controller, ev.Value)
		default:
			err = fmt.Errorf("unknown event kind %s", ev.Kind)
		}
		if err != nil {
			return fmt.Errorf("event %d (%s at %d): %w", i, ev.Kind, ev.At, err)
		}
	}
	return nil
}

// MicrosecondsPerQuarter converts a tempo in BPM to the MIDI tempo unit.
func MicrosecondsPerQuarter(bpm float64) uint32 {
	if bpm <= 0 {
		return 500000
	}
	return uint32(math.Round(60000000.0 / bpm))
}
