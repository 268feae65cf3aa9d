package score

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/drumscript/pkg/duration"
)

// Ordering of messages that share a tick: releases first so a retriggered
// key is not cut short, then meta and controller messages, then new notes.
const (
	orderNoteOff = iota
	orderMeta
	orderNoteOn
)

type timedMessage struct {
	at    uint32
	order int
	seq   int
	msg   []byte
}

// MIDIWriter is a Sink that builds a single-track Standard MIDI File.
type MIDIWriter struct {
	ticksPerQuarter uint16
	messages        []timedMessage
	end             uint32
}

// NewMIDIWriter creates a writer at the timeline resolution.
func NewMIDIWriter() *MIDIWriter {
	return &MIDIWriter{
		ticksPerQuarter: duration.TicksPerQuarter,
	}
}

func (m *MIDIWriter) add(at uint32, order int, msg []byte) {
	m.messages = append(m.messages, timedMessage{
		at:    at,
		order: order,
		seq:   len(m.messages),
		msg:   msg,
	})
	if at > m.end {
		m.end = at
	}
}

// AppendNote adds note-on/note-off pairs for every key. A note at velocity
// 0 is written as silence, since a zero-velocity note-on means note-off.
func (m *MIDIWriter) AppendNote(at, ticks uint32, channel uint8, keys []uint8, velocity uint8) error {
	if channel > 15 {
		return fmt.Errorf("invalid channel %d", channel)
	}
	for _, key := range keys {
		if key > 127 {
			return fmt.Errorf("invalid key %d", key)
		}
	}
	if ticks == 0 {
		// zero-length notes would release before they sound
		return nil
	}
	if velocity == 0 {
		return m.AppendRest(at, ticks)
	}
	for _, key := range keys {
		m.add(at, orderNoteOn, midi.NoteOn(channel, key, velocity))
		m.add(at+ticks, orderNoteOff, midi.NoteOff(channel, key))
	}
	return nil
}

// AppendRest only extends the track; silence needs no message.
func (m *MIDIWriter) AppendRest(at, ticks uint32) error {
	if at+ticks > m.end {
		m.end = at + ticks
	}
	return nil
}

// SetTimeSignature adds a meter meta event. divisions is the plain
// denominator (4 for 3/4); the power-of-two encoding is done by smf.
func (m *MIDIWriter) SetTimeSignature(at uint32, beats, divisions uint8) error {
	if beats == 0 || divisions == 0 || divisions&(divisions-1) != 0 {
		return fmt.Errorf("invalid time signature %d/%d", beats, divisions)
	}
	m.add(at, orderMeta, smf.MetaMeter(beats, divisions))
	return nil
}

// SetTempo adds a tempo meta event.
func (m *MIDIWriter) SetTempo(at uint32, microsecondsPerQuarter uint32) error {
	if microsecondsPerQuarter == 0 {
		return errors.New("invalid tempo: zero microseconds per quarter")
	}
	bpm := 60000000.0 / float64(microsecondsPerQuarter)
	m.add(at, orderMeta, smf.MetaTempo(bpm))
	return nil
}

// SetControl adds a control change, e.g. CC91 reverb send.
func (m *MIDIWriter) SetControl(at uint32, channel, controller, value uint8) error {
	if channel > 15 {
		return fmt.Errorf("invalid channel %d", channel)
	}
	m.add(at, orderMeta, midi.ControlChange(channel, controller, value))
	return nil
}

// SMF assembles the collected messages into a MIDI file.
func (m *MIDIWriter) SMF() (*smf.SMF, error) {
	sorted := make([]timedMessage, len(m.messages))
	copy(sorted, m.messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.at != b.at {
			return a.at < b.at
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.seq < b.seq
	})

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	var track smf.Track
	var currentTick uint32
	for _, tm := range sorted {
		track.Add(tm.at-currentTick, tm.msg)
		currentTick = tm.at
	}

	// Close at the end of the last rest so trailing silence is kept
	var tail uint32
	if m.end > currentTick {
		tail = m.end - currentTick
	}
	track.Close(tail)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}
	return s, nil
}

// Bytes renders the MIDI file.
func (m *MIDIWriter) Bytes() ([]byte, error) {
	s, err := m.SMF()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the MIDI file to path.
func (m *MIDIWriter) WriteFile(path string) error {
	data, err := m.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write MIDI file: %w", err)
	}
	return nil
}

// EncodeMIDI flushes a score through a fresh MIDIWriter.
func EncodeMIDI(s *Score) ([]byte, error) {
	w := NewMIDIWriter()
	if err := s.Flush(w); err != nil {
		return nil, err
	}
	return w.Bytes()
}
