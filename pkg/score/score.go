package score

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/james-see/drumscript/pkg/duration"
	"github.com/james-see/drumscript/pkg/logging"
)

// ErrNoInstrument is returned for a note without any patch.
var ErrNoInstrument = errors.New("note has no instrument")

// ErrEventLimit is returned once a score holds as many notes and rests as
// its limit allows.
var ErrEventLimit = errors.New("score event limit reached")

// Score accumulates timeline events. It is not safe for concurrent use;
// simultaneous parts are written one after the other with Sync.
type Score struct {
	events []Event

	// cursor is where the next note or rest starts, in beats
	cursor *big.Rat

	// counter is the running beat total of every note and rest written
	counter *big.Rat

	velocity  uint8
	channel   uint8
	beats     int
	divisions int

	// limit caps the number of notes and rests; zero means no cap
	limit      int
	timedCount int

	log *logrus.Entry
}

// Option configures a new Score.
type Option func(*Score)

// WithChannel sets the MIDI channel notes are written on.
func WithChannel(ch uint8) Option {
	return func(s *Score) { s.channel = ch & 0x0F }
}

// WithVolume sets the default note velocity.
func WithVolume(v uint8) Option {
	return func(s *Score) { s.velocity = clampVelocity(int(v)) }
}

// WithEventLimit caps the number of notes and rests the score accepts.
func WithEventLimit(n int) Option {
	return func(s *Score) { s.limit = max(n, 0) }
}

// WithLogger replaces the project logger.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Score) { s.log = log }
}

// New returns an empty score at beat 0 on the GM drum channel in 4/4.
func New(opts ...Option) *Score {
	s := &Score{
		cursor:    new(big.Rat),
		counter:   new(big.Rat),
		velocity:  100,
		channel:   9,
		beats:     4,
		divisions: 4,
		log:       logging.GetLogger("score"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns a copy of the timeline in emission order.
func (s *Score) Events() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of events written so far.
func (s *Score) Len() int {
	return len(s.events)
}

// Counter returns the beat counter.
func (s *Score) Counter() *big.Rat {
	return new(big.Rat).Set(s.counter)
}

// CounterFloat returns the beat counter as a float for display.
func (s *Score) CounterFloat() float64 {
	f, _ := s.counter.Float64()
	return f
}

// Position returns where the next note or rest starts, in beats.
func (s *Score) Position() *big.Rat {
	return new(big.Rat).Set(s.cursor)
}

// Velocity returns the default note velocity.
func (s *Score) Velocity() uint8 {
	return s.velocity
}

// SetVolume changes the default note velocity.
func (s *Score) SetVolume(v int) {
	s.velocity = clampVelocity(v)
}

// Channel returns the MIDI channel notes are written on.
func (s *Score) Channel() uint8 {
	return s.channel
}

// SetChannel changes the channel of subsequent events.
func (s *Score) SetChannel(ch uint8) {
	s.channel = ch & 0x0F
}

// Signature returns the current beats per bar and beat division.
func (s *Score) Signature() (int, int) {
	return s.beats, s.divisions
}

// Note appends a note of length d on every patch at the default velocity.
func (s *Score) Note(d duration.Token, patches ...Patch) error {
	return s.NoteVelocity(d, s.velocity, patches...)
}

// NoteVelocity appends a note with an explicit velocity.
func (s *Score) NoteVelocity(d duration.Token, velocity uint8, patches ...Patch) error {
	if len(patches) == 0 {
		return ErrNoInstrument
	}
	ev, err := s.timed(KindNote, d)
	if err != nil {
		return err
	}
	ev.Patches = append([]Patch(nil), patches...)
	ev.Velocity = clampVelocity(int(velocity))
	s.events = append(s.events, ev)
	return nil
}

// Rest appends silence of length d.
func (s *Score) Rest(d duration.Token) error {
	ev, err := s.timed(KindRest, d)
	if err != nil {
		return err
	}
	s.events = append(s.events, ev)
	return nil
}

// Count adds the length of d to the beat counter without writing an event
// or moving the cursor.
func (s *Score) Count(d duration.Token) error {
	length, err := duration.BeatLength(d)
	if err != nil {
		return err
	}
	s.counter.Add(s.counter, length)
	return nil
}

// timed builds a note or rest event at the cursor and advances both the
// cursor and the beat counter.
func (s *Score) timed(kind EventKind, d duration.Token) (Event, error) {
	if s.limit > 0 && s.timedCount >= s.limit {
		return Event{}, fmt.Errorf("%w (%d)", ErrEventLimit, s.limit)
	}
	length, err := duration.BeatLength(d)
	if err != nil {
		return Event{}, err
	}
	s.timedCount++

	start := duration.RoundTicks(s.cursor)
	s.cursor.Add(s.cursor, length)
	s.counter.Add(s.counter, length)
	end := duration.RoundTicks(s.cursor)

	return Event{
		Kind:     kind,
		At:       uint32(start),
		Ticks:    uint32(end - start),
		Duration: d,
		Channel:  s.channel,
	}, nil
}

// WithVelocity runs fn with the default velocity set to v and restores the
// previous velocity afterwards, whether fn fails or not.
func (s *Score) WithVelocity(v int, fn func() error) error {
	prev := s.velocity
	s.velocity = clampVelocity(v)
	defer func() { s.velocity = prev }()
	return fn()
}

// Accent plays a single note at velocity without changing the default.
func (s *Score) Accent(velocity int, d duration.Token, patches ...Patch) error {
	return s.WithVelocity(velocity, func() error {
		return s.Note(d, patches...)
	})
}

// SetTimeSignature records a meter change at the cursor. It can be called
// anywhere in the timeline.
func (s *Score) SetTimeSignature(beats, divisions int) error {
	if beats <= 0 || beats > 255 {
		return fmt.Errorf("invalid beats per bar %d", beats)
	}
	if divisions <= 0 || divisions > 128 || divisions&(divisions-1) != 0 {
		return fmt.Errorf("invalid beat division %d: must be a power of two", divisions)
	}
	s.beats, s.divisions = beats, divisions
	s.events = append(s.events, Event{
		Kind:      KindMeter,
		At:        uint32(duration.RoundTicks(s.cursor)),
		Beats:     uint8(beats),
		Divisions: uint8(divisions),
	})
	s.log.WithFields(logrus.Fields{"beats": beats, "divisions": divisions}).Debug("SetTimeSignature")
	return nil
}

// SetTempo records a tempo change at the cursor.
func (s *Score) SetTempo(bpm float64) error {
	if bpm <= 0 {
		return fmt.Errorf("invalid tempo %v", bpm)
	}
	s.events = append(s.events, Event{
		Kind: KindTempo,
		At:   uint32(duration.RoundTicks(s.cursor)),
		BPM:  bpm,
	})
	return nil
}

// Control records a control change on the score's channel at the cursor.
func (s *Score) Control(controller, value uint8) {
	s.events = append(s.events, Event{
		Kind:       KindControl,
		At:         uint32(duration.RoundTicks(s.cursor)),
		Channel:    s.channel,
		Controller: controller & 0x7F,
		Value:      value & 0x7F,
	})
}

// Sync writes several parts that play at the same time. Every voice
// starts at the current position; afterwards the position is the end of
// the longest voice. The beat counter is shared, so it grows by the sum of
// all voices.
func (s *Score) Sync(voices ...func() error) error {
	start := new(big.Rat).Set(s.cursor)
	end := new(big.Rat).Set(start)
	defer func() { s.cursor.Set(end) }()

	for i, voice := range voices {
		s.cursor.Set(start)
		err := voice()
		if s.cursor.Cmp(end) > 0 {
			end.Set(s.cursor)
		}
		if err != nil {
			return fmt.Errorf("voice %d: %w", i, err)
		}
	}
	s.log.WithFields(logrus.Fields{"voices": len(voices), "end": end.FloatString(3)}).Debug("Sync")
	return nil
}

// End returns the last tick any event reaches.
func (s *Score) End() uint32 {
	var end uint32
	for _, ev := range s.events {
		if e := ev.At + ev.Ticks; e > end {
			end = e
		}
	}
	return end
}

func clampVelocity(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 127:
		return 127
	default:
		return uint8(v)
	}
}
