// Package drummer composes drum parts onto a score from beat-strings,
// Euclidean rhythms, enumerated variations, fills and rudiments.
package drummer

import (
	"bytes"
	"fmt"
	"io"
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/james-see/drumscript/pkg/config"
	"github.com/james-see/drumscript/pkg/duration"
	"github.com/james-see/drumscript/pkg/logging"
	"github.com/james-see/drumscript/pkg/rhythm"
	"github.com/james-see/drumscript/pkg/score"
)

// ReverbController is the GM effects-1 (reverb send) controller.
const ReverbController = 91

// Drummer writes a drum part onto its score.
type Drummer struct {
	settings config.Settings
	score    *score.Score
	log      *logrus.Entry
}

// New creates a drummer and writes the score header: time signature,
// tempo and reverb send. Options are applied to the score after the
// settings.
func New(settings config.Settings, opts ...score.Option) (*Drummer, error) {
	settings = settings.WithDefaults()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	d := &Drummer{
		settings: settings,
		score: score.New(append([]score.Option{
			score.WithChannel(uint8(settings.ChannelNumber())),
			score.WithVolume(uint8(settings.VolumeLevel())),
		}, opts...)...),
		log: logging.GetLogger("drummer"),
	}

	if err := d.SetTimeSignature(settings.Signature); err != nil {
		return nil, err
	}
	if err := d.score.SetTempo(settings.BPM); err != nil {
		return nil, err
	}
	d.score.Control(ReverbController, uint8(settings.ReverbLevel()))

	d.log.WithFields(logrus.Fields{
		"bpm":       settings.BPM,
		"signature": settings.Signature,
		"channel":   settings.ChannelNumber(),
	}).Debug("New")
	return d, nil
}

// Settings returns the settings the drummer was built with.
func (d *Drummer) Settings() config.Settings {
	return d.settings
}

// Score exposes the underlying timeline.
func (d *Drummer) Score() *score.Score {
	return d.score
}

// Counter returns the beat counter.
func (d *Drummer) Counter() *big.Rat {
	return d.score.Counter()
}

// Beats returns the beats per bar of the current time signature.
func (d *Drummer) Beats() int {
	beats, _ := d.score.Signature()
	return beats
}

// Divisions returns the beat unit of the current time signature.
func (d *Drummer) Divisions() int {
	_, divisions := d.score.Signature()
	return divisions
}

// BeatUnit returns the duration of one beat, e.g. an eighth in 6/8.
func (d *Drummer) BeatUnit() duration.Token {
	return duration.ForSize(d.Divisions())
}

// SetTimeSignature changes the meter from here on, e.g. "7/8".
func (d *Drummer) SetTimeSignature(sig string) error {
	beats, divisions, err := config.ParseSignature(sig)
	if err != nil {
		return err
	}
	return d.score.SetTimeSignature(beats, divisions)
}

// SetBPM changes the tempo from here on.
func (d *Drummer) SetBPM(bpm float64) error {
	return d.score.SetTempo(bpm)
}

// SetVolume changes the default note velocity.
func (d *Drummer) SetVolume(v int) {
	d.score.SetVolume(v)
}

// Note plays every patch together for duration dur.
func (d *Drummer) Note(dur duration.Token, patches ...score.Patch) error {
	return d.score.Note(dur, patches...)
}

// Rest is silence for duration dur.
func (d *Drummer) Rest(dur duration.Token) error {
	return d.score.Rest(dur)
}

// AccentNote plays a note at velocity and then restores the default
// velocity.
func (d *Drummer) AccentNote(velocity int, dur duration.Token, patches ...score.Patch) error {
	return d.score.Accent(velocity, dur, patches...)
}

// Euclid returns the Euclidean beat-string for onsets over steps.
func (d *Drummer) Euclid(onsets, steps int) string {
	return rhythm.Euclid(onsets, steps)
}

// Sync writes parts that play simultaneously, each starting at the
// current position.
func (d *Drummer) Sync(voices ...func() error) error {
	return d.score.Sync(voices...)
}

// WriteTo encodes the score as a MIDI file.
func (d *Drummer) WriteTo(w io.Writer) (int64, error) {
	data, err := d.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(w, bytes.NewReader(data))
	return n, err
}

// Bytes encodes the score as a MIDI file.
func (d *Drummer) Bytes() ([]byte, error) {
	return score.EncodeMIDI(d.score)
}

// WriteFile writes the MIDI file to path, or to the configured file when
// path is empty.
func (d *Drummer) WriteFile(path string) error {
	if path == "" {
		path = d.settings.File
	}
	w := score.NewMIDIWriter()
	if err := d.score.Flush(w); err != nil {
		return err
	}
	if err := w.WriteFile(path); err != nil {
		return err
	}
	d.log.WithFields(logrus.Fields{"file": path, "events": d.score.Len()}).Info("Wrote MIDI file")
	return nil
}
