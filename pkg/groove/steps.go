package groove

import (
	"errors"
	"fmt"
	"strings"

	"github.com/james-see/drumscript/pkg/drummer"
	"github.com/james-see/drumscript/pkg/duration"
	"github.com/james-see/drumscript/pkg/envelope"
	"github.com/james-see/drumscript/pkg/kit"
	"github.com/james-see/drumscript/pkg/rhythm"
	"github.com/james-see/drumscript/pkg/score"
)

// Step is one instruction of a groove. Exactly one field is set.
type Step struct {
	Pattern       *PatternStep       `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Euclid        *EuclidStep        `yaml:"euclid,omitempty" json:"euclid,omitempty"`
	Combinatorial *CombinatorialStep `yaml:"combinatorial,omitempty" json:"combinatorial,omitempty"`
	Fill          *FillStep          `yaml:"fill,omitempty" json:"fill,omitempty"`
	Sync          *SyncStep          `yaml:"sync,omitempty" json:"sync,omitempty"`
	Note          *NoteStep          `yaml:"note,omitempty" json:"note,omitempty"`
	Rest          *RestStep          `yaml:"rest,omitempty" json:"rest,omitempty"`
	Flam          *FlamStep          `yaml:"flam,omitempty" json:"flam,omitempty"`
	Roll          *RollStep          `yaml:"roll,omitempty" json:"roll,omitempty"`
	Crescendo     *CrescendoStep     `yaml:"crescendo,omitempty" json:"crescendo,omitempty"`
	CountIn       *int               `yaml:"count_in,omitempty" json:"count_in,omitempty"`
	Metronome     *int               `yaml:"metronome,omitempty" json:"metronome,omitempty"`
	Steady        *SteadyStep        `yaml:"steady,omitempty" json:"steady,omitempty"`
	Signature     string             `yaml:"signature,omitempty" json:"signature,omitempty"`
	Tempo         float64            `yaml:"tempo,omitempty" json:"tempo,omitempty"`
}

// PatternStep plays beat-strings.
type PatternStep struct {
	Patterns    []string `yaml:"patterns" json:"patterns"`
	Duration    string   `yaml:"duration,omitempty" json:"duration,omitempty"`
	Instruments []string `yaml:"instruments,omitempty" json:"instruments,omitempty"`
	Repeat      int      `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	Negate      bool     `yaml:"negate,omitempty" json:"negate,omitempty"`
	SkipSilent  bool     `yaml:"skip_silent,omitempty" json:"skip_silent,omitempty"`
}

// EuclidStep plays a Euclidean rhythm.
type EuclidStep struct {
	Onsets      int      `yaml:"onsets" json:"onsets"`
	Steps       int      `yaml:"steps" json:"steps"`
	Rotate      int      `yaml:"rotate,omitempty" json:"rotate,omitempty"`
	Duration    string   `yaml:"duration,omitempty" json:"duration,omitempty"`
	Instruments []string `yaml:"instruments,omitempty" json:"instruments,omitempty"`
	Repeat      int      `yaml:"repeat,omitempty" json:"repeat,omitempty"`
}

// CombinatorialStep plays every onset/rest variation of a given length.
type CombinatorialStep struct {
	Duration     string   `yaml:"duration" json:"duration"`
	Beats        int      `yaml:"beats,omitempty" json:"beats,omitempty"`
	Repeat       int      `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	Negate       bool     `yaml:"negate,omitempty" json:"negate,omitempty"`
	Patterns     []string `yaml:"patterns,omitempty" json:"patterns,omitempty"`
	Instruments  []string `yaml:"instruments,omitempty" json:"instruments,omitempty"`
	TallySymbols bool     `yaml:"tally_symbols,omitempty" json:"tally_symbols,omitempty"`
}

// FillStep splices a fill onto a phrase. Without a fill the default snare
// fill is used.
type FillStep struct {
	Phrases  map[string][]string `yaml:"phrases" json:"phrases"`
	Duration int                 `yaml:"duration,omitempty" json:"duration,omitempty"`
	Fill     map[string]string   `yaml:"fill,omitempty" json:"fill,omitempty"`
}

// SyncStep plays one beat-string voice per instrument at the same time.
type SyncStep struct {
	Duration string              `yaml:"duration,omitempty" json:"duration,omitempty"`
	Voices   map[string][]string `yaml:"voices" json:"voices"`
}

// NoteStep plays instruments together.
type NoteStep struct {
	Duration    string   `yaml:"duration,omitempty" json:"duration,omitempty"`
	Instruments []string `yaml:"instruments" json:"instruments"`
	Velocity    int      `yaml:"velocity,omitempty" json:"velocity,omitempty"`
}

// RestStep is silence.
type RestStep struct {
	Duration string `yaml:"duration,omitempty" json:"duration,omitempty"`
}

// FlamStep plays a grace note before the main stroke.
type FlamStep struct {
	Duration   string `yaml:"duration,omitempty" json:"duration,omitempty"`
	Grace      string `yaml:"grace,omitempty" json:"grace,omitempty"`
	Instrument string `yaml:"instrument,omitempty" json:"instrument,omitempty"`
	Accent     int    `yaml:"accent,omitempty" json:"accent,omitempty"`
}

// RollStep plays thirty-second strokes.
type RollStep struct {
	Duration   string `yaml:"duration,omitempty" json:"duration,omitempty"`
	Instrument string `yaml:"instrument,omitempty" json:"instrument,omitempty"`
}

// CrescendoStep is a roll whose velocity follows an envelope.
type CrescendoStep struct {
	Duration   string        `yaml:"duration,omitempty" json:"duration,omitempty"`
	Instrument string        `yaml:"instrument,omitempty" json:"instrument,omitempty"`
	Envelope   envelope.Span `yaml:"envelope" json:"envelope"`
}

// SteadyStep repeats one instrument for as long as everything written so
// far.
type SteadyStep struct {
	Instrument string `yaml:"instrument,omitempty" json:"instrument,omitempty"`
	Duration   string `yaml:"duration,omitempty" json:"duration,omitempty"`
}

// Kind names the instruction a step holds.
func (s Step) Kind() (string, error) {
	var kinds []string
	add := func(set bool, name string) {
		if set {
			kinds = append(kinds, name)
		}
	}
	add(s.Pattern != nil, "pattern")
	add(s.Euclid != nil, "euclid")
	add(s.Combinatorial != nil, "combinatorial")
	add(s.Fill != nil, "fill")
	add(s.Sync != nil, "sync")
	add(s.Note != nil, "note")
	add(s.Rest != nil, "rest")
	add(s.Flam != nil, "flam")
	add(s.Roll != nil, "roll")
	add(s.Crescendo != nil, "crescendo")
	add(s.CountIn != nil, "count_in")
	add(s.Metronome != nil, "metronome")
	add(s.Steady != nil, "steady")
	add(s.Signature != "", "signature")
	add(s.Tempo != 0, "tempo")

	switch len(kinds) {
	case 0:
		return "", errors.New("empty step")
	case 1:
		return kinds[0], nil
	default:
		return "", fmt.Errorf("step sets more than one of %s", strings.Join(kinds, ", "))
	}
}

func (s Step) play(d *drummer.Drummer) error {
	switch {
	case s.Pattern != nil:
		return s.Pattern.play(d)
	case s.Euclid != nil:
		return s.Euclid.play(d)
	case s.Combinatorial != nil:
		return s.Combinatorial.play(d)
	case s.Fill != nil:
		return s.Fill.play(d)
	case s.Sync != nil:
		return s.Sync.play(d)
	case s.Note != nil:
		return s.Note.play(d)
	case s.Rest != nil:
		dur, err := parseDuration(s.Rest.Duration, d.BeatUnit())
		if err != nil {
			return err
		}
		return d.Rest(dur)
	case s.Flam != nil:
		return s.Flam.play(d)
	case s.Roll != nil:
		return s.Roll.play(d)
	case s.Crescendo != nil:
		return s.Crescendo.play(d)
	case s.CountIn != nil:
		return d.CountIn(*s.CountIn)
	case s.Metronome != nil:
		return d.Metronome(*s.Metronome)
	case s.Steady != nil:
		return s.Steady.play(d)
	case s.Signature != "":
		return d.SetTimeSignature(s.Signature)
	case s.Tempo != 0:
		return d.SetBPM(s.Tempo)
	}
	return errors.New("empty step")
}

func (p *PatternStep) play(d *drummer.Drummer) error {
	dur, err := parseDuration(p.Duration, "")
	if err != nil {
		return err
	}
	instruments, err := instrumentList(p.Instruments)
	if err != nil {
		return err
	}
	return d.Pattern(drummer.PatternOptions{
		Patterns:    p.Patterns,
		Duration:    dur,
		Instruments: instruments,
		Repeat:      p.Repeat,
		Negate:      p.Negate,
		SkipSilent:  p.SkipSilent,
	})
}

func (e *EuclidStep) play(d *drummer.Drummer) error {
	if err := rhythm.CheckEuclid(e.Onsets, e.Steps); err != nil {
		return err
	}
	dur, err := parseDuration(e.Duration, "")
	if err != nil {
		return err
	}
	instruments, err := instrumentList(e.Instruments)
	if err != nil {
		return err
	}
	pattern := rhythm.Rotate(d.Euclid(e.Onsets, e.Steps), e.Rotate)
	return d.Pattern(drummer.PatternOptions{
		Patterns:    []string{pattern},
		Duration:    dur,
		Instruments: instruments,
		Repeat:      e.Repeat,
	})
}

func (c *CombinatorialStep) play(d *drummer.Drummer) error {
	dur, err := parseDuration(c.Duration, d.BeatUnit())
	if err != nil {
		return err
	}
	instruments, err := instrumentList(c.Instruments)
	if err != nil {
		return err
	}
	return d.Combinatorial(dur, drummer.CombinatorialOptions{
		Beats:        c.Beats,
		Repeat:       c.Repeat,
		Negate:       c.Negate,
		Patterns:     c.Patterns,
		Instruments:  instruments,
		TallySymbols: c.TallySymbols,
	})
}

func (f *FillStep) play(d *drummer.Drummer) error {
	phrases, err := instrumentMap(f.Phrases)
	if err != nil {
		return err
	}
	var fill drummer.FillFunc
	if len(f.Fill) > 0 {
		patterns, err := instrumentMap(f.Fill)
		if err != nil {
			return err
		}
		fill = func(*drummer.Drummer) drummer.Fill {
			return drummer.Fill{Duration: f.Duration, Patterns: patterns}
		}
	}
	_, err = d.AddFill(fill, phrases)
	return err
}

func (s *SyncStep) play(d *drummer.Drummer) error {
	voices, err := instrumentMap(s.Voices)
	if err != nil {
		return err
	}
	// without a duration the longest first pattern spans a whole note
	dur := d.BeatUnit()
	if s.Duration == "" {
		size := 0
		for _, patterns := range voices {
			if len(patterns) > 0 {
				size = max(size, len([]rune(patterns[0])))
			}
		}
		if size > 0 {
			dur = duration.ForSize(size)
		}
	} else if dur, err = duration.Parse(s.Duration); err != nil {
		return err
	}
	return d.SyncPatterns(dur, voices)
}

func (n *NoteStep) play(d *drummer.Drummer) error {
	dur, err := parseDuration(n.Duration, d.BeatUnit())
	if err != nil {
		return err
	}
	instruments, err := instrumentList(n.Instruments)
	if err != nil {
		return err
	}
	if len(instruments) == 0 {
		return score.ErrNoInstrument
	}
	if n.Velocity > 0 {
		return d.AccentNote(n.Velocity, dur, instruments...)
	}
	return d.Note(dur, instruments...)
}

func (f *FlamStep) play(d *drummer.Drummer) error {
	dur, err := parseDuration(f.Duration, d.BeatUnit())
	if err != nil {
		return err
	}
	grace, err := instrument(f.Grace)
	if err != nil {
		return err
	}
	patch, err := instrument(f.Instrument)
	if err != nil {
		return err
	}
	return d.Flam(dur, grace, patch, f.Accent)
}

func (r *RollStep) play(d *drummer.Drummer) error {
	dur, err := parseDuration(r.Duration, d.BeatUnit())
	if err != nil {
		return err
	}
	patch, err := instrument(r.Instrument)
	if err != nil {
		return err
	}
	return d.Roll(dur, patch)
}

func (c *CrescendoStep) play(d *drummer.Drummer) error {
	dur, err := parseDuration(c.Duration, d.BeatUnit())
	if err != nil {
		return err
	}
	patch, err := instrument(c.Instrument)
	if err != nil {
		return err
	}
	return d.CrescendoRoll(c.Envelope, dur, patch)
}

func (s *SteadyStep) play(d *drummer.Drummer) error {
	dur, err := parseDuration(s.Duration, d.BeatUnit())
	if err != nil {
		return err
	}
	patch, err := instrument(s.Instrument)
	if err != nil {
		return err
	}
	return d.Steady(patch, dur)
}

// parseDuration returns def for an empty name.
func parseDuration(name string, def duration.Token) (duration.Token, error) {
	if name == "" {
		return def, nil
	}
	return duration.Parse(name)
}

// instrument returns 0 for an empty name so the drummer picks its default.
func instrument(name string) (score.Patch, error) {
	if name == "" {
		return 0, nil
	}
	return kit.Lookup(name)
}

func instrumentList(names []string) ([]score.Patch, error) {
	out := make([]score.Patch, 0, len(names))
	for _, name := range names {
		p, err := kit.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func instrumentMap[V any](m map[string]V) (map[score.Patch]V, error) {
	out := make(map[score.Patch]V, len(m))
	for name, v := range m {
		p, err := kit.Lookup(name)
		if err != nil {
			return nil, err
		}
		if _, dup := out[p]; dup {
			return nil, fmt.Errorf("instrument %q is given twice", name)
		}
		out[p] = v
	}
	return out, nil
}
