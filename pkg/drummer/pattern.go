package drummer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/james-see/drumscript/pkg/duration"
	"github.com/james-see/drumscript/pkg/kit"
	"github.com/james-see/drumscript/pkg/rhythm"
	"github.com/james-see/drumscript/pkg/score"
)

// ErrMissingVariation is matched by every MissingVariationError.
var ErrMissingVariation = errors.New("missing variation")

// MissingVariationError reports a beat-string symbol with no entry in the
// variation table.
type MissingVariationError struct {
	Symbol  rune
	Pattern string
}

func (e *MissingVariationError) Error() string {
	return fmt.Sprintf("no variation for symbol %q in pattern %q", e.Symbol, e.Pattern)
}

// Is makes errors.Is(err, ErrMissingVariation) work.
func (e *MissingVariationError) Is(target error) bool {
	return target == ErrMissingVariation
}

// Step is what a variation is called with for each symbol.
type Step struct {
	Symbol      rune
	Index       int
	Pattern     string
	Duration    duration.Token
	Instruments []score.Patch
}

// Variation emits whatever a symbol stands for.
type Variation func(step Step) error

// Variations maps beat-string symbols to what they play.
type Variations map[rune]Variation

// Alphabet returns the symbols of the table in order.
func (v Variations) Alphabet() []rune {
	out := make([]rune, 0, len(v))
	for r := range v {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// DefaultVariations plays a rest for '0' and a note for '1'.
func (d *Drummer) DefaultVariations() Variations {
	return Variations{
		rhythm.Rest: func(step Step) error {
			return d.Rest(step.Duration)
		},
		rhythm.Onset: func(step Step) error {
			return d.Note(step.Duration, step.Instruments...)
		},
	}
}

// PatternOptions configures Pattern.
type PatternOptions struct {
	// Patterns are played in order, each Repeat times
	Patterns []string

	// Duration of each symbol; derived from the first pattern's length
	// when empty
	Duration duration.Token

	// Instruments for the default variations; a snare when empty
	Instruments []score.Patch

	Repeat int
	Negate bool

	// SkipSilent drops patterns made only of rests instead of playing
	// their rests
	SkipSilent bool

	// Vary overrides the default variations
	Vary Variations
}

// Pattern plays beat-strings symbol by symbol through the variation table.
// All patterns are checked against the table before anything is written.
func (d *Drummer) Pattern(opts PatternOptions) error {
	if len(opts.Patterns) == 0 {
		return nil
	}
	if opts.Duration == "" {
		opts.Duration = duration.ForSize(len([]rune(opts.Patterns[0])))
	}
	if _, err := duration.BeatLength(opts.Duration); err != nil {
		return err
	}
	if len(opts.Instruments) == 0 {
		opts.Instruments = []score.Patch{kit.Snare}
	}
	if opts.Repeat <= 0 {
		opts.Repeat = 1
	}
	if opts.Vary == nil {
		opts.Vary = d.DefaultVariations()
	}

	patterns := prepare(opts.Patterns, opts.Negate)
	if err := checkVariations(patterns, opts.Vary); err != nil {
		return err
	}

	d.log.WithFields(logrus.Fields{
		"patterns": patterns,
		"duration": opts.Duration,
		"repeat":   opts.Repeat,
	}).Debug("Pattern")

	for _, p := range patterns {
		if opts.SkipSilent && rhythm.IsSilent(p) {
			continue
		}
		for i := 0; i < opts.Repeat; i++ {
			if err := d.dispatch(p, opts.Vary, opts.Duration, opts.Instruments, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// prepare copies patterns, negating them if asked.
func prepare(patterns []string, negate bool) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		if negate {
			p = rhythm.Negate(p)
		}
		out[i] = p
	}
	return out
}

func checkVariations(patterns []string, vary Variations) error {
	for _, p := range patterns {
		for _, r := range p {
			if _, ok := vary[r]; !ok {
				return &MissingVariationError{Symbol: r, Pattern: p}
			}
		}
	}
	return nil
}

// dispatch calls the variation of every symbol of pattern, then after (if
// any) once per symbol.
func (d *Drummer) dispatch(pattern string, vary Variations, dur duration.Token, instruments []score.Patch, after func() error) error {
	for i, r := range []rune(pattern) {
		fn, ok := vary[r]
		if !ok {
			return &MissingVariationError{Symbol: r, Pattern: pattern}
		}
		err := fn(Step{
			Symbol:      r,
			Index:       i,
			Pattern:     pattern,
			Duration:    dur,
			Instruments: instruments,
		})
		if err != nil {
			return fmt.Errorf("symbol %d of %q: %w", i, pattern, err)
		}
		if after != nil {
			if err := after(); err != nil {
				return err
			}
		}
	}
	return nil
}
