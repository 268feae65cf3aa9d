package drummer

import (
	"github.com/sirupsen/logrus"

	"github.com/james-see/drumscript/pkg/duration"
	"github.com/james-see/drumscript/pkg/kit"
	"github.com/james-see/drumscript/pkg/rhythm"
	"github.com/james-see/drumscript/pkg/score"
)

// CombinatorialOptions configures Combinatorial.
type CombinatorialOptions struct {
	// Beats is the length of each generated pattern; the beats per bar
	// when zero
	Beats int

	Repeat int
	Negate bool

	// Patterns restricts the run to these patterns instead of every
	// variation
	Patterns []string

	// Instruments for the default variations; a snare when empty
	Instruments []score.Patch

	// Vary overrides the default variations; its symbols are the alphabet
	Vary Variations

	// TallySymbols also adds dur to the beat counter once per symbol, on
	// top of whatever the variation itself wrote
	TallySymbols bool
}

// Combinatorial plays every pattern of opts.Beats symbols over the
// variation table's alphabet, in lexicographic order, each symbol lasting
// dur.
func (d *Drummer) Combinatorial(dur duration.Token, opts CombinatorialOptions) error {
	if _, err := duration.BeatLength(dur); err != nil {
		return err
	}
	if opts.Beats <= 0 {
		opts.Beats = d.Beats()
	}
	if opts.Repeat <= 0 {
		opts.Repeat = 1
	}
	if len(opts.Instruments) == 0 {
		opts.Instruments = []score.Patch{kit.Snare}
	}
	if opts.Vary == nil {
		opts.Vary = d.DefaultVariations()
	}

	items := opts.Patterns
	if len(items) == 0 {
		var err error
		if items, err = rhythm.Variations(opts.Vary.Alphabet(), opts.Beats); err != nil {
			return err
		}
	}
	patterns := prepare(items, opts.Negate)
	if err := checkVariations(patterns, opts.Vary); err != nil {
		return err
	}

	var after func() error
	if opts.TallySymbols {
		after = func() error { return d.score.Count(dur) }
	}

	d.log.WithFields(logrus.Fields{
		"patterns": len(patterns),
		"beats":    opts.Beats,
		"duration": dur,
	}).Debug("Combinatorial")

	for _, p := range patterns {
		for i := 0; i < opts.Repeat; i++ {
			if err := d.dispatch(p, opts.Vary, dur, opts.Instruments, after); err != nil {
				return err
			}
		}
	}
	return nil
}
