package groove

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/james-see/drumscript/pkg/config"
	"github.com/james-see/drumscript/pkg/duration"
	"github.com/james-see/drumscript/pkg/rhythm"
)

// Bounds on what a single groove may ask for.
const (
	// MaxRepeat caps the repeat of pattern, euclid and combinatorial steps.
	MaxRepeat = 64

	// MaxBars caps count_in and metronome.
	MaxBars = config.MaxBars

	// MaxCombinatorialBeats caps the pattern length of a combinatorial
	// step; 2^16 variations matches rhythm.MaxVariations.
	MaxCombinatorialBeats = 16

	// MaxStepBeats caps the length of any duration a step names, raw
	// d<ticks> included.
	MaxStepBeats = 64

	// MaxEvents caps the notes and rests a rendered groove may hold.
	MaxEvents = 1 << 18
)

var maxStepLength = big.NewRat(MaxStepBeats, 1)

// ErrLimit is wrapped by every bound violation Validate reports.
var ErrLimit = errors.New("groove exceeds limit")

func limitError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrLimit, fmt.Sprintf(format, args...))
}

func checkRepeat(repeat int) error {
	if repeat > MaxRepeat {
		return limitError("repeat %d is over %d", repeat, MaxRepeat)
	}
	return nil
}

func checkBars(bars int) error {
	if bars > MaxBars {
		return limitError("%d bars is over %d", bars, MaxBars)
	}
	return nil
}

// checkDuration parses a step's duration name, if any, and bounds its
// length.
func checkDuration(name string) error {
	if name == "" {
		return nil
	}
	tok, err := duration.Parse(name)
	if err != nil {
		return err
	}
	length, err := duration.BeatLength(tok)
	if err != nil {
		return err
	}
	if length.Cmp(maxStepLength) > 0 {
		return limitError("duration %s is longer than %d beats", name, MaxStepBeats)
	}
	return nil
}

// checkLimits bounds the work a step can cause.
func (s Step) checkLimits() error {
	switch {
	case s.Pattern != nil:
		return errors.Join(checkDuration(s.Pattern.Duration), checkRepeat(s.Pattern.Repeat))
	case s.Euclid != nil:
		return errors.Join(
			rhythm.CheckEuclid(s.Euclid.Onsets, s.Euclid.Steps),
			checkDuration(s.Euclid.Duration),
			checkRepeat(s.Euclid.Repeat),
		)
	case s.Combinatorial != nil:
		var err error
		if s.Combinatorial.Beats > MaxCombinatorialBeats {
			err = limitError("combinatorial beats %d is over %d", s.Combinatorial.Beats, MaxCombinatorialBeats)
		}
		return errors.Join(err, checkDuration(s.Combinatorial.Duration), checkRepeat(s.Combinatorial.Repeat))
	case s.Sync != nil:
		return checkDuration(s.Sync.Duration)
	case s.Note != nil:
		return checkDuration(s.Note.Duration)
	case s.Rest != nil:
		return checkDuration(s.Rest.Duration)
	case s.Flam != nil:
		return checkDuration(s.Flam.Duration)
	case s.Roll != nil:
		return checkDuration(s.Roll.Duration)
	case s.Crescendo != nil:
		return checkDuration(s.Crescendo.Duration)
	case s.Steady != nil:
		return checkDuration(s.Steady.Duration)
	case s.CountIn != nil:
		return checkBars(*s.CountIn)
	case s.Metronome != nil:
		return checkBars(*s.Metronome)
	}
	return nil
}
