package drummer

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/james-see/drumscript/pkg/duration"
	"github.com/james-see/drumscript/pkg/kit"
	"github.com/james-see/drumscript/pkg/rhythm"
	"github.com/james-see/drumscript/pkg/score"
)

// DefaultFillDuration is the fill resolution when none is given: eighth
// notes.
const DefaultFillDuration = 8

// MaxFillSize is the longest common bar, in symbols, a fill can be spliced
// onto.
const MaxFillSize = 4096

// ErrInvalidFill is matched by every InvalidFillError.
var ErrInvalidFill = errors.New("invalid fill")

// InvalidFillError reports a fill that cannot be spliced into the phrase.
type InvalidFillError struct {
	Instrument score.Patch
	Reason     string
}

func (e *InvalidFillError) Error() string {
	if e.Instrument == 0 {
		return "invalid fill: " + e.Reason
	}
	return fmt.Sprintf("invalid fill for %s: %s", kit.Name(e.Instrument), e.Reason)
}

// Is makes errors.Is(err, ErrInvalidFill) work.
func (e *InvalidFillError) Is(target error) bool {
	return target == ErrInvalidFill
}

// Fill is the end of a phrase written at its own resolution: Duration
// symbols per whole bar, e.g. 8 for eighth notes.
type Fill struct {
	Duration int
	Patterns map[score.Patch]string
}

// FillFunc builds the fill for a drummer.
type FillFunc func(d *Drummer) Fill

// DefaultFill is three snare eighths at the end of the bar.
func DefaultFill(_ *Drummer) Fill {
	return Fill{
		Duration: DefaultFillDuration,
		Patterns: map[score.Patch]string{
			kit.OpenHH: "000",
			kit.Snare:  "111",
			kit.Kick:   "000",
		},
	}
}

// AddFill splices a fill onto the end of a phrase and plays the result.
//
// Every instrument's phrase and the fill are resampled to the least common
// multiple of their resolutions. The tail of each resampled phrase is then
// overwritten with the tail of the resampled fill and all instruments are
// played together. The spliced beat-strings are returned.
func (d *Drummer) AddFill(fill FillFunc, phrases map[score.Patch][]string) (map[score.Patch]string, error) {
	if fill == nil {
		fill = DefaultFill
	}
	f := fill(d)
	if f.Duration <= 0 {
		f.Duration = DefaultFillDuration
	}
	if len(f.Patterns) == 0 {
		return nil, &InvalidFillError{Reason: "fill has no patterns"}
	}
	if len(phrases) == 0 {
		return nil, &InvalidFillError{Reason: "no phrase to fill"}
	}

	fillPatches := sortedPatches(f.Patterns)
	fillLen := 0
	for i, p := range fillPatches {
		n := len([]rune(f.Patterns[p]))
		if n == 0 {
			return nil, &InvalidFillError{Instrument: p, Reason: "empty fill pattern"}
		}
		if i > 0 && n != fillLen {
			return nil, &InvalidFillError{Instrument: p, Reason: fmt.Sprintf("fill length %d differs from %d", n, fillLen)}
		}
		fillLen = n
	}

	base := make(map[score.Patch]string, len(phrases))
	sizes := []int{f.Duration}
	for _, p := range sortedPatches(phrases) {
		joined := strings.Join(phrases[p], "")
		if joined == "" {
			return nil, &InvalidFillError{Instrument: p, Reason: "empty phrase"}
		}
		base[p] = joined
		sizes = append(sizes, len([]rune(joined)))
	}
	for _, p := range fillPatches {
		if _, ok := base[p]; !ok {
			return nil, &InvalidFillError{Instrument: p, Reason: "instrument has no phrase"}
		}
	}

	size := 1
	for _, n := range sizes {
		l, err := rhythm.LCM(size, n)
		if err != nil {
			return nil, &InvalidFillError{Reason: err.Error()}
		}
		if l > MaxFillSize {
			return nil, &InvalidFillError{Reason: fmt.Sprintf("common bar length exceeds %d symbols", MaxFillSize)}
		}
		size = l
	}
	dur := duration.ForSize(size)

	chop := fillLen
	if f.Duration != size {
		chop = size/fillLen + 1
	}
	chop = min(chop, size)

	out := make(map[score.Patch]string, len(base))
	for p, phrase := range base {
		fresh, err := rhythm.Upsize(phrase, size)
		if err != nil {
			return nil, &InvalidFillError{Instrument: p, Reason: err.Error()}
		}
		if fp, ok := f.Patterns[p]; ok {
			upsized, err := rhythm.Upsize(rhythm.PadLeft(fp, f.Duration), size)
			if err != nil {
				return nil, &InvalidFillError{Instrument: p, Reason: err.Error()}
			}
			fresh = rhythm.Overwrite(fresh, rhythm.Tail(upsized, chop))
		}
		out[p] = fresh
	}

	d.log.WithFields(logrus.Fields{
		"size":     size,
		"duration": dur,
		"chop":     chop,
	}).Debug("AddFill")

	voices := make(map[score.Patch][]string, len(out))
	for p, s := range out {
		voices[p] = []string{s}
	}
	if err := d.SyncPatterns(dur, voices); err != nil {
		return nil, err
	}
	return out, nil
}

// SyncPatterns plays one beat-string voice per instrument, all starting
// together, in ascending instrument order.
func (d *Drummer) SyncPatterns(dur duration.Token, patterns map[score.Patch][]string) error {
	voices := make([]func() error, 0, len(patterns))
	for _, p := range sortedPatches(patterns) {
		voices = append(voices, func() error {
			return d.Pattern(PatternOptions{
				Patterns:    patterns[p],
				Duration:    dur,
				Instruments: []score.Patch{p},
			})
		})
	}
	return d.Sync(voices...)
}

func sortedPatches[V any](m map[score.Patch]V) []score.Patch {
	out := make([]score.Patch, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
