package drummer

import (
	"fmt"
	"math"
	"math/big"

	"github.com/james-see/drumscript/pkg/duration"
	"github.com/james-see/drumscript/pkg/envelope"
	"github.com/james-see/drumscript/pkg/kit"
	"github.com/james-see/drumscript/pkg/score"
)

// Rolls and flams are built from thirty-second strokes.
const stroke = duration.ThirtySecond

// Flam plays a grace note on grace followed by the main stroke on patch,
// together lasting dur. A zero grace or patch means the snare; a zero
// accent plays the grace note at half the default velocity.
func (d *Drummer) Flam(dur duration.Token, grace, patch score.Patch, accent int) error {
	if grace == 0 {
		grace = kit.Snare
	}
	if patch == 0 {
		patch = kit.Snare
	}
	if accent == 0 {
		accent = int(math.Round(float64(d.score.Velocity()) / 2))
	}

	main, err := duration.TicksFor(dur, stroke)
	if err != nil {
		return err
	}
	if main <= 0 {
		return fmt.Errorf("flam: %s leaves no room after a %s grace note", dur, stroke)
	}

	if err := d.AccentNote(accent, stroke, grace); err != nil {
		return err
	}
	return d.Note(duration.Raw(main), patch)
}

// strokes returns how many thirty-seconds fit in dur.
func strokes(dur duration.Token) (int, error) {
	length, err := duration.BeatLength(dur)
	if err != nil {
		return 0, err
	}
	n := new(big.Rat).Quo(length, duration.MustBeatLength(stroke))
	f, _ := n.Float64()
	return int(math.Round(f)), nil
}

// Roll fills dur with thirty-second strokes on patch.
func (d *Drummer) Roll(dur duration.Token, patch score.Patch) error {
	if patch == 0 {
		patch = kit.Snare
	}
	n, err := strokes(dur)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := d.Note(stroke, patch); err != nil {
			return err
		}
	}
	return nil
}

// CrescendoRoll is a roll whose velocities follow span.
func (d *Drummer) CrescendoRoll(span envelope.Span, dur duration.Token, patch score.Patch) error {
	if patch == 0 {
		patch = kit.Snare
	}
	n, err := strokes(dur)
	if err != nil {
		return err
	}
	velocities, err := span.Samples(n)
	if err != nil {
		return err
	}
	for _, v := range velocities {
		if err := d.AccentNote(v, stroke, patch); err != nil {
			return err
		}
	}
	return nil
}

// CountIn plays the closed hi-hat on every beat for bars bars, or the
// configured number of bars when bars is zero.
func (d *Drummer) CountIn(bars int) error {
	if bars <= 0 {
		bars = d.settings.Bars
	}
	unit := d.BeatUnit()
	for bar := 0; bar < bars; bar++ {
		for beat := 0; beat < d.Beats(); beat++ {
			if err := d.Note(unit, kit.ClosedHH); err != nil {
				return err
			}
		}
	}
	return nil
}

// Metronome plays a basic beat in the current time signature: kick on the
// downbeat, snare on the backbeat and the hi-hat on every beat.
func (d *Drummer) Metronome(bars int) error {
	if bars <= 0 {
		bars = d.settings.Bars
	}
	unit := d.BeatUnit()
	beats := d.Beats()
	for bar := 0; bar < bars; bar++ {
		for beat := 0; beat < beats; beat++ {
			patches := []score.Patch{kit.ClosedHH}
			switch {
			case beat == 0:
				patches = append(patches, kit.Kick)
			case beats > 1 && beat == beats/2:
				patches = append(patches, kit.Snare)
			}
			if err := d.Note(unit, patches...); err != nil {
				return err
			}
		}
	}
	return nil
}

// Steady plays patch every dur for as many beats as the beat counter holds,
// so it matches the length of what was written before it.
func (d *Drummer) Steady(patch score.Patch, dur duration.Token) error {
	if patch == 0 {
		patch = kit.ClosedHH
	}
	if dur == "" {
		dur = duration.Quarter
	}
	length, err := duration.BeatLength(dur)
	if err != nil {
		return err
	}
	if length.Sign() == 0 {
		return fmt.Errorf("steady: zero-length duration %s", dur)
	}

	q := new(big.Rat).Quo(d.score.Counter(), length)
	n := new(big.Int).Quo(q.Num(), q.Denom()).Int64()
	for i := int64(0); i < n; i++ {
		if err := d.Note(dur, patch); err != nil {
			return err
		}
	}
	return nil
}
