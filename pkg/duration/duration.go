// Package duration maps symbolic note-length names to exact beat lengths.
//
// A beat is a quarter note. Lengths are kept as big.Rat values so that
// triplets and dotted values add up without drift; they are only rounded
// to ticks at the very end.
package duration

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// TicksPerQuarter is the timeline resolution used for raw durations and
// for the written MIDI file.
const TicksPerQuarter = 96

// Token names a note length, e.g. "quarter", "dotted_eighth" or "d48".
type Token string

// Base note values
const (
	Whole           Token = "whole"
	Half            Token = "half"
	Quarter         Token = "quarter"
	Eighth          Token = "eighth"
	Sixteenth       Token = "sixteenth"
	ThirtySecond    Token = "thirtysecond"
	SixtyFourth     Token = "sixtyfourth"
	OneTwentyEighth Token = "onetwentyeighth"
)

// Modifier prefixes
const (
	TripletPrefix      = "triplet_"
	DottedPrefix       = "dotted_"
	DoubleDottedPrefix = "double_dotted_"
)

// ErrUnknownDuration is matched by every UnknownDurationError.
var ErrUnknownDuration = errors.New("unknown duration")

// UnknownDurationError reports a token that is neither in the table nor a
// raw tick duration.
type UnknownDurationError struct {
	Token Token
}

func (e *UnknownDurationError) Error() string {
	return fmt.Sprintf("unknown duration %q", string(e.Token))
}

// Is makes errors.Is(err, ErrUnknownDuration) work.
func (e *UnknownDurationError) Is(target error) bool {
	return target == ErrUnknownDuration
}

type base struct {
	token Token
	short string
	beats *big.Rat
}

var bases = []base{
	{Whole, "w", big.NewRat(4, 1)},
	{Half, "h", big.NewRat(2, 1)},
	{Quarter, "q", big.NewRat(1, 1)},
	{Eighth, "e", big.NewRat(1, 2)},
	{Sixteenth, "s", big.NewRat(1, 4)},
	{ThirtySecond, "x", big.NewRat(1, 8)},
	{SixtyFourth, "y", big.NewRat(1, 16)},
	{OneTwentyEighth, "z", big.NewRat(1, 32)},
}

var (
	table   = map[Token]*big.Rat{}
	aliases = map[string]Token{}
	ordered []Token
)

func init() {
	type modifier struct {
		prefix string
		short  string
		scale  *big.Rat
	}
	modifiers := []modifier{
		{"", "", big.NewRat(1, 1)},
		{TripletPrefix, "t", big.NewRat(2, 3)},
		{DottedPrefix, "d", big.NewRat(3, 2)},
		{DoubleDottedPrefix, "dd", big.NewRat(7, 4)},
	}
	for _, m := range modifiers {
		for _, b := range bases {
			tok := Token(m.prefix + string(b.token))
			table[tok] = new(big.Rat).Mul(b.beats, m.scale)
			aliases[m.short+b.short+"n"] = tok
			ordered = append(ordered, tok)
		}
	}
}

// Tokens returns every symbolic token, plain values first, then triplet,
// dotted and double-dotted values, each from whole down to 128th.
func Tokens() []Token {
	out := make([]Token, len(ordered))
	copy(out, ordered)
	return out
}

// Raw returns the token for a length given in ticks.
func Raw(ticks int) Token {
	return Token("d" + strconv.Itoa(ticks))
}

// rawTicks reports the tick count of a "d<ticks>" token.
func rawTicks(t Token) (int, bool) {
	s := string(t)
	if len(s) < 2 || s[0] != 'd' {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Parse normalizes user input into a Token. It accepts the canonical names,
// dashes instead of underscores, the short forms (qn, den, ddsn, ten) and
// raw tick durations (d48).
func Parse(s string) (Token, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, " ", "_")
	if _, ok := table[Token(name)]; ok {
		return Token(name), nil
	}
	if tok, ok := aliases[name]; ok {
		return tok, nil
	}
	if _, ok := rawTicks(Token(name)); ok {
		return Token(name), nil
	}
	return "", &UnknownDurationError{Token: Token(s)}
}

// BeatLength returns the length of t in quarter-note beats.
func BeatLength(t Token) (*big.Rat, error) {
	if r, ok := table[t]; ok {
		return new(big.Rat).Set(r), nil
	}
	if n, ok := rawTicks(t); ok {
		return big.NewRat(int64(n), TicksPerQuarter), nil
	}
	return nil, &UnknownDurationError{Token: t}
}

// MustBeatLength is BeatLength for tokens known to be valid.
func MustBeatLength(t Token) *big.Rat {
	r, err := BeatLength(t)
	if err != nil {
		panic(err)
	}
	return r
}

// Ticks returns the length of t in ticks, rounded to the nearest tick.
func Ticks(t Token) (int, error) {
	r, err := BeatLength(t)
	if err != nil {
		return 0, err
	}
	return RoundTicks(r), nil
}

// TicksFor returns the tick difference between a and b, rounded half away
// from zero. Flams use it to shorten the main stroke by the grace note.
func TicksFor(a, b Token) (int, error) {
	ra, err := BeatLength(a)
	if err != nil {
		return 0, err
	}
	rb, err := BeatLength(b)
	if err != nil {
		return 0, err
	}
	return RoundTicks(new(big.Rat).Sub(ra, rb)), nil
}

// RoundTicks converts a beat count into ticks, rounding half away from zero.
func RoundTicks(beats *big.Rat) int {
	ticks := new(big.Rat).Mul(beats, big.NewRat(TicksPerQuarter, 1))
	if ticks.IsInt() {
		return int(ticks.Num().Int64())
	}
	f, _ := ticks.Float64()
	return int(math.Round(f))
}

// FromBeats finds the symbolic token whose length is exactly beats.
func FromBeats(beats *big.Rat) (Token, bool) {
	for _, tok := range ordered {
		if table[tok].Cmp(beats) == 0 {
			return tok, true
		}
	}
	return "", false
}

// ForSize picks the step duration for a bar of steps symbols, i.e. 4/steps
// beats. Symbolic tokens win; otherwise a raw tick token is used when the
// length is a whole number of ticks, and a quarter note as a last resort.
func ForSize(steps int) Token {
	if steps <= 0 {
		return Quarter
	}
	beats := big.NewRat(4, int64(steps))
	if tok, ok := FromBeats(beats); ok {
		return tok
	}
	ticks := new(big.Rat).Mul(beats, big.NewRat(TicksPerQuarter, 1))
	if ticks.IsInt() && ticks.Sign() > 0 {
		return Raw(int(ticks.Num().Int64()))
	}
	return Quarter
}

// IsRaw reports whether t is a raw tick duration.
func IsRaw(t Token) bool {
	_, ok := rawTicks(t)
	return ok
}
