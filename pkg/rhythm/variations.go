package rhythm

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/constraints"
)

// MaxVariations is the most strings Variations will generate.
const MaxVariations = 1 << 16

// ErrTooManyVariations is returned when len(alphabet)^size exceeds
// MaxVariations.
var ErrTooManyVariations = errors.New("too many variations")

// Variations returns every string of length size over alphabet (variations
// with repetition), sorted lexicographically. Duplicate symbols in the
// alphabet are ignored. A size of zero yields no variations. Requests for
// more than MaxVariations strings fail before anything is generated.
func Variations(alphabet []rune, size int) ([]string, error) {
	symbols := slices.Clone(alphabet)
	slices.Sort(symbols)
	symbols = slices.Compact(symbols)
	if size <= 0 || len(symbols) == 0 {
		return nil, nil
	}

	total := 1
	for i := 0; i < size; i++ {
		if total > MaxVariations/len(symbols) {
			return nil, fmt.Errorf("%w: %d symbols over %d positions exceeds %d",
				ErrTooManyVariations, len(symbols), size, MaxVariations)
		}
		total *= len(symbols)
	}

	out := make([]string, 0, total)
	idx := make([]int, size)
	var b strings.Builder
	for {
		b.Reset()
		for _, i := range idx {
			b.WriteRune(symbols[i])
		}
		out = append(out, b.String())

		// odometer increment, rightmost position fastest
		pos := size - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(symbols) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}

	// Symbols were sorted, so the odometer order is already lexicographic
	// for single-byte symbols; sort anyway for multi-byte runes.
	slices.Sort(out)
	return out, nil
}

// GCD returns the greatest common divisor of a and b.
func GCD[T constraints.Integer](a, b T) T {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns the least common multiple of all values. Zero or negative
// values are rejected since they have no meaningful bar length.
func LCM[T constraints.Integer](values ...T) (T, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("lcm of no values")
	}
	var l T = 1
	for _, v := range values {
		if v <= 0 {
			return 0, fmt.Errorf("lcm: non-positive value %d", v)
		}
		l = l / GCD(l, v) * v
	}
	return l, nil
}
