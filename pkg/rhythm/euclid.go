// Package rhythm holds the string algorithms behind beat-strings: Euclidean
// distribution, enumeration of every variation of a bar, negation and
// resampling between bar resolutions.
package rhythm

import (
	"fmt"
	"strings"
)

// Onset and Rest are the default beat-string symbols.
const (
	Onset = '1'
	Rest  = '0'
)

// MaxSteps is the longest Euclidean rhythm CheckEuclid accepts.
const MaxSteps = 1024

// CheckEuclid reports whether onsets over steps is a playable Euclidean
// rhythm: 0 <= onsets <= steps and 0 < steps <= MaxSteps.
func CheckEuclid(onsets, steps int) error {
	if steps <= 0 || steps > MaxSteps {
		return fmt.Errorf("euclid steps must be 1-%d, got %d", MaxSteps, steps)
	}
	if onsets < 0 || onsets > steps {
		return fmt.Errorf("euclid onsets must be 0-%d, got %d", steps, onsets)
	}
	return nil
}

// Euclid distributes onsets as evenly as possible over steps positions
// using Bjorklund's algorithm. The result starts on an onset whenever there
// is at least one. Euclid(3, 8) is the tresillo "10010010".
func Euclid(onsets, steps int) string {
	if steps <= 0 {
		return ""
	}
	if onsets <= 0 {
		return strings.Repeat(string(Rest), steps)
	}
	if onsets >= steps {
		return strings.Repeat(string(Onset), steps)
	}

	// Each group is a partial pattern; the remainder groups get folded
	// onto the leading ones until at most one remainder is left.
	front := make([]string, onsets)
	for i := range front {
		front[i] = string(Onset)
	}
	back := make([]string, steps-onsets)
	for i := range back {
		back[i] = string(Rest)
	}

	for len(back) > 1 {
		n := min(len(front), len(back))
		merged := make([]string, n)
		for i := 0; i < n; i++ {
			merged[i] = front[i] + back[i]
		}
		var rest []string
		if len(front) > n {
			rest = front[n:]
		} else {
			rest = back[n:]
		}
		front, back = merged, rest
	}

	return strings.Join(front, "") + strings.Join(back, "")
}

// Rotate shifts pattern left by n symbols, wrapping around. Negative n
// shifts right.
func Rotate(pattern string, n int) string {
	r := []rune(pattern)
	if len(r) == 0 {
		return pattern
	}
	n %= len(r)
	if n < 0 {
		n += len(r)
	}
	return string(r[n:]) + string(r[:n])
}

// Negate swaps onsets and rests. Other symbols are left alone.
func Negate(pattern string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case Onset:
			return Rest
		case Rest:
			return Onset
		}
		return r
	}, pattern)
}

// IsSilent reports whether pattern is non-empty and made only of rests.
func IsSilent(pattern string) bool {
	return pattern != "" && strings.Trim(pattern, string(Rest)) == ""
}

// Onsets counts the onset symbols in pattern.
func Onsets(pattern string) int {
	return strings.Count(pattern, string(Onset))
}
