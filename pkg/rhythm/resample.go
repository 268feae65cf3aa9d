package rhythm

import (
	"fmt"
	"strings"
)

// Upsize stretches pattern to size symbols. Symbol i lands on position
// floor(i*size/len) and the gaps are filled with rests, so the order and
// count of every symbol is preserved and the original timing is kept at
// the finer resolution.
func Upsize(pattern string, size int) (string, error) {
	src := []rune(pattern)
	if len(src) == 0 {
		return "", fmt.Errorf("upsize: empty pattern")
	}
	if size < len(src) {
		return "", fmt.Errorf("upsize: cannot shrink %d symbols to %d", len(src), size)
	}

	out := make([]rune, size)
	for i := range out {
		out[i] = Rest
	}
	for i, r := range src {
		out[i*size/len(src)] = r
	}
	return string(out), nil
}

// PadLeft left-pads pattern with rests up to width symbols. Longer
// patterns are returned unchanged.
func PadLeft(pattern string, width int) string {
	n := len([]rune(pattern))
	if n >= width {
		return pattern
	}
	return strings.Repeat(string(Rest), width-n) + pattern
}

// Tail returns the last n symbols of pattern, or all of it when it is
// shorter than n.
func Tail(pattern string, n int) string {
	r := []rune(pattern)
	if n >= len(r) {
		return pattern
	}
	if n <= 0 {
		return ""
	}
	return string(r[len(r)-n:])
}

// Overwrite replaces the end of pattern with tail. The result has the
// length of pattern; a tail longer than pattern is cut to its last symbols.
func Overwrite(pattern, tail string) string {
	p := []rune(pattern)
	t := []rune(Tail(tail, len(p)))
	copy(p[len(p)-len(t):], t)
	return string(p)
}
