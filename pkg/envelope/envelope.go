// Package envelope computes velocity curves for crescendo and decrescendo
// rolls.
package envelope

import (
	"errors"
	"fmt"
	"math"

	"github.com/fogleman/ease"
)

// Curve selects how samples move from the start to the end velocity.
type Curve string

const (
	CurveLinear    Curve = "linear"
	CurveBezier    Curve = "bezier"
	CurveEaseIn    Curve = "ease-in"
	CurveEaseInOut Curve = "ease-in-out"
)

// ErrDegenerateEnvelope is matched by every DegenerateEnvelopeError.
var ErrDegenerateEnvelope = errors.New("degenerate envelope")

// DegenerateEnvelopeError is returned when fewer than one sample is asked
// for.
type DegenerateEnvelopeError struct {
	Steps int
}

func (e *DegenerateEnvelopeError) Error() string {
	return fmt.Sprintf("envelope needs at least 1 step, got %d", e.Steps)
}

// Is makes errors.Is(err, ErrDegenerateEnvelope) work.
func (e *DegenerateEnvelopeError) Is(target error) bool {
	return target == ErrDegenerateEnvelope
}

// Span describes a velocity ramp.
type Span struct {
	Start int   `yaml:"start" json:"start"`
	End   int   `yaml:"end" json:"end"`
	Curve Curve `yaml:"curve,omitempty" json:"curve,omitempty"`
}

// Samples returns steps velocities following the span's curve. An empty
// curve is linear.
func (s Span) Samples(steps int) ([]int, error) {
	switch s.Curve {
	case "", CurveLinear:
		return Linear(s.Start, s.End, steps)
	case CurveBezier:
		return Bezier(s.Start, s.End, steps)
	case CurveEaseIn:
		return Eased(s.Start, s.End, steps, ease.InQuart)
	case CurveEaseInOut:
		return Eased(s.Start, s.End, steps, ease.InOutQuart)
	default:
		return nil, fmt.Errorf("unknown envelope curve %q", s.Curve)
	}
}

// short handles envelopes of fewer than two samples, which have no slope.
func short(start, steps int) ([]int, bool, error) {
	if steps < 1 {
		return nil, true, &DegenerateEnvelopeError{Steps: steps}
	}
	if steps == 1 {
		return []int{start}, true, nil
	}
	return nil, false, nil
}

// Linear steps from start towards end by a rounded constant increment. The
// final sample is pinned to end so rounding never leaves it short.
func Linear(start, end, steps int) ([]int, error) {
	if out, done, err := short(start, steps); done {
		return out, err
	}

	inc := int(math.Round(float64(end-start) / float64(steps-1)))
	out := make([]int, steps)
	for i := range out {
		out[i] = start + i*inc
	}
	out[steps-1] = end
	return out, nil
}

// Bezier samples a quadratic Bezier curve through (1,start), (steps,start)
// and (steps,end) at evenly spaced parameter values, so the ramp starts
// slowly and accelerates into the end velocity.
func Bezier(start, end, steps int) ([]int, error) {
	if out, done, err := short(start, steps); done {
		return out, err
	}

	p0, p1, p2 := float64(start), float64(start), float64(end)
	out := make([]int, steps)
	for i := range out {
		t := float64(i) / float64(steps-1)
		u := 1 - t
		y := u*u*p0 + 2*u*t*p1 + t*t*p2
		out[i] = int(math.Round(y))
	}
	return out, nil
}

// Eased maps evenly spaced positions through an easing function such as
// ease.InQuart.
func Eased(start, end, steps int, fn func(float64) float64) ([]int, error) {
	if out, done, err := short(start, steps); done {
		return out, err
	}

	out := make([]int, steps)
	span := float64(end - start)
	for i := range out {
		t := float64(i) / float64(steps-1)
		out[i] = start + int(math.Round(span*fn(t)))
	}
	out[steps-1] = end
	return out, nil
}
