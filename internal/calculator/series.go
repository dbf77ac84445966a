package calculator

import "math"

// Epsilon guards every indicator division against a zero denominator.
const Epsilon = 1e-9

// Series is an indicator output aligned 1:1 with its input. The first Warmup
// positions have insufficient history and hold no value.
type Series struct {
	values []float64
	warmup int
}

func newSeries(n, warmup int) Series {
	if warmup > n {
		warmup = n
	}
	if warmup < 0 {
		warmup = 0
	}
	v := make([]float64, n)
	for i := 0; i < warmup; i++ {
		v[i] = math.NaN()
	}
	return Series{values: v, warmup: warmup}
}

// Len returns the number of positions, defined or not.
func (s Series) Len() int { return len(s.values) }

// Warmup returns the number of leading undefined positions.
func (s Series) Warmup() int { return s.warmup }

// At returns the value at position i and whether it is defined.
func (s Series) At(i int) (float64, bool) {
	if i < s.warmup || i >= len(s.values) {
		return 0, false
	}
	return s.values[i], true
}

// Last returns the most recent value and whether it is defined.
func (s Series) Last() (float64, bool) {
	return s.At(len(s.values) - 1)
}

// Values returns a copy of the raw values; undefined positions are NaN.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Sub returns a - b position-wise. A position is defined only where both inputs are.
func Sub(a, b Series) Series {
	n := len(a.values)
	if len(b.values) < n {
		n = len(b.values)
	}
	out := newSeries(n, max(a.warmup, b.warmup))
	for i := out.warmup; i < n; i++ {
		out.values[i] = a.values[i] - b.values[i]
	}
	return out
}
