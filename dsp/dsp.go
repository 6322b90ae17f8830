// Package dsp implements the synthesis side of syke: oscillators,
// filters, envelopes, the delay and convolution reverb sends, and the
// Mixer that renders scheduled voices into an interleaved stereo
// stream.
package dsp

import "math"

func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

func resize(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}

// sweep ramps a value geometrically towards target, one step per
// sample. Endpoints are floored to keep the ratio well-defined, so
// "to zero" sweeps actually land on a small positive value; pitches,
// cutoffs and gains all move on a log scale anyway.
type sweep struct {
	value, target, coef float32
	rising              bool
}

func newSweep(from, to float32, seconds float64, rate int) sweep {
	const floor = 1e-4
	if from < floor {
		from = floor
	}
	if to < floor {
		to = floor
	}
	n := seconds * float64(rate)
	if n < 1 {
		n = 1
	}
	coef := float32(math.Pow(float64(to/from), 1/n))
	return sweep{value: from, target: to, coef: coef, rising: to > from}
}

func (s *sweep) next() float32 {
	v := s.value
	s.value *= s.coef
	if s.rising {
		if s.value > s.target {
			s.value = s.target
		}
	} else if s.value < s.target {
		s.value = s.target
	}
	return v
}
