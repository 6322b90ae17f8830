package dsp

import "github.com/chewxy/math32"

type filterMode uint8

const (
	filterLow filterMode = iota
	filterBand
	filterHigh
)

// svf is a state variable filter with low, band and high taps. A
// non-nil cutoff sweep reevaluates the coefficient every sample.
type svf struct {
	mode      filterMode
	f, damp   float32
	low, band float32
	cut       *sweep
	rate      int
}

func newFilter(mode filterMode, cutoff float64, rate int) svf {
	return svf{mode: mode, f: cutoffCoef(cutoff, rate), damp: 1, rate: rate}
}

func newSweptFilter(mode filterMode, from, to float64, seconds float64, rate int) svf {
	s := newSweep(float32(from), float32(to), seconds, rate)
	return svf{mode: mode, damp: 1, cut: &s, rate: rate}
}

// cutoffCoef maps a cutoff in Hz to the integrator coefficient
// 2*sin(pi*fc/fs). The integrator is only stable up to roughly fs/6,
// so higher cutoffs clamp there.
func cutoffCoef(cutoff float64, rate int) float32 {
	f := 2 * math32.Sin(math32.Pi*float32(cutoff)/float32(rate))
	return clamp(f, 0, 1)
}

func (v *svf) next(in float32) float32 {
	if v.cut != nil {
		v.f = cutoffCoef(float64(v.cut.next()), v.rate)
	}
	v.low += v.f * v.band
	high := in - v.low - v.damp*v.band
	v.band += v.f * high
	switch v.mode {
	case filterHigh:
		return high
	case filterBand:
		return v.band
	default:
		return v.low
	}
}
