package dsp

import "github.com/chewxy/math32"

// Waveform selects the oscillator shape of a synthesized row. The zero
// value is square, so rows that configure nothing render the default
// square tone.
type Waveform uint8

const (
	WaveSquare Waveform = iota
	WaveSine
	WaveTriangle
	WaveSaw
)

// ParseWaveform maps a row's waveform tag to a Waveform. Unknown or
// empty tags fall back to square.
func ParseWaveform(tag string) Waveform {
	switch tag {
	case "sine":
		return WaveSine
	case "triangle":
		return WaveTriangle
	case "sawtooth", "saw":
		return WaveSaw
	default:
		return WaveSquare
	}
}

// oscillator generates one waveform cycle per 1.0 of phase. A non-nil
// pitch sweep reevaluates the phase step every sample.
type oscillator struct {
	wave  Waveform
	phase float32
	step  float32
	pitch *sweep
	rate  int
}

func newOscillator(wave Waveform, freq float64, rate int) oscillator {
	return oscillator{wave: wave, step: float32(freq / float64(rate)), rate: rate}
}

func newSweptOscillator(wave Waveform, from, to float32, seconds float64, rate int) oscillator {
	s := newSweep(from, to, seconds, rate)
	return oscillator{wave: wave, pitch: &s, rate: rate}
}

func (o *oscillator) next() float32 {
	if o.pitch != nil {
		o.step = o.pitch.next() / float32(o.rate)
	}
	o.phase += o.step
	o.phase -= float32(int(o.phase))
	switch o.wave {
	case WaveSine:
		return math32.Sin(o.phase * 2 * math32.Pi)
	case WaveTriangle:
		return trisaw(o.phase, 0.5)
	case WaveSaw:
		return trisaw(o.phase, 1)
	default:
		if o.phase < 0.5 {
			return 1
		}
		return -1
	}
}

// trisaw morphs between triangle and saw: color is the fraction of the
// cycle spent rising.
func trisaw(phase, color float32) float32 {
	if phase >= color {
		phase = 1 - phase
		color = 1 - color
	}
	return phase/color*2 - 1
}
