package dsp

import (
	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"
)

// ReverbImpulse renders a stereo noise burst shaped by the decay curve
// (1 - i/n)^decay, usable as a convolution reverb kernel. The two
// channels use independent noise and each call yields a fresh impulse.
func ReverbImpulse(seconds, decay float64, rate int) (left, right []float32) {
	n := int(seconds * float64(rate))
	if n < 1 {
		n = 1
	}
	env := make([]float32, n)
	for i := range env {
		env[i] = math32.Pow(1-float32(i)/float32(n), float32(decay))
	}
	left = noiseBuffer(n)
	right = noiseBuffer(n)
	vek32.Mul_Inplace(left, env)
	vek32.Mul_Inplace(right, env)
	return left, right
}

func noiseBuffer(n int) []float32 {
	g := newNoise()
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = g.next()
	}
	return buf
}
