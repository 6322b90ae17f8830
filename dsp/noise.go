package dsp

import "sync/atomic"

var noiseSeed uint32 = 1

// noise is a cheap linear congruential white noise source. Each
// instance draws a distinct seed so simultaneous voices and the two
// reverb impulse channels stay decorrelated.
type noise struct {
	seed uint32
}

func newNoise() noise {
	return noise{seed: atomic.AddUint32(&noiseSeed, 2654435761) | 1}
}

func (n *noise) next() float32 {
	n.seed *= 16007
	return float32(int32(n.seed)) / -2147483648.0 // int32 range to [-1,1)
}
