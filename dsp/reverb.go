package dsp

import (
	"fmt"
	"math"

	"github.com/ktye/fft"
	"github.com/viterin/vek/vek32"
)

// Convolution reverb send: a fresh 2 second impulse with decay exponent
// 2, mixed back at 0.5. The kernel is normalized to unit energy so the
// wet level does not depend on the impulse length.
const (
	reverbSeconds = 2.0
	reverbDecay   = 2.0
	reverbWet     = 0.5

	convBlock = 1024
)

// convolver convolves a mono stream with a fixed kernel, block by
// block: the kernel is cut into convBlock sized partitions whose
// spectra are multiplied against a ring of past input spectra and
// overlap-added back. Output lags input by up to one block.
type convolver struct {
	fft        fft.FFT
	block      int
	partitions [][]complex128
	history    [][]complex128
	head       int
	acc        []complex128
	overlap    []float32
	fifoIn     []float32
	fifoOut    []float32
}

func newConvolver(kernel []float32, block int) (*convolver, error) {
	f, err := fft.New(2 * block)
	if err != nil {
		return nil, fmt.Errorf("convolver: %w", err)
	}
	nparts := (len(kernel) + block - 1) / block
	if nparts < 1 {
		nparts = 1
	}
	c := &convolver{
		fft:     f,
		block:   block,
		acc:     make([]complex128, 2*block),
		overlap: make([]float32, block),
	}
	for p := 0; p < nparts; p++ {
		spec := make([]complex128, 2*block)
		for i := 0; i < block; i++ {
			if k := p*block + i; k < len(kernel) {
				spec[i] = complex(float64(kernel[k]), 0)
			}
		}
		c.partitions = append(c.partitions, c.fft.Transform(spec))
		c.history = append(c.history, make([]complex128, 2*block))
	}
	return c, nil
}

// process consumes len(x) samples and writes the same number of output
// samples to y, zero-padding until the first block is through.
func (c *convolver) process(x, y []float32) {
	c.fifoIn = append(c.fifoIn, x...)
	for len(c.fifoIn) >= c.block {
		c.runBlock(c.fifoIn[:c.block])
		n := copy(c.fifoIn, c.fifoIn[c.block:])
		c.fifoIn = c.fifoIn[:n]
	}
	n := copy(y, c.fifoOut)
	for i := n; i < len(y); i++ {
		y[i] = 0
	}
	m := copy(c.fifoOut, c.fifoOut[n:])
	c.fifoOut = c.fifoOut[:m]
}

func (c *convolver) runBlock(x []float32) {
	n := c.block
	spec := c.history[c.head]
	for i := range spec {
		spec[i] = 0
	}
	for i := 0; i < n; i++ {
		spec[i] = complex(float64(x[i]), 0)
	}
	c.history[c.head] = c.fft.Transform(spec)
	for i := range c.acc {
		c.acc[i] = 0
	}
	// partition p pairs with the input block from p blocks ago
	for p := range c.partitions {
		h := c.history[(c.head-p+len(c.history))%len(c.history)]
		part := c.partitions[p]
		for i := range c.acc {
			c.acc[i] += h[i] * part[i]
		}
	}
	c.head = (c.head + 1) % len(c.history)
	c.acc = c.fft.Inverse(c.acc)
	for i := 0; i < n; i++ {
		c.fifoOut = append(c.fifoOut, float32(real(c.acc[i]))+c.overlap[i])
		c.overlap[i] = float32(real(c.acc[n+i]))
	}
}

// reverbSend runs one convolver per channel over the send bus and adds
// the wet tail into out.
type reverbSend struct {
	left, right *convolver
	inL, inR    []float32
	outL, outR  []float32
}

func newReverbSend(rate int) (*reverbSend, error) {
	l, r := ReverbImpulse(reverbSeconds, reverbDecay, rate)
	norm := float32(math.Sqrt((float64(vek32.Dot(l, l)) + float64(vek32.Dot(r, r))) / 2))
	if norm > 0 {
		vek32.MulNumber_Inplace(l, 1/norm)
		vek32.MulNumber_Inplace(r, 1/norm)
	}
	left, err := newConvolver(l, convBlock)
	if err != nil {
		return nil, err
	}
	right, err := newConvolver(r, convBlock)
	if err != nil {
		return nil, err
	}
	return &reverbSend{left: left, right: right}, nil
}

func (r *reverbSend) Process(in, out []float32) {
	frames := len(in) / 2
	r.inL = resize(r.inL, frames)
	r.inR = resize(r.inR, frames)
	r.outL = resize(r.outL, frames)
	r.outR = resize(r.outR, frames)
	for i := 0; i < frames; i++ {
		r.inL[i] = in[2*i]
		r.inR[i] = in[2*i+1]
	}
	r.left.process(r.inL, r.outL)
	r.right.process(r.inR, r.outR)
	for i := 0; i < frames; i++ {
		out[2*i] += r.outL[i] * reverbWet
		out[2*i+1] += r.outR[i] * reverbWet
	}
}
