// Package portaudio adapts the portaudio library to the syke audio
// interfaces, as an alternative to the oto backend.
package portaudio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/vsariola/syke"
)

const (
	framesPerBuffer = 1024
	ringSamples     = 8192
)

type (
	Context struct{}

	// output feeds a ring buffer into the portaudio callback. The
	// callback drains the ring at device speed and zero-fills on
	// underrun; WriteAudio blocks while the ring is full, pacing the
	// render loop.
	output struct {
		stream *portaudio.Stream
		mu     sync.Mutex
		cond   *sync.Cond
		ring   []float32
		head   int
		size   int
		closed bool
		err    error
	}
)

// NewContext initializes the portaudio host API.
func NewContext() (*Context, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("cannot initialize portaudio: %w", err)
	}
	return &Context{}, nil
}

func (c *Context) Close() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("cannot terminate portaudio: %w", err)
	}
	return nil
}

// Output opens the default stereo output stream. A device failure here
// is reported on the first WriteAudio, which the render loop surfaces
// as an alert.
func (c *Context) Output() syke.AudioSink {
	o := &output{ring: make([]float32, ringSamples)}
	o.cond = sync.NewCond(&o.mu)
	stream, err := portaudio.OpenDefaultStream(0, 2, float64(syke.SampleRate), framesPerBuffer, o.fill)
	if err == nil {
		err = stream.Start()
	}
	if err != nil {
		o.err = fmt.Errorf("cannot open portaudio stream: %w", err)
		return o
	}
	o.stream = stream
	return o
}

// fill runs on the portaudio callback thread.
func (o *output) fill(out []float32) {
	o.mu.Lock()
	for i := range out {
		if o.size == 0 {
			out[i] = 0
			continue
		}
		out[i] = o.ring[o.head]
		o.head = (o.head + 1) % len(o.ring)
		o.size--
	}
	o.mu.Unlock()
	o.cond.Signal()
}

func (o *output) WriteAudio(buffer []float32) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	for _, v := range buffer {
		for o.size == len(o.ring) {
			if o.closed {
				return errors.New("portaudio output closed")
			}
			o.cond.Wait()
		}
		o.ring[(o.head+o.size)%len(o.ring)] = v
		o.size++
	}
	return nil
}

func (o *output) Close() error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.cond.Broadcast()
	if o.stream == nil {
		return nil
	}
	if err := o.stream.Close(); err != nil {
		return fmt.Errorf("cannot close portaudio stream: %w", err)
	}
	return nil
}
