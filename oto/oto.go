// Package oto adapts the oto library to the syke audio interfaces.
package oto

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/vsariola/syke"
)

type (
	// Context wraps the process-wide oto context. The library allows
	// only one context per process, so NewContext hands out resumes of
	// a shared instance and Close suspends it instead of destroying
	// it.
	Context struct{}

	output struct {
		player *oto.Player
		pw     *io.PipeWriter
		buf    []byte
	}
)

// played frames buffered by the device side before WriteAudio blocks
const otoBufferFrames = 2048

var (
	sharedOnce sync.Once
	sharedCtx  *oto.Context
	sharedErr  error
)

// NewContext acquires the audio output device at the engine rate,
// stereo, float32 samples.
func NewContext() (*Context, error) {
	sharedOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   syke.SampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   otoBufferFrames * time.Second / syke.SampleRate,
		})
		if err != nil {
			sharedErr = fmt.Errorf("cannot create oto context: %w", err)
			return
		}
		<-ready
		sharedCtx = ctx
	})
	if sharedErr != nil {
		return nil, sharedErr
	}
	if err := sharedCtx.Resume(); err != nil {
		return nil, fmt.Errorf("cannot resume oto context: %w", err)
	}
	return &Context{}, nil
}

// Output opens a new player on the shared context. The sink paces its
// caller: WriteAudio blocks while the device buffer is full.
func (c *Context) Output() syke.AudioSink {
	pr, pw := io.Pipe()
	player := sharedCtx.NewPlayer(pr)
	player.Play()
	return &output{player: player, pw: pw}
}

// Close suspends the shared context; a later NewContext resumes it.
func (c *Context) Close() error {
	if err := sharedCtx.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (o *output) WriteAudio(buffer []float32) error {
	// reuse the old capacity of buf by setting its length to zero
	o.buf = floatBufferToLE(buffer, o.buf[:0])
	if _, err := o.pw.Write(o.buf); err != nil {
		return fmt.Errorf("cannot write to player: %w", err)
	}
	return nil
}

func (o *output) Close() error {
	o.pw.Close()
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}
