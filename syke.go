// Package syke is a procedural step sequencer: it turns a declarative
// Track of rows and note events into sounding audio by scheduling
// per-note synthesis voices slightly ahead of the audio clock. The root
// package holds the track model, the pitch table and the audio
// interfaces; package dsp renders voices, package seq schedules them.
package syke

import (
	"errors"
	"io"
)

// SampleRate is the engine sampling rate. All synthesis, sample playback
// and scheduling arithmetic assumes this rate and audio contexts are
// expected to open their outputs at it, stereo, float32.
const SampleRate = 44100

type (
	// AudioSink is the destination of rendered audio. WriteAudio is allowed
	// to block; the blocking is what paces the render loop to real time.
	AudioSink interface {
		WriteAudio(buffer []float32) error
		Close() error
	}

	// AudioSource produces interleaved stereo float32 audio. ReadAudio
	// returns the number of buffer elements filled and io.EOF once the
	// source is permanently exhausted.
	AudioSource interface {
		ReadAudio(buffer []float32) (int, error)
		Close() error
	}

	// AudioContext represents the platform audio system from which outputs
	// are acquired.
	AudioContext interface {
		Output() AudioSink
		Close() error
	}
)

// Stream pulls audio from source and pushes it to sink until the source
// is exhausted or either side fails. The sink is not closed.
func Stream(source AudioSource, sink AudioSink) error {
	buffer := make([]float32, 2048)
	for {
		n, err := source.ReadAudio(buffer)
		if n > 0 {
			if werr := sink.WriteAudio(buffer[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// BufferSource wraps an already rendered stereo buffer as an AudioSource.
func BufferSource(buffer []float32) AudioSource {
	return &bufferSource{buffer: buffer}
}

type bufferSource struct {
	buffer []float32
	pos    int
}

func (b *bufferSource) ReadAudio(buffer []float32) (int, error) {
	if b.pos >= len(b.buffer) {
		return 0, io.EOF
	}
	n := copy(buffer, b.buffer[b.pos:])
	b.pos += n
	return n, nil
}

func (b *bufferSource) Close() error {
	b.pos = len(b.buffer)
	return nil
}
