package syke

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	wav "github.com/youpy/go-wav"
)

type (
	// Sample is a decoded audio asset: interleaved stereo float32 frames
	// at the rate the asset was recorded at. Mono assets are widened to
	// stereo on decode.
	Sample struct {
		Data []float32
		Rate int
	}
)

// DecodeSample decodes the wave asset bytes of a sampled row or an
// imported track. PCM wave files are supported; anything that does not
// decode is reported as an error for the caller to log and skip, it
// never aborts playback.
func DecodeSample(data []byte) (*Sample, error) {
	reader := wav.NewReader(bytes.NewReader(data))
	format, err := reader.Format()
	if err != nil {
		return nil, fmt.Errorf("decoding sample format: %v", err)
	}
	if format.NumChannels < 1 || format.SampleRate == 0 {
		return nil, errors.New("decoding sample: no channels or zero sample rate")
	}
	var buf []float32
	for {
		samples, err := reader.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding samples: %v", err)
		}
		for _, s := range samples {
			left := float32(reader.FloatValue(s, 0))
			right := left
			if format.NumChannels > 1 {
				right = float32(reader.FloatValue(s, 1))
			}
			buf = append(buf, left, right)
		}
	}
	if len(buf) == 0 {
		return nil, errors.New("decoding sample: no audio frames")
	}
	return &Sample{Data: buf, Rate: int(format.SampleRate)}, nil
}

// Frames returns the number of stereo frames in the sample.
func (s *Sample) Frames() int { return len(s.Data) / 2 }

// Duration returns the sample length in seconds at its source rate.
func (s *Sample) Duration() float64 {
	if s.Rate == 0 {
		return 0
	}
	return float64(s.Frames()) / float64(s.Rate)
}

// At reads the frame at a fractional position, linearly interpolating
// between neighboring frames. Positions outside the sample are silent.
func (s *Sample) At(pos float64) (left, right float32) {
	i := int(pos)
	if i < 0 || i >= s.Frames() {
		return 0, 0
	}
	j := i + 1
	if j >= s.Frames() {
		j = i
	}
	frac := float32(pos - float64(i))
	left = s.Data[2*i] + (s.Data[2*j]-s.Data[2*i])*frac
	right = s.Data[2*i+1] + (s.Data[2*j+1]-s.Data[2*i+1])*frac
	return left, right
}

// Region converts trim fractions into a frame range within the sample.
func (s *Sample) Region(start, end float64) (from, to int) {
	frames := s.Frames()
	from = int(start * float64(frames))
	to = int(end * float64(frames))
	if from < 0 {
		from = 0
	}
	if to > frames {
		to = frames
	}
	if to < from {
		to = from
	}
	return from, to
}
