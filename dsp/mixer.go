package dsp

import (
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/viterin/vek/vek32"
)

// voiceAt is a voice waiting for (or already past) its start position
// on the mixer's frame clock.
type voiceAt struct {
	start int64
	voice Voice
}

// Mixer renders scheduled voices into an interleaved stereo stream and
// implements syke.AudioSource. The frame counter it advances while
// rendering is the audio clock the lookahead scheduler reads, so voice
// starts are sample-accurate no matter how coarsely the scheduler
// polls.
type Mixer struct {
	rate int

	mu     sync.Mutex
	voices []voiceAt
	closed bool

	frame atomic.Int64
	peak  atomic.Uint32

	delay  *delaySend
	reverb *reverbSend
	buses  Buses
}

func NewMixer(rate int) *Mixer {
	return &Mixer{rate: rate}
}

// EnableSends builds the shared effect buses before rendering starts.
func (m *Mixer) EnableSends(delay, reverb bool) error {
	if delay {
		m.delay = newDelaySend(m.rate)
	}
	if reverb {
		r, err := newReverbSend(m.rate)
		if err != nil {
			return err
		}
		m.reverb = r
	}
	return nil
}

// Add schedules a voice to begin at an absolute frame. A start already
// in the past begins immediately on the next rendered block.
func (m *Mixer) Add(start int64, v Voice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.voices = append(m.voices, voiceAt{start: start, voice: v})
}

// Now returns the mixer clock: the frame index of the next sample to
// be rendered.
func (m *Mixer) Now() int64 { return m.frame.Load() }

// Time returns the mixer clock in seconds.
func (m *Mixer) Time() float64 {
	return float64(m.frame.Load()) / float64(m.rate)
}

// Peak returns the largest absolute sample value of the most recently
// rendered block.
func (m *Mixer) Peak() float32 {
	return math.Float32frombits(m.peak.Load())
}

// ActiveVoices returns how many voices are scheduled or sounding.
func (m *Mixer) ActiveVoices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// ReadAudio renders the next block of the stream into buf. After Close
// it returns io.EOF.
func (m *Mixer) ReadAudio(buf []float32) (int, error) {
	frames := len(buf) / 2
	n := 2 * frames
	out := buf[:n]

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, io.EOF
	}
	if frames == 0 {
		return 0, nil
	}
	start := m.frame.Load()
	end := start + int64(frames)

	vek32.Zeros_Into(out, n)
	m.buses.Dry = out
	if m.delay != nil {
		m.buses.DelaySend = resize(m.buses.DelaySend, n)
		vek32.Zeros_Into(m.buses.DelaySend, n)
	}
	if m.reverb != nil {
		m.buses.ReverbSend = resize(m.buses.ReverbSend, n)
		vek32.Zeros_Into(m.buses.ReverbSend, n)
	}

	live := m.voices[:0]
	for _, va := range m.voices {
		if va.start >= end {
			live = append(live, va)
			continue
		}
		off := 0
		if va.start > start {
			off = int(va.start-start) * 2
		}
		sub := Buses{Dry: m.buses.Dry[off:]}
		if m.delay != nil {
			sub.DelaySend = m.buses.DelaySend[off:]
		}
		if m.reverb != nil {
			sub.ReverbSend = m.buses.ReverbSend[off:]
		}
		if va.voice.Render(sub) {
			live = append(live, va)
		}
	}
	for i := len(live); i < len(m.voices); i++ {
		m.voices[i] = voiceAt{}
	}
	m.voices = live

	if m.delay != nil {
		m.delay.Process(m.buses.DelaySend, out)
	}
	if m.reverb != nil {
		m.reverb.Process(m.buses.ReverbSend, out)
	}

	peak := vek32.Max(out)
	if lo := -vek32.Min(out); lo > peak {
		peak = lo
	}
	m.peak.Store(math.Float32bits(peak))
	m.frame.Store(end)
	return n, nil
}

// Close drops all voices and makes further reads return io.EOF. Safe
// to call more than once.
func (m *Mixer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.voices = nil
	return nil
}
