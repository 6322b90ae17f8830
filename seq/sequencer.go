package seq

import (
	"sync"
	"time"

	"github.com/vsariola/syke"
)

type (
	// Sequencer is the public play/stop surface consumed by the
	// editor. It owns the audio output context for its lifetime and
	// hands out one Handle per Play; playing a new track silences the
	// previous one first.
	Sequencer struct {
		ctx     syke.AudioContext
		mu      sync.Mutex
		current *Handle
	}

	// Handle refers to one playback started by Play. All methods are
	// safe on a nil handle and after the playback has already wound
	// down, so UI code can call them without bookkeeping.
	Handle struct {
		player *player
	}
)

func NewSequencer(ctx syke.AudioContext) *Sequencer {
	return &Sequencer{ctx: ctx}
}

// Play starts playing a track and returns a handle to the playback.
// Only resource failures surface here: an undecodable imported asset
// or an invalid track. Per-note problems during playback arrive as
// Alerts on the handle and never halt the scheduling loop.
func (s *Sequencer) Play(track syke.Track) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Stop()
	p, err := newPlayer(s.ctx, track)
	if err != nil {
		return nil, err
	}
	s.current = &Handle{player: p}
	return s.current, nil
}

// Stop stops the playback a handle refers to. Idempotent; a nil
// handle, a double stop and a stop after natural completion are all
// no-ops.
func (s *Sequencer) Stop(h *Handle) { h.Stop() }

// IsPlaying reports whether the handle's playback is still running.
func (s *Sequencer) IsPlaying(h *Handle) bool { return h.IsPlaying() }

// Close performs the emergency stop: it silences the current playback
// and releases the audio output context. It waits briefly for the
// playback to wind down first, so the device is not suspended under a
// sink that is still draining.
func (s *Sequencer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Stop()
		TimeoutReceive(s.current.Done(), 3*time.Second)
		s.current = nil
	}
	return s.ctx.Close()
}

func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.player.stop()
}

func (h *Handle) IsPlaying() bool {
	if h == nil {
		return false
	}
	return h.player.playing()
}

// Position returns the step the scheduler will commit next, for the
// UI's playback cursor.
func (h *Handle) Position() int {
	if h == nil {
		return 0
	}
	return int(h.player.step.Load())
}

// Peak returns the loudest absolute sample of the latest rendered
// block, for metering.
func (h *Handle) Peak() float32 {
	if h == nil {
		return 0
	}
	return h.player.mixer.Peak()
}

// Alerts delivers playback diagnostics. The channel is never closed;
// it simply goes quiet once playback stops.
func (h *Handle) Alerts() <-chan Alert {
	if h == nil {
		return nil
	}
	return h.player.alerts
}

// Done is closed once the playback has fully wound down and the audio
// output is released.
func (h *Handle) Done() <-chan struct{} {
	if h == nil {
		return closedChan
	}
	return h.player.done
}

var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()
