package seq_test

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vsariola/syke"
	"github.com/vsariola/syke/seq"
)

// nullSink counts the audio it swallows. The short sleep per write
// paces the render loop roughly like a real device would.
type nullSink struct {
	mu      sync.Mutex
	samples int
	closed  bool
}

func (s *nullSink) WriteAudio(buffer []float32) error {
	s.mu.Lock()
	s.samples += len(buffer)
	s.mu.Unlock()
	time.Sleep(time.Millisecond)
	return nil
}

func (s *nullSink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *nullSink) received() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples
}

type nullContext struct {
	mu     sync.Mutex
	sinks  []*nullSink
	closed bool
}

func (c *nullContext) Output() syke.AudioSink {
	c.mu.Lock()
	defer c.mu.Unlock()
	sink := &nullSink{}
	c.sinks = append(c.sinks, sink)
	return sink
}

func (c *nullContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

type brokenSink struct{}

func (brokenSink) WriteAudio(buffer []float32) error { return errors.New("device lost") }
func (brokenSink) Close() error                      { return nil }

type brokenContext struct{}

func (brokenContext) Output() syke.AudioSink { return brokenSink{} }
func (brokenContext) Close() error           { return nil }

func beepTrack() syke.Track {
	return syke.Track{
		Kind:  syke.TrackComposed,
		BPM:   120,
		Steps: 16,
		Rows:  []syke.Row{{Kind: syke.RowSynthesized}},
		Notes: []syke.NoteEvent{{Row: 0, Step: 0}},
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	for deadline := time.Now().Add(5 * time.Second); time.Now().Before(deadline); {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %v", what)
}

func waitDone(t *testing.T, handle *seq.Handle) {
	t.Helper()
	select {
	case <-handle.Done():
	case <-time.After(10 * time.Second):
		t.Fatalf("playback did not wind down in time")
	}
}

func TestPlayAndStop(t *testing.T) {
	ctx := &nullContext{}
	sequencer := seq.NewSequencer(ctx)
	handle, err := sequencer.Play(beepTrack())
	if err != nil {
		t.Fatalf("cannot play: %v", err)
	}
	if !sequencer.IsPlaying(handle) {
		t.Fatalf("playback should be running")
	}
	waitFor(t, "audio to reach the sink", func() bool { return ctx.sinks[0].received() > 0 })
	if pos := handle.Position(); pos < 0 || pos >= 16 {
		t.Errorf("position = %v, expected a step on the grid", pos)
	}
	sequencer.Stop(handle)
	if sequencer.IsPlaying(handle) {
		t.Fatalf("playback should stop at once")
	}
	waitDone(t, handle)
	ctx.sinks[0].mu.Lock()
	closed := ctx.sinks[0].closed
	ctx.sinks[0].mu.Unlock()
	if !closed {
		t.Errorf("stopping should close the audio output")
	}
	sequencer.Stop(handle) // stopping twice is fine
	sequencer.Stop(nil)    // and so is stopping nothing
}

func TestPlayReplacesCurrentPlayback(t *testing.T) {
	ctx := &nullContext{}
	sequencer := seq.NewSequencer(ctx)
	first, err := sequencer.Play(beepTrack())
	if err != nil {
		t.Fatalf("cannot play: %v", err)
	}
	second, err := sequencer.Play(beepTrack())
	if err != nil {
		t.Fatalf("cannot play again: %v", err)
	}
	if first.IsPlaying() {
		t.Errorf("playing a new track should stop the old playback")
	}
	if !second.IsPlaying() {
		t.Errorf("the new playback should be running")
	}
	second.Stop()
}

func TestPlayRejectsInvalidTracks(t *testing.T) {
	track := beepTrack()
	track.Notes[0].Row = 7
	if _, err := seq.NewSequencer(&nullContext{}).Play(track); err == nil {
		t.Fatalf("expected an error for a note pointing at a missing row")
	}
}

func TestPlayRejectsUndecodableImports(t *testing.T) {
	track := syke.Track{Kind: syke.TrackImported, Audio: []byte("junk")}
	if _, err := seq.NewSequencer(&nullContext{}).Play(track); err == nil {
		t.Fatalf("expected an error for an undecodable asset")
	}
}

func TestImportedTrackStopsByItself(t *testing.T) {
	wav, err := syke.Wav(make([]float32, 2*2205), true) // 50 ms of silence
	if err != nil {
		t.Fatalf("cannot encode wav: %v", err)
	}
	ctx := &nullContext{}
	sequencer := seq.NewSequencer(ctx)
	handle, err := sequencer.Play(syke.Track{Kind: syke.TrackImported, Audio: wav})
	if err != nil {
		t.Fatalf("cannot play: %v", err)
	}
	waitDone(t, handle)
	if handle.IsPlaying() {
		t.Errorf("a played out import should not report playing")
	}
	if got := ctx.sinks[0].received(); got < 2*2205 {
		t.Errorf("the sink received %v samples, expected the whole asset", got)
	}
}

func TestSinkFailureStopsPlayback(t *testing.T) {
	sequencer := seq.NewSequencer(brokenContext{})
	handle, err := sequencer.Play(beepTrack())
	if err != nil {
		t.Fatalf("cannot play: %v", err)
	}
	waitDone(t, handle)
	waitFor(t, "an alert about the output", func() bool {
		alert, ok := seq.TimeoutReceive(handle.Alerts(), 10*time.Millisecond)
		return ok && alert.Priority == seq.Error
	})
}

func TestUnknownPresetAlertsButPlays(t *testing.T) {
	track := beepTrack()
	track.Rows[0].Preset = "UNKNOWN_TAG"
	sequencer := seq.NewSequencer(&nullContext{})
	handle, err := sequencer.Play(track)
	if err != nil {
		t.Fatalf("an unknown preset should not fail the play call: %v", err)
	}
	defer handle.Stop()
	alert, ok := seq.TimeoutReceive(handle.Alerts(), 5*time.Second)
	if !ok {
		t.Fatalf("expected a warning about the preset tag")
	}
	if alert.Priority != seq.Warning || !strings.Contains(alert.Message, "UNKNOWN_TAG") {
		t.Errorf("alert = %+v, expected a warning naming the tag", alert)
	}
	if !handle.IsPlaying() {
		t.Errorf("playback should carry on through per note problems")
	}
}

func TestBadSampleAlertsButPlays(t *testing.T) {
	track := beepTrack()
	track.Rows = append(track.Rows, syke.Row{Kind: syke.RowSampled, Name: "vox", Sample: []byte("junk")})
	track.Notes = append(track.Notes, syke.NoteEvent{Row: 1, Step: 4})
	sequencer := seq.NewSequencer(&nullContext{})
	handle, err := sequencer.Play(track)
	if err != nil {
		t.Fatalf("a broken row asset should not fail the play call: %v", err)
	}
	defer handle.Stop()
	alert, ok := seq.TimeoutReceive(handle.Alerts(), 5*time.Second)
	if !ok {
		t.Fatalf("expected an alert about the broken asset")
	}
	if alert.Priority != seq.Error || !strings.Contains(alert.Message, "vox") {
		t.Errorf("alert = %+v, expected an error naming the row", alert)
	}
	if !handle.IsPlaying() {
		t.Errorf("playback should carry on without the broken row")
	}
}

func TestNilHandle(t *testing.T) {
	var handle *seq.Handle
	handle.Stop()
	if handle.IsPlaying() {
		t.Errorf("a nil handle is not playing")
	}
	if handle.Position() != 0 || handle.Peak() != 0 {
		t.Errorf("a nil handle has no position or peak")
	}
	if handle.Alerts() != nil {
		t.Errorf("a nil handle has no alerts")
	}
	select {
	case <-handle.Done():
	default:
		t.Errorf("a nil handle should already be done")
	}
}

func TestSequencerClose(t *testing.T) {
	ctx := &nullContext{}
	sequencer := seq.NewSequencer(ctx)
	handle, err := sequencer.Play(beepTrack())
	if err != nil {
		t.Fatalf("cannot play: %v", err)
	}
	if err := sequencer.Close(); err != nil {
		t.Fatalf("cannot close: %v", err)
	}
	if handle.IsPlaying() {
		t.Errorf("closing the sequencer should stop the playback")
	}
	if !ctx.closed {
		t.Errorf("closing the sequencer should release the audio context")
	}
	if err := seq.NewSequencer(&nullContext{}).Close(); err != nil {
		t.Fatalf("closing an idle sequencer should be fine, got %v", err)
	}
}
