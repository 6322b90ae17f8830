// Package seq schedules composed tracks onto the audio clock: it walks
// the step grid slightly ahead of the mixer, realizes note events as
// voices, and exposes the play/stop surface the editor consumes.
package seq

import "time"

type (
	// Alert is a non-fatal playback diagnostic: a sample that failed
	// to decode, an unknown preset tag, output clipping. Alerts travel
	// over a bounded channel and are dropped when nobody listens, so
	// reporting never blocks the poll loop. Per-note problems are
	// always local; they never halt scheduling.
	Alert struct {
		Message  string
		Priority AlertPriority
	}

	AlertPriority int
)

const (
	Info AlertPriority = iota
	Warning
	Error
)

// TrySend tries to send a value to a channel, but does not block if
// the channel is full; it just drops the value.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive blocks until a value is received from the channel or
// the timeout elapses. ok is false if the timeout occurred or the
// channel was closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
