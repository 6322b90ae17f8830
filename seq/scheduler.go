package seq

import (
	"time"

	"github.com/vsariola/syke"
)

// Lookahead constants. Every poll pass commits all steps whose start
// falls within horizonSeconds of the audio clock. The horizon must
// exceed the poll interval plus its worst-case jitter, so that a late
// pass still books every voice ahead of its sounding time: the coarse
// timer only decides when to look, the mixer clock decides when to
// sound.
const (
	horizonSeconds = 0.1
	pollInterval   = 25 * time.Millisecond
)

// scheduler walks a composed track's step grid ahead of the audio
// clock. Not safe for concurrent use; the player drives it from a
// single goroutine.
type scheduler struct {
	track    *syke.Track
	events   map[int][]syke.NoteEvent
	step     int
	nextTime float64
	stepDur  float64
}

func newScheduler(track *syke.Track, now float64) *scheduler {
	events := make(map[int][]syke.NoteEvent)
	for _, ev := range track.Notes {
		events[ev.Step] = append(events[ev.Step], ev)
	}
	return &scheduler{
		track:    track,
		events:   events,
		nextTime: now,
		stepDur:  track.StepDuration(),
	}
}

// pass commits every step inside the horizon, calling emit once per
// note event with the absolute clock time the event must sound, and
// returns how many steps the position advanced. The step counter wraps
// at the track's step count, looping the pattern.
func (s *scheduler) pass(now float64, emit func(ev syke.NoteEvent, when float64)) int {
	steps := 0
	for s.nextTime < now+horizonSeconds {
		for _, ev := range s.events[s.step] {
			emit(ev, s.nextTime)
		}
		s.nextTime += s.stepDur
		s.step = (s.step + 1) % s.track.StepCount()
		steps++
	}
	return steps
}

// currentStep returns the next step the scheduler will commit.
func (s *scheduler) currentStep() int { return s.step }
