package seq

import (
	"math"
	"testing"

	"github.com/vsariola/syke"
)

func gridTrack(steps int, noteSteps ...int) syke.Track {
	track := syke.Track{
		Kind:  syke.TrackComposed,
		BPM:   120,
		Steps: steps,
		Rows:  []syke.Row{{}},
	}
	for _, s := range noteSteps {
		track.Notes = append(track.Notes, syke.NoteEvent{Row: 0, Step: s})
	}
	return track
}

func TestSchedulerAdvancesWithTheClock(t *testing.T) {
	track := gridTrack(16, 0)
	sched := newScheduler(&track, 0)
	stepDur := track.StepDuration()
	for i := 0; i < 40; i++ {
		if got := sched.pass(float64(i)*stepDur, func(syke.NoteEvent, float64) {}); got != 1 {
			t.Fatalf("pass %v advanced %v steps, expected 1 per step time", i, got)
		}
	}
	if got := sched.currentStep(); got != 40%16 {
		t.Fatalf("after 40 steps the position is %v, expected %v", sched.currentStep(), 40%16)
	}
}

func TestSchedulerWrapsAtStepCount(t *testing.T) {
	track := gridTrack(4, 0)
	sched := newScheduler(&track, 0)
	stepDur := track.StepDuration()
	for i := 0; i < 10; i++ {
		sched.pass(float64(i)*stepDur, func(syke.NoteEvent, float64) {})
	}
	if got := sched.currentStep(); got != 2 {
		t.Fatalf("position = %v, expected 10 mod 4 = 2", got)
	}
}

func TestSchedulerHorizonBound(t *testing.T) {
	// polled every 25 ms at 120 BPM, a pass never books more steps
	// than fit in the lookahead window
	track := gridTrack(16, 0)
	sched := newScheduler(&track, 0)
	bound := int(math.Ceil(horizonSeconds/track.StepDuration())) + 1
	poll := pollInterval.Seconds()
	total := 0
	for i := 0; i < 400; i++ {
		n := sched.pass(float64(i)*poll, func(syke.NoteEvent, float64) {})
		if n > bound {
			t.Fatalf("pass %v booked %v steps, expected at most %v", i, n, bound)
		}
		total += n
	}
	// and across passes nothing is lost: the whole span got booked
	want := int((399*poll + horizonSeconds) / track.StepDuration())
	if total < want || total > want+1 {
		t.Fatalf("booked %v steps in total, expected about %v", total, want)
	}
}

func TestSchedulerEmitTimes(t *testing.T) {
	track := gridTrack(4, 0, 2)
	sched := newScheduler(&track, 0)
	type emitted struct {
		step int
		when float64
	}
	var got []emitted
	sched.pass(1.0, func(ev syke.NoteEvent, when float64) {
		got = append(got, emitted{ev.Step, when})
	})
	want := []emitted{
		{0, 0}, {2, 0.25},
		{0, 0.5}, {2, 0.75},
		{0, 1.0},
	}
	if len(got) != len(want) {
		t.Fatalf("emitted %v events, expected %v", len(got), len(want))
	}
	for i := range want {
		if got[i].step != want[i].step || math.Abs(got[i].when-want[i].when) > 1e-9 {
			t.Errorf("event %v = step %v at %v, expected step %v at %v",
				i, got[i].step, got[i].when, want[i].step, want[i].when)
		}
	}
}

func TestSchedulerEmitsChordsOnce(t *testing.T) {
	// a chord is one event; the fan out into voices happens later
	track := gridTrack(16, 0)
	track.Notes[0].Pitch = syke.Pitches{"C4", "E4", "G4"}
	sched := newScheduler(&track, 0)
	count := 0
	sched.pass(0, func(ev syke.NoteEvent, when float64) {
		count++
		if len(ev.Pitch) != 3 {
			t.Errorf("the event should carry all %v pitches, got %v", 3, len(ev.Pitch))
		}
	})
	if count != 1 {
		t.Fatalf("emit ran %v times, expected once per event", count)
	}
}

func TestSchedulerStartsAtTheGivenClock(t *testing.T) {
	track := gridTrack(16, 0)
	sched := newScheduler(&track, 2.0)
	var first float64 = -1
	sched.pass(2.0, func(ev syke.NoteEvent, when float64) {
		if first < 0 {
			first = when
		}
	})
	if first != 2.0 {
		t.Fatalf("first event at %v, expected the clock the scheduler started at", first)
	}
}
