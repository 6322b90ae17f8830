package dsp

import (
	"testing"

	"github.com/vsariola/syke"
)

func TestEnvelopeStageFloors(t *testing.T) {
	const rate = 44100
	a := newADSR(syke.Envelope{}, 0, rate)
	for _, c := range []struct {
		name    string
		samples int
	}{
		{"attack", a.attackSamples},
		{"decay", a.decaySamples},
		{"release", a.releaseSamples},
	} {
		if got := float64(c.samples) / rate; got < minStageTime {
			t.Errorf("%v stage of a zero envelope lasts %v s, expected at least %v", c.name, got, minStageTime)
		}
	}
	if a.gate < 1 {
		t.Errorf("gate should be at least one sample, got %v", a.gate)
	}
}

func TestEnvelopeProgression(t *testing.T) {
	const rate = 44100
	env := syke.Envelope{Attack: 0.01, Decay: 0.01, Sustain: 0.5, Release: 0.01}
	a := newADSR(env, 0.05, rate)

	var peak float32
	for i := 0; i < 500; i++ {
		v := a.next()
		if v > peak {
			peak = v
		}
		if v < 0 || v > 1 {
			t.Fatalf("envelope value %v out of [0,1] at sample %v", v, i)
		}
	}
	if peak < 0.999 {
		t.Fatalf("attack should reach full level within 500 samples, peaked at %v", peak)
	}

	// well past the decay stage, well before the gate runs out
	var v float32
	for i := 500; i < 2000; i++ {
		v = a.next()
	}
	if v != a.sustain {
		t.Fatalf("envelope should sit at the sustain level, got %v", v)
	}

	// the gate is 2205 samples; release lasts 441 more
	for i := 2000; i < 2700; i++ {
		v = a.next()
	}
	if !a.done() {
		t.Fatalf("envelope should be done after gate and release, still at stage %v level %v", a.stage, a.level)
	}
	if got := a.next(); got != 0 {
		t.Fatalf("a done envelope should render silence, got %v", got)
	}
}

func TestEnvelopeZeroSustainFinishes(t *testing.T) {
	a := newADSR(syke.Envelope{Decay: 0.005, Sustain: 0}, 0.01, 44100)
	for i := 0; i < 44100; i++ {
		v := a.next()
		if v != v || v < 0 || v > 1 {
			t.Fatalf("envelope value %v broken at sample %v", v, i)
		}
		if a.done() {
			return
		}
	}
	t.Fatalf("a zero sustain envelope should finish within a second")
}

func TestEnvelopeReleaseFromAttack(t *testing.T) {
	// a gate shorter than the attack releases mid-ramp without a pop
	a := newADSR(syke.Envelope{Attack: 0.1, Sustain: 1, Release: 0.005}, 0.001, 44100)
	var prev float32
	for i := 0; i < 44100 && !a.done(); i++ {
		v := a.next()
		if v < 0 || v > 1 {
			t.Fatalf("envelope value %v out of range at sample %v", v, i)
		}
		if i > 50 && v > prev {
			t.Fatalf("level rose during release at sample %v: %v -> %v", i, prev, v)
		}
		prev = v
	}
	if !a.done() {
		t.Fatalf("envelope should be done within a second")
	}
}
