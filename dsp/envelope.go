package dsp

import (
	"math"

	"github.com/vsariola/syke"
)

const (
	// A zero-length exponential ramp is undefined, so every envelope
	// stage lasts at least a millisecond.
	minStageTime = 0.001
	// envFloor is where an exponential ramp counts as silence (-80 dB).
	envFloor = 1e-4
)

type envStage uint8

const (
	envAttack envStage = iota
	envDecay
	envSustain
	envRelease
	envDone
)

// adsr is a linear-attack, exponential-decay amplitude envelope. The
// gate counts samples from the start of the note; when it runs out the
// release stage begins, wherever the envelope happens to be.
type adsr struct {
	stage          envStage
	level          float32
	attackStep     float32
	decayCoef      float32
	releaseCoef    float32
	sustain        float32
	attackSamples  int
	decaySamples   int
	releaseSamples int
	gate           int
}

func newADSR(env syke.Envelope, hold float64, rate int) *adsr {
	a := &adsr{
		attackSamples:  stageSamples(env.Attack, rate),
		decaySamples:   stageSamples(env.Decay, rate),
		releaseSamples: stageSamples(env.Release, rate),
		sustain:        clamp(float32(env.Sustain), 0, 1),
	}
	a.attackStep = 1 / float32(a.attackSamples)
	target := math.Max(float64(a.sustain), envFloor)
	a.decayCoef = float32(math.Pow(target, 1/float64(a.decaySamples)))
	a.gate = int(hold * float64(rate))
	if a.gate < 1 {
		a.gate = 1
	}
	return a
}

func stageSamples(seconds float64, rate int) int {
	if seconds < minStageTime {
		seconds = minStageTime
	}
	n := int(math.Ceil(seconds * float64(rate)))
	if n < 1 {
		n = 1
	}
	return n
}

func (a *adsr) next() float32 {
	switch a.stage {
	case envAttack:
		a.level += a.attackStep
		if a.level >= 1 {
			a.level = 1
			a.stage = envDecay
		}
	case envDecay:
		a.level *= a.decayCoef
		if a.level <= a.sustain || a.level <= envFloor {
			a.level = a.sustain
			a.stage = envSustain
		}
	case envRelease:
		a.level *= a.releaseCoef
		if a.level <= envFloor {
			a.level = 0
			a.stage = envDone
		}
	case envDone:
		return 0
	}
	if a.gate > 0 {
		a.gate--
		if a.gate == 0 {
			a.startRelease()
		}
	}
	return a.level
}

func (a *adsr) startRelease() {
	if a.stage == envRelease || a.stage == envDone {
		return
	}
	if a.level <= envFloor {
		a.level = 0
		a.stage = envDone
		return
	}
	a.releaseCoef = float32(math.Pow(envFloor/float64(a.level), 1/float64(a.releaseSamples)))
	a.stage = envRelease
}

func (a *adsr) done() bool {
	return a.stage == envDone
}
