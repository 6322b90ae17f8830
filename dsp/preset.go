package dsp

import (
	"strings"

	"github.com/vsariola/syke"
)

// Preset is the closed set of synthesis recipes a row can pick from.
// buildGenerator switches over it exhaustively; adding a preset means
// adding a constant and a recipe there.
type Preset uint8

const (
	PresetDefault Preset = iota
	PresetKick
	PresetSnare
	PresetHiHat
	PresetGuitar
	PresetPiano
)

// ParsePreset maps a row's preset tag to a Preset. ok is false for
// tags it does not recognize; those rows render through the default
// path.
func ParsePreset(tag string) (p Preset, ok bool) {
	switch strings.ToLower(tag) {
	case "", "default":
		return PresetDefault, true
	case "kick":
		return PresetKick, true
	case "snare":
		return PresetSnare, true
	case "hihat":
		return PresetHiHat, true
	case "guitar":
		return PresetGuitar, true
	case "piano":
		return PresetPiano, true
	}
	return PresetDefault, false
}

// DefaultEnvelope shapes rows that do not override their envelope.
var DefaultEnvelope = syke.Envelope{Attack: 0.005, Decay: 0.05, Sustain: 0.8, Release: 0.05}

// VoiceConfig carries everything needed to realize one note. The
// scheduler resolves a NoteEvent against its row into one config per
// sounding pitch.
type VoiceConfig struct {
	Preset   Preset
	Wave     Waveform
	Freq     float64 // resolved pitch in Hz
	Volume   float32
	Envelope syke.Envelope
	Duration float64 // seconds the note is held before release
	Delay    bool
	Reverb   bool

	// sampled rows only
	Sample     *syke.Sample
	TrimStart  float64
	TrimEnd    float64
	PitchShift bool
}

// BuildVoice realizes one note. Sampled rows play their decoded buffer
// in varispeed or pitch-shifted mode; synthesized rows pick their
// generator recipe by preset and run it through the envelope.
func BuildVoice(cfg VoiceConfig, rate int) Voice {
	if cfg.Sample != nil {
		return newSamplerVoice(cfg, rate)
	}
	return &monoVoice{
		gen:    buildGenerator(cfg, rate),
		env:    newADSR(cfg.Envelope, cfg.Duration, rate),
		volume: cfg.Volume,
		delay:  cfg.Delay,
		reverb: cfg.Reverb,
	}
}

func buildGenerator(cfg VoiceConfig, rate int) generator {
	switch cfg.Preset {
	case PresetKick:
		// body: sine dropping from 150 Hz to the subsonic floor with a
		// matching amplitude decay; transient: 3000 -> 100 Hz click
		body := newSweptOscillator(WaveSine, 150, 0.01, 0.5, rate)
		click := newSweptOscillator(WaveSine, 3000, 100, 0.02, rate)
		return &mix{
			a: &decayed{src: &body, gain: newSweep(1, 0, 0.5, rate)},
			b: &decayed{src: &click, gain: newSweep(1, 0, 0.02, rate)},
		}
	case PresetSnare:
		rattle := newNoise()
		hp := newFilter(filterHigh, 1000, rate)
		tone := newSweptOscillator(WaveTriangle, 250, 100, 0.1, rate)
		return &mix{
			a: &decayed{src: &filtered{src: &rattle, f: hp}, gain: newSweep(1, 0, 0.2, rate)},
			b: &decayed{src: &tone, gain: newSweep(1, 0, 0.1, rate)},
		}
	case PresetHiHat:
		hiss := newNoise()
		bp := newFilter(filterBand, 10000, rate)
		hp := newFilter(filterHigh, 7000, rate)
		sizzle := &filtered{src: &filtered{src: &hiss, f: bp}, f: hp}
		return &decayed{src: sizzle, gain: newSweep(0.6, 0, 0.05, rate)}
	case PresetGuitar:
		// pluck damping: saw through a closing lowpass
		pluck := newOscillator(WaveSaw, cfg.Freq, rate)
		lp := newSweptFilter(filterLow, 3000, 500, 0.2, rate)
		return &filtered{src: &pluck, f: lp}
	case PresetPiano:
		osc := newOscillator(WaveTriangle, cfg.Freq, rate)
		return &osc
	default:
		osc := newOscillator(cfg.Wave, cfg.Freq, rate)
		return &osc
	}
}
