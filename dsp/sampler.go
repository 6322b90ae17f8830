package dsp

import "github.com/vsariola/syke"

// VarispeedRate is the playback rate that stretches a trimmed sample
// of sampleSeconds to exactly fill noteSeconds, shifting pitch as a
// side effect.
func VarispeedRate(sampleSeconds, noteSeconds float64) float64 {
	if noteSeconds <= 0 {
		return 1
	}
	return sampleSeconds / noteSeconds
}

// PitchShiftRate is the playback rate that transposes a sample,
// assumed recorded at baseHz, so it sounds at targetHz.
func PitchShiftRate(targetHz, baseHz float64) float64 {
	if baseHz <= 0 {
		return 1
	}
	return targetHz / baseHz
}

// samplerVoice plays a decoded sample with linear interpolation at a
// fixed rate ratio. Playback starts at the trim offset; the trim end
// only fixes the rate and hold time, the release tail may read on
// past it until the buffer runs out.
type samplerVoice struct {
	sample *syke.Sample
	pos    float64 // source frame cursor
	step   float64 // source frames per output frame
	env    *adsr
	volume float32
	delay  bool
	reverb bool
}

func newSamplerVoice(cfg VoiceConfig, rate int) *samplerVoice {
	from, to := cfg.Sample.Region(cfg.TrimStart, cfg.TrimEnd)
	regionSeconds := float64(to-from) / float64(cfg.Sample.Rate)
	var playRate, hold float64
	if cfg.PitchShift {
		playRate = PitchShiftRate(cfg.Freq, syke.Frequency(syke.DefaultNote))
		hold = regionSeconds / playRate
	} else {
		playRate = VarispeedRate(regionSeconds, cfg.Duration)
		hold = cfg.Duration
	}
	if playRate <= 0 {
		playRate = 1
	}
	return &samplerVoice{
		sample: cfg.Sample,
		pos:    float64(from),
		step:   playRate * float64(cfg.Sample.Rate) / float64(rate),
		env:    newADSR(cfg.Envelope, hold, rate),
		volume: cfg.Volume,
		delay:  cfg.Delay,
		reverb: cfg.Reverb,
	}
}

func (s *samplerVoice) Render(b Buses) bool {
	delay := s.delay && len(b.DelaySend) >= len(b.Dry)
	reverb := s.reverb && len(b.ReverbSend) >= len(b.Dry)
	end := float64(s.sample.Frames())
	for i := 0; i+1 < len(b.Dry); i += 2 {
		if s.env.done() || s.pos >= end {
			return false
		}
		l, r := s.sample.At(s.pos)
		l *= s.volume
		r *= s.volume
		if delay {
			b.DelaySend[i] += l
			b.DelaySend[i+1] += r
		}
		if reverb {
			b.ReverbSend[i] += l
			b.ReverbSend[i+1] += r
		}
		amp := s.env.next()
		b.Dry[i] += l * amp
		b.Dry[i+1] += r * amp
		s.pos += s.step
	}
	return true
}
