package seq

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vsariola/syke"
	"github.com/vsariola/syke/dsp"
)

// player runs one playback: it renders the mixer into the audio sink
// from one goroutine and drives the lookahead scheduler from another.
// Voices are committed to the mixer at absolute frame positions, so
// their timing is sample-accurate regardless of how late a poll pass
// runs. Players are created by Sequencer.Play and never restarted.
type player struct {
	track   syke.Track
	mixer   *dsp.Mixer
	sink    syke.AudioSink
	sched   *scheduler
	samples map[int]*syke.Sample

	alerts chan Alert
	quit   chan struct{}
	done   chan struct{}

	epoch    atomic.Int64
	step     atomic.Int64
	stopping atomic.Bool
	stopOnce sync.Once

	clipping bool
}

func newPlayer(ctx syke.AudioContext, track syke.Track) (*player, error) {
	p := &player{
		track:  track.Copy(),
		mixer:  dsp.NewMixer(syke.SampleRate),
		alerts: make(chan Alert, 16),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if err := p.track.Validate(); err != nil {
		return nil, fmt.Errorf("invalid track: %w", err)
	}
	if p.track.Kind == syke.TrackImported {
		sample, err := syke.DecodeSample(p.track.Audio)
		if err != nil {
			return nil, fmt.Errorf("decoding track audio: %w", err)
		}
		p.mixer.Add(0, dsp.BuildVoice(dsp.VoiceConfig{
			Volume:   1,
			Envelope: syke.Envelope{Sustain: 1},
			Duration: sample.Duration(),
			Sample:   sample,
			TrimEnd:  1,
		}, syke.SampleRate))
	} else {
		p.samples = decodeRowSamples(&p.track, p.alerts)
		var delay, reverb bool
		for _, row := range p.track.Rows {
			delay = delay || row.Delay
			reverb = reverb || row.Reverb
		}
		if err := p.mixer.EnableSends(delay, reverb); err != nil {
			return nil, err
		}
		p.sched = newScheduler(&p.track, p.mixer.Time())
	}
	p.sink = ctx.Output()
	go p.renderLoop()
	go p.pollLoop()
	return p, nil
}

// decodeRowSamples decodes the assets of all sampled rows up front.
// Rows whose bytes do not decode are reported and left out; their
// notes are skipped during playback, but playback itself proceeds.
func decodeRowSamples(track *syke.Track, alerts chan<- Alert) map[int]*syke.Sample {
	samples := make(map[int]*syke.Sample)
	for i, row := range track.Rows {
		if row.Kind != syke.RowSampled || len(row.Sample) == 0 {
			continue
		}
		sample, err := syke.DecodeSample(row.Sample)
		if err != nil {
			TrySend(alerts, Alert{
				Message:  fmt.Sprintf("row %d (%s): %v", i, row.Name, err),
				Priority: Error,
			})
			continue
		}
		samples[i] = sample
	}
	return samples
}

func (p *player) renderLoop() {
	defer close(p.done)
	if err := syke.Stream(p.mixer, p.sink); err != nil {
		TrySend(p.alerts, Alert{Message: fmt.Sprintf("audio output: %v", err), Priority: Error})
	}
	p.sink.Close()
	p.stop()
}

func (p *player) pollLoop() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if p.sched != nil {
			p.schedulePass()
		} else if p.mixer.ActiveVoices() == 0 {
			// imported asset played out
			p.stop()
		}
		peak := p.mixer.Peak()
		if peak > 1 && !p.clipping {
			TrySend(p.alerts, Alert{Message: fmt.Sprintf("output clipping, peak %.2f", peak), Priority: Warning})
		}
		p.clipping = peak > 1
		select {
		case <-p.quit:
			return
		case <-ticker.C:
		}
	}
}

// schedulePass books every step inside the lookahead horizon. The
// epoch is captured before the pass; stop bumps it, so a pass racing
// with stop commits nothing.
func (p *player) schedulePass() {
	epoch := p.epoch.Load()
	p.sched.pass(p.mixer.Time(), func(ev syke.NoteEvent, when float64) {
		for _, cfg := range voiceConfigs(&p.track, ev, p.samples, p.alerts) {
			if p.epoch.Load() != epoch {
				return
			}
			p.mixer.Add(int64(when*syke.SampleRate), dsp.BuildVoice(cfg, syke.SampleRate))
		}
	})
	p.step.Store(int64(p.sched.currentStep()))
}

// voiceConfigs resolves one note event against its row into one config
// per sounding pitch. samples holds decoded assets by row index; a
// sampled row with no decoded asset yields nothing. alerts may be nil.
func voiceConfigs(track *syke.Track, ev syke.NoteEvent, samples map[int]*syke.Sample, alerts chan<- Alert) []dsp.VoiceConfig {
	if ev.Row < 0 || ev.Row >= len(track.Rows) {
		return nil
	}
	row := &track.Rows[ev.Row]
	if row.Mute {
		return nil
	}
	env := dsp.DefaultEnvelope
	if row.Envelope != nil {
		env = *row.Envelope
	}
	base := dsp.VoiceConfig{
		Volume:   float32(row.Gain()),
		Envelope: env,
		Duration: track.ResolveDuration(ev),
		Delay:    row.Delay,
		Reverb:   row.Reverb,
	}
	if row.Kind == syke.RowSampled {
		sample := samples[ev.Row]
		if sample == nil {
			return nil
		}
		base.Sample = sample
		base.TrimStart, base.TrimEnd = row.Trim()
		// an explicit pitch override plays the sample melodically;
		// otherwise it is stretched to fill the note slot
		base.PitchShift = len(ev.Pitch) > 0
		if !base.PitchShift {
			return []dsp.VoiceConfig{base}
		}
	} else {
		preset, ok := dsp.ParsePreset(row.Preset)
		if !ok {
			TrySend(alerts, Alert{
				Message:  fmt.Sprintf("unknown preset %q, using the default synth", row.Preset),
				Priority: Warning,
			})
		}
		base.Preset = preset
		base.Wave = dsp.ParseWaveform(row.Waveform)
	}
	var configs []dsp.VoiceConfig
	for _, pitch := range track.ResolvePitches(ev) {
		cfg := base
		freq, err := syke.FrequencyOf(pitch)
		if err != nil {
			TrySend(alerts, Alert{
				Message:  fmt.Sprintf("%v, using %s", err, syke.DefaultNote),
				Priority: Warning,
			})
			freq = syke.Frequency(syke.DefaultNote)
		}
		cfg.Freq = freq
		configs = append(configs, cfg)
	}
	return configs
}

// stop invalidates the epoch, winds down both loops and silences the
// mixer. Safe to call any number of times, from any goroutine.
func (p *player) stop() {
	p.stopOnce.Do(func() {
		p.stopping.Store(true)
		p.epoch.Add(1)
		close(p.quit)
		p.mixer.Close()
	})
}

func (p *player) playing() bool {
	return !p.stopping.Load()
}
