package seq

import (
	"fmt"

	"github.com/vsariola/syke"
	"github.com/vsariola/syke/dsp"
)

const (
	renderChunk = 2048
	// tail rendered past the body so releases and send tails ring out
	releaseTail = 0.25
	sendTail    = 2.5
)

// RenderTrack renders a track offline into an interleaved stereo
// buffer at the engine rate: loops cycles of a composed track's
// pattern, or an imported track's full asset, through the same
// scheduling and mixing path live playback uses. Rows whose samples do
// not decode are skipped, exactly as they are live.
func RenderTrack(track syke.Track, loops int) ([]float32, error) {
	track = track.Copy()
	if err := track.Validate(); err != nil {
		return nil, fmt.Errorf("invalid track: %w", err)
	}
	if loops < 1 {
		loops = 1
	}
	mixer := dsp.NewMixer(syke.SampleRate)
	tail := releaseTail
	var body float64
	if track.Kind == syke.TrackImported {
		sample, err := syke.DecodeSample(track.Audio)
		if err != nil {
			return nil, fmt.Errorf("decoding track audio: %w", err)
		}
		mixer.Add(0, dsp.BuildVoice(dsp.VoiceConfig{
			Volume:   1,
			Envelope: syke.Envelope{Sustain: 1},
			Duration: sample.Duration(),
			Sample:   sample,
			TrimEnd:  1,
		}, syke.SampleRate))
		body = sample.Duration()
	} else {
		samples := decodeRowSamples(&track, nil)
		var delay, reverb bool
		for _, row := range track.Rows {
			delay = delay || row.Delay
			reverb = reverb || row.Reverb
		}
		if err := mixer.EnableSends(delay, reverb); err != nil {
			return nil, err
		}
		if delay || reverb {
			tail = sendTail
		}
		sched := newScheduler(&track, 0)
		body = float64(loops*track.StepCount()) * track.StepDuration()
		// one oversized pass books the whole body at once
		sched.pass(body-horizonSeconds, func(ev syke.NoteEvent, when float64) {
			for _, cfg := range voiceConfigs(&track, ev, samples, nil) {
				mixer.Add(int64(when*syke.SampleRate), dsp.BuildVoice(cfg, syke.SampleRate))
			}
		})
	}
	var out []float32
	buf := make([]float32, renderChunk)
	bodyFrames := int64(body * syke.SampleRate)
	for mixer.Now() < bodyFrames || mixer.ActiveVoices() > 0 {
		n, err := mixer.ReadAudio(buf)
		if err != nil {
			break
		}
		out = append(out, buf[:n]...)
	}
	end := mixer.Now() + int64(tail*syke.SampleRate)
	for mixer.Now() < end {
		n, err := mixer.ReadAudio(buf)
		if err != nil {
			break
		}
		out = append(out, buf[:n]...)
	}
	return out, nil
}
