package dsp

type (
	// Voice renders blocks of interleaved stereo audio into the buses.
	// Render reports whether the voice wants to keep running; once it
	// returns false the mixer drops it.
	Voice interface {
		Render(b Buses) bool
	}

	// Buses are the per-block output slices a voice adds into. Dry is
	// the post-envelope mix. DelaySend and ReverbSend are tapped from
	// the raw generator signal, before the envelope, so effect tails
	// outlive short notes; they are nil when the respective send is
	// not enabled.
	Buses struct {
		Dry        []float32
		DelaySend  []float32
		ReverbSend []float32
	}

	// generator produces one mono sample per call. Voices are built by
	// composing generators: oscillators and noise at the leaves,
	// filters, decays and mixes above them.
	generator interface {
		next() float32
	}
)

// monoVoice drives a generator through an envelope onto both channels.
type monoVoice struct {
	gen    generator
	env    *adsr
	volume float32
	delay  bool
	reverb bool
}

func (v *monoVoice) Render(b Buses) bool {
	delay := v.delay && len(b.DelaySend) >= len(b.Dry)
	reverb := v.reverb && len(b.ReverbSend) >= len(b.Dry)
	for i := 0; i+1 < len(b.Dry); i += 2 {
		if v.env.done() {
			return false
		}
		raw := v.gen.next() * v.volume
		if delay {
			b.DelaySend[i] += raw
			b.DelaySend[i+1] += raw
		}
		if reverb {
			b.ReverbSend[i] += raw
			b.ReverbSend[i+1] += raw
		}
		out := raw * v.env.next()
		b.Dry[i] += out
		b.Dry[i+1] += out
	}
	return !v.env.done()
}

type filtered struct {
	src generator
	f   svf
}

func (f *filtered) next() float32 {
	return f.f.next(f.src.next())
}

type decayed struct {
	src  generator
	gain sweep
}

func (d *decayed) next() float32 {
	return d.src.next() * d.gain.next()
}

type mix struct {
	a, b generator
}

func (m *mix) next() float32 {
	return m.a.next() + m.b.next()
}
