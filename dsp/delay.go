package dsp

// Feedback delay send: 300 ms echo, 0.4 feedback, mixed back at 0.5.
const (
	delaySeconds  = 0.3
	delayFeedback = 0.4
	delayWet      = 0.5
)

// delaySend is a stereo feedback delay line shared by all voices of a
// playing track. Process consumes one block of the send bus and adds
// the wet signal into out.
type delaySend struct {
	left, right []float32
	pos         int
}

func newDelaySend(rate int) *delaySend {
	n := int(delaySeconds * float64(rate))
	if n < 1 {
		n = 1
	}
	return &delaySend{left: make([]float32, n), right: make([]float32, n)}
}

func (d *delaySend) Process(in, out []float32) {
	for i := 0; i+1 < len(out); i += 2 {
		l := d.left[d.pos]
		r := d.right[d.pos]
		out[i] += l * delayWet
		out[i+1] += r * delayWet
		d.left[d.pos] = in[i] + l*delayFeedback
		d.right[d.pos] = in[i+1] + r*delayFeedback
		d.pos++
		if d.pos >= len(d.left) {
			d.pos = 0
		}
	}
}
