package syke

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrMalformedNoteName is returned by FrequencyOf when a note string does
// not parse. Callers recover by substituting DefaultNote; the error never
// aborts playback.
var ErrMalformedNoteName = errors.New("malformed note name")

// DefaultNote is the pitch used when a row or event names none, and the
// assumed recorded pitch of sampled rows.
const DefaultNote = "C4"

// semitone distance from A within the same octave, for each pitch class
var pitchClasses = map[byte]int{
	'C': -9, 'D': -7, 'E': -5, 'F': -4, 'G': -2, 'A': 0, 'B': 2,
}

// FrequencyOf returns the frequency in hertz of a note name such as "C4"
// or "F#3", in twelve-tone equal temperament tuned to A4 = 440 Hz. A bare
// integer string is accepted as a semitone offset from A4; that is the
// numeric form old tracks stored ("0" is A4, "-9" is middle C). Anything
// else returns ErrMalformedNoteName.
func FrequencyOf(note string) (float64, error) {
	if len(note) == 0 {
		return 0, fmt.Errorf("%w: empty note", ErrMalformedNoteName)
	}
	if c := note[0]; c == '+' || c == '-' || (c >= '0' && c <= '9') {
		n, err := strconv.Atoi(note)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedNoteName, note)
		}
		return 440 * math.Exp2(float64(n)/12), nil
	}
	semitones, ok := pitchClasses[note[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNoteName, note)
	}
	rest := note[1:]
	if len(rest) > 0 && rest[0] == '#' {
		semitones++
		rest = rest[1:]
	}
	if len(rest) != 1 || rest[0] < '0' || rest[0] > '9' {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNoteName, note)
	}
	octave := int(rest[0] - '0')
	return 440 * math.Exp2(float64(semitones+(octave-4)*12)/12), nil
}

// Frequency is FrequencyOf with the DefaultNote fallback applied, for
// callers that must always end up with a playable pitch.
func Frequency(note string) float64 {
	f, err := FrequencyOf(note)
	if err != nil {
		f, _ = FrequencyOf(DefaultNote)
	}
	return f
}
