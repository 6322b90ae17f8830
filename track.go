package syke

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

type (
	// Track is one named, playable unit: either a composed step sequence
	// or an imported audio asset. A composed track loops over Steps
	// sixteenth-note steps at BPM; its Notes place sounds on the grid and
	// its Rows configure how each sound is synthesized.
	Track struct {
		ID    string      `yaml:"id,omitempty" json:"id,omitempty"`
		Name  string      `yaml:"name,omitempty" json:"name,omitempty"`
		Kind  TrackKind   `yaml:"kind,omitempty" json:"kind,omitempty"`
		BPM   int         `yaml:"bpm,omitempty" json:"bpm,omitempty"`
		Steps int         `yaml:"steps,omitempty" json:"steps,omitempty"`
		Rows  []Row       `yaml:"rows,omitempty" json:"rows,omitempty"`
		Notes []NoteEvent `yaml:"notes,omitempty" json:"notes,omitempty"`
		// Audio holds the asset bytes of an imported track.
		Audio []byte `yaml:"audio,omitempty" json:"audio,omitempty"`
	}

	TrackKind string
	RowKind   string

	// Row is one instrument lane of a composed track. Zero values mean
	// defaults everywhere: a synthesized square-wave row at full volume
	// playing DefaultNote for one step.
	Row struct {
		ID       string    `yaml:"id,omitempty" json:"id,omitempty"`
		Name     string    `yaml:"name,omitempty" json:"name,omitempty"`
		Kind     RowKind   `yaml:"kind,omitempty" json:"kind,omitempty"`
		Mute     bool      `yaml:"mute,omitempty" json:"mute,omitempty"`
		Volume   float64   `yaml:"volume,omitempty" json:"volume,omitempty"`
		Note     string    `yaml:"note,omitempty" json:"note,omitempty"`
		Duration float64   `yaml:"duration,omitempty" json:"duration,omitempty"` // beats
		Preset   string    `yaml:"preset,omitempty" json:"preset,omitempty"`
		Waveform string    `yaml:"waveform,omitempty" json:"waveform,omitempty"`
		Envelope *Envelope `yaml:"envelope,omitempty" json:"envelope,omitempty"`
		Delay    bool      `yaml:"delay,omitempty" json:"delay,omitempty"`
		Reverb   bool      `yaml:"reverb,omitempty" json:"reverb,omitempty"`
		// Sampled rows carry their asset bytes and a trimmed region,
		// start and end as fractions of the asset duration.
		Sample    []byte  `yaml:"sample,omitempty" json:"sample,omitempty"`
		TrimStart float64 `yaml:"trimStart,omitempty" json:"trimStart,omitempty"`
		TrimEnd   float64 `yaml:"trimEnd,omitempty" json:"trimEnd,omitempty"`
	}

	// Envelope holds the ADSR amplitude stages. Attack, Decay and Release
	// are seconds; Sustain is a level in [0,1]. The engine floors every
	// stage duration to one millisecond before use, so zero values are
	// safe to store.
	Envelope struct {
		Attack  float64 `yaml:"attack" json:"attack"`
		Decay   float64 `yaml:"decay" json:"decay"`
		Sustain float64 `yaml:"sustain" json:"sustain"`
		Release float64 `yaml:"release" json:"release"`
	}

	// NoteEvent places one sound on the grid: row Row fires at step Step
	// for Duration steps (0 means one). Pitch overrides the row's note;
	// several pitches make a chord, one voice each.
	NoteEvent struct {
		Row      int     `yaml:"row" json:"row"`
		Step     int     `yaml:"step" json:"step"`
		Duration float64 `yaml:"duration,omitempty" json:"duration,omitempty"`
		Pitch    Pitches `yaml:"pitch,omitempty" json:"pitch,omitempty"`
	}

	// Pitches is zero or more note names. It marshals a single pitch as a
	// plain scalar and accepts either a scalar or a list when reading, in
	// both YAML and JSON.
	Pitches []string
)

const (
	TrackComposed TrackKind = "composed"
	TrackImported TrackKind = "imported"

	RowSynthesized RowKind = "synth"
	RowSampled     RowKind = "sampled"
)

const (
	DefaultBPM   = 120
	DefaultSteps = 16
)

func (t *Track) Copy() Track {
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Copy()
	}
	notes := make([]NoteEvent, len(t.Notes))
	for i, n := range t.Notes {
		notes[i] = n.Copy()
	}
	audio := make([]byte, len(t.Audio))
	copy(audio, t.Audio)
	return Track{ID: t.ID, Name: t.Name, Kind: t.Kind, BPM: t.BPM, Steps: t.Steps,
		Rows: rows, Notes: notes, Audio: audio}
}

func (r *Row) Copy() Row {
	ret := *r
	if r.Envelope != nil {
		env := *r.Envelope
		ret.Envelope = &env
	}
	ret.Sample = make([]byte, len(r.Sample))
	copy(ret.Sample, r.Sample)
	return ret
}

func (n *NoteEvent) Copy() NoteEvent {
	ret := *n
	ret.Pitch = make(Pitches, len(n.Pitch))
	copy(ret.Pitch, n.Pitch)
	return ret
}

// TempoBPM returns the track tempo, with the default of 120 when unset.
func (t *Track) TempoBPM() int {
	if t.BPM <= 0 {
		return DefaultBPM
	}
	return t.BPM
}

// StepCount returns the number of steps in one loop cycle, default 16.
func (t *Track) StepCount() int {
	if t.Steps <= 0 {
		return DefaultSteps
	}
	return t.Steps
}

// StepDuration returns the length of one step in seconds. A step is a
// sixteenth note, so a quarter of a beat.
func (t *Track) StepDuration() float64 {
	return 60 / float64(t.TempoBPM()) * 0.25
}

// ResolvePitches returns the note names an event sounds at: the explicit
// event override when present, else the row's default note, else
// DefaultNote. The names are not validated here; malformed ones degrade
// to DefaultNote at synthesis time.
func (t *Track) ResolvePitches(ev NoteEvent) []string {
	if len(ev.Pitch) > 0 {
		return ev.Pitch
	}
	if ev.Row >= 0 && ev.Row < len(t.Rows) && t.Rows[ev.Row].Note != "" {
		return []string{t.Rows[ev.Row].Note}
	}
	return []string{DefaultNote}
}

// ResolveDuration returns the sounding length of an event in seconds:
// the event duration in steps when set, else the row default duration in
// beats, else one step.
func (t *Track) ResolveDuration(ev NoteEvent) float64 {
	if ev.Duration > 0 {
		return ev.Duration * t.StepDuration()
	}
	if ev.Row >= 0 && ev.Row < len(t.Rows) && t.Rows[ev.Row].Duration > 0 {
		return t.Rows[ev.Row].Duration * 60 / float64(t.TempoBPM())
	}
	return t.StepDuration()
}

// Gain returns the row volume clamped to [0,1]. An unset (zero) volume
// means full volume; rows are silenced with Mute, not with zero volume.
func (r *Row) Gain() float64 {
	if r.Volume == 0 {
		return 1
	}
	if r.Volume < 0 {
		return 0
	}
	if r.Volume > 1 {
		return 1
	}
	return r.Volume
}

// Trim returns the trimmed region as fractions of the sample duration.
// An unset (zero) end means the sample's full length.
func (r *Row) Trim() (start, end float64) {
	start, end = r.TrimStart, r.TrimEnd
	if end == 0 {
		end = 1
	}
	if start < 0 {
		start = 0
	}
	if end > 1 {
		end = 1
	}
	if end < start {
		end = start
	}
	return start, end
}

// Validate checks the track invariants: positive tempo and step count,
// every note referencing a valid row and a step inside the grid, row
// volumes and trims inside [0,1] and envelope sustains inside [0,1].
func (t *Track) Validate() error {
	if t.BPM < 0 {
		return errors.New("BPM should be positive")
	}
	if t.Steps < 0 {
		return errors.New("step count should be positive")
	}
	if t.Kind == TrackImported {
		return nil
	}
	steps := t.StepCount()
	for i, n := range t.Notes {
		if n.Row < 0 || n.Row >= len(t.Rows) {
			return fmt.Errorf("note %v references row %v, track has %v rows", i, n.Row, len(t.Rows))
		}
		if n.Step < 0 || n.Step >= steps {
			return fmt.Errorf("note %v is at step %v, should be in [0,%v)", i, n.Step, steps)
		}
		if n.Duration < 0 {
			return fmt.Errorf("note %v has a negative duration", i)
		}
	}
	for i, r := range t.Rows {
		if r.Volume < 0 || r.Volume > 1 {
			return fmt.Errorf("row %v volume %v should be in [0,1]", i, r.Volume)
		}
		if r.TrimStart < 0 || r.TrimStart > 1 || r.TrimEnd < 0 || r.TrimEnd > 1 {
			return fmt.Errorf("row %v trim should be in [0,1]", i)
		}
		if env := r.Envelope; env != nil {
			if env.Sustain < 0 || env.Sustain > 1 {
				return fmt.Errorf("row %v envelope sustain %v should be in [0,1]", i, env.Sustain)
			}
			if env.Attack < 0 || env.Decay < 0 || env.Release < 0 {
				return fmt.Errorf("row %v envelope stages should be non-negative", i)
			}
		}
	}
	return nil
}

func (p Pitches) MarshalYAML() (interface{}, error) {
	if len(p) == 1 {
		return p[0], nil
	}
	return []string(p), nil
}

func (p *Pitches) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*p = Pitches{s}
		return nil
	case yaml.SequenceNode:
		var s []string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*p = s
		return nil
	}
	return errors.New("pitch should be a note name or a list of note names")
}

func (p Pitches) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	return json.Marshal([]string(p))
}

func (p *Pitches) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Pitches{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("pitch should be a note name or a list of note names")
	}
	*p = list
	return nil
}
