package syke

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ReadTrack parses a track from JSON or YAML bytes. JSON is tried first
// so that files exported by other tooling round-trip; YAML is the native
// format.
func ReadTrack(data []byte) (Track, error) {
	var track Track
	if errJSON := json.Unmarshal(data, &track); errJSON != nil {
		if errYaml := yaml.Unmarshal(data, &track); errYaml != nil {
			return Track{}, fmt.Errorf("the track could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	return track, nil
}

// WriteTrack serializes a track, choosing the codec from the file
// extension: ".json" writes JSON, everything else YAML.
func WriteTrack(track *Track, extension string) ([]byte, error) {
	var contents []byte
	var err error
	if extension == ".json" {
		contents, err = json.Marshal(track)
	} else {
		contents, err = yaml.Marshal(track)
	}
	if err != nil {
		return nil, fmt.Errorf("error marshaling a track file: %v", err)
	}
	return contents, nil
}
