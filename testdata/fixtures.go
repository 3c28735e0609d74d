// Package testdata embeds recorded hand landmark captures used by
// integration and end-to-end tests. Each file under hands/ holds the
// detector output for a single frame, expressed in 640x480 pixel
// coordinates.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
)

//go:embed hands/*.json
var handsFS embed.FS

// Frame dimensions the embedded landmark coordinates are expressed in.
const (
	FrameWidth  = 640
	FrameHeight = 480
)

// LoadHands loads a recorded landmark capture by name, e.g. "open_hand".
func LoadHands(name string) ([]detector.HandLandmarks, error) {
	data, err := handsFS.ReadFile("hands/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load hands %s: %w", name, err)
	}

	var hands []detector.HandLandmarks
	if err := json.Unmarshal(data, &hands); err != nil {
		return nil, fmt.Errorf("decode hands %s: %w", name, err)
	}

	return hands, nil
}

// Names lists the available landmark captures.
func Names() ([]string, error) {
	entries, err := handsFS.ReadDir("hands")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		names = append(names, name[:len(name)-len(".json")])
	}

	return names, nil
}
