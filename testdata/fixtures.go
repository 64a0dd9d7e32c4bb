// Package testdata provides recorded hand landmark fixtures for tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gocv.io/x/gocv"

	"github.com/ayusman/handsign/internal/detector"
)

//go:embed landmarks/*.json
var landmarksFS embed.FS

// Counts maps each fixture to the number of extended fingers it shows.
// no_hand has no entry.
var Counts = map[string]int{
	"fist":      0,
	"one":       1,
	"victory":   2,
	"three":     3,
	"four":      4,
	"open_palm": 5,
}

// LoadHands loads a landmark fixture by name, in the helper's response format.
func LoadHands(name string) ([]detector.HandLandmarks, error) {
	data, err := landmarksFS.ReadFile("landmarks/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load landmarks %s: %w", name, err)
	}

	var response struct {
		Hands []detector.JSONHand `json:"hands"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("decode landmarks %s: %w", name, err)
	}

	hands := make([]detector.HandLandmarks, 0, len(response.Hands))
	for _, h := range response.Hands {
		hands = append(hands, h.HandLandmarks())
	}
	return hands, nil
}

// Names lists the available fixtures in sorted order.
func Names() []string {
	entries, err := fs.ReadDir(landmarksFS, "landmarks")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	sort.Strings(names)
	return names
}

// Frame returns a black BGR frame of the given size. The caller closes it.
func Frame(width, height int) gocv.Mat {
	return gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
}
