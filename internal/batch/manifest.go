package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one frame in the output manifest.
type ManifestEntry struct {
	Index    int     `json:"index"`
	TimeMS   float64 `json:"time_ms"`
	Coverage float64 `json:"coverage"`
	Image    string  `json:"image,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// WriteManifest writes manifest.json describing a batch run. Coverage is
// the fraction of color pixels taken from the live feed.
func WriteManifest(path string, results []Result, colorPixels int) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Index:  r.Index,
			TimeMS: float64(r.Time.Microseconds()) / 1000,
			Image:  r.Image,
			Error:  r.Error,
		}
		if colorPixels > 0 {
			entries[i].Coverage = float64(r.Coverage) / float64(colorPixels)
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
