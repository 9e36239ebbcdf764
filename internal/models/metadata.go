package models

import "time"

// RunMetadata describes one extraction run and is written next to the
// collection as <data file>.meta.json.
type RunMetadata struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	ImageDir  string    `json:"image_dir"`
	Images    int       `json:"images"`
	Failed    int       `json:"failed"`
	Items     []string  `json:"items"`
	DataFile  string    `json:"data_file"`
}

// MetadataPath returns the sidecar metadata path for a collection file.
func MetadataPath(dataFile string) string {
	return dataFile + ".meta.json"
}
