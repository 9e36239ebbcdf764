package extract

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/pders01/menu-inflation/internal/models"
	"github.com/spf13/afero"
)

// WriteCollection replaces the collection at path with records.
func WriteCollection(fs afero.Fs, path string, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}

	return writeFile(fs, path, data)
}

// ReadCollection loads a collection written by WriteCollection. A missing
// file is reported with an error wrapping fs.ErrNotExist.
func ReadCollection(fs afero.Fs, path string) ([]models.Record, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}

	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse collection %s: %w", path, err)
	}

	return records, nil
}

// WriteMetadata writes the run metadata sidecar for the collection at dataFile.
func WriteMetadata(fs afero.Fs, dataFile string, meta *models.RunMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return writeFile(fs, models.MetadataPath(dataFile), data)
}

// ReadMetadata reads the run metadata sidecar for the collection at dataFile.
func ReadMetadata(fs afero.Fs, dataFile string) (*models.RunMetadata, error) {
	data, err := afero.ReadFile(fs, models.MetadataPath(dataFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta models.RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &meta, nil
}

// writeFile writes data to a sibling temp file and renames it over path.
func writeFile(fs afero.Fs, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
