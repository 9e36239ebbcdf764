package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pders01/menu-inflation/internal/config"
	"github.com/pders01/menu-inflation/internal/models"
	"github.com/pders01/menu-inflation/internal/vision"
	"github.com/spf13/afero"
)

// ErrNoImages is returned when the image directory holds no matching files.
var ErrNoImages = errors.New("no images found")

// Extractor runs the extraction stage: one model call per image, one record
// per image, sorted and written as a single collection.
type Extractor struct {
	Fs     afero.Fs
	Client vision.Client
	Out    io.Writer
	Err    io.Writer
	Now    func() time.Time
}

// Result summarizes a finished extraction run.
type Result struct {
	RunID   string
	Records []models.Record
	Failed  int
}

// Run processes every image under cfg.Images.Dir in filename order. Per-image
// failures become error records; only configuration, listing, context
// cancellation and output failures abort the run.
func (e *Extractor) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	names, err := ListImages(e.Fs, cfg.Images.Dir, cfg.Images.Extensions)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in '%s'", ErrNoImages, cfg.Images.Dir)
	}

	result := &Result{RunID: uuid.NewString()}
	prompt := vision.BuildPrompt(cfg.Items)

	fmt.Fprintf(e.Out, "Run %s: processing %d image(s) from %s with %s\n", result.RunID, len(names), cfg.Images.Dir, e.Client.GetModel())

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extraction interrupted at %s: %w", name, err)
		}

		fmt.Fprintf(e.Out, "  [%d/%d] %s\n", i+1, len(names), name)

		rec := e.process(ctx, cfg, name, prompt)
		if rec.Failed() {
			result.Failed++
			fmt.Fprintf(e.Err, "Warning: could not process %s: %s\n", name, rec.Error)
		}
		result.Records = append(result.Records, rec)
	}

	models.SortByDateDesc(result.Records)

	if err := WriteCollection(e.Fs, cfg.Data.File, result.Records); err != nil {
		return nil, err
	}

	meta := &models.RunMetadata{
		RunID:     result.RunID,
		CreatedAt: e.now(),
		Provider:  cfg.Vision.Provider,
		Model:     e.Client.GetModel(),
		ImageDir:  cfg.Images.Dir,
		Images:    len(names),
		Failed:    result.Failed,
		Items:     models.ItemKeys(cfg.Items),
		DataFile:  cfg.Data.File,
	}
	if err := WriteMetadata(e.Fs, cfg.Data.File, meta); err != nil {
		fmt.Fprintf(e.Err, "Warning: failed to write run metadata: %v\n", err)
	}

	fmt.Fprintf(e.Out, "\n✓ Done! Saved %d record(s) to %s (%d failed)\n", len(result.Records), cfg.Data.File, result.Failed)

	return result, nil
}

func (e *Extractor) process(ctx context.Context, cfg *config.Config, name, prompt string) models.Record {
	data, err := afero.ReadFile(e.Fs, filepath.Join(cfg.Images.Dir, name))
	if err != nil {
		return FailedRecord(name, fmt.Errorf("failed to read image: %w", err))
	}

	img := vision.Image{
		Name:        name,
		Data:        data,
		ContentType: vision.ContentTypeFor(name),
	}

	raw, err := e.Client.Extract(ctx, img, prompt)
	if err != nil {
		return FailedRecord(name, err)
	}

	return Normalize(raw, name, cfg.Items)
}

func (e *Extractor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
