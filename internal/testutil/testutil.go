package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/pders01/menu-inflation/internal/models"
	"github.com/pders01/menu-inflation/internal/vision"
	"github.com/spf13/afero"
)

// Workspace is an in-memory filesystem holding test images and outputs
type Workspace struct {
	Fs afero.Fs
	T  *testing.T
}

// NewWorkspace creates an empty in-memory workspace
func NewWorkspace(t *testing.T) *Workspace {
	t.Helper()
	return &Workspace{
		Fs: afero.NewMemMapFs(),
		T:  t,
	}
}

// CreateFile creates a file in the workspace
func (w *Workspace) CreateFile(name, content string) {
	w.T.Helper()
	if err := w.Fs.MkdirAll(filepath.Dir(name), 0755); err != nil {
		w.T.Fatalf("failed to create directory: %v", err)
	}
	if err := afero.WriteFile(w.Fs, name, []byte(content), 0644); err != nil {
		w.T.Fatalf("failed to create file: %v", err)
	}
}

// CreateImages creates placeholder image files in dir
func (w *Workspace) CreateImages(dir string, names ...string) {
	w.T.Helper()
	for _, name := range names {
		w.CreateFile(filepath.Join(dir, name), "image:"+name)
	}
}

// FileExists checks if a file exists in the workspace
func (w *Workspace) FileExists(name string) bool {
	w.T.Helper()
	ok, err := afero.Exists(w.Fs, name)
	return err == nil && ok
}

// ReadFile returns the content of a workspace file
func (w *Workspace) ReadFile(name string) string {
	w.T.Helper()
	data, err := afero.ReadFile(w.Fs, name)
	if err != nil {
		w.T.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

// FakeVision is a vision.Client returning canned responses per image name
type FakeVision struct {
	Model     string
	Responses map[string]string
	Errors    map[string]error
	Calls     []vision.Image
	Prompts   []string
}

// Extract records the call and returns the canned response for img.Name
func (f *FakeVision) Extract(ctx context.Context, img vision.Image, prompt string) (string, error) {
	f.Calls = append(f.Calls, img)
	f.Prompts = append(f.Prompts, prompt)

	if err, ok := f.Errors[img.Name]; ok {
		return "", err
	}
	if resp, ok := f.Responses[img.Name]; ok {
		return resp, nil
	}
	return "", fmt.Errorf("no canned response for %s", img.Name)
}

// GetModel returns Model, or "fake-vision" when unset
func (f *FakeVision) GetModel() string {
	if f.Model == "" {
		return "fake-vision"
	}
	return f.Model
}

// FetchCall records one FakeFetcher.Fetch invocation
type FetchCall struct {
	SeriesID  string
	StartYear int
	EndYear   int
}

// FakeFetcher is an index fetcher returning a fixed series or error
type FakeFetcher struct {
	Series models.CPISeries
	Err    error
	Calls  []FetchCall
}

// Fetch records the call and returns the configured result
func (f *FakeFetcher) Fetch(ctx context.Context, seriesID string, startYear, endYear int) (models.CPISeries, error) {
	f.Calls = append(f.Calls, FetchCall{SeriesID: seriesID, StartYear: startYear, EndYear: endYear})
	if f.Err != nil {
		return models.CPISeries{}, f.Err
	}
	return f.Series, nil
}

// MenuJSON builds a model response for the given date and per-item prices.
// Items absent from prices are reported with null price and calories.
func MenuJSON(month string, year int, prices map[string]float64) string {
	items := ""
	for _, key := range models.ItemKeys(models.DefaultItems) {
		if items != "" {
			items += ","
		}
		if p, ok := prices[key]; ok {
			items += fmt.Sprintf(`%q:{"price":%g,"calories":500}`, key, p)
		} else {
			items += fmt.Sprintf(`%q:{"price":null,"calories":null}`, key)
		}
	}
	return fmt.Sprintf(`{"lat":33.95,"lon":-118.39,"month":%q,"year":%d,"items":{%s}}`, month, year, items)
}

// MonthlyCPI builds a CPI series with one value per month from start for n months.
func MonthlyCPI(seriesID string, start models.CPIPoint, n int, step float64) models.CPISeries {
	series := models.CPISeries{SeriesID: seriesID}
	for i := 0; i < n; i++ {
		series.Points = append(series.Points, models.CPIPoint{
			Date:  start.Date.AddDate(0, i, 0),
			Value: start.Value + float64(i)*step,
		})
	}
	return series
}
