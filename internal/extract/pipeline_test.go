package extract

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pders01/menu-inflation/internal/config"
	"github.com/pders01/menu-inflation/internal/models"
	"github.com/pders01/menu-inflation/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(ws *testutil.Workspace, fake *testutil.FakeVision) (*Extractor, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &Extractor{
		Fs:     ws.Fs,
		Client: fake,
		Out:    &out,
		Err:    &errOut,
		Now:    func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
	}, &out, &errOut
}

func TestRunProducesOneRecordPerImage(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	ws.CreateImages("images", "01.png", "02.png", "03.jpg", "04.png", "05.jpeg")

	fake := &testutil.FakeVision{
		Responses: map[string]string{
			"01.png":  testutil.MenuJSON("March", 2021, map[string]float64{"doubledouble": 3.0}),
			"02.png":  testutil.MenuJSON("Marchh", 2020, nil),
			"03.jpg":  `{"broken"`,
			"05.jpeg": testutil.MenuJSON("January", 2023, map[string]float64{"doubledouble": 4.0}),
		},
		Errors: map[string]error{
			"04.png": errors.New("rate limited"),
		},
	}
	extractor, out, errOut := newTestExtractor(ws, fake)

	result, err := extractor.Run(context.Background(), config.Default())
	require.NoError(t, err)

	require.Len(t, result.Records, 5)
	assert.Equal(t, 2, result.Failed)
	assert.NotEmpty(t, result.RunID)

	var calls []string
	for _, img := range fake.Calls {
		calls = append(calls, img.Name)
	}
	assert.Equal(t, []string{"01.png", "02.png", "03.jpg", "04.png", "05.jpeg"}, calls)
	assert.Equal(t, "image/jpeg", fake.Calls[2].ContentType)
	assert.Equal(t, []byte("image:01.png"), fake.Calls[0].Data)

	seen := map[string]int{}
	for _, rec := range result.Records {
		seen[rec.Image]++
	}
	assert.Len(t, seen, 5)

	assert.Contains(t, out.String(), "[5/5] 05.jpeg")
	assert.Contains(t, errOut.String(), "04.png: rate limited")
}

func TestRunSortsAndPersists(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	ws.CreateImages("images", "a.png", "b.png", "c.png", "d.png")

	fake := &testutil.FakeVision{Model: "gpt-4o-mini", Responses: map[string]string{
		"a.png": testutil.MenuJSON("March", 2020, nil),
		"b.png": testutil.MenuJSON("December", 2021, nil),
		"c.png": `garbage`,
		"d.png": testutil.MenuJSON("January", 2021, nil),
	}}
	extractor, _, _ := newTestExtractor(ws, fake)
	cfg := config.Default()
	cfg.Data.File = "out/menu.json"

	_, err := extractor.Run(context.Background(), cfg)
	require.NoError(t, err)

	loaded, err := ReadCollection(ws.Fs, "out/menu.json")
	require.NoError(t, err)

	var order []string
	for _, rec := range loaded {
		order = append(order, rec.Image)
	}
	assert.Equal(t, []string{"b.png", "d.png", "a.png", "c.png"}, order)

	meta, err := ReadMetadata(ws.Fs, "out/menu.json")
	require.NoError(t, err)
	assert.Equal(t, 4, meta.Images)
	assert.Equal(t, 1, meta.Failed)
	assert.Equal(t, "gpt-4o-mini", meta.Model)
	assert.Equal(t, models.ItemKeys(models.DefaultItems), meta.Items)
}

func TestRunNoImages(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	ws.CreateImages("images", "readme.txt")

	extractor, _, _ := newTestExtractor(ws, &testutil.FakeVision{})

	_, err := extractor.Run(context.Background(), config.Default())
	assert.ErrorIs(t, err, ErrNoImages)
	assert.False(t, ws.FileExists("data/menu_inflation.json"))
}

func TestRunCancelled(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	ws.CreateImages("images", "a.png")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor, _, _ := newTestExtractor(ws, &testutil.FakeVision{})
	_, err := extractor.Run(ctx, config.Default())
	assert.ErrorIs(t, err, context.Canceled)
}
