package export

import (
	"bytes"
	"testing"

	"github.com/pders01/menu-inflation/internal/analysis"
	"github.com/pders01/menu-inflation/internal/extract"
	"github.com/pders01/menu-inflation/internal/models"
	"github.com/pders01/menu-inflation/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleWorkbook() Workbook {
	prices := map[string]float64{"doubledouble": 4.15, "cheeseburger": 3.1, "hamburger": 2.75, "frenchfries": 2.05}
	records := []models.Record{
		extract.Normalize(testutil.MenuJSON("January", 2023, prices), "a.png", models.DefaultItems),
		extract.Normalize(`{"items":{"animal fries":{"price":4.5}}}`, "b.png", models.DefaultItems),
		extract.Normalize("oops", "c.png", models.DefaultItems),
	}
	keys := []string{"doubledouble", "cheeseburger", "hamburger", "frenchfries"}
	return Workbook{
		Items:   models.DefaultItems,
		Records: records,
		Series:  analysis.Clean(records, keys),
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleWorkbook()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Records", "Cleaned"}, f.GetSheetList())

	rows, err := f.GetRows("Records")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "image", rows[0][0])
	assert.Equal(t, "animal_fries_price", rows[0][15])
	assert.Equal(t, "error", rows[0][17])
	assert.Equal(t, "a.png", rows[1][0])
	assert.Equal(t, "January", rows[1][3])
	assert.Equal(t, "4.15", rows[1][5])

	cleaned, err := f.GetRows("Cleaned")
	require.NoError(t, err)
	require.Len(t, cleaned, 2)
	assert.Equal(t, []string{"date", "Double-Double", "Cheeseburger", "Hamburger", "French Fries"}, cleaned[0])
	assert.Equal(t, "2023-01-01", cleaned[1][0])
}

func TestWriteWorkbookWithAdjusted(t *testing.T) {
	wb := sampleWorkbook()
	wb.TrendItem = "doubledouble"
	wb.Adjusted = []analysis.AdjustedPoint{
		{Date: models.MonthStart(2023, 1), Price: 4.15, CPI: 340.2, Adjusted: 4.15},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, wb))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Adjusted")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Double-Double adjusted", rows[0][4])
}

func TestRecordColumns(t *testing.T) {
	wb := sampleWorkbook()
	assert.Equal(t,
		[]string{"doubledouble", "cheeseburger", "hamburger", "frenchfries", "shakes", "animal_fries"},
		RecordColumns(wb.Items, wb.Records))
}
