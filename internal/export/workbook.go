package export

import (
	"fmt"
	"io"

	"github.com/pders01/menu-inflation/internal/analysis"
	"github.com/pders01/menu-inflation/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	recordsSheet  = "Records"
	cleanedSheet  = "Cleaned"
	adjustedSheet = "Adjusted"
)

// Workbook is the content of an exported spreadsheet. Adjusted is optional.
type Workbook struct {
	Items     []models.TrackedItem
	Records   []models.Record
	Series    models.PriceSeries
	TrendItem string
	Adjusted  []analysis.AdjustedPoint
}

// Write renders wb as an xlsx document to w.
func Write(w io.Writer, wb Workbook) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeRecords(f, wb); err != nil {
		return err
	}

	if _, err := f.NewSheet(cleanedSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	if err := writeCleaned(f, wb); err != nil {
		return err
	}

	if len(wb.Adjusted) > 0 {
		if _, err := f.NewSheet(adjustedSheet); err != nil {
			return fmt.Errorf("failed to add sheet: %w", err)
		}
		if err := writeAdjusted(f, wb); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// RecordColumns returns the item keys present across records: tracked
// items first, then any others in order of first appearance.
func RecordColumns(items []models.TrackedItem, records []models.Record) []string {
	keys := models.ItemKeys(items)
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, rec := range records {
		for _, item := range rec.Items {
			if !seen[item.Key] {
				seen[item.Key] = true
				keys = append(keys, item.Key)
			}
		}
	}
	return keys
}

func writeRecords(f *excelize.File, wb Workbook) error {
	keys := RecordColumns(wb.Items, wb.Records)

	header := []any{"image", "lat", "lon", "month", "year"}
	for _, key := range keys {
		header = append(header, models.PriceField(key), models.CaloriesField(key))
	}
	header = append(header, "error")
	if err := setRow(f, recordsSheet, 1, header); err != nil {
		return err
	}

	for i, rec := range wb.Records {
		row := []any{rec.Image, cell(rec.Lat), cell(rec.Lon), cell(rec.Month), cell(rec.Year)}
		for _, key := range keys {
			item, _ := rec.Item(key)
			row = append(row, cell(item.Price), cell(item.Calories))
		}
		row = append(row, rec.Error)
		if err := setRow(f, recordsSheet, i+2, row); err != nil {
			return err
		}
	}

	return f.SetColWidth(recordsSheet, "A", "A", 24)
}

func writeCleaned(f *excelize.File, wb Workbook) error {
	header := []any{"date"}
	for _, key := range wb.Series.Items {
		header = append(header, models.ItemName(wb.Items, key))
	}
	if err := setRow(f, cleanedSheet, 1, header); err != nil {
		return err
	}

	for i, p := range wb.Series.Points {
		row := []any{p.Date.Format("2006-01-02")}
		for _, key := range wb.Series.Items {
			row = append(row, p.Prices[key])
		}
		if err := setRow(f, cleanedSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeAdjusted(f *excelize.File, wb Workbook) error {
	name := models.ItemName(wb.Items, wb.TrendItem)
	header := []any{"date", name + " price", "cpi", "cpi filled", name + " adjusted"}
	if err := setRow(f, adjustedSheet, 1, header); err != nil {
		return err
	}

	for i, p := range wb.Adjusted {
		row := []any{p.Date.Format("2006-01-02"), p.Price, p.CPI, p.Filled, p.Adjusted}
		if err := setRow(f, adjustedSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func cell[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
