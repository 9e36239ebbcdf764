package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ItemReading holds the price and calories read for one menu item.
type ItemReading struct {
	Key      string
	Price    *float64
	Calories *int
}

// Record is one flattened result per processed image. Records with a
// non-empty Error carry no meaningful item readings.
type Record struct {
	Image       string
	Lat         *float64
	Lon         *float64
	Month       *string
	Year        *int
	Items       []ItemReading
	Error       string
	RawResponse *string
}

// Failed reports whether the record represents a failed extraction.
func (r Record) Failed() bool {
	return r.Error != ""
}

// Item returns the reading for key.
func (r Record) Item(key string) (ItemReading, bool) {
	for _, item := range r.Items {
		if item.Key == key {
			return item, true
		}
	}
	return ItemReading{}, false
}

// Price returns the price for key, or nil when absent.
func (r Record) Price(key string) *float64 {
	item, ok := r.Item(key)
	if !ok {
		return nil
	}
	return item.Price
}

// SortKey returns (year, month number); missing values rank as 0.
func (r Record) SortKey() (int, int) {
	year, month := 0, 0
	if r.Year != nil {
		year = *r.Year
	}
	if r.Month != nil {
		month = MonthNumber(*r.Month)
	}
	return year, month
}

// SortByDateDesc orders records by (year, month) descending. Records with an
// unknown month or year sort last; ties keep their input order.
func SortByDateDesc(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		yi, mi := records[i].SortKey()
		yj, mj := records[j].SortKey()
		if yi != yj {
			return yi > yj
		}
		return mi > mj
	})
}

type field struct {
	key   string
	value any
}

func (r Record) fields() []field {
	if r.Failed() {
		fields := []field{{"image", r.Image}, {"error", r.Error}}
		if r.RawResponse != nil {
			fields = append(fields, field{"raw_response", *r.RawResponse})
		}
		return fields
	}

	fields := []field{
		{"image", r.Image},
		{"lat", r.Lat},
		{"lon", r.Lon},
		{"month", r.Month},
		{"year", r.Year},
	}
	for _, item := range r.Items {
		fields = append(fields,
			field{PriceField(item.Key), item.Price},
			field{CaloriesField(item.Key), item.Calories},
		)
	}
	return fields
}

// MarshalJSON writes the record as a flat object with a stable key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", f.key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat record. Values are coerced leniently: anything
// that cannot be read as the field's type becomes nil. Unknown keys are ignored.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object")
	}

	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
		r.set(key, value)
	}

	_, err = dec.Token()
	return err
}

func (r *Record) set(key string, value any) {
	switch key {
	case "image":
		if value != nil {
			r.Image = fmt.Sprint(value)
		}
	case "lat":
		r.Lat = ToFloat(value)
	case "lon":
		r.Lon = ToFloat(value)
	case "month":
		r.Month = ToString(value)
	case "year":
		r.Year = ToInt(value)
	case "error":
		if value != nil {
			r.Error = fmt.Sprint(value)
		}
	case "raw_response":
		if s, ok := value.(string); ok {
			r.RawResponse = &s
		}
	default:
		if item, ok := strings.CutSuffix(key, "_price"); ok {
			r.reading(item).Price = ToFloat(value)
		} else if item, ok := strings.CutSuffix(key, "_calories"); ok {
			r.reading(item).Calories = ToInt(value)
		}
	}
}

func (r *Record) reading(key string) *ItemReading {
	for i := range r.Items {
		if r.Items[i].Key == key {
			return &r.Items[i]
		}
	}
	r.Items = append(r.Items, ItemReading{Key: key})
	return &r.Items[len(r.Items)-1]
}
