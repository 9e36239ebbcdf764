package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pders01/menu-inflation/internal/models"
)

// DecodeError describes why a model response could not be read as a menu snapshot.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Response is the decoded model output. Every field is optional.
type Response struct {
	Lat   *float64
	Lon   *float64
	Month *string
	Year  *int
	Items []models.ItemReading
}

// DecodeResponse reads the model's text as a menu snapshot. Missing or extra
// keys never fail; a body that is not a JSON object, an "items" value that is
// not an object, or an item entry that is neither an object nor null yields
// a *DecodeError.
func DecodeResponse(raw string) (*Response, error) {
	var top map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &top); err != nil {
		return nil, &DecodeError{Reason: "response is not a JSON object", Err: err}
	}
	if top == nil {
		return nil, &DecodeError{Reason: "response is null"}
	}

	resp := &Response{
		Lat:   models.ToFloat(top["lat"]),
		Lon:   models.ToFloat(top["lon"]),
		Month: models.ToString(top["month"]),
		Year:  models.ToInt(top["year"]),
	}

	rawItems, ok := top["items"]
	if !ok || rawItems == nil {
		return resp, nil
	}
	items, ok := rawItems.(map[string]any)
	if !ok {
		return nil, &DecodeError{Reason: fmt.Sprintf("items must be an object, got %T", rawItems)}
	}

	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		reading := models.ItemReading{Key: models.FieldKey(name)}
		switch info := items[name].(type) {
		case nil:
		case map[string]any:
			reading.Price = models.ToFloat(info["price"])
			reading.Calories = models.ToInt(info["calories"])
		default:
			return nil, &DecodeError{Reason: fmt.Sprintf("item %q must be an object, got %T", name, info)}
		}
		resp.Items = append(resp.Items, reading)
	}

	return resp, nil
}

// Normalize flattens raw model output for one image into a record. The
// result always lists every tracked item, with nulls for anything the model
// did not report. Items the model reported beyond the tracked set follow in
// key order. Decoding failures become an error record carrying the raw text.
func Normalize(raw, image string, items []models.TrackedItem) models.Record {
	resp, err := DecodeResponse(raw)
	if err != nil {
		return models.Record{
			Image:       image,
			Error:       err.Error(),
			RawResponse: &raw,
		}
	}

	rec := models.Record{
		Image: image,
		Lat:   resp.Lat,
		Lon:   resp.Lon,
		Month: resp.Month,
		Year:  resp.Year,
	}

	reported := make(map[string]models.ItemReading, len(resp.Items))
	for _, r := range resp.Items {
		reported[r.Key] = r
	}

	for _, item := range items {
		key := models.FieldKey(item.Key)
		reading, ok := reported[key]
		if !ok {
			reading = models.ItemReading{Key: key}
		}
		rec.Items = append(rec.Items, reading)
		delete(reported, key)
	}
	for _, r := range resp.Items {
		if extra, ok := reported[r.Key]; ok {
			rec.Items = append(rec.Items, extra)
			delete(reported, r.Key)
		}
	}

	return rec
}

// FailedRecord is the record for an image whose model call failed outright.
func FailedRecord(image string, err error) models.Record {
	return models.Record{Image: image, Error: err.Error()}
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
