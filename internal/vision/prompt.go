package vision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pders01/menu-inflation/internal/models"
)

// BuildPrompt returns the extraction instruction for the given tracked items.
// Every item must come back as an object with explicit nulls so that the
// normalizer always sees the full key set.
func BuildPrompt(items []models.TrackedItem) string {
	var list strings.Builder
	for _, item := range items {
		fmt.Fprintf(&list, "    - %s (key: %q)\n", item.Name, item.Key)
	}

	return fmt.Sprintf(`
You are looking at a drive-thru menu at an In-N-Out location, taken from a Google Street View screenshot.

Please extract the following information:

1.  **Location**: The latitude and longitude, if visible in the browser's URL bar. If not visible, return `+"`null`"+` for `+"`lat`"+` and `+"`lon`"+`.
2.  **Date**: The month and year shown in the top left of the Google Street View interface. The month must be the full English month name.
3.  **Menu Items**: For each of the following items, extract the price and calories, using the given key under "items".
%s
**Formatting Rules**:
- Return a single valid JSON object and nothing else.
- For each menu item, **always return an object**.
- If a `+"`price`"+` or `+"`calories`"+` value is not visible or cannot be determined for an item, return `+"`null`"+` for that specific field. Do not omit the item itself.

Example of the expected JSON structure:
%s
`, list.String(), exampleJSON(items))
}

func exampleJSON(items []models.TrackedItem) string {
	type reading struct {
		Price    *float64 `json:"price"`
		Calories *int     `json:"calories"`
	}
	price, calories := 4.45, 670

	example := struct {
		Lat   float64            `json:"lat"`
		Lon   float64            `json:"lon"`
		Month string             `json:"month"`
		Year  int                `json:"year"`
		Items map[string]reading `json:"items"`
	}{
		Lat:   33.9535714,
		Lon:   -118.3967684,
		Month: "November",
		Year:  2020,
		Items: make(map[string]reading, len(items)),
	}
	for i, item := range items {
		if i == len(items)-1 && len(items) > 1 {
			example.Items[item.Key] = reading{}
			continue
		}
		example.Items[item.Key] = reading{Price: &price, Calories: &calories}
	}

	out, _ := json.MarshalIndent(example, "", "  ")
	return string(out)
}
