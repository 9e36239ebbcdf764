package models

import "strings"

// TrackedItem is a menu item the extraction prompt asks for.
// Key is the stable field prefix used in flattened records (e.g. "doubledouble").
type TrackedItem struct {
	Name string `json:"name" mapstructure:"name" toml:"name"`
	Key  string `json:"key" mapstructure:"key" toml:"key"`
}

// DefaultItems are the In-N-Out menu items tracked when no items are configured.
var DefaultItems = []TrackedItem{
	{Name: "Double-Double", Key: "doubledouble"},
	{Name: "Cheeseburger", Key: "cheeseburger"},
	{Name: "Hamburger", Key: "hamburger"},
	{Name: "French Fries", Key: "frenchfries"},
	{Name: "Shakes", Key: "shakes"},
}

// FieldKey turns an item name reported by the model into a field prefix.
func FieldKey(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// PriceField returns the flattened price field name for an item key.
func PriceField(key string) string {
	return key + "_price"
}

// CaloriesField returns the flattened calories field name for an item key.
func CaloriesField(key string) string {
	return key + "_calories"
}

// ItemKeys returns the keys of the given items in order.
func ItemKeys(items []TrackedItem) []string {
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = item.Key
	}
	return keys
}

// ItemName returns the display name for key, or key itself if it is not tracked.
func ItemName(items []TrackedItem, key string) string {
	for _, item := range items {
		if item.Key == key {
			return item.Name
		}
	}
	return key
}
