package models

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// ToFloat coerces a decoded JSON value to a float. Values that are not
// numbers or numeric strings (currency symbols and separators allowed)
// yield nil.
func ToFloat(v any) *float64 {
	switch t := v.(type) {
	case nil, bool:
		return nil
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return nil
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ToInt coerces a decoded JSON value to an int, following ToFloat's rules.
func ToInt(v any) *int {
	f := ToFloat(v)
	if f == nil {
		return nil
	}
	n, err := cast.ToIntE(math.Round(*f))
	if err != nil {
		return nil
	}
	return &n
}

// ToString returns a pointer to v when v is a non-empty string.
func ToString(v any) *string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
