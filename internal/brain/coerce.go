package brain

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Numeric coercion never signals an error: everything that is not a finite
// number collapses to null and flows through the decision tables as the most
// conservative case.

// NumberOrNull returns a finite float64 or nil. Accepts JSON numbers,
// numeric strings and booleans are rejected. NaN and Inf collapse to nil.
func NumberOrNull(v gjson.Result) *float64 {
	switch v.Type {
	case gjson.Number:
		return finiteOrNull(v.Num)
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return finiteOrNull(f)
	default:
		return nil
	}
}

// StringOrEmpty returns the trimmed string form of a JSON scalar, and ""
// for null, missing, objects and arrays.
func StringOrEmpty(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return strings.TrimSpace(v.Str)
	case gjson.Number, gjson.True, gjson.False:
		return strings.TrimSpace(v.Raw)
	default:
		return ""
	}
}

// BoolOrDefault reads booleans and their usual string/number spellings.
func BoolOrDefault(v gjson.Result, def bool) bool {
	switch v.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		switch strings.ToLower(strings.TrimSpace(v.Str)) {
		case "1", "true", "yes", "y":
			return true
		case "0", "false", "no", "n":
			return false
		}
	}
	return def
}

// ClampPercent bounds a percentage to [-1000, 1000] so divide-by-near-zero
// blowups cannot propagate unbounded values into summaries. Null passes
// through.
func ClampPercent(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	if v > 1000 {
		v = 1000
	} else if v < -1000 {
		v = -1000
	}
	return &v
}

// NormalizeConfidence converts confidence to the 0..100 scale. Values <= 1
// are treated as fractions and scaled by 100; anything larger is assumed to
// be a percentage already. This is the single conversion point regardless of
// upstream convention.
func NormalizeConfidence(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	if v <= 1 {
		v *= 100
	}
	return &v
}

// IntOrNull is NumberOrNull truncated to an int, for pass-through counts.
func IntOrNull(v gjson.Result) *int {
	f := NumberOrNull(v)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

func finiteOrNull(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
