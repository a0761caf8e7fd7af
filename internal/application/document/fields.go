package document

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// lookup resolves the first path that holds a usable value. Paths use dots to
// walk nested objects ("client.name"). Nil values and blank strings are
// treated as absent so a later alias can win.
func lookup(m map[string]any, paths ...string) (any, bool) {
	for _, p := range paths {
		v, ok := walk(m, p)
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func walk(m map[string]any, path string) (any, bool) {
	cur := any(m)
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func lookupMap(m map[string]any, paths ...string) (map[string]any, bool) {
	for _, p := range paths {
		v, ok := walk(m, p)
		if !ok {
			continue
		}
		if obj, isMap := v.(map[string]any); isMap {
			return obj, true
		}
	}
	return nil, false
}

func lookupList(m map[string]any, paths ...string) ([]any, bool) {
	for _, p := range paths {
		v, ok := walk(m, p)
		if !ok {
			continue
		}
		if list, isList := v.([]any); isList {
			return list, true
		}
	}
	return nil, false
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// toDecimal parses numbers that may arrive as JSON numbers or formatted
// strings such as "Rs. 1,250.00".
func toDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat32(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		return d, err == nil
	case string:
		cleaned := strings.NewReplacer(",", "", "₹", "", "Rs.", "", "Rs", "", "INR", "", "%", "", " ", "").Replace(val)
		if cleaned == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(cleaned)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

func toBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case json.Number:
		return val.String() != "0"
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "y", "1", "on":
			return true
		}
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02-01-2006",
}

func toDate(v any) (time.Time, bool) {
	s := toString(v)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
