package docstore

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// String reads a field as text; numbers are rendered so numeric legacy ids survive.
func String(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprint(v)
	default:
		return fmt.Sprint(v)
	}
}

func Decimal(data map[string]any, key string) decimal.Decimal {
	switch v := data[key].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case decimal.Decimal:
		return v
	}
	if f, ok := toFloat(data[key]); ok {
		return decimal.NewFromFloat(f)
	}
	return decimal.Zero
}

func Int(data map[string]any, key string) int {
	if f, ok := toFloat(data[key]); ok {
		return int(f)
	}
	return 0
}

func Bool(data map[string]any, key string) bool {
	b, _ := data[key].(bool)
	return b
}

// Time accepts native timestamps, RFC3339 strings (JSON backends) and epoch millis.
func Time(data map[string]any, key string) time.Time {
	switch v := data[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	if f, ok := toFloat(data[key]); ok {
		return time.UnixMilli(int64(f)).UTC()
	}
	return time.Time{}
}

func Strings(data map[string]any, key string) []string {
	raw, ok := data[key].([]any)
	if !ok {
		if s, ok := data[key].([]string); ok {
			return s
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func Maps(data map[string]any, key string) []map[string]any {
	switch raw := data[key].(type) {
	case []map[string]any:
		return raw
	case []any:
		out := make([]map[string]any, 0, len(raw))
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func Map(data map[string]any, key string) map[string]any {
	m, _ := data[key].(map[string]any)
	return m
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
