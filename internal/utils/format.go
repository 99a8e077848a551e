package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormatValue renders a field value for display. Unrecognized or absent
// formats fall back to the raw value; nil renders as an empty string.
func FormatValue(v interface{}, valueType string) string {
	if v == nil {
		return ""
	}

	switch valueType {
	case "currency":
		if f, ok := ToFloat(v); ok {
			return "$" + addThousands(fmt.Sprintf("%.2f", f))
		}
	case "percentage":
		if f, ok := ToFloat(v); ok {
			return strconv.FormatFloat(round2(f), 'f', -1, 64) + "%"
		}
	case "date":
		if t, ok := ToTime(v); ok {
			return t.Format("Jan 2, 2006")
		}
	}

	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		return val.Format("Jan 2, 2006")
	case primitive.DateTime:
		return val.Time().Format("Jan 2, 2006")
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	}
	return fmt.Sprintf("%v", v)
}

// ToFloat coerces the numeric shapes JSON and BSON decoding produce
func ToFloat(v interface{}) (float64, bool) {
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
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// ToTime coerces time values from BSON dates, time.Time, and common string layouts
func ToTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
		if parsed, err := time.Parse("2006-01-02", t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// addThousands inserts comma separators into the integer part of a
// formatted decimal string
func addThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if i := strings.Index(s, "."); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
