package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseInt parses a numeric CSV field. Integral floats such as "1999.0",
// which spreadsheet exports produce for numeric columns, are accepted.
func ParseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as integer", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("cannot parse %q as integer", s)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("value %q out of range", s)
	}
	return int(f), nil
}

// ConvertToInt converts a driver or CSV value to int.
func ConvertToInt(val interface{}) (int, error) {
	switch v := val.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return ParseInt(v)
	case []byte:
		return ParseInt(string(v))
	default:
		return 0, fmt.Errorf("cannot convert %T to int", val)
	}
}

// ConvertToInt64 is ConvertToInt widened for surrogate ids.
func ConvertToInt64(val interface{}) (int64, error) {
	switch v := val.(type) {
	case int64:
		return v, nil
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		n, err := ConvertToInt(val)
		return int64(n), err
	}
}

// Nullable returns p's value, or nil so the driver binds SQL NULL.
func Nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

var isbnSeparators = strings.NewReplacer("-", "", " ", "")

// NormalizeISBN removes hyphens and spaces, keeping everything else.
func NormalizeISBN(raw string) string {
	return isbnSeparators.Replace(strings.TrimSpace(raw))
}
