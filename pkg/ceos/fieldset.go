package ceos

import (
	"fmt"
	"math"
	"strings"
)

// FieldSet offers typed helpers on top of a decoded record's fields.
type FieldSet struct {
	data map[string]any
}

// FieldSet returns a FieldSet wrapper for the record's fields.
func (r Record) FieldSet() FieldSet {
	return FieldSet{data: r.Map()}
}

// Map exposes the underlying map for callers that still need raw access.
func (fs FieldSet) Map() map[string]any {
	return fs.data
}

// Raw returns the stored value without conversions.
func (fs FieldSet) Raw(key string) (any, bool) {
	if fs.data == nil {
		return nil, false
	}
	v, ok := fs.data[key]
	return v, ok
}

// Float returns a decimal field, or an integer field widened to float64.
func (fs FieldSet) Float(key string) (float64, error) {
	v, ok := fs.Raw(key)
	if !ok {
		return 0, fmt.Errorf("field %q missing", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("field %q has unsupported type %T", key, v)
	}
}

// Int returns an integer or binary field.
func (fs FieldSet) Int(key string) (int64, error) {
	v, ok := fs.Raw(key)
	if !ok {
		return 0, fmt.Errorf("field %q missing", key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("field %q value %d overflows int64, use Uint", key, n)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("field %q has unsupported type %T", key, v)
	}
}

// Uint returns a binary field.
func (fs FieldSet) Uint(key string) (uint64, error) {
	v, ok := fs.Raw(key)
	if !ok {
		return 0, fmt.Errorf("field %q missing", key)
	}
	n, ok := v.(uint64)
	if !ok {
		return 0, fmt.Errorf("field %q has unsupported type %T", key, v)
	}
	return n, nil
}

// Text returns a text field exactly as stored, blanks included.
func (fs FieldSet) Text(key string) (string, error) {
	v, ok := fs.Raw(key)
	if !ok {
		return "", fmt.Errorf("field %q missing", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has unsupported type %T", key, v)
	}
	return s, nil
}

// TrimmedText returns a text field with surrounding blanks removed.
func (fs FieldSet) TrimmedText(key string) (string, error) {
	s, err := fs.Text(key)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// String returns any field formatted as a string.
func (fs FieldSet) String(key string) (string, error) {
	v, ok := fs.Raw(key)
	if !ok {
		return "", fmt.Errorf("field %q missing", key)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}
