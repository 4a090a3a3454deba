package config

import (
	"fmt"
	"time"
)

// values reads typed fields out of a decoded YAML or JSON document.
// Each accessor leaves dst untouched when the key is missing.
type values map[string]any

// FieldError reports a field whose value has the wrong type.
type FieldError struct {
	Field string
	Value any
	Want  string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("config field %q: expected %s, got %T", e.Field, e.Want, e.Value)
}

func (v values) stringField(key string, dst *string) error {
	raw, ok := v[key]
	if !ok || raw == nil {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return &FieldError{Field: key, Value: raw, Want: "string"}
	}
	*dst = s
	return nil
}

func (v values) boolField(key string, dst *bool) error {
	raw, ok := v[key]
	if !ok || raw == nil {
		return nil
	}
	b, ok := raw.(bool)
	if !ok {
		return &FieldError{Field: key, Value: raw, Want: "bool"}
	}
	*dst = b
	return nil
}

// intField accepts int, int64 and whole float64 values.
func (v values) intField(key string, dst *int) error {
	raw, ok := v[key]
	if !ok || raw == nil {
		return nil
	}
	switch val := raw.(type) {
	case int:
		*dst = val
		return nil
	case int64:
		*dst = int(val)
		return nil
	case float64:
		if val == float64(int(val)) {
			*dst = int(val)
			return nil
		}
	}
	return &FieldError{Field: key, Value: raw, Want: "integer"}
}

// durationField accepts a time.ParseDuration string or a number of seconds.
func (v values) durationField(key string, dst *time.Duration) error {
	raw, ok := v[key]
	if !ok || raw == nil {
		return nil
	}
	switch val := raw.(type) {
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return &FieldError{Field: key, Value: raw, Want: "duration"}
		}
		*dst = d
		return nil
	case int:
		*dst = time.Duration(val) * time.Second
		return nil
	case int64:
		*dst = time.Duration(val) * time.Second
		return nil
	case float64:
		*dst = time.Duration(val * float64(time.Second))
		return nil
	}
	return &FieldError{Field: key, Value: raw, Want: "duration"}
}
