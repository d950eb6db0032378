package request

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Helpers for reading values out of map-based partial update bodies, where
// every field arrives as interface{} and JSON numbers come in as float64.

var errNotAString = errors.New("value is not a string")

// ParseRFC3339Ptr parses an optional RFC3339 timestamp. Nil or blank input
// yields nil without error.
func ParseRFC3339Ptr(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid RFC3339 timestamp %q: %w", trimmed, err)
	}
	return &parsed, nil
}

// ReadString returns the trimmed string, rejecting blanks and non-strings.
func ReadString(value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", errNotAString
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", errors.New("string is empty")
	}
	return trimmed, nil
}

// ReadInt accepts JSON numbers and truncates them to int.
func ReadInt(value interface{}) (int, error) {
	f, err := ReadFloat(value)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// ReadFloat accepts JSON numbers as float64.
func ReadFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, errors.New("value is not a number")
	}
}

// ReadBool asserts that the value is a boolean.
func ReadBool(value interface{}) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, errors.New("value is not a boolean")
	}
	return b, nil
}
