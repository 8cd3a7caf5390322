package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Browser forms send numbers as strings and checkboxes as 0/1, so the request
// types below accept either JSON shape.

// Flag is a boolean that also decodes 0/1 and their string forms. Blank and
// null decode to false.
type Flag bool

func ParseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "0", "false", "off", "nu":
		return false, nil
	case "1", "true", "on", "da":
		return true, nil
	}
	return false, fmt.Errorf("invalid flag %q: expected 0, 1, true or false", s)
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	v, err := parseFlagJSON(data)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// OptionalBool is a filter flag. Blank and null leave it unset so the
// criterion is ignored.
type OptionalBool struct {
	Value bool
	Valid bool
}

func SomeBool(v bool) OptionalBool {
	return OptionalBool{Value: v, Valid: true}
}

func ParseOptionalBool(s string) (OptionalBool, error) {
	if isBlank(s) {
		return OptionalBool{}, nil
	}
	v, err := ParseFlag(s)
	if err != nil {
		return OptionalBool{}, err
	}
	return SomeBool(bool(v)), nil
}

func (b *OptionalBool) UnmarshalJSON(data []byte) error {
	if isBlankJSON(data) {
		*b = OptionalBool{}
		return nil
	}
	v, err := parseFlagJSON(data)
	if err != nil {
		return err
	}
	*b = SomeBool(bool(v))
	return nil
}

func (b OptionalBool) MarshalJSON() ([]byte, error) {
	if !b.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(b.Value)
}

// OptionalInt is an integer criterion that may arrive as a number, a numeric
// string, or blank.
type OptionalInt struct {
	Value int
	Valid bool
}

func SomeInt(v int) OptionalInt {
	return OptionalInt{Value: v, Valid: true}
}

func ParseOptionalInt(s string) (OptionalInt, error) {
	if isBlank(s) {
		return OptionalInt{}, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return OptionalInt{}, fmt.Errorf("invalid number %q", s)
	}
	return SomeInt(n), nil
}

func (i *OptionalInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseOptionalInt(s)
		if err != nil {
			return err
		}
		*i = v
		return nil
	}

	if isBlankJSON(data) {
		*i = OptionalInt{}
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("number must be an integer: %w", err)
	}
	*i = SomeInt(n)
	return nil
}

func (i OptionalInt) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(i.Value)
}

func isBlank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "null"
}

func isBlankJSON(data []byte) bool {
	s := string(bytes.TrimSpace(data))
	return s == "" || s == "null" || s == `""`
}

func parseFlagJSON(data []byte) (Flag, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return false, err
		}
		return ParseFlag(s)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return false, err
	}
	switch v := v.(type) {
	case nil:
		return false, nil
	case bool:
		return Flag(v), nil
	case float64:
		return Flag(v != 0), nil
	}
	return false, fmt.Errorf("invalid flag %s: expected 0, 1, true or false", data)
}
