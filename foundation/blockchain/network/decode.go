package network

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
)

// ErrNoMatch is returned when a message does not have the structure of the
// command being decoded.
var ErrNoMatch = errors.New("message does not match schema")

var unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

// Decode decodes the line into a command with a payload of type T. The line
// must contain every field of the command and its payload with a value of
// the right kind. Fields the schema doesn't know about are ignored. This lets
// the receiver try a set of schemas in order and take the first that fits.
func Decode[T any](line []byte) (Command[T], error) {
	var cmd Command[T]

	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return cmd, ErrNoMatch
	}

	if !matches(reflect.TypeOf(cmd), line) {
		return cmd, ErrNoMatch
	}

	if err := json.Unmarshal(line, &cmd); err != nil {
		return Command[T]{}, ErrNoMatch
	}

	return cmd, nil
}

// Encode returns the command as a single line of JSON including the
// trailing newline.
func Encode[T any](cmd Command[T]) ([]byte, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}

// =============================================================================

// matches reports if the raw JSON value has the structure of the type.
func matches(t reflect.Type, raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}

	// Types that decode themselves are checked when the value is decoded.
	if reflect.PointerTo(t).Implements(unmarshalerType) {
		return true
	}

	switch t.Kind() {
	case reflect.Struct:
		if raw[0] != '{' {
			return false
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return false
		}

		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}

			name := jsonName(f)
			if name == "-" {
				continue
			}

			value, exists := fields[name]
			if !exists || !matches(f.Type, value) {
				return false
			}
		}

		return true

	case reflect.Slice:
		if raw[0] != '[' {
			return false
		}

		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return false
		}

		for _, elem := range elems {
			if !matches(t.Elem(), elem) {
				return false
			}
		}

		return true

	case reflect.String:
		return raw[0] == '"'

	case reflect.Bool:
		return string(raw) == "true" || string(raw) == "false"

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')

	case reflect.Pointer:
		return string(raw) == "null" || matches(t.Elem(), raw)
	}

	return true
}

// jsonName returns the name of the field as it appears in JSON.
func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}

	return name
}
