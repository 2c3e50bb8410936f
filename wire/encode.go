// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the header/value wire format of ntfy-compatible
// push servers: declarative per-field serialization of outbound messages,
// actions and filters, and parsing of received entities.
package wire

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Wire format errors.
var (
	ErrUnsupportedValue  = errors.New("unsupported value type")
	ErrMutuallyExclusive = errors.New("templating and filename are mutually exclusive")
	ErrUnknownAction     = errors.New("unknown action type")
	ErrInvalidEnum       = errors.New("invalid enum value")
)

// Header is a single serialized wire header.
type Header struct {
	Name  string
	Value string
}

// fieldDesc describes how one declared field of a serializable entity maps
// onto the wire. Tables of fieldDesc are built once per type, in field
// declaration order, and shared across all instances.
type fieldDesc[T any] struct {
	wireKey    string
	positional bool
	value      func(*T) any // nil result means the field is unset
	encode     func(key string, v any) (string, error)
}

// encodeActionValue is the default encoder for action segment values.
// Strings are backslash-escaped and quote-wrapped when they contain
// segment metacharacters; booleans map to "false"/"true"; mappings become
// "<key>.<subkey>=<value>,..." entries.
func encodeActionValue(key string, v any) (string, error) {
	switch val := v.(type) {
	case string:
		return escapeActionString(val), nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	case int:
		return strconv.Itoa(val), nil
	case map[string]string:
		if key == "" {
			return "", fmt.Errorf("%w: mapping on positional field", ErrUnsupportedValue)
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(val))
		for _, k := range keys {
			parts = append(parts, key+"."+k+"="+escapeActionString(val[k]))
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func escapeActionString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	if strings.ContainsAny(s, `,;='"\`) {
		return `"` + s + `"`
	}
	return s
}

// encodeHeaderValue is the default encoder for filter and message header
// values. Strings have CR, LF and FF escaped (header values cannot carry
// raw newlines); booleans map to "0"/"1"; integers to decimal strings.
func encodeHeaderValue(_ string, v any) (string, error) {
	switch val := v.(type) {
	case string:
		return escapeHeaderString(val), nil
	case bool:
		if val {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case Priority:
		return strconv.Itoa(int(val)), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func escapeHeaderString(s string) string {
	r := strings.NewReplacer("\n", `\n`, "\r", `\r`, "\f", `\f`)
	return r.Replace(s)
}

// serializeHeaders walks a descriptor table in declaration order and
// collects one header per set field.
func serializeHeaders[T any](entity *T, fields []fieldDesc[T]) ([]Header, error) {
	headers := make([]Header, 0, len(fields))
	for _, f := range fields {
		v := f.value(entity)
		if v == nil {
			continue
		}
		enc, err := f.encode(f.wireKey, v)
		if err != nil {
			return nil, err
		}
		headers = append(headers, Header{Name: f.wireKey, Value: enc})
	}
	return headers, nil
}

// Optional value helpers for message and filter literals.

// String returns a pointer to s.
func String(s string) *string { return &s }

// Int returns a pointer to i.
func Int(i int) *int { return &i }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// deref-to-any helpers used by descriptor tables: a nil pointer maps to
// the unset sentinel (nil any).

func optStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func optBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}
