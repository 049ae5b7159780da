// Package metadata is the codec boundary between structured investor fields
// and the scalar-only metadata slots of the similarity index.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/investmatch/internal/domain"
)

// EncodeValue renders a decoded JSON value as a scalar metadata string.
// Lists and mappings become JSON text; scalars pass through.
func EncodeValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case []string, []any, map[string]any:
		return encodeJSON(t)
	default:
		return "", fmt.Errorf("unsupported metadata value %T: %w", v, domain.ErrInvalidInput)
	}
}

// EncodeList renders a list as JSON text.
func EncodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	s, _ := encodeJSON(items)
	return s
}

func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// LooksLikeList reports whether s is bracketed like a JSON array.
func LooksLikeList(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']'
}

// DecodeList reads a list back from its stored form.
// JSON arrays are parsed; any other non-empty string is a single-element list.
func DecodeList(s string) ([]string, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return []string{}, nil
	}
	if !LooksLikeList(raw) {
		return []string{raw}, nil
	}

	var items []any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decode list %q: %w: %w", raw, domain.ErrMalformedRecord, err)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case string:
			out = append(out, t)
		case json.Number:
			out = append(out, t.String())
		case bool:
			out = append(out, strconv.FormatBool(t))
		case nil:
			out = append(out, "")
		default:
			return nil, fmt.Errorf("decode list %q: nested value: %w", raw, domain.ErrMalformedRecord)
		}
	}
	return out, nil
}

// ListFromValue converts a decoded JSON value into a string list without encoding.
// A scalar string is a single-element list; nil is empty.
func ListFromValue(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("list element %v is %T, not string: %w", item, item, domain.ErrInvalidInput)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of strings, got %T: %w", v, domain.ErrInvalidInput)
	}
}
