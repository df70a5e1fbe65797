package model

import (
	"encoding/json"
	"maps"
)

// Payload is an untyped JSON object as received from the ingestion source.
// Accessors never panic: a missing key and a value of the wrong type are both
// reported as absent.
type Payload map[string]any

// Has reports whether key is present, whatever its value.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the value at key when it is a string, else "".
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Number returns the value at key when it is numeric. Numeric strings are
// not coerced.
func (p Payload) Number(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Object returns the nested object at key, or nil.
func (p Payload) Object(key string) Payload {
	return asPayload(p[key])
}

// List returns the array at key. ok is false when the key is missing or is
// not an array; an empty array yields ok == true.
func (p Payload) List(key string) ([]any, bool) {
	switch v := p[key].(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out, true
	case []Payload:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

// Strings returns the string elements of the array at key. Non-string
// elements are dropped. ok follows List.
func (p Payload) Strings(key string) ([]string, bool) {
	items, ok := p.List(key)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, isStr := it.(string); isStr {
			out = append(out, s)
		}
	}
	return out, true
}

// StringOrList accepts either an array of strings or a bare string and
// always returns a non-nil slice.
func (p Payload) StringOrList(key string) []string {
	if s, ok := p[key].(string); ok {
		if s == "" {
			return []string{}
		}
		return []string{s}
	}
	out, _ := p.Strings(key)
	if out == nil {
		return []string{}
	}
	return out
}

// Clone returns a deep copy suitable for mutation.
func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Payload(t).Clone()
	case Payload:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, it := range t {
			out[i] = cloneValue(it)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	}
	return v
}

// Merge returns a copy of p with the keys of other written over it.
func (p Payload) Merge(other Payload) Payload {
	out := p.Clone()
	maps.Copy(out, other)
	return out
}

func asPayload(v any) Payload {
	switch t := v.(type) {
	case map[string]any:
		return Payload(t)
	case Payload:
		return t
	}
	return nil
}
