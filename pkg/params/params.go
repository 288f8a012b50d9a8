// Package params holds template style parameters as saved by the admin panel.
//
// Values arrive from HTML forms and JSON blobs, so booleans and numbers are
// frequently encoded as strings ("1", "0", "16"). Accessors normalise them.
package params

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Params is a loose key/value bag of style parameters.
type Params map[string]any

// FromJSON decodes a JSON object into Params. Empty input yields an empty bag.
func FromJSON(data []byte) (Params, error) {
	out := Params{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("params: decode: %w", err)
	}
	return out, nil
}

// MustFromJSON panics when data is not a JSON object. Intended for fixtures.
func MustFromJSON(data string) Params {
	p, err := FromJSON([]byte(data))
	if err != nil {
		panic(err)
	}
	return p
}

// Get returns the raw value for key.
func (p Params) Get(key string) any {
	if p == nil {
		return nil
	}
	return p[key]
}

// Has reports whether key is present with a non-empty value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// String returns the string value for key or def when missing or empty.
func (p Params) String(key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	s := cast.ToString(v)
	if s == "" {
		return def
	}
	return s
}

// Bool interprets "1", "true", 1 and true as enabled.
func (p Params) Bool(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return false
		}
		if n, err := cast.ToIntE(s); err == nil {
			return n != 0
		}
	}
	if b, ok := v.(bool); ok {
		return b
	}
	if n, err := cast.ToFloat64E(v); err == nil {
		return n != 0
	}
	return cast.ToBool(v)
}

// Int returns the integer value for key or def when missing or not numeric.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		if s, ok := v.(string); ok {
			if f, ferr := cast.ToFloat64E(strings.TrimSpace(s)); ferr == nil {
				return int(f)
			}
		}
		return def
	}
	return n
}

// Object decodes a nested JSON object stored either as a map or as a JSON
// encoded string (fonts and layouts are saved this way).
func (p Params) Object(key string) (map[string]any, bool) {
	switch v := p[key].(type) {
	case map[string]any:
		return v, true
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, false
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}

// Raw returns a JSON document for key, accepting either an encoded string or
// a decoded structure.
func (p Params) Raw(key string) ([]byte, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, ok := v.(string); ok {
		if strings.TrimSpace(s) == "" {
			return nil, false
		}
		return []byte(s), true
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores value under key.
func (p Params) Set(key string, value any) {
	p[key] = value
}

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge copies entries of other over p and returns p.
func (p Params) Merge(other Params) Params {
	for k, v := range other {
		p[k] = v
	}
	return p
}

// Keys returns the sorted keys.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List splits a comma separated value into trimmed, non-empty entries.
func (p Params) List(key string) []string {
	return SplitList(p.String(key, ""))
}

// SplitList splits "a.css, b.css" style lists.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
