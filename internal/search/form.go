package search

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// DefaultRoot is the query-string prefix search parameters live under: q[name]=...
const DefaultRoot = "q"

// Params is a raw parameter bag decoded from bracket notation.
// q[name]=a&q[state][name]=b becomes Values{"name": "a"} and Children{"state": {Values{"name": "b"}}}.
type Params struct {
	Values   map[string]string
	Children map[string]Params
}

// ParseQuery decodes every root[...] key in values. Keys outside root and
// malformed keys are ignored. For repeated keys the last value wins.
func ParseQuery(values url.Values, root string) Params {
	var p Params
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		path, ok := splitKey(key, root)
		if !ok {
			continue
		}
		p.set(path, vals[len(vals)-1])
	}
	return p
}

func (p *Params) set(path []string, value string) {
	if len(path) == 1 {
		if p.Values == nil {
			p.Values = map[string]string{}
		}
		p.Values[path[0]] = value
		return
	}
	if p.Children == nil {
		p.Children = map[string]Params{}
	}
	child := p.Children[path[0]]
	child.set(path[1:], value)
	p.Children[path[0]] = child
}

// splitKey turns "q[state][name]" into ["state", "name"].
func splitKey(key, root string) ([]string, bool) {
	rest, ok := strings.CutPrefix(key, root)
	if !ok || rest == "" {
		return nil, false
	}

	var path []string
	for rest != "" {
		if rest[0] != '[' {
			return nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end <= 1 {
			return nil, false
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return path, true
}

// Form is the normalized set of filters for one entity. Fields holds string
// or int64 values keyed by field name; Nested holds forms for related entities.
type Form struct {
	Fields map[string]any
	Nested map[string]Form
}

// Empty reports whether the form carries no constraints at all.
func (f Form) Empty() bool {
	return len(f.Fields) == 0 && len(f.Nested) == 0
}

// String returns a text field.
func (f Form) String(key string) (string, bool) {
	s, ok := f.Fields[key].(string)
	return s, ok
}

// Int returns a numeric field.
func (f Form) Int(key string) (int64, bool) {
	n, ok := f.Fields[key].(int64)
	return n, ok
}

// MarshalJSON renders the form the way it was submitted, nested forms inline.
func (f Form) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Fields)+len(f.Nested))
	for k, v := range f.Fields {
		out[k] = v
	}
	for k, v := range f.Nested {
		out[k] = v
	}
	return json.Marshal(out)
}

func (f *Form) setField(key string, v any) {
	if f.Fields == nil {
		f.Fields = map[string]any{}
	}
	f.Fields[key] = v
}

func (f *Form) setNested(key string, child Form) {
	if f.Nested == nil {
		f.Nested = map[string]Form{}
	}
	f.Nested[key] = child
}

// InvalidValueError is returned when a filter value cannot be coerced to the
// field's type. Field is the dotted path, e.g. "state.name" or "rank_lteq".
type InvalidValueError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %q", e.Field, e.Value)
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}
