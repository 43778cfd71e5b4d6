package record

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"
)

// Record is a single stored item: field name to value.
// Nested objects are map[string]any (or Record), arrays are []any.
type Record map[string]any

// SortedKeys returns the record's field names in UTF-16 code unit order,
// the same order Marshal writes them in.
func (r Record) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// Clone returns a deep copy of the record. Nested maps and slices are
// copied so the clone can be modified without touching the original.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Record:
		return val.Clone()
	case map[string]any:
		return map[string]any(Record(val).Clone())
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		return v
	}
}

// Lookup returns the value at a dotted key path.
// "id" reads the top-level field; "meta.id" reads field id of object meta.
func (r Record) Lookup(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = r
	for _, part := range strings.Split(path, ".") {
		obj, ok := asObject(cur)
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set writes value at a dotted key path, creating intermediate objects as
// needed. It fails if an intermediate field exists and is not an object.
func (r Record) Set(path string, value any) error {
	if path == "" {
		return fmt.Errorf("empty key path")
	}
	parts := strings.Split(path, ".")
	obj := map[string]any(r)
	for _, part := range parts[:len(parts)-1] {
		next, exists := obj[part]
		if !exists {
			child := map[string]any{}
			obj[part] = child
			obj = child
			continue
		}
		child, ok := asObject(next)
		if !ok {
			return fmt.Errorf("key path %q: field %q is %T, not an object", path, part, next)
		}
		obj = child
	}
	obj[parts[len(parts)-1]] = value
	return nil
}

func asObject(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case Record:
		return val, true
	case map[string]any:
		return val, true
	default:
		return nil, false
	}
}
