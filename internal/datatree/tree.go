// Package datatree holds the JSON working data that rule elements read and
// mutate through dotted property paths.
package datatree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Getter is anything that resolves a dotted path to a value
type Getter interface {
	Get(path string) (any, bool)
}

// Tree is a mutable JSON document addressed by dotted paths
type Tree struct {
	raw []byte
}

// New wraps raw JSON. Empty input becomes an empty object.
func New(raw []byte) *Tree {
	if len(bytes.TrimSpace(raw)) == 0 {
		return &Tree{raw: []byte("{}")}
	}
	return &Tree{raw: append([]byte(nil), raw...)}
}

// FromValue marshals v into a new tree
func FromValue(v any) (*Tree, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tree value: %w", err)
	}
	return New(raw), nil
}

// Get returns the value at path. A missing path reports false.
func (t *Tree) Get(path string) (any, bool) {
	if path == "" {
		return t.Value(), true
	}
	res := gjson.GetBytes(t.raw, path)
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}

// Result returns the raw gjson result at path
func (t *Tree) Result(path string) gjson.Result {
	return gjson.GetBytes(t.raw, path)
}

// Exists reports whether path holds any value, including null
func (t *Tree) Exists(path string) bool {
	return gjson.GetBytes(t.raw, path).Exists()
}

// String returns the value at path as a string, or "" when missing
func (t *Tree) String(path string) string {
	return gjson.GetBytes(t.raw, path).String()
}

// Float returns the value at path as a number, or 0 when missing
func (t *Tree) Float(path string) float64 {
	return gjson.GetBytes(t.raw, path).Float()
}

// Set writes v at path, creating intermediate objects as needed
func (t *Tree) Set(path string, v any) error {
	raw, err := sjson.SetBytes(t.raw, path, v)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	t.raw = raw
	return nil
}

// SetRaw writes already-encoded JSON at path
func (t *Tree) SetRaw(path string, raw []byte) error {
	out, err := sjson.SetRawBytes(t.raw, path, raw)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	t.raw = out
	return nil
}

// Delete removes the value at path. Deleting a missing path is a no-op.
func (t *Tree) Delete(path string) error {
	if !t.Exists(path) {
		return nil
	}
	raw, err := sjson.DeleteBytes(t.raw, path)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	t.raw = raw
	return nil
}

// Clone returns an independent copy
func (t *Tree) Clone() *Tree {
	return New(t.raw)
}

// Bytes returns a copy of the encoded document
func (t *Tree) Bytes() []byte {
	return append([]byte(nil), t.raw...)
}

// Value decodes the whole document
func (t *Tree) Value() any {
	return gjson.ParseBytes(t.raw).Value()
}

// Decode unmarshals the value at path into out
func (t *Tree) Decode(path string, out any) error {
	res := gjson.GetBytes(t.raw, path)
	if !res.Exists() {
		return fmt.Errorf("path %s not found", path)
	}
	if err := json.Unmarshal([]byte(res.Raw), out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (t *Tree) MarshalJSON() ([]byte, error) {
	return t.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Tree) UnmarshalJSON(raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("invalid JSON document")
	}
	t.raw = append([]byte(nil), raw...)
	return nil
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	".", `\.`,
	"*", `\*`,
	"?", `\?`,
	"|", `\|`,
	"#", `\#`,
	"@", `\@`,
)

// EscapeKey escapes a single object key for use inside a path
func EscapeKey(key string) string {
	return pathEscaper.Replace(key)
}

// Join builds a path from already-escaped segments
func Join(segments ...string) string {
	parts := segments[:0:0]
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ".")
}

// Lookup walks a dotted path through decoded JSON values, Getters and Trees
func Lookup(root any, path string) (any, bool) {
	if path == "" {
		return root, root != nil
	}
	if g, ok := root.(Getter); ok {
		return g.Get(path)
	}

	head, rest, _ := strings.Cut(path, ".")
	var next any
	switch v := root.(type) {
	case map[string]any:
		val, ok := v[head]
		if !ok {
			return nil, false
		}
		next = val
	case []any:
		idx, err := strconv.Atoi(head)
		if err != nil || idx < 0 || idx >= len(v) {
			return nil, false
		}
		next = v[idx]
	default:
		return nil, false
	}

	if rest == "" {
		return next, true
	}
	return Lookup(next, rest)
}
