package document

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ActorSource is an actor with its embedded items
type ActorSource struct {
	ID     string          `json:"_id"`
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Img    string          `json:"img,omitempty"`
	System json.RawMessage `json:"system,omitempty"`
	Flags  json.RawMessage `json:"flags,omitempty"`
	Items  []*ItemSource   `json:"items"`
}

// Item finds an embedded item by id
func (a *ActorSource) Item(id string) *ItemSource {
	for _, item := range a.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// RemoveItem deletes an embedded item and reports whether it existed
func (a *ActorSource) RemoveItem(id string) bool {
	for i, item := range a.Items {
		if item.ID == id {
			a.Items = append(a.Items[:i], a.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy including items
func (a *ActorSource) Clone() *ActorSource {
	if a == nil {
		return nil
	}
	out := *a
	out.System = append(json.RawMessage(nil), a.System...)
	out.Flags = append(json.RawMessage(nil), a.Flags...)
	out.Items = make([]*ItemSource, len(a.Items))
	for i, item := range a.Items {
		out.Items[i] = item.Clone()
	}
	return &out
}

// Set writes v at a dotted path rooted at the actor document ("system.*",
// "flags.*", "name" or "img"). A nil v deletes the path.
func (a *ActorSource) Set(path string, v any) error {
	root, rest, _ := strings.Cut(path, ".")
	switch root {
	case "system":
		return setRaw(&a.System, rest, v)
	case "flags":
		return setRaw(&a.Flags, rest, v)
	case "name", "img":
		s, ok := v.(string)
		if !ok || rest != "" {
			return fmt.Errorf("%s must be set to a string", path)
		}
		if root == "name" {
			a.Name = s
		} else {
			a.Img = s
		}
		return nil
	}
	return fmt.Errorf("path %q is not writable", path)
}

// Apply writes every update in path order
func (a *ActorSource) Apply(updates map[string]any) error {
	paths := make([]string, 0, len(updates))
	for path := range updates {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := a.Set(path, updates[path]); err != nil {
			return err
		}
	}
	return nil
}

func setRaw(doc *json.RawMessage, path string, v any) error {
	if path == "" {
		return fmt.Errorf("cannot replace a whole document section")
	}
	if v == nil {
		if !gjson.GetBytes(*doc, path).Exists() {
			return nil
		}
		out, err := sjson.DeleteBytes(*doc, path)
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
		*doc = out
		return nil
	}
	out, err := sjson.SetBytes(nonEmpty(*doc), path, v)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	*doc = out
	return nil
}
