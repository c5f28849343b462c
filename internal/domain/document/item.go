// Package document holds the persisted shape of actors and items.
package document

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Item types treated as physical
var physicalTypes = map[string]bool{
	"armor":      true,
	"backpack":   true,
	"book":       true,
	"consumable": true,
	"equipment":  true,
	"shield":     true,
	"treasure":   true,
	"weapon":     true,
}

// IsPhysicalType reports whether items of the given type exist in the world
func IsPhysicalType(itemType string) bool {
	return physicalTypes[itemType]
}

// ItemSource is an item as stored on an actor or in a compendium
type ItemSource struct {
	ID     string          `json:"_id"`
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Img    string          `json:"img,omitempty"`
	System json.RawMessage `json:"system,omitempty"`
	Flags  json.RawMessage `json:"flags,omitempty"`
}

// Clone returns a deep copy
func (s *ItemSource) Clone() *ItemSource {
	if s == nil {
		return nil
	}
	out := *s
	out.System = append(json.RawMessage(nil), s.System...)
	out.Flags = append(json.RawMessage(nil), s.Flags...)
	return &out
}

// Rules returns the raw rule element sources in authored order
func (s *ItemSource) Rules() []json.RawMessage {
	res := gjson.GetBytes(s.System, "rules")
	if !res.IsArray() {
		return nil
	}

	var rules []json.RawMessage
	res.ForEach(func(_, v gjson.Result) bool {
		rules = append(rules, json.RawMessage(v.Raw))
		return true
	})
	return rules
}

// SetRules replaces the rule array
func (s *ItemSource) SetRules(rules []json.RawMessage) error {
	if rules == nil {
		rules = []json.RawMessage{}
	}
	raw, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}
	return s.SetSystemRaw("rules", raw)
}

// SetRule replaces the rule at index
func (s *ItemSource) SetRule(index int, rule json.RawMessage) error {
	rules := s.Rules()
	if index < 0 || index >= len(rules) {
		return fmt.Errorf("rule index %d out of range", index)
	}
	rules[index] = rule
	return s.SetRules(rules)
}

// SystemValue reads path under system
func (s *ItemSource) SystemValue(path string) gjson.Result {
	return gjson.GetBytes(s.System, path)
}

// SetSystem writes v at path under system
func (s *ItemSource) SetSystem(path string, v any) error {
	out, err := sjson.SetBytes(nonEmpty(s.System), path, v)
	if err != nil {
		return fmt.Errorf("failed to set system.%s: %w", path, err)
	}
	s.System = out
	return nil
}

// SetSystemRaw writes encoded JSON at path under system
func (s *ItemSource) SetSystemRaw(path string, raw []byte) error {
	out, err := sjson.SetRawBytes(nonEmpty(s.System), path, raw)
	if err != nil {
		return fmt.Errorf("failed to set system.%s: %w", path, err)
	}
	s.System = out
	return nil
}

// Flag reads path under flags
func (s *ItemSource) Flag(path string) gjson.Result {
	return gjson.GetBytes(s.Flags, path)
}

// SetFlag writes v at path under flags
func (s *ItemSource) SetFlag(path string, v any) error {
	out, err := sjson.SetBytes(nonEmpty(s.Flags), path, v)
	if err != nil {
		return fmt.Errorf("failed to set flags.%s: %w", path, err)
	}
	s.Flags = out
	return nil
}

// DeleteFlag removes path under flags
func (s *ItemSource) DeleteFlag(path string) error {
	if !gjson.GetBytes(s.Flags, path).Exists() {
		return nil
	}
	out, err := sjson.DeleteBytes(s.Flags, path)
	if err != nil {
		return fmt.Errorf("failed to delete flags.%s: %w", path, err)
	}
	s.Flags = out
	return nil
}

// SourceID is the compendium UUID this item was created from
func (s *ItemSource) SourceID() string {
	return s.Flag("core.sourceId").String()
}

// SchemaVersion is the recorded item migration version
func (s *ItemSource) SchemaVersion() float64 {
	return s.SystemValue("_migration.version").Float()
}

func nonEmpty(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("{}")
	}
	return raw
}
