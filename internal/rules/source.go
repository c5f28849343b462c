package rules

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fields known to every rule element source
var baseFieldNames = map[string]bool{
	"key":                true,
	"slug":               true,
	"label":              true,
	"priority":           true,
	"predicate":          true,
	"ignored":            true,
	"requiresEquipped":   true,
	"requiresInvestment": true,
	"removeUponCreate":   true,
}

// Source is one authored rule element. Kind-specific and unknown fields are
// kept in Extra so they survive a round trip.
type Source struct {
	Key                string
	Slug               string
	Label              string
	Priority           *int
	Predicate          json.RawMessage
	Ignored            bool
	RequiresEquipped   *bool
	RequiresInvestment *bool
	RemoveUponCreate   bool
	Extra              map[string]json.RawMessage

	// Suppressed is set by the catalog while a sibling gates this rule
	Suppressed bool

	raw json.RawMessage
}

// ParseSource decodes a rule source. Type errors in known fields are left for
// schema validation; only a missing or non-string key is an error here.
func ParseSource(raw json.RawMessage) (*Source, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("rule element is not an object: %w", err)
	}

	src := &Source{Extra: make(map[string]json.RawMessage), raw: append(json.RawMessage(nil), raw...)}
	if err := json.Unmarshal(fields["key"], &src.Key); err != nil || strings.TrimSpace(src.Key) == "" {
		return nil, fmt.Errorf("rule element has no key")
	}

	_ = json.Unmarshal(fields["slug"], &src.Slug)
	_ = json.Unmarshal(fields["label"], &src.Label)
	_ = json.Unmarshal(fields["ignored"], &src.Ignored)
	_ = json.Unmarshal(fields["removeUponCreate"], &src.RemoveUponCreate)

	var priority float64
	if err := json.Unmarshal(fields["priority"], &priority); err == nil && fields["priority"] != nil {
		p := int(priority)
		src.Priority = &p
	}
	src.RequiresEquipped = optionalBool(fields["requiresEquipped"])
	src.RequiresInvestment = optionalBool(fields["requiresInvestment"])
	src.Predicate = fields["predicate"]

	for name, value := range fields {
		if !baseFieldNames[name] {
			src.Extra[name] = value
		}
	}
	return src, nil
}

func optionalBool(raw json.RawMessage) *bool {
	if raw == nil {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil
	}
	return &b
}

// Raw returns the source JSON as authored
func (s *Source) Raw() json.RawMessage {
	return s.raw
}

// MarshalJSON writes known fields and every extra field
func (s *Source) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+4)
	for name, value := range s.Extra {
		out[name] = value
	}
	out["key"] = s.Key
	if s.Slug != "" {
		out["slug"] = s.Slug
	}
	if s.Label != "" {
		out["label"] = s.Label
	}
	if s.Priority != nil {
		out["priority"] = *s.Priority
	}
	if len(s.Predicate) > 0 {
		out["predicate"] = s.Predicate
	}
	if s.Ignored {
		out["ignored"] = true
	}
	if s.RequiresEquipped != nil {
		out["requiresEquipped"] = *s.RequiresEquipped
	}
	if s.RequiresInvestment != nil {
		out["requiresInvestment"] = *s.RequiresInvestment
	}
	if s.RemoveUponCreate {
		out["removeUponCreate"] = true
	}
	return json.Marshal(out)
}
