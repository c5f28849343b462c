package synthetics

import "github.com/KirkDiggler/rule-elements/internal/predicate"

// MovementType is a speed granted to the actor
type MovementType struct {
	Type   string
	Value  float64
	Label  string
	Source string
}

// Sense is one sensory ability
type Sense struct {
	Type   string   `json:"type"`
	Acuity string   `json:"acuity"`
	Range  *float64 `json:"range,omitempty"`
	Source string   `json:"source,omitempty"`
}

// SenseEntry is a predicated sense contribution
type SenseEntry struct {
	Sense     Sense
	Predicate predicate.Predicate
	Force     bool
}

// DexterityModifierCap caps the dexterity contribution to AC
type DexterityModifierCap struct {
	Value  int
	Source string
}
