package synthetics

import (
	"fmt"

	"github.com/KirkDiggler/rule-elements/internal/predicate"
)

// Damage categories
const (
	DamageCategoryPersistent = "persistent"
	DamageCategoryPrecision  = "precision"
	DamageCategorySplash     = "splash"
)

// DamageDiceOverride rewrites the base damage dice of a roll
type DamageDiceOverride struct {
	DiceNumber *int    `json:"diceNumber,omitempty"`
	DieSize    *string `json:"dieSize,omitempty"`
	DamageType *string `json:"damageType,omitempty"`
	Upgrade    bool    `json:"upgrade,omitempty"`
	Downgrade  bool    `json:"downgrade,omitempty"`
}

// DamageDice adds dice to a damage roll
type DamageDice struct {
	Slug       string
	Label      string
	Selector   string
	DiceNumber int
	DieSize    string
	DamageType string
	Category   string
	Critical   *bool
	Override   *DamageDiceOverride
	Predicate  predicate.Predicate
	Source     string

	Enabled bool
	Ignored bool
}

// String renders "2d6 fire"
func (d *DamageDice) String() string {
	if d.DamageType == "" {
		return fmt.Sprintf("%d%s", d.DiceNumber, d.DieSize)
	}
	return fmt.Sprintf("%d%s %s", d.DiceNumber, d.DieSize, d.DamageType)
}

// Test sets Enabled from the predicate
func (d *DamageDice) Test(options predicate.Options) bool {
	d.Enabled = !d.Ignored && d.Predicate.Test(options)
	return d.Enabled
}

// IsPersistent reports whether the dice deal persistent damage
func (d *DamageDice) IsPersistent() bool {
	return d.Category == DamageCategoryPersistent
}

// DamageDiceSet is the result of extracting damage dice
type DamageDiceSet struct {
	Main       []*DamageDice
	Persistent []*DamageDice
}

// All returns main then persistent dice
func (s DamageDiceSet) All() []*DamageDice {
	return append(append([]*DamageDice(nil), s.Main...), s.Persistent...)
}
