package synthetics

import (
	"fmt"
	"math"

	"github.com/KirkDiggler/rule-elements/internal/predicate"
)

// ModifierType is the stacking category of a modifier
type ModifierType string

// Modifier types
const (
	ModifierAbility      ModifierType = "ability"
	ModifierCircumstance ModifierType = "circumstance"
	ModifierItem         ModifierType = "item"
	ModifierPotency      ModifierType = "potency"
	ModifierProficiency  ModifierType = "proficiency"
	ModifierStatus       ModifierType = "status"
	ModifierUntyped      ModifierType = "untyped"
)

// ValidModifierType reports whether t is a known modifier type
func ValidModifierType(t string) bool {
	switch ModifierType(t) {
	case ModifierAbility, ModifierCircumstance, ModifierItem, ModifierPotency,
		ModifierProficiency, ModifierStatus, ModifierUntyped:
		return true
	}
	return false
}

// Modifier is a numeric bonus or penalty to a statistic
type Modifier struct {
	Slug           string
	Label          string
	Value          int
	Type           ModifierType
	Ability        string
	Predicate      predicate.Predicate
	DamageType     string
	DamageCategory string
	Critical       *bool
	HideIfDisabled bool
	Source         string

	Enabled bool
	Ignored bool

	Adjustments []*ModifierAdjustment
	applied     bool
}

// DeferredModifier builds a modifier at roll time
type DeferredModifier = Deferred[*Modifier]

// NewModifier creates an enabled modifier
func NewModifier(slug, label string, value int, modType ModifierType) *Modifier {
	return &Modifier{Slug: slug, Label: label, Value: value, Type: modType, Enabled: true}
}

// Kind is "bonus", "penalty" or "modifier" for zero values
func (m *Modifier) Kind() string {
	switch {
	case m.Value > 0:
		return "bonus"
	case m.Value < 0:
		return "penalty"
	default:
		return "modifier"
	}
}

// String renders "+2 untyped"
func (m *Modifier) String() string {
	return fmt.Sprintf("%+d %s", m.Value, m.Type)
}

// Clone copies the modifier; adjustments are shared
func (m *Modifier) Clone() *Modifier {
	out := *m
	out.Adjustments = append([]*ModifierAdjustment(nil), m.Adjustments...)
	return &out
}

// Test toggles the modifier on the predicate and applies matching adjustments
// once. A suppressing adjustment disables it for good.
func (m *Modifier) Test(options predicate.Options) bool {
	if !m.applied {
		m.applyAdjustments(options)
	}
	m.Enabled = !m.Ignored && m.Predicate.Test(options)
	return m.Enabled
}

func (m *Modifier) applyAdjustments(options predicate.Options) {
	m.applied = true
	for _, adj := range m.Adjustments {
		if !adj.applies(m, options) {
			continue
		}
		adj.applications++

		if adj.Suppress {
			m.Ignored = true
			m.Enabled = false
			return
		}
		if adj.GetNewValue != nil {
			m.Value = saturate(adj.GetNewValue(float64(m.Value)))
		}
		if adj.GetDamageType != nil && m.DamageType != "" {
			m.DamageType = adj.GetDamageType(m.DamageType)
		}
		if adj.Relabel != "" {
			m.Label = adj.Relabel
		}
	}
}

// ModifierAdjustment changes matching modifiers at roll time
type ModifierAdjustment struct {
	// Slug targets one modifier; empty targets every modifier under the selector
	Slug            string
	Predicate       predicate.Predicate
	Suppress        bool
	Relabel         string
	MaxApplications int // zero is unlimited
	GetNewValue     func(current float64) float64
	GetDamageType   func(current string) string
	Source          string

	applications int
}

func (a *ModifierAdjustment) applies(m *Modifier, options predicate.Options) bool {
	if a.Slug != "" && a.Slug != m.Slug {
		return false
	}
	if a.MaxApplications > 0 && a.applications >= a.MaxApplications {
		return false
	}
	return a.Predicate.Test(options)
}

// saturate truncates v toward zero, clamped to the int32 range. NaN is 0.
func saturate(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int(math.Trunc(v))
}
