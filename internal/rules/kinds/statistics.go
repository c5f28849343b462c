package kinds

import (
	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/synthetics"
)

// MultipleAttackPenalty offers an alternative attack penalty
type MultipleAttackPenalty struct {
	*rules.Base
	Selector string
	value    any
}

func multipleAttackPenaltyDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "MultipleAttackPenalty",
		Schema: rules.Schema{
			{Name: "selector", Type: rules.TypeString, Required: true},
			{Name: "value", Type: rules.TypeResolvable, Required: true},
		},
		Build: func(b *rules.Base) (rules.Element, error) {
			return &MultipleAttackPenalty{Base: b, Selector: b.String("selector"), value: b.Value("value")}, nil
		},
	}
}

// BeforePrepareData registers the penalty
func (r *MultipleAttackPenalty) BeforePrepareData() {
	selector := r.ResolveInjectedString(r.Selector)
	n, ok := r.ResolveNumber(r.value, 0)
	if r.IsIgnored() {
		return
	}
	if !ok || n >= 0 {
		r.FailValidation("value: must resolve to a negative number")
		return
	}
	r.Actor().Synthetics.MultipleAttackPenalties.Add(selector, &synthetics.MultipleAttackPenalty{
		Selector:  selector,
		Label:     r.Label,
		Penalty:   truncInt(n),
		Predicate: resolvedPredicate(r.Base),
		Source:    r.Item().UUID(),
	})
}

// DexterityModifierCap caps the dexterity modifier applied to AC
type DexterityModifierCap struct {
	*rules.Base
	value any
}

func dexterityModifierCapDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "DexterityModifierCap",
		Schema: rules.Schema{
			{Name: "value", Type: rules.TypeResolvable, Required: true},
		},
		ValidActorTypes: creatureActorTypes,
		Build: func(b *rules.Base) (rules.Element, error) {
			return &DexterityModifierCap{Base: b, value: b.Value("value")}, nil
		},
	}
}

// BeforePrepareData records the cap
func (r *DexterityModifierCap) BeforePrepareData() {
	if !r.Test(nil) {
		return
	}
	n, ok := r.ResolveNumber(r.value, 0)
	if r.IsIgnored() {
		return
	}
	if !ok {
		r.FailValidation("value: must resolve to a number")
		return
	}
	reg := r.Actor().Synthetics
	reg.DexterityModifierCaps = append(reg.DexterityModifierCaps, &synthetics.DexterityModifierCap{
		Value:  truncInt(n),
		Source: r.Label,
	})
}
