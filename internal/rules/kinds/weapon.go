package kinds

import (
	"fmt"

	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/synthetics"
)

// Striking adds weapon damage dice from a striking rune or effect
type Striking struct {
	*rules.Base
	Selector string
	value    any
}

func strikingDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "Striking",
		Schema: rules.Schema{
			{Name: "selector", Type: rules.TypeString},
			{Name: "value", Type: rules.TypeResolvable, Required: true},
		},
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &Striking{Base: b, Selector: b.String("selector"), value: b.Value("value")}
			if r.Selector == "" {
				r.Selector = "strike-damage"
			}
			return r, nil
		},
	}
}

// BeforePrepareData implements rules.BeforePrepareDataHook
func (r *Striking) BeforePrepareData() {
	selector := r.ResolveInjectedString(r.Selector)
	n, ok := r.ResolveNumber(r.value, 0)
	if r.IsIgnored() {
		return
	}
	bonus := truncInt(n)
	if !ok || bonus < 1 || bonus > 3 {
		r.FailValidation("value: must resolve to 1, 2 or 3")
		return
	}
	r.Actor().Synthetics.Striking.Add(selector, &synthetics.StrikingEntry{
		Label:     r.Label,
		Bonus:     bonus,
		Predicate: resolvedPredicate(r.Base),
		Source:    r.Item().UUID(),
	})
}

// WeaponPotency adds an attack bonus from a potency rune or effect
type WeaponPotency struct {
	*rules.Base
	Selector      string
	PropertyRunes []string
	value         any
}

func weaponPotencyDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "WeaponPotency",
		Schema: rules.Schema{
			{Name: "selector", Type: rules.TypeString},
			{Name: "value", Type: rules.TypeResolvable, Required: true},
			{Name: "propertyRunes", Type: rules.TypeArray, Check: rules.StringArray},
		},
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &WeaponPotency{
				Base:          b,
				Selector:      b.String("selector"),
				PropertyRunes: b.Strings("propertyRunes"),
				value:         b.Value("value"),
			}
			if r.Selector == "" {
				r.Selector = "strike-attack-roll"
			}
			return r, nil
		},
	}
}

// BeforePrepareData implements rules.BeforePrepareDataHook
func (r *WeaponPotency) BeforePrepareData() {
	selector := r.ResolveInjectedString(r.Selector)
	n, ok := r.ResolveNumber(r.value, 0)
	if r.IsIgnored() {
		return
	}
	bonus := truncInt(n)
	if !ok || bonus < 1 || bonus > 4 {
		r.FailValidation(fmt.Sprintf("value: must resolve to a potency from 1 to 4, got %v", n))
		return
	}

	modType := synthetics.ModifierItem
	if r.Item().Type() == "effect" {
		modType = synthetics.ModifierPotency
	}
	r.Actor().Synthetics.WeaponPotency.Add(selector, &synthetics.PotencyEntry{
		Label:         r.Label,
		Bonus:         bonus,
		Type:          modType,
		PropertyRunes: r.PropertyRunes,
		Predicate:     resolvedPredicate(r.Base),
		Source:        r.Item().UUID(),
	})
}
