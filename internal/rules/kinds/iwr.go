package kinds

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/rules"
)

// IWR categories
const (
	categoryImmunity   = "immunity"
	categoryWeakness   = "weakness"
	categoryResistance = "resistance"
)

// IWRRule adds an immunity, weakness or resistance to its actor
type IWRRule struct {
	*rules.Base
	Category   string
	Types      []string
	Exceptions []string
	DoubleVs   []string
	Override   bool

	value any
}

func iwrDefinition(key, category string) *rules.Definition {
	schema := rules.Schema{
		{Name: "type", Type: rules.TypeString | rules.TypeArray, Required: true, Check: rules.StringArray},
		{Name: "exceptions", Type: rules.TypeArray, Check: rules.StringArray},
		{Name: "override", Type: rules.TypeBoolean},
	}
	if category != categoryImmunity {
		schema = append(schema, rules.Field{Name: "value", Type: rules.TypeResolvable, Required: true})
	}
	if category == categoryResistance {
		schema = append(schema, rules.Field{Name: "doubleVs", Type: rules.TypeArray, Check: rules.StringArray})
	}

	return &rules.Definition{
		Key:             key,
		Schema:          schema,
		ValidActorTypes: []string{actor.TypeCharacter, actor.TypeNPC, actor.TypeFamiliar, actor.TypeHazard, actor.TypeVehicle, actor.TypeArmy},
		Build: func(b *rules.Base) (rules.Element, error) {
			return &IWRRule{
				Base:       b,
				Category:   category,
				Types:      b.Strings("type"),
				Exceptions: b.Strings("exceptions"),
				DoubleVs:   b.Strings("doubleVs"),
				Override:   b.Bool("override", false),
				value:      b.Value("value"),
			}, nil
		},
	}
}

func (r *IWRRule) dictionary() map[string]string {
	t := r.Context().Tables
	switch r.Category {
	case categoryImmunity:
		return t.ImmunityTypes
	case categoryWeakness:
		return t.WeaknessTypes
	default:
		return t.ResistanceTypes
	}
}

func (r *IWRRule) list() *[]*actor.IWR {
	attrs := &r.Actor().Attributes
	switch r.Category {
	case categoryImmunity:
		return &attrs.Immunities
	case categoryWeakness:
		return &attrs.Weaknesses
	default:
		return &attrs.Resistances
	}
}

// AfterPrepareData merges each type into the actor's list
func (r *IWRRule) AfterPrepareData() {
	if !r.Test(nil) {
		return
	}

	var types []string
	for _, t := range r.Types {
		types = append(types, strings.TrimSpace(r.ResolveInjectedString(t)))
	}
	if r.IsIgnored() {
		return
	}

	dict := r.dictionary()
	var unknown []string
	for _, t := range append(append(append([]string(nil), types...), r.Exceptions...), r.DoubleVs...) {
		if _, ok := dict[t]; !ok {
			unknown = append(unknown, fmt.Sprintf("%q is not a recognized %s type", t, r.Category))
		}
	}
	if len(unknown) > 0 {
		r.FailValidation(unknown...)
		return
	}

	var value *float64
	if r.Category != categoryImmunity {
		n, ok := r.ResolveNumber(r.value, 0)
		if r.IsIgnored() {
			return
		}
		if !ok || n < 0 {
			r.FailValidation("value: must resolve to a non-negative number")
			return
		}
		whole, ok := checkedInt(n)
		if !ok {
			r.FailValidation("value: out of range")
			return
		}
		n = float64(whole)
		if n == 0 {
			return
		}
		value = &n
	}

	list := r.list()
	for _, t := range types {
		r.merge(list, t, value)
	}
}

// merge keeps the larger value of an existing entry unless this rule overrides
func (r *IWRRule) merge(list *[]*actor.IWR, iwrType string, value *float64) {
	existing := actor.Find(*list, iwrType)
	if existing != nil && !r.Override {
		if r.Category == categoryImmunity {
			return
		}
		if value != nil && (existing.Value == nil || *value > *existing.Value) {
			existing.Value = value
			existing.Source = r.Label
			existing.Exceptions = r.Exceptions
			existing.DoubleVs = r.DoubleVs
		}
		return
	}

	*list = append(actor.Without(*list, iwrType), &actor.IWR{
		Type:       iwrType,
		Value:      value,
		Exceptions: r.Exceptions,
		DoubleVs:   r.DoubleVs,
		Source:     r.Label,
	})
}
