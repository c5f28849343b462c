package kinds

import (
	"fmt"
	"math"

	"github.com/KirkDiggler/rule-elements/internal/resolve"
	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/synthetics"
)

var modifierTypes = []string{
	string(synthetics.ModifierAbility), string(synthetics.ModifierCircumstance), string(synthetics.ModifierItem),
	string(synthetics.ModifierPotency), string(synthetics.ModifierProficiency), string(synthetics.ModifierStatus),
	string(synthetics.ModifierUntyped),
}

var abilities = []string{"str", "dex", "con", "int", "wis", "cha"}

var damageCategories = []string{synthetics.DamageCategoryPersistent, synthetics.DamageCategoryPrecision, synthetics.DamageCategorySplash}

// FlatModifier adds a typed bonus or penalty to one or more statistics
type FlatModifier struct {
	*rules.Base
	Selectors      []string
	Type           synthetics.ModifierType
	Ability        string
	DamageType     string
	DamageCategory string
	Critical       *bool
	HideIfDisabled bool

	value any
	min   *float64
	max   *float64
}

func flatModifierDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "FlatModifier",
		Schema: rules.Schema{
			selectorField,
			{Name: "type", Type: rules.TypeString, Choices: modifierTypes},
			{Name: "value", Type: rules.TypeResolvable},
			{Name: "ability", Type: rules.TypeString, Nullable: true, Choices: abilities},
			{Name: "min", Type: rules.TypeNumber, Nullable: true},
			{Name: "max", Type: rules.TypeNumber, Nullable: true},
			{Name: "damageType", Type: rules.TypeString, Nullable: true},
			{Name: "damageCategory", Type: rules.TypeString, Nullable: true, Choices: damageCategories},
			{Name: "critical", Type: rules.TypeBoolean, Nullable: true},
			{Name: "hideIfDisabled", Type: rules.TypeBoolean},
		},
		Build: newFlatModifier,
	}
}

func newFlatModifier(b *rules.Base) (rules.Element, error) {
	r := &FlatModifier{
		Base:           b,
		Type:           synthetics.ModifierType(b.String("type")),
		Ability:        b.String("ability"),
		DamageType:     b.String("damageType"),
		DamageCategory: b.String("damageCategory"),
		HideIfDisabled: b.Bool("hideIfDisabled", false),
		value:          b.Value("value"),
	}
	if r.Type == "" {
		r.Type = synthetics.ModifierUntyped
	}
	if c := b.Field("critical"); c.IsBool() {
		r.Critical = ptr(c.Bool())
	}
	if v := b.Field("min"); v.Exists() && v.Value() != nil {
		r.min = ptr(v.Float())
	}
	if v := b.Field("max"); v.Exists() && v.Value() != nil {
		r.max = ptr(v.Float())
	}

	if r.Type == synthetics.ModifierAbility {
		if r.Ability == "" {
			b.FailValidation("ability: required for ability modifiers")
		} else {
			if r.value == nil {
				r.value = fmt.Sprintf("@actor.system.abilities.%s.mod", r.Ability)
			}
			if b.Source().Label == "" {
				b.Label = b.Context().Tables.Abilities[r.Ability]
			}
		}
	}
	if r.value == nil && !b.IsIgnored() {
		b.FailValidation("value: required")
	}
	if r.DamageType != "" && !isInjected(r.DamageType) {
		if _, ok := b.Context().Tables.DamageTypes[r.DamageType]; !ok {
			b.FailValidation(fmt.Sprintf("damageType: %q is not a recognized damage type", r.DamageType))
		}
	}
	return r, nil
}

// BeforePrepareData registers one deferred modifier per selector
func (r *FlatModifier) BeforePrepareData() {
	r.Selectors = selectors(r.Base, "selector")
	if r.IsIgnored() {
		return
	}
	for _, selector := range r.Selectors {
		r.Actor().Synthetics.AddModifier(selector, r.construct)
	}
}

func (r *FlatModifier) construct(rc synthetics.RollContext) (*synthetics.Modifier, bool) {
	if r.IsIgnored() {
		return nil, false
	}
	resolved, ok := resolve.ToNumber(resolveWith(r.Base, r.value, 0.0, rc.Resolvables))
	if r.IsIgnored() {
		return nil, false
	}
	if !ok {
		r.FailValidation("value: must resolve to a number")
		return nil, false
	}
	if r.min != nil {
		resolved = math.Max(resolved, *r.min)
	}
	if r.max != nil {
		resolved = math.Min(resolved, *r.max)
	}

	value, ok := checkedInt(resolved)
	if !ok {
		r.FailValidation("value: out of range")
		return nil, false
	}

	m := synthetics.NewModifier(slugOrLabel(r.Base), r.Label, value, r.Type)
	m.Ability = r.Ability
	m.Predicate = resolvedPredicate(r.Base)
	m.DamageType = r.ResolveInjectedString(r.DamageType)
	m.DamageCategory = r.DamageCategory
	m.Critical = r.Critical
	m.HideIfDisabled = r.HideIfDisabled
	m.Source = r.Item().UUID()
	return m, true
}

// AdjustModifier alters, relabels or suppresses modifiers at roll time
type AdjustModifier struct {
	*rules.Base
	Selectors       []string
	Mode            string
	Relabel         string
	Suppress        bool
	MaxApplications int
	DamageType      string

	value any
}

func adjustModifierDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "AdjustModifier",
		Schema: rules.Schema{
			{Name: "selector", Type: rules.TypeString | rules.TypeArray, Check: rules.StringArray},
			{Name: "selectors", Type: rules.TypeArray, Check: rules.StringArray},
			{Name: "mode", Type: rules.TypeString, Choices: []string{ModeMultiply, ModeAdd, ModeSubtract, ModeDowngrade, ModeUpgrade, ModeOverride}},
			{Name: "value", Type: rules.TypeResolvable, Nullable: true},
			{Name: "relabel", Type: rules.TypeString, Nullable: true},
			{Name: "suppress", Type: rules.TypeBoolean},
			{Name: "maxApplications", Type: rules.TypeNumber, Nullable: true, Check: rules.NonNegative},
			{Name: "damageType", Type: rules.TypeString, Nullable: true},
		},
		DefaultPriority: func(*rules.Source) int { return 90 },
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &AdjustModifier{
				Base:            b,
				Mode:            b.String("mode"),
				Relabel:         b.String("relabel"),
				Suppress:        b.Bool("suppress", false),
				MaxApplications: int(b.Field("maxApplications").Int()),
				DamageType:      b.String("damageType"),
				value:           b.Value("value"),
			}
			if len(b.Strings("selector")) == 0 && len(b.Strings("selectors")) == 0 {
				b.FailValidation("selectors: must have at least one selector")
			}
			if !r.Suppress && r.Relabel == "" && r.DamageType == "" && (r.Mode == "" || r.value == nil) {
				b.FailValidation("must suppress, relabel or provide a mode and value")
			}
			return r, nil
		},
	}
}

// BeforePrepareData registers the adjustment under every selector
func (r *AdjustModifier) BeforePrepareData() {
	r.Selectors = append(selectors(r.Base, "selector"), selectors(r.Base, "selectors")...)
	if r.IsIgnored() {
		return
	}

	adj := &synthetics.ModifierAdjustment{
		Slug:            r.Slug,
		Predicate:       resolvedPredicate(r.Base),
		Suppress:        r.Suppress,
		Relabel:         r.ResolveInjectedString(r.Relabel),
		MaxApplications: r.MaxApplications,
		Source:          r.Item().UUID(),
	}
	if r.Mode != "" && r.value != nil {
		adj.GetNewValue = r.newValue
	}
	if r.DamageType != "" {
		adj.GetDamageType = r.newDamageType
	}
	for _, selector := range r.Selectors {
		r.Actor().Synthetics.AddModifierAdjustment(selector, adj)
	}
}

func (r *AdjustModifier) newValue(current float64) float64 {
	change, ok := resolve.ToNumber(r.ResolveValue(r.value, 0.0))
	if !ok {
		r.FailValidation("value: must resolve to a number")
		return current
	}
	next, err := GetNewValue(r.Mode, current, change)
	if err != nil {
		r.FailValidation(err.Error())
		return current
	}
	n, _ := number(next)
	return n
}

func (r *AdjustModifier) newDamageType(current string) string {
	damageType := r.ResolveInjectedString(r.DamageType)
	if _, ok := r.Context().Tables.DamageTypes[damageType]; !ok {
		r.FailValidation(fmt.Sprintf("damageType: %q is not a recognized damage type", damageType))
		return current
	}
	return damageType
}
