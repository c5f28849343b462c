package kinds

import (
	"fmt"

	"github.com/KirkDiggler/rule-elements/internal/resolve"
	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/synthetics"
)

var dieSizes = []string{"d4", "d6", "d8", "d10", "d12"}

// DamageDice adds dice to damage rolls, or overrides their base dice
type DamageDice struct {
	*rules.Base
	Selectors []string

	diceNumber any
	dieSize    string
	damageType string
	category   string
	critical   *bool
	override   map[string]any
	value      any
}

func damageDiceDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "DamageDice",
		Schema: rules.Schema{
			selectorField,
			{Name: "diceNumber", Type: rules.TypeResolvable},
			{Name: "dieSize", Type: rules.TypeString, Nullable: true},
			{Name: "damageType", Type: rules.TypeString, Nullable: true},
			{Name: "category", Type: rules.TypeString, Nullable: true, Choices: damageCategories},
			{Name: "critical", Type: rules.TypeBoolean, Nullable: true},
			{Name: "override", Type: rules.TypeObject, Nullable: true},
			{Name: "value", Type: rules.TypeObject},
		},
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &DamageDice{
				Base:       b,
				diceNumber: b.Value("diceNumber"),
				dieSize:    b.String("dieSize"),
				damageType: b.String("damageType"),
				category:   b.String("category"),
				value:      b.Value("value"),
			}
			if c := b.Field("critical"); c.IsBool() {
				r.critical = ptr(c.Bool())
			}
			if o, ok := b.Value("override").(map[string]any); ok {
				r.override = o
			}
			if r.dieSize != "" && !isInjected(r.dieSize) && !containsString(dieSizes, r.dieSize) {
				b.FailValidation(fmt.Sprintf("dieSize: %q is not a die size", r.dieSize))
			}
			return r, nil
		},
	}
}

// BeforePrepareData registers deferred dice under every selector
func (r *DamageDice) BeforePrepareData() {
	r.Selectors = selectors(r.Base, "selector")
	if r.IsIgnored() {
		return
	}
	for _, selector := range r.Selectors {
		selector := selector
		r.Actor().Synthetics.AddDamageDice(selector, func(rc synthetics.RollContext) (*synthetics.DamageDice, bool) {
			return r.construct(selector, rc)
		})
	}
}

func (r *DamageDice) construct(selector string, rc synthetics.RollContext) (*synthetics.DamageDice, bool) {
	if r.IsIgnored() {
		return nil, false
	}

	fields := map[string]any{
		"diceNumber": r.diceNumber,
		"dieSize":    nilIfEmpty(r.dieSize),
		"damageType": nilIfEmpty(r.damageType),
		"category":   nilIfEmpty(r.category),
		"override":   r.override,
	}
	if r.value != nil {
		merged, ok := resolveWith(r.Base, r.value, fields, rc.Resolvables).(map[string]any)
		if !ok {
			r.FailValidation("value: must resolve to an object")
			return nil, false
		}
		fields = merged
	}

	count, _ := resolve.ToNumber(resolveWith(r.Base, fields["diceNumber"], 0.0, rc.Resolvables))
	dice := &synthetics.DamageDice{
		Slug:       slugOrLabel(r.Base),
		Label:      r.Label,
		Selector:   selector,
		DiceNumber: truncInt(count),
		DieSize:    r.injected(fields["dieSize"]),
		DamageType: r.injected(fields["damageType"]),
		Category:   r.injected(fields["category"]),
		Critical:   r.critical,
		Predicate:  resolvedPredicate(r.Base),
		Source:     r.Item().UUID(),
		Enabled:    true,
	}
	if o, ok := fields["override"].(map[string]any); ok && len(o) > 0 {
		dice.Override = r.parseOverride(o)
	}
	if r.IsIgnored() {
		return nil, false
	}

	if dice.DamageType != "" {
		if _, ok := r.Context().Tables.DamageTypes[dice.DamageType]; !ok {
			r.FailValidation(fmt.Sprintf("damageType: %q is not a recognized damage type", dice.DamageType))
			return nil, false
		}
	}
	if dice.DiceNumber <= 0 && dice.Override == nil {
		return nil, false
	}
	return dice, true
}

func (r *DamageDice) injected(v any) string {
	s, _ := v.(string)
	return r.ResolveInjectedString(s)
}

func (r *DamageDice) parseOverride(o map[string]any) *synthetics.DamageDiceOverride {
	out := &synthetics.DamageDiceOverride{}
	if n, ok := resolve.ToNumber(r.ResolveValue(o["diceNumber"], nil)); ok {
		out.DiceNumber = ptr(truncInt(n))
	}
	if s, ok := o["dieSize"].(string); ok && s != "" {
		out.DieSize = ptr(r.ResolveInjectedString(s))
	}
	if s, ok := o["damageType"].(string); ok && s != "" {
		out.DamageType = ptr(r.ResolveInjectedString(s))
	}
	out.Upgrade, _ = o["upgrade"].(bool)
	out.Downgrade, _ = o["downgrade"].(bool)
	return out
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Note attaches text to rolls of its selectors
type Note struct {
	*rules.Base
	Selectors  []string
	Title      string
	Text       string
	Outcome    []string
	Visibility string
}

var degreesOfSuccess = []string{"criticalSuccess", "success", "failure", "criticalFailure"}

func noteDefinition(key string) *rules.Definition {
	return &rules.Definition{
		Key: key,
		Schema: rules.Schema{
			selectorField,
			{Name: "title", Type: rules.TypeString, Nullable: true},
			{Name: "text", Type: rules.TypeString, Required: true},
			{Name: "outcome", Type: rules.TypeArray, Check: rules.StringArray},
			{Name: "visibility", Type: rules.TypeString, Nullable: true, Choices: []string{synthetics.VisibilityOwner, synthetics.VisibilityGM}},
		},
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &Note{
				Base:       b,
				Title:      b.String("title"),
				Text:       b.String("text"),
				Outcome:    b.Strings("outcome"),
				Visibility: b.String("visibility"),
			}
			for _, o := range r.Outcome {
				if !containsString(degreesOfSuccess, o) {
					b.FailValidation(fmt.Sprintf("outcome: %q is not a degree of success", o))
				}
			}
			return r, nil
		},
	}
}

// BeforePrepareData resolves the note text and registers it
func (r *Note) BeforePrepareData() {
	r.Selectors = selectors(r.Base, "selector")
	if r.IsIgnored() {
		return
	}

	title := r.Title
	if title == "" {
		title = r.Label
	}
	title = r.ResolveInjectedString(title)
	text := r.ResolveInjectedString(r.Text)
	if r.IsIgnored() {
		return
	}
	if text == "" {
		r.FailValidation("text: resolved to an empty string")
		return
	}

	for _, selector := range r.Selectors {
		r.Actor().Synthetics.AddNote(selector, &synthetics.RollNote{
			Selector:   selector,
			Title:      title,
			Text:       text,
			Outcome:    r.Outcome,
			Visibility: r.Visibility,
			Predicate:  resolvedPredicate(r.Base),
			Source:     r.Item().UUID(),
		})
	}
}
