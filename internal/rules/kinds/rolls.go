package kinds

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/synthetics"
)

// RollTwice rolls a check twice and keeps one result
type RollTwice struct {
	*rules.Base
	Selectors       []string
	Keep            string
	RemoveAfterRoll bool
}

func rollTwiceDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "RollTwice",
		Schema: rules.Schema{
			selectorField,
			{Name: "keep", Type: rules.TypeString, Required: true, Choices: []string{"higher", "lower"}},
			{Name: "removeAfterRoll", Type: rules.TypeBoolean},
		},
		Build: func(b *rules.Base) (rules.Element, error) {
			return &RollTwice{
				Base:            b,
				Keep:            b.String("keep"),
				RemoveAfterRoll: b.Bool("removeAfterRoll", false),
			}, nil
		},
	}
}

// BeforePrepareData registers the effect for each selector
func (r *RollTwice) BeforePrepareData() {
	r.Selectors = selectors(r.Base, "selector")
	if r.IsIgnored() {
		return
	}
	for _, selector := range r.Selectors {
		r.Actor().Synthetics.RollTwice.Add(selector, &synthetics.RollTwice{
			Keep:            r.Keep,
			Predicate:       resolvedPredicate(r.Base),
			RemoveAfterRoll: r.RemoveAfterRoll,
			Source:          r.Item().UUID(),
			ItemID:          r.Item().ID(),
		})
	}
}

// AfterRoll deletes a spent effect once one of its selectors was rolled
func (r *RollTwice) AfterRoll(_ context.Context, params *rules.AfterRollParams) error {
	if !r.RemoveAfterRoll || r.Item().Type() != "effect" {
		return nil
	}
	for _, s := range r.Selectors {
		if containsString(params.Selectors, s) && r.Test(params.Options) {
			params.RemoveItem(r.Item().ID())
			return nil
		}
	}
	return nil
}

var degreeAdjustments = []string{
	"one-degree-better", "one-degree-worse", "two-degrees-better", "two-degrees-worse",
	"to-critical-success", "to-success", "to-failure", "to-critical-failure",
}

// AdjustDegreeOfSuccess shifts the outcome of matching checks
type AdjustDegreeOfSuccess struct {
	*rules.Base
	Selector    string
	Adjustments map[string]string
}

func adjustDegreeOfSuccessDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "AdjustDegreeOfSuccess",
		Schema: rules.Schema{
			{Name: "selector", Type: rules.TypeString, Required: true},
			{Name: "adjustment", Type: rules.TypeObject, Required: true},
		},
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &AdjustDegreeOfSuccess{
				Base:        b,
				Selector:    b.String("selector"),
				Adjustments: map[string]string{},
			}
			for outcome, amount := range b.Field("adjustment").Map() {
				if outcome != "all" && !containsString(degreesOfSuccess, outcome) {
					b.FailValidation(fmt.Sprintf("adjustment: %q is not a degree of success", outcome))
					continue
				}
				if !containsString(degreeAdjustments, amount.String()) {
					b.FailValidation(fmt.Sprintf("adjustment.%s: %q is not an adjustment", outcome, amount.String()))
					continue
				}
				r.Adjustments[outcome] = amount.String()
			}
			return r, nil
		},
	}
}

// BeforePrepareData registers the adjustment
func (r *AdjustDegreeOfSuccess) BeforePrepareData() {
	selector := r.ResolveInjectedString(r.Selector)
	if r.IsIgnored() {
		return
	}
	adj := &synthetics.DegreeOfSuccessAdjustment{
		Selector:    selector,
		Adjustments: make(map[string]synthetics.DegreeAdjustment, len(r.Adjustments)),
		Predicate:   resolvedPredicate(r.Base),
		Source:      r.Item().UUID(),
	}
	for outcome, amount := range r.Adjustments {
		adj.Adjustments[outcome] = synthetics.DegreeAdjustment{Label: r.Label, Amount: amount}
	}
	r.Actor().Synthetics.DegreeOfSuccessAdjustments.Add(selector, adj)
}

// SubstituteRoll replaces the d20 result of matching checks
type SubstituteRoll struct {
	*rules.Base
	Selector string
	Required bool
	value    any
}

func substituteRollDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "SubstituteRoll",
		Schema: rules.Schema{
			{Name: "selector", Type: rules.TypeString, Required: true},
			{Name: "value", Type: rules.TypeResolvable, Required: true},
			{Name: "required", Type: rules.TypeBoolean},
		},
		Build: func(b *rules.Base) (rules.Element, error) {
			return &SubstituteRoll{
				Base:     b,
				Selector: b.String("selector"),
				Required: b.Bool("required", false),
				value:    b.Value("value"),
			}, nil
		},
	}
}

// BeforePrepareData registers the substitution
func (r *SubstituteRoll) BeforePrepareData() {
	selector := r.ResolveInjectedString(r.Selector)
	n, ok := r.ResolveNumber(r.value, 0)
	if r.IsIgnored() {
		return
	}
	if !ok || n < 1 || n > 20 {
		r.FailValidation("value: must resolve to a number from 1 to 20")
		return
	}
	r.Actor().Synthetics.RollSubstitutions.Add(selector, &synthetics.RollSubstitution{
		Slug:      slugOrLabel(r.Base),
		Label:     r.Label,
		Selector:  selector,
		Value:     truncInt(n),
		Required:  r.Required,
		Predicate: resolvedPredicate(r.Base),
		Source:    r.Item().UUID(),
	})
}
