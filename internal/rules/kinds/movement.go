package kinds

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/synthetics"
)

// BaseSpeed grants a movement type at a base speed
type BaseSpeed struct {
	*rules.Base
	Selector string
	value    any
}

func baseSpeedDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "BaseSpeed",
		Schema: rules.Schema{
			{Name: "selector", Type: rules.TypeString, Required: true},
			{Name: "value", Type: rules.TypeResolvable, Required: true},
		},
		Build: func(b *rules.Base) (rules.Element, error) {
			return &BaseSpeed{
				Base:     b,
				Selector: strings.TrimSuffix(b.String("selector"), "-speed"),
				value:    b.Value("value"),
			}, nil
		},
	}
}

// BeforePrepareData registers the speed for resolution once derived data is known
func (r *BaseSpeed) BeforePrepareData() {
	movement := strings.TrimSuffix(r.ResolveInjectedString(r.Selector), "-speed")
	if r.IsIgnored() {
		return
	}
	if !containsString(r.Context().Tables.MovementTypes, movement) {
		r.FailValidation(fmt.Sprintf("selector: %q is not a movement type", movement))
		return
	}

	r.Actor().Synthetics.MovementTypes.Add(movement, func(rc synthetics.RollContext) (*synthetics.MovementType, bool) {
		if r.IsIgnored() || !r.Test(rc.Options) {
			return nil, false
		}
		n, ok := number(resolveWith(r.Base, r.value, 0.0, rc.Resolvables))
		if !ok || n <= 0 {
			return nil, false
		}
		return &synthetics.MovementType{
			Type:   movement,
			Value:  float64(truncInt(n)),
			Label:  r.Label,
			Source: r.Item().UUID(),
		}, true
	})
}

// Senses whose acuity defaults to precise
var preciseSenses = []string{"darkvision", "greater-darkvision", "low-light-vision", "see-invisibility"}

// SenseRule grants a sense
type SenseRule struct {
	*rules.Base
	Selector string
	Acuity   string
	Force    bool
	rangeVal any
}

func senseDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "Sense",
		Schema: rules.Schema{
			{Name: "selector", Type: rules.TypeString, Required: true},
			{Name: "acuity", Type: rules.TypeString, Choices: []string{"precise", "imprecise", "vague"}},
			{Name: "range", Type: rules.TypeResolvable, Nullable: true},
			{Name: "force", Type: rules.TypeBoolean},
		},
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &SenseRule{
				Base:     b,
				Selector: b.String("selector"),
				Acuity:   b.String("acuity"),
				Force:    b.Bool("force", false),
				rangeVal: b.Value("range"),
			}
			if _, ok := b.Context().Tables.Senses[r.Selector]; !ok && !isInjected(r.Selector) {
				b.FailValidation(fmt.Sprintf("selector: %q is not a sense", r.Selector))
			}
			if r.Acuity == "" {
				r.Acuity = "imprecise"
				if containsString(preciseSenses, r.Selector) {
					r.Acuity = "precise"
				}
			}
			return r, nil
		},
	}
}

// AfterPrepareData adds the sense to the actor
func (r *SenseRule) AfterPrepareData() {
	if !r.Test(nil) {
		return
	}
	sense := synthetics.Sense{
		Type:   r.ResolveInjectedString(r.Selector),
		Acuity: r.Acuity,
		Source: r.Label,
	}
	if r.rangeVal != nil {
		n, ok := r.ResolveNumber(r.rangeVal, 0)
		if !ok || n <= 0 {
			r.FailValidation("range: must resolve to a positive number")
			return
		}
		sense.Range = ptr(float64(truncInt(n)))
	}
	if r.IsIgnored() {
		return
	}
	r.Actor().Synthetics.Senses = append(r.Actor().Synthetics.Senses, &synthetics.SenseEntry{
		Sense:     sense,
		Predicate: resolvedPredicate(r.Base),
		Force:     r.Force,
	})
}
