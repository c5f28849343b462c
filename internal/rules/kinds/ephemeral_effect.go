package kinds

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/synthetics"
)

// EphemeralEffect applies an effect from a compendium only for the duration
// of a matching roll
type EphemeralEffect struct {
	*rules.Base
	Selectors  []string
	Affects    string
	UUID       string
	AdjustName bool
}

func ephemeralEffectDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "EphemeralEffect",
		Schema: rules.Schema{
			selectorField,
			{Name: "uuid", Type: rules.TypeString, Required: true},
			{Name: "affects", Type: rules.TypeString, Choices: []string{synthetics.AffectsTarget, synthetics.AffectsOrigin}},
			{Name: "adjustName", Type: rules.TypeBoolean},
		},
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &EphemeralEffect{
				Base:       b,
				Affects:    b.String("affects"),
				UUID:       b.String("uuid"),
				AdjustName: b.Bool("adjustName", true),
			}
			if r.Affects == "" {
				r.Affects = synthetics.AffectsTarget
			}
			return r, nil
		},
	}
}

// AfterPrepareData registers the deferred lookup for each selector
func (r *EphemeralEffect) AfterPrepareData() {
	r.Selectors = selectors(r.Base, "selector")
	if r.IsIgnored() {
		return
	}
	for _, selector := range r.Selectors {
		r.Actor().Synthetics.EphemeralEffects.Add(selector, &synthetics.EphemeralEffect{
			Affects: r.Affects,
			Source:  r.Item().UUID(),
			Resolve: r.resolve,
		})
	}
}

func (r *EphemeralEffect) resolve(ctx context.Context, rc synthetics.RollContext) (*document.ItemSource, error) {
	if r.IsIgnored() || !r.Test(rc.Options) {
		return nil, nil
	}
	uuid := r.ResolveInjectedString(r.UUID)
	if r.IsIgnored() {
		return nil, nil
	}
	if r.Context().Compendium == nil {
		return nil, fmt.Errorf("no compendium available to resolve %s", uuid)
	}

	src, err := r.Context().Compendium.FromUUID(ctx, uuid)
	if err != nil {
		return nil, fmt.Errorf("failed to load ephemeral effect %s: %w", uuid, err)
	}
	if src == nil {
		r.FailValidation(fmt.Sprintf("uuid: no item found for %s", uuid))
		return nil, nil
	}
	if src.Type != "effect" && src.Type != "condition" {
		r.FailValidation(fmt.Sprintf("uuid: %s is a %s, not an effect or condition", uuid, src.Type))
		return nil, nil
	}

	effect := src.Clone()
	if err := effect.SetFlag("core.sourceId", uuid); err != nil {
		return nil, err
	}
	if r.AdjustName {
		effect.Name = fmt.Sprintf("%s (%s)", effect.Name, r.Label)
	}
	return effect, nil
}
