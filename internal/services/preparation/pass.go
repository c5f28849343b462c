package preparation

import (
	"context"

	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/predicate"
	"github.com/KirkDiggler/rule-elements/internal/rules"
)

// Pass is one prepared actor together with the rule elements built for it.
// A pass is a snapshot and is not safe for concurrent use.
type Pass struct {
	Actor     *actor.Actor
	Scheduler *rules.Scheduler
}

// Elements returns every element in application order
func (p *Pass) Elements() []rules.Element {
	return p.Scheduler.Elements()
}

// ElementsOf returns the elements of the given items in application order
func (p *Pass) ElementsOf(itemIDs ...string) []rules.Element {
	want := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		want[id] = true
	}
	var out []rules.Element
	for _, el := range p.Scheduler.Elements() {
		if want[el.Rule().Item().ID()] {
			out = append(out, el)
		}
	}
	return out
}

// BeforeRoll collects the roll options of domains, lets every element adjust
// them and returns the result. extra options are added before the hooks run.
func (p *Pass) BeforeRoll(domains []string, extra predicate.Options) predicate.Options {
	options := p.Actor.GetRollOptions(append([]string{actor.DomainAll}, domains...)...).Union(extra)
	p.Scheduler.BeforeRoll(domains, options)
	return options
}

// AfterRoll runs every after-roll hook. Persisting what the hooks ask for is
// left to Service.CompleteRoll.
func (p *Pass) AfterRoll(ctx context.Context, params *rules.AfterRollParams) {
	p.Scheduler.AfterRoll(ctx, params)
}

// Warnings returns the warnings raised during the pass
func (p *Pass) Warnings() []string {
	return p.Actor.Synthetics.Warnings.List()
}
