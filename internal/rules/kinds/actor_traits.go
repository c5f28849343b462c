package kinds

import (
	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/rules"
)

const pathTraits = "system.traits.value"

// ActorTraits adds traits to or removes traits from its actor
type ActorTraits struct {
	*rules.Base
	Add    []string
	Remove []string
}

func actorTraitsDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "ActorTraits",
		Schema: rules.Schema{
			{Name: "add", Type: rules.TypeArray, Check: rules.StringArray},
			{Name: "remove", Type: rules.TypeArray, Check: rules.StringArray},
		},
		ValidActorTypes: creatureActorTypes,
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &ActorTraits{Base: b, Add: b.Strings("add"), Remove: b.Strings("remove")}
			if len(r.Add) == 0 && len(r.Remove) == 0 {
				b.FailValidation("must add or remove at least one trait")
			}
			return r, nil
		},
	}
}

// BeforePrepareData implements rules.BeforePrepareDataHook
func (r *ActorTraits) BeforePrepareData() {
	if !r.Test(nil) {
		return
	}

	a := r.Actor()
	traits := a.Traits()
	if traits == nil {
		traits = []string{}
	}
	for _, t := range r.Add {
		t = r.ResolveInjectedString(t)
		if t != "" && !containsString(traits, t) {
			traits = append(traits, t)
			a.SetRollOption(actor.DomainAll, "self:trait:"+t, true)
		}
	}
	for _, t := range r.Remove {
		t = r.ResolveInjectedString(t)
		kept := traits[:0]
		for _, existing := range traits {
			if existing != t {
				kept = append(kept, existing)
			}
		}
		if len(kept) != len(traits) {
			a.SetRollOption(actor.DomainAll, "self:trait:"+t, false)
		}
		traits = kept
	}
	if r.IsIgnored() {
		return
	}
	if err := a.Data.Set(pathTraits, traits); err != nil {
		r.FailValidation(err.Error())
	}
}
