package kinds

import (
	"context"
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/predicate"
	"github.com/KirkDiggler/rule-elements/internal/resolve"
	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/synthetics"
)

// suboption is one authored suboption of a toggleable roll option
type suboption struct {
	Label     string
	Value     string
	Predicate predicate.Predicate
}

// RollOption sets a roll option on its actor, optionally as a toggle
type RollOption struct {
	*rules.Base
	Domain          string
	Option          string
	Toggleable      bool
	AlwaysActive    bool
	Mergeable       bool
	Placement       string
	RemoveAfterRoll bool
	Suboptions      []suboption
	Selection       string
	DisabledIf      *predicate.Predicate
	DisabledValue   bool

	value any
}

func rollOptionDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "RollOption",
		Schema: rules.Schema{
			{Name: "domain", Type: rules.TypeString},
			{Name: "option", Type: rules.TypeString, Required: true},
			{Name: "value", Type: rules.TypeBoolean | rules.TypeResolvable},
			{Name: "toggleable", Type: rules.TypeBoolean},
			{Name: "suboptions", Type: rules.TypeArray},
			{Name: "selection", Type: rules.TypeString, Nullable: true},
			{Name: "alwaysActive", Type: rules.TypeBoolean},
			{Name: "mergeable", Type: rules.TypeBoolean},
			{Name: "disabledIf", Type: rules.TypeArray},
			{Name: "disabledValue", Type: rules.TypeBoolean},
			{Name: "placement", Type: rules.TypeString},
			{Name: "removeAfterRoll", Type: rules.TypeBoolean},
		},
		ValidActorTypes: allActorTypes,
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &RollOption{
				Base:            b,
				Domain:          b.String("domain"),
				Option:          b.String("option"),
				Toggleable:      b.Bool("toggleable", false),
				AlwaysActive:    b.Bool("alwaysActive", false),
				Mergeable:       b.Bool("mergeable", false),
				Placement:       b.String("placement"),
				RemoveAfterRoll: b.Bool("removeAfterRoll", false),
				Selection:       b.String("selection"),
				DisabledValue:   b.Bool("disabledValue", false),
				value:           b.Value("value"),
			}
			if r.Domain == "" {
				r.Domain = actor.DomainAll
			}
			if r.value == nil {
				r.value = true
			}

			b.Field("suboptions").ForEach(func(_, s gjson.Result) bool {
				sub := suboption{Label: s.Get("label").String(), Value: s.Get("value").String()}
				if p := s.Get("predicate"); p.Exists() {
					sub.Predicate = predicate.Parse(json.RawMessage(p.Raw))
				}
				if sub.Value == "" {
					b.FailValidation("suboptions: each suboption needs a value")
				}
				r.Suboptions = append(r.Suboptions, sub)
				return true
			})
			if d := b.Field("disabledIf"); d.Exists() {
				p := predicate.Parse(json.RawMessage(d.Raw))
				if !p.IsValid() {
					b.FailValidation("disabledIf: " + p.Problem())
				}
				r.DisabledIf = &p
			}
			if r.AlwaysActive && !r.Toggleable {
				b.FailValidation("alwaysActive: only toggleable roll options can be always active")
			}
			if r.AlwaysActive && len(r.Suboptions) == 0 {
				b.FailValidation("alwaysActive: requires suboptions")
			}
			return r, nil
		},
	}
}

// OnApplyActiveEffects sets the option and registers its toggle
func (r *RollOption) OnApplyActiveEffects() {
	if !r.Test(nil) {
		return
	}

	a := r.Actor()
	domain := r.ResolveInjectedString(r.Domain)
	option := r.ResolveInjectedString(r.Option)
	if r.IsIgnored() {
		return
	}

	value := r.resolveBool(r.value)
	if r.AlwaysActive {
		value = true
	}
	enabled := true
	if r.DisabledIf != nil && r.DisabledIf.Resolve(r.ResolveInjectedString).Test(a.GetRollOptions(domain)) {
		enabled = false
		value = r.DisabledValue
	}

	selected := r.selectedSuboption()
	if r.Toggleable {
		toggle := a.Synthetics.Toggles.Add(r.toggle(domain, option, value, enabled, selected))
		if r.Mergeable && toggle.ItemID != r.Item().ID() {
			r.mergeInto(toggle, selected)
			// The family's first registration decides the state
			value = toggle.Checked
			selected, _ = toggle.SelectedSuboption()
		}
	}

	a.SetRollOption(domain, option, value)
	if value && selected != "" {
		a.SetRollOption(domain, option+":"+selected, true)
	}
}

// HasSuboption reports whether value is one of the authored suboptions
func (r *RollOption) HasSuboption(value string) bool {
	for _, s := range r.Suboptions {
		if s.Value == value {
			return true
		}
	}
	return false
}

func (r *RollOption) resolveBool(spec any) bool {
	v := r.ResolveValue(spec, true)
	if b, ok := resolve.ToBool(v); ok {
		return b
	}
	return false
}

// selectedSuboption returns the recorded selection, or the first suboption
// whose predicate passes
func (r *RollOption) selectedSuboption() string {
	if len(r.Suboptions) == 0 {
		return ""
	}
	options := r.Actor().GetRollOptions(r.Domain)
	first := ""
	for _, s := range r.Suboptions {
		if !s.Predicate.Resolve(r.ResolveInjectedString).Test(options) {
			continue
		}
		if s.Value == r.Selection {
			return s.Value
		}
		if first == "" {
			first = s.Value
		}
	}
	return first
}

func (r *RollOption) toggle(domain, option string, value, enabled bool, selected string) *synthetics.Toggle {
	t := &synthetics.Toggle{
		ItemID:       r.Item().ID(),
		Label:        r.Label,
		Placement:    r.Placement,
		Domain:       domain,
		Option:       option,
		AlwaysActive: r.AlwaysActive,
		Checked:      value,
		Enabled:      enabled,
	}
	for _, s := range r.Suboptions {
		t.Suboptions = append(t.Suboptions, synthetics.Suboption{
			Value:    s.Value,
			Label:    r.ResolveInjectedString(s.Label),
			Selected: s.Value == selected,
		})
	}
	return t
}

func (r *RollOption) mergeInto(toggle *synthetics.Toggle, selected string) {
	_, hasSelection := toggle.SelectedSuboption()
	for _, s := range r.Suboptions {
		dup := false
		for _, existing := range toggle.Suboptions {
			if existing.Value == s.Value {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		toggle.Suboptions = append(toggle.Suboptions, synthetics.Suboption{
			Value:    s.Value,
			Label:    r.ResolveInjectedString(s.Label),
			Selected: !hasSelection && s.Value == selected,
		})
	}
}

// BeforeRoll adds the option to the roll when its domain is rolled
func (r *RollOption) BeforeRoll(domains []string, options predicate.Options) {
	domain := r.ResolveInjectedString(r.Domain)
	if domain != actor.DomainAll && !containsString(domains, domain) {
		return
	}
	if !r.Test(options) {
		return
	}

	option := r.ResolveInjectedString(r.Option)
	value, ok := r.Actor().RollOption(domain, option)
	if !ok {
		value = !r.Toggleable && r.resolveBool(r.value)
	}
	if value {
		options.Add(option)
	} else {
		options.Remove(option)
	}
}

// AfterRoll switches a spent toggle off
func (r *RollOption) AfterRoll(_ context.Context, params *rules.AfterRollParams) error {
	if !r.RemoveAfterRoll || !r.Toggleable {
		return nil
	}
	domain := r.ResolveInjectedString(r.Domain)
	if domain != actor.DomainAll && !containsString(params.Domains, domain) {
		return nil
	}
	option := r.ResolveInjectedString(r.Option)
	if on, _ := r.Actor().RollOption(domain, option); !on || !params.Options.Has(option) {
		return nil
	}
	params.UpdateRule(rules.RuleUpdate{ItemID: r.Item().ID(), Index: r.Index(), Field: "value", Value: false})
	return nil
}
