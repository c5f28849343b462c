package kinds

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/rule-elements/internal/datatree"
	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
	"github.com/KirkDiggler/rule-elements/internal/predicate"
	"github.com/KirkDiggler/rule-elements/internal/prompt"
	"github.com/KirkDiggler/rule-elements/internal/resolve"
	"github.com/KirkDiggler/rule-elements/internal/rules"
)

// ChoiceSet asks for a selection when its item is created and records it
// for sibling rules to read
type ChoiceSet struct {
	*rules.Base
	Flag             string
	Prompt           string
	RollOption       string
	Selection        any
	AllowNoSelection bool
	AllowDrop        bool
	ActorFlag        bool

	choices gjson.Result
}

func choiceSetDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "ChoiceSet",
		Schema: rules.Schema{
			{Name: "choices", Type: rules.TypeArray | rules.TypeString | rules.TypeObject, Required: true},
			{Name: "flag", Type: rules.TypeString},
			{Name: "prompt", Type: rules.TypeString},
			{Name: "rollOption", Type: rules.TypeString, Nullable: true},
			{Name: "selection", Nullable: true},
			{Name: "allowNoSelection", Type: rules.TypeBoolean},
			{Name: "allowedDrops", Type: rules.TypeObject, Nullable: true},
			{Name: "actorFlag", Type: rules.TypeBoolean},
		},
		ValidActorTypes: allActorTypes,
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &ChoiceSet{
				Base:             b,
				Flag:             b.String("flag"),
				Prompt:           b.String("prompt"),
				RollOption:       b.String("rollOption"),
				Selection:        b.Value("selection"),
				AllowNoSelection: b.Bool("allowNoSelection", false),
				AllowDrop:        b.Field("allowedDrops").IsObject(),
				ActorFlag:        b.Bool("actorFlag", false),
				choices:          b.Field("choices"),
			}
			if r.Flag == "" {
				r.Flag = camelize(b.Item().Slug())
			}
			if r.Flag == "" {
				b.FailValidation("flag: could not be derived from the item")
			}
			if r.Prompt == "" {
				r.Prompt = "Make a selection"
			}
			if r.Selection == nil {
				// A selection made before this pass lives on the item
				if v, ok := b.Item().RulesSelection(r.Flag); ok {
					r.Selection = v
				}
			}
			return r, nil
		},
	}
}

// GatesSiblings reports whether the rest of the item must wait for a selection
func (r *ChoiceSet) GatesSiblings() bool {
	return r.Selection == nil && !r.AllowNoSelection
}

func (r *ChoiceSet) flagPath() string {
	return "pf2e.rulesSelections." + datatree.EscapeKey(r.Flag)
}

// PreCreate inflates the choices and asks for a selection
func (r *ChoiceSet) PreCreate(ctx context.Context, p *rules.PreCreateParams) error {
	if r.Selection != nil {
		return r.record(p, r.Selection)
	}
	if !r.Test(nil) {
		return p.RuleSource.Set("ignored", true)
	}

	choices, err := r.inflateChoices(ctx)
	if err != nil {
		return fmt.Errorf("failed to inflate choices for %s: %w", r.Item().Name(), err)
	}
	if r.IsIgnored() {
		return p.RuleSource.Set("ignored", true)
	}
	if len(choices) == 0 {
		if r.AllowNoSelection {
			return nil
		}
		r.FailValidation("choices: no choices are available")
		return p.RuleSource.Set("ignored", true)
	}

	var selection *prompt.Selection
	if len(choices) == 1 && !r.AllowNoSelection && !r.AllowDrop {
		selection = &prompt.Selection{Value: choices[0].Value, Label: choices[0].Label}
	} else {
		selection, err = r.Context().Chooser.Choose(ctx, prompt.Request{
			ActorID:          r.Actor().ID(),
			ItemID:           r.Item().ID(),
			ItemName:         r.Item().Name(),
			Flag:             r.Flag,
			Prompt:           r.ResolveInjectedString(r.Prompt),
			Choices:          choices,
			AllowNoSelection: r.AllowNoSelection,
			AllowDrop:        r.AllowDrop,
		})
		if err != nil {
			return fmt.Errorf("failed to get selection for %s: %w", r.Flag, err)
		}
	}

	if selection == nil {
		if r.AllowNoSelection {
			return nil
		}
		return dnderr.Cancelledf("no selection made for %s on %s", r.Flag, r.Item().Name()).
			WithMeta("item_id", r.Item().ID())
	}
	return r.record(p, selection.Value)
}

func (r *ChoiceSet) record(p *rules.PreCreateParams, value any) error {
	r.Selection = value
	if err := p.RuleSource.Set("selection", value); err != nil {
		return fmt.Errorf("failed to record selection: %w", err)
	}
	if err := p.ItemSource.SetFlag(r.flagPath(), value); err != nil {
		return err
	}
	if err := r.Item().SetFlag(r.flagPath(), value); err != nil {
		return err
	}
	if r.ActorFlag {
		p.Updates["flags.pf2e."+datatree.EscapeKey(r.Flag)] = value
	}
	return nil
}

// OnApplyActiveEffects exposes the selection on the item and as a roll option
func (r *ChoiceSet) OnApplyActiveEffects() {
	if r.Selection == nil {
		return
	}
	if err := r.Item().Data.Set("flags."+r.flagPath(), r.Selection); err != nil {
		r.FailValidation(err.Error())
		return
	}
	if r.RollOption != "" {
		r.Actor().SetRollOption(actor.DomainAll, r.RollOption+":"+resolve.Stringify(r.Selection), true)
	}
}

// PreUpdate keeps the item flag in step with an edited selection
func (r *ChoiceSet) PreUpdate(_ context.Context, changes map[string]any) error {
	sources, ok := changes["system.rules"].([]any)
	if !ok || r.Index() >= len(sources) {
		return nil
	}
	source, ok := sources[r.Index()].(map[string]any)
	if !ok {
		return nil
	}
	selection, ok := source["selection"]
	if !ok || reflect.DeepEqual(selection, r.Selection) {
		return nil
	}
	changes["flags."+r.flagPath()] = selection
	return nil
}

func (r *ChoiceSet) inflateChoices(ctx context.Context) ([]prompt.Choice, error) {
	switch {
	case r.choices.IsArray():
		return r.arrayChoices(r.choices), nil
	case r.choices.Type == gjson.String:
		return r.namedChoices(r.ResolveInjectedString(r.choices.String())), nil
	case r.choices.Get("ownedItems").Bool():
		return r.ownedItemChoices(), nil
	case r.choices.Get("unarmedAttacks").Bool():
		return r.unarmedChoices(), nil
	case r.choices.Get("itemType").Exists() || r.choices.Get("pack").Exists():
		return r.compendiumChoices(ctx)
	}
	r.FailValidation("choices: unsupported choices object")
	return nil, nil
}

func (r *ChoiceSet) arrayChoices(list gjson.Result) []prompt.Choice {
	options := r.Actor().GetRollOptions()
	var out []prompt.Choice
	list.ForEach(func(_, c gjson.Result) bool {
		if c.Type == gjson.String {
			value := r.ResolveInjectedString(c.String())
			out = append(out, prompt.Choice{Value: value, Label: value})
			return true
		}
		if p := c.Get("predicate"); p.Exists() {
			pred := predicate.Parse(json.RawMessage(p.Raw)).Resolve(r.ResolveInjectedString)
			if !pred.Test(options) {
				return true
			}
		}
		value := r.ResolveInjected(c.Get("value").Value())
		label := r.ResolveInjectedString(c.Get("label").String())
		if label == "" {
			label = resolve.Stringify(value)
		}
		out = append(out, prompt.Choice{Value: value, Label: label, Img: c.Get("img").String()})
		return true
	})
	return out
}

// namedChoices reads a config table, or an object or array at an actor path
func (r *ChoiceSet) namedChoices(name string) []prompt.Choice {
	if table, ok := r.Context().Tables.Named(name); ok {
		out := make([]prompt.Choice, 0, len(table))
		for _, key := range rules.SortedKeys(table) {
			out = append(out, prompt.Choice{Value: key, Label: table[key]})
		}
		return out
	}

	path := strings.TrimPrefix(name, "actor.")
	res := r.Actor().Data.Result(path)
	var out []prompt.Choice
	switch {
	case res.IsArray():
		res.ForEach(func(_, v gjson.Result) bool {
			out = append(out, prompt.Choice{Value: v.Value(), Label: v.String()})
			return true
		})
	case res.IsObject():
		res.ForEach(func(k, v gjson.Result) bool {
			label := v.Get("label").String()
			if label == "" {
				label = document.Humanize(k.String())
			}
			out = append(out, prompt.Choice{Value: k.String(), Label: label})
			return true
		})
	default:
		r.FailValidation(fmt.Sprintf("choices: %q is neither a table nor actor data", name))
	}
	return out
}

func (r *ChoiceSet) ownedItemChoices() []prompt.Choice {
	var types []string
	for _, t := range r.choices.Get("types").Array() {
		types = append(types, t.String())
	}
	var pred predicate.Predicate
	if p := r.choices.Get("predicate"); p.Exists() {
		pred = predicate.Parse(json.RawMessage(p.Raw)).Resolve(r.ResolveInjectedString)
	}

	actorOptions := r.Actor().GetRollOptions()
	var out []prompt.Choice
	for _, item := range r.Actor().Items {
		if len(types) > 0 && !containsString(types, item.Type()) {
			continue
		}
		if item.ID() == r.Item().ID() {
			continue
		}
		if !pred.Test(actorOptions.Union(item.RollOptions("item"))) {
			continue
		}
		out = append(out, prompt.Choice{Value: item.UUID(), Label: item.Name(), Img: item.Source.Img})
	}
	return out
}

func (r *ChoiceSet) unarmedChoices() []prompt.Choice {
	var out []prompt.Choice
	for _, strike := range r.Actor().Synthetics.Strikes.List() {
		if strike.Category != "unarmed" {
			continue
		}
		out = append(out, prompt.Choice{Value: strike.Slug, Label: strike.Label, Img: strike.Img})
	}
	return out
}

func (r *ChoiceSet) compendiumChoices(ctx context.Context) ([]prompt.Choice, error) {
	rc := r.Context()
	if rc.Compendium == nil {
		r.FailValidation("choices: no compendium is available")
		return nil, nil
	}

	q := document.ItemQuery{Pack: r.choices.Get("pack").String()}
	r.choices.Get("itemType").ForEach(func(_, v gjson.Result) bool {
		q.Types = append(q.Types, v.String())
		return true
	})
	if t := r.choices.Get("itemType"); t.Type == gjson.String {
		q.Types = []string{t.String()}
	}
	for _, t := range r.choices.Get("traits").Array() {
		q.Traits = append(q.Traits, t.String())
	}
	if lvl := r.choices.Get("maxLevel"); lvl.Exists() {
		n, ok := resolve.ToNumber(r.ResolveValue(lvl.Value(), nil))
		if ok {
			q.MaxLevel = ptr(truncInt(n))
		}
	}

	var filter predicate.Predicate
	if f := r.choices.Get("filter"); f.Exists() {
		filter = predicate.Parse(json.RawMessage(f.Raw)).Resolve(r.ResolveInjectedString)
		if !filter.IsValid() {
			r.FailValidation("choices.filter: " + filter.Problem())
			return nil, nil
		}
	}

	found, err := rc.Compendium.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	var out []prompt.Choice
	for _, src := range found {
		detached, err := actor.NewDetachedItem(src)
		if err != nil {
			continue
		}
		if !filter.Test(detached.RollOptions("item")) {
			continue
		}
		value := src.SourceID()
		if value == "" && q.Pack != "" {
			value = document.CompendiumItemUUID(q.Pack, src.ID)
		}
		out = append(out, prompt.Choice{Value: value, Label: src.Name, Img: src.Img})
	}
	return out, nil
}
