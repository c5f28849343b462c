package kinds

import (
	"github.com/KirkDiggler/rule-elements/internal/datatree"
	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/rules"
)

// CraftingEntry gives a character a crafting entry such as alchemy or snares
type CraftingEntry struct {
	*rules.Base
	Selector     string
	Name         string
	IsAlchemical bool
	IsDailyPrep  bool
	IsPrepared   bool
	BatchSize    int
	craftable    []any
	prepared     []any
	maxSlots     any
	maxItemLevel any
}

func craftingEntryDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "CraftingEntry",
		Schema: rules.Schema{
			{Name: "selector", Type: rules.TypeString, Required: true},
			{Name: "name", Type: rules.TypeString},
			{Name: "isAlchemical", Type: rules.TypeBoolean},
			{Name: "isDailyPrep", Type: rules.TypeBoolean},
			{Name: "isPrepared", Type: rules.TypeBoolean},
			{Name: "batchSize", Type: rules.TypeNumber, Check: rules.NonNegative},
			{Name: "maxSlots", Type: rules.TypeResolvable},
			{Name: "maxItemLevel", Type: rules.TypeResolvable},
			{Name: "craftableItems", Type: rules.TypeArray},
			{Name: "preparedFormulas", Type: rules.TypeArray},
		},
		ValidActorTypes: []string{actor.TypeCharacter},
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &CraftingEntry{
				Base:         b,
				Selector:     b.String("selector"),
				Name:         b.String("name"),
				IsAlchemical: b.Bool("isAlchemical", false),
				IsDailyPrep:  b.Bool("isDailyPrep", false),
				IsPrepared:   b.Bool("isPrepared", false),
				BatchSize:    int(b.Field("batchSize").Int()),
				maxSlots:     b.Value("maxSlots"),
				maxItemLevel: b.Value("maxItemLevel"),
			}
			r.craftable, _ = b.Value("craftableItems").([]any)
			r.prepared, _ = b.Value("preparedFormulas").([]any)
			if r.Name == "" {
				r.Name = b.Label
			}
			if r.BatchSize == 0 {
				r.BatchSize = 2
				if !r.IsAlchemical {
					r.BatchSize = 1
				}
			}
			return r, nil
		},
	}
}

// BeforePrepareData writes the entry under system.crafting.entries
func (r *CraftingEntry) BeforePrepareData() {
	if !r.Test(nil) {
		return
	}
	selector := r.ResolveInjectedString(r.Selector)
	maxItemLevel, _ := r.ResolveNumber(r.maxItemLevel, float64(r.Actor().Level()))
	entry := map[string]any{
		"selector":         selector,
		"name":             r.ResolveInjectedString(r.Name),
		"isAlchemical":     r.IsAlchemical,
		"isDailyPrep":      r.IsDailyPrep,
		"isPrepared":       r.IsPrepared,
		"batchSize":        r.BatchSize,
		"maxItemLevel":     truncInt(maxItemLevel),
		"craftableItems":   orEmpty(r.craftable),
		"preparedFormulas": orEmpty(r.prepared),
	}
	if r.maxSlots != nil {
		maxSlots, _ := r.ResolveNumber(r.maxSlots, 0)
		entry["maxSlots"] = truncInt(maxSlots)
	}
	if r.IsIgnored() {
		return
	}

	if err := r.Actor().Data.Set("system.crafting.entries."+datatree.EscapeKey(selector), entry); err != nil {
		r.FailValidation(err.Error())
	}
}

func orEmpty(list []any) []any {
	if list == nil {
		return []any{}
	}
	return list
}
