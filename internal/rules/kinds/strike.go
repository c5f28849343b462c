package kinds

import (
	"fmt"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/synthetics"
)

var weaponCategories = []string{"unarmed", "simple", "martial", "advanced"}

// The fist every creature can strike with
var fist = synthetics.Strike{
	Slug:     "fist",
	Label:    "Fist",
	Category: "unarmed",
	Group:    "brawling",
	Traits:   []string{"agile", "finesse", "nonlethal", "unarmed"},
	Damage:   synthetics.StrikeDamage{Dice: 1, Die: "d4", DamageType: "bludgeoning"},
	Img:      "icons/skills/melee/unarmed-punch-fist.webp",
}

// Strike grants an attack that is not backed by a weapon item
type Strike struct {
	*rules.Base
	strike synthetics.Strike
}

func strikeDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "Strike",
		Schema: rules.Schema{
			{Name: "fist", Type: rules.TypeBoolean},
			{Name: "category", Type: rules.TypeString, Choices: weaponCategories},
			{Name: "group", Type: rules.TypeString, Nullable: true},
			{Name: "baseType", Type: rules.TypeString, Nullable: true},
			{Name: "traits", Type: rules.TypeArray, Check: rules.StringArray},
			{Name: "damage", Type: rules.TypeObject},
			{Name: "range", Type: rules.TypeNumber | rules.TypeObject, Nullable: true},
			{Name: "img", Type: rules.TypeString},
		},
		ValidActorTypes: creatureActorTypes,
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &Strike{Base: b}
			if b.Bool("fist", false) {
				r.strike = fist
				r.strike.Traits = append([]string(nil), fist.Traits...)
				return r, nil
			}

			r.strike = synthetics.Strike{
				Slug:     b.Slug,
				Label:    b.Label,
				Category: b.String("category"),
				Group:    b.String("group"),
				BaseType: b.String("baseType"),
				Traits:   b.Strings("traits"),
				Img:      b.String("img"),
				Damage: synthetics.StrikeDamage{
					Dice:       int(b.Field("damage").Get("base.dice").Int()),
					Die:        b.Field("damage").Get("base.die").String(),
					DamageType: b.Field("damage").Get("base.damageType").String(),
				},
			}
			if r.strike.Slug == "" {
				r.strike.Slug = document.Slugify(r.strike.Label)
			}
			if r.strike.Category == "" {
				r.strike.Category = "unarmed"
			}
			if r.strike.Damage.Dice <= 0 {
				r.strike.Damage.Dice = 1
			}
			if r.strike.Damage.Die == "" {
				r.strike.Damage.Die = "d4"
			}
			if !containsString(dieSizes, r.strike.Damage.Die) {
				b.FailValidation(fmt.Sprintf("damage.base.die: %q is not a die size", r.strike.Damage.Die))
			}
			if _, ok := b.Context().Tables.DamageTypes[r.strike.Damage.DamageType]; !ok && !isInjected(r.strike.Damage.DamageType) {
				b.FailValidation(fmt.Sprintf("damage.base.damageType: %q is not a damage type", r.strike.Damage.DamageType))
			}

			rng := b.Field("range")
			switch {
			case rng.IsObject():
				r.strike.Range = ptr(rng.Get("increment").Float())
			case rng.Exists() && rng.Float() > 0:
				r.strike.Range = ptr(rng.Float())
			}
			return r, nil
		},
	}
}

// BeforePrepareData adds the strike to the actor
func (r *Strike) BeforePrepareData() {
	if !r.Test(nil) {
		return
	}
	strike := r.strike
	strike.Label = r.ResolveInjectedString(strike.Label)
	strike.Damage.DamageType = r.ResolveInjectedString(strike.Damage.DamageType)
	if r.IsIgnored() {
		return
	}
	strike.Predicate = resolvedPredicate(r.Base)
	strike.Source = r.Item().UUID()
	r.Actor().Synthetics.Strikes.Set(&strike)
}
