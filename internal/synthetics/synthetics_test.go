package synthetics

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	"github.com/KirkDiggler/rule-elements/internal/predicate"
)

func staticModifier(m *Modifier) DeferredModifier {
	return func(RollContext) (*Modifier, bool) {
		return m.Clone(), true
	}
}

func TestExtractModifiers_FlattensAndDeduplicates(t *testing.T) {
	r := NewRegistry()
	shared := staticModifier(NewModifier("ring", "Ring", 2, ModifierItem))

	r.AddModifier("ac", shared)
	r.AddModifier("ac", staticModifier(NewModifier("shield", "Shield", 1, ModifierCircumstance)))
	r.AddModifier("all", func(RollContext) (*Modifier, bool) { return nil, false })

	mods := ExtractModifiers(r, []string{"ac", "ac", "all"}, RollContext{})
	require.Len(t, mods, 2)
	assert.Equal(t, "ring", mods[0].Slug)
	assert.Equal(t, "shield", mods[1].Slug)
}

func TestExtractModifiers_DeferredSeesRollOptions(t *testing.T) {
	r := NewRegistry()
	r.AddModifier("attack", func(rc RollContext) (*Modifier, bool) {
		if !rc.Options.Has("flanking") {
			return nil, false
		}
		return NewModifier("flanking", "Flanking", 2, ModifierCircumstance), true
	})

	assert.Empty(t, ExtractModifiers(r, []string{"attack"}, RollContext{Options: predicate.NewOptions()}))
	assert.Len(t, ExtractModifiers(r, []string{"attack"}, RollContext{Options: predicate.NewOptions("flanking")}), 1)
}

func TestModifierAdjustments(t *testing.T) {
	r := NewRegistry()
	r.AddModifier("ac", staticModifier(NewModifier("ring", "Ring", 2, ModifierItem)))
	r.AddModifier("ac", staticModifier(NewModifier("cloak", "Cloak", 1, ModifierItem)))
	r.AddModifierAdjustment("ac", &ModifierAdjustment{
		Slug:        "ring",
		Relabel:     "Better Ring",
		GetNewValue: func(current float64) float64 { return current * 2 },
	})
	r.AddModifierAdjustment("ac", &ModifierAdjustment{
		Slug:      "cloak",
		Suppress:  true,
		Predicate: predicate.New("suppress-cloak"),
	})

	mods := ExtractModifiers(r, []string{"ac"}, RollContext{})
	options := predicate.NewOptions("suppress-cloak")
	for _, m := range mods {
		m.Test(options)
	}

	assert.Equal(t, 4, mods[0].Value)
	assert.Equal(t, "Better Ring", mods[0].Label)
	assert.True(t, mods[1].Ignored)
	assert.False(t, mods[1].Enabled)
}

func TestModifierAdjustments_ValueSaturates(t *testing.T) {
	tests := []struct {
		name  string
		value int
		scale float64
		want  int
	}{
		{name: "doubles", value: 3, scale: 2, want: 6},
		{name: "huge bonus", value: 5, scale: 1e19, want: math.MaxInt32},
		{name: "huge penalty", value: 5, scale: -1e19, want: math.MinInt32},
		{name: "not a number", value: 5, scale: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			r.AddModifier("ac", staticModifier(NewModifier("ring", "Ring", tt.value, ModifierItem)))
			r.AddModifierAdjustment("ac", &ModifierAdjustment{
				GetNewValue: func(current float64) float64 { return current * tt.scale },
			})

			mods := ExtractModifiers(r, []string{"ac"}, RollContext{})
			require.Len(t, mods, 1)
			mods[0].Test(predicate.NewOptions())
			assert.Equal(t, tt.want, mods[0].Value)
		})
	}
}

func TestStatisticModifier_Stacking(t *testing.T) {
	mods := []*Modifier{
		NewModifier("a", "A", 2, ModifierItem),
		NewModifier("b", "B", 1, ModifierItem),
		NewModifier("c", "C", 1, ModifierUntyped),
		NewModifier("d", "D", 1, ModifierUntyped),
		NewModifier("e", "E", -1, ModifierStatus),
		NewModifier("f", "F", -2, ModifierStatus),
		NewModifier("g", "G", 1, ModifierStatus),
	}
	mods[6].Predicate = predicate.New("never")

	sm := NewStatisticModifier("ac", mods, predicate.NewOptions())

	// 2 item + 1 + 1 untyped - 2 status
	assert.Equal(t, 2, sm.TotalModifier)
	assert.False(t, mods[1].Enabled)
	assert.False(t, mods[4].Enabled)
	assert.False(t, mods[6].Enabled)
}

func TestExtractDamageDice_PartitionsPersistent(t *testing.T) {
	r := NewRegistry()
	r.AddDamageDice("strike-damage", func(RollContext) (*DamageDice, bool) {
		return &DamageDice{Slug: "fire", DiceNumber: 1, DieSize: "d6", DamageType: "fire"}, true
	})
	r.AddDamageDice("strike-damage", func(RollContext) (*DamageDice, bool) {
		return &DamageDice{Slug: "bleed", DiceNumber: 1, DieSize: "d4", DamageType: "bleed", Category: DamageCategoryPersistent}, true
	})

	set := ExtractDamageDice(r, []string{"strike-damage"}, RollContext{})
	require.Len(t, set.Main, 1)
	require.Len(t, set.Persistent, 1)
	assert.Equal(t, "1d6 fire", set.Main[0].String())
	assert.Len(t, set.All(), 2)
}

func TestExtractNotesAndRollTwice(t *testing.T) {
	r := NewRegistry()
	r.AddNote("will", &RollNote{Text: "always"})
	r.AddNote("will", &RollNote{Text: "fear only", Predicate: predicate.New("fear")})
	r.RollTwice.Add("will", &RollTwice{Keep: "higher"})

	notes := ExtractNotes(r, []string{"will"}, RollContext{Options: predicate.NewOptions()})
	require.Len(t, notes, 1)
	assert.Equal(t, "always", notes[0].Text)

	assert.Equal(t, "higher", ExtractRollTwice(r, []string{"will"}, RollContext{}))

	r.RollTwice.Add("saving-throw", &RollTwice{Keep: "lower"})
	assert.Equal(t, "", ExtractRollTwice(r, []string{"will", "saving-throw"}, RollContext{}))
}

func TestExtractEphemeralEffects(t *testing.T) {
	r := NewRegistry()
	r.EphemeralEffects.Add("strike-attack-roll", &EphemeralEffect{
		Affects: AffectsTarget,
		Resolve: func(context.Context, RollContext) (*document.ItemSource, error) {
			return &document.ItemSource{Name: "Off-Guard"}, nil
		},
	})
	r.EphemeralEffects.Add("strike-attack-roll", &EphemeralEffect{
		Affects: AffectsTarget,
		Source:  "Item.bad",
		Resolve: func(context.Context, RollContext) (*document.ItemSource, error) {
			return nil, errors.New("missing")
		},
	})
	r.EphemeralEffects.Add("strike-attack-roll", &EphemeralEffect{Affects: AffectsOrigin})

	effects, err := ExtractEphemeralEffects(context.Background(), r, AffectsTarget, []string{"strike-attack-roll"}, RollContext{})
	assert.Error(t, err)
	require.Len(t, effects, 1)
	assert.Equal(t, "Off-Guard", effects[0].Name)
}

func TestStrikesAndToggles(t *testing.T) {
	r := NewRegistry()
	r.Strikes.Set(&Strike{Slug: "fist", Label: "Fist"})
	r.Strikes.Set(&Strike{Slug: "claw", Label: "Claw"})
	r.Strikes.Set(&Strike{Slug: "fist", Label: "Iron Fist"})

	require.Equal(t, 2, r.Strikes.Len())
	assert.Equal(t, "Iron Fist", r.Strikes.List()[0].Label)

	first := r.Toggles.Add(&Toggle{Domain: "all", Option: "rage", Label: "Rage"})
	second := r.Toggles.Add(&Toggle{Domain: "all", Option: "rage", Label: "Other"})
	assert.Same(t, first, second)
	assert.Len(t, r.Toggles.List(), 1)
}

func TestWarnings(t *testing.T) {
	w := NewWarnings()
	w.Add("a")
	w.Add("a")
	w.Add("b")

	sink := &recordingSink{}
	w.Flush(sink)
	assert.Equal(t, []string{"a", "b"}, sink.messages)
}

type recordingSink struct {
	messages []string
}

func (s *recordingSink) Warn(message string) {
	s.messages = append(s.messages, message)
}
