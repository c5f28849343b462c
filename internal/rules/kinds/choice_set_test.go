package kinds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rule-elements/internal/prompt"
	"github.com/KirkDiggler/rule-elements/internal/prompt/mocks"
	"github.com/KirkDiggler/rule-elements/internal/testutils"
)

func TestChoiceSet_SingleChoiceSelectsItself(t *testing.T) {
	ctrl := gomock.NewController(t)
	// No expectations: the chooser must not be asked
	h := newHarness(t, withChooser(mocks.NewMockChooser(ctrl)))
	a, _ := h.character()

	src := feat("item1", "Elemental Focus", `{"key":"ChoiceSet","flag":"element","choices":["fire"],"actorFlag":true}`)
	pending, updates := h.create(a, src)

	require.Equal(t, 1, pending.Len())
	assert.Equal(t, "fire", src.SystemValue("rules.0.selection").String())
	assert.Equal(t, "fire", src.Flag("pf2e.rulesSelections.element").String())
	assert.Equal(t, "fire", updates["flags.pf2e.element"])
}

func TestChoiceSet_AsksChooser(t *testing.T) {
	ctrl := gomock.NewController(t)
	chooser := mocks.NewMockChooser(ctrl)
	chooser.EXPECT().Choose(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req prompt.Request) (*prompt.Selection, error) {
			assert.Equal(t, "element", req.Flag)
			assert.Equal(t, "Pick an element", req.Prompt)
			assert.Equal(t, "Elemental Focus", req.ItemName)
			require.Len(t, req.Choices, 3)
			assert.Equal(t, "Cold", req.Choices[1].Label)
			return &prompt.Selection{Value: req.Choices[1].Value}, nil
		})

	h := newHarness(t, withChooser(chooser))
	a, _ := h.character()

	src := feat("item1", "Elemental Focus",
		`{"key":"ChoiceSet","flag":"element","prompt":"Pick an element","rollOption":"element","choices":[{"value":"fire","label":"Fire"},{"value":"cold","label":"Cold"},{"value":"acid","label":"Acid"}]}`,
		`{"key":"Resistance","type":"{item|flags.pf2e.rulesSelections.element}","value":5}`,
	)
	pending, _ := h.create(a, src)
	require.Equal(t, 1, pending.Len())
	assert.Equal(t, "cold", src.SystemValue("rules.0.selection").String())

	// A later preparation sees the selection
	prepared, _ := h.character(src)
	assert.True(t, prepared.GetRollOptions().Has("element:cold"))
	require.Len(t, prepared.Attributes.Resistances, 1)
	assert.Equal(t, "cold", prepared.Attributes.Resistances[0].Type)
}

func TestChoiceSet_PredicatedChoicesFilter(t *testing.T) {
	h := newHarness(t)
	a, _ := h.character()

	src := feat("item1", "Trained Choice",
		`{"key":"ChoiceSet","flag":"pick","choices":[{"value":"low","predicate":["self:level:1"]},{"value":"five","predicate":["self:level:5"]}]}`)
	h.create(a, src)

	assert.Equal(t, "five", src.SystemValue("rules.0.selection").String())
}

func TestChoiceSet_DeclineCancelsCreation(t *testing.T) {
	h := newHarness(t)
	a, _ := h.character()

	pending, _ := h.create(a, feat("item1", "Indecisive", `{"key":"ChoiceSet","flag":"pick","choices":["a","b"]}`))
	assert.Equal(t, 0, pending.Len())
}

func TestChoiceSet_AllowNoSelection(t *testing.T) {
	h := newHarness(t)
	a, _ := h.character()

	src := feat("item1", "Optional",
		`{"key":"ChoiceSet","flag":"pick","choices":["a","b"],"allowNoSelection":true}`,
		`{"key":"FlatModifier","selector":"ac","value":1}`,
	)
	pending, _ := h.create(a, src)
	require.Equal(t, 1, pending.Len())
	assert.False(t, src.SystemValue("rules.0.selection").Exists())

	// Nothing gates the sibling modifier
	prepared, _ := h.character(src)
	assert.Equal(t, 1, prepared.Synthetics.Modifiers.Len())
}

func TestChoiceSet_UnresolvedSelectionSuppressesSiblings(t *testing.T) {
	h := newHarness(t)
	a, s := h.character(feat("item1", "Unfinished",
		`{"key":"ChoiceSet","flag":"pick","choices":["a","b"]}`,
		`{"key":"FlatModifier","selector":"ac","value":1}`,
	))

	assert.Equal(t, 0, a.Synthetics.Modifiers.Len())
	for _, el := range s.Elements() {
		if _, ok := el.(*FlatModifier); ok {
			assert.True(t, el.Rule().IsIgnored())
		}
	}
}

func TestChoiceSet_NamedTable(t *testing.T) {
	h := newHarness(t, withChooser(prompt.NewScripted(map[string]string{"skill": "arcana"})))
	a, _ := h.character()

	src := feat("item1", "Skill Training", `{"key":"ChoiceSet","flag":"skill","choices":"CONFIG.PF2E.skills"}`)
	pending, _ := h.create(a, src)

	require.Equal(t, 1, pending.Len())
	assert.Equal(t, "arcana", src.Flag("pf2e.rulesSelections.skill").String())
}

func TestChoiceSet_CompendiumChoices(t *testing.T) {
	h := newHarness(t, withChooser(prompt.First{}))
	h.stock(featsPack,
		testutils.CreateTestItem("power-attack", "Power Attack", "feat"),
		testutils.CreateTestItem("longsword", "Longsword", "weapon"),
	)
	a, _ := h.character()

	src := feat("item1", "Bonus Feat",
		`{"key":"ChoiceSet","flag":"bonusFeat","allowNoSelection":false,"choices":{"pack":"pf2e.feats-srd","itemType":"feat"}}`)
	pending, _ := h.create(a, src)

	require.Equal(t, 1, pending.Len())
	assert.Equal(t, "Compendium.pf2e.feats-srd.Item.power-attack", src.Flag("pf2e.rulesSelections.bonusFeat").String())
}

func TestChoiceSet_PreUpdateSyncsFlag(t *testing.T) {
	h := newHarness(t)
	_, s := h.character(feat("item1", "Elemental Focus", `{"key":"ChoiceSet","flag":"element","choices":["fire","cold"],"selection":"fire"}`))

	require.Len(t, s.Elements(), 1)
	cs, ok := s.Elements()[0].(*ChoiceSet)
	require.True(t, ok)

	changes := map[string]any{"system.rules": []any{map[string]any{"key": "ChoiceSet", "selection": "cold"}}}
	require.NoError(t, cs.PreUpdate(context.Background(), changes))
	assert.Equal(t, "cold", changes["flags.pf2e.rulesSelections.element"])

	unchanged := map[string]any{"system.rules": []any{map[string]any{"key": "ChoiceSet", "selection": "fire"}}}
	require.NoError(t, cs.PreUpdate(context.Background(), unchanged))
	assert.NotContains(t, unchanged, "flags.pf2e.rulesSelections.element")
}
