package actor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
)

func testSource() *document.ActorSource {
	return &document.ActorSource{
		ID:     "actor-1",
		Name:   "Valeros",
		Type:   TypeCharacter,
		System: json.RawMessage(`{"details":{"level":{"value":5}},"traits":{"value":["human","humanoid"]}}`),
		Items: []*document.ItemSource{
			{
				ID:     "ring",
				Name:   "Ring of Protection",
				Type:   "equipment",
				System: json.RawMessage(`{"traits":{"value":["invested","magical"]},"equipped":{"carryType":"worn","invested":true}}`),
			},
			{
				ID:     "sword",
				Name:   "Longsword",
				Type:   "weapon",
				System: json.RawMessage(`{"slug":"longsword","equipped":{"carryType":"held","handsHeld":0}}`),
			},
			{
				ID:     "feat",
				Name:   "Power Attack",
				Type:   "feat",
				Flags:  json.RawMessage(`{"pf2e":{"grantedBy":{"id":"ring","onDelete":"cascade"},"rulesSelections":{"weapon":"longsword"}}}`),
				System: json.RawMessage(`{}`),
			},
		},
	}
}

func TestNew_BuildsWorkingData(t *testing.T) {
	a, err := New(testSource())
	require.NoError(t, err)

	assert.Equal(t, 5, a.Level())
	v, ok := a.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Valeros", v)
	assert.Equal(t, []string{"human", "humanoid"}, a.Traits())
	assert.Len(t, a.Items, 3)

	options := a.GetRollOptions()
	assert.True(t, options.Has("self:type:character"))
	assert.True(t, options.Has("self:level:5"))
	assert.True(t, options.Has("self:trait:human"))
	assert.True(t, options.Has("feat:power-attack"))
}

func TestReset_DiscardsWorkingChanges(t *testing.T) {
	a, err := New(testSource())
	require.NoError(t, err)

	require.NoError(t, a.Data.Set("system.details.level.value", 9))
	a.SetRollOption(DomainAll, "temporary", true)
	a.Attributes.Resistances = append(a.Attributes.Resistances, &IWR{Type: "fire"})

	require.NoError(t, a.Reset())
	assert.Equal(t, float64(5), a.Data.Float("system.details.level.value"))
	_, set := a.RollOption(DomainAll, "temporary")
	assert.False(t, set)
	assert.Empty(t, a.Attributes.Resistances)
}

func TestItem_EquipmentState(t *testing.T) {
	a, err := New(testSource())
	require.NoError(t, err)

	ring := a.Item("ring")
	require.NotNil(t, ring)
	assert.True(t, ring.IsPhysical())
	assert.True(t, ring.IsEquipped())
	require.NotNil(t, ring.IsInvested())
	assert.True(t, *ring.IsInvested())
	assert.True(t, ring.RollOptions("parent").Has("parent:invested"))

	sword := a.Item("sword")
	assert.False(t, sword.IsEquipped())
	assert.Nil(t, sword.IsInvested())
	assert.True(t, sword.RollOptions("item").Has("item:slug:longsword"))

	feat := a.Item("feat")
	assert.False(t, feat.IsPhysical())
	assert.Equal(t, "power-attack", feat.Slug())
	assert.Equal(t, "Actor.actor-1.Item.feat", feat.UUID())
}

func TestItem_GrantFlags(t *testing.T) {
	a, err := New(testSource())
	require.NoError(t, err)

	feat := a.Item("feat")
	link := feat.GrantedBy()
	require.NotNil(t, link)
	assert.Equal(t, GrantLink{ID: "ring", OnDelete: OnDeleteCascade}, *link)
	assert.Nil(t, a.Item("ring").GrantedBy())

	selection, ok := feat.RulesSelection("weapon")
	require.True(t, ok)
	assert.Equal(t, "longsword", selection)
}

func TestIWRHelpers(t *testing.T) {
	list := []*IWR{{Type: "fire"}, {Type: "cold"}}

	assert.NotNil(t, Find(list, "cold"))
	assert.Nil(t, Find(list, "acid"))

	rest := Without(list, "fire")
	require.Len(t, rest, 1)
	assert.Equal(t, "cold", rest[0].Type)
	assert.Len(t, list, 2)
}
