package kinds

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/testutils"
)

func TestTempHP_OnCreate(t *testing.T) {
	tests := []struct {
		name     string
		existing float64
		value    string
		want     any
	}{
		{name: "grants", value: `5`, want: 5.0},
		{name: "formula", value: `"@actor.level"`, want: 5.0},
		{name: "higher existing wins", existing: 8, value: `5`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			src := testutils.CreateTestCharacter("actor1", "Valeros", 5,
				feat("item1", "False Life", `{"key":"TempHP","value":`+tt.value+`}`))
			a, s := h.build(src)
			if tt.existing > 0 {
				assert.NoError(t, a.Data.Set(pathTempHP, tt.existing))
			}

			updates := rules.ActorUpdates{}
			s.OnCreate(updates)

			if tt.want == nil {
				assert.NotContains(t, updates, pathTempHP)
				return
			}
			assert.Equal(t, tt.want, updates[pathTempHP])
			assert.Equal(t, "item1", updates[pathTempHPSource])
		})
	}
}

func TestTempHP_EventsControlHooks(t *testing.T) {
	h := newHarness(t)
	_, s := h.character(feat("item1", "Bolstering Aura", `{"key":"TempHP","value":3,"events":{"onCreate":false,"onTurnStart":true}}`))

	created := rules.ActorUpdates{}
	s.OnCreate(created)
	assert.Empty(t, created)

	turn := rules.ActorUpdates{}
	s.OnTurnStart(turn)
	assert.Equal(t, 3.0, turn[pathTempHP])
}

func TestTempHP_OnDeleteClearsOwnGrant(t *testing.T) {
	h := newHarness(t)
	a, s := h.character(feat("item1", "False Life", `{"key":"TempHP","value":5}`))

	other := rules.ActorUpdates{}
	assert.NoError(t, a.Data.Set(pathTempHPSource, "item9"))
	s.OnDelete(other)
	assert.Empty(t, other)

	own := rules.ActorUpdates{}
	assert.NoError(t, a.Data.Set(pathTempHPSource, "item1"))
	s.OnDelete(own)
	assert.Equal(t, 0.0, own[pathTempHP])
	assert.Contains(t, own, pathTempHPSource)
	assert.Nil(t, own[pathTempHPSource])
}

func TestFastHealing_CapsAtMaximum(t *testing.T) {
	h := newHarness(t)
	a, s := h.character(feat("item1", "Troll Blood", `{"key":"FastHealing","value":5}`))
	assert.NoError(t, a.Data.Set(pathHP, 17.0))

	updates := rules.ActorUpdates{}
	s.OnTurnStart(updates)
	assert.Equal(t, 20.0, updates[pathHP])
}

func TestLoseHitPoints_FloorsAtZero(t *testing.T) {
	h := newHarness(t)
	_, s := h.character(feat("item1", "Blood Price", `{"key":"LoseHitPoints","value":25}`))

	updates := rules.ActorUpdates{}
	s.OnCreate(updates)
	assert.Equal(t, 0.0, updates[pathHP])
}

func TestSpecialResource_Lifecycle(t *testing.T) {
	h := newHarness(t)
	a, s := h.character(feat("item1", "Focus Pool", `{"key":"SpecialResource","slug":"focus","max":3}`))

	assert.Equal(t, 3.0, a.Data.Float("system.resources.focus.max"))
	assert.Equal(t, 3.0, a.Data.Float("system.resources.focus.value"))

	created := rules.ActorUpdates{}
	s.OnCreate(created)
	assert.Equal(t, map[string]any{"value": 3.0, "max": 3.0}, created["system.resources.focus"])

	deleted := rules.ActorUpdates{}
	s.OnDelete(deleted)
	assert.Contains(t, deleted, "system.resources.focus")
	assert.Nil(t, deleted["system.resources.focus"])
}
