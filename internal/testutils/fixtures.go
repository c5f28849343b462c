package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
)

// CreateTestCharacter creates a character source at the given level with
// baseline attributes
func CreateTestCharacter(id, name string, level int, items ...*document.ItemSource) *document.ActorSource {
	system := fmt.Sprintf(`{
		"details": {"level": {"value": %d}},
		"traits": {"value": ["human", "humanoid"], "size": {"value": "med"}},
		"attributes": {
			"hp": {"value": 20, "max": 20, "temp": 0},
			"speed": {"value": 25, "otherSpeeds": []},
			"ac": {"value": 16}
		},
		"abilities": {
			"str": {"mod": 3}, "dex": {"mod": 2}, "con": {"mod": 1},
			"int": {"mod": 0}, "wis": {"mod": 1}, "cha": {"mod": -1}
		},
		"resources": {}
	}`, level)

	if items == nil {
		items = []*document.ItemSource{}
	}
	return &document.ActorSource{
		ID:     id,
		Name:   name,
		Type:   actor.TypeCharacter,
		System: json.RawMessage(compact(system)),
		Items:  items,
	}
}

// CreateTestItem creates an item source carrying the given rule sources
func CreateTestItem(id, name, itemType string, rules ...string) *document.ItemSource {
	if rules == nil {
		rules = []string{}
	}
	system := fmt.Sprintf(`{"slug":%q,"level":{"value":1},"traits":{"value":[]},"rules":[%s]}`,
		document.Slugify(name), strings.Join(rules, ","))
	return &document.ItemSource{
		ID:     id,
		Name:   name,
		Type:   itemType,
		System: json.RawMessage(compact(system)),
	}
}

// CreateTestEquipment creates a physical item worn by its owner
func CreateTestEquipment(id, name string, invested bool, rules ...string) *document.ItemSource {
	item := CreateTestItem(id, name, "equipment", rules...)
	_ = item.SetSystem("equipped", map[string]any{"carryType": "worn", "invested": invested})
	_ = item.SetSystem("traits.value", []string{"invested", "magical"})
	return item
}

// PrepareTestActor builds working state for source
func PrepareTestActor(t *testing.T, source *document.ActorSource) *actor.Actor {
	t.Helper()
	a, err := actor.New(source)
	require.NoError(t, err)
	return a
}

func compact(s string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		panic(fmt.Sprintf("invalid fixture JSON: %v", err))
	}
	return buf.String()
}
