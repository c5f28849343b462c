package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rule-elements/internal/datatree"
	mockdice "github.com/KirkDiggler/rule-elements/internal/dice/mock"
	"github.com/KirkDiggler/rule-elements/internal/formula"
	"github.com/KirkDiggler/rule-elements/internal/resolve"
)

type failures struct {
	messages []string
	warned   int
}

func newResolver(t *testing.T, actorJSON string) (*resolve.Resolver, *failures) {
	t.Helper()

	evaluator, err := formula.NewEvaluator(mockdice.NewManualMockRoller())
	require.NoError(t, err)

	actor := datatree.New([]byte(actorJSON))
	item := datatree.New([]byte(`{"name":"Ring","system":{"level":{"value":3}}}`))
	rule := datatree.New([]byte(`{"key":"FlatModifier","slug":"ring-bonus"}`))
	f := &failures{}

	return &resolve.Resolver{
		Lookup: func(source, path string) (any, bool) {
			switch source {
			case resolve.SourceActor:
				return actor.Get(path)
			case resolve.SourceItem:
				return item.Get(path)
			case resolve.SourceRule:
				return rule.Get(path)
			}
			return nil, false
		},
		Fail: func(warn bool, message string) {
			f.messages = append(f.messages, message)
			if warn {
				f.warned++
			}
		},
		Data: func() map[string]any {
			return map[string]any{"actor": actor, "item": item}
		},
		Evaluator: evaluator,
	}, f
}

func TestInjectProperties_ActorLevel(t *testing.T) {
	r, f := newResolver(t, `{"level":5}`)

	once := r.InjectProperties("{actor|level}", true)
	assert.Equal(t, "5", once)

	twice := r.InjectProperties(once, true)
	assert.Equal(t, once, twice)
	assert.Empty(t, f.messages)
}

func TestInjectProperties_WalksContainers(t *testing.T) {
	r, _ := newResolver(t, `{"level":5,"name":"Ezren"}`)

	in := map[string]any{
		"label": "{actor|name} ({rule|slug})",
		"list":  []any{"{item|system.level.value}", 3.0, true},
		"none":  nil,
	}
	out := r.InjectProperties(in, true)

	assert.Equal(t, map[string]any{
		"label": "Ezren (ring-bonus)",
		"list":  []any{"3", 3.0, true},
		"none":  nil,
	}, out)
}

func TestInjectProperties_MissingSubstitutesPlaceholder(t *testing.T) {
	r, f := newResolver(t, `{"level":5}`)

	out := r.InjectProperties("{item|nonexistent.path} and {actor|nope} at {actor|level}", true)

	assert.Equal(t, "undefined and undefined at 5", out)
	assert.Len(t, f.messages, 2)
	assert.Equal(t, 2, f.warned)
}

func TestInjectProperties_NoWarn(t *testing.T) {
	r, f := newResolver(t, `{}`)

	r.InjectProperties("{actor|level}", false)
	assert.Len(t, f.messages, 1)
	assert.Equal(t, 0, f.warned)
}

func TestValue_Literals(t *testing.T) {
	r, f := newResolver(t, `{"level":5}`)
	opts := resolve.DefaultOptions()

	assert.Equal(t, 3.0, r.Value(3.0, 0, opts))
	assert.Equal(t, true, r.Value(true, false, opts))
	assert.Equal(t, 7.0, r.Value(nil, 7.0, opts))
	assert.Equal(t, "1d6", r.Value("1d6", 0, opts))
	assert.Equal(t, "Level 5", r.Value("Level {actor|level}", nil, opts))
	assert.Empty(t, f.messages)
}

func TestValue_Brackets(t *testing.T) {
	brackets := map[string]any{
		"brackets": []any{
			map[string]any{"start": 1.0, "end": 4.0, "value": "A"},
			map[string]any{"start": 5.0, "end": 9.0, "value": "B"},
		},
	}

	r, _ := newResolver(t, `{"level":5}`)
	assert.Equal(t, "B", r.Value(brackets, "default", resolve.DefaultOptions()))

	r, _ = newResolver(t, `{"level":0}`)
	assert.Equal(t, "default", r.Value(brackets, "default", resolve.DefaultOptions()))
	assert.Equal(t, 4.0, r.Value(brackets, "4", resolve.DefaultOptions()))
}

func TestValue_BracketsFirstMatchWinsAndCustomField(t *testing.T) {
	r, _ := newResolver(t, `{"level":5}`)
	spec := map[string]any{
		"field": "item|system.level.value",
		"brackets": []any{
			map[string]any{"end": 3.0, "value": 1.0},
			map[string]any{"end": 3.0, "value": 2.0},
			map[string]any{"start": 4.0, "value": "@actor.level * 2"},
		},
	}
	assert.Equal(t, 1.0, r.Value(spec, 0, resolve.DefaultOptions()))

	spec["field"] = "actor|level"
	assert.Equal(t, 10.0, r.Value(spec, 0, resolve.DefaultOptions()))
}

func TestValue_BracketWithoutValueUsesDefault(t *testing.T) {
	tests := []struct {
		name  string
		entry map[string]any
		def   any
		want  any
	}{
		{name: "missing value", entry: map[string]any{"start": 1.0, "end": 10.0}, def: 3.0, want: 3.0},
		{name: "null value", entry: map[string]any{"start": 1.0, "end": 10.0, "value": nil}, def: "2", want: 2.0},
		{name: "missing value without default", entry: map[string]any{"start": 1.0}, def: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, f := newResolver(t, `{"level":5}`)
			spec := map[string]any{
				"brackets": []any{
					tt.entry,
					map[string]any{"start": 1.0, "value": "later"},
				},
			}
			assert.Equal(t, tt.want, r.Value(spec, tt.def, resolve.DefaultOptions()))
			assert.Empty(t, f.messages)
		})
	}
}

func TestValue_ObjectMergesOverDefault(t *testing.T) {
	r, _ := newResolver(t, `{}`)

	got := r.Value(
		map[string]any{"dieSize": "d8", "nested": map[string]any{"b": 2.0}},
		map[string]any{"dieSize": "d6", "diceNumber": 1.0, "nested": map[string]any{"a": 1.0}},
		resolve.DefaultOptions(),
	)

	assert.Equal(t, map[string]any{
		"dieSize":    "d8",
		"diceNumber": 1.0,
		"nested":     map[string]any{"a": 1.0, "b": 2.0},
	}, got)
}

func TestValue_Formulas(t *testing.T) {
	r, f := newResolver(t, `{"level":5}`)

	assert.Equal(t, 2.0, r.Value("floor(@actor.level / 2)", 0, resolve.DefaultOptions()))
	assert.Equal(t, 8.0, r.Value("@item.system.level.value + @actor.level", 0, resolve.DefaultOptions()))

	opts := resolve.DefaultOptions()
	opts.Resolvables = map[string]any{"weapon": map[string]any{"dice": 2.0}}
	assert.Equal(t, 4.0, r.Value("@weapon.dice * 2", 0, opts))

	// @target is always optional
	assert.Equal(t, 1.0, r.Value("@target.level + 1", 0, resolve.DefaultOptions()))
	assert.Empty(t, f.messages)

	// Not evaluated
	opts = resolve.DefaultOptions()
	opts.Evaluate = false
	assert.Equal(t, "@actor.level", r.Value("@actor.level", 0, opts))
}

func TestValue_FormulaFailuresReturnZero(t *testing.T) {
	r, f := newResolver(t, `{"level":5}`)

	assert.Equal(t, 0.0, r.Value("@actor.missing + 1", 0, resolve.DefaultOptions()))
	assert.Equal(t, 0.0, r.Value("@actor.level / 0", 0, resolve.DefaultOptions()))
	assert.Equal(t, 0.0, r.Value("@actor.level +", 0, resolve.DefaultOptions()))
	assert.Len(t, f.messages, 3)
}

func TestCoercion(t *testing.T) {
	n, ok := resolve.ToNumber("12")
	assert.True(t, ok)
	assert.Equal(t, 12.0, n)

	_, ok = resolve.ToNumber("twelve")
	assert.False(t, ok)

	b, ok := resolve.ToBool("true")
	assert.True(t, ok)
	assert.True(t, b)

	assert.True(t, resolve.IsBracketed(map[string]any{"brackets": []any{}}))
	assert.False(t, resolve.IsBracketed(map[string]any{"value": 1.0}))
}
