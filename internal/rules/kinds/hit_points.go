package kinds

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rule-elements/internal/datatree"
	"github.com/KirkDiggler/rule-elements/internal/rules"
)

// Actor update paths touched by hit point kinds
const (
	pathHP           = "system.attributes.hp.value"
	pathHPMax        = "system.attributes.hp.max"
	pathTempHP       = "system.attributes.hp.temp"
	pathTempHPSource = "flags.pf2e.tempHPSource"
)

// current reads path from pending updates first, then the actor's data
func current(r *rules.Base, updates rules.ActorUpdates, path string) float64 {
	if _, ok := updates[path]; ok {
		return updates.Number(path)
	}
	return r.Actor().Data.Float(path)
}

// TempHP grants temporary hit points on creation and optionally each turn
type TempHP struct {
	*rules.Base
	OnCreateEvent    bool
	OnTurnStartEvent bool
	value            any
}

func tempHPDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "TempHP",
		Schema: rules.Schema{
			{Name: "value", Type: rules.TypeResolvable, Required: true},
			{Name: "events", Type: rules.TypeObject},
		},
		ValidActorTypes: creatureActorTypes,
		Build: func(b *rules.Base) (rules.Element, error) {
			return &TempHP{
				Base:             b,
				OnCreateEvent:    boolOr(b.Field("events").Get("onCreate"), true),
				OnTurnStartEvent: boolOr(b.Field("events").Get("onTurnStart"), false),
				value:            b.Value("value"),
			}, nil
		},
	}
}

// OnCreate implements rules.OnCreateHook
func (r *TempHP) OnCreate(updates rules.ActorUpdates) {
	if r.OnCreateEvent {
		r.grant(updates)
	}
}

// OnTurnStart implements rules.OnTurnStartHook
func (r *TempHP) OnTurnStart(updates rules.ActorUpdates) {
	if r.OnTurnStartEvent {
		r.grant(updates)
	}
}

// grant keeps whichever of the current and new temporary hit points is higher
func (r *TempHP) grant(updates rules.ActorUpdates) {
	if !r.Test(nil) {
		return
	}
	n, ok := r.ResolveNumber(r.value, 0)
	if r.IsIgnored() {
		return
	}
	if !ok || n < 0 {
		r.FailValidation("value: must resolve to a non-negative number")
		return
	}

	value := float64(truncInt(n))
	if value <= current(r.Base, updates, pathTempHP) {
		return
	}
	updates[pathTempHP] = value
	updates[pathTempHPSource] = r.Item().ID()
}

// OnDelete removes the temporary hit points this item granted
func (r *TempHP) OnDelete(updates rules.ActorUpdates) {
	if r.Actor().Data.String(pathTempHPSource) != r.Item().ID() {
		return
	}
	updates[pathTempHP] = 0.0
	updates[pathTempHPSource] = nil
}

// FastHealing restores hit points at the start of each turn
type FastHealing struct {
	*rules.Base
	Type          string
	Details       string
	DeactivatedBy []string
	value         any
}

func fastHealingDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "FastHealing",
		Schema: rules.Schema{
			{Name: "value", Type: rules.TypeResolvable, Required: true},
			{Name: "type", Type: rules.TypeString, Choices: []string{"fast-healing", "regeneration"}},
			{Name: "details", Type: rules.TypeString},
			{Name: "deactivatedBy", Type: rules.TypeArray, Check: rules.StringArray},
		},
		ValidActorTypes: creatureActorTypes,
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &FastHealing{
				Base:          b,
				Type:          b.String("type"),
				Details:       b.String("details"),
				DeactivatedBy: b.Strings("deactivatedBy"),
				value:         b.Value("value"),
			}
			if r.Type == "" {
				r.Type = "fast-healing"
			}
			return r, nil
		},
	}
}

// OnTurnStart rolls the healing and applies it up to maximum hit points
func (r *FastHealing) OnTurnStart(updates rules.ActorUpdates) {
	if !r.Test(nil) {
		return
	}

	amount, ok := r.amount()
	if r.IsIgnored() {
		return
	}
	if !ok || amount <= 0 {
		r.FailValidation("value: must resolve to a positive number")
		return
	}

	hp := current(r.Base, updates, pathHP)
	maxHP := current(r.Base, updates, pathHPMax)
	healed := min(hp+amount, maxHP)
	if healed <= hp {
		return
	}
	updates[pathHP] = healed

	r.Logger().Info("[RULES] "+r.Type,
		zap.String("actor", r.Actor().Name()),
		zap.String("source", r.Label),
		zap.Float64("healed", healed-hp))
}

// amount resolves the value; plain dice notation is rolled
func (r *FastHealing) amount() (float64, bool) {
	v := r.ResolveValue(r.value, 0.0)
	if n, ok := number(v); ok {
		return float64(truncInt(n)), true
	}
	s, ok := v.(string)
	if !ok || r.Context().Evaluator == nil {
		return 0, false
	}
	n, err := r.Context().Evaluator.Evaluate(s)
	if err != nil {
		r.FailValidation(fmt.Sprintf("value: %v", err))
		return 0, false
	}
	return float64(truncInt(n)), true
}

// LoseHitPoints removes hit points when its item is created
type LoseHitPoints struct {
	*rules.Base
	value any
}

func loseHitPointsDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "LoseHitPoints",
		Schema: rules.Schema{
			{Name: "value", Type: rules.TypeResolvable, Required: true},
		},
		ValidActorTypes: creatureActorTypes,
		Build: func(b *rules.Base) (rules.Element, error) {
			return &LoseHitPoints{Base: b, value: b.Value("value")}, nil
		},
	}
}

// OnCreate implements rules.OnCreateHook
func (r *LoseHitPoints) OnCreate(updates rules.ActorUpdates) {
	if !r.Test(nil) {
		return
	}
	n, ok := r.ResolveNumber(r.value, 0)
	if r.IsIgnored() {
		return
	}
	if !ok || n < 0 {
		r.FailValidation("value: must resolve to a non-negative number")
		return
	}
	updates[pathHP] = max(current(r.Base, updates, pathHP)-float64(truncInt(n)), 0)
}

// SpecialResource gives the actor a tracked resource with a maximum
type SpecialResource struct {
	*rules.Base
	max any
}

func specialResourceDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "SpecialResource",
		Schema: rules.Schema{
			{Name: "slug", Type: rules.TypeString, Required: true},
			{Name: "max", Type: rules.TypeResolvable, Required: true},
		},
		ValidActorTypes: creatureActorTypes,
		Build: func(b *rules.Base) (rules.Element, error) {
			return &SpecialResource{Base: b, max: b.Value("max")}, nil
		},
	}
}

func (r *SpecialResource) path() string {
	return "system.resources." + datatree.EscapeKey(r.Slug)
}

func (r *SpecialResource) resolveMax() (float64, bool) {
	n, ok := r.ResolveNumber(r.max, 0)
	if r.IsIgnored() {
		return 0, false
	}
	if !ok || n < 0 {
		r.FailValidation("max: must resolve to a non-negative number")
		return 0, false
	}
	return float64(truncInt(n)), true
}

// BeforePrepareData exposes the resource with its current value clamped to max
func (r *SpecialResource) BeforePrepareData() {
	maxValue, ok := r.resolveMax()
	if !ok {
		return
	}
	data := r.Actor().Data
	value := maxValue
	if data.Exists(r.path() + ".value") {
		value = min(max(data.Float(r.path()+".value"), 0), maxValue)
	}
	if err := data.Set(r.path(), map[string]any{"value": value, "max": maxValue}); err != nil {
		r.FailValidation(err.Error())
	}
}

// OnCreate fills the resource
func (r *SpecialResource) OnCreate(updates rules.ActorUpdates) {
	if maxValue, ok := r.resolveMax(); ok {
		updates[r.path()] = map[string]any{"value": maxValue, "max": maxValue}
	}
}

// OnDelete removes the resource
func (r *SpecialResource) OnDelete(updates rules.ActorUpdates) {
	updates[r.path()] = nil
}
