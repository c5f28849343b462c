package kinds

import (
	"fmt"

	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/rules"
)

const (
	pathSize            = "system.traits.size.value"
	pathReachBase       = "system.attributes.reach.base"
	pathReachManipulate = "system.attributes.reach.manipulate"
)

var sizeAliases = map[string]string{
	"small":      "sm",
	"medium":     "med",
	"large":      "lg",
	"gargantuan": "grg",
}

// Reach granted by each size
var sizeReach = map[string]float64{"tiny": 0, "sm": 5, "med": 5, "lg": 10, "huge": 15, "grg": 20}

// CreatureSize changes the actor's size and, with it, reach
type CreatureSize struct {
	*rules.Base
	MinimumSize string
	MaximumSize string

	value any
	reach any
}

func creatureSizeDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "CreatureSize",
		Schema: rules.Schema{
			{Name: "value", Type: rules.TypeResolvable, Required: true},
			{Name: "minimumSize", Type: rules.TypeString},
			{Name: "maximumSize", Type: rules.TypeString},
			{Name: "reach", Type: rules.TypeNumber | rules.TypeObject, Nullable: true},
			{Name: "resizeEquipment", Type: rules.TypeBoolean},
		},
		ValidActorTypes: creatureActorTypes,
		DefaultPriority: func(*rules.Source) int { return 10 },
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &CreatureSize{
				Base:        b,
				MinimumSize: normalizeSize(b.String("minimumSize")),
				MaximumSize: normalizeSize(b.String("maximumSize")),
				value:       b.Value("value"),
				reach:       b.Value("reach"),
			}
			t := b.Context().Tables
			for _, s := range []struct{ field, size string }{{"minimumSize", r.MinimumSize}, {"maximumSize", r.MaximumSize}} {
				if s.size != "" && t.SizeIndex(s.size) < 0 {
					b.FailValidation(fmt.Sprintf("%s: %q is not a size", s.field, s.size))
				}
			}
			return r, nil
		},
	}
}

func normalizeSize(s string) string {
	if alias, ok := sizeAliases[s]; ok {
		return alias
	}
	return s
}

// BeforePrepareData implements rules.BeforePrepareDataHook
func (r *CreatureSize) BeforePrepareData() {
	if !r.Test(nil) {
		return
	}

	data := r.Actor().Data
	t := r.Context().Tables
	currentSize := data.String(pathSize)
	if currentSize == "" {
		currentSize = "med"
	}

	next, ok := r.targetSize(currentSize)
	if !ok || r.IsIgnored() {
		return
	}
	if r.MinimumSize != "" && t.SizeIndex(next) < t.SizeIndex(r.MinimumSize) {
		next = r.MinimumSize
	}
	if r.MaximumSize != "" && t.SizeIndex(next) > t.SizeIndex(r.MaximumSize) {
		next = r.MaximumSize
	}

	if err := data.Set(pathSize, next); err != nil {
		r.FailValidation(err.Error())
		return
	}
	a := r.Actor()
	a.SetRollOption(actor.DomainAll, "self:size:"+currentSize, false)
	a.SetRollOption(actor.DomainAll, "self:size:"+next, true)
	r.applyReach(next)
}

// targetSize reads an absolute size or a number of steps from current
func (r *CreatureSize) targetSize(current string) (string, bool) {
	t := r.Context().Tables
	v := r.ResolveValue(r.value, nil)
	if n, ok := number(v); ok {
		idx := t.SizeIndex(current) + truncInt(n)
		idx = min(max(idx, 0), len(t.Sizes)-1)
		return t.Sizes[idx], true
	}
	s, _ := v.(string)
	s = normalizeSize(s)
	if t.SizeIndex(s) < 0 {
		r.FailValidation(fmt.Sprintf("value: %q is not a size", s))
		return "", false
	}
	return s, true
}

func (r *CreatureSize) applyReach(size string) {
	data := r.Actor().Data
	base := data.Float(pathReachBase)

	var reach float64
	switch v := r.ResolveValue(r.reach, nil).(type) {
	case nil:
		reach = max(base, sizeReach[size])
	case float64:
		reach = v
	case map[string]any:
		reach = base
		if n, ok := r.ResolveNumber(v["add"], 0); ok && v["add"] != nil {
			reach += n
		}
		if n, ok := r.ResolveNumber(v["upgrade"], 0); ok && v["upgrade"] != nil {
			reach = max(reach, n)
		}
		if n, ok := r.ResolveNumber(v["override"], 0); ok && v["override"] != nil {
			reach = n
		}
	default:
		r.FailValidation("reach: must be a number or an object")
		return
	}
	if r.IsIgnored() {
		return
	}

	reach = max(float64(truncInt(reach)), 0)
	_ = data.Set(pathReachBase, reach)
	_ = data.Set(pathReachManipulate, max(data.Float(pathReachManipulate), reach))
}
