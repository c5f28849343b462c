package kinds

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"

	"github.com/KirkDiggler/rule-elements/internal/datatree"
	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
	"github.com/KirkDiggler/rule-elements/internal/predicate"
	"github.com/KirkDiggler/rule-elements/internal/rules"
)

// Change modes
const (
	ModeMultiply  = "multiply"
	ModeAdd       = "add"
	ModeSubtract  = "subtract"
	ModeRemove    = "remove"
	ModeDowngrade = "downgrade"
	ModeUpgrade   = "upgrade"
	ModeOverride  = "override"
)

// Phases an ActiveEffectLike can apply in
const (
	PhaseApplyAEs      = "applyAEs"
	PhaseBeforeDerived = "beforeDerived"
	PhaseAfterDerived  = "afterDerived"
	PhaseBeforeRoll    = "beforeRoll"
)

var changeModes = []string{ModeMultiply, ModeAdd, ModeSubtract, ModeRemove, ModeDowngrade, ModeUpgrade, ModeOverride}

// ModePriorities is the default priority of each change mode. Multiplication
// applies before flat changes and overrides apply last.
var ModePriorities = map[string]int{
	ModeMultiply:  10,
	ModeAdd:       20,
	ModeSubtract:  20,
	ModeRemove:    20,
	ModeDowngrade: 30,
	ModeUpgrade:   40,
	ModeOverride:  50,
}

func modePriority(src *rules.Source) int {
	var mode string
	_ = json.Unmarshal(src.Extra["mode"], &mode)
	if p, ok := ModePriorities[mode]; ok {
		return p
	}
	return rules.DefaultPriority
}

// GetNewValue applies a change to current. It never panics: an impossible
// change returns a validation error instead of a value.
func GetNewValue(mode string, current, change any) (any, error) {
	cur, curNumeric := number(current)
	curOK := curNumeric || current == nil

	switch mode {
	case ModeMultiply, ModeDowngrade, ModeUpgrade:
		ch, ok := number(change)
		if !ok {
			return nil, dnderr.Validationf("%s requires a numeric value, got %s", mode, describe(change))
		}
		if !curOK {
			return nil, dnderr.Validationf("cannot %s a %s", mode, describe(current))
		}
		switch mode {
		case ModeMultiply:
			return math.Trunc(cur * ch), nil
		case ModeDowngrade:
			return min(cur, ch), nil
		default:
			return max(cur, ch), nil
		}
	case ModeAdd:
		return addOrSubtract(current, change, false)
	case ModeSubtract, ModeRemove:
		return addOrSubtract(current, change, true)
	case ModeOverride:
		return change, nil
	}
	return nil, dnderr.Validationf("unknown change mode %q", mode)
}

func addOrSubtract(current, change any, subtract bool) (any, error) {
	if ch, ok := number(change); ok {
		if cur, ok := number(current); ok || current == nil {
			if subtract {
				return cur - ch, nil
			}
			return cur + ch, nil
		}
	}

	if list, ok := current.([]any); ok && homogeneous(list, change) {
		if !subtract {
			return append(append([]any(nil), list...), change), nil
		}
		out := make([]any, 0, len(list))
		for _, e := range list {
			if !reflect.DeepEqual(e, change) {
				out = append(out, e)
			}
		}
		return out, nil
	}

	verb := "add"
	if subtract {
		verb = "subtract"
	}
	return nil, dnderr.Validationf("cannot %s %s to %s", verb, describe(change), describe(current))
}

func homogeneous(list []any, v any) bool {
	kind := describe(v)
	for _, e := range list {
		if describe(e) != kind {
			return false
		}
	}
	return true
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case float64, int, int64:
		return "number"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	default:
		return "object"
	}
}

// ActiveEffectLike changes a value at a path of the actor's working data
type ActiveEffectLike struct {
	*rules.Base
	Mode  string
	Path  string
	Phase string
	value any
}

func activeEffectLikeDefinition() *rules.Definition {
	return &rules.Definition{
		Key: "ActiveEffectLike",
		Schema: rules.Schema{
			{Name: "mode", Type: rules.TypeString, Required: true, Choices: changeModes},
			{Name: "path", Type: rules.TypeString, Required: true},
			{Name: "phase", Type: rules.TypeString, Choices: []string{PhaseApplyAEs, PhaseBeforeDerived, PhaseAfterDerived, PhaseBeforeRoll}},
			{Name: "value", Required: true},
		},
		ValidActorTypes: allActorTypes,
		DefaultPriority: modePriority,
		Build: func(b *rules.Base) (rules.Element, error) {
			r := &ActiveEffectLike{
				Base:  b,
				Mode:  b.String("mode"),
				Path:  b.String("path"),
				Phase: b.String("phase"),
				value: b.Value("value"),
			}
			if r.Phase == "" {
				r.Phase = PhaseApplyAEs
			}
			return r, nil
		},
	}
}

// OnApplyActiveEffects implements rules.ActiveEffectsApplier
func (r *ActiveEffectLike) OnApplyActiveEffects() {
	if r.Phase == PhaseApplyAEs {
		r.apply(nil)
	}
}

// BeforePrepareData implements rules.BeforePrepareDataHook
func (r *ActiveEffectLike) BeforePrepareData() {
	if r.Phase == PhaseBeforeDerived {
		r.apply(nil)
	}
}

// AfterPrepareData implements rules.AfterPrepareDataHook
func (r *ActiveEffectLike) AfterPrepareData() {
	if r.Phase == PhaseAfterDerived {
		r.apply(nil)
	}
}

// BeforeRoll implements rules.BeforeRollHook
func (r *ActiveEffectLike) BeforeRoll(_ []string, options predicate.Options) {
	if r.Phase == PhaseBeforeRoll {
		r.apply(options)
	}
}

func (r *ActiveEffectLike) apply(options predicate.Options) {
	if !r.Test(options) {
		return
	}

	path := r.ResolveInjectedString(r.Path)
	if r.IsIgnored() {
		return
	}
	a := r.Actor()
	if !pathIsValid(a.Data, path) {
		r.FailValidation("no data found at or near " + path)
		return
	}

	change := r.ResolveValue(r.value, nil)
	if r.IsIgnored() {
		return
	}
	if change == nil {
		r.FailValidation("value: could not be resolved")
		return
	}

	current, _ := a.Data.Get(path)
	next, err := GetNewValue(r.Mode, current, change)
	if err != nil {
		r.FailValidation(err.Error())
		return
	}
	if err := a.Data.Set(path, next); err != nil {
		r.FailValidation(err.Error())
		return
	}
	a.RecordAutoChange(path, actor.AutoChange{Mode: r.Mode, Value: change, Source: r.Label})
}

// pathIsValid accepts flags paths and paths whose own, parent or grandparent
// value exists
func pathIsValid(data *datatree.Tree, path string) bool {
	if path == "" {
		return false
	}
	if strings.HasPrefix(path, "flags.") {
		return true
	}
	segments := strings.Split(path, ".")
	for drop := 0; drop <= 2 && drop < len(segments); drop++ {
		if data.Exists(strings.Join(segments[:len(segments)-drop], ".")) {
			return true
		}
	}
	return false
}
