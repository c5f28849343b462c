package resolve

import (
	"math"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rule-elements/internal/formula"
)

// DefaultBracketField is read when a bracketed value names no field
const DefaultBracketField = "actor|level"

// Options controls a single Value call
type Options struct {
	Evaluate    bool
	Warn        bool
	Resolvables map[string]any
}

// DefaultOptions evaluates formulas and warns on failure
func DefaultOptions() Options {
	return Options{Evaluate: true, Warn: true}
}

// Value resolves a rule value. Literals pass through, strings have injected
// properties resolved, bracketed values select by field, objects merge over an
// object default and strings containing @ are evaluated as formulas.
// Failures never panic: they are reported through Fail and produce 0.
func (r *Resolver) Value(spec, def any, opts Options) any {
	value := spec
	if value == nil {
		value = def
	}

	switch v := value.(type) {
	case nil, bool, float64, int:
		return v
	case string:
		value = r.injectString(v, opts.Warn)
	}

	if IsBracketed(value) {
		value = r.bracket(value.(map[string]any), def, opts.Warn)
		if s, ok := value.(string); ok {
			value = r.injectString(s, opts.Warn)
		}
	}

	if obj, ok := value.(map[string]any); ok {
		if defObj, ok := def.(map[string]any); ok {
			return Merge(defObj, obj)
		}
		return obj
	}

	if s, ok := value.(string); ok && opts.Evaluate && strings.Contains(s, "@") {
		return r.evaluate(s, opts)
	}

	return value
}

func (r *Resolver) evaluate(expr string, opts Options) any {
	data := map[string]any{}
	if r.Data != nil {
		for k, v := range r.Data() {
			data[k] = v
		}
	}
	for k, v := range opts.Resolvables {
		data[k] = v
	}

	substituted, unresolved := formula.ReplaceData(expr, data, "target")
	if len(unresolved) > 0 {
		r.fail(opts.Warn, "unable to resolve %q in formula %q", "@"+unresolved[0], expr)
		return float64(0)
	}
	if r.Evaluator == nil {
		r.fail(opts.Warn, "no formula evaluator available for %q", expr)
		return float64(0)
	}

	result, err := r.Evaluator.Evaluate(substituted)
	if err != nil {
		r.fail(opts.Warn, "error thrown while evaluating formula %q: %v", expr, err)
		return float64(0)
	}
	return result
}

func (r *Resolver) bracket(spec map[string]any, def any, warn bool) any {
	field := DefaultBracketField
	if f, ok := spec["field"].(string); ok && f != "" {
		field = f
	}

	var key float64
	source, path, found := strings.Cut(field, "|")
	if !found {
		source, path = SourceActor, field
	}
	if raw, ok := r.lookup(source, path); ok {
		if n, ok := ToNumber(raw); ok {
			key = n
		}
	}

	brackets, _ := spec["brackets"].([]any)
	for _, b := range brackets {
		entry, ok := b.(map[string]any)
		if !ok {
			continue
		}
		start, end := 0.0, math.Inf(1)
		if n, ok := ToNumber(entry["start"]); ok {
			start = n
		}
		if n, ok := ToNumber(entry["end"]); ok {
			end = n
		}
		if key >= start && key <= end {
			// A matching bracket without a value still ends the search
			if v, ok := entry["value"]; ok && v != nil {
				return v
			}
			break
		}
	}

	return coerceDefault(def)
}

func coerceDefault(def any) any {
	if s, ok := def.(string); ok {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n
		}
	}
	return def
}

// IsBracketed reports whether v is a {field?, brackets: []} value
func IsBracketed(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, ok = obj["brackets"].([]any)
	return ok
}

// Merge deep-merges over on top of base without mutating either
func Merge(base, over map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		if bv, ok := out[k].(map[string]any); ok {
			if ov, ok := v.(map[string]any); ok {
				out[k] = Merge(bv, ov)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// ToNumber coerces numbers and numeric strings
func ToNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// ToBool coerces booleans and "true"/"false" strings
func ToBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	case float64:
		return t != 0, true
	default:
		return false, false
	}
}
