// Package resolve turns authored rule values into concrete values: it
// interpolates {actor|path} style references, selects bracketed values and
// evaluates @-formulas.
package resolve

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rule-elements/internal/formula"
)

// Sources that injected references may read from
const (
	SourceActor = "actor"
	SourceItem  = "item"
	SourceRule  = "rule"
)

// Undefined is substituted for references that cannot be resolved
const Undefined = "undefined"

var injectedPattern = regexp.MustCompile(`\{(actor|item|rule)\|(.*?)\}`)

// Resolver resolves values on behalf of one rule element
type Resolver struct {
	// Lookup reads path from the actor, item or rule data
	Lookup func(source, path string) (any, bool)

	// Fail records a soft failure for the owning element. warn reports whether
	// the failure should also produce a warning.
	Fail func(warn bool, message string)

	// Data returns the root objects available to @-formulas
	Data func() map[string]any

	Evaluator *formula.Evaluator
}

func (r *Resolver) fail(warn bool, format string, args ...any) {
	if r.Fail != nil {
		r.Fail(warn, fmt.Sprintf(format, args...))
	}
}

func (r *Resolver) lookup(source, path string) (any, bool) {
	if r.Lookup == nil {
		return nil, false
	}
	v, ok := r.Lookup(source, path)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// InjectProperties replaces every {source|path} token in strings, walking
// arrays and objects. Missing references fail the element and render as
// "undefined" so every failing token in a string is reported.
func (r *Resolver) InjectProperties(value any, warn bool) any {
	switch v := value.(type) {
	case string:
		return r.injectString(v, warn)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = r.InjectProperties(item, warn)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = r.InjectProperties(item, warn)
		}
		return out
	default:
		return value
	}
}

// InjectString is InjectProperties for a single string
func (r *Resolver) InjectString(s string, warn bool) string {
	return r.injectString(s, warn)
}

func (r *Resolver) injectString(s string, warn bool) string {
	if !strings.Contains(s, "{") {
		return s
	}

	return injectedPattern.ReplaceAllStringFunc(s, func(token string) string {
		m := injectedPattern.FindStringSubmatch(token)
		source, path := m[1], m[2]

		v, ok := r.lookup(source, path)
		if !ok {
			r.fail(warn, "unable to resolve reference %q", token)
			return Undefined
		}
		return Stringify(v)
	})
}

// Stringify renders a resolved value the way it appears inside text
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return Undefined
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
}
