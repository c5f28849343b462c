package kinds

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	"github.com/KirkDiggler/rule-elements/internal/predicate"
	"github.com/KirkDiggler/rule-elements/internal/resolve"
	"github.com/KirkDiggler/rule-elements/internal/rules"
)

// Every actor type, for kinds that make sense on any actor
var allActorTypes = []string{
	actor.TypeCharacter, actor.TypeNPC, actor.TypeFamiliar, actor.TypeHazard,
	actor.TypeLoot, actor.TypeVehicle, actor.TypeParty, actor.TypeArmy,
}

var creatureActorTypes = []string{actor.TypeCharacter, actor.TypeNPC, actor.TypeFamiliar}

var selectorField = rules.Field{Name: "selector", Type: rules.TypeString | rules.TypeArray, Required: true, Check: rules.StringArray}

// selectors reads a string-or-array field and resolves injected properties in each entry
func selectors(b *rules.Base, field string) []string {
	var out []string
	for _, s := range b.Strings(field) {
		if resolved := b.ResolveInjectedString(s); resolved != "" {
			out = append(out, resolved)
		}
	}
	return out
}

// resolvedPredicate returns the rule predicate with injected properties resolved
func resolvedPredicate(b *rules.Base) predicate.Predicate {
	return b.Predicate.Resolve(b.ResolveInjectedString)
}

// slugOrLabel returns the rule slug, or one derived from its label
func slugOrLabel(b *rules.Base) string {
	if b.Slug != "" {
		return b.Slug
	}
	return document.Slugify(b.Label)
}

// resolveWith evaluates spec with roll-time resolvables
func resolveWith(b *rules.Base, spec, def any, resolvables map[string]any) any {
	return b.ResolveValueWith(spec, def, resolve.Options{Evaluate: true, Warn: true, Resolvables: resolvables})
}

// number coerces numeric JSON values
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// truncInt truncates v toward zero, saturating at the int32 range. NaN is 0.
func truncInt(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int(math.Trunc(v))
}

// checkedInt truncates v toward zero. ok is false when v is NaN or outside
// the int32 range.
func checkedInt(v float64) (int, bool) {
	if math.IsNaN(v) || v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return int(math.Trunc(v)), true
}

// camelize turns a slug into a dromedary-case flag name
func camelize(slug string) string {
	parts := strings.Split(document.Slugify(slug), "-")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 || b.Len() == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// boolOr reads a nested boolean with a default for absent or null values
func boolOr(r gjson.Result, def bool) bool {
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return r.Bool()
}

func ptr[T any](v T) *T {
	return &v
}

// isInjected reports whether s holds an unresolved {source|path} reference
func isInjected(s string) bool {
	return strings.Contains(s, "{") && strings.Contains(s, "|")
}
