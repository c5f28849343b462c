package rules

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/KirkDiggler/rule-elements/internal/datatree"
	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/predicate"
	"github.com/KirkDiggler/rule-elements/internal/resolve"
)

// DefaultActorTypes may carry rule elements unless a kind says otherwise
var DefaultActorTypes = []string{
	actor.TypeCharacter, actor.TypeNPC, actor.TypeFamiliar, actor.TypeHazard, actor.TypeVehicle,
}

// Base holds the state shared by every rule element
type Base struct {
	Key       string
	Slug      string
	Label     string
	Priority  int
	Predicate predicate.Predicate

	def      *Definition
	source   *Source
	ctx      *Context
	item     *actor.Item
	index    int
	data     *datatree.Tree
	resolver *resolve.Resolver

	suppressWarnings bool
	ignored          bool
	invalid          bool
}

// BuildOptions tunes construction of one item's rule elements
type BuildOptions struct {
	SuppressWarnings bool
}

func newBase(rc *Context, def *Definition, src *Source, item *actor.Item, index int, opts BuildOptions) *Base {
	b := &Base{
		Key:              src.Key,
		Slug:             src.Slug,
		def:              def,
		source:           src,
		ctx:              rc,
		item:             item,
		index:            index,
		data:             datatree.New(src.Raw()),
		suppressWarnings: opts.SuppressWarnings || rc.Settings.SuppressWarnings,
		ignored:          src.Ignored,
	}
	b.resolver = &resolve.Resolver{
		Lookup:    b.lookup,
		Fail:      b.resolveFailed,
		Data:      b.rollData,
		Evaluator: rc.Evaluator,
	}

	switch {
	case src.Priority != nil:
		b.Priority = *src.Priority
	case def.DefaultPriority != nil:
		b.Priority = def.DefaultPriority(src)
	default:
		b.Priority = DefaultPriority
	}

	label := src.Label
	if label == "" {
		label = item.Name()
	}
	b.Label = b.resolver.InjectString(label, true)

	problems := BaseSchema.Validate(src.Raw())
	problems = append(problems, def.Schema.Validate(src.Raw())...)
	if len(problems) > 0 {
		b.invalid = true
		b.FailValidation(problems...)
	}

	b.Predicate = predicate.Parse(src.Predicate)
	if !b.Predicate.IsValid() {
		b.invalid = true
		b.FailValidation("predicate: " + b.Predicate.Problem())
	}

	validTypes := def.ValidActorTypes
	if len(validTypes) == 0 {
		validTypes = DefaultActorTypes
	}
	if !contains(validTypes, item.Actor.Type()) {
		b.FailValidation(fmt.Sprintf("this rule element may not be used on a %s", item.Actor.Type()))
	}

	if item.IsPhysical() {
		requiresEquipped := required(src.RequiresEquipped, true)
		if requiresEquipped && !item.IsEquipped() {
			b.ignored = true
		}
		// requiresInvestment follows requiresEquipped unless set
		if invested := item.IsInvested(); invested != nil && required(src.RequiresInvestment, requiresEquipped) && !*invested {
			b.ignored = true
		}
	}

	return b
}

func required(flag *bool, def bool) bool {
	if flag == nil {
		return def
	}
	return *flag
}

// Rule implements Element
func (b *Base) Rule() *Base {
	return b
}

// Source returns the parsed source
func (b *Base) Source() *Source {
	return b.source
}

// Context returns the preparation context
func (b *Base) Context() *Context {
	return b.ctx
}

// Item returns the owning item
func (b *Base) Item() *actor.Item {
	return b.item
}

// Actor returns the owning actor
func (b *Base) Actor() *actor.Actor {
	return b.item.Actor
}

// Index is the position of the source in the item's rule array
func (b *Base) Index() int {
	return b.index
}

// Data is the rule's own data, read by {rule|path} references
func (b *Base) Data() *datatree.Tree {
	return b.data
}

// Logger returns the context logger tagged with this rule
func (b *Base) Logger() *zap.Logger {
	return b.ctx.Logger.With(zap.String("key", b.Key), zap.String("item", b.item.Name()), zap.Int("index", b.index))
}

// IsIgnored reports whether the rule has no further effect this pass
func (b *Base) IsIgnored() bool {
	return b.ignored || b.source.Suppressed
}

// IsInvalid reports whether the source failed schema validation
func (b *Base) IsInvalid() bool {
	return b.invalid
}

// Ignore marks the rule ignored for the rest of the pass
func (b *Base) Ignore() {
	b.ignored = true
}

// FailValidation records a warning unless warnings are suppressed and marks
// the rule ignored
func (b *Base) FailValidation(messages ...string) {
	b.ignored = true
	if b.suppressWarnings {
		return
	}
	msg := fmt.Sprintf("%s on %s (%s) failed to validate: %s", b.Key, b.item.Name(), b.item.UUID(), strings.Join(messages, "; "))
	b.Actor().Synthetics.Warnings.Add(msg)
}

func (b *Base) resolveFailed(warn bool, message string) {
	if warn {
		b.FailValidation(message)
		return
	}
	b.ignored = true
}

func (b *Base) lookup(source, path string) (any, bool) {
	switch source {
	case resolve.SourceActor:
		return b.Actor().Get(path)
	case resolve.SourceItem:
		return b.item.Get(path)
	case resolve.SourceRule:
		return b.data.Get(path)
	}
	return nil, false
}

func (b *Base) rollData() map[string]any {
	return map[string]any{"actor": b.Actor().Data, "item": b.item.Data, "rule": b.data}
}

// Test evaluates the predicate against options, or the actor's current roll
// options when options is nil, together with the item's parent options
func (b *Base) Test(options predicate.Options) bool {
	if b.IsIgnored() {
		return false
	}
	if b.Predicate.IsEmpty() {
		return true
	}

	resolved := b.Predicate.Resolve(func(s string) string {
		return b.resolver.InjectString(s, true)
	})
	if b.IsIgnored() {
		return false
	}

	if options == nil {
		options = b.Actor().GetRollOptions()
	}
	return resolved.Test(options.Union(b.item.RollOptions("parent")))
}

// ResolveValue resolves a rule value with formulas evaluated and warnings on
func (b *Base) ResolveValue(spec, def any) any {
	return b.resolver.Value(spec, def, resolve.DefaultOptions())
}

// ResolveValueWith resolves a rule value with explicit options
func (b *Base) ResolveValueWith(spec, def any, opts resolve.Options) any {
	return b.resolver.Value(spec, def, opts)
}

// ResolveNumber resolves a rule value and coerces it to a number
func (b *Base) ResolveNumber(spec any, def float64) (float64, bool) {
	return resolve.ToNumber(b.ResolveValue(spec, def))
}

// ResolveInjected replaces {actor|...}, {item|...} and {rule|...} references
func (b *Base) ResolveInjected(value any) any {
	return b.resolver.InjectProperties(value, true)
}

// ResolveInjectedString is ResolveInjected for a single string
func (b *Base) ResolveInjectedString(s string) string {
	return b.resolver.InjectString(s, true)
}

// Resolver exposes the rule's resolver
func (b *Base) Resolver() *resolve.Resolver {
	return b.resolver
}

// Field reads a raw source field
func (b *Base) Field(name string) gjson.Result {
	return b.data.Result(datatree.EscapeKey(name))
}

// Value decodes a source field into plain JSON values, or nil
func (b *Base) Value(name string) any {
	v, _ := b.data.Get(datatree.EscapeKey(name))
	return v
}

// String reads a string field, or ""
func (b *Base) String(name string) string {
	return b.Field(name).String()
}

// Bool reads a boolean field with a default for absent or null values
func (b *Base) Bool(name string, def bool) bool {
	r := b.Field(name)
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return r.Bool()
}

// Strings reads a string or array of strings field
func (b *Base) Strings(name string) []string {
	r := b.Field(name)
	if r.IsArray() {
		var out []string
		for _, v := range r.Array() {
			if s := v.String(); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := r.String(); r.Type == gjson.String && s != "" {
		return []string{s}
	}
	return nil
}

// SourceID identifies the rule within its actor for log lines and toggles
func (b *Base) SourceID() string {
	return fmt.Sprintf("%s:%d", b.item.ID(), b.index)
}
