// Package synthetics is the per-pass bag of contributions rule elements make
// to an actor's statistics. Statistic code reads it at roll time.
package synthetics

import (
	"github.com/KirkDiggler/rule-elements/internal/predicate"
)

// RollContext is what deferred contributions see when they are resolved
type RollContext struct {
	Domains     []string
	Options     predicate.Options
	Resolvables map[string]any
}

// Deferred lazily produces a contribution once roll options are known
type Deferred[T any] func(ctx RollContext) (T, bool)

type entry[T any] struct {
	id    uint64
	value T
}

// Collection maps selectors to contributions in insertion order. It only grows.
type Collection[T any] struct {
	next    *uint64
	order   []string
	entries map[string][]entry[T]
}

func newCollection[T any](counter *uint64) *Collection[T] {
	return &Collection[T]{next: counter, entries: make(map[string][]entry[T])}
}

// Add appends v under selector
func (c *Collection[T]) Add(selector string, v T) {
	*c.next++
	if _, ok := c.entries[selector]; !ok {
		c.order = append(c.order, selector)
	}
	c.entries[selector] = append(c.entries[selector], entry[T]{id: *c.next, value: v})
}

// Get returns the contributions under selector
func (c *Collection[T]) Get(selector string) []T {
	list := c.entries[selector]
	out := make([]T, len(list))
	for i, e := range list {
		out[i] = e.value
	}
	return out
}

// Selectors lists the selectors in first-use order
func (c *Collection[T]) Selectors() []string {
	return append([]string(nil), c.order...)
}

// Len counts every contribution
func (c *Collection[T]) Len() int {
	n := 0
	for _, list := range c.entries {
		n += len(list)
	}
	return n
}

// collect flattens selectors, dropping repeated selectors and entries added
// under more than one selector
func (c *Collection[T]) collect(selectors []string) []T {
	seenSelector := make(map[string]bool, len(selectors))
	seenEntry := make(map[uint64]bool)
	var out []T
	for _, s := range selectors {
		if seenSelector[s] {
			continue
		}
		seenSelector[s] = true
		for _, e := range c.entries[s] {
			if seenEntry[e.id] {
				continue
			}
			seenEntry[e.id] = true
			out = append(out, e.value)
		}
	}
	return out
}

// Registry holds every synthetic contribution of one preparation pass
type Registry struct {
	counter uint64

	Modifiers                  *Collection[DeferredModifier]
	DamageDice                 *Collection[Deferred[*DamageDice]]
	RollNotes                  *Collection[*RollNote]
	ModifierAdjustments        *Collection[*ModifierAdjustment]
	RollTwice                  *Collection[*RollTwice]
	DegreeOfSuccessAdjustments *Collection[*DegreeOfSuccessAdjustment]
	RollSubstitutions          *Collection[*RollSubstitution]
	MultipleAttackPenalties    *Collection[*MultipleAttackPenalty]
	MovementTypes              *Collection[Deferred[*MovementType]]
	Striking                   *Collection[*StrikingEntry]
	WeaponPotency              *Collection[*PotencyEntry]
	EphemeralEffects           *Collection[*EphemeralEffect]

	DexterityModifierCaps []*DexterityModifierCap
	Senses                []*SenseEntry

	Strikes  *Strikes
	Toggles  *Toggles
	Warnings *Warnings
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	r := &Registry{}
	r.Modifiers = newCollection[DeferredModifier](&r.counter)
	r.DamageDice = newCollection[Deferred[*DamageDice]](&r.counter)
	r.RollNotes = newCollection[*RollNote](&r.counter)
	r.ModifierAdjustments = newCollection[*ModifierAdjustment](&r.counter)
	r.RollTwice = newCollection[*RollTwice](&r.counter)
	r.DegreeOfSuccessAdjustments = newCollection[*DegreeOfSuccessAdjustment](&r.counter)
	r.RollSubstitutions = newCollection[*RollSubstitution](&r.counter)
	r.MultipleAttackPenalties = newCollection[*MultipleAttackPenalty](&r.counter)
	r.MovementTypes = newCollection[Deferred[*MovementType]](&r.counter)
	r.Striking = newCollection[*StrikingEntry](&r.counter)
	r.WeaponPotency = newCollection[*PotencyEntry](&r.counter)
	r.EphemeralEffects = newCollection[*EphemeralEffect](&r.counter)
	r.Strikes = newStrikes()
	r.Toggles = newToggles()
	r.Warnings = NewWarnings()
	return r
}

// AddModifier appends a deferred statistic modifier under selector
func (r *Registry) AddModifier(selector string, d DeferredModifier) {
	r.Modifiers.Add(selector, d)
}

// AddDamageDice appends deferred damage dice under selector
func (r *Registry) AddDamageDice(selector string, d Deferred[*DamageDice]) {
	r.DamageDice.Add(selector, d)
}

// AddNote appends a roll note under selector
func (r *Registry) AddNote(selector string, note *RollNote) {
	r.RollNotes.Add(selector, note)
}

// AddModifierAdjustment appends an adjustment under selector
func (r *Registry) AddModifierAdjustment(selector string, adj *ModifierAdjustment) {
	r.ModifierAdjustments.Add(selector, adj)
}
