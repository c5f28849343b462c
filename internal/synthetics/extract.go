package synthetics

import (
	"context"
	"errors"
	"fmt"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
)

// ExtractModifiers resolves the deferred modifiers of every selector and
// attaches the modifier adjustments registered under the same selectors
func ExtractModifiers(r *Registry, selectors []string, rc RollContext) []*Modifier {
	adjustments := r.ModifierAdjustments.collect(selectors)

	var out []*Modifier
	for _, deferred := range r.Modifiers.collect(selectors) {
		m, ok := deferred(rc)
		if !ok || m == nil {
			continue
		}
		for _, adj := range adjustments {
			if adj.Slug == "" || adj.Slug == m.Slug {
				m.Adjustments = append(m.Adjustments, adj)
			}
		}
		out = append(out, m)
	}
	return out
}

// ExtractDamageDice resolves deferred damage dice and splits out persistent damage
func ExtractDamageDice(r *Registry, selectors []string, rc RollContext) DamageDiceSet {
	var set DamageDiceSet
	for _, deferred := range r.DamageDice.collect(selectors) {
		d, ok := deferred(rc)
		if !ok || d == nil {
			continue
		}
		if d.IsPersistent() {
			set.Persistent = append(set.Persistent, d)
		} else {
			set.Main = append(set.Main, d)
		}
	}
	return set
}

// PartitionModifiers splits damage modifiers into main and persistent
func PartitionModifiers(mods []*Modifier) (main, persistent []*Modifier) {
	for _, m := range mods {
		if m.DamageCategory == DamageCategoryPersistent {
			persistent = append(persistent, m)
		} else {
			main = append(main, m)
		}
	}
	return main, persistent
}

// ExtractNotes returns the notes of every selector whose predicate passes
func ExtractNotes(r *Registry, selectors []string, rc RollContext) []*RollNote {
	var out []*RollNote
	for _, note := range r.RollNotes.collect(selectors) {
		if note.Predicate.Test(rc.Options) {
			out = append(out, note)
		}
	}
	return out
}

// ExtractRollTwice reports which result to keep, or "" when there is no
// roll-twice effect or keep-higher and keep-lower cancel out
func ExtractRollTwice(r *Registry, selectors []string, rc RollContext) string {
	var higher, lower bool
	for _, rt := range r.RollTwice.collect(selectors) {
		if !rt.Predicate.Test(rc.Options) {
			continue
		}
		switch rt.Keep {
		case "higher":
			higher = true
		case "lower":
			lower = true
		}
	}

	switch {
	case higher && lower:
		return ""
	case higher:
		return "higher"
	case lower:
		return "lower"
	}
	return ""
}

// ExtractDegreeOfSuccessAdjustments returns the adjustments whose predicate passes
func ExtractDegreeOfSuccessAdjustments(r *Registry, selectors []string, rc RollContext) []*DegreeOfSuccessAdjustment {
	var out []*DegreeOfSuccessAdjustment
	for _, adj := range r.DegreeOfSuccessAdjustments.collect(selectors) {
		if adj.Predicate.Test(rc.Options) {
			out = append(out, adj)
		}
	}
	return out
}

// ExtractRollSubstitutions returns the substitutions whose predicate passes
func ExtractRollSubstitutions(r *Registry, selectors []string, rc RollContext) []*RollSubstitution {
	var out []*RollSubstitution
	for _, sub := range r.RollSubstitutions.collect(selectors) {
		if sub.Predicate.Test(rc.Options) {
			out = append(out, sub)
		}
	}
	return out
}

// ExtractMultipleAttackPenalties returns the alternatives whose predicate passes
func ExtractMultipleAttackPenalties(r *Registry, selectors []string, rc RollContext) []*MultipleAttackPenalty {
	var out []*MultipleAttackPenalty
	for _, p := range r.MultipleAttackPenalties.collect(selectors) {
		if p.Predicate.Test(rc.Options) {
			out = append(out, p)
		}
	}
	return out
}

// ExtractEphemeralEffects resolves the effects affecting one side of a roll.
// Failing effects are skipped; their errors are joined into the returned error.
func ExtractEphemeralEffects(ctx context.Context, r *Registry, affects string, selectors []string, rc RollContext) ([]*document.ItemSource, error) {
	var out []*document.ItemSource
	var errs []error
	for _, effect := range r.EphemeralEffects.collect(selectors) {
		if effect.Affects != affects || effect.Resolve == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("failed to extract ephemeral effects: %w", err)
		}

		source, err := effect.Resolve(ctx, rc)
		if err != nil {
			errs = append(errs, fmt.Errorf("ephemeral effect from %s: %w", effect.Source, err))
			continue
		}
		if source != nil {
			out = append(out, source)
		}
	}
	return out, errors.Join(errs...)
}

// ExtractMovementTypes resolves each granted speed type, keeping the fastest per type
func ExtractMovementTypes(r *Registry, rc RollContext) map[string]*MovementType {
	out := make(map[string]*MovementType)
	for _, movement := range r.MovementTypes.Selectors() {
		for _, deferred := range r.MovementTypes.Get(movement) {
			mt, ok := deferred(rc)
			if !ok || mt == nil {
				continue
			}
			if current, exists := out[movement]; !exists || mt.Value > current.Value {
				out[movement] = mt
			}
		}
	}
	return out
}
