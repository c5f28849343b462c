package synthetics

import "github.com/KirkDiggler/rule-elements/internal/predicate"

// StatisticModifier totals a statistic's modifiers after stacking rules
type StatisticModifier struct {
	Slug          string
	Modifiers     []*Modifier
	TotalModifier int
}

// NewStatisticModifier tests every modifier against options, applies stacking
// and computes the total
func NewStatisticModifier(slug string, modifiers []*Modifier, options predicate.Options) *StatisticModifier {
	sm := &StatisticModifier{Slug: slug, Modifiers: modifiers}
	for _, m := range modifiers {
		m.Test(options)
	}
	sm.TotalModifier = ApplyStacking(modifiers)
	return sm
}

// ApplyStacking disables modifiers that do not stack and returns the total.
// Untyped modifiers always stack; for every other type only the highest bonus
// and the lowest penalty count.
func ApplyStacking(modifiers []*Modifier) int {
	bestBonus := make(map[ModifierType]*Modifier)
	worstPenalty := make(map[ModifierType]*Modifier)

	for _, m := range modifiers {
		if !m.Enabled || m.Ignored || m.Type == ModifierUntyped {
			continue
		}
		if m.Value >= 0 {
			if best := bestBonus[m.Type]; best == nil || m.Value > best.Value {
				if best != nil {
					best.Enabled = false
				}
				bestBonus[m.Type] = m
			} else {
				m.Enabled = false
			}
			continue
		}
		if worst := worstPenalty[m.Type]; worst == nil || m.Value < worst.Value {
			if worst != nil {
				worst.Enabled = false
			}
			worstPenalty[m.Type] = m
		} else {
			m.Enabled = false
		}
	}

	total := 0
	for _, m := range modifiers {
		if m.Enabled && !m.Ignored {
			total += m.Value
		}
	}
	return total
}
