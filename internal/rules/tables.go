package rules

import (
	"sort"
	"strings"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
)

// Tables are the game dictionaries rule elements validate against
type Tables struct {
	DamageTypes     map[string]string
	ImmunityTypes   map[string]string
	WeaknessTypes   map[string]string
	ResistanceTypes map[string]string
	Skills          map[string]string
	Senses          map[string]string
	SenseAcuities   []string
	MovementTypes   []string
	Sizes           []string
	Abilities       map[string]string
}

func labelled(slugs ...string) map[string]string {
	out := make(map[string]string, len(slugs))
	for _, s := range slugs {
		out[s] = document.Humanize(s)
	}
	return out
}

func merged(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// DefaultTables returns the standard dictionaries
func DefaultTables() *Tables {
	damage := labelled(
		"acid", "bludgeoning", "cold", "electricity", "fire", "force", "mental",
		"piercing", "poison", "slashing", "sonic", "spirit", "vitality", "void",
		"bleed", "untyped",
	)
	materials := labelled("adamantine", "cold-iron", "dawnsilver", "orichalcum", "silver")

	return &Tables{
		DamageTypes: damage,
		ImmunityTypes: merged(damage, labelled(
			"critical-hits", "precision", "death-effects", "disease", "emotion",
			"fear-effects", "magic", "object-immunities", "sleep", "paralyzed",
			"polymorph", "possession", "healing", "nonlethal-attacks", "spellDeflection",
		)),
		WeaknessTypes: merged(damage, materials, labelled(
			"physical", "energy", "holy", "unholy", "critical-hits", "precision",
			"splash-damage", "area-damage", "persistent-damage", "arrow-vulnerability",
		)),
		ResistanceTypes: merged(damage, labelled(
			"all-damage", "physical", "energy", "holy", "unholy", "critical-hits",
			"precision", "splash-damage", "area-damage", "persistent-damage",
			"spells", "magical", "non-magical",
		)),
		Skills: labelled(
			"acrobatics", "arcana", "athletics", "crafting", "deception", "diplomacy",
			"intimidation", "medicine", "nature", "occultism", "performance",
			"religion", "society", "stealth", "survival", "thievery",
		),
		Senses: labelled(
			"darkvision", "greater-darkvision", "low-light-vision", "echolocation",
			"infrared-vision", "lifesense", "motion-sense", "scent", "see-invisibility",
			"spiritsense", "thoughtsense", "tremorsense", "truesight", "wavesense",
		),
		SenseAcuities: []string{"precise", "imprecise", "vague"},
		MovementTypes: []string{"land", "burrow", "climb", "fly", "swim"},
		Sizes:         []string{"tiny", "sm", "med", "lg", "huge", "grg"},
		Abilities:     labelled("str", "dex", "con", "int", "wis", "cha"),
	}
}

// Named returns a table by the name a choice set refers to it with.
// "CONFIG.PF2E.skills" and "skills" name the same table.
func (t *Tables) Named(name string) (map[string]string, bool) {
	name = strings.TrimPrefix(name, "CONFIG.PF2E.")
	switch name {
	case "damageTypes":
		return t.DamageTypes, true
	case "immunityTypes":
		return t.ImmunityTypes, true
	case "weaknessTypes":
		return t.WeaknessTypes, true
	case "resistanceTypes":
		return t.ResistanceTypes, true
	case "skills", "skillList":
		return t.Skills, true
	case "senses":
		return t.Senses, true
	case "abilities":
		return t.Abilities, true
	case "actorSizes":
		return labelled(t.Sizes...), true
	}
	return nil, false
}

// SizeIndex returns the position of size in Sizes, or -1
func (t *Tables) SizeIndex(size string) int {
	for i, s := range t.Sizes {
		if s == size {
			return i
		}
	}
	return -1
}

// SortedKeys lists a table's keys in order
func SortedKeys(table map[string]string) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
