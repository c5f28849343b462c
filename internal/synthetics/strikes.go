package synthetics

import "github.com/KirkDiggler/rule-elements/internal/predicate"

// StrikeDamage is the base damage of an ephemeral weapon
type StrikeDamage struct {
	Dice       int    `json:"dice"`
	Die        string `json:"die"`
	DamageType string `json:"damageType"`
}

// Strike is a weapon-like attack contributed by a rule element
type Strike struct {
	Slug      string              `json:"slug"`
	Label     string              `json:"label"`
	Category  string              `json:"category"`
	Group     string              `json:"group"`
	BaseType  string              `json:"baseType,omitempty"`
	Traits    []string            `json:"traits"`
	Damage    StrikeDamage        `json:"damage"`
	Range     *float64            `json:"range,omitempty"`
	Img       string              `json:"img,omitempty"`
	Predicate predicate.Predicate `json:"predicate"`
	Source    string              `json:"source,omitempty"`
}

// Strikes is an insertion-ordered map of strikes by slug
type Strikes struct {
	order  []string
	bySlug map[string]*Strike
}

func newStrikes() *Strikes {
	return &Strikes{bySlug: make(map[string]*Strike)}
}

// Set stores a strike. A later strike with the same slug replaces the earlier one in place.
func (s *Strikes) Set(strike *Strike) {
	if _, ok := s.bySlug[strike.Slug]; !ok {
		s.order = append(s.order, strike.Slug)
	}
	s.bySlug[strike.Slug] = strike
}

// Get returns the strike with slug
func (s *Strikes) Get(slug string) (*Strike, bool) {
	st, ok := s.bySlug[slug]
	return st, ok
}

// List returns strikes in insertion order
func (s *Strikes) List() []*Strike {
	out := make([]*Strike, 0, len(s.order))
	for _, slug := range s.order {
		out = append(out, s.bySlug[slug])
	}
	return out
}

// Len returns the number of strikes
func (s *Strikes) Len() int {
	return len(s.order)
}

// StrikingEntry adds weapon damage dice from striking runes
type StrikingEntry struct {
	Label     string
	Bonus     int
	Predicate predicate.Predicate
	Source    string
}

// PotencyEntry is an item bonus to attack rolls from potency
type PotencyEntry struct {
	Label         string
	Bonus         int
	Type          ModifierType
	PropertyRunes []string
	Predicate     predicate.Predicate
	Source        string
}
