package synthetics

import "github.com/KirkDiggler/rule-elements/internal/predicate"

// Roll note visibility
const (
	VisibilityOwner = "owner"
	VisibilityGM    = "gm"
	VisibilityAll   = "all"
)

// RollNote is text shown alongside a roll
type RollNote struct {
	Selector   string
	Title      string
	Text       string
	Outcome    []string
	Visibility string
	Predicate  predicate.Predicate
	Source     string
}

// RollTwice rolls a check twice keeping one result
type RollTwice struct {
	Keep            string // "higher" or "lower"
	Predicate       predicate.Predicate
	RemoveAfterRoll bool
	Source          string
	ItemID          string
}

// DegreeOfSuccessAdjustment shifts the outcome of a check
type DegreeOfSuccessAdjustment struct {
	Selector    string
	Adjustments map[string]DegreeAdjustment // keyed by outcome or "all"
	Predicate   predicate.Predicate
	Source      string
}

// DegreeAdjustment is one outcome shift
type DegreeAdjustment struct {
	Label  string
	Amount string // "one-degree-better", "two-degrees-worse", "to-critical-failure", ...
}

// RollSubstitution replaces the natural die result
type RollSubstitution struct {
	Slug      string
	Label     string
	Selector  string
	Value     int
	Required  bool
	Predicate predicate.Predicate
	Source    string
}

// MultipleAttackPenalty provides an alternative penalty for follow-up attacks
type MultipleAttackPenalty struct {
	Selector  string
	Label     string
	Penalty   int
	Predicate predicate.Predicate
	Source    string
}
