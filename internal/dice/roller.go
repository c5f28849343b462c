package dice

// Keep selects which die of a roll-twice check counts
type Keep string

const (
	KeepHigher Keep = "higher"
	KeepLower  Keep = "lower"
)

// Roller rolls dice. Formula evaluation and checks take one so tests can fix
// the results.
type Roller interface {
	// Roll rolls count dice of the given sides and adds bonus
	Roll(count, sides, bonus int) (*RollResult, error)

	// RollTwice rolls two dice and keeps one of them
	RollTwice(sides, bonus int, keep Keep) (*RollResult, error)
}

// RollCheck rolls a d20 check. An empty keep rolls once.
func RollCheck(roller Roller, bonus int, keep Keep) (*RollResult, error) {
	switch keep {
	case KeepHigher, KeepLower:
		return roller.RollTwice(20, bonus, keep)
	default:
		return roller.Roll(1, 20, bonus)
	}
}

// prefers reports whether second should be kept over first
func (k Keep) prefers(first, second int) bool {
	if k == KeepLower {
		return second < first
	}
	return second > first
}

// KeepOne builds the result of a two-dice roll keeping a single die
func KeepOne(first, second, sides, bonus int, keep Keep) *RollResult {
	kept := first
	if keep.prefers(first, second) {
		kept = second
	}

	result := &RollResult{
		Total:    kept + bonus,
		Rolls:    []int{first, second},
		Bonus:    bonus,
		Count:    1,
		Sides:    sides,
		RawTotal: kept,
	}
	markD20(result, kept)
	return result
}

func markD20(result *RollResult, natural int) {
	if result.Count != 1 || result.Sides != 20 {
		return
	}
	result.IsCrit = natural == 20
	result.IsFumble = natural == 1
}
