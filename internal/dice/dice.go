package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RollResult contains detailed information about a dice roll
type RollResult struct {
	Total    int   // Sum of kept dice plus bonus
	Rolls    []int // Individual die results
	Bonus    int
	Count    int
	Sides    int
	RawTotal int // Sum of kept dice without bonus
	IsCrit   bool
	IsFumble bool
}

// Expression is a parsed "NdM+B" dice expression
type Expression struct {
	Count int
	Sides int
	Bonus int
}

var expressionPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// ParseExpression parses dice notation such as "2d6", "d8" or "1d4+1"
func ParseExpression(notation string) (Expression, error) {
	raw := strings.ToLower(strings.ReplaceAll(notation, " ", ""))

	matches := expressionPattern.FindStringSubmatch(raw)
	if matches == nil {
		return Expression{}, fmt.Errorf("invalid dice expression %q", notation)
	}

	expr := Expression{Count: 1}
	if matches[1] != "" {
		expr.Count, _ = strconv.Atoi(matches[1])
	}
	expr.Sides, _ = strconv.Atoi(matches[2])
	if matches[3] != "" {
		expr.Bonus, _ = strconv.Atoi(matches[3])
	}

	if expr.Count < 1 {
		return Expression{}, fmt.Errorf("invalid dice count in %q", notation)
	}
	if expr.Sides < 1 {
		return Expression{}, fmt.Errorf("invalid dice size in %q", notation)
	}
	return expr, nil
}

// String renders the expression in dice notation
func (e Expression) String() string {
	switch {
	case e.Bonus > 0:
		return fmt.Sprintf("%dd%d+%d", e.Count, e.Sides, e.Bonus)
	case e.Bonus < 0:
		return fmt.Sprintf("%dd%d%d", e.Count, e.Sides, e.Bonus)
	default:
		return fmt.Sprintf("%dd%d", e.Count, e.Sides)
	}
}

// RollString parses notation and rolls it with the given roller
func RollString(roller Roller, notation string) (*RollResult, error) {
	expr, err := ParseExpression(notation)
	if err != nil {
		return nil, err
	}
	return roller.Roll(expr.Count, expr.Sides, expr.Bonus)
}

// String renders the total followed by the individual dice
func (r *RollResult) String() string {
	compact := strings.ReplaceAll(fmt.Sprintf("%v", r.Rolls), " ", "")
	return fmt.Sprintf("**%d** : %s", r.Total, compact)
}
