package dice

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// randomRoller implements Roller using crypto/rand
type randomRoller struct{}

// NewRandomRoller creates a new random dice roller
func NewRandomRoller() Roller {
	return &randomRoller{}
}

func (r *randomRoller) die(sides int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(sides)))
	if err != nil {
		return 1
	}
	return int(n.Int64()) + 1
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, errors.New("invalid dice count")
	}
	if sides < 1 {
		return nil, errors.New("invalid dice size")
	}

	result := &RollResult{Rolls: make([]int, count), Bonus: bonus, Count: count, Sides: sides}
	for i := range result.Rolls {
		result.Rolls[i] = r.die(sides)
		result.RawTotal += result.Rolls[i]
	}
	result.Total = result.RawTotal + bonus
	markD20(result, result.Rolls[0])

	return result, nil
}

// RollTwice implements Roller.RollTwice
func (r *randomRoller) RollTwice(sides, bonus int, keep Keep) (*RollResult, error) {
	if sides < 1 {
		return nil, errors.New("invalid dice size")
	}
	return KeepOne(r.die(sides), r.die(sides), sides, bonus, keep), nil
}
