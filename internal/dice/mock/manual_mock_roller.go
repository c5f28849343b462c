package mockdice

import (
	"fmt"
	"sync"

	"github.com/KirkDiggler/rule-elements/internal/dice"
)

// ManualMockRoller implements dice.Roller for testing with predetermined results
type ManualMockRoller struct {
	mu        sync.Mutex
	rolls     []int
	rollIndex int
}

// NewManualMockRoller creates a new mock dice roller
func NewManualMockRoller() *ManualMockRoller {
	return &ManualMockRoller{}
}

// SetNextRoll appends one predetermined die result
func (m *ManualMockRoller) SetNextRoll(roll int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = append(m.rolls, roll)
}

// SetRolls replaces the predetermined results
func (m *ManualMockRoller) SetRolls(rolls []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = rolls
	m.rollIndex = 0
}

// Remaining returns how many predetermined results are unused
func (m *ManualMockRoller) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rolls) - m.rollIndex
}

func (m *ManualMockRoller) next(sides int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rollIndex >= len(m.rolls) {
		return 0, fmt.Errorf("no more predetermined rolls available (used %d of %d)", m.rollIndex, len(m.rolls))
	}

	roll := m.rolls[m.rollIndex]
	if roll < 1 || roll > sides {
		return 0, fmt.Errorf("invalid roll %d for d%d", roll, sides)
	}
	m.rollIndex++
	return roll, nil
}

// Roll implements dice.Roller.Roll
func (m *ManualMockRoller) Roll(count, sides, bonus int) (*dice.RollResult, error) {
	result := &dice.RollResult{Rolls: make([]int, count), Bonus: bonus, Count: count, Sides: sides}
	for i := range result.Rolls {
		roll, err := m.next(sides)
		if err != nil {
			return nil, err
		}
		result.Rolls[i] = roll
		result.RawTotal += roll
	}
	result.Total = result.RawTotal + bonus

	if count == 1 && sides == 20 {
		result.IsCrit = result.Rolls[0] == 20
		result.IsFumble = result.Rolls[0] == 1
	}
	return result, nil
}

// RollTwice implements dice.Roller.RollTwice
func (m *ManualMockRoller) RollTwice(sides, bonus int, keep dice.Keep) (*dice.RollResult, error) {
	first, err := m.next(sides)
	if err != nil {
		return nil, err
	}
	second, err := m.next(sides)
	if err != nil {
		return nil, err
	}
	return dice.KeepOne(first, second, sides, bonus, keep), nil
}
