package dice_test

import (
	"testing"

	"github.com/KirkDiggler/rule-elements/internal/dice"
	mockdice "github.com/KirkDiggler/rule-elements/internal/dice/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpression(t *testing.T) {
	tests := []struct {
		name     string
		notation string
		want     dice.Expression
		wantErr  bool
	}{
		{name: "count and sides", notation: "2d6", want: dice.Expression{Count: 2, Sides: 6}},
		{name: "implicit count", notation: "d8", want: dice.Expression{Count: 1, Sides: 8}},
		{name: "positive bonus", notation: "1d4+1", want: dice.Expression{Count: 1, Sides: 4, Bonus: 1}},
		{name: "negative bonus with spaces", notation: "3d10 - 2", want: dice.Expression{Count: 3, Sides: 10, Bonus: -2}},
		{name: "zero dice", notation: "0d6", wantErr: true},
		{name: "zero sides", notation: "1d0", wantErr: true},
		{name: "garbage", notation: "fire", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dice.ParseExpression(tt.notation)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpression_String(t *testing.T) {
	assert.Equal(t, "2d6", dice.Expression{Count: 2, Sides: 6}.String())
	assert.Equal(t, "1d4+1", dice.Expression{Count: 1, Sides: 4, Bonus: 1}.String())
	assert.Equal(t, "3d10-2", dice.Expression{Count: 3, Sides: 10, Bonus: -2}.String())
}

func TestRollString_WithMockRoller(t *testing.T) {
	roller := mockdice.NewManualMockRoller()
	roller.SetRolls([]int{4, 5})

	result, err := dice.RollString(roller, "2d6+3")
	require.NoError(t, err)
	assert.Equal(t, 12, result.Total)
	assert.Equal(t, []int{4, 5}, result.Rolls)
	assert.Equal(t, 0, roller.Remaining())
}

func TestMockRoller_Roll(t *testing.T) {
	tests := []struct {
		name       string
		setupRolls []int
		count      int
		sides      int
		bonus      int
		wantTotal  int
		wantCrit   bool
		wantErr    bool
	}{
		{name: "single d20 roll", setupRolls: []int{15}, count: 1, sides: 20, wantTotal: 15},
		{name: "critical hit d20", setupRolls: []int{20}, count: 1, sides: 20, bonus: 5, wantTotal: 25, wantCrit: true},
		{name: "not enough rolls", setupRolls: []int{10}, count: 2, sides: 6, wantErr: true},
		{name: "invalid roll for die size", setupRolls: []int{7}, count: 1, sides: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller := mockdice.NewManualMockRoller()
			roller.SetRolls(tt.setupRolls)

			result, err := roller.Roll(tt.count, tt.sides, tt.bonus)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, result.Total)
			assert.Equal(t, tt.wantCrit, result.IsCrit)
		})
	}
}

func TestMockRoller_RollTwice(t *testing.T) {
	roller := mockdice.NewManualMockRoller()
	roller.SetRolls([]int{8, 17, 8, 17})

	higher, err := roller.RollTwice(20, 2, dice.KeepHigher)
	require.NoError(t, err)
	assert.Equal(t, 19, higher.Total)

	lower, err := roller.RollTwice(20, 2, dice.KeepLower)
	require.NoError(t, err)
	assert.Equal(t, 10, lower.Total)
}

func TestRollCheck(t *testing.T) {
	tests := []struct {
		name      string
		rolls     []int
		keep      dice.Keep
		wantTotal int
		wantRolls int
		wantCrit  bool
	}{
		{name: "single", rolls: []int{12}, wantTotal: 15, wantRolls: 1},
		{name: "keep higher", rolls: []int{4, 20}, keep: dice.KeepHigher, wantTotal: 23, wantRolls: 2, wantCrit: true},
		{name: "keep lower", rolls: []int{4, 20}, keep: dice.KeepLower, wantTotal: 7, wantRolls: 2},
		{name: "unknown keep rolls once", rolls: []int{9}, keep: "sideways", wantTotal: 12, wantRolls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller := mockdice.NewManualMockRoller()
			roller.SetRolls(tt.rolls)

			result, err := dice.RollCheck(roller, 3, tt.keep)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, result.Total)
			assert.Len(t, result.Rolls, tt.wantRolls)
			assert.Equal(t, tt.wantCrit, result.IsCrit)
			assert.Equal(t, 0, roller.Remaining())
		})
	}
}

func TestRandomRoller_Bounds(t *testing.T) {
	roller := dice.NewRandomRoller()

	for i := 0; i < 50; i++ {
		result, err := roller.Roll(3, 6, 1)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Total, 4)
		assert.LessOrEqual(t, result.Total, 19)
	}

	_, err := roller.Roll(0, 6, 0)
	assert.Error(t, err)
}
