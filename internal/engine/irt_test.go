package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeItems(n int, difficulty, discrimination float64, correct bool) []ItemObservation {
	items := make([]ItemObservation, n)
	for i := range items {
		items[i] = ItemObservation{Difficulty: difficulty, Discrimination: discrimination, Correct: correct}
	}
	return items
}

// 题量不足时必须退回先验，而不是报错
func TestEstimateAbility_TooFewItems(t *testing.T) {
	p := DefaultParams()
	prior := 0.8

	res := EstimateAbility(makeItems(2, 0, 1, true), &prior, p)

	assert.Equal(t, 0.8, res.Ability)
	assert.Equal(t, p.MaxStdError, res.StandardError)
	assert.True(t, res.LowConfidence)
	assert.False(t, res.Converged)
}

func TestEstimateAbility_NoPrior(t *testing.T) {
	p := DefaultParams()

	res := EstimateAbility(nil, nil, p)

	assert.Equal(t, 0.0, res.Ability)
	assert.True(t, res.LowConfidence)
}

func TestEstimateAbility_AllCorrectRaisesAbility(t *testing.T) {
	p := DefaultParams()

	items := []ItemObservation{
		{Difficulty: -0.5, Discrimination: 1.2, Correct: true},
		{Difficulty: 0.0, Discrimination: 1.0, Correct: true},
		{Difficulty: 0.5, Discrimination: 1.1, Correct: true},
		{Difficulty: 1.0, Discrimination: 0.9, Correct: true},
		{Difficulty: 1.5, Discrimination: 1.0, Correct: true},
	}
	res := EstimateAbility(items, nil, p)

	require.True(t, res.Converged)
	assert.Greater(t, res.Ability, 0.5)
	assert.LessOrEqual(t, res.Ability, p.AbilityBound)
	assert.Greater(t, res.StandardError, 0.0)
	assert.LessOrEqual(t, res.StandardError, p.MaxStdError)
}

func TestEstimateAbility_SymmetricForOpposites(t *testing.T) {
	p := DefaultParams()

	up := EstimateAbility(makeItems(6, 0, 1, true), nil, p)
	down := EstimateAbility(makeItems(6, 0, 1, false), nil, p)

	assert.InDelta(t, up.Ability, -down.Ability, 1e-6)
}

// 题量越大，标准误越小
func TestEstimateAbility_MoreItemsShrinkError(t *testing.T) {
	p := DefaultParams()

	mixed := func(n int) []ItemObservation {
		items := make([]ItemObservation, n)
		for i := range items {
			items[i] = ItemObservation{Difficulty: 0, Discrimination: 1, Correct: i%2 == 0}
		}
		return items
	}

	few := EstimateAbility(mixed(4), nil, p)
	many := EstimateAbility(mixed(16), nil, p)

	assert.Less(t, many.StandardError, few.StandardError)
}

// 发散时截断到量表边界并标记低置信度，绝不外泄无界估计值
func TestEstimateAbility_DivergenceClamped(t *testing.T) {
	p := DefaultParams()
	prior := 6.0

	res := EstimateAbility(makeItems(5, 6, 1, true), &prior, p)

	assert.LessOrEqual(t, res.Ability, p.AbilityBound)
	assert.GreaterOrEqual(t, res.Ability, -p.AbilityBound)
	assert.True(t, res.LowConfidence)
	assert.Equal(t, p.MaxStdError, res.StandardError)
}

func TestEstimateAbility_Deterministic(t *testing.T) {
	p := DefaultParams()
	items := []ItemObservation{
		{Difficulty: -1, Discrimination: 1, Correct: true},
		{Difficulty: 0, Discrimination: 1.3, Correct: false},
		{Difficulty: 1, Discrimination: 0.8, Correct: true},
		{Difficulty: 2, Discrimination: 1.1, Correct: false},
	}

	first := EstimateAbility(items, nil, p)
	second := EstimateAbility(items, nil, p)

	assert.Equal(t, first, second)
}
