package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learner_analytics_backend/internal/model"
)

func goalAt(target float64, weeksOut int) model.LearningGoal {
	return model.LearningGoal{
		TargetValue: target,
		TargetDate:  testBase.AddDate(0, 0, 7*(9+weeksOut)), // 第 10 个周样本之后 weeksOut 周
	}
}

// 稳步上升的学习者，目标略高于当前水平且还有两个月 → 不应判为 at risk
func TestPredictGoal_ReachableTarget(t *testing.T) {
	p := DefaultParams()
	traj := buildObserved(risingSeries(10), 0.1, p)

	pred := PredictGoal(goalAt(1.2, 8), traj, testBase.AddDate(0, 0, 63), p)

	assert.False(t, pred.InsufficientData)
	assert.Greater(t, pred.ProbabilityOfSuccess, 0.5)
	assert.False(t, pred.IsAtRisk)
	assert.Greater(t, pred.PredictedValue, 1.0)
}

// 一周内跳三个能力等级是不现实的 → at risk
func TestPredictGoal_UnreachableTarget(t *testing.T) {
	p := DefaultParams()
	traj := buildObserved(risingSeries(10), 0.1, p)

	pred := PredictGoal(goalAt(3.0, 1), traj, testBase.AddDate(0, 0, 63), p)

	assert.False(t, pred.InsufficientData)
	assert.Less(t, pred.ProbabilityOfSuccess, 0.5)
	assert.True(t, pred.IsAtRisk)
}

// 不变式：is_at_risk 恒等于 probability < 阈值，任何目标都不例外
func TestPredictGoal_AtRiskMatchesProbability(t *testing.T) {
	p := DefaultParams()
	traj := buildObserved(risingSeries(10), 0.1, p)
	now := testBase.AddDate(0, 0, 63)

	targets := []float64{-2, 0, 0.5, 1.0, 1.5, 2.5, 4.0}
	for _, target := range targets {
		for _, weeks := range []int{1, 4, 12} {
			pred := PredictGoal(goalAt(target, weeks), traj, now, p)

			assert.GreaterOrEqual(t, pred.ProbabilityOfSuccess, 0.0, "target=%.1f weeks=%d", target, weeks)
			assert.LessOrEqual(t, pred.ProbabilityOfSuccess, 1.0, "target=%.1f weeks=%d", target, weeks)
			assert.Equal(t, pred.ProbabilityOfSuccess < p.AtRiskThreshold, pred.IsAtRisk,
				"target=%.1f weeks=%d", target, weeks)
		}
	}
}

// 观测点不足两个时给退化结果而不是编造趋势
func TestPredictGoal_InsufficientData(t *testing.T) {
	p := DefaultParams()
	now := testBase.AddDate(0, 0, 30)

	single := PredictGoal(goalAt(1.0, 4), buildObserved([]float64{0.4}, 0.3, p), now, p)
	assert.True(t, single.InsufficientData)
	assert.Equal(t, 0.4, single.PredictedValue)
	assert.Equal(t, single.ProbabilityOfSuccess < p.AtRiskThreshold, single.IsAtRisk)

	empty := PredictGoal(goalAt(1.0, 4), model.Trajectory{}, now, p)
	assert.True(t, empty.InsufficientData)
	assert.Equal(t, 0.0, empty.PredictedValue)
}

// 过期目标在服务层就被拒绝；引擎自身的兜底是绝不做负向外推：
// 目标日期早于最后一次观测时按当前水平评估
func TestPredictGoal_NoBackwardExtrapolation(t *testing.T) {
	p := DefaultParams()
	traj := buildObserved(risingSeries(10), 0.1, p)
	observed := traj.Observed()
	require.NotEmpty(t, observed)
	last := observed[len(observed)-1]

	goal := model.LearningGoal{TargetValue: 0.5, TargetDate: testBase.AddDate(0, 0, 14)}
	pred := PredictGoal(goal, traj, testBase.AddDate(0, 0, 63), p)

	assert.InDelta(t, last.Ability, pred.PredictedValue, 1e-9)
}

// 预测值永远被钳制在能力量表范围内
func TestPredictGoal_PredictionStaysOnScale(t *testing.T) {
	p := DefaultParams()
	traj := buildObserved(risingSeries(10), 0.1, p)

	farOut := model.LearningGoal{TargetValue: 5.0, TargetDate: testBase.AddDate(5, 0, 0)}
	pred := PredictGoal(farOut, traj, testBase.AddDate(0, 0, 63), p)

	assert.LessOrEqual(t, pred.PredictedValue, p.AbilityBound)
	assert.GreaterOrEqual(t, pred.PredictedValue, -p.AbilityBound)
}

func TestPredictGoal_Deterministic(t *testing.T) {
	p := DefaultParams()
	traj := buildObserved(risingSeries(10), 0.1, p)
	now := testBase.AddDate(0, 0, 63)
	goal := goalAt(1.2, 6)

	first := PredictGoal(goal, traj, now, p)
	second := PredictGoal(goal, traj, now, p)

	assert.Equal(t, first, second)
}
