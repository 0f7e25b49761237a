package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learner_analytics_backend/internal/model"
)

// 等级是分数的单调映射，区间不重叠、边界不二义
func TestBucketLevel_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  model.RiskLevel
	}{
		{0, model.RiskLow},
		{24.9, model.RiskLow},
		{25, model.RiskModerate},
		{49.9, model.RiskModerate},
		{50, model.RiskHigh},
		{74.9, model.RiskHigh},
		{75, model.RiskCritical},
		{100, model.RiskCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BucketLevel(tc.score), "score %.1f", tc.score)
	}
}

// 样本不足时不给虚假的精确分数
func TestScoreRisk_InsufficientData(t *testing.T) {
	p := DefaultParams()
	in := RiskInputs{SampleCount: 1}

	score := ScoreRisk(7, in, p)

	assert.True(t, score.InsufficientData)
	assert.Equal(t, model.RiskLow, score.Level)
	assert.Equal(t, 0.0, score.Score)
	assert.Empty(t, score.Contributions)
}

func declineInputs(p Params) RiskInputs {
	traj := buildObserved([]float64{1.0, 0.8, 0.6, 0.4, 0.2}, 0.1, p)
	return RiskInputs{
		Trajectory:      traj,
		Velocity:        ClassifyVelocity(traj, p),
		Stats:           model.StudyStats{TotalQuestions: 50, OverallAccuracy: 0.4, StudyStreakDays: 0},
		SampleCount:     5,
		BaselinePerWeek: 5,
		RecentPerWeek:   1,
	}
}

func TestScoreRisk_DecliningUser(t *testing.T) {
	p := DefaultParams()

	score := ScoreRisk(42, declineInputs(p), p)

	assert.False(t, score.InsufficientData)
	assert.GreaterOrEqual(t, score.Score, 0.0)
	assert.LessOrEqual(t, score.Score, 100.0)
	assert.Equal(t, model.FactorDecline, score.TopFactor)
	require.NotEqual(t, model.RiskLow, score.Level)
	assert.NotEmpty(t, score.Interventions)
}

// top_factor 必须来自实际计算出的子信号，绝不是占位字符串
func TestScoreRisk_TopFactorIsComputedSignal(t *testing.T) {
	p := DefaultParams()

	score := ScoreRisk(42, declineInputs(p), p)

	require.NotEmpty(t, score.Contributions)
	var found bool
	for _, c := range score.Contributions {
		if c.Factor == score.TopFactor {
			found = true
		}
	}
	assert.True(t, found)
}

// 总分等于各子信号贡献之和（四个信号都归一化到 [0,100] 再加权）
func TestScoreRisk_ScoreIsWeightedSum(t *testing.T) {
	p := DefaultParams()

	score := ScoreRisk(42, declineInputs(p), p)

	sum := 0.0
	for _, c := range score.Contributions {
		assert.GreaterOrEqual(t, c.Signal, 0.0)
		assert.LessOrEqual(t, c.Signal, 100.0)
		sum += c.Contribution
	}
	assert.InDelta(t, score.Score, sum, 1e-9)
}

// 表现良好的用户应落在低风险档
func TestScoreRisk_HealthyUser(t *testing.T) {
	p := DefaultParams()
	traj := buildObserved(risingSeries(8), 0.1, p)
	in := RiskInputs{
		Trajectory:      traj,
		Velocity:        ClassifyVelocity(traj, p),
		Stats:           model.StudyStats{TotalQuestions: 80, OverallAccuracy: 0.85, StudyStreakDays: 6},
		SampleCount:     8,
		BaselinePerWeek: 4,
		RecentPerWeek:   4,
	}

	score := ScoreRisk(42, in, p)

	assert.Equal(t, model.RiskLow, score.Level)
}

// 贡献并列时按固定优先级裁决：下滑 > 正确率 > 打卡 > 活跃度
func TestTopFactor_TieBreak(t *testing.T) {
	tied := []model.RiskContribution{
		{Factor: model.FactorEngagement, Contribution: 20},
		{Factor: model.FactorAccuracy, Contribution: 20},
		{Factor: model.FactorDecline, Contribution: 20},
		{Factor: model.FactorStreak, Contribution: 20},
	}
	assert.Equal(t, model.FactorDecline, topFactor(tied))

	partial := []model.RiskContribution{
		{Factor: model.FactorStreak, Contribution: 20},
		{Factor: model.FactorAccuracy, Contribution: 20},
		{Factor: model.FactorDecline, Contribution: 5},
	}
	assert.Equal(t, model.FactorAccuracy, topFactor(partial))
}

// moderate 及以上的每个 (主因, 等级) 组合都必须有非空建议
func TestInterventions_CoverAllCombinations(t *testing.T) {
	factors := []model.RiskFactor{
		model.FactorDecline, model.FactorAccuracy, model.FactorStreak, model.FactorEngagement,
	}
	levels := []model.RiskLevel{model.RiskModerate, model.RiskHigh, model.RiskCritical}

	for _, f := range factors {
		for _, l := range levels {
			assert.NotEmpty(t, interventionsFor(f, l), "factor=%s level=%s", f, l)
		}
	}
}
