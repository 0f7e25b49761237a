package engine

import (
	"math"
	"time"

	"learner_analytics_backend/internal/model"
)

// PredictGoal 把观测轨迹外推到目标日期，用预测点隐含的正态分布
// 计算达成概率。is_at_risk 恒等于 probability < AtRiskThreshold，
// "风险目标列表"只是对该字段的过滤，不存在第二份事实来源。
// 目标合法性（日期在过去、目标值超出能力量表）由服务层先行校验。
func PredictGoal(goal model.LearningGoal, traj model.Trajectory, now time.Time, p Params) model.GoalPrediction {
	pred := model.GoalPrediction{
		GoalID:      goal.ID,
		TargetValue: goal.TargetValue,
		TargetDate:  goal.TargetDate,
	}

	observed := traj.Observed()
	if len(observed) < 2 {
		// 数据太少时不编造精确预测：给出最大不确定度下的退化结果
		ability := 0.0
		if len(observed) == 1 {
			ability = observed[0].Ability
		}
		pred.PredictedValue = ability
		pred.ProbabilityOfSuccess = successProbability(ability, p.MaxStdError, goal.TargetValue)
		pred.IsAtRisk = pred.ProbabilityOfSuccess < p.AtRiskThreshold
		pred.InsufficientData = true
		return pred
	}

	last := observed[len(observed)-1]
	slopePerDay := chartSlopePerWeek(observed) / 7
	days := goal.TargetDate.Sub(last.Date).Hours() / 24
	if days < 0 {
		days = 0 // 最后一次观测已在目标日期之后，直接用当前水平
	}

	predicted := clamp(last.Ability+slopePerDay*days, -p.AbilityBound, p.AbilityBound)

	// 预测不确定度随外推距离增长，与轨迹预测段使用同一增长模型
	seBase := math.Max(last.StandardError, p.MinBandHalfWidth/p.ZScore)
	steps := days / 7
	se := seBase * math.Sqrt(1+steps*p.ForecastSEGrowth)

	pred.PredictedValue = predicted
	pred.ProbabilityOfSuccess = successProbability(predicted, se, goal.TargetValue)
	pred.IsAtRisk = pred.ProbabilityOfSuccess < p.AtRiskThreshold
	return pred
}

// successProbability 预测值 ~ N(predicted, se²) 时超过目标值的概率。
func successProbability(predicted, se, target float64) float64 {
	if se <= 0 {
		if predicted >= target {
			return 1
		}
		return 0
	}
	z := (predicted - target) / se
	return normalCDF(z)
}

func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}
