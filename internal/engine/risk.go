package engine

import (
	"sort"

	"learner_analytics_backend/internal/model"
)

// RiskInputs 风险评分的全部输入，由服务层从轨迹/速度/学习统计拼装。
type RiskInputs struct {
	Trajectory      model.Trajectory
	Velocity        model.VelocityResult
	Stats           model.StudyStats
	SampleCount     int     // 能力样本总数
	BaselinePerWeek float64 // 用户历史的周均会话数
	RecentPerWeek   float64 // 最近一周会话数
}

// 子信号权重顺序即并列时的优先级：下滑 > 正确率 > 打卡 > 活跃度
var factorPriority = map[model.RiskFactor]int{
	model.FactorDecline:    4,
	model.FactorAccuracy:   3,
	model.FactorStreak:     2,
	model.FactorEngagement: 1,
}

// ScoreRisk 把四个归一化到 [0,100] 的子信号加权求和为总分。
// 每个子信号先归一化再加权，避免分钟/百分比这类原始量纲互相压制。
// 能力样本不足时不给出虚假的精确分数，返回 insufficientData 的低风险结果。
func ScoreRisk(userID uint, in RiskInputs, p Params) model.RiskScore {
	if in.SampleCount < p.RiskMinSamples {
		return model.RiskScore{
			UserID:           userID,
			Level:            model.RiskLow,
			Contributions:    []model.RiskContribution{},
			Interventions:    []string{},
			InsufficientData: true,
		}
	}

	contributions := []model.RiskContribution{
		{Factor: model.FactorDecline, Signal: declineSignal(in, p), Weight: p.WeightDecline},
		{Factor: model.FactorAccuracy, Signal: accuracySignal(in.Stats, p), Weight: p.WeightAccuracy},
		{Factor: model.FactorStreak, Signal: streakSignal(in.Stats), Weight: p.WeightStreak},
		{Factor: model.FactorEngagement, Signal: frequencySignal(in), Weight: p.WeightFrequency},
	}

	score := 0.0
	for i := range contributions {
		contributions[i].Contribution = contributions[i].Signal * contributions[i].Weight
		score += contributions[i].Contribution
	}
	score = clamp(score, 0, 100)

	level := BucketLevel(score)
	top := topFactor(contributions)

	return model.RiskScore{
		UserID:        userID,
		Score:         score,
		Level:         level,
		TopFactor:     top,
		Contributions: contributions,
		Interventions: interventionsFor(top, level),
	}
}

// BucketLevel 分数到等级的单调映射，区间左闭右开，边界不重叠：
// low [0,25) / moderate [25,50) / high [50,75) / critical [75,100]。
func BucketLevel(score float64) model.RiskLevel {
	switch {
	case score < 25:
		return model.RiskLow
	case score < 50:
		return model.RiskModerate
	case score < 75:
		return model.RiskHigh
	default:
		return model.RiskCritical
	}
}

// declineSignal 由观测轨迹斜率映射：周增 0.05 以上为 0，
// 周降 0.10 以上为 100，线性插值；减速趋势额外加压。
func declineSignal(in RiskInputs, p Params) float64 {
	observed := in.Trajectory.Observed()
	slope := chartSlopePerWeek(observed)

	const goodSlope, badSlope = 0.05, -0.10
	signal := (goodSlope - slope) / (goodSlope - badSlope) * 100
	if in.Velocity.Trend == model.TrendDecelerating {
		signal += 20
	}
	return clamp(signal, 0, 100)
}

func accuracySignal(stats model.StudyStats, p Params) float64 {
	if stats.TotalQuestions == 0 {
		return 50 // 没有答题数据：中性偏高，而不是装作没问题
	}
	if stats.OverallAccuracy >= p.TargetAccuracy {
		return 0
	}
	return clamp((p.TargetAccuracy-stats.OverallAccuracy)/p.TargetAccuracy*100, 0, 100)
}

func streakSignal(stats model.StudyStats) float64 {
	return clamp(100-float64(stats.StudyStreakDays)*25, 0, 100)
}

// frequencySignal 与用户自己的历史基线比，而不是和别人比。
func frequencySignal(in RiskInputs) float64 {
	if in.BaselinePerWeek <= 0 {
		return 50
	}
	ratio := in.RecentPerWeek / in.BaselinePerWeek
	return clamp((1-ratio)*100, 0, 100)
}

// topFactor 贡献绝对值最大者；并列按固定优先级裁决。
func topFactor(contributions []model.RiskContribution) model.RiskFactor {
	sorted := make([]model.RiskContribution, len(contributions))
	copy(sorted, contributions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Contribution != sorted[j].Contribution {
			return sorted[i].Contribution > sorted[j].Contribution
		}
		return factorPriority[sorted[i].Factor] > factorPriority[sorted[j].Factor]
	})
	return sorted[0].Factor
}

// interventionsFor 按 (主因, 等级) 查表。moderate 及以上的每个组合都有
// 非空建议列表，保证 level != low 时前端总有内容可渲染。
func interventionsFor(factor model.RiskFactor, level model.RiskLevel) []string {
	if level == model.RiskLow {
		return []string{"继续保持当前的学习习惯"}
	}

	table := map[model.RiskFactor]map[model.RiskLevel][]string{
		model.FactorDecline: {
			model.RiskModerate: {"回顾最近出错的知识点", "降低一档题目难度巩固基础"},
			model.RiskHigh:     {"安排一次针对薄弱知识点的复习", "向老师或同学请教近期的难点"},
			model.RiskCritical: {"暂停新内容，集中一周时间系统复习", "预约老师进行一对一辅导"},
		},
		model.FactorAccuracy: {
			model.RiskModerate: {"放慢答题速度，先保证正确率", "每次练习后复盘错题"},
			model.RiskHigh:     {"从低难度题目重新建立正确率", "整理错题本并每周重做"},
			model.RiskCritical: {"回到基础章节重新学习", "请老师帮助诊断理解偏差"},
		},
		model.FactorStreak: {
			model.RiskModerate: {"设定每天固定的学习提醒", "从每天 15 分钟的小目标重新开始"},
			model.RiskHigh:     {"重建打卡习惯：连续 3 天短时学习", "把学习时间安排在状态最好的时段"},
			model.RiskCritical: {"与学习伙伴互相监督打卡", "制定一份最低可行的每日计划"},
		},
		model.FactorEngagement: {
			model.RiskModerate: {"本周至少安排两次学习会话", "尝试更短但更频繁的学习节奏"},
			model.RiskHigh:     {"回到之前的每周学习频率", "参加一次社区学习活动找回状态"},
			model.RiskCritical: {"和老师聊聊最近的学习阻碍", "从最感兴趣的内容重新进入学习"},
		},
	}
	return table[factor][level]
}
