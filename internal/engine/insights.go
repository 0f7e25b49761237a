package engine

import (
	"fmt"
	"math"

	"learner_analytics_backend/internal/model"
)

// GenerateInsights 对平滑轨迹做规则扫描，产出学习洞察。
// 纯函数：同一份样本账本永远得到同一组洞察，可随时重算。
// 每种类型只保留显著性最高的一条，显著性相同取最近出现的。
func GenerateInsights(samples []SamplePoint, window int, p Params) []model.Insight {
	observed := prepareSamples(samples, window)
	if len(observed) < 2 {
		return []model.Insight{}
	}
	smoothed := ewma(observed, p.SmoothingAlpha)

	best := map[model.InsightType]model.Insight{}
	rank := map[model.InsightType]int{}

	keep := func(t model.InsightType, ins model.Insight, at int) {
		cur, ok := best[t]
		if !ok || sigRank(ins.Significance) > sigRank(cur.Significance) ||
			(sigRank(ins.Significance) == sigRank(cur.Significance) && at >= rank[t]) {
			best[t] = ins
			rank[t] = at
		}
	}

	steps := make([]float64, len(smoothed)-1)
	for i := 1; i < len(smoothed); i++ {
		steps[i-1] = smoothed[i] - smoothed[i-1]
	}

	// 连续 N 步的趋势洞察：上升 / 下降 / 平台期
	n := p.InsightRunLength
	for end := n; end <= len(steps); end++ {
		run := steps[end-n : end]
		mean := meanOf(run)

		switch {
		case allAtLeast(run, p.ImprovementSlope):
			keep(model.InsightImprovement, model.Insight{
				Type:         model.InsightImprovement,
				Title:        "持续进步",
				Description:  fmt.Sprintf("最近 %d 次测评的能力值持续上升，保持当前的学习节奏。", n+1),
				Significance: slopeSignificance(mean, p.ImprovementSlope),
			}, end)
		case allAtMost(run, -p.ImprovementSlope):
			keep(model.InsightDecline, model.Insight{
				Type:         model.InsightDecline,
				Title:        "成绩下滑",
				Description:  fmt.Sprintf("最近 %d 次测评的能力值连续走低，建议回顾薄弱知识点。", n+1),
				Significance: slopeSignificance(-mean, p.ImprovementSlope),
			}, end)
		case allWithin(run, p.PlateauSlope):
			keep(model.InsightPlateau, model.Insight{
				Type:         model.InsightPlateau,
				Title:        "进入平台期",
				Description:  fmt.Sprintf("最近 %d 次测评能力值基本持平，可以尝试提升题目难度。", n+1),
				Significance: model.SignificanceMedium,
			}, end)
		}
	}

	// 突破：单次跳升超过 K 倍标准误（用原始样本而非平滑值，避免被平滑抹掉）
	for i := 1; i < len(observed); i++ {
		jump := observed[i].Ability - observed[i-1].Ability
		ref := math.Max(observed[i-1].StandardError, p.MinBandHalfWidth)
		if jump > p.BreakthroughK*ref {
			keep(model.InsightBreakthrough, model.Insight{
				Type:         model.InsightBreakthrough,
				Title:        "能力突破",
				Description:  fmt.Sprintf("能力值单次跃升 %.2f，远超常规波动范围。", jump),
				Significance: model.SignificanceHigh,
			}, i)
		}
	}

	// 稳定型：全窗口波动很小
	if len(smoothed) > p.InsightRunLength && stdDev(smoothed) < p.ConsistencyStdDev {
		keep(model.InsightConsistency, model.Insight{
			Type:         model.InsightConsistency,
			Title:        "表现稳定",
			Description:  "整个回看窗口内能力值波动很小，发挥非常稳定。",
			Significance: model.SignificanceLow,
		}, len(smoothed))
	}

	out := make([]model.Insight, 0, len(best))
	for _, t := range []model.InsightType{
		model.InsightImprovement,
		model.InsightBreakthrough,
		model.InsightConsistency,
		model.InsightPlateau,
		model.InsightDecline,
	} {
		if ins, ok := best[t]; ok {
			out = append(out, ins)
		}
	}
	return out
}

func slopeSignificance(mean, threshold float64) model.Significance {
	if mean >= 2*threshold {
		return model.SignificanceHigh
	}
	return model.SignificanceMedium
}

func sigRank(s model.Significance) int {
	switch s {
	case model.SignificanceHigh:
		return 2
	case model.SignificanceMedium:
		return 1
	default:
		return 0
	}
}

func allAtLeast(vs []float64, min float64) bool {
	for _, v := range vs {
		if v < min {
			return false
		}
	}
	return true
}

func allAtMost(vs []float64, max float64) bool {
	for _, v := range vs {
		if v > max {
			return false
		}
	}
	return true
}

func allWithin(vs []float64, bound float64) bool {
	for _, v := range vs {
		if math.Abs(v) > bound {
			return false
		}
	}
	return true
}

func meanOf(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func stdDev(vs []float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	m := meanOf(vs)
	sum := 0.0
	for _, v := range vs {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(vs)-1))
}
