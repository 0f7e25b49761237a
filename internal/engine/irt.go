package engine

import "math"

// ItemObservation 一道题的作答观测：2PL 参数加对错
type ItemObservation struct {
	Difficulty     float64
	Discrimination float64
	Correct        bool
}

// EstimateResult 单次测评的能力估计结果
type EstimateResult struct {
	Ability       float64
	StandardError float64
	LowConfidence bool
	Converged     bool
	Iterations    int
}

// EstimateAbility 在 2PL logistic 模型下做 MAP 估计。
// prior 为 nil 时先验均值取 0；题数不足 MinItems 时直接返回先验，
// 标准误置为最大值——这是定义好的退化输出，不是错误。
// 迭代发散（|θ| 超过 AbilityBound）时截断到边界并标记低置信度。
func EstimateAbility(items []ItemObservation, prior *float64, p Params) EstimateResult {
	priorMean := 0.0
	if prior != nil {
		priorMean = clamp(*prior, -p.AbilityBound, p.AbilityBound)
	}

	if len(items) < p.MinItems {
		return EstimateResult{
			Ability:       priorMean,
			StandardError: p.MaxStdError,
			LowConfidence: true,
		}
	}

	theta := priorMean
	converged := false
	iterations := 0

	for i := 0; i < p.MaxIterations; i++ {
		iterations = i + 1
		grad, info := gradientAndInfo(items, theta, priorMean, p.PriorVariance)
		if info <= 0 {
			break
		}

		delta := grad / info
		// 单步步长限制，避免极端作答模式下的振荡
		delta = clamp(delta, -1.0, 1.0)
		theta += delta

		if math.Abs(theta) > p.AbilityBound {
			theta = clamp(theta, -p.AbilityBound, p.AbilityBound)
			return EstimateResult{
				Ability:       theta,
				StandardError: p.MaxStdError,
				LowConfidence: true,
				Iterations:    iterations,
			}
		}

		if math.Abs(delta) < p.ConvergenceTol {
			converged = true
			break
		}
	}

	se := standardError(items, theta, p)
	return EstimateResult{
		Ability:       theta,
		StandardError: se,
		LowConfidence: !converged,
		Converged:     converged,
		Iterations:    iterations,
	}
}

// gradientAndInfo 返回对数后验的一阶导与观测信息量（含先验项）。
func gradientAndInfo(items []ItemObservation, theta, priorMean, priorVar float64) (float64, float64) {
	grad := 0.0
	info := 0.0
	for _, it := range items {
		a := it.Discrimination
		if a <= 0 {
			a = 1.0
		}
		prob := logistic(a * (theta - it.Difficulty))
		y := 0.0
		if it.Correct {
			y = 1.0
		}
		grad += a * (y - prob)
		info += a * a * prob * (1 - prob)
	}
	grad -= (theta - priorMean) / priorVar
	info += 1 / priorVar
	return grad, info
}

// standardError 由收敛点处的期望信息量计算标准误（不含先验项，
// 否则会低估真实不确定度）。与学习者水平匹配的题目贡献的信息量最大。
func standardError(items []ItemObservation, theta float64, p Params) float64 {
	info := 0.0
	for _, it := range items {
		a := it.Discrimination
		if a <= 0 {
			a = 1.0
		}
		prob := logistic(a * (theta - it.Difficulty))
		info += a * a * prob * (1 - prob)
	}
	if info <= 0 {
		return p.MaxStdError
	}
	se := 1 / math.Sqrt(info)
	if se > p.MaxStdError {
		se = p.MaxStdError
	}
	return se
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
