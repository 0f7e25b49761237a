package engine

import (
	"learner_analytics_backend/internal/model"
)

// ClassifyVelocity 从轨迹的观测段推导学习速度与趋势。
// velocity 为能力值/周（负斜率归零）；趋势对比后半窗与前半窗的斜率，
// 观测点不足 TrendMinPoints 时一律返回 stable。
func ClassifyVelocity(traj model.Trajectory, p Params) model.VelocityResult {
	observed := traj.Observed()

	result := model.VelocityResult{Trend: model.TrendStable}
	if len(observed) < 2 {
		return result
	}

	slope := chartSlopePerWeek(observed)
	if slope > 0 {
		result.Velocity = slope
	}

	if len(observed) < p.TrendMinPoints {
		return result
	}

	mid := len(observed) / 2
	early := chartSlopePerWeek(observed[:mid+1]) // 中点两段共享，避免半窗只剩 1 个点
	recent := chartSlopePerWeek(observed[mid:])

	diff := recent - early
	threshold := (p.TrendRatio - 1) * maxAbs(early, p.TrendEpsilon)

	switch {
	case diff > threshold:
		result.Trend = model.TrendAccelerating
	case diff < -threshold:
		result.Trend = model.TrendDecelerating
	}
	return result
}

func chartSlopePerWeek(points []model.ChartPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	base := points[0].Date
	for i, pt := range points {
		xs[i] = pt.Date.Sub(base).Hours() / 24
		ys[i] = pt.Ability
	}
	return linearSlope(xs, ys) * 7
}

func maxAbs(v, floor float64) float64 {
	if v < 0 {
		v = -v
	}
	if v < floor {
		return floor
	}
	return v
}
