package engine

import (
	"math"
	"sort"
	"time"

	"learner_analytics_backend/internal/model"
)

// SamplePoint 账本中的一条能力样本（仓储层转换后传入）
type SamplePoint struct {
	Date          time.Time
	Ability       float64
	StandardError float64
}

// BuildTrajectory 把样本历史变成平滑轨迹并追加预测段。
// 观测点不足 2 个时只返回已有的点：不做预测、不出洞察，但也不报错。
func BuildTrajectory(samples []SamplePoint, categoryID *string, window, horizon int, p Params) model.Trajectory {
	observed := prepareSamples(samples, window)

	traj := model.Trajectory{
		CategoryID: categoryID,
		Samples:    make([]model.ChartPoint, 0, len(observed)+horizon),
		WindowSize: window,
	}

	if len(observed) == 0 {
		return traj
	}

	smoothed := ewma(observed, p.SmoothingAlpha)
	for i, s := range observed {
		half := math.Max(p.ZScore*s.StandardError, p.MinBandHalfWidth)
		traj.Samples = append(traj.Samples, model.ChartPoint{
			Date:            s.Date,
			Ability:         smoothed[i],
			ConfidenceLower: smoothed[i] - half,
			ConfidenceUpper: smoothed[i] + half,
			StandardError:   s.StandardError,
			IsForecast:      false,
		})
	}

	if len(observed) < 2 || horizon <= 0 {
		return traj
	}

	traj.Samples = append(traj.Samples, forecast(observed, smoothed, horizon, p)...)
	return traj
}

// prepareSamples 升序排序、按天去重（同一天保留最后一条）、截取回看窗口。
func prepareSamples(samples []SamplePoint, window int) []SamplePoint {
	sorted := make([]SamplePoint, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	deduped := make([]SamplePoint, 0, len(sorted))
	for _, s := range sorted {
		day := s.Date.Truncate(24 * time.Hour)
		if n := len(deduped); n > 0 && deduped[n-1].Date.Truncate(24*time.Hour).Equal(day) {
			deduped[n-1] = s
			continue
		}
		deduped = append(deduped, s)
	}

	if window > 0 && len(deduped) > window {
		deduped = deduped[len(deduped)-window:]
	}
	return deduped
}

// forecast 对平滑序列的近期斜率做线性外推。每前进一步标准误按
// ForecastSEGrowth 递增，保证置信带宽度随预测步数严格变宽。
func forecast(observed []SamplePoint, smoothed []float64, horizon int, p Params) []model.ChartPoint {
	n := len(observed)

	w := p.SlopeWindow
	if w > n {
		w = n
	}
	xs := make([]float64, w)
	ys := make([]float64, w)
	base := observed[n-w].Date
	for i := 0; i < w; i++ {
		xs[i] = observed[n-w+i].Date.Sub(base).Hours() / 24
		ys[i] = smoothed[n-w+i]
	}
	slopePerDay := linearSlope(xs, ys)

	stepDays := medianSpacingDays(observed)
	last := observed[n-1]
	lastSmoothed := smoothed[n-1]

	// 基准标准误不允许为零，否则预测带无法展开
	seBase := math.Max(last.StandardError, p.MinBandHalfWidth/p.ZScore)

	points := make([]model.ChartPoint, 0, horizon)
	for k := 1; k <= horizon; k++ {
		ability := clamp(lastSmoothed+slopePerDay*stepDays*float64(k), -p.AbilityBound, p.AbilityBound)
		se := seBase * math.Sqrt(1+float64(k)*p.ForecastSEGrowth)
		half := p.ZScore * se
		points = append(points, model.ChartPoint{
			Date:            last.Date.AddDate(0, 0, int(stepDays)*k),
			Ability:         ability,
			ConfidenceLower: ability - half,
			ConfidenceUpper: ability + half,
			StandardError:   se,
			IsForecast:      true,
		})
	}
	return points
}

func ewma(samples []SamplePoint, alpha float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		if i == 0 {
			out[0] = s.Ability
			continue
		}
		out[i] = alpha*s.Ability + (1-alpha)*out[i-1]
	}
	return out
}

// medianSpacingDays 样本间隔的中位数，至少 1 天；样本过密时预测步长取周。
func medianSpacingDays(samples []SamplePoint) float64 {
	if len(samples) < 2 {
		return 7
	}
	gaps := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		gaps = append(gaps, samples[i].Date.Sub(samples[i-1].Date).Hours()/24)
	}
	sort.Float64s(gaps)
	med := gaps[len(gaps)/2]
	if med < 1 {
		return 1
	}
	return med
}

// linearSlope 最小二乘斜率；点数不足或 x 无变化时返回 0。
func linearSlope(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
