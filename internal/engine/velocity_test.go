package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"learner_analytics_backend/internal/model"
)

func buildObserved(abilities []float64, se float64, p Params) model.Trajectory {
	return BuildTrajectory(weeklySamples(abilities, se), nil, len(abilities), 0, p)
}

// 场景：10 周内从 0.0 线性升到 1.0。前后半窗斜率之差小于
// 阈值比例（TrendRatio=1.5），因此趋势固定为 stable。
func TestClassifyVelocity_LinearRiseIsStable(t *testing.T) {
	p := DefaultParams()
	traj := buildObserved(risingSeries(10), 0.1, p)

	res := ClassifyVelocity(traj, p)

	assert.Equal(t, model.TrendStable, res.Trend)
	assert.InDelta(t, 0.1, res.Velocity, 0.05)
	assert.Greater(t, res.Velocity, 0.0)
}

// 前半段停滞、后半段快速上升 → accelerating
func TestClassifyVelocity_Accelerating(t *testing.T) {
	p := DefaultParams()
	traj := buildObserved([]float64{0.2, 0.2, 0.2, 0.2, 0.4, 0.6, 0.8, 1.0}, 0.1, p)

	res := ClassifyVelocity(traj, p)

	assert.Equal(t, model.TrendAccelerating, res.Trend)
}

// 前半段上升、后半段停滞 → decelerating
func TestClassifyVelocity_Decelerating(t *testing.T) {
	p := DefaultParams()
	traj := buildObserved([]float64{0.2, 0.4, 0.6, 0.8, 0.8, 0.8, 0.8, 0.8}, 0.1, p)

	res := ClassifyVelocity(traj, p)

	assert.Equal(t, model.TrendDecelerating, res.Trend)
}

// 点数不足 4 个时一律 stable，velocity 用现有点能算多少算多少
func TestClassifyVelocity_TooFewPoints(t *testing.T) {
	p := DefaultParams()

	three := ClassifyVelocity(buildObserved([]float64{0.0, 0.3, 0.6}, 0.1, p), p)
	assert.Equal(t, model.TrendStable, three.Trend)
	assert.Greater(t, three.Velocity, 0.0)

	one := ClassifyVelocity(buildObserved([]float64{0.5}, 0.1, p), p)
	assert.Equal(t, model.TrendStable, one.Trend)
	assert.Equal(t, 0.0, one.Velocity)

	empty := ClassifyVelocity(model.Trajectory{}, p)
	assert.Equal(t, model.TrendStable, empty.Trend)
	assert.Equal(t, 0.0, empty.Velocity)
}

// velocity 是非负速率：下降轨迹归零而不是给出负值
func TestClassifyVelocity_DecliningClampsToZero(t *testing.T) {
	p := DefaultParams()
	traj := buildObserved([]float64{1.0, 0.8, 0.6, 0.4, 0.2}, 0.1, p)

	res := ClassifyVelocity(traj, p)

	assert.Equal(t, 0.0, res.Velocity)
}

// 预测段不参与速度计算
func TestClassifyVelocity_IgnoresForecast(t *testing.T) {
	p := DefaultParams()
	samples := weeklySamples(risingSeries(10), 0.1)

	withForecast := ClassifyVelocity(BuildTrajectory(samples, nil, 12, 6, p), p)
	withoutForecast := ClassifyVelocity(BuildTrajectory(samples, nil, 12, 0, p), p)

	assert.Equal(t, withoutForecast, withForecast)
}
