package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learner_analytics_backend/internal/model"
)

func findInsight(insights []model.Insight, typ model.InsightType) *model.Insight {
	for i := range insights {
		if insights[i].Type == typ {
			return &insights[i]
		}
	}
	return nil
}

func TestGenerateInsights_SustainedRise(t *testing.T) {
	p := DefaultParams()
	samples := weeklySamples([]float64{0.0, 0.1, 0.2, 0.3, 0.4, 0.5}, 0.1)

	insights := GenerateInsights(samples, 12, p)

	ins := findInsight(insights, model.InsightImprovement)
	require.NotNil(t, ins, "持续上升的序列应产出 improvement")
	assert.Equal(t, model.SignificanceHigh, ins.Significance)
	assert.Nil(t, findInsight(insights, model.InsightDecline))
	assert.Nil(t, findInsight(insights, model.InsightPlateau))
}

func TestGenerateInsights_SustainedDecline(t *testing.T) {
	p := DefaultParams()
	samples := weeklySamples([]float64{0.5, 0.4, 0.3, 0.2, 0.1, 0.0}, 0.1)

	insights := GenerateInsights(samples, 12, p)

	require.NotNil(t, findInsight(insights, model.InsightDecline))
	assert.Nil(t, findInsight(insights, model.InsightImprovement))
}

// 完全持平的序列既是平台期也是稳定型
func TestGenerateInsights_FlatSeries(t *testing.T) {
	p := DefaultParams()
	samples := weeklySamples([]float64{0.5, 0.5, 0.5, 0.5, 0.5}, 0.1)

	insights := GenerateInsights(samples, 12, p)

	assert.NotNil(t, findInsight(insights, model.InsightPlateau))
	assert.NotNil(t, findInsight(insights, model.InsightConsistency))
	assert.Nil(t, findInsight(insights, model.InsightImprovement))
	assert.Nil(t, findInsight(insights, model.InsightBreakthrough))
}

// 单次跳升超过 2 倍标准误即为突破，用原始样本判定避免被平滑抹掉
func TestGenerateInsights_Breakthrough(t *testing.T) {
	p := DefaultParams()
	samples := weeklySamples([]float64{0.5, 0.5, 0.5, 1.0}, 0.1)

	insights := GenerateInsights(samples, 12, p)

	ins := findInsight(insights, model.InsightBreakthrough)
	require.NotNil(t, ins)
	assert.Equal(t, model.SignificanceHigh, ins.Significance)
}

// 每种类型最多一条
func TestGenerateInsights_OnePerType(t *testing.T) {
	p := DefaultParams()
	samples := weeklySamples(risingSeries(12), 0.05)

	insights := GenerateInsights(samples, 12, p)

	seen := map[model.InsightType]int{}
	for _, ins := range insights {
		seen[ins.Type]++
	}
	for typ, count := range seen {
		assert.Equal(t, 1, count, "type %s", typ)
	}
}

func TestGenerateInsights_TooFewSamples(t *testing.T) {
	p := DefaultParams()

	assert.Empty(t, GenerateInsights(nil, 12, p))
	assert.Empty(t, GenerateInsights(weeklySamples([]float64{0.4}, 0.1), 12, p))
}
