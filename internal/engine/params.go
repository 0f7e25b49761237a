package engine

// Params 引擎的全部可调参数。默认值即生产取值，
// 其中与产品契约相关的几项（z 值、达标正确率、目标风险阈值等）
// 可通过配置文件覆盖，见 internal/config。
type Params struct {
	// 能力估计
	MinItems       int     // 少于该题数时退回先验估计
	MaxIterations  int     // 牛顿迭代上限
	ConvergenceTol float64 // 能力增量收敛阈值
	AbilityBound   float64 // |θ| 超界视为发散，截断处理
	MaxStdError    float64 // 退化/发散样本统一使用的最大标准误
	PriorVariance  float64 // MAP 弱先验方差

	// 轨迹
	SmoothingAlpha   float64 // EWMA 平滑系数
	ZScore           float64 // 置信区间 z 值
	MinBandHalfWidth float64 // 置信带最小半宽，防止区间塌缩成点
	SlopeWindow      int     // 外推斜率回看的平滑点数
	ForecastSEGrowth float64 // 预测步长的标准误增长系数

	// 洞察
	InsightRunLength  int     // 连续 N 个点才构成趋势洞察
	ImprovementSlope  float64 // 每点斜率高于该值视为上升
	PlateauSlope      float64 // 每点斜率绝对值低于该值视为平台期
	BreakthroughK     float64 // 单点跳升超过 K 倍标准误视为突破
	ConsistencyStdDev float64 // 全窗口标准差低于该值视为稳定型学习者

	// 速度
	TrendMinPoints int     // 少于该点数时趋势一律 stable
	TrendRatio     float64 // 前后半窗斜率比较的阈值比例
	TrendEpsilon   float64 // 斜率差的绝对下限（能力值/周）

	// 学习效果
	MinBucketSessions int     // 分桶样本数下限，避免从噪声里挑"最优"
	TargetAccuracy    float64 // 达标正确率

	// 风险
	RiskMinSamples  int     // 能力样本少于该数时不给出风险分
	WeightDecline   float64
	WeightAccuracy  float64
	WeightStreak    float64
	WeightFrequency float64

	// 目标预测
	AtRiskThreshold float64 // 成功概率低于该值即判定 at risk
}

// DefaultParams 返回生产默认参数。
func DefaultParams() Params {
	return Params{
		MinItems:       3,
		MaxIterations:  25,
		ConvergenceTol: 1e-4,
		AbilityBound:   6.0,
		MaxStdError:    2.5,
		PriorVariance:  1.0,

		SmoothingAlpha:   0.4,
		ZScore:           1.96,
		MinBandHalfWidth: 0.05,
		SlopeWindow:      6,
		ForecastSEGrowth: 0.25,

		InsightRunLength:  3,
		ImprovementSlope:  0.03,
		PlateauSlope:      0.01,
		BreakthroughK:     2.0,
		ConsistencyStdDev: 0.08,

		TrendMinPoints: 4,
		TrendRatio:     1.5,
		TrendEpsilon:   0.01,

		MinBucketSessions: 3,
		TargetAccuracy:    0.7,

		RiskMinSamples:  3,
		WeightDecline:   0.35,
		WeightAccuracy:  0.25,
		WeightStreak:    0.20,
		WeightFrequency: 0.20,

		AtRiskThreshold: 0.5,
	}
}
