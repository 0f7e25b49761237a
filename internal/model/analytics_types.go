package model

import "time"

// 本文件中的类型均为派生结果：随时可以从 ability_samples / study_sessions
// 账本重算出来，缓存失效后不丢失任何信息。

// ChartPoint 轨迹曲线上的一个点
type ChartPoint struct {
	Date            time.Time `json:"date"`
	Ability         float64   `json:"ability"`
	ConfidenceLower float64   `json:"confidenceLower"`
	ConfidenceUpper float64   `json:"confidenceUpper"`
	StandardError   float64   `json:"standardError"`
	IsForecast      bool      `json:"isForecast"`
}

// Trajectory 平滑后的能力轨迹，观测段在前、预测段在后
type Trajectory struct {
	CategoryID *string      `json:"categoryId,omitempty"`
	Samples    []ChartPoint `json:"samples"`
	WindowSize int          `json:"windowSize"`
}

// Observed 返回观测段（不含预测点）
func (t *Trajectory) Observed() []ChartPoint {
	for i, p := range t.Samples {
		if p.IsForecast {
			return t.Samples[:i]
		}
	}
	return t.Samples
}

type InsightType string

const (
	InsightImprovement  InsightType = "improvement"
	InsightPlateau      InsightType = "plateau"
	InsightDecline      InsightType = "decline"
	InsightBreakthrough InsightType = "breakthrough"
	InsightConsistency  InsightType = "consistency"
)

type Significance string

const (
	SignificanceLow    Significance = "low"
	SignificanceMedium Significance = "medium"
	SignificanceHigh   Significance = "high"
)

// Insight 基于轨迹规则生成的解读，同类型只保留显著性最高的一条
type Insight struct {
	Type         InsightType  `json:"type"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Significance Significance `json:"significance"`
}

type Trend string

const (
	TrendAccelerating Trend = "accelerating"
	TrendStable       Trend = "stable"
	TrendDecelerating Trend = "decelerating"
)

// VelocityResult 学习速度与趋势分类
type VelocityResult struct {
	Velocity float64 `json:"velocity"` // 能力值/周，非负
	Trend    Trend   `json:"trend"`
}

// StudyStats 回看窗口内的学习会话汇总
type StudyStats struct {
	TotalSessions        int     `json:"totalSessions"`
	TotalMinutes         int     `json:"totalMinutes"`
	TotalQuestions       int     `json:"totalQuestions"`
	OverallAccuracy      float64 `json:"overallAccuracy"` // 0-1，零题时定义为 0
	AverageSessionLength float64 `json:"averageSessionLength"`
	AverageFocusScore    float64 `json:"averageFocusScore"`
	AbilityGain          float64 `json:"abilityGain"`
	StudyStreakDays      int     `json:"studyStreakDays"`
}

// StudyPatternInsight 学习模式洞察（如"晚间正确率最高"）
type StudyPatternInsight struct {
	Pattern     string  `json:"pattern"` // time_of_day / day_of_week / session_length
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Accuracy    float64 `json:"accuracy"`
	SampleSize  int     `json:"sampleSize"`
}

// OptimalStudySchedule 推荐的学习安排
type OptimalStudySchedule struct {
	RecommendedLength  int      `json:"recommendedLength"` // 分钟
	RecommendedTimes   []string `json:"recommendedTimes"`  // 时段名
	RecommendedWeekday string   `json:"recommendedWeekday,omitempty"`
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskFactor 风险评分中的具名子信号
type RiskFactor string

const (
	FactorDecline    RiskFactor = "declining_performance"
	FactorAccuracy   RiskFactor = "low_accuracy"
	FactorStreak     RiskFactor = "broken_streak"
	FactorEngagement RiskFactor = "low_engagement"
)

// RiskContribution 单个子信号对总分的贡献（用于可解释性）
type RiskContribution struct {
	Factor       RiskFactor `json:"factor"`
	Signal       float64    `json:"signal"` // 归一化后的 0-100
	Weight       float64    `json:"weight"`
	Contribution float64    `json:"contribution"`
}

// RiskScore 综合风险评分
type RiskScore struct {
	UserID           uint               `json:"userId"`
	Score            float64            `json:"score"` // 0-100
	Level            RiskLevel          `json:"level"`
	TopFactor        RiskFactor         `json:"topFactor"`
	Contributions    []RiskContribution `json:"contributions"`
	Interventions    []string           `json:"recommendedInterventions"`
	InsufficientData bool               `json:"insufficientData"`
}
