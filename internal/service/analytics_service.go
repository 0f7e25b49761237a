package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"learner_analytics_backend/internal/engine"
	"learner_analytics_backend/internal/model"
	"learner_analytics_backend/internal/repository"
	"learner_analytics_backend/internal/util"
)

// AnalyticsService 分析读路径的编排层：读账本、调引擎、管缓存。
// 所有结果均可从账本重算，缓存键由计算输入派生（见 cacheKey）。

type AnalyticsService struct {
	SampleRepo  *repository.SampleRepository
	SessionRepo *repository.SessionRepository
	Cache       Cache
	Params      engine.Params
	CacheTTL    time.Duration
}

func NewAnalyticsService(
	sampleRepo *repository.SampleRepository,
	sessionRepo *repository.SessionRepository,
	cache Cache,
	params engine.Params,
	cacheTTL time.Duration,
) *AnalyticsService {
	return &AnalyticsService{
		SampleRepo:  sampleRepo,
		SessionRepo: sessionRepo,
		Cache:       cache,
		Params:      params,
		CacheTTL:    cacheTTL,
	}
}

// TrajectoryReport 轨迹接口的完整响应：曲线加解读
type TrajectoryReport struct {
	Trajectory model.Trajectory `json:"trajectory"`
	Insights   []model.Insight  `json:"insights"`
}

// StudyReport 学习效果接口的完整响应
type StudyReport struct {
	Stats    model.StudyStats            `json:"stats"`
	Insights []model.StudyPatternInsight `json:"insights"`
	Schedule *model.OptimalStudySchedule `json:"optimalSchedule,omitempty"`
}

// GetTrajectory 构建平滑轨迹与预测段。refresh 为 true 时绕过缓存。
func (s *AnalyticsService) GetTrajectory(ctx context.Context, userID uint, categoryID *string, windowDays, horizon int, refresh bool) (*TrajectoryReport, error) {
	latest, err := s.SampleRepo.Latest(userID, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 没有任何样本不是错误：返回空轨迹
		return &TrajectoryReport{
			Trajectory: model.Trajectory{CategoryID: categoryID, Samples: []model.ChartPoint{}, WindowSize: windowDays},
			Insights:   []model.Insight{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUpstreamUnavailable, err)
	}

	key := cacheKey("trajectory", userID, categoryID, latest.EstimatedAt, int64(windowDays), int64(horizon))
	if !refresh {
		if data, ok := s.Cache.Get(ctx, key); ok {
			var report TrajectoryReport
			if json.Unmarshal(data, &report) == nil {
				return &report, nil
			}
		}
	}

	points, err := s.samplePoints(userID, categoryID, windowDays)
	if err != nil {
		return nil, err
	}

	report := &TrajectoryReport{
		Trajectory: engine.BuildTrajectory(points, categoryID, windowDays, horizon, s.Params),
		Insights:   engine.GenerateInsights(points, windowDays, s.Params),
	}

	s.cacheReport(ctx, key, report)
	return report, nil
}

// GetVelocity 学习速度与趋势分类
func (s *AnalyticsService) GetVelocity(ctx context.Context, userID uint, categoryID *string, windowDays int, refresh bool) (*model.VelocityResult, error) {
	latest, err := s.SampleRepo.Latest(userID, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.VelocityResult{Trend: model.TrendStable}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUpstreamUnavailable, err)
	}

	key := cacheKey("velocity", userID, categoryID, latest.EstimatedAt, int64(windowDays))
	if !refresh {
		if data, ok := s.Cache.Get(ctx, key); ok {
			var result model.VelocityResult
			if json.Unmarshal(data, &result) == nil {
				return &result, nil
			}
		}
	}

	points, err := s.samplePoints(userID, categoryID, windowDays)
	if err != nil {
		return nil, err
	}

	traj := engine.BuildTrajectory(points, categoryID, windowDays, 0, s.Params)
	result := engine.ClassifyVelocity(traj, s.Params)

	s.cacheReport(ctx, key, &result)
	return &result, nil
}

// GetStudyEffectiveness 学习会话效果分析
func (s *AnalyticsService) GetStudyEffectiveness(ctx context.Context, userID uint, lookbackDays int, refresh bool) (*StudyReport, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -lookbackDays)

	sessions, err := s.SessionRepo.FindCompletedSince(userID, since)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUpstreamUnavailable, err)
	}

	var key string
	if len(sessions) > 0 {
		key = cacheKey("study", userID, nil, latestSessionEnd(sessions), int64(lookbackDays))
		if !refresh {
			if data, ok := s.Cache.Get(ctx, key); ok {
				var report StudyReport
				if json.Unmarshal(data, &report) == nil {
					return &report, nil
				}
			}
		}
	}

	gain, err := s.abilityGain(userID, since)
	if err != nil {
		return nil, err
	}

	stats, insights, schedule := engine.AnalyzeStudy(sessionRecords(sessions), gain, now, s.Params)
	report := &StudyReport{Stats: stats, Insights: insights, Schedule: schedule}

	if key != "" {
		s.cacheReport(ctx, key, report)
	}
	return report, nil
}

// GetRisk 综合风险评分。速度、学习统计与会话频率全部来自同一批
// 账本读数，保证各子信号描述的是同一个时间窗口。
func (s *AnalyticsService) GetRisk(ctx context.Context, userID uint, refresh bool) (*model.RiskScore, error) {
	const riskWindowDays = 90

	latest, err := s.SampleRepo.Latest(userID, nil)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		result := engine.ScoreRisk(userID, engine.RiskInputs{}, s.Params)
		return &result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUpstreamUnavailable, err)
	}

	now := time.Now()
	since := now.AddDate(0, 0, -riskWindowDays)

	sessions, err := s.SessionRepo.FindCompletedSince(userID, since)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUpstreamUnavailable, err)
	}

	// 风险分同时依赖能力账本和会话账本，键里折入两边的版本：
	// 新样本和新结束的会话都会让旧键失效
	key := cacheKey("risk", userID, nil, latest.EstimatedAt, latestSessionEnd(sessions).UnixMilli())
	if !refresh {
		if data, ok := s.Cache.Get(ctx, key); ok {
			var result model.RiskScore
			if json.Unmarshal(data, &result) == nil {
				return &result, nil
			}
		}
	}

	points, err := s.samplePoints(userID, nil, riskWindowDays)
	if err != nil {
		return nil, err
	}

	traj := engine.BuildTrajectory(points, nil, riskWindowDays, 0, s.Params)
	velocity := engine.ClassifyVelocity(traj, s.Params)

	gain, err := s.abilityGain(userID, now.AddDate(0, 0, -util.DefaultStudyLookbackDays))
	if err != nil {
		return nil, err
	}
	stats, _, _ := engine.AnalyzeStudy(sessionRecords(sessions), gain, now, s.Params)

	baseline, recent := sessionFrequency(sessions, now)
	result := engine.ScoreRisk(userID, engine.RiskInputs{
		Trajectory:      traj,
		Velocity:        velocity,
		Stats:           stats,
		SampleCount:     len(points),
		BaselinePerWeek: baseline,
		RecentPerWeek:   recent,
	}, s.Params)

	s.cacheReport(ctx, key, &result)
	return &result, nil
}

func (s *AnalyticsService) samplePoints(userID uint, categoryID *string, windowDays int) ([]engine.SamplePoint, error) {
	since := time.Now().AddDate(0, 0, -windowDays)
	samples, err := s.SampleRepo.FindByUserAndCategory(userID, categoryID, since)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUpstreamUnavailable, err)
	}

	points := make([]engine.SamplePoint, 0, len(samples))
	for _, sample := range samples {
		points = append(points, engine.SamplePoint{
			Date:          sample.EstimatedAt,
			Ability:       sample.Ability,
			StandardError: sample.StandardError,
		})
	}
	return points, nil
}

// abilityGain 窗口首尾样本的能力差，窗口内不足两条样本时为 0。
func (s *AnalyticsService) abilityGain(userID uint, since time.Time) (float64, error) {
	samples, err := s.SampleRepo.FindByUserAndCategory(userID, nil, since)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", util.ErrUpstreamUnavailable, err)
	}
	if len(samples) < 2 {
		return 0, nil
	}
	return samples[len(samples)-1].Ability - samples[0].Ability, nil
}

func (s *AnalyticsService) cacheReport(ctx context.Context, key string, report interface{}) {
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	s.Cache.Set(ctx, key, data, s.CacheTTL)
}

// latestSessionEnd 会话账本的版本号：窗口内最近一次会话的结束时间，
// 没有会话时为零值。
func latestSessionEnd(sessions []model.StudySession) time.Time {
	var latest time.Time
	for _, s := range sessions {
		if s.EndTime != nil && s.EndTime.After(latest) {
			latest = *s.EndTime
		}
	}
	return latest
}

func sessionRecords(sessions []model.StudySession) []engine.SessionRecord {
	records := make([]engine.SessionRecord, 0, len(sessions))
	for _, s := range sessions {
		records = append(records, engine.SessionRecord{
			Start:      s.StartTime,
			Minutes:    s.Duration,
			Questions:  s.Questions,
			Correct:    s.Correct,
			FocusScore: s.FocusScore,
		})
	}
	return records
}

// sessionFrequency 返回（历史周均会话数, 最近一周会话数）。
// 基线与用户自己的历史比较，窗口不足一周时按一周计。
func sessionFrequency(sessions []model.StudySession, now time.Time) (float64, float64) {
	if len(sessions) == 0 {
		return 0, 0
	}

	first := sessions[0].StartTime
	weeks := now.Sub(first).Hours() / 24 / 7
	if weeks < 1 {
		weeks = 1
	}
	baseline := float64(len(sessions)) / weeks

	recentCutoff := now.AddDate(0, 0, -7)
	recent := 0
	for _, s := range sessions {
		if !s.StartTime.Before(recentCutoff) {
			recent++
		}
	}
	return baseline, float64(recent)
}
