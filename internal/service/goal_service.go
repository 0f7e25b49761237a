package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"learner_analytics_backend/internal/engine"
	"learner_analytics_backend/internal/model"
	"learner_analytics_backend/internal/repository"
	"learner_analytics_backend/internal/util"
)

// GoalService 学习目标的定义与达成预测。
// 预测是纯派生数据：is_at_risk 永远由概率即时判定，不落库。

type GoalService struct {
	GoalRepo   *repository.GoalRepository
	SampleRepo *repository.SampleRepository
	Params     engine.Params
}

func NewGoalService(goalRepo *repository.GoalRepository, sampleRepo *repository.SampleRepository, params engine.Params) *GoalService {
	return &GoalService{
		GoalRepo:   goalRepo,
		SampleRepo: sampleRepo,
		Params:     params,
	}
}

// CreateGoalInput 创建目标的请求体
type CreateGoalInput struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	CategoryID  *string   `json:"categoryId"`
	TargetValue float64   `json:"targetValue"`
	TargetDate  time.Time `json:"targetDate" binding:"required"`
}

// CreateGoal 校验并创建目标。目标日期必须在未来，目标值必须落在
// 能力量表范围内，否则返回 ErrInvalidGoal。
func (s *GoalService) CreateGoal(userID uint, input CreateGoalInput) (*model.LearningGoal, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	goal := &model.LearningGoal{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		TargetValue: input.TargetValue,
		TargetDate:  input.TargetDate,
		Status:      model.GoalActive,
	}
	if err := s.GoalRepo.Create(goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) validate(input CreateGoalInput) error {
	if !input.TargetDate.After(time.Now()) {
		return fmt.Errorf("%w: 目标日期必须在未来", util.ErrInvalidGoal)
	}
	if input.TargetValue > s.Params.AbilityBound || input.TargetValue < -s.Params.AbilityBound {
		return fmt.Errorf("%w: 目标值超出能力量表范围 [%.0f, %.0f]",
			util.ErrInvalidGoal, -s.Params.AbilityBound, s.Params.AbilityBound)
	}
	return nil
}

// ListGoals 用户的全部目标
func (s *GoalService) ListGoals(userID uint) ([]model.LearningGoal, error) {
	return s.GoalRepo.FindByUserID(userID)
}

// UpdateStatus 标记目标完成/放弃
func (s *GoalService) UpdateStatus(userID, goalID uint, status model.GoalStatus) error {
	goal, err := s.GoalRepo.FindByIDAndUserID(goalID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrGoalNotFound
	}
	if err != nil {
		return err
	}
	return s.GoalRepo.UpdateStatus(goal.ID, status)
}

// PredictGoal 单个目标的达成预测
func (s *GoalService) PredictGoal(ctx context.Context, userID, goalID uint) (*model.GoalPrediction, error) {
	goal, err := s.GoalRepo.FindByIDAndUserID(goalID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.predict(*goal)
}

// GoalRiskItem 风险目标列表的条目：目标定义加当前预测
type GoalRiskItem struct {
	Goal       model.LearningGoal   `json:"goal"`
	Prediction model.GoalPrediction `json:"prediction"`
}

// GoalsAtRisk 对进行中的目标逐一预测，只返回 is_at_risk 的条目。
// 列表是对预测结果的过滤，与单目标预测接口共用同一条计算路径。
func (s *GoalService) GoalsAtRisk(ctx context.Context, userID uint) ([]GoalRiskItem, error) {
	goals, err := s.GoalRepo.FindActiveByUserID(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	atRisk := make([]GoalRiskItem, 0)
	for _, goal := range goals {
		if !goal.TargetDate.After(now) {
			continue // 已过期的目标不再预测
		}
		prediction, err := s.predict(goal)
		if err != nil {
			return nil, err
		}
		if prediction.IsAtRisk {
			atRisk = append(atRisk, GoalRiskItem{Goal: goal, Prediction: *prediction})
		}
	}
	return atRisk, nil
}

func (s *GoalService) predict(goal model.LearningGoal) (*model.GoalPrediction, error) {
	const goalWindowDays = 180

	// 目标日期已过的目标没有"还能不能达成"可预测，按非法目标拒绝，
	// 等用户把它标记为完成或放弃
	if !goal.TargetDate.After(time.Now()) {
		return nil, fmt.Errorf("%w: 目标日期已过", util.ErrInvalidGoal)
	}

	since := time.Now().AddDate(0, 0, -goalWindowDays)
	samples, err := s.SampleRepo.FindByUserAndCategory(goal.UserID, goal.CategoryID, since)
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

	traj := engine.BuildTrajectory(points, goal.CategoryID, goalWindowDays, 0, s.Params)
	prediction := engine.PredictGoal(goal, traj, time.Now(), s.Params)
	return &prediction, nil
}
