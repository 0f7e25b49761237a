package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"learner_analytics_backend/internal/engine"
	"learner_analytics_backend/internal/model"
	"learner_analytics_backend/internal/util"
)

func testGoalService() *GoalService {
	return &GoalService{Params: engine.DefaultParams()}
}

// 场景：目标日期在过去 → 校验失败，不做任何预测计算
func TestGoalValidation_PastDateRejected(t *testing.T) {
	s := testGoalService()

	err := s.validate(CreateGoalInput{
		Title:       "冲刺中级",
		TargetValue: 1.0,
		TargetDate:  time.Now().AddDate(0, 0, -1),
	})

	assert.ErrorIs(t, err, util.ErrInvalidGoal)
}

// 目标值超出能力量表范围 → 校验失败
func TestGoalValidation_TargetOutOfScale(t *testing.T) {
	s := testGoalService()
	future := time.Now().AddDate(0, 1, 0)

	tooHigh := s.validate(CreateGoalInput{Title: "t", TargetValue: 7.0, TargetDate: future})
	assert.ErrorIs(t, tooHigh, util.ErrInvalidGoal)

	tooLow := s.validate(CreateGoalInput{Title: "t", TargetValue: -6.5, TargetDate: future})
	assert.ErrorIs(t, tooLow, util.ErrInvalidGoal)
}

// 目标日期已过的目标不可预测：在触达样本账本之前就被拒绝
func TestGoalPrediction_ExpiredGoalRejected(t *testing.T) {
	s := testGoalService()

	_, err := s.predict(model.LearningGoal{
		TargetValue: 1.0,
		TargetDate:  time.Now().AddDate(0, 0, -1),
	})

	assert.ErrorIs(t, err, util.ErrInvalidGoal)
}

func TestGoalValidation_ValidGoalAccepted(t *testing.T) {
	s := testGoalService()

	err := s.validate(CreateGoalInput{
		Title:       "三个月达到 1.5",
		TargetValue: 1.5,
		TargetDate:  time.Now().AddDate(0, 3, 0),
	})

	assert.NoError(t, err)
}
