package repository

import (
	"learner_analytics_backend/internal/model"

	"gorm.io/gorm"
)

// GoalRepository 处理学习目标的数据访问

type GoalRepository struct {
	DB *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{DB: db}
}

// Create 创建新的学习目标
func (r *GoalRepository) Create(goal *model.LearningGoal) error {
	return r.DB.Create(goal).Error
}

// FindByIDAndUserID 根据ID和用户ID查找学习目标
func (r *GoalRepository) FindByIDAndUserID(id, userID uint) (*model.LearningGoal, error) {
	var goal model.LearningGoal
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&goal).Error
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// FindByUserID 获取用户的全部学习目标
func (r *GoalRepository) FindByUserID(userID uint) ([]model.LearningGoal, error) {
	var goals []model.LearningGoal
	err := r.DB.Where("user_id = ?", userID).Order("target_date").Find(&goals).Error
	return goals, err
}

// FindActiveByUserID 获取用户进行中的学习目标
func (r *GoalRepository) FindActiveByUserID(userID uint) ([]model.LearningGoal, error) {
	var goals []model.LearningGoal
	err := r.DB.Where("user_id = ? AND status = ?", userID, model.GoalActive).
		Order("target_date").
		Find(&goals).Error
	return goals, err
}

// UpdateStatus 更新目标状态
func (r *GoalRepository) UpdateStatus(id uint, status model.GoalStatus) error {
	return r.DB.Model(&model.LearningGoal{}).
		Where("id = ?", id).
		Update("status", status).Error
}
