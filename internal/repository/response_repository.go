package repository

import (
	"learner_analytics_backend/internal/model"

	"gorm.io/gorm"
)

// ResponseRepository 处理作答记录账本的数据访问（只追加）

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

// CreateBatch 批量写入一次测评的作答记录
func (r *ResponseRepository) CreateBatch(responses []model.ItemResponse) error {
	if len(responses) == 0 {
		return nil
	}
	return r.DB.Create(&responses).Error
}

// FindByAttempt 按作答时间升序返回一次测评的全部作答记录
func (r *ResponseRepository) FindByAttempt(userID, attemptID uint) ([]model.ItemResponse, error) {
	var responses []model.ItemResponse
	err := r.DB.Where("user_id = ? AND attempt_id = ?", userID, attemptID).
		Order("answered_at").
		Find(&responses).Error
	return responses, err
}
