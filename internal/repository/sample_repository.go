package repository

import (
	"learner_analytics_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// SampleRepository 处理能力样本账本的数据访问。
// 样本只追加：重新测评产生新行，历史行永不修改。

type SampleRepository struct {
	DB *gorm.DB
}

func NewSampleRepository(db *gorm.DB) *SampleRepository {
	return &SampleRepository{DB: db}
}

// Append 追加一条能力样本
func (r *SampleRepository) Append(sample *model.AbilitySample) error {
	return r.DB.Create(sample).Error
}

// FindByUserAndCategory 按估计时间升序返回窗口内的能力样本。
// categoryID 为 nil 表示整体能力序列。
func (r *SampleRepository) FindByUserAndCategory(userID uint, categoryID *string, since time.Time) ([]model.AbilitySample, error) {
	var samples []model.AbilitySample
	query := r.DB.Where("user_id = ? AND estimated_at >= ?", userID, since)
	query = scopeCategory(query, categoryID)
	err := query.Order("estimated_at").Find(&samples).Error
	return samples, err
}

// Latest 返回用户在指定类目下最近的一条样本，没有则返回 gorm.ErrRecordNotFound
func (r *SampleRepository) Latest(userID uint, categoryID *string) (*model.AbilitySample, error) {
	var sample model.AbilitySample
	query := scopeCategory(r.DB.Where("user_id = ?", userID), categoryID)
	err := query.Order("estimated_at DESC").First(&sample).Error
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

// DistinctUserIDs 返回账本中出现过的全部用户，供夜间批处理遍历
func (r *SampleRepository) DistinctUserIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.AbilitySample{}).Distinct("user_id").Pluck("user_id", &ids).Error
	return ids, err
}

func scopeCategory(query *gorm.DB, categoryID *string) *gorm.DB {
	if categoryID == nil {
		return query.Where("category_id IS NULL")
	}
	return query.Where("category_id = ?", *categoryID)
}
