package model

import "time"

// AbilitySample 一次测评完成后产出的能力估计值（只追加账本，禁止修改/删除）
type AbilitySample struct {
	BaseModel
	UserID        uint      `gorm:"index:idx_sample_user_cat;type:bigint unsigned" json:"userId"`
	AttemptID     uint      `gorm:"index;type:bigint unsigned" json:"attemptId"`
	CategoryID    *string   `gorm:"size:64;index:idx_sample_user_cat" json:"categoryId,omitempty"`
	Ability       float64   `gorm:"not null" json:"ability"`
	StandardError float64   `gorm:"not null" json:"standardError"`
	ItemCount     int       `gorm:"default:0" json:"itemCount"`
	LowConfidence bool      `gorm:"default:false" json:"lowConfidence"` // 估计发散或题量不足时置位
	EstimatedAt   time.Time `gorm:"index" json:"estimatedAt"`
}

func (AbilitySample) TableName() string {
	return "ability_samples"
}
