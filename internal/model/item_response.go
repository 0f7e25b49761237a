package model

import "time"

// ItemResponse 单次测评中一道题的作答记录（只追加，不修改）
type ItemResponse struct {
	BaseModel
	UserID         uint      `gorm:"index;type:bigint unsigned" json:"userId"`
	AttemptID      uint      `gorm:"index;type:bigint unsigned" json:"attemptId"`
	QuestionID     uint      `gorm:"type:bigint unsigned" json:"questionId"`
	CategoryID     *string   `gorm:"size:64;index" json:"categoryId,omitempty"`
	Difficulty     float64   `gorm:"not null" json:"difficulty"`     // IRT 难度参数 b
	Discrimination float64   `gorm:"default:1" json:"discrimination"` // IRT 区分度参数 a
	Correct        bool      `gorm:"not null" json:"correct"`
	AnsweredAt     time.Time `gorm:"index" json:"answeredAt"`
}

func (ItemResponse) TableName() string {
	return "item_responses"
}
